package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/models"
)

// appealsFragment lists one page of appeals, optionally filtered by status
func (s *WebServer) appealsFragment(c *gin.Context) {
	session := currentSession(c)
	status, err := models.ParseAppealStatus(c.Query("status"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err.Error())
		return
	}
	page := console.ParsePage(c.Query("page"))

	result, err := session.API().Appeals(c.Request.Context(), status, page, s.Config.Web.PageSize)
	if err != nil {
		s.loadFailed(c, "appeals", err)
		return
	}

	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	s.renderFragment(c, http.StatusOK, "appeals", AppealsData{
		TemplateData: s.flashData(session),
		Appeals:      result.Appeals,
		Status:       status,
		Statuses:     models.AppealStatuses,
		Pager:        newPager(result.Pagination, console.SectionAppeals.Path(), query),
	})
}

// appealDetailFragment shows one appeal with its comments and, while it is
// pending, the comment and decision forms
func (s *WebServer) appealDetailFragment(c *gin.Context) {
	session := currentSession(c)
	appeal, err := session.API().Appeal(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.loadFailed(c, "appeal", err)
		return
	}
	if appeal.ID == "" {
		appeal.ID = c.Param("id")
	}
	s.renderFragment(c, http.StatusOK, "appeal_detail", AppealDetailData{
		TemplateData: s.flashData(session),
		Appeal:       appeal,
	})
}

// appealDecisionSubmit approves or denies an appeal; both need a response
func (s *WebServer) appealDecisionSubmit(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		id := c.Param("id")
		target := appealPath(id)
		response := strings.TrimSpace(c.PostForm("response"))
		if response == "" {
			s.finishAction(c, session, target, "", errors.New(console.MsgResponseRequired))
			return
		}

		if approve {
			err := session.API().ApproveAppeal(c.Request.Context(), id, response)
			s.finishAction(c, session, target, "Appeal approved successfully.", err)
			return
		}
		err := session.API().DenyAppeal(c.Request.Context(), id, response)
		s.finishAction(c, session, target, "Appeal denied successfully.", err)
	}
}

// appealCommentSubmit adds a staff comment to an appeal
func (s *WebServer) appealCommentSubmit(c *gin.Context) {
	session := currentSession(c)
	id := c.Param("id")
	target := appealPath(id)
	comment := strings.TrimSpace(c.PostForm("comment"))
	if comment == "" {
		s.finishAction(c, session, target, "", errors.New(console.MsgCommentRequired))
		return
	}
	err := session.API().CommentAppeal(c.Request.Context(), id, comment)
	s.finishAction(c, session, target, "Comment added successfully.", err)
}

// appealPath is the console route of one appeal
func appealPath(id string) string {
	return console.SectionAppeals.Path() + "/" + url.PathEscape(id)
}
