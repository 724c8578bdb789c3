package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/models"
)

// appealFormPage renders the public appeal form
func (s *WebServer) appealFormPage(c *gin.Context) {
	s.renderFragment(c, http.StatusOK, "appeal_page", AppealPageData{
		AppVersion: s.Config.AppVersion,
		Form:       models.AppealSubmission{PlayerUUID: strings.TrimSpace(c.Query("uuid"))},
	})
}

// appealFormSubmit files an appeal for a player. Backend refusals such as
// the resubmission cooldown are shown above the form.
func (s *WebServer) appealFormSubmit(c *gin.Context) {
	data := AppealPageData{
		AppVersion: s.Config.AppVersion,
		Form: models.AppealSubmission{
			PlayerUUID:   strings.TrimSpace(c.PostForm("playerUUID")),
			PlayerName:   strings.TrimSpace(c.PostForm("playerName")),
			AppealText:   strings.TrimSpace(c.PostForm("appealText")),
			ContactEmail: strings.TrimSpace(c.PostForm("contactEmail")),
			DiscordTag:   strings.TrimSpace(c.PostForm("discordTag")),
		},
	}
	if err := data.Form.Validate(); err != nil {
		data.Error = err.Error()
		s.renderFragment(c, http.StatusBadRequest, "appeal_page", data)
		return
	}

	id, err := s.API.SubmitAppeal(c.Request.Context(), data.Form)
	if err != nil {
		data.Error = err.Error()
		s.renderFragment(c, http.StatusOK, "appeal_page", data)
		return
	}
	data.AppealID = id
	s.renderFragment(c, http.StatusOK, "appeal_page", data)
}

// appealStatusPage looks up the latest appeal of a player by uuid
func (s *WebServer) appealStatusPage(c *gin.Context) {
	data := AppealPageData{
		AppVersion: s.Config.AppVersion,
		UUID:       strings.TrimSpace(c.Query("uuid")),
	}
	if data.UUID != "" {
		appeal, err := s.API.AppealStatus(c.Request.Context(), data.UUID)
		if err != nil {
			data.Error = err.Error()
		} else {
			data.Appeal = appeal
		}
	}
	s.renderFragment(c, http.StatusOK, "appeal_status_page", data)
}
