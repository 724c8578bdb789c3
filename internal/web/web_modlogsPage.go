package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/models"
)

// modLogsFragment lists one page of the moderation log. An invalid filter
// renders the form with the error instead of querying the backend.
func (s *WebServer) modLogsFragment(c *gin.Context) {
	session := currentSession(c)
	values := c.Request.URL.Query()
	data := ModLogsData{
		TemplateData: s.flashData(session),
		Actions:      models.ModLogActions,
		Query: modLogForm{
			Filter: strings.ToLower(strings.TrimSpace(values.Get("filter"))),
			Player: strings.TrimSpace(values.Get("player")),
			Action: strings.ToUpper(strings.TrimSpace(values.Get("action"))),
			Start:  strings.TrimSpace(values.Get("start")),
			End:    strings.TrimSpace(values.Get("end")),
		},
	}

	query, err := console.ParseModLogQuery(values)
	if err != nil {
		data.Error = err.Error()
		s.renderFragment(c, http.StatusBadRequest, "modlogs", data)
		return
	}
	data.Query.Filter = string(query.Filter)

	page := console.ParsePage(values.Get("page"))
	result, err := session.API().ModLogs(c.Request.Context(), query, page, s.Config.Web.PageSize)
	if err != nil {
		s.loadFailed(c, "mod logs", err)
		return
	}
	data.Logs = result.Logs
	data.Pager = newPager(result.Pagination, console.SectionModLogs.Path(), console.ModLogQueryValues(query))
	s.renderFragment(c, http.StatusOK, "modlogs", data)
}
