package web

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
)

// dashboardFragment loads the stats cards and both recent tables concurrently.
// Each panel renders its own error; a lost token ends the session.
func (s *WebServer) dashboardFragment(c *gin.Context) {
	session := currentSession(c)
	api := session.API()
	ctx := c.Request.Context()

	data := DashboardData{TemplateData: s.flashData(session)}
	var statsErr, logsErr, appealsErr error

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		data.Stats, statsErr = api.DashboardStats(ctx)
	}()
	go func() {
		defer wg.Done()
		data.RecentLogs, logsErr = api.RecentModLogs(ctx)
	}()
	go func() {
		defer wg.Done()
		data.RecentAppeals, appealsErr = api.RecentAppeals(ctx)
	}()
	wg.Wait()

	for _, err := range []error{statsErr, logsErr, appealsErr} {
		if apiclient.IsAuthRequired(err) {
			s.requireLogin(c, apiclient.MsgAuthRequired)
			return
		}
	}
	if statsErr != nil {
		data.StatsError = loadErrorMessage("stats", statsErr)
	}
	if logsErr != nil {
		data.LogsError = loadErrorMessage("recent logs", logsErr)
	}
	if appealsErr != nil {
		data.AppealsError = loadErrorMessage("recent appeals", appealsErr)
	}

	s.renderFragment(c, http.StatusOK, "dashboard", data)
}
