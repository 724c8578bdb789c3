package web

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/database"
)

// sectionFragment switches the sidebar section. The choice is stored on the
// session so a reload reopens it; unknown names land on the dashboard.
func (s *WebServer) sectionFragment(c *gin.Context) {
	session := currentSession(c)
	section, ok := console.ParseSection(c.Param("name"))
	if !ok && s.Config.Web.Debug {
		log.Printf("[WEB]: unknown section %q, showing dashboard", c.Param("name"))
	}

	if err := s.Store.SetSection(c.Request.Context(), session.SessionID, section.String()); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			s.requireLogin(c, "")
			return
		}
		log.Printf("[WEB]: failed to persist section for %s: %v", session.Username, err)
	}
	session.Section = section
	c.Header("X-Console-Section", section.String())

	s.loaderFor(section)(c)
}

// loaderFor maps a section to the handler rendering its content
func (s *WebServer) loaderFor(section console.Section) gin.HandlerFunc {
	switch section {
	case console.SectionPunishments:
		return s.punishmentsFragment
	case console.SectionAppeals:
		return s.appealsFragment
	case console.SectionModLogs:
		return s.modLogsFragment
	case console.SectionUsers:
		return s.usersFragment
	}
	return s.dashboardFragment
}
