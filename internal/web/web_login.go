package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/database"
)

const (
	msgCredentialsRequired = "Username and password are required"
	msgLockedOut           = "Account temporarily locked due to too many failed attempts. Try again in 15 minutes."
	msgLoginRetry          = "Login error. Please try again."
	msgSessionFailed       = "Failed to create session"
	msgLoggedOut           = "You have been logged out."
)

// shellFragment renders the panel for a live session and the login view otherwise
func (s *WebServer) shellFragment(c *gin.Context) {
	session := s.getWebSession(c)
	if session == nil {
		s.renderFragment(c, http.StatusOK, "login", LoginData{TemplateData: s.baseData(nil)})
		return
	}
	s.renderPanel(c, session)
}

// renderPanel renders the sidebar, header and the container the current section loads into
func (s *WebServer) renderPanel(c *gin.Context, session *SessionData) {
	data := ShellData{
		TemplateData:    s.baseData(session),
		Sections:        console.Sections(),
		Current:         session.Section,
		DashboardReload: s.Config.Web.DashboardReload.Std().Milliseconds(),
	}
	s.renderFragment(c, http.StatusOK, "panel", data)
}

// loginSubmit exchanges the credentials for a backend token and opens a session
func (s *WebServer) loginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		s.renderLoginError(c, username, msgCredentialsRequired)
		return
	}

	ctx := c.Request.Context()
	attemptKey := database.LoginAttemptKey(username, c.ClientIP())

	// Check if user is locked out
	lockedOut, err := s.Store.IsLockedOut(ctx, attemptKey)
	if err != nil {
		log.Printf("[WEB]: lockout check for %s failed: %v", username, err)
		s.renderLoginError(c, username, msgLoginRetry)
		return
	}
	if lockedOut {
		s.renderLoginError(c, username, msgLockedOut)
		return
	}

	result, err := s.API.Login(ctx, username, password)
	if err != nil {
		// an unreachable backend says nothing about the password
		if !errors.Is(err, apiclient.ErrNetwork) {
			if ierr := s.Store.IncrementLoginAttempts(ctx, attemptKey); ierr != nil {
				log.Printf("[WEB]: failed to count login attempt for %s: %v", username, ierr)
			}
		}
		s.renderLoginError(c, username, err.Error())
		return
	}

	if err := s.Store.ResetLoginAttempts(ctx, attemptKey); err != nil {
		log.Printf("[WEB]: failed to reset login attempts for %s: %v", username, err)
	}

	sess, err := s.Store.CreateSession(ctx, result.Username, result.Role.String(), result.Token, c.ClientIP())
	if err != nil {
		log.Printf("[WEB]: %v", err)
		s.renderLoginError(c, username, msgSessionFailed)
		return
	}

	// Set secure session cookie
	s.setSessionCookie(c, sess.ID)
	log.Printf("[WEB]: %s logged in as %s from %s", result.Username, result.Role, c.ClientIP())

	s.renderPanel(c, &SessionData{
		SessionID:      sess.ID,
		Username:       sess.Username,
		Role:           result.Role,
		Section:        console.SectionDashboard,
		TokenExpiresAt: sess.TokenExpiresAt,
	})
}

// logout handles user logout
func (s *WebServer) logout(c *gin.Context) {
	if sessionID, err := c.Cookie(sessionCookieName); err == nil && sessionID != "" {
		if err := s.Store.DeleteSession(c.Request.Context(), sessionID); err != nil {
			log.Printf("[WEB]: logout: %v", err)
		}
		GetAndClearFlash(sessionID)
	}

	// Clear session cookie
	s.clearSessionCookie(c)

	data := LoginData{TemplateData: s.baseData(nil)}
	data.Success = msgLoggedOut
	s.renderFragment(c, http.StatusOK, "login", data)
}

// renderLoginError renders the login view with an error and keeps the username
func (s *WebServer) renderLoginError(c *gin.Context, username, errorMsg string) {
	data := LoginData{TemplateData: s.baseData(nil), Username: username}
	data.Error = errorMsg
	s.renderFragment(c, http.StatusBadRequest, "login", data)
}
