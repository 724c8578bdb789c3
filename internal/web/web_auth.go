package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/database"
	"github.com/go-while/go-modconsole/internal/models"
)

const (
	sessionCookieName = "session_id"
	sessionContextKey = "session"

	// authHeader tells the shell script to swap the whole app back to the login view
	authHeader   = "X-Console-Auth"
	authRequired = "required"
)

// FlashMessage is a one-shot banner carried across a POST redirect
type FlashMessage struct {
	Type    string
	Message string
}

// Global flash message map and mutex
var (
	flashMessages   = make(map[string]FlashMessage)
	flashMessagesMu sync.RWMutex
)

// SetFlashError sets a temporary error message for a session
func SetFlashError(sessionID, msg string) {
	flashMessagesMu.Lock()
	flashMessages[sessionID] = FlashMessage{Type: "error", Message: msg}
	flashMessagesMu.Unlock()
}

// SetFlashSuccess sets a temporary success message for a session
func SetFlashSuccess(sessionID, msg string) {
	flashMessagesMu.Lock()
	flashMessages[sessionID] = FlashMessage{Type: "success", Message: msg}
	flashMessagesMu.Unlock()
}

// GetAndClearFlash retrieves and clears flash messages for a session
func GetAndClearFlash(sessionID string) (success, errorMsg string) {
	flashMessagesMu.Lock()
	fm := flashMessages[sessionID]
	switch fm.Type {
	case "success":
		success = fm.Message
	case "error":
		errorMsg = fm.Message
	}
	delete(flashMessages, sessionID)
	flashMessagesMu.Unlock()
	return
}

// SessionData is the logged-in console session of the current request
type SessionData struct {
	SessionID      string
	Username       string
	Role           models.Role
	Section        console.Section
	TokenExpiresAt time.Time

	client *apiclient.Client
}

// SetError sets a temporary error message in session data
func (s *SessionData) SetError(msg string) {
	SetFlashError(s.SessionID, msg)
}

// SetSuccess sets a temporary success message in session data
func (s *SessionData) SetSuccess(msg string) {
	SetFlashSuccess(s.SessionID, msg)
}

// API is the backend client acting with this session's token
func (s *SessionData) API() *apiclient.Client {
	return s.client
}

// sessionTokens hands the stored token to the API client. A 401 from the
// backend revokes it, which deletes the session row.
type sessionTokens struct {
	store *database.Store
	id    string

	mu    sync.RWMutex
	token string
}

func (t *sessionTokens) Token(context.Context) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

func (t *sessionTokens) Revoke(ctx context.Context) error {
	t.mu.Lock()
	t.token = ""
	t.mu.Unlock()
	// the request may already be cancelled, the row must go anyway
	return t.store.DeleteSession(context.WithoutCancel(ctx), t.id)
}

// getWebSession retrieves session from cookie and returns full session data
func (s *WebServer) getWebSession(c *gin.Context) *SessionData {
	sessionID, err := c.Cookie(sessionCookieName)
	if err != nil || sessionID == "" {
		return nil
	}

	sess, err := s.Store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, database.ErrSessionNotFound) {
			log.Printf("[WEB]: session lookup failed: %v", err)
		}
		return nil
	}

	// the row was just extended, the cookie follows it
	s.setSessionCookie(c, sess.ID)

	section, _ := console.ParseSection(sess.Section)
	return &SessionData{
		SessionID:      sess.ID,
		Username:       sess.Username,
		Role:           models.Role(sess.Role),
		Section:        section,
		TokenExpiresAt: sess.TokenExpiresAt,
		client:         s.API.WithTokens(&sessionTokens{store: s.Store, id: sess.ID, token: sess.Token}),
	}
}

// SessionRequired loads the console session or answers with the login view
func (s *WebServer) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := s.getWebSession(c)
		if session == nil {
			s.requireLogin(c, "")
			return
		}
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// currentSession returns the session stored by SessionRequired
func currentSession(c *gin.Context) *SessionData {
	if v, ok := c.Get(sessionContextKey); ok {
		if sess, ok := v.(*SessionData); ok {
			return sess
		}
	}
	return nil
}

// requireLogin drops the session cookie and swaps the shell to the login view
func (s *WebServer) requireLogin(c *gin.Context, msg string) {
	if sess := currentSession(c); sess != nil {
		GetAndClearFlash(sess.SessionID)
		if s.Config.Web.Debug {
			log.Printf("[WEB]: session of %s ended by the backend", sess.Username)
		}
	}
	s.clearSessionCookie(c)
	c.Header(authHeader, authRequired)
	data := LoginData{TemplateData: s.baseData(nil)}
	data.Error = msg
	s.renderFragment(c, http.StatusUnauthorized, "login", data)
	c.Abort()
}

// setSessionCookie sets a secure session cookie with appropriate flags
func (s *WebServer) setSessionCookie(c *gin.Context, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(s.Store.TTL().Seconds()),
		HttpOnly: true,
		Secure:   s.isSecureRequest(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie
func (s *WebServer) clearSessionCookie(c *gin.Context) {
	// drop a refreshed cookie queued earlier in this request
	c.Writer.Header().Del("Set-Cookie")
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.isSecureRequest(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// isSecureRequest reports whether the browser reached us over https
func (s *WebServer) isSecureRequest(c *gin.Context) bool {
	return c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
}
