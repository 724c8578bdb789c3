package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/config"
	"github.com/go-while/go-modconsole/internal/database"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	msgUnexpected = "An unexpected error occurred. Please try again or contact the administrator."
)

// NewServer creates a new web server instance
func NewServer(cfg *config.MainConfig, store *database.Store, api *apiclient.Client) (*WebServer, error) {
	if cfg == nil || store == nil || api == nil {
		return nil, errors.New("web: config, store and api client are required")
	}
	if !cfg.Web.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Web.TrustedProxies); err != nil {
		return nil, fmt.Errorf("web: trusted proxies: %w", err)
	}

	server := &WebServer{
		Router:  router,
		Config:  cfg,
		Store:   store,
		API:     api,
		printer: message.NewPrinter(language.English),
	}

	tmpl, err := server.loadTemplates()
	if err != nil {
		return nil, err
	}
	server.templates = tmpl

	staticFS, err := openStaticFS(cfg.Web.StaticDir)
	if err != nil {
		return nil, err
	}
	server.staticFS = staticFS

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if cfg.Web.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	router.Use(server.RequestIDMiddleware())
	router.Use(server.ApacheLogFormat())
	router.Use(gin.CustomRecovery(server.recoverPanic))
	router.Use(secure.New(secureConfig))
	router.Use(server.ReverseProxyMiddleware())

	server.setupRoutes()
	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Console fragments. The shell decides between login and panel itself.
	s.Router.GET("/ui/shell", s.shellFragment)
	s.Router.POST("/ui/login", s.loginSubmit)
	s.Router.POST("/ui/logout", s.logout)

	ui := s.Router.Group("/ui")
	ui.Use(s.SessionRequired())
	{
		ui.GET("/section/:name", s.sectionFragment)

		ui.GET("/dashboard", s.dashboardFragment)

		ui.GET("/punishments", s.punishmentsFragment)
		ui.GET("/punishments/player", s.playerFragment)
		ui.GET("/punishments/history", s.historyFragment)
		ui.POST("/punishments/ban", s.punishSubmit(actionBan))
		ui.POST("/punishments/tempban", s.punishSubmit(actionTempBan))
		ui.POST("/punishments/mute", s.punishSubmit(actionMute))
		ui.POST("/punishments/tempmute", s.punishSubmit(actionTempMute))
		ui.POST("/punishments/unban", s.liftSubmit(actionUnban))
		ui.POST("/punishments/unmute", s.liftSubmit(actionUnmute))
		ui.POST("/punishments/warn", s.warnSubmit)

		ui.GET("/appeals", s.appealsFragment)
		ui.GET("/appeals/:id", s.appealDetailFragment)
		ui.POST("/appeals/:id/approve", s.appealDecisionSubmit(true))
		ui.POST("/appeals/:id/deny", s.appealDecisionSubmit(false))
		ui.POST("/appeals/:id/comment", s.appealCommentSubmit)

		ui.GET("/modlogs", s.modLogsFragment)

		ui.GET("/users", s.usersFragment)
		ui.POST("/users", s.userCreateSubmit)
		ui.POST("/users/password", s.userPasswordSubmit)
		ui.POST("/users/role", s.userRoleSubmit)
		ui.POST("/users/delete", s.userDeleteSubmit)
	}

	// Public appeal pages for players, no login
	s.Router.GET("/appeal", s.appealFormPage)
	s.Router.POST("/appeal", s.appealFormSubmit)
	s.Router.GET("/appeal/status", s.appealStatusPage)

	// Everything else is the SPA shell or one of its assets
	s.Router.NoRoute(s.staticHandler)
}

// Start starts the web server with SSL support if configured.
// It returns http.ErrServerClosed after Shutdown.
func (s *WebServer) Start() error {
	addr := ":" + strconv.Itoa(s.Config.Web.ListenPort)
	s.mux.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mux.Unlock()

	if s.Config.Web.SSL {
		if s.Config.Web.CertFile == "" || s.Config.Web.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", addr)
		return srv.ListenAndServeTLS(s.Config.Web.CertFile, s.Config.Web.KeyFile)
	}
	log.Printf("[WEB]: Starting HTTP server on %s", addr)
	return srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	srv := s.httpServer
	s.mux.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// RequestIDMiddleware tags every request with an id, reusing a sane inbound one
func (s *WebServer) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		reqID, _ := param.Keys[requestIDKey].(string)
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s" %s`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
			reqID,
		)
	})
}

// recoverPanic is the catch-all for anything a handler did not expect
func (s *WebServer) recoverPanic(c *gin.Context, recovered any) {
	log.Printf("[WEB]: panic serving %s %s (request %s): %v",
		c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), recovered)
	if strings.HasPrefix(c.Request.URL.Path, "/ui/") {
		s.renderFragment(c, http.StatusInternalServerError, "error_block", ErrorData{Message: msgUnexpected})
	} else {
		c.String(http.StatusInternalServerError, msgUnexpected)
	}
	c.Abort()
}
