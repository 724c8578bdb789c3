// Package web provides the HTTP server and console interface for go-modconsole
package web

/*
	### Core Files:
	1. webserver_core_routes.go - server setup, middleware and route table
	2. web_utils.go - template loading, template funcs and fragment rendering
	3. web_auth.go - session cookie, flash messages, per-session API tokens
	4. embedded_static.go - SPA shell and static assets

	### Fragment Handlers (/ui/...):
	5. web_login.go - shell, login and logout
	6. web_navigation.go - sidebar section switching
	7. web_dashboardPage.go, web_punishmentsPage.go, web_appealsPage.go,
	   web_modlogsPage.go, web_usersPage.go - section loaders and actions

	### Public Pages:
	8. web_appealPage.go - appeal form and status lookup for players
*/

import (
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/config"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/database"
	"github.com/go-while/go-modconsole/internal/models"
	"golang.org/x/text/message"
)

// WebServer represents the web server
type WebServer struct {
	Router *gin.Engine
	Config *config.MainConfig
	Store  *database.Store
	API    *apiclient.Client

	templates *template.Template
	staticFS  fs.FS
	printer   *message.Printer

	mux        sync.Mutex
	httpServer *http.Server
}

// TemplateData represents common fragment data
type TemplateData struct {
	Session    *SessionData
	AppVersion string
	Success    string
	Error      string
}

// ShellData backs the logged-in panel
type ShellData struct {
	TemplateData
	Sections        []console.SectionInfo
	Current         console.Section
	DashboardReload int64 // milliseconds, 0 disables the refresh
}

// LoginData backs the login view
type LoginData struct {
	TemplateData
	Username string
}

// DashboardData backs the dashboard section. Each panel carries its own error.
type DashboardData struct {
	TemplateData
	Stats         *models.DashboardStats
	StatsError    string
	RecentLogs    []models.ModLogEntry
	LogsError     string
	RecentAppeals []models.Appeal
	AppealsError  string
}

// PunishmentsData backs the punishment list and its forms
type PunishmentsData struct {
	TemplateData
	Punishments []models.Punishment
}

// PlayerData backs the single player view
type PlayerData struct {
	TemplateData
	Player      string
	Punishments []models.Punishment
}

// HistoryData backs a player's punishment history
type HistoryData struct {
	TemplateData
	Player  string
	History []models.PunishmentHistoryEntry
}

// AppealsData backs the appeals list
type AppealsData struct {
	TemplateData
	Appeals  []models.Appeal
	Status   models.AppealStatus
	Statuses []models.AppealStatus
	Pager    *Pager
}

// AppealDetailData backs one appeal
type AppealDetailData struct {
	TemplateData
	Appeal *models.Appeal
}

// ModLogsData backs the moderation log list
type ModLogsData struct {
	TemplateData
	Logs    []models.ModLogEntry
	Query   modLogForm
	Actions []string
	Pager   *Pager
}

// modLogForm echoes the filter inputs back into the form
type modLogForm struct {
	Filter string
	Player string
	Action string
	Start  string
	End    string
}

// UsersData backs the staff account list
type UsersData struct {
	TemplateData
	Users []models.User
	Roles []models.Role
}

// AppealPageData backs the public appeal pages
type AppealPageData struct {
	AppVersion string
	Form       models.AppealSubmission
	AppealID   string
	Error      string
	UUID       string
	Appeal     *models.Appeal
}
