package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templatesFS embed.FS

// truncateLength is how much of a reason or appeal text fits in a table cell
const truncateLength = 50

// ErrorData backs the inline error block
type ErrorData struct {
	Message string
}

// loadTemplates parses every fragment once at startup
func (s *WebServer) loadTemplates() (*template.Template, error) {
	tmpl, err := template.New("console").Funcs(s.templateFuncs()).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return tmpl, nil
}

func (s *WebServer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(ms models.Millis) string {
			return console.FormatDate(ms, time.Local)
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "N/A"
			}
			return t.Local().Format(console.DateFormat)
		},
		"truncate": func(s string) string {
			return console.Truncate(s, truncateLength)
		},
		"nl2br":           console.NL2BR,
		"punishmentColor": console.PunishmentColor,
		"appealColor":     console.AppealStatusColor,
		"roleColor":       console.RoleColor,
		"actionColor":     console.ActionColor,
		"durationLabel":   console.DurationLabel,
		"canUnban":        console.CanUnban,
		"canUnmute":       console.CanUnmute,
		"number": func(n int64) string {
			return s.printer.Sprintf("%d", n)
		},
		"title": func(v any) string {
			// a Caser keeps state, one per call
			return cases.Title(language.English).String(strings.ToLower(fmt.Sprint(v)))
		},
		"playerPath": playerPath,
		"appealPath": appealPath,
		"historyPath": func(name string) string {
			return console.SectionPunishments.Path() + "/history?" + url.Values{"player": {name}}.Encode()
		},
		"errorData": func(msg string) ErrorData {
			return ErrorData{Message: msg}
		},
		"isSelf": func(session *SessionData, username string) bool {
			return session != nil && strings.EqualFold(session.Username, username)
		},
	}
}

// baseData fills the fields every fragment shares
func (s *WebServer) baseData(session *SessionData) TemplateData {
	return TemplateData{
		Session:    session,
		AppVersion: s.Config.AppVersion,
	}
}

// flashData is baseData plus the pending flash of the session
func (s *WebServer) flashData(session *SessionData) TemplateData {
	data := s.baseData(session)
	if session != nil {
		data.Success, data.Error = GetAndClearFlash(session.SessionID)
	}
	return data
}

// renderFragment executes a named template into a buffer so a template
// error never leaves half a fragment on the wire
func (s *WebServer) renderFragment(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("[WEB]: Error rendering template %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Template error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// renderError renders the inline error block
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string) {
	s.renderFragment(c, statusCode, "error_block", ErrorData{Message: message})
}

// loadFailed handles a failed section load. A lost token ends the session,
// anything else becomes "Failed to load <what>: <msg>".
func (s *WebServer) loadFailed(c *gin.Context, what string, err error) {
	if apiclient.IsAuthRequired(err) {
		s.requireLogin(c, apiclient.MsgAuthRequired)
		return
	}
	log.Printf("[WEB]: load %s failed (request %s): %v", what, c.GetString(requestIDKey), err)
	s.renderError(c, http.StatusBadGateway, loadErrorMessage(what, err))
}

func loadErrorMessage(what string, err error) string {
	return "Failed to load " + what + ": " + err.Error()
}

// finishAction ends a POST with a flash and a redirect (post/redirect/get).
// The redirected GET renders the refreshed section together with the banner.
func (s *WebServer) finishAction(c *gin.Context, session *SessionData, target, success string, err error) {
	switch {
	case apiclient.IsAuthRequired(err):
		s.requireLogin(c, apiclient.MsgAuthRequired)
		return
	case err != nil:
		session.SetError(err.Error())
	case success != "":
		session.SetSuccess(success)
	}
	c.Redirect(http.StatusSeeOther, returnTarget(c, target))
}

// returnTarget honours a "return" form field pointing back into the console
func returnTarget(c *gin.Context, fallback string) string {
	ret := c.PostForm("return")
	if ret == "" {
		return fallback
	}
	u, err := url.Parse(ret)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/ui/") || strings.Contains(u.Path, "..") {
		return fallback
	}
	return u.RequestURI()
}

// Pager binds pagination info to the route and filter it pages through
type Pager struct {
	Info  *models.PaginationInfo
	Path  string
	Query url.Values
}

// PagerLink is one rendered pagination entry
type PagerLink struct {
	Label  int
	Href   string
	Active bool
}

func newPager(info *models.PaginationInfo, path string, query url.Values) *Pager {
	return &Pager{Info: info, Path: path, Query: query}
}

// Visible is false when everything fits on one page
func (p *Pager) Visible() bool {
	return p != nil && p.Info.Visible()
}

func (p *Pager) href(page int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("page", fmt.Sprint(page))
	return p.Path + "?" + q.Encode()
}

func (p *Pager) Links() []PagerLink {
	links := p.Info.Links()
	out := make([]PagerLink, len(links))
	for i, l := range links {
		out[i] = PagerLink{Label: l.Label, Href: p.href(l.Page), Active: l.Active}
	}
	return out
}

func (p *Pager) HasPrev() bool    { return p.Info.HasPrev }
func (p *Pager) HasNext() bool    { return p.Info.HasNext }
func (p *Pager) PrevHref() string { return p.href(p.Info.PrevPage) }
func (p *Pager) NextHref() string { return p.href(p.Info.NextPage) }
