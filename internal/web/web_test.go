package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/config"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/database"
	"github.com/go-while/go-modconsole/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// fakeBackend plays the moderation REST API
type fakeBackend struct {
	mu     sync.Mutex
	calls  []backendCall
	routes map[string]fakeReply
}

type fakeReply struct {
	status int
	body   string
}

func (fb *fakeBackend) on(method, path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.routes[method+" "+path] = fakeReply{status, body}
}

func (fb *fakeBackend) total() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.calls)
}

func (fb *fakeBackend) called(method, path string) []backendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []backendCall
	for _, c := range fb.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

type testEnv struct {
	srv     *WebServer
	store   *database.Store
	backend *fakeBackend
}

func newTestEnv(t *testing.T, mutate ...func(*config.MainConfig)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fb := &fakeBackend{routes: map[string]fakeReply{}}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := backendCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &call.Body)
		}
		fb.mu.Lock()
		fb.calls = append(fb.calls, call)
		reply, ok := fb.routes[r.Method+" "+r.URL.Path]
		fb.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("<html>no route</html>"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.status)
		_, _ = w.Write([]byte(reply.body))
	}))
	t.Cleanup(ts.Close)

	cfg := config.NewDefaultConfig()
	cfg.API.BaseURL = ts.URL + "/api"
	cfg.Session.DBPath = filepath.Join(t.TempDir(), "sessions.db")
	cfg.AppVersion = "test"
	for _, m := range mutate {
		m(cfg)
	}

	storeCfg := database.DefaultStoreConfig()
	storeCfg.Path = cfg.Session.DBPath
	store, err := database.Open(context.Background(), storeCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv, err := NewServer(cfg, store, apiclient.New(cfg.API.BaseURL))
	require.NoError(t, err)
	return &testEnv{srv: srv, store: store, backend: fb}
}

func (e *testEnv) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "192.0.2.10:40000"
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(w, req)
	return w
}

// login signs in as admin and returns the session cookie
func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	e.backend.on("POST", "/api/auth/login", 200, `{"success":true,"data":{"token":"tok-1","role":"ADMIN"}}`)
	w := e.do("POST", "/ui/login", url.Values{"username": {"admin"}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestPing(t *testing.T) {
	e := newTestEnv(t)
	w := e.do("GET", "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestStaticHandler(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html":    "<html>entry</html>",
		"js/app.js":     "console.log(1)",
		"css/site.css":  "body{}",
		"data.json":     "{}",
		"img/logo.png":  "png",
		"favicon.ico":   "ico",
		"notes.weird":   "plain",
		"img/photo.jpg": "jpg",
	}
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	e := newTestEnv(t, func(cfg *config.MainConfig) { cfg.Web.StaticDir = dir })

	tests := []struct {
		path, contentType, body string
	}{
		{"/", "text/html", "<html>entry</html>"},
		{"/js/app.js", "application/javascript", "console.log(1)"},
		{"/css/site.css", "text/css", "body{}"},
		{"/data.json", "application/json", "{}"},
		{"/img/logo.png", "image/png", "png"},
		{"/img/photo.jpg", "image/jpeg", "jpg"},
		{"/favicon.ico", "image/x-icon", "ico"},
		{"/notes.weird", "text/html", "plain"},
		{"/some/client/route", "text/html", "<html>entry</html>"},
		{"/../../etc/passwd", "text/html", "<html>entry</html>"},
	}
	for _, tc := range tests {
		w := e.do("GET", tc.path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, tc.path)
		assert.Equal(t, tc.contentType, w.Header().Get("Content-Type"), tc.path)
		assert.Equal(t, tc.body, w.Body.String(), tc.path)
	}

	require.NoError(t, os.Remove(filepath.Join(dir, "index.html")))
	w := e.do("GET", "/missing.css", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "404 Not Found", w.Body.String())
}

func TestEmbeddedShell(t *testing.T) {
	e := newTestEnv(t)
	w := e.do("GET", "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="app"`)

	w = e.do("GET", "/js/console.js", nil, nil)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))

	files, err := ListEmbeddedFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "static/index.html")
}

func TestStaticPath(t *testing.T) {
	assert.Equal(t, "index.html", staticPath("/"))
	assert.Equal(t, "index.html", staticPath(""))
	assert.Equal(t, "docs/index.html", staticPath("/docs/"))
	assert.Equal(t, "etc/passwd", staticPath("/../etc/passwd"))
	assert.Equal(t, "js/a.js", staticPath("/js/./a.js"))
}

func TestShellWithoutSession(t *testing.T) {
	e := newTestEnv(t)
	w := e.do("GET", "/ui/shell", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="login-view"`)
	assert.Empty(t, w.Header().Get(authHeader))

	w = e.do("GET", "/ui/dashboard", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, authRequired, w.Header().Get(authHeader))
	assert.Contains(t, w.Body.String(), `id="login-view"`)
}

func TestLoginAndLogout(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	assert.True(t, cookie.HttpOnly)
	assert.Len(t, cookie.Value, database.SessionIDLength)

	login := e.backend.called("POST", "/api/auth/login")
	require.Len(t, login, 1)
	assert.Equal(t, "admin", login[0].Body["username"])
	assert.Equal(t, "secret", login[0].Body["password"])

	w := e.do("GET", "/ui/shell", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="panel-view"`)
	assert.Contains(t, body, `<span id="user-info">admin</span>`)
	assert.Contains(t, body, `data-initial="/ui/section/dashboard"`)

	e.backend.on("GET", "/api/admin/punishments", 200, `{"punishments":[]}`)
	w = e.do("GET", "/ui/punishments", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bearer tok-1", e.backend.called("GET", "/api/admin/punishments")[0].Auth)

	w = e.do("POST", "/ui/logout", url.Values{}, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), msgLoggedOut)
	_, err := e.store.GetSession(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestLoginFailures(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("POST", "/ui/login", url.Values{"username": {"admin"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), msgCredentialsRequired)
	assert.Empty(t, e.backend.called("POST", "/api/auth/login"))

	e.backend.on("POST", "/api/auth/login", 200, `{"success":true}`)
	w = e.do("POST", "/ui/login", url.Values{"username": {"admin"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Login failed: Invalid server response (missing token)")

	e.backend.on("POST", "/api/auth/login", 401, `{"success":false,"error":"Invalid username or password"}`)
	w = e.do("POST", "/ui/login", url.Values{"username": {"admin"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
	assert.Contains(t, w.Body.String(), `value="admin"`)
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginLockout(t *testing.T) {
	e := newTestEnv(t)
	e.backend.on("POST", "/api/auth/login", 401, `{"error":"Invalid username or password"}`)
	form := url.Values{"username": {"mallory"}, "password": {"guess"}}

	for i := 0; i < database.MaxLoginAttempts; i++ {
		w := e.do("POST", "/ui/login", form, nil)
		require.Contains(t, w.Body.String(), "Invalid username or password")
	}
	w := e.do("POST", "/ui/login", form, nil)
	assert.Contains(t, w.Body.String(), msgLockedOut)
	assert.Len(t, e.backend.called("POST", "/api/auth/login"), database.MaxLoginAttempts)
}

func TestDashboard(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/dashboard/stats", 200,
		`{"success":true,"data":{"activeBans":1234,"activeMutes":5,"pendingAppeals":2,"totalUsers":3}}`)
	e.backend.on("GET", "/api/admin/dashboard/recent-logs", 200,
		`{"success":true,"data":[{"moderator":"mod1","action":"TEMPBAN","target":"Steve","reason":"griefing","timestamp":1700000000000}]}`)
	e.backend.on("GET", "/api/admin/dashboard/recent-appeals", 500, `{}`)

	w := e.do("GET", "/ui/dashboard", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "1,234")
	assert.Contains(t, body, `<span class="badge bg-danger">TEMPBAN</span>`)
	assert.Contains(t, body, "Failed to load recent appeals: Server returned error code: 500")
	assert.Contains(t, body, "data-dashboard")
}

func TestBackendUnauthorizedEndsSession(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/punishments", 401, `{"error":"expired"}`)

	w := e.do("GET", "/ui/punishments", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, authRequired, w.Header().Get(authHeader))
	assert.Contains(t, w.Body.String(), apiclient.MsgAuthRequired)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)

	_, err := e.store.GetSession(context.Background(), cookie.Value)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)

	w = e.do("GET", "/ui/users", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, e.backend.called("GET", "/api/admin/users"))
}

func TestSessionCookieFollowsSlidingExpiry(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/users", 200, `[]`)

	for _, target := range []string{"/ui/shell", "/ui/users"} {
		w := e.do("GET", target, nil, cookie)
		require.Equal(t, http.StatusOK, w.Code, target)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1, target)
		assert.Equal(t, cookie.Value, cookies[0].Value, target)
		assert.Equal(t, int(e.store.TTL().Seconds()), cookies[0].MaxAge, target)
		assert.True(t, cookies[0].HttpOnly, target)
	}
}

func TestPanelShowsTokenExpiry(t *testing.T) {
	e := newTestEnv(t)
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-signing-key"))
	require.NoError(t, err)

	e.backend.on("POST", "/api/auth/login", 200, `{"success":true,"data":{"token":"`+token+`","role":"ADMIN"}}`)
	w := e.do("POST", "/ui/login", url.Values{"username": {"admin"}, "password": {"secret"}}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	want := exp.Local().Format(console.DateFormat)
	assert.Contains(t, w.Body.String(), `id="token-expiry"`)
	assert.Contains(t, w.Body.String(), want)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	w = e.do("GET", "/ui/shell", nil, cookies[0])
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), want)
}

func TestPanelWithoutTokenExpiry(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	w := e.do("GET", "/ui/shell", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `id="token-expiry"`)
}

func TestSectionNavigation(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/appeals", 200, `{"appeals":[]}`)

	w := e.do("GET", "/ui/section/appeals", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "appeals", w.Header().Get("X-Console-Section"))
	assert.Contains(t, w.Body.String(), "No appeals found.")

	w = e.do("GET", "/ui/shell", nil, cookie)
	assert.Contains(t, w.Body.String(), `data-initial="/ui/section/appeals"`)

	e.backend.on("GET", "/api/admin/dashboard/stats", 200, `{"data":{}}`)
	e.backend.on("GET", "/api/admin/dashboard/recent-logs", 200, `{"data":[]}`)
	e.backend.on("GET", "/api/admin/dashboard/recent-appeals", 200, `{"data":[]}`)
	w = e.do("GET", "/ui/section/settings", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dashboard", w.Header().Get("X-Console-Section"))
	sess, err := e.store.GetSession(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "dashboard", sess.Section)
}

func TestPunishmentActions(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/punishments", 200,
		`{"punishments":[{"playerName":"Steve","type":"BAN","reason":"x","timestamp":1},{"playerName":"Alex","type":"MUTE","reason":"y","duration":"1h"}]}`)
	e.backend.on("POST", "/api/admin/punishments/ban", 200, `{"success":true}`)
	e.backend.on("POST", "/api/admin/punishments/warn/Steve", 200, `{"success":true,"warningCount":3}`)

	w := e.do("POST", "/ui/punishments/ban", url.Values{"playerName": {"Steve"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/ui/punishments", w.Header().Get("Location"))
	assert.Empty(t, e.backend.called("POST", "/api/admin/punishments/ban"))
	w = e.do("GET", "/ui/punishments", nil, cookie)
	assert.Contains(t, w.Body.String(), "Player name and reason are required.")

	w = e.do("POST", "/ui/punishments/tempban", url.Values{"playerName": {"Steve"}, "reason": {"x"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = e.do("GET", "/ui/punishments", nil, cookie)
	assert.Contains(t, w.Body.String(), "Duration is required for temporary punishments.")

	w = e.do("POST", "/ui/punishments/ban", url.Values{"playerName": {" Steve "}, "reason": {"griefing"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	calls := e.backend.called("POST", "/api/admin/punishments/ban")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"playerName": "Steve", "reason": "griefing", "duration": "permanent"}, calls[0].Body)

	w = e.do("GET", "/ui/punishments", nil, cookie)
	body := w.Body.String()
	assert.Contains(t, body, "Player banned successfully.")
	assert.Contains(t, body, `data-confirm="Unban Steve?"`)
	assert.NotContains(t, body, `data-confirm="Unban Alex?"`)
	assert.Contains(t, body, `data-confirm="Unmute Alex?"`)
	assert.Contains(t, body, `href="/ui/punishments/player?player=Steve"`)

	w = e.do("POST", "/ui/punishments/warn", url.Values{"playerName": {"Steve"}, "reason": {"spam"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = e.do("GET", "/ui/punishments", nil, cookie)
	assert.Contains(t, w.Body.String(), "This is warning #3")
}

func TestLiftReturnsToPlayerView(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("POST", "/api/admin/punishments/unban/Steve", 200, `{"success":true}`)

	form := url.Values{"playerName": {"Steve"}, "return": {"/ui/punishments/player?player=Steve"}}
	w := e.do("POST", "/ui/punishments/unban", form, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/ui/punishments/player?player=Steve", w.Header().Get("Location"))
	assert.Len(t, e.backend.called("POST", "/api/admin/punishments/unban/Steve"), 1)

	form.Set("return", "https://evil.example/ui/")
	w = e.do("POST", "/ui/punishments/unban", form, cookie)
	assert.Equal(t, "/ui/punishments", w.Header().Get("Location"))
}

func TestPlayerView(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/punishments/player/steve", 200, `{"player":"Steve","punishments":[
		{"type":"BAN","reason":"old","expired":true},
		{"type":"MUTE","reason":"chat"},
		{"type":"WARNING","reason":"spam","count":2}]}`)

	w := e.do("GET", "/ui/punishments/player?player=steve", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Punishments of Steve")
	assert.Contains(t, body, "Warnings: 2")
	assert.NotContains(t, body, `action="/ui/punishments/unban"`)
	assert.Contains(t, body, `action="/ui/punishments/unmute"`)

	w = e.do("GET", "/ui/punishments/player", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppealsPagination(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/appeals", 200,
		`{"appeals":[{"id":"a1","playerName":"Steve","appealText":"please","status":"PENDING"}],"pagination":{"page":2,"totalPages":5}}`)

	w := e.do("GET", "/ui/appeals?page=2", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	calls := e.backend.called("GET", "/api/admin/appeals")
	require.Len(t, calls, 1)
	assert.Equal(t, "page=2&size=10", calls[0].Query)

	body := w.Body.String()
	labels := regexp.MustCompile(`data-load>(\d+)</a>`).FindAllStringSubmatch(body, -1)
	var got []string
	for _, m := range labels {
		got = append(got, m[1])
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)
	assert.Regexp(t, `<li class="page-item active">\s*<a class="page-link" href="/ui/appeals\?page=2" data-load>3</a>`, body)
	assert.Contains(t, body, `<span class="badge bg-warning">PENDING</span>`)

	w = e.do("GET", "/ui/appeals?status=bogus", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAppealDetailAndDecision(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/appeals/a1", 200,
		`{"appeal":{"id":"a1","playerName":"Steve","appealText":"line1\nline2 <b>","status":"PENDING","comments":[{"staffName":"mod","comment":"hm"}]}}`)
	e.backend.on("POST", "/api/admin/appeals/a1/approve", 200, `{"success":true}`)

	w := e.do("GET", "/ui/appeals/a1", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "line1<br>line2 &lt;b&gt;")
	assert.Contains(t, body, `action="/ui/appeals/a1/approve"`)

	w = e.do("POST", "/ui/appeals/a1/approve", url.Values{"response": {" "}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/ui/appeals/a1", w.Header().Get("Location"))
	assert.Empty(t, e.backend.called("POST", "/api/admin/appeals/a1/approve"))

	w = e.do("POST", "/ui/appeals/a1/approve", url.Values{"response": {"welcome back"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	calls := e.backend.called("POST", "/api/admin/appeals/a1/approve")
	require.Len(t, calls, 1)
	assert.Equal(t, "welcome back", calls[0].Body["response"])
	assert.Equal(t, "welcome back", calls[0].Body["adminResponse"])

	e.backend.on("GET", "/api/admin/appeals/a1", 200, `{"appeal":{"id":"a1","status":"APPROVED"}}`)
	w = e.do("GET", "/ui/appeals/a1", nil, cookie)
	body = w.Body.String()
	assert.Contains(t, body, "Appeal approved successfully.")
	assert.NotContains(t, body, `action="/ui/appeals/a1/approve"`)

	w = e.do("POST", "/ui/appeals/a1/comment", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = e.do("GET", "/ui/appeals/a1", nil, cookie)
	assert.Contains(t, w.Body.String(), "Comment text is required.")
}

func TestModLogs(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)

	w := e.do("GET", "/ui/modlogs?filter=player", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "player name is required")
	assert.Equal(t, 1, e.backend.total(), "only the login reached the backend")

	e.backend.on("GET", "/api/admin/modlogs/action/KICK", 200,
		`{"logs":[{"moderator":"m","action":"KICK","target":"Steve","reason":"afk"}],"totalPages":1}`)
	w = e.do("GET", "/ui/modlogs?filter=action&action=kick", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<span class="badge bg-secondary">KICK</span>`)
	calls := e.backend.called("GET", "/api/admin/modlogs/action/KICK")
	require.Len(t, calls, 1)
	assert.Equal(t, "page=0&size=10", calls[0].Query)
}

func TestUsers(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.login(t)
	e.backend.on("GET", "/api/admin/users", 200, `[{"username":"admin","role":"ADMIN"},{"username":"bob","role":"VIEWER"}]`)
	e.backend.on("DELETE", "/api/admin/users/bob", 200, `{"success":true}`)
	e.backend.on("PUT", "/api/admin/users/bob/role", 200, `{"success":true}`)

	w := e.do("GET", "/ui/users", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<span class="badge bg-info">VIEWER</span>`)
	assert.Equal(t, 1, strings.Count(body, `action="/ui/users/delete"`), "no delete button for the own account")

	w = e.do("POST", "/ui/users/delete", url.Values{"username": {"ADMIN"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, e.backend.called("DELETE", "/api/admin/users/ADMIN"))
	w = e.do("GET", "/ui/users", nil, cookie)
	assert.Contains(t, w.Body.String(), "You cannot delete your own account.")

	w = e.do("POST", "/ui/users/role", url.Values{"username": {"bob"}, "role": {"OWNER"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = e.do("GET", "/ui/users", nil, cookie)
	assert.Contains(t, w.Body.String(), "Invalid role. Please choose from: ADMIN, MODERATOR, VIEWER")

	w = e.do("POST", "/ui/users/role", url.Values{"username": {"bob"}, "role": {"moderator"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	calls := e.backend.called("PUT", "/api/admin/users/bob/role")
	require.Len(t, calls, 1)
	assert.Equal(t, "MODERATOR", calls[0].Body["newRole"])

	w = e.do("POST", "/ui/users/password", url.Values{"username": {"bob"}, "password": {"a"}, "confirm": {"b"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	w = e.do("GET", "/ui/users", nil, cookie)
	assert.Contains(t, w.Body.String(), "Passwords do not match.")

	ctx := context.Background()
	_, err := e.store.CreateSession(ctx, "bob", "VIEWER", "tok-bob", "192.0.2.11")
	require.NoError(t, err)
	w = e.do("POST", "/ui/users/delete", url.Values{"username": {"bob"}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Len(t, e.backend.called("DELETE", "/api/admin/users/bob"), 1)
	n, err := e.store.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "bob's session is gone, admin's remains")
}

func TestPublicAppeal(t *testing.T) {
	e := newTestEnv(t)

	w := e.do("GET", "/appeal?uuid=u-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="u-1"`)

	form := url.Values{"playerUUID": {"u-1"}, "playerName": {"Steve"}, "appealText": {"sorry"}}
	e.backend.on("POST", "/api/appeals/submit", 429, `{"success":false,"error":"You can only submit one appeal every 24 hours"}`)
	w = e.do("POST", "/appeal", form, nil)
	assert.Contains(t, w.Body.String(), "You can only submit one appeal every 24 hours")

	e.backend.on("POST", "/api/appeals/submit", 200, `{"success":true,"appealId":"ap-9"}`)
	w = e.do("POST", "/appeal", form, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<strong id="appeal-id">ap-9</strong>`)
	calls := e.backend.called("POST", "/api/appeals/submit")
	assert.Equal(t, "sorry", calls[len(calls)-1].Body["appealText"])
	assert.Empty(t, calls[len(calls)-1].Auth)

	w = e.do("POST", "/appeal", url.Values{"playerUUID": {"u-1"}}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.backend.on("GET", "/api/appeals/status/u-1", 200, `{"appeal":{"status":"DENIED","submissionTime":1700000000000}}`)
	w = e.do("GET", "/appeal/status?uuid=u-1", nil, nil)
	assert.Contains(t, w.Body.String(), `<span class="badge bg-danger">DENIED</span>`)
}

func TestPagerHrefs(t *testing.T) {
	var nilPager *Pager
	assert.False(t, nilPager.Visible())
	assert.False(t, newPager(models.NewPaginationInfo(0, 10, 3, 1), "/ui/modlogs", nil).Visible())

	p := newPager(models.NewPaginationInfo(1, 10, 25, 3), "/ui/modlogs",
		url.Values{"filter": {"player"}, "player": {"Steve"}})
	require.True(t, p.Visible())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, "/ui/modlogs?filter=player&page=0&player=Steve", p.PrevHref())
	assert.Equal(t, "/ui/modlogs?filter=player&page=2&player=Steve", p.NextHref())

	links := p.Links()
	require.Len(t, links, 3)
	assert.Equal(t, PagerLink{Label: 2, Href: "/ui/modlogs?filter=player&page=1&player=Steve", Active: true}, links[1])
	assert.Equal(t, 1, links[0].Label)
	assert.False(t, links[2].Active)
}

func TestReturnTarget(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		ret, want string
	}{
		{"", "/ui/users"},
		{"/ui/punishments/player?player=Steve", "/ui/punishments/player?player=Steve"},
		{"https://evil.example/ui/x", "/ui/users"},
		{"//evil.example/ui/x", "/ui/users"},
		{"/ui/../admin", "/ui/users"},
		{"/appeal", "/ui/users"},
	}
	for _, tc := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body := url.Values{"return": {tc.ret}}.Encode()
		c.Request = httptest.NewRequest("POST", "/ui/users/delete", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, tc.want, returnTarget(c, "/ui/users"), tc.ret)
	}
}

func TestFlashIsOneShot(t *testing.T) {
	SetFlashError("sid", "boom")
	SetFlashSuccess("sid", "done")
	success, errMsg := GetAndClearFlash("sid")
	assert.Equal(t, "done", success)
	assert.Empty(t, errMsg)
	success, errMsg = GetAndClearFlash("sid")
	assert.Empty(t, success)
	assert.Empty(t, errMsg)
}
