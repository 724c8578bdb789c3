package apiclient

import (
	"net/url"
	"strconv"
	"strings"
)

// Endpoints builds backend URLs below a base such as http://host:8080/api
type Endpoints struct {
	base string
}

// NewEndpoints trims a trailing slash from base
func NewEndpoints(base string) Endpoints {
	return Endpoints{base: strings.TrimRight(base, "/")}
}

// Base returns the configured base URL
func (e Endpoints) Base() string { return e.base }

func (e Endpoints) join(parts ...string) string {
	var b strings.Builder
	b.WriteString(e.base)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

func seg(s string) string { return url.PathEscape(s) }

func paged(u string, page, size int, extra ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(extra); i += 2 {
		q.Set(extra[i], extra[i+1])
	}
	q.Set("page", strconv.Itoa(max(page, 0)))
	q.Set("size", strconv.Itoa(size))
	return u + "?" + q.Encode()
}

// auth

func (e Endpoints) Login() string { return e.join("auth", "login") }

// dashboard

func (e Endpoints) DashboardStats() string { return e.join("admin", "dashboard", "stats") }
func (e Endpoints) RecentModLogs() string  { return e.join("admin", "dashboard", "recent-logs") }
func (e Endpoints) RecentAppeals() string  { return e.join("admin", "dashboard", "recent-appeals") }

// punishments

func (e Endpoints) Punishments() string { return e.join("admin", "punishments") }
func (e Endpoints) PlayerPunishments(player string) string {
	return e.join("admin", "punishments", "player", seg(player))
}
func (e Endpoints) Ban() string      { return e.join("admin", "punishments", "ban") }
func (e Endpoints) TempBan() string  { return e.join("admin", "punishments", "tempban") }
func (e Endpoints) Mute() string     { return e.join("admin", "punishments", "mute") }
func (e Endpoints) TempMute() string { return e.join("admin", "punishments", "tempmute") }
func (e Endpoints) Unban(player string) string {
	return e.join("admin", "punishments", "unban", seg(player))
}
func (e Endpoints) Unmute(player string) string {
	return e.join("admin", "punishments", "unmute", seg(player))
}
func (e Endpoints) Warn(player string) string {
	return e.join("admin", "punishments", "warn", seg(player))
}
func (e Endpoints) History(player string) string {
	return e.join("admin", "punishments", "history", seg(player))
}

// appeals

func (e Endpoints) Appeals(page, size int) string {
	return paged(e.join("admin", "appeals"), page, size)
}
func (e Endpoints) AppealsByStatus(status string, page, size int) string {
	return paged(e.join("admin", "appeals", "status", seg(status)), page, size)
}
func (e Endpoints) Appeal(id string) string        { return e.join("admin", "appeals", seg(id)) }
func (e Endpoints) ApproveAppeal(id string) string { return e.join("admin", "appeals", seg(id), "approve") }
func (e Endpoints) DenyAppeal(id string) string    { return e.join("admin", "appeals", seg(id), "deny") }
func (e Endpoints) CommentAppeal(id string) string { return e.join("admin", "appeals", seg(id), "comment") }
func (e Endpoints) SubmitAppeal() string           { return e.join("appeals", "submit") }
func (e Endpoints) AppealStatus(playerUUID string) string {
	return e.join("appeals", "status", seg(playerUUID))
}

// modlogs

func (e Endpoints) ModLogs(page, size int) string {
	return paged(e.join("admin", "modlogs"), page, size)
}
func (e Endpoints) ModLogsByPlayer(player string, page, size int) string {
	return paged(e.join("admin", "modlogs", "player", seg(player)), page, size)
}
func (e Endpoints) ModLogsByAction(action string, page, size int) string {
	return paged(e.join("admin", "modlogs", "action", seg(action)), page, size)
}
func (e Endpoints) ModLogsByTimeRange(startMillis, endMillis int64, page, size int) string {
	return paged(e.join("admin", "modlogs", "timerange"), page, size,
		"start", strconv.FormatInt(startMillis, 10),
		"end", strconv.FormatInt(endMillis, 10))
}

// users

func (e Endpoints) Users() string               { return e.join("admin", "users") }
func (e Endpoints) User(username string) string { return e.join("admin", "users", seg(username)) }
func (e Endpoints) UserPassword(username string) string {
	return e.join("admin", "users", seg(username), "password")
}
func (e Endpoints) UserRole(username string) string {
	return e.join("admin", "users", seg(username), "role")
}
