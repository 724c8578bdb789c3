package console

import (
	"html"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/go-while/go-modconsole/internal/models"
)

// Bootstrap contextual colors used by the badges
const (
	ColorDanger    = "danger"
	ColorWarning   = "warning"
	ColorInfo      = "info"
	ColorSuccess   = "success"
	ColorSecondary = "secondary"
)

// PunishmentColor colors a punishment type badge
func PunishmentColor(kind string) string {
	switch strings.ToUpper(kind) {
	case models.PunishBan:
		return ColorDanger
	case models.PunishMute:
		return ColorWarning
	case models.PunishWarning:
		return ColorInfo
	}
	return ColorSecondary
}

// AppealStatusColor colors an appeal status badge
func AppealStatusColor(status models.AppealStatus) string {
	switch status {
	case models.AppealPending:
		return ColorWarning
	case models.AppealApproved:
		return ColorSuccess
	}
	return ColorDanger
}

// RoleColor colors a user role badge
func RoleColor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return ColorDanger
	case models.RoleModerator:
		return ColorWarning
	}
	return ColorInfo
}

// ActionColor colors a moderation log action badge. UNBAN and TEMPBAN count as bans.
func ActionColor(action string) string {
	a := strings.ToUpper(action)
	switch {
	case strings.Contains(a, "BAN"):
		return ColorDanger
	case strings.Contains(a, "MUTE"):
		return ColorWarning
	case strings.Contains(a, "WARN"):
		return ColorInfo
	}
	return ColorSecondary
}

// Truncate shortens s to n characters and appends "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// NL2BR escapes s and turns newlines into <br>
func NL2BR(s string) template.HTML {
	escaped := html.EscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// DateFormat is how timestamps are shown
const DateFormat = "2006-01-02 15:04:05"

// FormatDate renders a millisecond timestamp in loc; zero renders as "N/A"
func FormatDate(ms models.Millis, loc *time.Location) string {
	if ms == 0 {
		return "N/A"
	}
	if loc == nil {
		loc = time.UTC
	}
	return ms.Time().In(loc).Format(DateFormat)
}

// DurationLabel is the duration column of a punishment row: the duration,
// "Warnings: N" for warnings without one, otherwise "Permanent"
func DurationLabel(p models.Punishment) string {
	if p.Duration != "" {
		return p.Duration.String()
	}
	if strings.EqualFold(p.Type, models.PunishWarning) {
		return "Warnings: " + strconv.Itoa(p.Count)
	}
	return "Permanent"
}

// CanUnban reports whether a row offers Unban. Player views hide it for expired rows.
func CanUnban(p models.Punishment) bool {
	return strings.EqualFold(p.Type, models.PunishBan) && !p.Expired
}

// CanUnmute reports whether a row offers Unmute
func CanUnmute(p models.Punishment) bool {
	return strings.EqualFold(p.Type, models.PunishMute) && !p.Expired
}
