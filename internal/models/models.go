// Package models holds the moderation records the console passes through
// from the backend, plus small view helpers shared by the renderers.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role is a staff account role
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleViewer    Role = "VIEWER"
)

// Roles lists every assignable role in display order
var Roles = []Role{RoleAdmin, RoleModerator, RoleViewer}

// ParseRole accepts a role name in any case
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("Invalid role. Please choose from: %s", RoleNames())
}

// RoleNames joins Roles for messages and prompts
func RoleNames() string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func (r Role) String() string { return string(r) }

// AppealStatus is the appeal lifecycle: PENDING then APPROVED or DENIED
type AppealStatus string

const (
	AppealPending  AppealStatus = "PENDING"
	AppealApproved AppealStatus = "APPROVED"
	AppealDenied   AppealStatus = "DENIED"
)

// AppealStatuses is the filter order used by the appeals list
var AppealStatuses = []AppealStatus{AppealPending, AppealApproved, AppealDenied}

// ParseAppealStatus returns "" for the unfiltered view ("", "all")
func ParseAppealStatus(s string) (AppealStatus, error) {
	v := AppealStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case "", "ALL":
		return "", nil
	case AppealPending, AppealApproved, AppealDenied:
		return v, nil
	}
	return "", fmt.Errorf("unknown appeal status %q", s)
}

// Punishment types as the backend reports them
const (
	PunishBan      = "BAN"
	PunishTempBan  = "TEMPBAN"
	PunishMute     = "MUTE"
	PunishTempMute = "TEMPMUTE"
	PunishWarning  = "WARNING"
)

// ModLogActions feeds the action filter select
var ModLogActions = []string{
	"BAN", "TEMPBAN", "UNBAN", "MUTE", "TEMPMUTE", "UNMUTE",
	"WARN", "KICK", "JAIL", "UNJAIL", "FREEZE", "UNFREEZE",
}

// Millis is a unix timestamp in milliseconds. It decodes from a JSON number or numeric string.
type Millis int64

func (m *Millis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		b = []byte(s)
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", b, err)
	}
	*m = Millis(f)
	return nil
}

// Time converts to time.Time; zero stays zero
func (m Millis) Time() time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m))
}

// Text is a string field the backend sometimes sends as a number or bool.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Punishment is an active or historical ban, mute or warning
type Punishment struct {
	PlayerName string `json:"playerName"`
	PlayerUUID string `json:"playerUUID,omitempty"`
	Type       string `json:"type"`
	Reason     string `json:"reason"`
	Moderator  string `json:"moderator"`
	Duration   Text   `json:"duration"`
	Timestamp  Millis `json:"timestamp"`
	Expiration Millis `json:"expiration,omitempty"`
	Count      int    `json:"count,omitempty"` // warnings only
	Expired    bool   `json:"expired,omitempty"`
}

// PunishmentHistoryEntry is one row of /punishments/history/{player}
type PunishmentHistoryEntry struct {
	Timestamp Millis `json:"timestamp"`
	Moderator string `json:"moderator"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	Duration  Text   `json:"duration"`
	Active    bool   `json:"active"`
}

// PunishmentRequest is the body of ban, tempban, mute and tempmute
type PunishmentRequest struct {
	PlayerName string `json:"playerName"`
	Reason     string `json:"reason"`
	Duration   string `json:"duration,omitempty"`
}

// AppealComment is a staff note on an appeal
type AppealComment struct {
	ID        string `json:"id"`
	StaffName string `json:"staffName"`
	Comment   string `json:"comment"`
	Timestamp Millis `json:"timestamp"`
}

// Appeal is a player's request to lift a punishment
type Appeal struct {
	ID             string          `json:"id"`
	PlayerUUID     string          `json:"playerUUID"`
	PlayerName     string          `json:"playerName"`
	AppealText     string          `json:"appealText"`
	SubmissionTime Millis          `json:"submissionTime"`
	Status         AppealStatus    `json:"status"`
	ContactEmail   string          `json:"contactEmail,omitempty"`
	DiscordTag     string          `json:"discordTag,omitempty"`
	BanReason      string          `json:"banReason,omitempty"`
	AdminResponse  string          `json:"adminResponse,omitempty"`
	Comments       []AppealComment `json:"comments,omitempty"`
}

// IsPending reports whether staff can still comment, approve or deny
func (a *Appeal) IsPending() bool {
	return a.Status == AppealPending
}

// AppealSubmission is the public appeal form body
type AppealSubmission struct {
	PlayerUUID   string `json:"playerUUID"`
	PlayerName   string `json:"playerName"`
	AppealText   string `json:"appealText"`
	ContactEmail string `json:"contactEmail,omitempty"`
	DiscordTag   string `json:"discordTag,omitempty"`
}

// Validate checks the fields the backend rejects when missing
func (s *AppealSubmission) Validate() error {
	if strings.TrimSpace(s.PlayerUUID) == "" || strings.TrimSpace(s.PlayerName) == "" {
		return fmt.Errorf("player UUID and player name are required")
	}
	if strings.TrimSpace(s.AppealText) == "" {
		return fmt.Errorf("appeal text is required")
	}
	return nil
}

// ModLogEntry is an audit record of a staff action
type ModLogEntry struct {
	ID        string `json:"id,omitempty"`
	Moderator string `json:"moderator"`
	Action    string `json:"action"`
	Target    string `json:"target"`
	Reason    string `json:"reason"`
	Duration  Text   `json:"duration,omitempty"`
	Timestamp Millis `json:"timestamp"`
}

// User is a console staff account
type User struct {
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	CreatedAt Millis `json:"createdAt,omitempty"`
}

// DashboardStats backs the four dashboard cards
type DashboardStats struct {
	ActiveBans     int64 `json:"activeBans"`
	ActiveMutes    int64 `json:"activeMutes"`
	PendingAppeals int64 `json:"pendingAppeals"`
	TotalUsers     int64 `json:"totalUsers"`
}

// LoginResult is what the console keeps after a successful login
type LoginResult struct {
	Token    string
	Username string
	Role     Role
}
