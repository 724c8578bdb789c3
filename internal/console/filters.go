package console

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/models"
)

// DateLayout is the format of the time range inputs
const DateLayout = "2006-01-02"

// Validation messages shown inline by the section forms
const (
	MsgPlayerReasonRequired = "Player name and reason are required."
	MsgDurationRequired     = "Duration is required for temporary punishments."
	MsgResponseRequired     = "Response is required."
	MsgCommentRequired      = "Comment text is required."
	MsgPasswordsMismatch    = "Passwords do not match."
	MsgPasswordRequired     = "Password and confirmation are required."
	MsgUserFieldsRequired   = "Username, password and role are required."
	MsgCannotDeleteSelf     = "You cannot delete your own account."
	MsgPlayerRequired       = "Player name is required."
)

var (
	errDateRange = errors.New("start and end date are required")
	errAction    = errors.New("action is required")
	errPlayer    = errors.New("player name is required")
)

// ParsePage reads a zero-based page number; anything invalid is page 0
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseModLogQuery reads the modlog filter form: filter=player&player=...,
// filter=action&action=..., filter=timerange&start=YYYY-MM-DD&end=YYYY-MM-DD.
// The end date is inclusive, so the query runs until midnight after it.
func ParseModLogQuery(v url.Values) (apiclient.ModLogQuery, error) {
	q := apiclient.ModLogQuery{Filter: apiclient.ModLogFilter(strings.ToLower(strings.TrimSpace(v.Get("filter"))))}
	switch q.Filter {
	case apiclient.FilterNone, "none", "all":
		q.Filter = apiclient.FilterNone
	case apiclient.FilterPlayer:
		q.Player = strings.TrimSpace(v.Get("player"))
		if q.Player == "" {
			return q, errPlayer
		}
	case apiclient.FilterAction:
		q.Action = strings.ToUpper(strings.TrimSpace(v.Get("action")))
		if q.Action == "" {
			return q, errAction
		}
	case apiclient.FilterTimeRange:
		startStr, endStr := strings.TrimSpace(v.Get("start")), strings.TrimSpace(v.Get("end"))
		if startStr == "" || endStr == "" {
			return q, errDateRange
		}
		start, err := time.ParseInLocation(DateLayout, startStr, time.UTC)
		if err != nil {
			return q, fmt.Errorf("invalid start date %q", startStr)
		}
		end, err := time.ParseInLocation(DateLayout, endStr, time.UTC)
		if err != nil {
			return q, fmt.Errorf("invalid end date %q", endStr)
		}
		q.Start, q.End = start, end.AddDate(0, 0, 1)
	default:
		return q, fmt.Errorf("unknown filter %q", q.Filter)
	}
	return q, q.Validate()
}

// ModLogQueryValues is the inverse of ParseModLogQuery, used by pagination links
func ModLogQueryValues(q apiclient.ModLogQuery) url.Values {
	v := url.Values{}
	switch q.Filter {
	case apiclient.FilterPlayer:
		v.Set("filter", string(q.Filter))
		v.Set("player", q.Player)
	case apiclient.FilterAction:
		v.Set("filter", string(q.Filter))
		v.Set("action", q.Action)
	case apiclient.FilterTimeRange:
		v.Set("filter", string(q.Filter))
		v.Set("start", q.Start.UTC().Format(DateLayout))
		v.Set("end", q.End.UTC().AddDate(0, 0, -1).Format(DateLayout))
	}
	return v
}

// PunishmentForm is a ban, mute, tempban or tempmute submission
type PunishmentForm struct {
	PlayerName string
	Reason     string
	Duration   string
}

// Validate applies the form rules. temporary requires a duration.
func (f PunishmentForm) Validate(temporary bool) error {
	if strings.TrimSpace(f.PlayerName) == "" || strings.TrimSpace(f.Reason) == "" {
		return errors.New(MsgPlayerReasonRequired)
	}
	if temporary && strings.TrimSpace(f.Duration) == "" {
		return errors.New(MsgDurationRequired)
	}
	return nil
}

// Request converts the form into the backend body
func (f PunishmentForm) Request() models.PunishmentRequest {
	return models.PunishmentRequest{
		PlayerName: strings.TrimSpace(f.PlayerName),
		Reason:     strings.TrimSpace(f.Reason),
		Duration:   strings.TrimSpace(f.Duration),
	}
}

// ValidatePasswordChange checks the change password form
func ValidatePasswordChange(password, confirm string) error {
	if password == "" || confirm == "" {
		return errors.New(MsgPasswordRequired)
	}
	if password != confirm {
		return errors.New(MsgPasswordsMismatch)
	}
	return nil
}

// NewUserForm is the create user submission
type NewUserForm struct {
	Username string
	Password string
	Role     string
}

// Validate checks every field and returns the parsed role
func (f NewUserForm) Validate() (models.Role, error) {
	if strings.TrimSpace(f.Username) == "" || f.Password == "" || strings.TrimSpace(f.Role) == "" {
		return "", errors.New(MsgUserFieldsRequired)
	}
	return models.ParseRole(f.Role)
}
