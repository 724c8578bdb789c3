package apiclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-while/go-modconsole/internal/models"
)

// ModLogFilter selects which moderation log endpoint is queried
type ModLogFilter string

const (
	FilterNone      ModLogFilter = ""
	FilterPlayer    ModLogFilter = "player"
	FilterAction    ModLogFilter = "action"
	FilterTimeRange ModLogFilter = "timerange"
)

// ModLogQuery is a filter plus its parameters. Start and End bound a time range filter.
type ModLogQuery struct {
	Filter ModLogFilter
	Player string
	Action string
	Start  time.Time
	End    time.Time
}

// Validate reports a filter whose parameter is missing
func (q ModLogQuery) Validate() error {
	switch q.Filter {
	case FilterNone:
	case FilterPlayer:
		if strings.TrimSpace(q.Player) == "" {
			return fmt.Errorf("player name is required")
		}
	case FilterAction:
		if strings.TrimSpace(q.Action) == "" {
			return fmt.Errorf("action is required")
		}
	case FilterTimeRange:
		if q.Start.IsZero() || q.End.IsZero() {
			return fmt.Errorf("start and end date are required")
		}
		if q.End.Before(q.Start) {
			return fmt.Errorf("end date is before start date")
		}
	default:
		return fmt.Errorf("unknown filter %q", q.Filter)
	}
	return nil
}

// URL picks the endpoint for q
func (q ModLogQuery) URL(e Endpoints, page, size int) string {
	switch q.Filter {
	case FilterPlayer:
		return e.ModLogsByPlayer(q.Player, page, size)
	case FilterAction:
		return e.ModLogsByAction(q.Action, page, size)
	case FilterTimeRange:
		return e.ModLogsByTimeRange(q.Start.UnixMilli(), q.End.UnixMilli(), page, size)
	}
	return e.ModLogs(page, size)
}

// ModLogPage is one page of moderation logs
type ModLogPage struct {
	Logs       []models.ModLogEntry
	Pagination *models.PaginationInfo
}

// ModLogs loads one page of logs for q. page is zero-based.
func (c *Client) ModLogs(ctx context.Context, q ModLogQuery, page, size int) (*ModLogPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	resp := c.Get(ctx, q.URL(c.endpoints, page, size))
	if err := resp.Err(); err != nil {
		return nil, err
	}
	out := &ModLogPage{Pagination: resp.Pagination(page, size)}
	if err := resp.DecodeList(&out.Logs, "logs"); err != nil {
		return nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	return out, nil
}
