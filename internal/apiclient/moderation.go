package apiclient

import (
	"context"
	"strings"

	"github.com/go-while/go-modconsole/internal/models"
)

const (
	msgLoginFailed  = "Login failed. Please check your credentials."
	msgLoginNoToken = "Login failed: Invalid server response (missing token)"
)

// Login exchanges credentials for a token. The token may sit at the top level or under "data";
// the role defaults to ADMIN when the backend omits it.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	resp := c.Post(ctx, c.endpoints.Login(), map[string]string{
		"username": username,
		"password": password,
	})
	if !resp.Success {
		if resp.Error == "" {
			return nil, &Error{Kind: resp.Kind, Status: resp.Status, Message: msgLoginFailed}
		}
		return nil, resp.Err()
	}

	token, role := resp.String("token"), resp.String("role")
	if token == "" {
		var data struct {
			Token string `json:"token"`
			Role  string `json:"role"`
		}
		if err := resp.Decode("data", &data); err == nil {
			token = data.Token
			if data.Role != "" {
				role = data.Role
			}
		}
	}
	if token == "" {
		return nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: msgLoginNoToken}
	}

	result := &models.LoginResult{Token: token, Username: username, Role: models.RoleAdmin}
	if role != "" {
		result.Role = models.Role(strings.ToUpper(role))
	}
	return result, nil
}

// DashboardStats loads the four dashboard counters
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	resp := c.Get(ctx, c.endpoints.DashboardStats())
	if err := resp.Err(); err != nil {
		return nil, err
	}
	stats := &models.DashboardStats{}
	if err := resp.DecodeData(stats); err != nil {
		return nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	return stats, nil
}

// RecentModLogs loads the dashboard's latest moderation actions
func (c *Client) RecentModLogs(ctx context.Context) ([]models.ModLogEntry, error) {
	var logs []models.ModLogEntry
	if err := c.getList(ctx, c.endpoints.RecentModLogs(), &logs, "logs"); err != nil {
		return nil, err
	}
	return logs, nil
}

// RecentAppeals loads the dashboard's latest appeals
func (c *Client) RecentAppeals(ctx context.Context) ([]models.Appeal, error) {
	var appeals []models.Appeal
	if err := c.getList(ctx, c.endpoints.RecentAppeals(), &appeals, "appeals"); err != nil {
		return nil, err
	}
	return appeals, nil
}

// Punishments lists active punishments
func (c *Client) Punishments(ctx context.Context) ([]models.Punishment, error) {
	var list []models.Punishment
	if err := c.getList(ctx, c.endpoints.Punishments(), &list, "punishments"); err != nil {
		return nil, err
	}
	return list, nil
}

// PlayerPunishments lists one player's punishments. The returned name is the backend's
// spelling when it reports one.
func (c *Client) PlayerPunishments(ctx context.Context, player string) (string, []models.Punishment, error) {
	resp := c.Get(ctx, c.endpoints.PlayerPunishments(player))
	if err := resp.Err(); err != nil {
		return player, nil, err
	}
	var list []models.Punishment
	if err := resp.DecodeList(&list, "punishments"); err != nil {
		return player, nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	if name := resp.String("player"); name != "" {
		player = name
	}
	return player, list, nil
}

// Ban bans a player; an empty duration is sent as "permanent"
func (c *Client) Ban(ctx context.Context, req models.PunishmentRequest) error {
	if req.Duration == "" {
		req.Duration = "permanent"
	}
	return c.Post(ctx, c.endpoints.Ban(), req).Err()
}

// TempBan bans a player for req.Duration
func (c *Client) TempBan(ctx context.Context, req models.PunishmentRequest) error {
	return c.Post(ctx, c.endpoints.TempBan(), req).Err()
}

// Mute mutes a player; an empty duration is sent as "permanent"
func (c *Client) Mute(ctx context.Context, req models.PunishmentRequest) error {
	if req.Duration == "" {
		req.Duration = "permanent"
	}
	return c.Post(ctx, c.endpoints.Mute(), req).Err()
}

// TempMute mutes a player for req.Duration
func (c *Client) TempMute(ctx context.Context, req models.PunishmentRequest) error {
	return c.Post(ctx, c.endpoints.TempMute(), req).Err()
}

func (c *Client) Unban(ctx context.Context, player string) error {
	return c.Post(ctx, c.endpoints.Unban(player), nil).Err()
}

func (c *Client) Unmute(ctx context.Context, player string) error {
	return c.Post(ctx, c.endpoints.Unmute(player), nil).Err()
}

// Warn issues a warning and returns the player's warning count when reported
func (c *Client) Warn(ctx context.Context, player, reason string) (int, error) {
	resp := c.Post(ctx, c.endpoints.Warn(player), map[string]string{"reason": reason})
	if err := resp.Err(); err != nil {
		return 0, err
	}
	n, _ := resp.Int("warningCount")
	return n, nil
}

// History loads a player's punishment history
func (c *Client) History(ctx context.Context, player string) ([]models.PunishmentHistoryEntry, error) {
	var list []models.PunishmentHistoryEntry
	if err := c.getList(ctx, c.endpoints.History(player), &list, "history"); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) getList(ctx context.Context, url string, v any, keys ...string) error {
	resp := c.Get(ctx, url)
	if err := resp.Err(); err != nil {
		return err
	}
	if err := resp.DecodeList(v, keys...); err != nil {
		return &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	return nil
}
