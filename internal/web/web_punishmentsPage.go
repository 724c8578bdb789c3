package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/apiclient"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/models"
)

// punishAction names a punishment form
type punishAction string

const (
	actionBan      punishAction = "ban"
	actionTempBan  punishAction = "tempban"
	actionMute     punishAction = "mute"
	actionTempMute punishAction = "tempmute"
	actionUnban    punishAction = "unban"
	actionUnmute   punishAction = "unmute"
)

var punishSuccess = map[punishAction]string{
	actionBan:      "Player banned successfully.",
	actionTempBan:  "Player temporarily banned successfully.",
	actionMute:     "Player muted successfully.",
	actionTempMute: "Player temporarily muted successfully.",
	actionUnban:    "Player unbanned successfully.",
	actionUnmute:   "Player unmuted successfully.",
}

func (a punishAction) temporary() bool {
	return a == actionTempBan || a == actionTempMute
}

// punishmentsFragment lists the active punishments
func (s *WebServer) punishmentsFragment(c *gin.Context) {
	session := currentSession(c)
	list, err := session.API().Punishments(c.Request.Context())
	if err != nil {
		s.loadFailed(c, "punishments", err)
		return
	}
	s.renderFragment(c, http.StatusOK, "punishments", PunishmentsData{
		TemplateData: s.flashData(session),
		Punishments:  list,
	})
}

// playerFragment shows every punishment of one player
func (s *WebServer) playerFragment(c *gin.Context) {
	session := currentSession(c)
	player := strings.TrimSpace(c.Query("player"))
	if player == "" {
		s.renderError(c, http.StatusBadRequest, console.MsgPlayerRequired)
		return
	}
	name, list, err := session.API().PlayerPunishments(c.Request.Context(), player)
	if err != nil {
		s.loadFailed(c, "player punishments", err)
		return
	}
	s.renderFragment(c, http.StatusOK, "player", PlayerData{
		TemplateData: s.flashData(session),
		Player:       name,
		Punishments:  list,
	})
}

// historyFragment shows the punishment history of one player
func (s *WebServer) historyFragment(c *gin.Context) {
	session := currentSession(c)
	player := strings.TrimSpace(c.Query("player"))
	if player == "" {
		s.renderError(c, http.StatusBadRequest, console.MsgPlayerRequired)
		return
	}
	history, err := session.API().History(c.Request.Context(), player)
	if err != nil {
		s.loadFailed(c, "punishment history", err)
		return
	}
	s.renderFragment(c, http.StatusOK, "history", HistoryData{
		TemplateData: s.flashData(session),
		Player:       player,
		History:      history,
	})
}

// punishSubmit handles the ban, tempban, mute and tempmute forms
func (s *WebServer) punishSubmit(action punishAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		form := console.PunishmentForm{
			PlayerName: c.PostForm("playerName"),
			Reason:     c.PostForm("reason"),
			Duration:   c.PostForm("duration"),
		}
		target := console.SectionPunishments.Path()
		if err := form.Validate(action.temporary()); err != nil {
			s.finishAction(c, session, target, "", err)
			return
		}

		err := s.punish(c.Request.Context(), session.API(), action, form.Request())
		s.finishAction(c, session, target, punishSuccess[action], err)
	}
}

func (s *WebServer) punish(ctx context.Context, api *apiclient.Client, action punishAction, req models.PunishmentRequest) error {
	switch action {
	case actionBan:
		return api.Ban(ctx, req)
	case actionTempBan:
		return api.TempBan(ctx, req)
	case actionMute:
		return api.Mute(ctx, req)
	case actionTempMute:
		return api.TempMute(ctx, req)
	}
	return fmt.Errorf("unknown punishment %q", action)
}

// liftSubmit handles unban and unmute. The player view posts a return target
// so the refreshed page is the one the moderator came from.
func (s *WebServer) liftSubmit(action punishAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		player := strings.TrimSpace(c.PostForm("playerName"))
		target := console.SectionPunishments.Path()
		if player == "" {
			s.finishAction(c, session, target, "", errors.New(console.MsgPlayerRequired))
			return
		}

		var err error
		if action == actionUnban {
			err = session.API().Unban(c.Request.Context(), player)
		} else {
			err = session.API().Unmute(c.Request.Context(), player)
		}
		s.finishAction(c, session, target, punishSuccess[action], err)
	}
}

// warnSubmit warns a player and reports the running warning count
func (s *WebServer) warnSubmit(c *gin.Context) {
	session := currentSession(c)
	form := console.PunishmentForm{
		PlayerName: c.PostForm("playerName"),
		Reason:     c.PostForm("reason"),
	}
	target := console.SectionPunishments.Path()
	if err := form.Validate(false); err != nil {
		s.finishAction(c, session, target, "", err)
		return
	}

	req := form.Request()
	count, err := session.API().Warn(c.Request.Context(), req.PlayerName, req.Reason)
	msg := "Player warned successfully."
	if count > 0 {
		msg = fmt.Sprintf("Player warned successfully. This is warning #%d", count)
	}
	s.finishAction(c, session, target, msg, err)
}

// playerPath is the player view of name, used as a return target by the templates
func playerPath(name string) string {
	return console.SectionPunishments.Path() + "/player?" + url.Values{"player": {name}}.Encode()
}
