package web

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-modconsole/internal/console"
	"github.com/go-while/go-modconsole/internal/models"
)

var errUsernameRequired = errors.New("Username is required.")

// usersFragment lists the staff accounts
func (s *WebServer) usersFragment(c *gin.Context) {
	session := currentSession(c)
	users, err := session.API().Users(c.Request.Context())
	if err != nil {
		s.loadFailed(c, "users", err)
		return
	}
	s.renderFragment(c, http.StatusOK, "users", UsersData{
		TemplateData: s.flashData(session),
		Users:        users,
		Roles:        models.Roles,
	})
}

// userCreateSubmit creates a staff account
func (s *WebServer) userCreateSubmit(c *gin.Context) {
	session := currentSession(c)
	form := console.NewUserForm{
		Username: strings.TrimSpace(c.PostForm("username")),
		Password: c.PostForm("password"),
		Role:     c.PostForm("role"),
	}
	target := console.SectionUsers.Path()
	role, err := form.Validate()
	if err != nil {
		s.finishAction(c, session, target, "", err)
		return
	}
	err = session.API().CreateUser(c.Request.Context(), form.Username, form.Password, role)
	if err == nil {
		log.Printf("[WEB]: %s created user %s (%s)", session.Username, form.Username, role)
	}
	s.finishAction(c, session, target, "User created successfully.", err)
}

// userPasswordSubmit sets a new password for an account
func (s *WebServer) userPasswordSubmit(c *gin.Context) {
	session := currentSession(c)
	username := strings.TrimSpace(c.PostForm("username"))
	password, confirm := c.PostForm("password"), c.PostForm("confirm")
	target := console.SectionUsers.Path()
	if username == "" {
		s.finishAction(c, session, target, "", errUsernameRequired)
		return
	}
	if err := console.ValidatePasswordChange(password, confirm); err != nil {
		s.finishAction(c, session, target, "", err)
		return
	}
	err := session.API().UpdatePassword(c.Request.Context(), username, password)
	s.finishAction(c, session, target, "Password changed successfully.", err)
}

// userRoleSubmit changes the role of an account
func (s *WebServer) userRoleSubmit(c *gin.Context) {
	session := currentSession(c)
	username := strings.TrimSpace(c.PostForm("username"))
	target := console.SectionUsers.Path()
	if username == "" {
		s.finishAction(c, session, target, "", errUsernameRequired)
		return
	}
	role, err := models.ParseRole(c.PostForm("role"))
	if err != nil {
		s.finishAction(c, session, target, "", err)
		return
	}
	err = session.API().UpdateRole(c.Request.Context(), username, role)
	s.finishAction(c, session, target, "Role changed successfully.", err)
}

// userDeleteSubmit deletes an account and ends its console sessions.
// The logged-in account cannot delete itself.
func (s *WebServer) userDeleteSubmit(c *gin.Context) {
	session := currentSession(c)
	username := strings.TrimSpace(c.PostForm("username"))
	target := console.SectionUsers.Path()
	if username == "" {
		s.finishAction(c, session, target, "", errUsernameRequired)
		return
	}
	if strings.EqualFold(username, session.Username) {
		s.finishAction(c, session, target, "", errors.New(console.MsgCannotDeleteSelf))
		return
	}

	err := session.API().DeleteUser(c.Request.Context(), username)
	if err == nil {
		n, derr := s.Store.DeleteUserSessions(c.Request.Context(), username)
		if derr != nil {
			log.Printf("[WEB]: failed to end sessions of deleted user %s: %v", username, derr)
		} else if n > 0 {
			log.Printf("[WEB]: ended %d sessions of deleted user %s", n, username)
		}
	}
	s.finishAction(c, session, target, "User deleted successfully.", err)
}
