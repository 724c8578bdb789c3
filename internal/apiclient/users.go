package apiclient

import (
	"context"

	"github.com/go-while/go-modconsole/internal/models"
)

// Users lists staff accounts
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.getList(ctx, c.endpoints.Users(), &users, "users"); err != nil {
		return nil, err
	}
	return users, nil
}

// User loads a single account
func (c *Client) User(ctx context.Context, username string) (*models.User, error) {
	resp := c.Get(ctx, c.endpoints.User(username))
	if err := resp.Err(); err != nil {
		return nil, err
	}
	user := &models.User{}
	err := resp.Decode("user", user)
	if err != nil {
		err = resp.DecodeData(user)
	}
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Status: resp.Status, Message: MsgMalformed}
	}
	return user, nil
}

// CreateUser adds a staff account
func (c *Client) CreateUser(ctx context.Context, username, password string, role models.Role) error {
	return c.Post(ctx, c.endpoints.Users(), map[string]string{
		"username": username,
		"password": password,
		"role":     string(role),
	}).Err()
}

// UpdatePassword sends the new password under both field names in use
func (c *Client) UpdatePassword(ctx context.Context, username, password string) error {
	return c.Put(ctx, c.endpoints.UserPassword(username), map[string]string{
		"newPassword": password,
		"password":    password,
	}).Err()
}

// UpdateRole sends the new role under both field names in use
func (c *Client) UpdateRole(ctx context.Context, username string, role models.Role) error {
	return c.Put(ctx, c.endpoints.UserRole(username), map[string]string{
		"newRole": string(role),
		"role":    string(role),
	}).Err()
}

// DeleteUser removes a staff account
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.Delete(ctx, c.endpoints.User(username)).Err()
}
