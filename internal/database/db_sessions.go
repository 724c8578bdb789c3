package database

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"
)

// SessionIDLength is the length of a hex session id
const SessionIDLength = 64

// Session is a logged-in console browser: who it is, the backend token it
// acts with and the section it last opened.
type Session struct {
	ID             string
	Username       string
	Role           string
	Token          string
	Section        string
	RemoteIP       string
	TokenExpiresAt time.Time // zero when the token carries no exp claim
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// GenerateSecureSessionID creates a cryptographically secure session ID
func GenerateSecureSessionID() (string, error) {
	bytes := make([]byte, SessionIDLength/2) // hex encoding doubles the length
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure session ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession stores the credentials of a successful login and returns the new session
func (s *Store) CreateSession(ctx context.Context, username, role, token, remoteIP string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("refusing to store an empty token")
	}
	id, err := GenerateSecureSessionID()
	if err != nil {
		return nil, err
	}
	sealed, err := s.sealer.seal(token, id)
	if err != nil {
		return nil, fmt.Errorf("failed to seal token: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:             id,
		Username:       username,
		Role:           role,
		Token:          token,
		RemoteIP:       remoteIP,
		TokenExpiresAt: tokenExpiry(token),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.config.TTL),
	}

	query := `INSERT INTO console_sessions
		(id, username, role, token_sealed, section, remote_ip, token_expires_at, created_at, expires_at)
		VALUES (?, ?, ?, ?, '', ?, ?, ?, ?)`
	_, err = retryableExec(ctx, s.db, query, id, username, role, sealed, remoteIP,
		millisOrZero(sess.TokenExpiresAt), now.UnixMilli(), sess.ExpiresAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// GetSession loads a live session and extends its expiration (sliding timeout).
// Unknown, expired and undecryptable sessions return ErrSessionNotFound.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var (
		sess                           Session
		sealed                         []byte
		tokenExp, createdAt, expiresAt int64
	)
	query := `SELECT id, username, role, token_sealed, section, remote_ip, token_expires_at, created_at, expires_at
		FROM console_sessions WHERE id = ? AND expires_at > ?`
	err := retryableQueryRowScan(ctx, s.db, query, []any{id, nowMillis()},
		&sess.ID, &sess.Username, &sess.Role, &sealed, &sess.Section, &sess.RemoteIP,
		&tokenExp, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.Token, err = s.sealer.open(sealed, sess.ID)
	if err != nil {
		// written under another secret; the row is useless now
		if derr := s.DeleteSession(ctx, id); derr != nil {
			log.Printf("[DATABASE]: failed to drop undecryptable session: %v", derr)
		}
		return nil, ErrSessionNotFound
	}
	sess.TokenExpiresAt = timeOrZero(tokenExp)
	sess.CreatedAt = time.UnixMilli(createdAt)

	newExpiresAt := time.Now().Add(s.config.TTL)
	if _, err := retryableExec(ctx, s.db, `UPDATE console_sessions SET expires_at = ? WHERE id = ?`,
		newExpiresAt.UnixMilli(), id); err != nil {
		// Log error but don't fail validation
		log.Printf("[DATABASE]: failed to extend session expiration: %v", err)
		sess.ExpiresAt = time.UnixMilli(expiresAt)
	} else {
		sess.ExpiresAt = newExpiresAt
	}
	return &sess, nil
}

// SetSection remembers the section a session last opened
func (s *Store) SetSection(ctx context.Context, id, section string) error {
	res, err := retryableExec(ctx, s.db, `UPDATE console_sessions SET section = ? WHERE id = ?`, section, id)
	if err != nil {
		return fmt.Errorf("failed to set section: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session. Deleting an unknown session is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := retryableExec(ctx, s.db, `DELETE FROM console_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteUserSessions logs out every browser of username
func (s *Store) DeleteUserSessions(ctx context.Context, username string) (int64, error) {
	res, err := retryableExec(ctx, s.db, `DELETE FROM console_sessions WHERE username = ?`, username)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions of %s: %w", username, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CleanupExpiredSessions removes expired sessions and stale login attempts
func (s *Store) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	res, err := retryableExec(ctx, s.db, `DELETE FROM console_sessions WHERE expires_at <= ?`, nowMillis())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Printf("[DATABASE]: cleaned up %d expired sessions", n)
	}
	if err := s.cleanupLoginAttempts(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// CountSessions returns the number of live sessions
func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := retryableQueryRowScan(ctx, s.db, `SELECT COUNT(*) FROM console_sessions WHERE expires_at > ?`,
		[]any{nowMillis()}, &n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func millisOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timeOrZero(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
