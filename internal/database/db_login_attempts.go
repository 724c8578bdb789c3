package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Login throttling constants
const (
	MaxLoginAttempts = 5                // Max failed login attempts
	LoginLockoutTime = 15 * time.Minute // Lockout time after max attempts
)

// LoginAttemptKey identifies the source of a login by username and address
func LoginAttemptKey(username, remoteIP string) string {
	return username + "|" + remoteIP
}

// IncrementLoginAttempts increases the failed login counter of key
func (s *Store) IncrementLoginAttempts(ctx context.Context, key string) error {
	query := `INSERT INTO login_attempts (attempt_key, attempts, updated_at) VALUES (?, 1, ?)
		ON CONFLICT(attempt_key) DO UPDATE SET attempts = attempts + 1, updated_at = excluded.updated_at`
	if _, err := retryableExec(ctx, s.db, query, key, nowMillis()); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// ResetLoginAttempts clears the failed login counter of key
func (s *Store) ResetLoginAttempts(ctx context.Context, key string) error {
	if _, err := retryableExec(ctx, s.db, `DELETE FROM login_attempts WHERE attempt_key = ?`, key); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// IsLockedOut reports whether key has exceeded MaxLoginAttempts within LoginLockoutTime
func (s *Store) IsLockedOut(ctx context.Context, key string) (bool, error) {
	var attempts int
	var updatedAt int64
	err := retryableQueryRowScan(ctx, s.db, `SELECT attempts, updated_at FROM login_attempts WHERE attempt_key = ?`,
		[]any{key}, &attempts, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read login attempts: %w", err)
	}

	if attempts < MaxLoginAttempts {
		return false, nil
	}
	if time.Since(time.UnixMilli(updatedAt)) < LoginLockoutTime {
		return true, nil // Still locked out
	}
	// Lockout period expired, reset attempts
	return false, s.ResetLoginAttempts(ctx, key)
}

func (s *Store) cleanupLoginAttempts(ctx context.Context) error {
	cutoff := time.Now().Add(-LoginLockoutTime).UnixMilli()
	if _, err := retryableExec(ctx, s.db, `DELETE FROM login_attempts WHERE updated_at < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to clean up login attempts: %w", err)
	}
	return nil
}
