// Package database provides the console's session store for go-modconsole.
//
// Sessions live in a single SQLite file. The backend token of each session is
// sealed with XChaCha20-Poly1305 before it is written, so a copied database
// file does not leak usable credentials without the configured secret.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
)

// ErrSessionNotFound is returned for unknown, expired or undecryptable sessions
var ErrSessionNotFound = errors.New("session not found")

// Store is the session database
type Store struct {
	db     *sql.DB
	sealer *sealer
	config *StoreConfig

	closeOnce sync.Once
}

// DB returns the underlying connection for maintenance tools
func (s *Store) DB() *sql.DB {
	return s.db
}

// TTL is the sliding lifetime of a session row
func (s *Store) TTL() time.Duration {
	return s.config.TTL
}

// Close closes the database once
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		log.Printf("[DATABASE]: closing session store %s", s.config.Path)
		if cerr := s.db.Close(); cerr != nil {
			err = fmt.Errorf("close session store: %w", cerr)
		}
	})
	return err
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
