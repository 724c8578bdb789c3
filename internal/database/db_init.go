package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"time"
)

// StoreConfig represents session store configuration
type StoreConfig struct {
	// Path of the SQLite file
	Path string

	// Secret the token sealing key is derived from. Empty means a random
	// per-process key: sessions then do not survive a restart.
	Secret string

	// Sliding lifetime of a session row
	TTL time.Duration

	// Connection pool settings
	MaxOpenConns int
	MaxIdleConns int

	// Performance settings
	WALMode  bool   // Write-Ahead Logging
	SyncMode string // OFF, NORMAL, FULL
}

// DefaultStoreConfig returns default store configuration
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Path:         "data/sessions.db",
		TTL:          7 * 24 * time.Hour,
		MaxOpenConns: 8,
		MaxIdleConns: 4,
		WALMode:      true,
		SyncMode:     "NORMAL",
	}
}

// Open opens (and creates) the session store, applies migrations and
// prepares the token sealer.
func Open(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	if cfg == nil {
		cfg = DefaultStoreConfig()
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("session store path is empty")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultStoreConfig().TTL
	}
	log.Printf("[DATABASE]: opening session store at: %s", cfg.Path)

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := createDirIfNotExists(dir); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	fail := func(stage string, err error) (*Store, error) {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to %s: %w; also failed to close: %v", stage, err, cerr)
		}
		return nil, fmt.Errorf("failed to %s: %w", stage, err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fail("ping session store", err)
	}
	if err := applySQLitePragmas(ctx, db, cfg); err != nil {
		return fail("apply SQLite pragmas", err)
	}
	if err := migrate(ctx, db); err != nil {
		return fail("migrate session store", err)
	}

	s := &Store{db: db, config: cfg}
	s.sealer, err = s.loadSealer(ctx, cfg.Secret)
	if err != nil {
		return fail("prepare token sealer", err)
	}
	return s, nil
}

// applySQLitePragmas applies configuration pragmas to the connection
func applySQLitePragmas(ctx context.Context, conn *sql.DB, cfg *StoreConfig) error {
	syncMode := cfg.SyncMode
	if syncMode == "" {
		syncMode = "NORMAL"
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA synchronous = %s", syncMode),
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 30000", // 30 seconds
	}
	if cfg.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}

	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}
	return nil
}
