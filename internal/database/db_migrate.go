package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
)

func migrate(ctx context.Context, db *sql.DB) error {
	return migrateFS(ctx, db, embeddedMigrationsFS)
}

// migrateFS applies every migration of fsys that schema_migrations does not list yet
func migrateFS(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return err
	}
	migrations, err := getEmbeddedMigrationFiles(fsys)
	if err != nil {
		return err
	}
	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	for _, migration := range migrations {
		if applied[migration.FileName] {
			continue
		}
		if err := applyMigration(ctx, db, fsys, migration); err != nil {
			return err
		}
		log.Printf("[DATABASE]: applied migration %s", migration.FileName)
	}
	return nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// getAppliedMigrations returns the set of applied migration filenames
func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.QueryContext(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("failed to scan migration filename: %w", err)
		}
		applied[fname] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration rows: %w", err)
	}
	return applied, nil
}

// applyMigration runs one migration and records it in the same transaction
func applyMigration(ctx context.Context, db *sql.DB, fsys fs.FS, migration *MigrationFile) error {
	content, err := readMigrationContent(fsys, migration)
	if err != nil {
		return err
	}
	return retryableTransactionExec(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, content); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.FileName, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (filename) VALUES (?)`, migration.FileName); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.FileName, err)
		}
		return nil
	})
}
