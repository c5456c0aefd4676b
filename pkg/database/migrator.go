package database

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go-intake-backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrator applies versioned SQL files ("001_init.sql") exactly once each
type Migrator struct {
	db    *pgxpool.Pool
	files fs.FS
}

func NewMigrator(db *pgxpool.Pool, files fs.FS) *Migrator {
	return &Migrator{db: db, files: files}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// Up applies every pending migration in lexical order and returns the versions applied
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}

	names, err := fs.Glob(m.files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		version := strings.SplitN(name, "_", 2)[0]

		done, err := m.isMigrationApplied(ctx, version)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}

		if err := m.apply(ctx, name, version); err != nil {
			return applied, err
		}
		applied = append(applied, version)
	}

	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, name, version string) error {
	content, err := fs.ReadFile(m.files, name)
	if err != nil {
		return fmt.Errorf("failed to read migration %s: %w", name, err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("migration %s failed: %w", name, err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}

	logger.Log.Info("Migration applied", "file", name)
	return nil
}
