package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"auction-backend/internal/logger"

	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Migrator struct {
	db     *sql.DB
	ownsDB bool
}

func NewMigrator(dbURL string) (*Migrator, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Migrator{db: db, ownsDB: true}, nil
}

// NewMigratorFromDB runs migrations over an existing connection pool. Close
// leaves the pool open.
func NewMigratorFromDB(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) Run(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// ReadDir returns entries sorted by filename, which is the apply order.
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migrationName := entry.Name()

		applied, err := m.isMigrationApplied(ctx, migrationName)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if applied {
			logger.Debug("migration already applied, skipping", map[string]any{"migration": migrationName})
			continue
		}

		migrationSQL, err := migrationsFS.ReadFile("migrations/" + migrationName)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", migrationName, err)
		}

		logger.Info("applying migration", map[string]any{"migration": migrationName})

		if err := m.apply(ctx, migrationName, string(migrationSQL)); err != nil {
			return err
		}

		logger.Info("migration applied", map[string]any{"migration": migrationName})
	}

	return nil
}

// apply executes one migration and records it in the same transaction.
func (m *Migrator) apply(ctx context.Context, name, migrationSQL string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, migrationSQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())",
		name,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}
	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) isMigrationApplied(ctx context.Context, name string) (bool, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE name = $1",
		name,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (m *Migrator) Close() error {
	if !m.ownsDB {
		return nil
	}
	return m.db.Close()
}
