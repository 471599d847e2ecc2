// Package storage provides SQL-backed persistence for users, tasks,
// configuration and the action log. It supports SQLite (default) and
// PostgreSQL, selected by the database URL.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	// database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"mcp-server/internal/logging"
)

// DefaultConfigValues are the configuration entries seeded into a fresh
// database and restored by Reset.
var DefaultConfigValues = map[string]interface{}{
	"max_tasks":        100,
	"default_priority": "medium",
}

// Store wraps the database handle and its repositories
type Store struct {
	db     *sqlx.DB
	driver string
	logger logging.Logger

	Users  *UserRepository
	Tasks  *TaskRepository
	Config *ConfigRepository
	Logs   *LogRepository
}

// resolveDriver maps a database URL to a sql driver name and DSN.
// postgres:// URLs select lib/pq; anything else is treated as a
// SQLite DSN, with an optional sqlite:// prefix stripped.
func resolveDriver(url string) (driver, dsn string) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", url
	case strings.HasPrefix(url, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(url, "sqlite://")
	default:
		return "sqlite3", url
	}
}

// Open connects to the database, applies pending migrations and seeds
// default configuration. logRetention caps the action log size.
func Open(ctx context.Context, url string, logRetention int) (*Store, error) {
	driver, dsn := resolveDriver(url)

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite handles a single writer; serialize access through one
		// connection to avoid SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &Store{
		db:     db,
		driver: driver,
		logger: logging.WithComponent("storage"),
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := s.seedDefaults(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.Users = NewUserRepository(db)
	s.Tasks = NewTaskRepository(db, driver)
	s.Config = NewConfigRepository(db)
	s.Logs = NewLogRepository(db, logRetention)

	s.logger.Info("database ready", "driver", driver)
	return s, nil
}

// migrate applies the embedded schema migrations for the active dialect
func (s *Store) migrate(ctx context.Context) error {
	dialect := "sqlite3"
	dir := "migrations/sqlite"
	if s.driver == "postgres" {
		dialect = "postgres"
		dir = "migrations/postgres"
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db.DB, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// seedDefaults inserts default configuration entries that are missing
func (s *Store) seedDefaults(ctx context.Context) error {
	now := time.Now().UTC()
	for key, value := range DefaultConfigValues {
		encoded, err := MarshalValue(value)
		if err != nil {
			return err
		}

		var count int
		query := s.db.Rebind("SELECT COUNT(*) FROM config WHERE key = ?")
		if err := s.db.GetContext(ctx, &count, query, key); err != nil {
			return fmt.Errorf("failed to check config key %q: %w", key, err)
		}
		if count > 0 {
			continue
		}

		insert := s.db.Rebind("INSERT INTO config (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)")
		if _, err := s.db.ExecContext(ctx, insert, key, encoded, now, now); err != nil {
			return fmt.Errorf("failed to seed config key %q: %w", key, err)
		}
	}
	return nil
}

// Reset deletes every record and restores the default configuration
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reset transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"logs", "tasks", "users", "config"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	now := time.Now().UTC()
	insert := tx.Rebind("INSERT INTO config (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)")
	for key, value := range DefaultConfigValues {
		encoded, err := MarshalValue(value)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, key, encoded, now, now); err != nil {
			return fmt.Errorf("failed to reseed config key %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}

	s.logger.InfoContext(ctx, "database reset to defaults")
	return nil
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}
