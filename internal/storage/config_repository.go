package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ConfigRepository persists key/value configuration records
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository creates a config repository
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get fetches one configuration entry by key
func (r *ConfigRepository) Get(ctx context.Context, key string) (*ConfigEntry, error) {
	var entry ConfigEntry
	query := r.db.Rebind("SELECT * FROM config WHERE key = ?")
	if err := r.db.GetContext(ctx, &entry, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("config key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}
	return &entry, nil
}

// All returns every configuration entry ordered by key
func (r *ConfigRepository) All(ctx context.Context) ([]ConfigEntry, error) {
	entries := []ConfigEntry{}
	if err := r.db.SelectContext(ctx, &entries, "SELECT * FROM config ORDER BY key ASC"); err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}
	return entries, nil
}

// Set inserts or updates a configuration entry and returns the stored
// record.
func (r *ConfigRepository) Set(ctx context.Context, key string, value JSONValue) (*ConfigEntry, error) {
	now := time.Now().UTC()

	update := r.db.Rebind("UPDATE config SET value = ?, updated_at = ? WHERE key = ?")
	res, err := r.db.ExecContext(ctx, update, value, now, key)
	if err != nil {
		return nil, fmt.Errorf("failed to update config: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check config update: %w", err)
	}
	if affected == 0 {
		insert := r.db.Rebind("INSERT INTO config (key, value, created_at, updated_at) VALUES (?, ?, ?, ?)")
		if _, err := r.db.ExecContext(ctx, insert, key, value, now, now); err != nil {
			return nil, fmt.Errorf("failed to insert config: %w", err)
		}
	}

	return r.Get(ctx, key)
}

// Count returns the number of configuration entries
func (r *ConfigRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM config"); err != nil {
		return 0, fmt.Errorf("failed to count config: %w", err)
	}
	return count, nil
}
