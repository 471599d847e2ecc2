package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserRepository persists user records
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. Usernames are unique; a duplicate returns
// ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, username, role string, metadata JSONValue) (*User, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM users WHERE username = ?")
	if err := r.db.GetContext(ctx, &count, query, username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("user %q: %w", username, ErrAlreadyExists)
	}

	if len(metadata) == 0 {
		metadata = JSONValue("{}")
	}

	now := time.Now().UTC()
	insert := r.db.Rebind("INSERT INTO users (username, role, metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?)")
	res, err := r.db.ExecContext(ctx, insert, username, role, metadata, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		// lib/pq does not support LastInsertId; fetch the row back instead
		return r.GetByUsername(ctx, username)
	}

	return &User{
		ID:        id,
		Username:  username,
		Role:      role,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// List returns all users ordered by creation (id ascending)
func (r *UserRepository) List(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := r.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByUsername fetches one user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	query := r.db.Rebind("SELECT * FROM users WHERE username = ?")
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Delete removes a user by username
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	query := r.db.Rebind("DELETE FROM users WHERE username = ?")
	res, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
