package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// LogRepository persists the bounded action log. Every recorded action
// appends one row; once the row count exceeds the retention cap the
// oldest rows are trimmed inline so the log never grows past the cap.
type LogRepository struct {
	db        *sqlx.DB
	retention int
}

// NewLogRepository creates a log repository with the given retention cap
func NewLogRepository(db *sqlx.DB, retention int) *LogRepository {
	return &LogRepository{db: db, retention: retention}
}

// Retention returns the configured retention cap
func (r *LogRepository) Retention() int {
	return r.retention
}

// Append records one action invocation and trims the log back to the
// retention cap in the same transaction.
func (r *LogRepository) Append(ctx context.Context, action string, payload JSONValue, status string) (*LogEntry, error) {
	if len(payload) == 0 {
		payload = JSONValue("{}")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin log transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	insert := tx.Rebind("INSERT INTO logs (timestamp, action, payload, status) VALUES (?, ?, ?, ?)")
	res, err := tx.ExecContext(ctx, insert, now, action, payload, status)
	if err != nil {
		return nil, fmt.Errorf("failed to append log entry: %w", err)
	}

	entry := &LogEntry{
		Timestamp: now,
		Action:    action,
		Payload:   payload,
		Status:    status,
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}

	var count int
	if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM logs"); err != nil {
		return nil, fmt.Errorf("failed to count log entries: %w", err)
	}

	if excess := count - r.retention; excess > 0 {
		trim := tx.Rebind(`DELETE FROM logs WHERE id IN (
			SELECT id FROM logs ORDER BY id ASC LIMIT ?)`)
		if _, err := tx.ExecContext(ctx, trim, excess); err != nil {
			return nil, fmt.Errorf("failed to trim log entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit log entry: %w", err)
	}
	return entry, nil
}

// List returns log entries ordered oldest to newest. The window is
// taken from the newest end: offset skips the most recent entries and
// limit caps how many are returned. A negative limit returns all
// entries past the offset.
func (r *LogRepository) List(ctx context.Context, limit, offset int) ([]LogEntry, error) {
	query := "SELECT * FROM logs ORDER BY id DESC"
	args := []interface{}{}

	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	entries := []LogEntry{}
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}

	// An unbounded window still honors the offset; apply it here since
	// OFFSET without LIMIT is not portable across dialects.
	if limit < 0 && offset > 0 {
		if offset >= len(entries) {
			entries = []LogEntry{}
		} else {
			entries = entries[offset:]
		}
	}

	// Reverse newest-first into chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// FilterByAction returns all entries for one action, newest first
func (r *LogRepository) FilterByAction(ctx context.Context, action string) ([]LogEntry, error) {
	entries := []LogEntry{}
	query := r.db.Rebind("SELECT * FROM logs WHERE action = ? ORDER BY id DESC")
	if err := r.db.SelectContext(ctx, &entries, query, action); err != nil {
		return nil, fmt.Errorf("failed to filter log entries by action: %w", err)
	}
	return entries, nil
}

// FilterByStatus returns all entries with one status, newest first
func (r *LogRepository) FilterByStatus(ctx context.Context, status string) ([]LogEntry, error) {
	entries := []LogEntry{}
	query := r.db.Rebind("SELECT * FROM logs WHERE status = ? ORDER BY id DESC")
	if err := r.db.SelectContext(ctx, &entries, query, status); err != nil {
		return nil, fmt.Errorf("failed to filter log entries by status: %w", err)
	}
	return entries, nil
}

// Count returns the number of log entries
func (r *LogRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM logs"); err != nil {
		return 0, fmt.Errorf("failed to count log entries: %w", err)
	}
	return count, nil
}

// Clear deletes every log entry
func (r *LogRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM logs"); err != nil {
		return fmt.Errorf("failed to clear log entries: %w", err)
	}
	return nil
}
