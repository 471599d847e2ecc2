package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// TaskRepository persists task records
type TaskRepository struct {
	db     *sqlx.DB
	driver string
}

// NewTaskRepository creates a task repository
func NewTaskRepository(db *sqlx.DB, driver string) *TaskRepository {
	return &TaskRepository{db: db, driver: driver}
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, title, description, priority, status string, assignedTo *string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
		AssignedTo:  assignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if r.driver == "postgres" {
		// lib/pq does not support LastInsertId; read the id back from
		// the insert itself so concurrent creates cannot cross wires.
		query := r.db.Rebind(`INSERT INTO tasks (title, description, priority, status, assigned_to, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
		if err := r.db.QueryRowxContext(ctx, query, title, description, priority, status, assignedTo, now, now).Scan(&task.ID); err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		return task, nil
	}

	insert := r.db.Rebind(`INSERT INTO tasks (title, description, priority, status, assigned_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	res, err := r.db.ExecContext(ctx, insert, title, description, priority, status, assignedTo, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new task id: %w", err)
	}
	task.ID = id
	return task, nil
}

// GetByID fetches one task
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*Task, error) {
	var task Task
	query := r.db.Rebind("SELECT * FROM tasks WHERE id = ?")
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// List returns tasks ordered by creation, optionally filtered by status
// and assignee. Empty filters match everything.
func (r *TaskRepository) List(ctx context.Context, status, assignedTo string) ([]Task, error) {
	query := "SELECT * FROM tasks"
	conditions := []string{}
	args := []interface{}{}

	if status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}
	if assignedTo != "" {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, assignedTo)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	tasks := []Task{}
	if err := r.db.SelectContext(ctx, &tasks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update. Fields left nil are untouched;
// updated_at is refreshed whenever the task exists, even if the update
// carries no field changes.
func (r *TaskRepository) Update(ctx context.Context, id int64, update TaskUpdate) (*Task, error) {
	setClauses := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if update.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *update.Description)
	}
	if update.Priority != nil {
		setClauses = append(setClauses, "priority = ?")
		args = append(args, *update.Priority)
	}
	if update.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *update.Status)
	}
	if update.AssignedTo != nil {
		setClauses = append(setClauses, "assigned_to = ?")
		args = append(args, *update.AssignedTo)
	} else if update.ClearAssignedTo {
		setClauses = append(setClauses, "assigned_to = NULL")
	}

	args = append(args, id)
	query := r.db.Rebind("UPDATE tasks SET " + strings.Join(setClauses, ", ") + " WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

// Delete removes a task by id
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind("DELETE FROM tasks WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// Search returns tasks whose title or description contains the query,
// case-insensitively, ordered by creation.
func (r *TaskRepository) Search(ctx context.Context, query string) ([]Task, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	stmt := r.db.Rebind(`SELECT * FROM tasks
		WHERE LOWER(title) LIKE ? OR LOWER(description) LIKE ?
		ORDER BY id ASC`)

	tasks := []Task{}
	if err := r.db.SelectContext(ctx, &tasks, stmt, pattern, pattern); err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}

// Count returns the number of tasks
func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// CountByField groups tasks by the given column and returns the counts.
// Only "status" and "priority" are accepted.
func (r *TaskRepository) CountByField(ctx context.Context, field string) (map[string]int, error) {
	if field != "status" && field != "priority" {
		return nil, fmt.Errorf("unsupported grouping field %q", field)
	}

	rows, err := r.db.QueryxContext(ctx, "SELECT "+field+", COUNT(*) FROM tasks GROUP BY "+field)
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks by %s: %w", field, err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		counts[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group rows: %w", err)
	}
	return counts, nil
}
