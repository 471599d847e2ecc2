package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONValue stores an arbitrary JSON document in a TEXT column while
// round-tripping through API responses without re-encoding.
type JSONValue json.RawMessage

// Value implements driver.Valuer
func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return "{}", nil
	}
	return string(v), nil
}

// Scan implements sql.Scanner
func (v *JSONValue) Scan(src interface{}) error {
	switch s := src.(type) {
	case nil:
		*v = JSONValue("null")
		return nil
	case []byte:
		*v = JSONValue(append([]byte(nil), s...))
		return nil
	case string:
		*v = JSONValue(s)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONValue", src)
	}
}

// MarshalJSON emits the stored document verbatim
func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

// UnmarshalJSON stores the incoming document verbatim
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	*v = JSONValue(append([]byte(nil), data...))
	return nil
}

// MarshalValue encodes an arbitrary value into a JSONValue
func MarshalValue(value interface{}) (JSONValue, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return JSONValue(data), nil
}

// User is a registered user record
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Role      string    `db:"role" json:"role"`
	Metadata  JSONValue `db:"metadata" json:"metadata"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Task is a work item record
type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Priority    string    `db:"priority" json:"priority"`
	Status      string    `db:"status" json:"status"`
	AssignedTo  *string   `db:"assigned_to" json:"assigned_to"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ConfigEntry is a key/value configuration record. Values are stored
// as JSON documents so callers can persist any shape.
type ConfigEntry struct {
	ID        int64     `db:"id" json:"id"`
	Key       string    `db:"key" json:"key"`
	Value     JSONValue `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LogEntry is one recorded action invocation
type LogEntry struct {
	ID        int64     `db:"id" json:"id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Action    string    `db:"action" json:"action"`
	Payload   JSONValue `db:"payload" json:"payload"`
	Status    string    `db:"status" json:"status"`
}

// TaskUpdate carries the mutable task fields for a partial update.
// Nil fields are left untouched; ClearAssignedTo removes the assignee
// (a nil AssignedTo alone means "not supplied", not "unassign").
type TaskUpdate struct {
	Title           *string
	Description     *string
	Priority        *string
	Status          *string
	AssignedTo      *string
	ClearAssignedTo bool
}

// IsEmpty reports whether the update changes nothing
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Status == nil && u.AssignedTo == nil && !u.ClearAssignedTo
}
