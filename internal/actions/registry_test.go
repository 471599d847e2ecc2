package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-server/internal/storage"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	store, err := storage.Open(context.Background(), ":memory:", 1000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewRegistry(store)
}

func dispatch(t *testing.T, r *Registry, action string, params map[string]interface{}) interface{} {
	t.Helper()

	result, err := r.Dispatch(context.Background(), action, params)
	require.NoError(t, err)
	return result
}

func TestDispatchUnknownAction(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Dispatch(context.Background(), "explode", nil)
	require.Error(t, err)

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestUserActions(t *testing.T) {
	r := newTestRegistry(t)

	result := dispatch(t, r, "add_user", map[string]interface{}{"username": "alice", "role": "admin"})
	assert.Equal(t, map[string]interface{}{"username": "alice", "added": true}, result)

	// Duplicate usernames are rejected
	_, err := r.Dispatch(context.Background(), "add_user", map[string]interface{}{"username": "alice"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "already exists")

	// Missing username is a validation error
	_, err = r.Dispatch(context.Background(), "add_user", map[string]interface{}{})
	assert.ErrorAs(t, err, &ve)

	dispatch(t, r, "add_user", map[string]interface{}{"username": "bob"})

	usernames := dispatch(t, r, "list_users", nil)
	assert.Equal(t, []string{"alice", "bob"}, usernames)

	result = dispatch(t, r, "remove_user", map[string]interface{}{"username": "bob"})
	assert.Equal(t, map[string]interface{}{"username": "bob", "removed": true}, result)

	_, err = r.Dispatch(context.Background(), "remove_user", map[string]interface{}{"username": "ghost"})
	var nfe *NotFoundError
	assert.ErrorAs(t, err, &nfe)
}

func TestGetUserExistence(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	dispatch(t, r, "add_user", map[string]interface{}{"username": "alice"})
	dispatch(t, r, "add_task", map[string]interface{}{"title": "review", "assigned_to": "alice"})

	result := dispatch(t, r, "get_user", map[string]interface{}{"username": "alice"})
	got, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, got["exists"])
	assert.Equal(t, "user", got["role"])
	assert.Equal(t, 1, got["task_count"])

	// A missing user is reported, not an error
	result, err := r.Dispatch(ctx, "get_user", map[string]interface{}{"username": "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"username": "ghost", "exists": false}, result)
}

func TestTaskActionsLifecycle(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	created := dispatch(t, r, "add_task", map[string]interface{}{"title": "write report"})
	task, ok := created.(*storage.Task)
	require.True(t, ok)
	assert.Equal(t, "medium", task.Priority)
	assert.Equal(t, "pending", task.Status)

	// Partial update touches only the supplied fields
	updated := dispatch(t, r, "update_task", map[string]interface{}{
		"task_id": task.ID,
		"status":  "in_progress",
	})
	after, ok := updated.(*storage.Task)
	require.True(t, ok)
	assert.Equal(t, "write report", after.Title)
	assert.Equal(t, "medium", after.Priority)
	assert.Equal(t, "in_progress", after.Status)

	_, err := r.Dispatch(ctx, "update_task", map[string]interface{}{"task_id": 404, "status": "done"})
	var nfe *NotFoundError
	assert.ErrorAs(t, err, &nfe)

	result := dispatch(t, r, "delete_task", map[string]interface{}{"task_id": task.ID})
	got, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, got["deleted"])

	_, err = r.Dispatch(ctx, "delete_task", map[string]interface{}{"task_id": task.ID})
	assert.ErrorAs(t, err, &nfe)

	tasks := dispatch(t, r, "list_tasks", nil)
	assert.Empty(t, tasks)
}

func TestUpdateTaskExplicitNullClearsAssignee(t *testing.T) {
	r := newTestRegistry(t)

	created := dispatch(t, r, "add_task", map[string]interface{}{
		"title": "handoff", "assigned_to": "alice",
	})
	task, ok := created.(*storage.Task)
	require.True(t, ok)
	require.NotNil(t, task.AssignedTo)

	// A key that is present but null unassigns the task
	updated := dispatch(t, r, "update_task", map[string]interface{}{
		"task_id":     task.ID,
		"assigned_to": nil,
	})
	after, ok := updated.(*storage.Task)
	require.True(t, ok)
	require.Nil(t, after.AssignedTo)

	// An absent key leaves the assignee untouched
	dispatch(t, r, "update_task", map[string]interface{}{
		"task_id": task.ID, "assigned_to": "bob",
	})
	updated = dispatch(t, r, "update_task", map[string]interface{}{
		"task_id": task.ID, "status": "in_progress",
	})
	after, ok = updated.(*storage.Task)
	require.True(t, ok)
	require.NotNil(t, after.AssignedTo)
	assert.Equal(t, "bob", *after.AssignedTo)
}

func TestListTasksFilters(t *testing.T) {
	r := newTestRegistry(t)

	dispatch(t, r, "add_task", map[string]interface{}{"title": "a", "assigned_to": "alice"})
	dispatch(t, r, "add_task", map[string]interface{}{"title": "b", "assigned_to": "bob", "status": "completed"})

	result := dispatch(t, r, "list_tasks", map[string]interface{}{"status": "pending", "assigned_to": "alice"})
	tasks, ok := result.([]storage.Task)
	require.True(t, ok)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)
}

func TestSearchTasks(t *testing.T) {
	r := newTestRegistry(t)

	dispatch(t, r, "add_task", map[string]interface{}{"title": "python basics"})
	dispatch(t, r, "add_task", map[string]interface{}{"title": "go advanced"})

	result := dispatch(t, r, "search_tasks", map[string]interface{}{"query": "PYTHON"})
	tasks, ok := result.([]storage.Task)
	require.True(t, ok)
	require.Len(t, tasks, 1)
	assert.Equal(t, "python basics", tasks[0].Title)

	// Empty query matches everything
	result = dispatch(t, r, "search_tasks", map[string]interface{}{"query": ""})
	tasks, ok = result.([]storage.Task)
	require.True(t, ok)
	assert.Len(t, tasks, 2)
}

func TestConfigActions(t *testing.T) {
	r := newTestRegistry(t)

	result := dispatch(t, r, "update_config", map[string]interface{}{"key": "theme", "value": "dark"})
	assert.Equal(t, map[string]interface{}{"theme": "dark", "updated": true}, result)

	result = dispatch(t, r, "get_config", map[string]interface{}{"key": "theme"})
	assert.Equal(t, map[string]interface{}{"theme": "dark"}, result)

	// An unset key reads back as null, not an error
	result = dispatch(t, r, "get_config", map[string]interface{}{"key": "missing"})
	assert.Equal(t, map[string]interface{}{"missing": nil}, result)

	// No key returns the full map, including seeded defaults
	result = dispatch(t, r, "get_config", nil)
	full, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "dark", full["theme"])
	assert.Equal(t, float64(100), full["max_tasks"])
	assert.Equal(t, "medium", full["default_priority"])
}

func TestCalculate(t *testing.T) {
	r := newTestRegistry(t)

	result := dispatch(t, r, "calculate", map[string]interface{}{
		"operation": "sum", "numbers": []interface{}{1, 2, 3.5},
	})
	assert.Equal(t, map[string]interface{}{"operation": "sum", "result": 6.5}, result)

	result = dispatch(t, r, "calculate", map[string]interface{}{
		"operation": "average", "numbers": []interface{}{},
	})
	assert.Equal(t, map[string]interface{}{"operation": "average", "result": float64(0)}, result)

	result = dispatch(t, r, "calculate", map[string]interface{}{
		"operation": "max", "numbers": []interface{}{},
	})
	assert.Equal(t, map[string]interface{}{"operation": "max", "result": nil}, result)

	result = dispatch(t, r, "calculate", map[string]interface{}{
		"operation": "min", "numbers": []interface{}{4, -2, 9},
	})
	assert.Equal(t, map[string]interface{}{"operation": "min", "result": float64(-2)}, result)

	_, err := r.Dispatch(context.Background(), "calculate", map[string]interface{}{
		"operation": "bogus", "numbers": []interface{}{1},
	})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSummarizeData(t *testing.T) {
	r := newTestRegistry(t)

	dispatch(t, r, "add_user", map[string]interface{}{"username": "alice"})
	dispatch(t, r, "add_task", map[string]interface{}{"title": "a", "priority": "high"})
	dispatch(t, r, "add_task", map[string]interface{}{"title": "b", "status": "completed"})

	result := dispatch(t, r, "summarize_data", nil)
	summary, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 1, summary["users"])
	assert.Equal(t, 2, summary["tasks"])
	assert.Equal(t, map[string]int{"pending": 1, "in_progress": 0, "completed": 1}, summary["tasks_by_status"])
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 0}, summary["tasks_by_priority"])
}

func TestSummarizeDataKeepsFixedBuckets(t *testing.T) {
	r := newTestRegistry(t)

	dispatch(t, r, "add_task", map[string]interface{}{"title": "a"})
	dispatch(t, r, "add_task", map[string]interface{}{
		"title": "b", "status": "archived", "priority": "urgent",
	})

	result := dispatch(t, r, "summarize_data", nil)
	summary, ok := result.(map[string]interface{})
	require.True(t, ok)

	// Free-text statuses and priorities count toward the totals but
	// never add bucket keys
	assert.Equal(t, 2, summary["tasks"])
	assert.Equal(t, map[string]int{"pending": 1, "in_progress": 0, "completed": 0}, summary["tasks_by_status"])
	assert.Equal(t, map[string]int{"high": 0, "medium": 1, "low": 0}, summary["tasks_by_priority"])
}
