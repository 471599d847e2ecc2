package actions

import (
	"context"

	"mcp-server/internal/storage"
)

type addTaskParams struct {
	Title       string  `mapstructure:"title" validate:"required"`
	Description string  `mapstructure:"description"`
	Priority    string  `mapstructure:"priority"`
	Status      string  `mapstructure:"status"`
	AssignedTo  *string `mapstructure:"assigned_to"`
}

type listTasksParams struct {
	Status     string `mapstructure:"status"`
	AssignedTo string `mapstructure:"assigned_to"`
}

type updateTaskParams struct {
	TaskID      int64   `mapstructure:"task_id" validate:"required"`
	Title       *string `mapstructure:"title"`
	Description *string `mapstructure:"description"`
	Priority    *string `mapstructure:"priority"`
	Status      *string `mapstructure:"status"`
	AssignedTo  *string `mapstructure:"assigned_to"`
}

type taskIDParams struct {
	TaskID int64 `mapstructure:"task_id" validate:"required"`
}

type searchTasksParams struct {
	Query string `mapstructure:"query"`
}

// listTasks returns tasks matching all given filters (logical AND)
func (r *Registry) listTasks(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p listTasksParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	tasks, err := r.store.Tasks.List(ctx, p.Status, p.AssignedTo)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// addTask creates a task and returns the full serialized record
func (r *Registry) addTask(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p addTaskParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Priority == "" {
		p.Priority = "medium"
	}
	if p.Status == "" {
		p.Status = "pending"
	}

	task, err := r.store.Tasks.Create(ctx, p.Title, p.Description, p.Priority, p.Status, p.AssignedTo)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// updateTask overwrites only the supplied fields and refreshes the
// update timestamp, returning the full task. An explicit null
// assigned_to unassigns the task; an absent key leaves it alone.
func (r *Registry) updateTask(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p updateTaskParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	clearAssignee := false
	if raw, ok := params["assigned_to"]; ok && raw == nil {
		clearAssignee = true
	}

	task, err := r.store.Tasks.Update(ctx, p.TaskID, storage.TaskUpdate{
		Title:           p.Title,
		Description:     p.Description,
		Priority:        p.Priority,
		Status:          p.Status,
		AssignedTo:      p.AssignedTo,
		ClearAssignedTo: clearAssignee,
	})
	if err != nil {
		return nil, mapStorageError(err)
	}
	return task, nil
}

// deleteTask removes a task by id
func (r *Registry) deleteTask(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p taskIDParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	if err := r.store.Tasks.Delete(ctx, p.TaskID); err != nil {
		return nil, mapStorageError(err)
	}

	return map[string]interface{}{
		"task_id": p.TaskID,
		"deleted": true,
	}, nil
}

// searchTasks matches the query against title or description,
// case-insensitively. An empty query matches everything.
func (r *Registry) searchTasks(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p searchTasksParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	tasks, err := r.store.Tasks.Search(ctx, p.Query)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
