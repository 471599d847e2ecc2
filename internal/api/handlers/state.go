package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"mcp-server/internal/api/response"
	"mcp-server/internal/storage"
)

var validEntities = map[string]bool{
	"users":  true,
	"tasks":  true,
	"config": true,
	"logs":   true,
}

// State returns the full memory snapshot, or a filtered slice when
// entity/limit/offset/status parameters are present.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	entity := query.Get("entity")
	status := query.Get("status")

	limit, err := queryInt(r, "limit")
	if err != nil {
		response.WriteErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		response.WriteErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	if entity != "" && !validEntities[entity] {
		response.WriteErrorStatus(w, http.StatusBadRequest,
			"invalid entity '"+entity+"'; valid options: users, tasks, config, logs")
		return
	}

	// No filters at all: full snapshot
	if entity == "" && limit == nil && offset == nil && status == "" {
		snapshot, err := h.snapshot(ctx)
		if err != nil {
			writeActionError(w, err)
			return
		}
		response.WriteSuccess(w, snapshot, "Memory snapshot retrieved")
		return
	}

	var data map[string]interface{}
	if entity != "" {
		data, err = h.entityView(ctx, entity, status, limit, offset)
	} else {
		data, err = h.paginatedSnapshot(ctx, status, limit, offset)
	}
	if err != nil {
		writeActionError(w, err)
		return
	}

	response.WriteSuccess(w, data, "Filtered memory snapshot retrieved")
}

// snapshot assembles the complete state: usernames, serialized tasks,
// the config map and per-entity totals.
func (h *Handler) snapshot(ctx context.Context) (map[string]interface{}, error) {
	usernames, err := h.usernames(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := h.store.Tasks.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	configMap, err := h.configMap(ctx)
	if err != nil {
		return nil, err
	}

	logCount, err := h.store.Logs.Count(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"users":  usernames,
		"tasks":  tasks,
		"config": configMap,
		"stats": map[string]interface{}{
			"total_users": len(usernames),
			"total_tasks": len(tasks),
			"total_logs":  logCount,
		},
	}, nil
}

// entityView returns a single entity's data with pre- and
// post-pagination counts.
func (h *Handler) entityView(ctx context.Context, entity, status string, limit, offset *int) (map[string]interface{}, error) {
	switch entity {
	case "users":
		usernames, err := h.usernames(ctx)
		if err != nil {
			return nil, err
		}
		total := len(usernames)
		usernames = paginate(usernames, limit, offset)
		return map[string]interface{}{
			"users": usernames,
			"total": total,
			"count": len(usernames),
		}, nil

	case "tasks":
		tasks, err := h.store.Tasks.List(ctx, status, "")
		if err != nil {
			return nil, err
		}
		total := len(tasks)
		tasks = paginate(tasks, limit, offset)
		data := map[string]interface{}{
			"tasks": tasks,
			"total": total,
			"count": len(tasks),
		}
		if status != "" {
			data["filtered_by_status"] = status
		}
		return data, nil

	case "config":
		configMap, err := h.configMap(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"config": configMap}, nil

	default: // logs
		listLimit := -1
		if limit != nil {
			listLimit = *limit
		}
		listOffset := 0
		if offset != nil {
			listOffset = *offset
		}

		logs, err := h.store.Logs.List(ctx, listLimit, listOffset)
		if err != nil {
			return nil, err
		}
		total, err := h.store.Logs.Count(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"logs":  logs,
			"total": total,
			"count": len(logs),
		}, nil
	}
}

// paginatedSnapshot applies pagination (and the task status filter)
// across the users and tasks lists simultaneously; config is untouched.
func (h *Handler) paginatedSnapshot(ctx context.Context, status string, limit, offset *int) (map[string]interface{}, error) {
	snapshot, err := h.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	usernames := snapshot["users"].([]string)
	snapshot["users"] = paginate(usernames, limit, offset)

	tasks := snapshot["tasks"].([]storage.Task)
	if status != "" {
		filtered := make([]storage.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	snapshot["tasks"] = paginate(tasks, limit, offset)

	return snapshot, nil
}

// paginate applies offset then limit to an ordered list
func paginate[T any](items []T, limit, offset *int) []T {
	if offset != nil {
		if *offset >= len(items) {
			return []T{}
		}
		if *offset > 0 {
			items = items[*offset:]
		}
	}
	if limit != nil && *limit >= 0 && *limit < len(items) {
		items = items[:*limit]
	}
	return items
}

func (h *Handler) usernames(ctx context.Context) ([]string, error) {
	users, err := h.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	usernames := make([]string, 0, len(users))
	for _, u := range users {
		usernames = append(usernames, u.Username)
	}
	return usernames, nil
}

func (h *Handler) configMap(ctx context.Context) (map[string]interface{}, error) {
	entries, err := h.store.Config.All(ctx)
	if err != nil {
		return nil, err
	}
	configMap := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		var value interface{}
		if err := json.Unmarshal([]byte(entry.Value), &value); err == nil {
			configMap[entry.Key] = value
		}
	}
	return configMap, nil
}
