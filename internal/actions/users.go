package actions

import (
	"context"
	"errors"

	"mcp-server/internal/storage"
)

type addUserParams struct {
	Username string                 `mapstructure:"username" validate:"required"`
	Role     string                 `mapstructure:"role"`
	Metadata map[string]interface{} `mapstructure:"metadata"`
}

type usernameParams struct {
	Username string `mapstructure:"username" validate:"required"`
}

// listUsers returns all usernames in insertion order
func (r *Registry) listUsers(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
	users, err := r.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(users))
	for _, u := range users {
		usernames = append(usernames, u.Username)
	}
	return usernames, nil
}

// addUser creates a user; duplicate usernames are rejected
func (r *Registry) addUser(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p addUserParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Role == "" {
		p.Role = "user"
	}

	metadata, err := storage.MarshalValue(p.Metadata)
	if err != nil {
		return nil, err
	}
	if p.Metadata == nil {
		metadata = storage.JSONValue("{}")
	}

	if _, err := r.store.Users.Create(ctx, p.Username, p.Role, metadata); err != nil {
		return nil, mapStorageError(err)
	}

	return map[string]interface{}{
		"username": p.Username,
		"added":    true,
	}, nil
}

// removeUser deletes a user by username
func (r *Registry) removeUser(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p usernameParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	if err := r.store.Users.Delete(ctx, p.Username); err != nil {
		return nil, mapStorageError(err)
	}

	return map[string]interface{}{
		"username": p.Username,
		"removed":  true,
	}, nil
}

// getUser reports whether a user exists, along with their assigned
// tasks. A missing user is not an error.
func (r *Registry) getUser(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p usernameParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	user, err := r.store.Users.GetByUsername(ctx, p.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return map[string]interface{}{
				"username": p.Username,
				"exists":   false,
			}, nil
		}
		return nil, err
	}

	tasks, err := r.store.Tasks.List(ctx, "", p.Username)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"username":   user.Username,
		"exists":     true,
		"role":       user.Role,
		"metadata":   user.Metadata,
		"tasks":      tasks,
		"task_count": len(tasks),
	}, nil
}
