package actions

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"mcp-server/internal/logging"
	"mcp-server/internal/storage"
)

// Handler executes one named action against its decoded parameters
type Handler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// validate checks the `validate` struct tags on decoded parameter structs
var validate = validator.New()

// Registry routes action names to handlers. The built-in data actions
// are registered on construction; integration handlers are added by
// the caller once their credentials are known.
type Registry struct {
	store    *storage.Store
	handlers map[string]Handler
	logger   logging.Logger
}

// NewRegistry creates a registry with all built-in actions registered
func NewRegistry(store *storage.Store) *Registry {
	r := &Registry{
		store:    store,
		handlers: make(map[string]Handler),
		logger:   logging.WithComponent("actions"),
	}

	r.Register("list_users", r.listUsers)
	r.Register("add_user", r.addUser)
	r.Register("remove_user", r.removeUser)
	r.Register("get_user", r.getUser)

	r.Register("list_tasks", r.listTasks)
	r.Register("add_task", r.addTask)
	r.Register("update_task", r.updateTask)
	r.Register("delete_task", r.deleteTask)
	r.Register("search_tasks", r.searchTasks)

	r.Register("get_config", r.getConfig)
	r.Register("update_config", r.updateConfig)

	r.Register("calculate", r.calculate)
	r.Register("summarize_data", r.summarizeData)

	return r
}

// Register adds or replaces a handler for an action name
func (r *Registry) Register(name string, handler Handler) {
	r.handlers[name] = handler
}

// Actions returns the registered action names in no particular order
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch looks up the named action and executes it. An unrecognized
// name is a validation error, never silently ignored.
func (r *Registry) Dispatch(ctx context.Context, action string, params map[string]interface{}) (interface{}, error) {
	handler, ok := r.handlers[action]
	if !ok {
		return nil, NewValidationError("unknown action: %s", action)
	}
	return handler(ctx, params)
}

// DecodeParams decodes a raw parameter map into a typed parameter
// struct and validates its required fields. Decode or validation
// failures surface as validation errors naming the offending fields.
func DecodeParams(params map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return NewValidationError("failed to prepare parameter decoder: %v", err)
	}

	if err := decoder.Decode(params); err != nil {
		return NewValidationError("invalid parameters: %v", err)
	}

	if err := validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return NewValidationError("missing or invalid parameter(s): %s", strings.Join(fields, ", "))
		}
		return NewValidationError("invalid parameters: %v", err)
	}
	return nil
}

// mapStorageError translates repository sentinels into the action
// error taxonomy; anything unrecognized passes through as an internal
// error.
func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return NewNotFoundError("%s", err.Error())
	case errors.Is(err, storage.ErrAlreadyExists):
		return NewValidationError("%s", err.Error())
	default:
		return err
	}
}
