// Package handlers implements the HTTP endpoints: health, the state
// snapshot, action dispatch, log retrieval and reset.
package handlers

import (
	"net/http"
	"strconv"

	"mcp-server/internal/actions"
	"mcp-server/internal/api/response"
	"mcp-server/internal/logging"
	"mcp-server/internal/storage"
)

// Handler bundles the endpoint dependencies
type Handler struct {
	store    *storage.Store
	registry *actions.Registry
	version  string
	logger   logging.Logger
}

// New creates the endpoint handler set
func New(store *storage.Store, registry *actions.Registry, version string) *Handler {
	return &Handler{
		store:    store,
		registry: registry,
		version:  version,
		logger:   logging.WithComponent("handlers"),
	}
}

// queryInt reads an optional non-negative integer query parameter. The
// pointer is nil when the parameter is absent.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, actions.NewValidationError("invalid %s: %q", name, raw)
	}
	if value < 0 {
		return nil, actions.NewValidationError("invalid %s: must be non-negative", name)
	}
	return &value, nil
}

// writeActionError maps the action error taxonomy onto the response
// envelope: client-class failures are 400s, everything else is a 500.
func writeActionError(w http.ResponseWriter, err error) {
	if actions.IsClientError(err) {
		response.WriteErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	response.WriteErrorStatus(w, http.StatusInternalServerError, err.Error())
}
