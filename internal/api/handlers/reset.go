package handlers

import (
	"net/http"

	"mcp-server/internal/api/response"
)

// Reset deletes all users, tasks, config and logs, then reseeds the
// default configuration.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.logger.WarnContext(r.Context(), "memory reset requested")

	if err := h.store.Reset(r.Context()); err != nil {
		writeActionError(w, err)
		return
	}

	response.WriteSuccess(w, map[string]interface{}{"reset": true}, "Memory reset complete")
}
