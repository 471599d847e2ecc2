package handlers

import (
	"fmt"
	"net/http"

	"mcp-server/internal/api/response"
)

// defaultLogLimit is how many entries Logs returns when unspecified
const defaultLogLimit = 100

// Logs returns recent action-log entries, oldest to newest
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
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

	listLimit := defaultLogLimit
	if limit != nil {
		listLimit = *limit
	}
	listOffset := 0
	if offset != nil {
		listOffset = *offset
	}

	entries, err := h.store.Logs.List(r.Context(), listLimit, listOffset)
	if err != nil {
		writeActionError(w, err)
		return
	}

	response.WriteSuccess(w, entries, fmt.Sprintf("Retrieved %d logs", len(entries)))
}
