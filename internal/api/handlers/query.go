package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mcp-server/internal/api/response"
	"mcp-server/internal/storage"
)

// maxLoggedResult caps the result string recorded in the action log
const maxLoggedResult = 200

// queryRequest is the action dispatch request body
type queryRequest struct {
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// Query dispatches an action and records it in the action log, success
// or failure.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteErrorStatus(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Action == "" {
		response.WriteErrorStatus(w, http.StatusBadRequest, "action is required")
		return
	}
	if req.Params == nil {
		req.Params = map[string]interface{}{}
	}

	h.logger.InfoContext(ctx, "query received", "action", req.Action)

	result, err := h.registry.Dispatch(ctx, req.Action, req.Params)
	if err != nil {
		h.logAction(r, req.Action, req.Params, err.Error(), "error")
		writeActionError(w, err)
		return
	}

	h.logAction(r, req.Action, req.Params, result, "success")
	response.WriteSuccess(w, result, fmt.Sprintf("Action '%s' completed successfully", req.Action))
}

// logAction appends one action-log entry carrying the parameters and a
// truncated rendering of the result.
func (h *Handler) logAction(r *http.Request, action string, params map[string]interface{}, result interface{}, status string) {
	payload, err := storage.MarshalValue(map[string]interface{}{
		"params": params,
		"result": truncateResult(result),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode log payload", "error", err)
		return
	}

	if _, err := h.store.Logs.Append(r.Context(), action, payload, status); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to record action log", "error", err)
	}
}

// truncateResult renders a result as a string capped at maxLoggedResult
func truncateResult(result interface{}) string {
	var rendered string
	switch v := result.(type) {
	case string:
		rendered = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			rendered = fmt.Sprintf("%v", v)
		} else {
			rendered = string(data)
		}
	}

	if runes := []rune(rendered); len(runes) > maxLoggedResult {
		return string(runes[:maxLoggedResult])
	}
	return rendered
}
