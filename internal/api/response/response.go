// Package response provides the standardized HTTP response envelope
// and error writers for the API layer.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"mcp-server/internal/logging"
)

// Envelope is the uniform response shape for every API endpoint
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorCode classifies API failures
type ErrorCode string

const (
	ErrorCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrorCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrorCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrorCodeRateLimited   ErrorCode = "RATE_LIMITED"
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// statusFor maps error codes to HTTP status codes
func statusFor(code ErrorCode) int {
	switch code {
	case ErrorCodeBadRequest, ErrorCodeNotFound:
		// Not-found failures surface as client errors on the action
		// API, matching the validation class
		return http.StatusBadRequest
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteSuccess writes a success envelope with the given payload
func WriteSuccess(w http.ResponseWriter, data interface{}, message string) {
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteError writes a failure envelope with the status mapped from the
// error code.
func WriteError(w http.ResponseWriter, code ErrorCode, message string) {
	writeJSON(w, statusFor(code), Envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteErrorStatus writes a failure envelope with an explicit status
func WriteErrorStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}
