// Package middleware provides the HTTP middleware stack: request
// tracing, CORS, API key authentication and rate limiting.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"mcp-server/internal/api/response"
	"mcp-server/internal/logging"
)

// APIKeyHeader carries the client's shared secret
const APIKeyHeader = "X-API-Key"

var warnAuthDisabled sync.Once

// APIKeyAuth validates the shared-secret header. An empty configured
// key disables authentication entirely, with a one-time warning.
// Comparison is constant-time to avoid timing side-channels.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	logger := logging.WithComponent("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				warnAuthDisabled.Do(func() {
					logger.Warn("MCP_API_KEY not set, authentication disabled")
				})
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				response.WriteError(w, response.ErrorCodeUnauthorized, "missing API key")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.WarnContext(r.Context(), "rejected request with invalid API key",
					"remote_addr", r.RemoteAddr)
				response.WriteError(w, response.ErrorCodeForbidden, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
