package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "100/minute", cfg.RateLimit.Rate)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 1000, cfg.Logs.Retention)
	assert.Empty(t, cfg.Auth.APIKey)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MCP_HOST", "127.0.0.1")
	t.Setenv("MCP_PORT", "9000")
	t.Setenv("MCP_API_KEY", "secret")
	t.Setenv("MCP_RATE_LIMIT", "10/second")
	t.Setenv("MCP_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MCP_LOG_RETENTION", "50")
	t.Setenv("DATABASE_URL", "postgres://localhost/mcp")
	t.Setenv("MCP_GITHUB_TOKEN", "gh-token")

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Auth.APIKey)
	assert.Equal(t, "10/second", cfg.RateLimit.Rate)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 50, cfg.Logs.Retention)
	assert.Equal(t, "postgres://localhost/mcp", cfg.Database.URL)
	assert.Equal(t, "gh-token", cfg.Integrations.GitHubToken)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Logs.Retention = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RateLimit.Rate = "fast"
	assert.Error(t, cfg.Validate())
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		rate    string
		limit   int
		window  time.Duration
		wantErr bool
	}{
		{"100/minute", 100, time.Minute, false},
		{"1/second", 1, time.Second, false},
		{"5000/hour", 5000, time.Hour, false},
		{"10/day", 10, 24 * time.Hour, false},
		{"10 / minute", 10, time.Minute, false},
		{"0/minute", 0, 0, true},
		{"-5/minute", 0, 0, true},
		{"ten/minute", 0, 0, true},
		{"100/fortnight", 0, 0, true},
		{"100", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		limit, window, err := ParseRate(tt.rate)
		if tt.wantErr {
			assert.Error(t, err, tt.rate)
			continue
		}
		require.NoError(t, err, tt.rate)
		assert.Equal(t, tt.limit, limit, tt.rate)
		assert.Equal(t, tt.window, window, tt.rate)
	}
}
