package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `json:"server"`
	Database     DatabaseConfig     `json:"database"`
	Auth         AuthConfig         `json:"auth"`
	RateLimit    RateLimitConfig    `json:"rate_limit"`
	CORS         CORSConfig         `json:"cors"`
	Logs         LogConfig          `json:"logs"`
	Integrations IntegrationsConfig `json:"integrations"`
	Logging      LoggingConfig      `json:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"read_timeout_seconds"`
	WriteTimeout int    `json:"write_timeout_seconds"`
}

// DatabaseConfig represents persistence configuration.
// URL accepts a SQLite DSN (default) or a postgres:// DSN.
type DatabaseConfig struct {
	URL string `json:"url"`
}

// AuthConfig holds the optional shared-secret API key.
// An empty key disables authentication entirely.
type AuthConfig struct {
	APIKey string `json:"-"` // Never serialize API key
}

// RateLimitConfig represents rate limiting configuration.
// Rate uses the "N/window" form, e.g. "100/minute".
type RateLimitConfig struct {
	Rate      string `json:"rate"`
	RedisAddr string `json:"redis_addr"`
}

// CORSConfig represents CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

// LogConfig represents action-log retention configuration
type LogConfig struct {
	Retention int `json:"retention"`
}

// IntegrationsConfig holds third-party API credentials
type IntegrationsConfig struct {
	GitHubToken string `json:"-"` // Never serialize tokens
	FigmaToken  string `json:"-"`
}

// LoggingConfig represents structured logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Database: DatabaseConfig{
			URL: "file:mcp_server.db?_fk=1",
		},
		RateLimit: RateLimitConfig{
			Rate: "100/minute",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Logs: LogConfig{
			Retention: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := DefaultConfig()
	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(config *Config) {
	loadServerConfig(config)
	loadDatabaseConfig(config)
	loadHTTPPolicyConfig(config)
	loadIntegrationsConfig(config)
	loadLoggingConfig(config)
}

// loadServerConfig loads server configuration from environment
func loadServerConfig(config *Config) {
	if host := os.Getenv("MCP_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("MCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if readTimeout := os.Getenv("MCP_READ_TIMEOUT_SECONDS"); readTimeout != "" {
		if rt, err := strconv.Atoi(readTimeout); err == nil {
			config.Server.ReadTimeout = rt
		}
	}
	if writeTimeout := os.Getenv("MCP_WRITE_TIMEOUT_SECONDS"); writeTimeout != "" {
		if wt, err := strconv.Atoi(writeTimeout); err == nil {
			config.Server.WriteTimeout = wt
		}
	}
}

// loadDatabaseConfig loads persistence configuration from environment
func loadDatabaseConfig(config *Config) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if retention := os.Getenv("MCP_LOG_RETENTION"); retention != "" {
		if r, err := strconv.Atoi(retention); err == nil {
			config.Logs.Retention = r
		}
	}
}

// loadHTTPPolicyConfig loads auth, rate limit and CORS settings from environment
func loadHTTPPolicyConfig(config *Config) {
	if apiKey := os.Getenv("MCP_API_KEY"); apiKey != "" {
		config.Auth.APIKey = apiKey
	}
	if rate := os.Getenv("MCP_RATE_LIMIT"); rate != "" {
		config.RateLimit.Rate = rate
	}
	if addr := os.Getenv("MCP_REDIS_ADDR"); addr != "" {
		config.RateLimit.RedisAddr = addr
	}
	if origins := os.Getenv("MCP_CORS_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		allowed := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				allowed = append(allowed, trimmed)
			}
		}
		if len(allowed) > 0 {
			config.CORS.AllowedOrigins = allowed
		}
	}
}

// loadIntegrationsConfig loads third-party API credentials from environment
func loadIntegrationsConfig(config *Config) {
	if token := os.Getenv("MCP_GITHUB_TOKEN"); token != "" {
		config.Integrations.GitHubToken = token
	}
	if token := os.Getenv("MCP_FIGMA_TOKEN"); token != "" {
		config.Integrations.FigmaToken = token
	}
}

// loadLoggingConfig loads logging configuration from environment
func loadLoggingConfig(config *Config) {
	if level := os.Getenv("MCP_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("MCP_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL cannot be empty")
	}
	if c.Logs.Retention <= 0 {
		return fmt.Errorf("log retention must be positive")
	}
	if _, _, err := ParseRate(c.RateLimit.Rate); err != nil {
		return fmt.Errorf("invalid rate limit %q: %w", c.RateLimit.Rate, err)
	}
	return nil
}

// Addr returns the host:port the server binds to
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ParseRate parses a rate string of the form "N/window" where window is
// one of second, minute, hour or day. Returns the request limit and the
// window duration.
func ParseRate(rate string) (int, time.Duration, error) {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected N/window form")
	}

	limit, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || limit <= 0 {
		return 0, 0, fmt.Errorf("limit must be a positive integer")
	}

	var window time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "second":
		window = time.Second
	case "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return 0, 0, fmt.Errorf("unknown window %q", parts[1])
	}

	return limit, window, nil
}
