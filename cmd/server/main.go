// server is the MCP agent server binary: an HTTP backend exposing
// user/task/config state, an action dispatch API and a bounded action
// log, with optional GitHub, Figma and headless-browser integrations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcp-server/internal/actions"
	"mcp-server/internal/api"
	"mcp-server/internal/config"
	"mcp-server/internal/integrations"
	"mcp-server/internal/logging"
	"mcp-server/internal/ratelimit"
	"mcp-server/internal/storage"
)

func main() {
	var addr = flag.String("addr", "", "listen address (overrides MCP_HOST/MCP_PORT)")
	flag.Parse()

	if err := run(*addr); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run(addrOverride string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.SetDefaultLogger(logging.NewLogger(
		logging.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Format))
	logger := logging.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Database.URL, cfg.Logs.Retention)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	limit, window, err := config.ParseRate(cfg.RateLimit.Rate)
	if err != nil {
		return fmt.Errorf("failed to parse rate limit: %w", err)
	}
	limiter, err := ratelimit.New(limit, window, cfg.RateLimit.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}
	defer func() { _ = limiter.Close() }()

	registry := actions.NewRegistry(store)
	integrations.NewService(cfg.Integrations).RegisterAll(registry)

	router := api.NewRouter(cfg, store, registry, limiter)

	addr := cfg.Addr()
	if addrOverride != "" {
		addr = addrOverride
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", addr,
			"rate_limit", cfg.RateLimit.Rate,
			"log_retention", cfg.Logs.Retention,
			"auth_enabled", cfg.Auth.APIKey != "",
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
