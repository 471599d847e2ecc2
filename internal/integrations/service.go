// Package integrations proxies action calls to third-party APIs:
// GitHub and Figma REST endpoints and a headless browser. Handlers
// validate parameters and translate upstream failures; they add no
// logic of their own.
package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mcp-server/internal/actions"
	"mcp-server/internal/config"
	"mcp-server/internal/logging"
)

// maxErrorBody caps how much of an upstream error body is carried back
// to the client.
const maxErrorBody = 1024

// Service holds integration credentials and the shared HTTP client
type Service struct {
	client      *http.Client
	githubBase  string
	figmaBase   string
	githubToken string
	figmaToken  string
	logger      logging.Logger
}

// NewService creates the integration service
func NewService(cfg config.IntegrationsConfig) *Service {
	return &Service{
		client:      &http.Client{Timeout: 30 * time.Second},
		githubBase:  "https://api.github.com",
		figmaBase:   "https://api.figma.com/v1",
		githubToken: cfg.GitHubToken,
		figmaToken:  cfg.FigmaToken,
		logger:      logging.WithComponent("integrations"),
	}
}

// RegisterAll registers every integration action on the registry
func (s *Service) RegisterAll(r *actions.Registry) {
	r.Register("github_search_repositories", s.githubSearchRepositories)
	r.Register("github_search_issues", s.githubSearchIssues)
	r.Register("github_get_repository", s.githubGetRepository)
	r.Register("github_list_issues", s.githubListIssues)
	r.Register("github_list_pulls", s.githubListPulls)

	r.Register("figma_get_file", s.figmaGetFile)
	r.Register("figma_get_nodes", s.figmaGetNodes)
	r.Register("figma_get_components", s.figmaGetComponents)
	r.Register("figma_get_styles", s.figmaGetStyles)

	r.Register("browser_get_title", s.browserGetTitle)
	r.Register("browser_get_text", s.browserGetText)
	r.Register("browser_screenshot", s.browserScreenshot)
}

// getJSON performs a GET against an upstream API and decodes the JSON
// response. Non-2xx responses become upstream errors carrying the
// status and a truncated body.
func (s *Service) getJSON(ctx context.Context, service, rawURL string, headers map[string]string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", service, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		s.logger.WarnContext(ctx, "upstream API error",
			"service", service, "status", resp.StatusCode)
		return nil, &actions.UpstreamError{
			Service: service,
			Status:  resp.StatusCode,
			Body:    string(body),
		}
	}

	var decoded interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return decoded, nil
}

// validateHTTPURL ensures a user-supplied URL is absolute http(s)
func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return actions.NewValidationError("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return actions.NewValidationError("url must use http or https")
	}
	if u.Host == "" {
		return actions.NewValidationError("url must be absolute")
	}
	return nil
}
