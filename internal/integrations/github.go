package integrations

import (
	"context"
	"fmt"
	"net/url"

	"mcp-server/internal/actions"
)

type githubSearchParams struct {
	Query   string `mapstructure:"query" validate:"required"`
	PerPage int    `mapstructure:"per_page"`
}

type githubRepoParams struct {
	Owner string `mapstructure:"owner" validate:"required"`
	Repo  string `mapstructure:"repo" validate:"required"`
}

type githubListParams struct {
	Owner string `mapstructure:"owner" validate:"required"`
	Repo  string `mapstructure:"repo" validate:"required"`
	State string `mapstructure:"state"`
}

// githubHeaders returns the request headers; the bearer token is
// attached only when configured, unauthenticated calls still work
// within GitHub's anonymous rate limits.
func (s *Service) githubHeaders() map[string]string {
	headers := map[string]string{
		"Accept": "application/vnd.github+json",
	}
	if s.githubToken != "" {
		headers["Authorization"] = "Bearer " + s.githubToken
	}
	return headers
}

func (s *Service) githubSearch(ctx context.Context, endpoint string, params map[string]interface{}) (interface{}, error) {
	var p githubSearchParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.PerPage <= 0 {
		p.PerPage = 10
	}

	query := url.Values{}
	query.Set("q", p.Query)
	query.Set("per_page", fmt.Sprintf("%d", p.PerPage))

	target := fmt.Sprintf("%s/search/%s?%s", s.githubBase, endpoint, query.Encode())
	return s.getJSON(ctx, "github", target, s.githubHeaders())
}

// githubSearchRepositories searches repositories by query string
func (s *Service) githubSearchRepositories(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.githubSearch(ctx, "repositories", params)
}

// githubSearchIssues searches issues by query string
func (s *Service) githubSearchIssues(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.githubSearch(ctx, "issues", params)
}

// githubGetRepository fetches one repository's metadata
func (s *Service) githubGetRepository(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p githubRepoParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}

	target := fmt.Sprintf("%s/repos/%s/%s", s.githubBase, url.PathEscape(p.Owner), url.PathEscape(p.Repo))
	return s.getJSON(ctx, "github", target, s.githubHeaders())
}

func (s *Service) githubList(ctx context.Context, kind string, params map[string]interface{}) (interface{}, error) {
	var p githubListParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.State == "" {
		p.State = "open"
	}

	target := fmt.Sprintf("%s/repos/%s/%s/%s?state=%s",
		s.githubBase, url.PathEscape(p.Owner), url.PathEscape(p.Repo), kind, url.QueryEscape(p.State))
	return s.getJSON(ctx, "github", target, s.githubHeaders())
}

// githubListIssues lists a repository's issues, default state open
func (s *Service) githubListIssues(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.githubList(ctx, "issues", params)
}

// githubListPulls lists a repository's pull requests, default state open
func (s *Service) githubListPulls(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.githubList(ctx, "pulls", params)
}
