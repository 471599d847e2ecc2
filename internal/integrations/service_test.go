package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-server/internal/actions"
	"mcp-server/internal/config"
)

func newTestService(upstream *httptest.Server, githubToken, figmaToken string) *Service {
	s := NewService(config.IntegrationsConfig{
		GitHubToken: githubToken,
		FigmaToken:  figmaToken,
	})
	s.client = &http.Client{Timeout: 5 * time.Second}
	if upstream != nil {
		s.githubBase = upstream.URL
		s.figmaBase = upstream.URL
	}
	return s
}

func TestGithubSearchRepositories(t *testing.T) {
	var gotPath, gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_count": 1, "items": [{"full_name": "go-chi/chi"}]}`))
	}))
	defer upstream.Close()

	s := newTestService(upstream, "gh-token", "")
	result, err := s.githubSearchRepositories(context.Background(), map[string]interface{}{
		"query": "router language:go",
	})
	require.NoError(t, err)

	assert.Equal(t, "/search/repositories?per_page=10&q=router+language%3Ago", gotPath)
	assert.Equal(t, "Bearer gh-token", gotAuth)

	decoded, ok := result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), decoded["total_count"])
}

func TestGithubTokenOptional(t *testing.T) {
	var gotAuth string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	s := newTestService(upstream, "", "")
	_, err := s.githubGetRepository(context.Background(), map[string]interface{}{
		"owner": "go-chi", "repo": "chi",
	})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestGithubUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer upstream.Close()

	s := newTestService(upstream, "", "")
	_, err := s.githubListIssues(context.Background(), map[string]interface{}{
		"owner": "go-chi", "repo": "chi",
	})
	require.Error(t, err)

	var ue *actions.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Contains(t, ue.Body, "rate limited")
	assert.True(t, actions.IsClientError(err))
}

func TestGithubMissingParams(t *testing.T) {
	s := newTestService(nil, "", "")

	_, err := s.githubSearchRepositories(context.Background(), map[string]interface{}{})
	var ve *actions.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "query")

	_, err = s.githubGetRepository(context.Background(), map[string]interface{}{"owner": "go-chi"})
	assert.ErrorAs(t, err, &ve)
}

func TestFigmaRequiresToken(t *testing.T) {
	s := newTestService(nil, "", "")

	for _, params := range []map[string]interface{}{
		{"file_key": "abc"},
	} {
		_, err := s.figmaGetFile(context.Background(), params)
		var ve *actions.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, err.Error(), "MCP_FIGMA_TOKEN")
	}
}

func TestFigmaGetNodes(t *testing.T) {
	var gotPath, gotToken string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotToken = r.Header.Get("X-Figma-Token")
		_, _ = w.Write([]byte(`{"nodes": {}}`))
	}))
	defer upstream.Close()

	s := newTestService(upstream, "", "figma-token")
	_, err := s.figmaGetNodes(context.Background(), map[string]interface{}{
		"file_key": "abc123", "ids": "1:2,3:4",
	})
	require.NoError(t, err)
	assert.Equal(t, "/files/abc123/nodes?ids=1%3A2%2C3%3A4", gotPath)
	assert.Equal(t, "figma-token", gotToken)
}

func TestBrowserRejectsNonHTTPURL(t *testing.T) {
	s := newTestService(nil, "", "")

	for _, raw := range []string{"ftp://example.com", "file:///etc/passwd", "not-a-url"} {
		_, err := s.browserGetTitle(context.Background(), map[string]interface{}{"url": raw})
		var ve *actions.ValidationError
		assert.ErrorAs(t, err, &ve, raw)
	}
}

func TestValidateHTTPURL(t *testing.T) {
	assert.NoError(t, validateHTTPURL("https://example.com/page"))
	assert.NoError(t, validateHTTPURL("http://localhost:8080"))
	assert.Error(t, validateHTTPURL("chrome://settings"))
	assert.Error(t, validateHTTPURL("/relative/path"))
}
