package integrations

import (
	"context"
	"fmt"
	"net/url"

	"mcp-server/internal/actions"
)

type figmaFileParams struct {
	FileKey string `mapstructure:"file_key" validate:"required"`
}

type figmaNodesParams struct {
	FileKey string `mapstructure:"file_key" validate:"required"`
	IDs     string `mapstructure:"ids" validate:"required"`
}

// figmaHeaders returns the auth header, or a validation error when no
// token is configured. Figma has no anonymous access.
func (s *Service) figmaHeaders() (map[string]string, error) {
	if s.figmaToken == "" {
		return nil, actions.NewValidationError("figma integration requires MCP_FIGMA_TOKEN")
	}
	return map[string]string{"X-Figma-Token": s.figmaToken}, nil
}

func (s *Service) figmaFileEndpoint(ctx context.Context, suffix string, params map[string]interface{}) (interface{}, error) {
	headers, err := s.figmaHeaders()
	if err != nil {
		return nil, err
	}

	var p figmaFileParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}

	target := fmt.Sprintf("%s/files/%s%s", s.figmaBase, url.PathEscape(p.FileKey), suffix)
	return s.getJSON(ctx, "figma", target, headers)
}

// figmaGetFile fetches a design file's document tree
func (s *Service) figmaGetFile(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.figmaFileEndpoint(ctx, "", params)
}

// figmaGetNodes fetches specific nodes from a design file
func (s *Service) figmaGetNodes(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	headers, err := s.figmaHeaders()
	if err != nil {
		return nil, err
	}

	var p figmaNodesParams
	if err := actions.DecodeParams(params, &p); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("ids", p.IDs)
	target := fmt.Sprintf("%s/files/%s/nodes?%s", s.figmaBase, url.PathEscape(p.FileKey), query.Encode())
	return s.getJSON(ctx, "figma", target, headers)
}

// figmaGetComponents lists a design file's components
func (s *Service) figmaGetComponents(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.figmaFileEndpoint(ctx, "/components", params)
}

// figmaGetStyles lists a design file's styles
func (s *Service) figmaGetStyles(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	return s.figmaFileEndpoint(ctx, "/styles", params)
}
