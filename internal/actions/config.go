package actions

import (
	"context"
	"encoding/json"
	"errors"

	"mcp-server/internal/storage"
)

type getConfigParams struct {
	Key string `mapstructure:"key"`
}

type updateConfigParams struct {
	Key   string      `mapstructure:"key" validate:"required"`
	Value interface{} `mapstructure:"value"`
}

// decodeConfigValue turns a stored JSON document back into a plain value
func decodeConfigValue(value storage.JSONValue) interface{} {
	var decoded interface{}
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return nil
	}
	return decoded
}

// getConfig returns one key's value (null when unset) or the full map
func (r *Registry) getConfig(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p getConfigParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	if p.Key != "" {
		entry, err := r.store.Config.Get(ctx, p.Key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return map[string]interface{}{p.Key: nil}, nil
			}
			return nil, err
		}
		return map[string]interface{}{p.Key: decodeConfigValue(entry.Value)}, nil
	}

	entries, err := r.store.Config.All(ctx)
	if err != nil {
		return nil, err
	}

	full := make(map[string]interface{}, len(entries))
	for _, entry := range entries {
		full[entry.Key] = decodeConfigValue(entry.Value)
	}
	return full, nil
}

// updateConfig upserts a key/value pair
func (r *Registry) updateConfig(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	var p updateConfigParams
	if err := DecodeParams(params, &p); err != nil {
		return nil, err
	}

	encoded, err := storage.MarshalValue(p.Value)
	if err != nil {
		return nil, NewValidationError("value is not JSON-serializable: %v", err)
	}

	if _, err := r.store.Config.Set(ctx, p.Key, encoded); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		p.Key:     p.Value,
		"updated": true,
	}, nil
}
