package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
)

// BaseTool provides common functionality for all tools
type BaseTool struct {
	client *client.Client
	logger *zap.Logger
}

// NewBaseTool creates a new base tool
func NewBaseTool(client *client.Client, logger *zap.Logger) *BaseTool {
	return &BaseTool{
		client: client,
		logger: logger,
	}
}

// DefaultProject returns the configured default project key, or "" if unset.
func (t *BaseTool) DefaultProject() string {
	return t.client.Config().DefaultProject
}

// ExecuteRequest executes an API request and decodes the JSON response.
// YouTrack returns objects for single-entity endpoints and arrays for list
// endpoints, so the result is an untyped value. Numbers are decoded as
// json.Number to keep epoch millisecond fields exact for the timestamp
// augmentation in FormatResponse.
func (t *BaseTool) ExecuteRequest(ctx context.Context, req *client.Request) (interface{}, error) {
	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			RequestID:  resp.Headers.Get("X-Request-ID"),
		}

		// YouTrack error payloads carry "error" and "error_description"
		var errBody map[string]interface{}
		if jsonErr := json.Unmarshal(resp.Body, &errBody); jsonErr == nil {
			apiErr.Details = errBody
			if desc, ok := errBody["error_description"].(string); ok && desc != "" {
				apiErr.Message = fmt.Sprintf("API error (HTTP %d): %s", resp.StatusCode, desc)
			} else if name, ok := errBody["error"].(string); ok && name != "" {
				apiErr.Message = fmt.Sprintf("API error (HTTP %d): %s", resp.StatusCode, name)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("API error (HTTP %d): %s", resp.StatusCode, string(resp.Body))
		}
		return nil, apiErr
	}

	if len(resp.Body) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()

	var result interface{}
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}
