package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
)

// HealthCheckTool verifies connectivity and authentication against the
// configured YouTrack instance.
type HealthCheckTool struct {
	*BaseTool
}

// NewHealthCheckTool creates a new HealthCheckTool instance.
func NewHealthCheckTool(client *client.Client, logger *zap.Logger) *HealthCheckTool {
	return &HealthCheckTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *HealthCheckTool) Name() string {
	return "health_check"
}

// Description returns a human-readable description of the tool.
func (t *HealthCheckTool) Description() string {
	return "Check connectivity and authentication against the configured YouTrack instance"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *HealthCheckTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Annotations marks the tool as read-only.
func (t *HealthCheckTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout keeps health checks short.
func (t *HealthCheckTool) DefaultTimeout() time.Duration {
	return 10 * time.Second
}

// Execute probes the instance with the cheapest authenticated call.
func (t *HealthCheckTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	cfg := t.client.Config()

	start := time.Now()
	req := &client.Request{
		Method: "GET",
		Path:   "users/me",
		Query:  map[string]string{"fields": "id,login"},
	}
	result, err := t.ExecuteRequest(ctx, req)
	elapsed := time.Since(start)

	report := map[string]interface{}{
		"youtrack_url":     cfg.BaseURL,
		"default_project":  cfg.DefaultProject,
		"response_time_ms": elapsed.Milliseconds(),
	}

	if err != nil {
		report["status"] = "unhealthy"
		report["error"] = err.Error()
		t.logger.Warn("Health check failed",
			zap.Error(err),
			zap.Duration("duration", elapsed),
		)
		return t.FormatResponse(report)
	}

	report["status"] = "healthy"
	if me, ok := result.(map[string]interface{}); ok {
		if login, _ := me["login"].(string); login != "" {
			report["authenticated_as"] = login
		}
	}

	return t.FormatResponse(report)
}
