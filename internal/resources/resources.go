// Package resources provides MCP resource handlers for the YouTrack server.
// Resources expose read-only data to MCP clients for context and status information.
package resources

import (
	"context"
	"encoding/json"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/audit"
	"github.com/ytwork/youtrack-mcp-server/internal/config"
	"github.com/ytwork/youtrack-mcp-server/internal/metrics"
	"github.com/ytwork/youtrack-mcp-server/internal/session"
)

// Registry holds all registered resources and their handlers
type Registry struct {
	config    *config.Config
	metrics   *metrics.Metrics
	auditLog  *audit.Logger
	session   *session.Context
	logger    *zap.Logger
	version   string
	toolCount int
}

// NewRegistry creates a new resource registry
func NewRegistry(cfg *config.Config, m *metrics.Metrics, auditLog *audit.Logger, sess *session.Context, logger *zap.Logger, version string, toolCount int) *Registry {
	return &Registry{
		config:    cfg,
		metrics:   m,
		auditLog:  auditLog,
		session:   sess,
		logger:    logger,
		version:   version,
		toolCount: toolCount,
	}
}

// RegisteredResource represents a resource with its definition and handler
type RegisteredResource struct {
	Resource *mcp.Resource
	Handler  mcp.ResourceHandler
}

// GetResources returns all registered resources with their handlers
func (r *Registry) GetResources() []RegisteredResource {
	return []RegisteredResource{
		r.aboutResource(),
		r.configResource(),
		r.metricsResource(),
		r.healthResource(),
		r.auditResource(),
		r.sessionResource(),
	}
}

// marshalResult wraps JSON content into a single-item resource result.
func (r *Registry) marshalResult(uri string, data interface{}) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		r.logger.Error("Failed to marshal resource", zap.String("uri", uri), zap.Error(err))
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}

// aboutResource returns the about://service resource describing the server
func (r *Registry) aboutResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "about://service",
			Name:        "about://service",
			Title:       "About YouTrack MCP Server",
			Description: "Service information and capabilities",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			aboutInfo := map[string]interface{}{
				"service": map[string]interface{}{
					"name":        "YouTrack",
					"description": "Issue tracking and project management by JetBrains",
					"api":         "YouTrack REST API",
				},
				"query_language": map[string]interface{}{
					"name":    "YouTrack search query",
					"type":    "Attribute-based search syntax",
					"example": "project: DEMO #Unresolved assignee: me sort by: updated",
				},
				"conveniences": map[string]interface{}{
					"issue_ids": "Bare issue numbers resolve against the configured default project (e.g. '123' becomes 'DEMO-123')",
					"durations": "Work time accepts free text such as '1h 30m', '45m', or plain minutes",
					"timestamps": "Epoch millisecond fields in responses gain *_iso8601 siblings for readability",
				},
				"mcp_server": map[string]interface{}{
					"version":      r.version,
					"tool_count":   r.toolCount,
					"capabilities": []string{"tools", "prompts", "resources"},
				},
			}

			return r.marshalResult("about://service", aboutInfo)
		},
	}
}

// configResource returns the config://current resource
func (r *Registry) configResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "config://current",
			Name:        "config://current",
			Title:       "Server Configuration",
			Description: "Current YouTrack MCP server configuration (sensitive values masked)",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			// Create a safe config representation (mask sensitive values)
			safeConfig := map[string]interface{}{
				"base_url":             r.config.BaseURL,
				"cloud_instance":       r.config.CloudInstance,
				"default_project":      r.config.DefaultProject,
				"timeout":              r.config.Timeout.String(),
				"max_retries":          r.config.MaxRetries,
				"rate_limit":           r.config.RateLimit,
				"rate_limit_burst":     r.config.RateLimitBurst,
				"rate_limit_enabled":   r.config.EnableRateLimit,
				"tls_verify":           r.config.TLSVerify,
				"tracing_enabled":      r.config.EnableTracing,
				"audit_log_enabled":    r.config.EnableAuditLog,
				"cache_enabled":        r.config.EnableCache,
				"log_level":            r.config.LogLevel,
				"log_format":           r.config.LogFormat,
				"server_version":       r.version,
				"api_token_configured": r.config.APIToken != "",
			}

			return r.marshalResult("config://current", safeConfig)
		},
	}
}

// metricsResource returns the metrics://server resource
func (r *Registry) metricsResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "metrics://server",
			Name:        "metrics://server",
			Title:       "Server Metrics",
			Description: "Operational metrics including request counts, latency, and tool usage statistics",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			stats := r.metrics.GetStats()

			metricsData := map[string]interface{}{
				"requests": map[string]interface{}{
					"total":      stats.TotalRequests,
					"successful": stats.SuccessfulRequests,
					"failed":     stats.FailedRequests,
					"retried":    stats.RetriedRequests,
				},
				"rate_limiting": map[string]interface{}{
					"hits": stats.RateLimitHits,
				},
				"latency": map[string]interface{}{
					"average_ms": stats.AverageLatency.Milliseconds(),
					"max_ms":     stats.MaxLatency.Milliseconds(),
					"min_ms":     stats.MinLatency.Milliseconds(),
				},
				"errors_by_status": stats.ErrorsByStatus,
				"tools": map[string]interface{}{
					"usage":   stats.ToolUsage,
					"errors":  stats.ToolErrors,
					"latency": formatToolLatency(stats.ToolLatency),
				},
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}

			return r.marshalResult("metrics://server", metricsData)
		},
	}
}

// healthResource returns the health://status resource
func (r *Registry) healthResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "health://status",
			Name:        "health://status",
			Title:       "Health Status",
			Description: "Current health status of the MCP server and YouTrack connectivity",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			// Simple health status based on metrics
			stats := r.metrics.GetStats()

			var status string
			var statusMessage string
			errorRate := float64(0)
			if stats.TotalRequests > 0 {
				errorRate = float64(stats.FailedRequests) / float64(stats.TotalRequests) * 100
			}

			if errorRate > 50 {
				status = "unhealthy"
				statusMessage = "High error rate detected"
			} else if errorRate > 10 {
				status = "degraded"
				statusMessage = "Elevated error rate"
			} else {
				status = "healthy"
				statusMessage = "All systems operational"
			}

			healthData := map[string]interface{}{
				"status":  status,
				"message": statusMessage,
				"details": map[string]interface{}{
					"error_rate_percent": errorRate,
					"total_requests":     stats.TotalRequests,
					"failed_requests":    stats.FailedRequests,
					"rate_limit_hits":    stats.RateLimitHits,
				},
				"server": map[string]interface{}{
					"version":  r.version,
					"youtrack": r.config.BaseURL,
				},
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}

			return r.marshalResult("health://status", healthData)
		},
	}
}

// auditResource returns the audit://recent resource
func (r *Registry) auditResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "audit://recent",
			Name:        "audit://recent",
			Title:       "Recent Audit Entries",
			Description: "Recent tool executions with outcomes, durations, and trace IDs",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			auditData := map[string]interface{}{
				"enabled":   r.auditLog.IsEnabled(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}
			if r.auditLog.IsEnabled() {
				auditData["entries"] = r.auditLog.GetRecentEntries(50)
				auditData["stats"] = r.auditLog.GetStats()
			} else {
				auditData["entries"] = []audit.Entry{}
			}

			return r.marshalResult("audit://recent", auditData)
		},
	}
}

// sessionResource returns the session://context resource
func (r *Registry) sessionResource() RegisteredResource {
	return RegisteredResource{
		Resource: &mcp.Resource{
			URI:         "session://context",
			Name:        "session://context",
			Title:       "Session Context",
			Description: "What this session has searched, viewed, and hit errors on, plus suggested next tools",
			MIMEType:    "application/json",
		},
		Handler: func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			sessionData := map[string]interface{}{
				"stats":           r.session.GetStats(),
				"recent_searches": r.session.GetRecentSearches(),
				"recent_errors":   r.session.GetRecentErrors(),
				"suggested_tools": r.session.SuggestNextTools(),
				"timestamp":       time.Now().UTC().Format(time.RFC3339),
			}

			return r.marshalResult("session://context", sessionData)
		},
	}
}

// formatToolLatency converts time.Duration map to milliseconds for JSON
func formatToolLatency(latency map[string]time.Duration) map[string]int64 {
	result := make(map[string]int64, len(latency))
	for tool, duration := range latency {
		result[tool] = duration.Milliseconds()
	}
	return result
}

// GetResourceTemplates returns resource templates for common payloads.
// These templates help LLMs understand the structure of data they can create.
func (r *Registry) GetResourceTemplates() []mcp.ResourceTemplate {
	return []mcp.ResourceTemplate{
		{
			URITemplate: "template://query/{topic}",
			Name:        "Search Query Template",
			Description: "YouTrack search query examples. Topics: 'basics', 'dates', 'fields'. Use before running search_issues.",
			MIMEType:    "application/json",
		},
		{
			URITemplate: "template://issue/{kind}",
			Name:        "Issue Creation Template",
			Description: "Template for creating issues. Kinds: 'bug', 'task'. Use with the create_issue tool.",
			MIMEType:    "application/json",
		},
		{
			URITemplate: "template://worklog/{style}",
			Name:        "Work Log Template",
			Description: "Template for logging spent time. Styles: 'quick', 'detailed'. Use with the log_work_time tool.",
			MIMEType:    "application/json",
		},
	}
}

// GetTemplateHandler returns a handler for resource templates
func (r *Registry) GetTemplateHandler() mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI

		var content map[string]interface{}

		switch {
		case matchTemplate(uri, "template://query/"):
			content = getQueryTemplate(extractTemplateName(uri, "template://query/"))
		case matchTemplate(uri, "template://issue/"):
			content = getIssueTemplate(extractTemplateName(uri, "template://issue/"))
		case matchTemplate(uri, "template://worklog/"):
			content = getWorklogTemplate(extractTemplateName(uri, "template://worklog/"))
		default:
			content = map[string]interface{}{
				"error": "Unknown template type",
				"available_templates": []string{
					"template://query/{topic}",
					"template://issue/{kind}",
					"template://worklog/{style}",
				},
			}
		}

		jsonContent, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			r.logger.Error("Failed to marshal template", zap.Error(err))
			return nil, err
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(jsonContent),
				},
			},
		}, nil
	}
}

func matchTemplate(uri, prefix string) bool {
	return len(uri) > len(prefix) && uri[:len(prefix)] == prefix
}

func extractTemplateName(uri, prefix string) string {
	return uri[len(prefix):]
}

// getQueryTemplate returns YouTrack search query examples
func getQueryTemplate(topic string) map[string]interface{} {
	switch topic {
	case "dates":
		return map[string]interface{}{
			"_template_info": map[string]interface{}{
				"description": "Date-based YouTrack search queries",
				"topic":       "dates",
				"usage":       "Use these examples with the search_issues tool",
			},
			"examples": []map[string]interface{}{
				{
					"name":        "Updated recently",
					"query":       "project: DEMO updated: {This week}",
					"description": "Issues touched this week",
				},
				{
					"name":        "Created in a range",
					"query":       "created: 2026-08-01 .. 2026-08-23",
					"description": "Issues created between two dates",
				},
				{
					"name":        "Stale open issues",
					"query":       "#Unresolved updated: * .. {Last month}",
					"description": "Open issues untouched for over a month",
				},
			},
		}
	case "fields":
		return map[string]interface{}{
			"_template_info": map[string]interface{}{
				"description": "Attribute-based YouTrack search queries",
				"topic":       "fields",
				"usage":       "Use these examples with the search_issues tool",
			},
			"examples": []map[string]interface{}{
				{
					"name":        "By assignee",
					"query":       "assignee: me #Unresolved",
					"description": "My open issues",
				},
				{
					"name":        "By priority",
					"query":       "project: DEMO Priority: Critical",
					"description": "Critical issues in a project",
				},
				{
					"name":        "Sorted",
					"query":       "project: DEMO sort by: updated desc",
					"description": "Most recently updated first",
				},
			},
		}
	default:
		return map[string]interface{}{
			"_template_info": map[string]interface{}{
				"description": "Basic YouTrack search queries",
				"topic":       "basics",
				"usage":       "Use these examples with the search_issues tool",
			},
			"examples": []map[string]interface{}{
				{
					"name":        "Free text",
					"query":       "login timeout",
					"description": "Full-text search across summaries and descriptions",
				},
				{
					"name":        "Project scoped",
					"query":       "project: DEMO #Unresolved",
					"description": "Open issues of one project",
				},
				{
					"name":        "By issue number",
					"query":       "DEMO-123",
					"description": "Bare numbers like '123' are rewritten against the default project",
				},
			},
			"_related_tools": []string{
				"search_issues",
				"get_project_issues",
			},
		}
	}
}

// getIssueTemplate returns an issue creation template
func getIssueTemplate(kind string) map[string]interface{} {
	summary := "Short, imperative summary of the task"
	description := "## Goal\n\nWhat should be done and why.\n\n## Notes\n\nConstraints, links, context."
	if kind == "bug" {
		summary = "Component: short description of the defect"
		description = "## Steps to reproduce\n\n1. ...\n\n## Expected\n\n...\n\n## Actual\n\n..."
	}

	return map[string]interface{}{
		"_template_info": map[string]interface{}{
			"description": "Issue creation template",
			"kind":        kind,
			"usage":       "Fill in the fields and call the create_issue tool",
		},
		"issue": map[string]interface{}{
			"project":     "DEMO",
			"summary":     summary,
			"description": description,
		},
		"_related_tools": []string{
			"create_issue",
			"update_issue",
			"add_comment",
			"link_issues",
		},
	}
}

// getWorklogTemplate returns a work logging template
func getWorklogTemplate(style string) map[string]interface{} {
	if style == "detailed" {
		return map[string]interface{}{
			"_template_info": map[string]interface{}{
				"description": "Detailed work log entry",
				"style":       "detailed",
				"usage":       "Fill in the fields and call the log_work_time tool",
			},
			"work_item": map[string]interface{}{
				"issue_id":    "DEMO-123",
				"duration":    "1h 30m",
				"description": "What was done during this time",
				"date":        "2026-08-23",
			},
			"_duration_formats": []string{"2h", "45m", "1h 15m", "90"},
			"_related_tools": []string{
				"log_work_time",
				"get_work_items",
				"get_work_types",
			},
		}
	}

	return map[string]interface{}{
		"_template_info": map[string]interface{}{
			"description": "Quick work log entry",
			"style":       "quick",
			"usage":       "Only issue_id and duration are required; date defaults to today",
		},
		"work_item": map[string]interface{}{
			"issue_id": "123",
			"duration": "30m",
		},
		"_related_tools": []string{
			"log_work_time",
		},
	}
}
