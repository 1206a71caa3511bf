// Package server provides the MCP server implementation for YouTrack.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/audit"
	"github.com/ytwork/youtrack-mcp-server/internal/auth"
	"github.com/ytwork/youtrack-mcp-server/internal/cache"
	"github.com/ytwork/youtrack-mcp-server/internal/client"
	"github.com/ytwork/youtrack-mcp-server/internal/config"
	"github.com/ytwork/youtrack-mcp-server/internal/health"
	"github.com/ytwork/youtrack-mcp-server/internal/metrics"
	"github.com/ytwork/youtrack-mcp-server/internal/prompts"
	"github.com/ytwork/youtrack-mcp-server/internal/resources"
	"github.com/ytwork/youtrack-mcp-server/internal/session"
	"github.com/ytwork/youtrack-mcp-server/internal/tools"
	"github.com/ytwork/youtrack-mcp-server/internal/tracing"
)

// Server represents the MCP server
type Server struct {
	mcpServer     *mcp.Server
	apiClient     *client.Client
	config        *config.Config
	logger        *zap.Logger
	metrics       *metrics.Metrics
	cache         *cache.Manager
	auditLog      *audit.Logger
	session       *session.Context
	version       string
	toolCount     int
	healthServer  *health.Server
	authenticator *auth.Authenticator
}

// New creates a new MCP server instance.
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	metricsTracker := metrics.New(logger)

	apiClient, err := client.New(cfg, logger, metricsTracker, version)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	// Authenticator validates the token shape and serves the health checker
	authenticator, err := auth.New(cfg.APIToken, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	// Create MCP server with tools, prompts, and resources capabilities
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "YouTrack MCP Server",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasPrompts:   true,
		HasResources: true,
	})

	cacheConfig := cache.DefaultConfig()
	cacheConfig.Enabled = cfg.EnableCache

	s := &Server{
		mcpServer:     mcpServer,
		apiClient:     apiClient,
		config:        cfg,
		logger:        logger,
		metrics:       metricsTracker,
		cache:         cache.NewManager(cacheConfig),
		auditLog:      audit.NewLogger(logger, cfg.EnableAuditLog),
		session:       session.New(),
		version:       version,
		authenticator: authenticator,
	}

	// Create health server if port is configured (port > 0)
	if cfg.EnableHealthServer && cfg.HealthPort > 0 {
		healthChecker := health.New(apiClient, authenticator, logger)
		s.healthServer = health.NewServer(healthChecker, logger, cfg.HealthPort, cfg.HealthBindAddr, cfg.EnableMetrics)
	}

	// Register all tools
	s.registerTools()

	// Register all prompts
	s.registerPrompts()

	// Register all resources
	s.registerResources()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	allTools := tools.GetAllTools(s.apiClient, s.logger)
	for _, t := range allTools {
		s.registerTool(t)
	}
	s.toolCount = len(allTools)
	s.logger.Info("Registered all MCP tools", zap.Int("count", s.toolCount))
}

// registerTool is a helper to register a tool with metrics, caching,
// auditing, and session tracking wrapped around its Execute method.
func (s *Server) registerTool(t tools.Tool) {
	toolName := t.Name()

	mcpTool := &mcp.Tool{
		Name:        toolName,
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		ctx, span := tracing.ToolSpan(ctx, toolName)
		defer span.End()

		// Add client to context for tool execution
		ctx = tools.WithClient(ctx, s.apiClient)

		var args map[string]interface{}
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.metrics.RecordToolExecution(toolName, false, time.Since(start))
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}

		// Serve near-static reads from cache, keyed by the raw arguments
		cacheKey := string(request.Params.Arguments)
		if s.cache.Cacheable(toolName) {
			if cached, ok := s.cache.Get(toolName, cacheKey); ok {
				if result, ok := cached.(*mcp.CallToolResult); ok {
					s.logger.Debug("Cache hit", zap.String("tool", toolName))
					return result, nil
				}
			}
		}

		if timeout := t.DefaultTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		result, err := t.Execute(ctx, args)
		elapsed := time.Since(start)
		success := err == nil && (result == nil || !result.IsError)
		s.metrics.RecordToolExecution(toolName, success, elapsed)
		s.auditLog.LogToolExecution(ctx, toolName, toolOperation(toolName), string(tools.ToolCategories[toolName]), resourceIDFromArgs(args), success, elapsed, err)
		s.recordSession(toolName, args, result, err, success)

		if err != nil {
			tracing.RecordError(span, err)
			return result, err
		}
		tracing.SetSuccess(span)

		if success && s.cache.Cacheable(toolName) {
			s.cache.Set(toolName, cacheKey, result)
		}
		if success {
			s.cache.InvalidateRelated(toolName)
		}

		return result, nil
	}

	s.mcpServer.AddTool(mcpTool, handler)
	s.logger.Debug("Registered tool", zap.String("tool", mcpTool.Name))
}

// recordSession updates the session context after a tool call.
func (s *Server) recordSession(toolName string, args map[string]interface{}, result *mcp.CallToolResult, err error, success bool) {
	if !success {
		message := "tool returned an error result"
		if err != nil {
			message = err.Error()
		} else if result != nil && len(result.Content) > 0 {
			if text, ok := result.Content[0].(*mcp.TextContent); ok {
				message = text.Text
			}
		}
		s.session.RecordError(toolName, message)
		return
	}

	switch toolName {
	case "search_issues":
		query, _ := args["query"].(string)
		s.session.RecordSearch(session.SearchInfo{Query: query, ResultCount: 1})
	case "get_issue", "update_issue", "add_comment", "log_work_time":
		id, _ := args["issue_id"].(string)
		s.session.RecordResource("issue", id, "")
	case "get_project", "get_project_issues":
		key, _ := args["project"].(string)
		s.session.RecordResource("project", key, "")
	case "get_user":
		id, _ := args["user_id"].(string)
		s.session.RecordResource("user", id, "")
	}
}

// toolOperation maps a tool name to an audit operation verb.
func toolOperation(toolName string) string {
	switch {
	case strings.HasPrefix(toolName, "create_"):
		return "create"
	case strings.HasPrefix(toolName, "update_"):
		return "update"
	case strings.HasPrefix(toolName, "add_"), strings.HasPrefix(toolName, "log_"), strings.HasPrefix(toolName, "link_"):
		return "create"
	case strings.HasPrefix(toolName, "search_"), strings.HasPrefix(toolName, "find_"):
		return "query"
	default:
		return "read"
	}
}

// resourceIDFromArgs extracts the primary identifier from tool arguments.
func resourceIDFromArgs(args map[string]interface{}) string {
	for _, key := range []string{"issue_id", "project", "user_id"} {
		if id, ok := args[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// registerPrompts registers all available MCP prompts
func (s *Server) registerPrompts() {
	registry := prompts.NewRegistry(s.logger)

	for _, p := range registry.GetPrompts() {
		s.mcpServer.AddPrompt(p.Prompt, p.Handler)
		s.logger.Debug("Registered prompt", zap.String("prompt", p.Prompt.Name))
	}

	s.logger.Info("Registered all MCP prompts", zap.Int("count", len(registry.GetPrompts())))
}

// registerResources registers all available MCP resources and resource templates
func (s *Server) registerResources() {
	registry := resources.NewRegistry(s.config, s.metrics, s.auditLog, s.session, s.logger, s.version, s.toolCount)

	// Register static resources
	for _, r := range registry.GetResources() {
		s.mcpServer.AddResource(r.Resource, r.Handler)
		s.logger.Debug("Registered resource", zap.String("uri", r.Resource.URI))
	}

	// Register resource templates for dynamic resource access
	templateHandler := registry.GetTemplateHandler()
	for _, t := range registry.GetResourceTemplates() {
		s.mcpServer.AddResourceTemplate(&t, templateHandler)
		s.logger.Debug("Registered resource template", zap.String("uri_template", t.URITemplate))
	}

	s.logger.Info("Registered all MCP resources",
		zap.Int("static_count", len(registry.GetResources())),
		zap.Int("template_count", len(registry.GetResourceTemplates())),
	)
}

// Start starts the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server")

	// Start health HTTP server in background if configured
	if s.healthServer != nil {
		go func() {
			if err := s.healthServer.Start(); err != nil {
				s.logger.Error("Health server error", zap.Error(err))
			}
		}()
		// Mark as ready once server is starting
		s.healthServer.SetReady(true)
	}

	defer func() {
		// Log final metrics on shutdown
		s.metrics.LogStats()

		// Shutdown health server
		if s.healthServer != nil {
			s.healthServer.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Failed to shutdown health server", zap.Error(err))
			}
		}

		if err := s.apiClient.Close(); err != nil {
			s.logger.Error("Failed to close API client", zap.Error(err))
		}
	}()

	// Start serving using stdio transport
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// GetMetrics returns the server's metrics tracker for external access
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}
