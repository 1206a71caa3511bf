package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
)

const userFields = "id,login,fullName,email,online,banned"

// GetCurrentUserTool returns the authenticated user.
type GetCurrentUserTool struct {
	*BaseTool
}

// NewGetCurrentUserTool creates a new GetCurrentUserTool instance.
func NewGetCurrentUserTool(client *client.Client, logger *zap.Logger) *GetCurrentUserTool {
	return &GetCurrentUserTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetCurrentUserTool) Name() string {
	return "get_current_user"
}

// Description returns a human-readable description of the tool.
func (t *GetCurrentUserTool) Description() string {
	return "Get the YouTrack user the configured token belongs to"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetCurrentUserTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Annotations marks the tool as read-only.
func (t *GetCurrentUserTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetCurrentUserTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute fetches the current user.
func (t *GetCurrentUserTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	req := &client.Request{
		Method: "GET",
		Path:   "users/me",
		Query:  map[string]string{"fields": userFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	return t.FormatResponse(result)
}

// GetUserTool retrieves a user by ID or login.
type GetUserTool struct {
	*BaseTool
}

// NewGetUserTool creates a new GetUserTool instance.
func NewGetUserTool(client *client.Client, logger *zap.Logger) *GetUserTool {
	return &GetUserTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetUserTool) Name() string {
	return "get_user"
}

// Description returns a human-readable description of the tool.
func (t *GetUserTool) Description() string {
	return "Get a YouTrack user by database ID or login. For fuzzy lookup by name, use search_users."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetUserTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"user_id": map[string]interface{}{
				"type":        "string",
				"description": "The user's database ID (e.g. '1-3') or login (e.g. 'jane.doe')",
			},
		},
		"required": []string{"user_id"},
	}
}

// Annotations marks the tool as read-only.
func (t *GetUserTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetUserTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute fetches the user.
func (t *GetUserTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	userID, err := GetStringParam(arguments, "user_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return NewToolResultError("user_id is required and must be a non-empty string"), nil
	}

	req := &client.Request{
		Method: "GET",
		Path:   "users/" + userID,
		Query:  map[string]string{"fields": userFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			if user, ok := t.findUserByLogin(ctx, userID); ok {
				return t.FormatResponse(user)
			}
		}
		return HandleGetError(err, "User", userID, "search_users"), nil
	}

	return t.FormatResponse(result)
}

// findUserByLogin looks for a user whose login matches exactly, so get_user
// accepts logins as well as database IDs.
func (t *GetUserTool) findUserByLogin(ctx context.Context, login string) (map[string]interface{}, bool) {
	req := &client.Request{
		Method: "GET",
		Path:   "users",
		Query: map[string]string{
			"query":  login,
			"fields": userFields,
			"$top":   "10",
		},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return nil, false
	}

	users, _ := result.([]interface{})
	for _, item := range users {
		user, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if l, _ := user["login"].(string); strings.EqualFold(l, login) {
			return user, true
		}
	}
	return nil, false
}

// SearchUsersTool searches users by login, name, or email.
type SearchUsersTool struct {
	*BaseTool
}

// NewSearchUsersTool creates a new SearchUsersTool instance.
func NewSearchUsersTool(client *client.Client, logger *zap.Logger) *SearchUsersTool {
	return &SearchUsersTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *SearchUsersTool) Name() string {
	return "search_users"
}

// Description returns a human-readable description of the tool.
func (t *SearchUsersTool) Description() string {
	return "Search YouTrack users by login, full name, or email"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *SearchUsersTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search text matched against login, name, and email",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of users to return (default 10, max 100)",
			},
		},
		"required": []string{"query"},
	}
}

// Annotations marks the tool as read-only.
func (t *SearchUsersTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *SearchUsersTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute runs the user search.
func (t *SearchUsersTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	query, err := GetStringParam(arguments, "query", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return NewToolResultError("query is required and must be a non-empty string"), nil
	}

	limit, err := GetLimitParam(arguments, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	queryParams := map[string]string{
		"query":  query,
		"fields": userFields,
	}
	AddPaginationToQuery(queryParams, limit, 0)

	req := &client.Request{
		Method: "GET",
		Path:   "users",
		Query:  queryParams,
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	users, _ := result.([]interface{})
	if users == nil {
		users = []interface{}{}
	}

	return t.FormatResponseWithSummary(map[string]interface{}{
		"query": query,
		"count": len(users),
		"users": users,
	}, "users")
}
