package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
)

const (
	projectFields     = "id,shortName,name,archived,leader(id,login,fullName)"
	projectFullFields = projectFields + ",description,createdBy(id,login,fullName)"

	// Admin project listings are small; one page covers realistic instances.
	projectListTop = "500"
)

// resolveProject finds a project by its shortName (case-insensitive) or by
// its database ID. Needed because the create and settings endpoints only
// accept database IDs, while users think in project keys.
func (t *BaseTool) resolveProject(ctx context.Context, keyOrID string) (map[string]interface{}, error) {
	req := &client.Request{
		Method: "GET",
		Path:   "admin/projects",
		Query: map[string]string{
			"fields": projectFields,
			"$top":   projectListTop,
		},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	items, _ := result.([]interface{})
	for _, item := range items {
		project, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		shortName, _ := project["shortName"].(string)
		id, _ := project["id"].(string)
		if strings.EqualFold(shortName, keyOrID) || id == keyOrID {
			return project, nil
		}
	}

	return nil, &APIError{
		StatusCode: 404,
		Message:    fmt.Sprintf("project %q not found", keyOrID),
	}
}

// GetProjectsTool lists the projects on the instance.
type GetProjectsTool struct {
	*BaseTool
}

// NewGetProjectsTool creates a new GetProjectsTool instance.
func NewGetProjectsTool(client *client.Client, logger *zap.Logger) *GetProjectsTool {
	return &GetProjectsTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetProjectsTool) Name() string {
	return "get_projects"
}

// Description returns a human-readable description of the tool.
func (t *GetProjectsTool) Description() string {
	return "List YouTrack projects with their keys and leads. Archived projects are hidden unless include_archived is set."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetProjectsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"include_archived": map[string]interface{}{
				"type":        "boolean",
				"description": "Include archived projects in the listing (default false)",
			},
		},
	}
}

// Annotations marks the tool as read-only.
func (t *GetProjectsTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetProjectsTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute lists the projects.
func (t *GetProjectsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	includeArchived, err := GetBoolParam(arguments, "include_archived", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	req := &client.Request{
		Method: "GET",
		Path:   "admin/projects",
		Query: map[string]string{
			"fields": projectFields,
			"$top":   projectListTop,
		},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	items, _ := result.([]interface{})
	projects := make([]interface{}, 0, len(items))
	for _, item := range items {
		project, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if archived, _ := project["archived"].(bool); archived && !includeArchived {
			continue
		}
		projects = append(projects, project)
	}

	return t.FormatResponseWithSummary(map[string]interface{}{
		"count":    len(projects),
		"projects": projects,
	}, "projects")
}

// GetProjectTool gets a single project by key or database ID.
type GetProjectTool struct {
	*BaseTool
}

// NewGetProjectTool creates a new GetProjectTool instance.
func NewGetProjectTool(client *client.Client, logger *zap.Logger) *GetProjectTool {
	return &GetProjectTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetProjectTool) Name() string {
	return "get_project"
}

// Description returns a human-readable description of the tool.
func (t *GetProjectTool) Description() string {
	return "Get details of a YouTrack project by its key (e.g. 'DEMO') or database ID"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetProjectTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"project": map[string]interface{}{
				"type":        "string",
				"description": "Project key (shortName) or database ID",
			},
		},
		"required": []string{"project"},
	}
}

// Annotations marks the tool as read-only.
func (t *GetProjectTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetProjectTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute resolves and fetches the project.
func (t *GetProjectTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	projectKey, err := GetStringParam(arguments, "project", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	resolved, err := t.resolveProject(ctx, strings.TrimSpace(projectKey))
	if err != nil {
		return HandleGetError(err, "Project", projectKey, "get_projects"), nil
	}

	id, _ := resolved["id"].(string)
	req := &client.Request{
		Method: "GET",
		Path:   "admin/projects/" + id,
		Query:  map[string]string{"fields": projectFullFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleGetError(err, "Project", projectKey, "get_projects"), nil
	}

	return t.FormatResponse(result)
}

// FindProjectTool searches projects by name or key substring.
type FindProjectTool struct {
	*BaseTool
}

// NewFindProjectTool creates a new FindProjectTool instance.
func NewFindProjectTool(client *client.Client, logger *zap.Logger) *FindProjectTool {
	return &FindProjectTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *FindProjectTool) Name() string {
	return "find_project"
}

// Description returns a human-readable description of the tool.
func (t *FindProjectTool) Description() string {
	return "Find YouTrack projects whose name or key matches a search term (case-insensitive substring match)"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *FindProjectTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"term": map[string]interface{}{
				"type":        "string",
				"description": "Search term to match against project names and keys",
			},
		},
		"required": []string{"term"},
	}
}

// Annotations marks the tool as read-only.
func (t *FindProjectTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *FindProjectTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute performs the match over the full project list.
func (t *FindProjectTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	term, err := GetStringParam(arguments, "term", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return NewToolResultError("term is required and must be a non-empty string"), nil
	}

	req := &client.Request{
		Method: "GET",
		Path:   "admin/projects",
		Query: map[string]string{
			"fields": projectFields,
			"$top":   projectListTop,
		},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	needle := strings.ToLower(term)
	items, _ := result.([]interface{})
	matches := make([]interface{}, 0)
	for _, item := range items {
		project, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := project["name"].(string)
		shortName, _ := project["shortName"].(string)
		if strings.Contains(strings.ToLower(name), needle) ||
			strings.Contains(strings.ToLower(shortName), needle) {
			matches = append(matches, project)
		}
	}

	return t.FormatResponseWithSummary(map[string]interface{}{
		"term":     term,
		"count":    len(matches),
		"projects": matches,
	}, "projects")
}

// GetProjectIssuesTool lists the issues of one project.
type GetProjectIssuesTool struct {
	*BaseTool
}

// NewGetProjectIssuesTool creates a new GetProjectIssuesTool instance.
func NewGetProjectIssuesTool(client *client.Client, logger *zap.Logger) *GetProjectIssuesTool {
	return &GetProjectIssuesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetProjectIssuesTool) Name() string {
	return "get_project_issues"
}

// Description returns a human-readable description of the tool.
func (t *GetProjectIssuesTool) Description() string {
	return "List recent issues of a YouTrack project"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetProjectIssuesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"project": map[string]interface{}{
				"type":        "string",
				"description": "Project key (shortName), e.g. 'DEMO'. Defaults to the configured default project",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of issues to return (default 10, max 100)",
			},
		},
	}
}

// Annotations marks the tool as read-only.
func (t *GetProjectIssuesTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout allows extra time for broad listings.
func (t *GetProjectIssuesTool) DefaultTimeout() time.Duration {
	return 60 * time.Second
}

// Execute lists the project's issues.
func (t *GetProjectIssuesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	projectKey, err := GetStringParam(arguments, "project", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if projectKey == "" {
		projectKey = t.DefaultProject()
	}
	if projectKey == "" {
		return NewToolResultError("project is required when no default project is configured"), nil
	}

	limit, err := GetLimitParam(arguments, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	queryParams := map[string]string{
		"query":  fmt.Sprintf("project: %s", projectKey),
		"fields": issueFields,
	}
	AddPaginationToQuery(queryParams, limit, 0)

	req := &client.Request{
		Method: "GET",
		Path:   "issues",
		Query:  queryParams,
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleSearchError(err, queryParams["query"]), nil
	}

	issues, _ := result.([]interface{})
	if issues == nil {
		issues = []interface{}{}
	}

	return t.FormatResponseWithSummary(map[string]interface{}{
		"project": projectKey,
		"count":   len(issues),
		"issues":  issues,
	}, "issues")
}

// CreateProjectTool creates a new project.
type CreateProjectTool struct {
	*BaseTool
}

// NewCreateProjectTool creates a new CreateProjectTool instance.
func NewCreateProjectTool(client *client.Client, logger *zap.Logger) *CreateProjectTool {
	return &CreateProjectTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *CreateProjectTool) Name() string {
	return "create_project"
}

// Description returns a human-readable description of the tool.
func (t *CreateProjectTool) Description() string {
	return "Create a new YouTrack project. The lead defaults to the authenticated user when not given."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *CreateProjectTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "The project name",
			},
			"key": map[string]interface{}{
				"type":        "string",
				"description": "The project key (shortName), e.g. 'DEMO'",
			},
			"lead": map[string]interface{}{
				"type":        "string",
				"description": "Login of the project lead. Defaults to the current user",
			},
		},
		"required": []string{"name", "key"},
	}
}

// Annotations returns nil; defaults apply to mutating tools.
func (t *CreateProjectTool) Annotations() *mcp.ToolAnnotations {
	return nil
}

// DefaultTimeout uses the client default.
func (t *CreateProjectTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute creates the project.
func (t *CreateProjectTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	name, err := GetStringParam(arguments, "name", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	key, err := GetStringParam(arguments, "key", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(key) == "" {
		return NewToolResultError("name and key are required and must be non-empty strings"), nil
	}

	lead, err := GetStringParam(arguments, "lead", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	leaderID, err := t.resolveLeaderID(ctx, lead)
	if err != nil {
		return HandleGetError(err, "User", lead, "search_users"), nil
	}

	req := &client.Request{
		Method: "POST",
		Path:   "admin/projects",
		Query:  map[string]string{"fields": projectFields},
		Body: map[string]interface{}{
			"name":      name,
			"shortName": key,
			"leader":    map[string]interface{}{"id": leaderID},
		},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultErrorWithSuggestion(
			err.Error(),
			"Project creation requires admin permissions and a unique key. Check with get_projects whether the key is taken.",
		), nil
	}

	return t.FormatResponse(result)
}

// resolveLeaderID maps a login to a user database ID, or returns the
// current user's ID when login is empty.
func (t *BaseTool) resolveLeaderID(ctx context.Context, login string) (string, error) {
	if login == "" {
		req := &client.Request{
			Method: "GET",
			Path:   "users/me",
			Query:  map[string]string{"fields": "id,login"},
		}
		result, err := t.ExecuteRequest(ctx, req)
		if err != nil {
			return "", err
		}
		me, _ := result.(map[string]interface{})
		id, _ := me["id"].(string)
		if id == "" {
			return "", fmt.Errorf("could not determine current user")
		}
		return id, nil
	}

	req := &client.Request{
		Method: "GET",
		Path:   "users",
		Query: map[string]string{
			"query":  login,
			"fields": "id,login",
			"$top":   "10",
		},
	}
	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return "", err
	}

	items, _ := result.([]interface{})
	for _, item := range items {
		user, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if userLogin, _ := user["login"].(string); strings.EqualFold(userLogin, login) {
			id, _ := user["id"].(string)
			return id, nil
		}
	}

	return "", &APIError{
		StatusCode: 404,
		Message:    fmt.Sprintf("user %q not found", login),
	}
}
