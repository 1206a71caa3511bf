package tools

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
	"github.com/ytwork/youtrack-mcp-server/internal/format"
)

// Field selections requested from the API. YouTrack returns only the fields
// named here, so these determine the shape of every tool response.
const (
	issueFields = "id,idReadable,summary,description,created,updated,resolved," +
		"project(id,shortName,name),reporter(id,login,fullName),updater(id,login,fullName)," +
		"customFields(id,name,value(id,name,login,fullName,presentation))"
	commentFields = "id,text,created,updated,author(id,login,fullName)"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// GetIssueTool retrieves a single issue by its ID.
type GetIssueTool struct {
	*BaseTool
}

// NewGetIssueTool creates a new GetIssueTool instance.
func NewGetIssueTool(client *client.Client, logger *zap.Logger) *GetIssueTool {
	return &GetIssueTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetIssueTool) Name() string {
	return "get_issue"
}

// Description returns a human-readable description of the tool.
func (t *GetIssueTool) Description() string {
	return "Get details of a YouTrack issue by ID. Bare numbers are resolved against the default project, so '123' works when a default project is configured."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetIssueTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"issue_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue ID, e.g. 'PROJ-123' or just '123' with a default project",
			},
		},
		"required": []string{"issue_id"},
	}
}

// Annotations marks the tool as read-only.
func (t *GetIssueTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetIssueTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute retrieves the issue.
func (t *GetIssueTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issueID, err := GetStringParam(arguments, "issue_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	issueID = strings.TrimSpace(issueID)
	if issueID == "" {
		return NewToolResultError("issue_id is required and must be a non-empty string"), nil
	}

	normalized := format.NormalizeIssueID(issueID, t.DefaultProject())

	req := &client.Request{
		Method: "GET",
		Path:   "issues/" + normalized,
		Query:  map[string]string{"fields": issueFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleGetError(err, "Issue", normalized, "search_issues"), nil
	}

	return t.FormatResponse(result)
}

// SearchIssuesTool searches issues with the YouTrack query language.
type SearchIssuesTool struct {
	*BaseTool
}

// NewSearchIssuesTool creates a new SearchIssuesTool instance.
func NewSearchIssuesTool(client *client.Client, logger *zap.Logger) *SearchIssuesTool {
	return &SearchIssuesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *SearchIssuesTool) Name() string {
	return "search_issues"
}

// Description returns a human-readable description of the tool.
func (t *SearchIssuesTool) Description() string {
	return "Search YouTrack issues using query syntax (e.g. 'project: DEMO #Unresolved') or plain text. Bare issue numbers in the query are expanded with the default project key."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *SearchIssuesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "YouTrack search query or free text",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of issues to return (default 10, max 100)",
			},
		},
		"required": []string{"query"},
	}
}

// Annotations marks the tool as read-only.
func (t *SearchIssuesTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout allows extra time for broad searches.
func (t *SearchIssuesTool) DefaultTimeout() time.Duration {
	return 60 * time.Second
}

// Execute runs the search.
func (t *SearchIssuesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	query, err := GetStringParam(arguments, "query", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	limit, err := GetLimitParam(arguments, defaultSearchLimit, maxSearchLimit)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	normalized := format.NormalizeQuery(query, t.DefaultProject())

	queryParams := map[string]string{
		"query":  normalized,
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
		return HandleSearchError(err, normalized), nil
	}

	issues, _ := result.([]interface{})
	if issues == nil {
		issues = []interface{}{}
	}

	wrapped := map[string]interface{}{
		"query":  query,
		"count":  len(issues),
		"issues": issues,
	}
	if normalized != query {
		wrapped["normalized_query"] = normalized
	}

	return t.FormatResponseWithSummary(wrapped, "issues")
}

// CreateIssueTool creates a new issue in a project.
type CreateIssueTool struct {
	*BaseTool
}

// NewCreateIssueTool creates a new CreateIssueTool instance.
func NewCreateIssueTool(client *client.Client, logger *zap.Logger) *CreateIssueTool {
	return &CreateIssueTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *CreateIssueTool) Name() string {
	return "create_issue"
}

// Description returns a human-readable description of the tool.
func (t *CreateIssueTool) Description() string {
	return "Create a new issue in a YouTrack project. When no project is given, the configured default project is used."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *CreateIssueTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"project": map[string]interface{}{
				"type":        "string",
				"description": "Project key (shortName), e.g. 'DEMO'. Defaults to the configured default project",
			},
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "The issue summary (title)",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Optional issue description, supports Markdown",
			},
		},
		"required": []string{"summary"},
	}
}

// Annotations returns nil; defaults apply to mutating tools.
func (t *CreateIssueTool) Annotations() *mcp.ToolAnnotations {
	return nil
}

// DefaultTimeout uses the client default.
func (t *CreateIssueTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute creates the issue.
func (t *CreateIssueTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	summary, err := GetStringParam(arguments, "summary", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(summary) == "" {
		return NewToolResultError("summary is required and must be a non-empty string"), nil
	}

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

	project, err := t.resolveProject(ctx, projectKey)
	if err != nil {
		return HandleGetError(err, "Project", projectKey, "get_projects"), nil
	}

	body := map[string]interface{}{
		"project": map[string]interface{}{"id": project["id"]},
		"summary": summary,
	}
	if description, _ := GetStringParam(arguments, "description", false); description != "" {
		body["description"] = description
	}

	req := &client.Request{
		Method: "POST",
		Path:   "issues",
		Query:  map[string]string{"fields": issueFields},
		Body:   body,
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	return t.FormatResponse(result)
}

// UpdateIssueTool updates the summary or description of an issue.
type UpdateIssueTool struct {
	*BaseTool
}

// NewUpdateIssueTool creates a new UpdateIssueTool instance.
func NewUpdateIssueTool(client *client.Client, logger *zap.Logger) *UpdateIssueTool {
	return &UpdateIssueTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *UpdateIssueTool) Name() string {
	return "update_issue"
}

// Description returns a human-readable description of the tool.
func (t *UpdateIssueTool) Description() string {
	return "Update the summary and/or description of an existing YouTrack issue"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *UpdateIssueTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"issue_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue ID, e.g. 'PROJ-123'",
			},
			"summary": map[string]interface{}{
				"type":        "string",
				"description": "New summary for the issue",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "New description for the issue",
			},
		},
		"required": []string{"issue_id"},
	}
}

// Annotations returns nil; defaults apply to mutating tools.
func (t *UpdateIssueTool) Annotations() *mcp.ToolAnnotations {
	return nil
}

// DefaultTimeout uses the client default.
func (t *UpdateIssueTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute applies the update.
func (t *UpdateIssueTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issueID, err := GetStringParam(arguments, "issue_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	normalized := format.NormalizeIssueID(strings.TrimSpace(issueID), t.DefaultProject())

	body := map[string]interface{}{}
	if summary, _ := GetStringParam(arguments, "summary", false); summary != "" {
		body["summary"] = summary
	}
	if description, ok := arguments["description"]; ok {
		if s, ok := description.(string); ok {
			body["description"] = s
		}
	}
	if len(body) == 0 {
		return NewToolResultError("nothing to update: provide summary and/or description"), nil
	}

	req := &client.Request{
		Method: "POST",
		Path:   "issues/" + normalized,
		Query:  map[string]string{"fields": issueFields},
		Body:   body,
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleGetError(err, "Issue", normalized, "search_issues"), nil
	}

	return t.FormatResponse(result)
}

// AddCommentTool adds a comment to an issue.
type AddCommentTool struct {
	*BaseTool
}

// NewAddCommentTool creates a new AddCommentTool instance.
func NewAddCommentTool(client *client.Client, logger *zap.Logger) *AddCommentTool {
	return &AddCommentTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *AddCommentTool) Name() string {
	return "add_comment"
}

// Description returns a human-readable description of the tool.
func (t *AddCommentTool) Description() string {
	return "Add a comment to a YouTrack issue. Comment text supports Markdown."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *AddCommentTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"issue_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue ID, e.g. 'PROJ-123'",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "The comment text",
			},
		},
		"required": []string{"issue_id", "text"},
	}
}

// Annotations returns nil; defaults apply to mutating tools.
func (t *AddCommentTool) Annotations() *mcp.ToolAnnotations {
	return nil
}

// DefaultTimeout uses the client default.
func (t *AddCommentTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute adds the comment.
func (t *AddCommentTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issueID, err := GetStringParam(arguments, "issue_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	text, err := GetStringParam(arguments, "text", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(text) == "" {
		return NewToolResultError("text is required and must be a non-empty string"), nil
	}

	normalized := format.NormalizeIssueID(strings.TrimSpace(issueID), t.DefaultProject())

	req := &client.Request{
		Method: "POST",
		Path:   "issues/" + normalized + "/comments",
		Query:  map[string]string{"fields": commentFields},
		Body:   map[string]interface{}{"text": text},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleGetError(err, "Issue", normalized, "search_issues"), nil
	}

	return t.FormatResponse(result)
}
