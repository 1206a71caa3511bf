package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
	"github.com/ytwork/youtrack-mcp-server/internal/format"
)

const linkFields = "id,direction,linkType(id,name,sourceToTarget,targetToSource,directed)," +
	"issues(id,idReadable,summary,resolved)"

const linkTypeFields = "id,name,sourceToTarget,targetToSource,directed,aggregation"

// LinkIssuesTool links two issues via the command API.
type LinkIssuesTool struct {
	*BaseTool
}

// NewLinkIssuesTool creates a new LinkIssuesTool instance.
func NewLinkIssuesTool(client *client.Client, logger *zap.Logger) *LinkIssuesTool {
	return &LinkIssuesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *LinkIssuesTool) Name() string {
	return "link_issues"
}

// Description returns a human-readable description of the tool.
func (t *LinkIssuesTool) Description() string {
	return "Link two YouTrack issues. The link type is a command phrase such as 'relates to', 'depends on', 'duplicates', or 'is required for'. Use get_link_types to list the phrases your instance supports."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *LinkIssuesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue the link starts from, e.g. 'PROJ-123'",
			},
			"target_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue the link points to, e.g. 'PROJ-456'",
			},
			"link_type": map[string]interface{}{
				"type":        "string",
				"description": "Link command phrase (default 'relates to')",
			},
		},
		"required": []string{"source_id", "target_id"},
	}
}

// Annotations returns nil; defaults apply to mutating tools.
func (t *LinkIssuesTool) Annotations() *mcp.ToolAnnotations {
	return nil
}

// DefaultTimeout uses the client default.
func (t *LinkIssuesTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute applies the link command to the source issue.
func (t *LinkIssuesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	sourceID, err := GetStringParam(arguments, "source_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	targetID, err := GetStringParam(arguments, "target_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	linkType, err := GetStringParam(arguments, "link_type", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if linkType == "" {
		linkType = "relates to"
	}

	source := format.NormalizeIssueID(strings.TrimSpace(sourceID), t.DefaultProject())
	target := format.NormalizeIssueID(strings.TrimSpace(targetID), t.DefaultProject())
	command := fmt.Sprintf("%s %s", linkType, target)

	req := &client.Request{
		Method: "POST",
		Path:   "commands",
		Body: map[string]interface{}{
			"query":  command,
			"issues": []map[string]interface{}{{"idReadable": source}},
		},
	}

	if _, err := t.ExecuteRequest(ctx, req); err != nil {
		return NewToolResultErrorWithSuggestion(
			err.Error(),
			"Verify both issue IDs exist and that the link type phrase matches one from get_link_types.",
		), nil
	}

	return t.FormatResponse(map[string]interface{}{
		"status":    "linked",
		"source_id": source,
		"target_id": target,
		"link_type": linkType,
		"command":   command,
	})
}

// GetIssueLinksTool lists the links of an issue.
type GetIssueLinksTool struct {
	*BaseTool
}

// NewGetIssueLinksTool creates a new GetIssueLinksTool instance.
func NewGetIssueLinksTool(client *client.Client, logger *zap.Logger) *GetIssueLinksTool {
	return &GetIssueLinksTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetIssueLinksTool) Name() string {
	return "get_issue_links"
}

// Description returns a human-readable description of the tool.
func (t *GetIssueLinksTool) Description() string {
	return "Get all links of a YouTrack issue, grouped by link type and direction"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetIssueLinksTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"issue_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue ID, e.g. 'PROJ-123'",
			},
		},
		"required": []string{"issue_id"},
	}
}

// Annotations marks the tool as read-only.
func (t *GetIssueLinksTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetIssueLinksTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute lists the links.
func (t *GetIssueLinksTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issueID, err := GetStringParam(arguments, "issue_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	normalized := format.NormalizeIssueID(strings.TrimSpace(issueID), t.DefaultProject())

	req := &client.Request{
		Method: "GET",
		Path:   "issues/" + normalized + "/links",
		Query:  map[string]string{"fields": linkFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleGetError(err, "Issue", normalized, "search_issues"), nil
	}

	links, _ := result.([]interface{})
	if links == nil {
		links = []interface{}{}
	}

	// YouTrack returns one entry per link type even when empty; keep only
	// the ones that actually carry linked issues.
	populated := make([]interface{}, 0, len(links))
	for _, link := range links {
		linkMap, ok := link.(map[string]interface{})
		if !ok {
			continue
		}
		if issues, ok := linkMap["issues"].([]interface{}); ok && len(issues) > 0 {
			populated = append(populated, linkMap)
		}
	}

	return t.FormatResponse(map[string]interface{}{
		"issue_id": normalized,
		"count":    len(populated),
		"links":    populated,
	})
}

// GetLinkTypesTool lists the issue link types available on the instance.
type GetLinkTypesTool struct {
	*BaseTool
}

// NewGetLinkTypesTool creates a new GetLinkTypesTool instance.
func NewGetLinkTypesTool(client *client.Client, logger *zap.Logger) *GetLinkTypesTool {
	return &GetLinkTypesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetLinkTypesTool) Name() string {
	return "get_link_types"
}

// Description returns a human-readable description of the tool.
func (t *GetLinkTypesTool) Description() string {
	return "List the issue link types configured on the YouTrack instance, with their directed command phrases"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetLinkTypesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// Annotations marks the tool as read-only.
func (t *GetLinkTypesTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetLinkTypesTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute lists the link types.
func (t *GetLinkTypesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	req := &client.Request{
		Method: "GET",
		Path:   "issueLinkTypes",
		Query:  map[string]string{"fields": linkTypeFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	return t.FormatResponseWithSummary(result, "link types")
}
