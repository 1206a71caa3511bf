package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
	"github.com/ytwork/youtrack-mcp-server/internal/format"
)

const workItemFields = "id,date,created,duration(minutes,presentation),text," +
	"type(id,name),author(id,login,fullName)"

// LogWorkTimeTool records spent time on an issue.
type LogWorkTimeTool struct {
	*BaseTool
}

// NewLogWorkTimeTool creates a new LogWorkTimeTool instance.
func NewLogWorkTimeTool(client *client.Client, logger *zap.Logger) *LogWorkTimeTool {
	return &LogWorkTimeTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *LogWorkTimeTool) Name() string {
	return "log_work_time"
}

// Description returns a human-readable description of the tool.
func (t *LogWorkTimeTool) Description() string {
	return "Log spent time on a YouTrack issue. Duration accepts free text like '1h', '30m', '2h 15m', or plain minutes."
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *LogWorkTimeTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"issue_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue ID, e.g. 'PROJ-123'",
			},
			"duration": map[string]interface{}{
				"type":        "string",
				"description": "Time spent, e.g. '1h', '30m', '2h 15m', or plain minutes like '90'",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Optional note describing the work",
			},
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Date of the work in YYYY-MM-DD format (default today)",
			},
			"work_type": map[string]interface{}{
				"type":        "string",
				"description": "Work item type name (e.g. 'Development') or database ID. Use get_work_types to list them",
			},
		},
		"required": []string{"issue_id", "duration"},
	}
}

// Annotations returns nil; defaults apply to mutating tools.
func (t *LogWorkTimeTool) Annotations() *mcp.ToolAnnotations {
	return nil
}

// DefaultTimeout uses the client default.
func (t *LogWorkTimeTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute records the work item.
func (t *LogWorkTimeTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issueID, err := GetStringParam(arguments, "issue_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	durationStr, err := GetStringParam(arguments, "duration", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	minutes, err := format.ParseDuration(durationStr)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if minutes <= 0 {
		return NewToolResultError("duration must be greater than zero minutes"), nil
	}

	description, err := GetStringParam(arguments, "description", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}

	normalized := format.NormalizeIssueID(strings.TrimSpace(issueID), t.DefaultProject())

	body := map[string]interface{}{
		"duration": map[string]interface{}{"minutes": minutes},
	}
	if description != "" {
		body["text"] = description
	}

	dateStr, err := GetStringParam(arguments, "date", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if dateStr != "" {
		day, parseErr := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if parseErr != nil {
			return NewToolResultError(fmt.Sprintf("invalid date %q: use YYYY-MM-DD format", dateStr)), nil
		}
		body["date"] = day.UnixMilli()
	}

	workType, err := GetStringParam(arguments, "work_type", false)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if workType != "" {
		typeRef, resolveErr := t.resolveWorkItemType(ctx, normalized, strings.TrimSpace(workType))
		if resolveErr != nil {
			return NewToolResultErrorWithSuggestion(
				resolveErr.Error(),
				"Use get_work_types to list the work item types available for this project.",
			), nil
		}
		body["type"] = typeRef
	}

	req := &client.Request{
		Method: "POST",
		Path:   "issues/" + normalized + "/timeTracking/workItems",
		Query:  map[string]string{"fields": workItemFields},
		Body:   body,
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultErrorWithSuggestion(
			err.Error(),
			"Time tracking may be disabled for this project. Check the project settings or use get_work_types to verify.",
		), nil
	}

	summaryDescription := description
	if summaryDescription == "" {
		summaryDescription = "(no description)"
	}
	summaryDate := dateStr
	if summaryDate == "" {
		summaryDate = "today"
	}

	return t.FormatResponse(map[string]interface{}{
		"work_item": result,
		"summary": map[string]interface{}{
			"issue_id":        normalized,
			"duration_logged": format.FormatMinutes(minutes),
			"description":     summaryDescription,
			"date":            summaryDate,
		},
	})
}

// Work item type database IDs look like "42-1".
var workTypeIDPattern = regexp.MustCompile(`^\d+-\d+$`)

// resolveWorkItemType turns a work type name or database ID into the type
// reference the workItems endpoint expects. Names are matched against the
// project's configured work item types, case-insensitively.
func (t *LogWorkTimeTool) resolveWorkItemType(ctx context.Context, issueID, workType string) (map[string]interface{}, error) {
	if workTypeIDPattern.MatchString(workType) {
		return map[string]interface{}{"id": workType}, nil
	}

	projectKey, _, found := strings.Cut(issueID, "-")
	if !found {
		return nil, fmt.Errorf("cannot resolve work type %q: issue ID %q has no project prefix", workType, issueID)
	}

	project, err := t.resolveProject(ctx, projectKey)
	if err != nil {
		return nil, err
	}
	projectID, _ := project["id"].(string)

	req := &client.Request{
		Method: "GET",
		Path:   "admin/projects/" + projectID + "/timeTrackingSettings/workItemTypes",
		Query:  map[string]string{"fields": "id,name"},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	items, _ := result.([]interface{})
	names := make([]string, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if strings.EqualFold(name, workType) {
			id, _ := entry["id"].(string)
			return map[string]interface{}{"id": id}, nil
		}
		if name != "" {
			names = append(names, name)
		}
	}

	return nil, fmt.Errorf("work type %q not found for project %s (available: %s)", workType, projectKey, strings.Join(names, ", "))
}

// GetWorkItemsTool lists the work items logged on an issue.
type GetWorkItemsTool struct {
	*BaseTool
}

// NewGetWorkItemsTool creates a new GetWorkItemsTool instance.
func NewGetWorkItemsTool(client *client.Client, logger *zap.Logger) *GetWorkItemsTool {
	return &GetWorkItemsTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetWorkItemsTool) Name() string {
	return "get_work_items"
}

// Description returns a human-readable description of the tool.
func (t *GetWorkItemsTool) Description() string {
	return "List the work items logged on a YouTrack issue with total time spent"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetWorkItemsTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"issue_id": map[string]interface{}{
				"type":        "string",
				"description": "The issue ID, e.g. 'PROJ-123'",
			},
			"start_date": map[string]interface{}{
				"type":        "string",
				"description": "Only include work logged on or after this date (YYYY-MM-DD)",
			},
			"end_date": map[string]interface{}{
				"type":        "string",
				"description": "Only include work logged on or before this date (YYYY-MM-DD)",
			},
		},
		"required": []string{"issue_id"},
	}
}

// Annotations marks the tool as read-only.
func (t *GetWorkItemsTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetWorkItemsTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute lists the work items.
func (t *GetWorkItemsTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	issueID, err := GetStringParam(arguments, "issue_id", true)
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	normalized := format.NormalizeIssueID(strings.TrimSpace(issueID), t.DefaultProject())

	startMs, hasStart, err := parseWorkItemDate(arguments, "start_date")
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	endMs, hasEnd, err := parseWorkItemDate(arguments, "end_date")
	if err != nil {
		return NewToolResultError(err.Error()), nil
	}
	if hasEnd {
		// end_date is inclusive: cover the whole day
		endMs += int64(24 * time.Hour / time.Millisecond)
	}

	req := &client.Request{
		Method: "GET",
		Path:   "issues/" + normalized + "/timeTracking/workItems",
		Query:  map[string]string{"fields": workItemFields},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return HandleGetError(err, "Issue", normalized, "search_issues"), nil
	}

	items, _ := result.([]interface{})
	if items == nil {
		items = []interface{}{}
	}

	// The workItems endpoint has no date parameters, so filter here
	if hasStart || hasEnd {
		items = filterWorkItemsByDate(items, startMs, hasStart, endMs, hasEnd)
	}

	totalMinutes := sumWorkItemMinutes(items)
	totalHours := math.Round(float64(totalMinutes)/60*100) / 100

	return t.FormatResponse(map[string]interface{}{
		"issue_id":   normalized,
		"work_items": items,
		"summary": map[string]interface{}{
			"total_entries":      len(items),
			"total_time_minutes": totalMinutes,
			"total_time_hours":   totalHours,
		},
	})
}

// parseWorkItemDate reads an optional YYYY-MM-DD argument as UTC epoch ms.
func parseWorkItemDate(arguments map[string]interface{}, key string) (int64, bool, error) {
	value, err := GetStringParam(arguments, key, false)
	if err != nil {
		return 0, false, err
	}
	if value == "" {
		return 0, false, nil
	}
	day, parseErr := time.ParseInLocation("2006-01-02", value, time.UTC)
	if parseErr != nil {
		return 0, false, fmt.Errorf("invalid %s %q: use YYYY-MM-DD format", key, value)
	}
	return day.UnixMilli(), true, nil
}

// filterWorkItemsByDate keeps work items whose date falls inside the bounds.
// Items without a usable date field are dropped when a filter is active.
func filterWorkItemsByDate(items []interface{}, startMs int64, hasStart bool, endMs int64, hasEnd bool) []interface{} {
	filtered := make([]interface{}, 0, len(items))
	for _, item := range items {
		workItem, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		ms, ok := workItemMillis(workItem["date"])
		if !ok {
			continue
		}
		if hasStart && ms < startMs {
			continue
		}
		if hasEnd && ms >= endMs {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// workItemMillis extracts an epoch ms value from a decoded JSON field.
func workItemMillis(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		ms, err := n.Int64()
		return ms, err == nil
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// sumWorkItemMinutes totals duration.minutes across work items. The values
// arrive as json.Number because of the decoder configuration.
func sumWorkItemMinutes(items []interface{}) int64 {
	var total int64
	for _, item := range items {
		workItem, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		duration, ok := workItem["duration"].(map[string]interface{})
		if !ok {
			continue
		}
		switch v := duration["minutes"].(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				total += n
			}
		case float64:
			total += int64(v)
		case int:
			total += int64(v)
		case int64:
			total += v
		}
	}
	return total
}

// GetWorkTypesTool lists the work item types of a project.
type GetWorkTypesTool struct {
	*BaseTool
}

// NewGetWorkTypesTool creates a new GetWorkTypesTool instance.
func NewGetWorkTypesTool(client *client.Client, logger *zap.Logger) *GetWorkTypesTool {
	return &GetWorkTypesTool{
		BaseTool: NewBaseTool(client, logger),
	}
}

// Name returns the tool name for MCP registration.
func (t *GetWorkTypesTool) Name() string {
	return "get_work_types"
}

// Description returns a human-readable description of the tool.
func (t *GetWorkTypesTool) Description() string {
	return "List the work item types (e.g. Development, Testing) available for a YouTrack project"
}

// InputSchema returns the JSON schema for the tool's input parameters.
func (t *GetWorkTypesTool) InputSchema() interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"project": map[string]interface{}{
				"type":        "string",
				"description": "Project key (shortName), e.g. 'DEMO'. Defaults to the configured default project",
			},
		},
	}
}

// Annotations marks the tool as read-only.
func (t *GetWorkTypesTool) Annotations() *mcp.ToolAnnotations {
	return readOnlyAnnotations
}

// DefaultTimeout uses the client default.
func (t *GetWorkTypesTool) DefaultTimeout() time.Duration {
	return 0
}

// Execute lists the work item types.
func (t *GetWorkTypesTool) Execute(ctx context.Context, arguments map[string]interface{}) (*mcp.CallToolResult, error) {
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

	project, err := t.resolveProject(ctx, strings.TrimSpace(projectKey))
	if err != nil {
		return HandleGetError(err, "Project", projectKey, "get_projects"), nil
	}
	projectID, _ := project["id"].(string)

	req := &client.Request{
		Method: "GET",
		Path:   "admin/projects/" + projectID + "/timeTrackingSettings/workItemTypes",
		Query:  map[string]string{"fields": "id,name"},
	}

	result, err := t.ExecuteRequest(ctx, req)
	if err != nil {
		return NewToolResultErrorWithSuggestion(
			err.Error(),
			"Time tracking may be disabled for this project.",
		), nil
	}

	items, _ := result.([]interface{})
	if items == nil {
		items = []interface{}{}
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		workType, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if name, _ := workType["name"].(string); name != "" {
			names = append(names, name)
		}
	}

	return t.FormatResponse(map[string]interface{}{
		"project":    projectKey,
		"work_types": items,
		"summary": map[string]interface{}{
			"total_types":     len(items),
			"available_types": names,
		},
	})
}
