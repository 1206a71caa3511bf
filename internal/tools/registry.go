package tools

import (
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
)

// GetAllTools returns all available MCP tools organized by category.
// This factory function centralizes tool creation and makes it easy to
// add new tools or modify tool registration.
func GetAllTools(c *client.Client, logger *zap.Logger) []Tool {
	return []Tool{
		// Issue tools
		NewGetIssueTool(c, logger),
		NewSearchIssuesTool(c, logger),
		NewCreateIssueTool(c, logger),
		NewUpdateIssueTool(c, logger),
		NewAddCommentTool(c, logger),

		// Link tools
		NewLinkIssuesTool(c, logger),
		NewGetIssueLinksTool(c, logger),
		NewGetLinkTypesTool(c, logger),

		// Project tools
		NewGetProjectsTool(c, logger),
		NewGetProjectTool(c, logger),
		NewFindProjectTool(c, logger),
		NewGetProjectIssuesTool(c, logger),
		NewCreateProjectTool(c, logger),

		// User tools
		NewGetCurrentUserTool(c, logger),
		NewGetUserTool(c, logger),
		NewSearchUsersTool(c, logger),

		// Time tracking tools
		NewLogWorkTimeTool(c, logger),
		NewGetWorkItemsTool(c, logger),
		NewGetWorkTypesTool(c, logger),

		// Diagnostics
		NewHealthCheckTool(c, logger),
	}
}

// ToolCategories maps each tool name to its functional category.
// Used for metrics labels and the session context suggestions.
var ToolCategories = map[string]ToolCategory{
	"get_issue":          CategoryIssue,
	"search_issues":      CategoryIssue,
	"create_issue":       CategoryIssue,
	"update_issue":       CategoryIssue,
	"add_comment":        CategoryIssue,
	"link_issues":        CategoryLink,
	"get_issue_links":    CategoryLink,
	"get_link_types":     CategoryLink,
	"get_projects":       CategoryProject,
	"get_project":        CategoryProject,
	"find_project":       CategoryProject,
	"get_project_issues": CategoryProject,
	"create_project":     CategoryProject,
	"get_current_user":   CategoryUser,
	"get_user":           CategoryUser,
	"search_users":       CategoryUser,
	"log_work_time":      CategoryTimeTracking,
	"get_work_items":     CategoryTimeTracking,
	"get_work_types":     CategoryTimeTracking,
	"health_check":       CategoryDiagnostic,
}
