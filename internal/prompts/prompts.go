// Package prompts provides pre-built prompts for common YouTrack workflows.
package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// PromptDefinition represents a prompt with its metadata and handler
type PromptDefinition struct {
	// Prompt is the MCP prompt metadata
	Prompt *mcp.Prompt
	// Handler is the function that generates the prompt content
	Handler mcp.PromptHandler
}

// Registry holds all registered prompts
type Registry struct {
	logger  *zap.Logger
	prompts []*PromptDefinition
}

// NewRegistry creates a new prompt registry with all available prompts
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger: logger,
	}
	r.registerPrompts()
	return r
}

// GetPrompts returns all registered prompt definitions
func (r *Registry) GetPrompts() []*PromptDefinition {
	return r.prompts
}

// registerPrompts registers all available prompts
func (r *Registry) registerPrompts() {
	r.prompts = []*PromptDefinition{
		r.triageIssuesPrompt(),
		r.logDailyWorkPrompt(),
		r.linkRelatedWorkPrompt(),
		r.standupReportPrompt(),
		r.projectOnboardingPrompt(),
	}
}

// Helper to create a prompt result with user role
func createPromptResult(description, content string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: content,
				},
			},
		},
	}
}

// getStringArg safely extracts a string argument with a default value
func getStringArg(args map[string]string, key, defaultVal string) string {
	if val, ok := args[key]; ok && val != "" {
		return val
	}
	return defaultVal
}

// triageIssuesPrompt creates the "triage_issues" prompt definition
func (r *Registry) triageIssuesPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "triage_issues",
			Title:       "Triage Open Issues",
			Description: "Walk through the unresolved issues of a project and decide what to do with each",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "project",
					Description: "Project key to triage (e.g. 'DEMO'); defaults to the configured project",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			project := getStringArg(req.Params.Arguments, "project", "the default project")

			content := fmt.Sprintf(`Let's triage the open issues in %s. The plan:

1. Run: search_issues with query "project: %s #Unresolved" to list the backlog
2. For each candidate, run: get_issue to read the full description and custom fields
3. Run: get_issue_links on anything that looks like a duplicate or follow-up
4. For duplicates, run: link_issues with link_type "duplicates"
5. Leave a triage note with add_comment (owner, priority, next step)

Work through the list from oldest to newest and summarize your decisions at the end.`, project, project)

			return createPromptResult("Issue triage workflow", content), nil
		},
	}
}

// logDailyWorkPrompt creates the "log_daily_work" prompt definition
func (r *Registry) logDailyWorkPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "log_daily_work",
			Title:       "Log Daily Work",
			Description: "Record time spent across the issues worked on today",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "date",
					Description: "Date to log against in YYYY-MM-DD format (default today)",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			date := getStringArg(req.Params.Arguments, "date", "today")

			content := fmt.Sprintf(`Let's log the work done on %s. For each issue I mention:

1. If only an issue number is given, pass it as-is; bare numbers resolve against the default project
2. Run: get_work_types for the project first if a work type matters
3. Run: log_work_time with the issue id, a duration like "1h 30m", a short description, date "%s", and the work_type if one applies
4. Afterwards, run: get_work_items on each issue to confirm the totals

Durations can be free text: "2h", "45m", "1h 15m", or plain minutes like "90".`, date, date)

			return createPromptResult("Daily work logging workflow", content), nil
		},
	}
}

// linkRelatedWorkPrompt creates the "link_related_work" prompt definition
func (r *Registry) linkRelatedWorkPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "link_related_work",
			Title:       "Link Related Work",
			Description: "Find issues related to a given one and wire up the links between them",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "issue_id",
					Description: "The issue to start from, e.g. 'DEMO-42'",
					Required:    true,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			issueID := getStringArg(req.Params.Arguments, "issue_id", "the issue")

			content := fmt.Sprintf(`Let's connect %s to its related work:

1. Run: get_issue with issue_id "%s" to understand what it is about
2. Run: get_issue_links with the same id to see what is already linked
3. Run: search_issues with keywords from the summary to find unlinked relatives
4. Run: get_link_types to pick the right relationship (relates to, depends on, duplicates, subtask of)
5. For each relative, run: link_issues with the chosen link_type

Report which links you created and which candidates you skipped, with reasons.`, issueID, issueID)

			return createPromptResult("Issue linking workflow", content), nil
		},
	}
}

// standupReportPrompt creates the "standup_report" prompt definition
func (r *Registry) standupReportPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "standup_report",
			Title:       "Standup Report",
			Description: "Summarize recent activity on a project for a standup update",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "project",
					Description: "Project key to report on; defaults to the configured project",
					Required:    false,
				},
				{
					Name:        "since",
					Description: "How far back to look, as a YouTrack date query value (e.g. '2026-08-20')",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			project := getStringArg(req.Params.Arguments, "project", "the default project")
			since := getStringArg(req.Params.Arguments, "since", "yesterday")

			content := fmt.Sprintf(`Prepare a standup update for %s covering changes since %s:

1. Run: get_current_user to know whose work to highlight
2. Run: search_issues with query "project: %s updated: %s .. Today"
3. For the issues I touched, run: get_work_items to total the time spent
4. Note anything blocked: check get_issue_links for "depends on" relations

Format the result as three short sections: Done, In Progress, Blocked.`, project, since, project, since)

			return createPromptResult("Standup report workflow", content), nil
		},
	}
}

// projectOnboardingPrompt creates the "project_onboarding" prompt definition
func (r *Registry) projectOnboardingPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "project_onboarding",
			Title:       "Project Onboarding",
			Description: "Get oriented in a YouTrack instance: projects, people, and conventions",
		},
		Handler: func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			content := `Help me get oriented in this YouTrack instance:

1. Run: health_check to confirm connectivity and see which account I am using
2. Run: get_projects to list the active projects
3. For the project I name, run: get_project for its description and lead
4. Run: get_project_issues to sample recent issues and learn the local conventions
5. Run: get_work_types to see how time is categorized here

Finish with a short orientation summary: key projects, who leads them, and how issues are typically written.`

			return createPromptResult("Instance orientation workflow", content), nil
		},
	}
}
