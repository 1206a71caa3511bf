package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ytwork/youtrack-mcp-server/internal/client"
	"github.com/ytwork/youtrack-mcp-server/internal/config"
)

// newTestClient builds a client pointed at a test server with DEMO as the
// default project.
func newTestClient(t *testing.T, server *httptest.Server) *client.Client {
	t.Helper()

	cfg := &config.Config{
		BaseURL:        server.URL,
		APIToken:       "perm:dGVzdA==.dGVzdA==.testtoken1234567890",
		DefaultProject: "DEMO",
		Timeout:        5 * time.Second,
		MaxRetries:     0,
		RetryWaitMin:   time.Millisecond,
		RetryWaitMax:   10 * time.Millisecond,
		MaxIdleConns:   10,
		TLSVerify:      true,
	}

	c, err := client.New(cfg, zap.NewNop(), nil, "test")
	require.NoError(t, err)
	return c
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestGetIssueNormalizesBareNumber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/DEMO-123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"2-1","idReadable":"DEMO-123","summary":"Login fails","created":1700000000000,"updated":1700003600000}`))
	}))
	defer server.Close()

	tool := NewGetIssueTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"issue_id": "123"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "DEMO-123")
	assert.Contains(t, text, `"created_iso8601": "2023-11-14T22:13:20+00:00"`)
	assert.Contains(t, text, `"updated_iso8601": "2023-11-14T23:13:20+00:00"`)
	// Raw epoch values survive next to the augmented fields
	assert.Contains(t, text, `"created": 1700000000000`)
}

func TestGetIssueQualifiedIDUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/OTHER-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"2-9","idReadable":"OTHER-9","summary":"x"}`))
	}))
	defer server.Close()

	tool := NewGetIssueTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"issue_id": "OTHER-9"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestGetIssueNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","error_description":"Issue not found"}`))
	}))
	defer server.Close()

	tool := NewGetIssueTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"issue_id": "DEMO-999"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
	assert.Contains(t, resultText(t, result), "search_issues")
}

func TestSearchIssuesNormalizesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues", r.URL.Path)
		assert.Equal(t, "fix issue DEMO-456 please", r.URL.Query().Get("query"))
		assert.Equal(t, "5", r.URL.Query().Get("$top"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"2-2","idReadable":"DEMO-456","summary":"A bug","created":1700000000000}]`))
	}))
	defer server.Close()

	tool := NewSearchIssuesTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"query": "fix issue 456 please",
		"limit": 5,
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"normalized_query": "fix issue DEMO-456 please"`)
	assert.Contains(t, text, `"count": 1`)
	assert.Contains(t, text, "created_iso8601")
}

func TestSearchIssuesEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	tool := NewSearchIssuesTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "nothing matches"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"count": 0`)
}

func TestCreateIssueResolvesProjectKey(t *testing.T) {
	var createBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/projects":
			_, _ = w.Write([]byte(`[{"id":"0-5","shortName":"DEMO","name":"Demo Project"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/issues":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&createBody))
			_, _ = w.Write([]byte(`{"id":"2-7","idReadable":"DEMO-7","summary":"New issue"}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	tool := NewCreateIssueTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"summary":     "New issue",
		"description": "details",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	project, ok := createBody["project"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0-5", project["id"])
	assert.Equal(t, "New issue", createBody["summary"])
	assert.Equal(t, "details", createBody["description"])
}

func TestCreateIssueUnknownProject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"0-5","shortName":"OTHER","name":"Other"}]`))
	}))
	defer server.Close()

	tool := NewCreateIssueTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"project": "MISSING",
		"summary": "x",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "get_projects")
}

func TestUpdateIssueRequiresChanges(t *testing.T) {
	tool := NewUpdateIssueTool(newTestClient(t, httptest.NewServer(http.NotFoundHandler())), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"issue_id": "DEMO-1"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "nothing to update")
}

func TestAddCommentPostsText(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/DEMO-3/comments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"4-1","text":"looks good","created":1700000000000}`))
	}))
	defer server.Close()

	tool := NewAddCommentTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id": "3",
		"text":     "looks good",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, "looks good", body["text"])
}

func TestLinkIssuesBuildsCommand(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/commands", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tool := NewLinkIssuesTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"source_id": "1",
		"target_id": "2",
		"link_type": "depends on",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "depends on DEMO-2", body["query"])
	issues, ok := body["issues"].([]interface{})
	require.True(t, ok)
	require.Len(t, issues, 1)
	first, ok := issues[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "DEMO-1", first["idReadable"])

	text := resultText(t, result)
	assert.Contains(t, text, `"status": "linked"`)
}

func TestGetIssueLinksDropsEmptyTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/DEMO-5/links", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"l1","direction":"OUTWARD","linkType":{"name":"Depend"},"issues":[{"idReadable":"DEMO-6","summary":"dep"}]},
			{"id":"l2","direction":"BOTH","linkType":{"name":"Relates"},"issues":[]}
		]`))
	}))
	defer server.Close()

	tool := NewGetIssueLinksTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"issue_id": "DEMO-5"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"count": 1`)
	assert.Contains(t, text, "DEMO-6")
	assert.NotContains(t, text, `"l2"`)
}

func TestGetProjectsFiltersArchived(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"0-1","shortName":"DEMO","name":"Demo","archived":false},
			{"id":"0-2","shortName":"OLD","name":"Old","archived":true}
		]`))
	}))
	defer server.Close()

	tool := NewGetProjectsTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, `"count": 1`)
	assert.NotContains(t, text, `"OLD"`)

	result, err = tool.Execute(context.Background(), map[string]interface{}{"include_archived": true})
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, `"count": 2`)
}

func TestFindProjectMatchesSubstring(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"0-1","shortName":"DEMO","name":"Demo Project"},
			{"id":"0-2","shortName":"WEB","name":"Website"}
		]`))
	}))
	defer server.Close()

	tool := NewFindProjectTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"term": "web"})
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, `"count": 1`)
	assert.Contains(t, text, "Website")
}

func TestLogWorkTimeParsesFreeTextDuration(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/DEMO-8/timeTracking/workItems", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"w1","duration":{"minutes":135,"presentation":"2h 15m"}}`))
	}))
	defer server.Close()

	tool := NewLogWorkTimeTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id": "8",
		"duration": "2h 15m",
		"date":     "2026-08-20",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	duration, ok := body["duration"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(135), duration["minutes"])
	assert.Equal(t, float64(1787184000000), body["date"])

	text := resultText(t, result)
	assert.Contains(t, text, `"duration_logged": "135 minutes"`)
	assert.Contains(t, text, `"date": "2026-08-20"`)
	assert.Contains(t, text, `"description": "(no description)"`)
}

func TestLogWorkTimeRejectsUnparseableDuration(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	tool := NewLogWorkTimeTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id": "DEMO-8",
		"duration": "code review",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "could not parse time string")
	assert.False(t, called, "no API call should happen for invalid input")
}

func TestLogWorkTimeResolvesWorkTypeName(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/projects":
			_, _ = w.Write([]byte(`[{"id":"0-5","shortName":"DEMO","name":"Demo"}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/admin/projects/0-5/timeTrackingSettings/workItemTypes":
			_, _ = w.Write([]byte(`[{"id":"t1","name":"Development"},{"id":"t2","name":"Testing"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/issues/DEMO-8/timeTracking/workItems":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"w1","duration":{"minutes":60},"type":{"id":"t1","name":"Development"}}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	tool := NewLogWorkTimeTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id":  "8",
		"duration":  "1h",
		"work_type": "development",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	typeRef, ok := body["type"].(map[string]interface{})
	require.True(t, ok, "work item type should reach the API")
	assert.Equal(t, "t1", typeRef["id"])
}

func TestLogWorkTimePassesWorkTypeIDDirectly(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/DEMO-8/timeTracking/workItems", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"w1","duration":{"minutes":30}}`))
	}))
	defer server.Close()

	tool := NewLogWorkTimeTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id":  "DEMO-8",
		"duration":  "30m",
		"work_type": "42-1",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	typeRef, ok := body["type"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "42-1", typeRef["id"])
}

func TestLogWorkTimeUnknownWorkType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/admin/projects":
			_, _ = w.Write([]byte(`[{"id":"0-5","shortName":"DEMO","name":"Demo"}]`))
		case "/api/admin/projects/0-5/timeTrackingSettings/workItemTypes":
			_, _ = w.Write([]byte(`[{"id":"t1","name":"Development"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tool := NewLogWorkTimeTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id":  "DEMO-8",
		"duration":  "1h",
		"work_type": "Gardening",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"Gardening" not found`)
	assert.Contains(t, text, "Development")
	assert.Contains(t, text, "get_work_types")
}

func TestLogWorkTimeRejectsBadDate(t *testing.T) {
	tool := NewLogWorkTimeTool(newTestClient(t, httptest.NewServer(http.NotFoundHandler())), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id": "DEMO-8",
		"duration": "1h",
		"date":     "20/08/2026",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "YYYY-MM-DD")
}

func TestGetWorkItemsTotals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"w1","duration":{"minutes":60},"text":"dev","date":1700000000000},
			{"id":"w2","duration":{"minutes":30},"text":"review","date":1700086400000}
		]`))
	}))
	defer server.Close()

	tool := NewGetWorkItemsTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"issue_id": "DEMO-8"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"total_entries": 2`)
	assert.Contains(t, text, `"total_time_minutes": 90`)
	assert.Contains(t, text, `"total_time_hours": 1.5`)
}

func TestGetWorkItemsDateFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// 2023-11-14 and 2023-11-15 respectively
		_, _ = w.Write([]byte(`[
			{"id":"w1","duration":{"minutes":60},"text":"dev","date":1700000000000},
			{"id":"w2","duration":{"minutes":30},"text":"review","date":1700086400000}
		]`))
	}))
	defer server.Close()

	tool := NewGetWorkItemsTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id":   "DEMO-8",
		"start_date": "2023-11-15",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, `"total_entries": 1`)
	assert.Contains(t, text, `"total_time_minutes": 30`)
	assert.NotContains(t, text, `"w1"`)

	result, err = tool.Execute(context.Background(), map[string]interface{}{
		"issue_id": "DEMO-8",
		"end_date": "2023-11-14",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	text = resultText(t, result)
	assert.Contains(t, text, `"total_entries": 1`)
	assert.Contains(t, text, `"total_time_minutes": 60`)
	assert.NotContains(t, text, `"w2"`)
}

func TestGetWorkItemsRejectsBadDateFilter(t *testing.T) {
	tool := NewGetWorkItemsTool(newTestClient(t, httptest.NewServer(http.NotFoundHandler())), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{
		"issue_id":   "DEMO-8",
		"start_date": "15.11.2023",
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "YYYY-MM-DD")
}

func TestGetWorkTypesSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/admin/projects":
			_, _ = w.Write([]byte(`[{"id":"0-5","shortName":"DEMO","name":"Demo"}]`))
		case "/api/admin/projects/0-5/timeTrackingSettings/workItemTypes":
			_, _ = w.Write([]byte(`[{"id":"t1","name":"Development"},{"id":"t2","name":"Testing"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tool := NewGetWorkTypesTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"total_types": 2`)
	assert.Contains(t, text, "Development")
	assert.Contains(t, text, "Testing")
}

func TestSearchUsersWrapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		assert.Equal(t, "jane", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1-2","login":"jane.doe","fullName":"Jane Doe"}]`))
	}))
	defer server.Close()

	tool := NewSearchUsersTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"query": "jane"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"count": 1`)
	assert.Contains(t, text, "jane.doe")
}

func TestGetUserFallsBackToLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/users/jane.doe":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Not Found","error_description":"User not found"}`))
		case "/api/users":
			assert.Equal(t, "jane.doe", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`[{"id":"1-2","login":"jane.doe","fullName":"Jane Doe"}]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tool := NewGetUserTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"user_id": "jane.doe"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "jane.doe")
	assert.Contains(t, text, "Jane Doe")
}

func TestGetUserUnknownStaysNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/users" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","error_description":"User not found"}`))
	}))
	defer server.Close()

	tool := NewGetUserTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{"user_id": "nobody"})
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")
	assert.Contains(t, resultText(t, result), "search_users")
}

func TestHealthCheckHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1-1","login":"admin"}`))
	}))
	defer server.Close()

	tool := NewHealthCheckTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"status": "healthy"`)
	assert.Contains(t, text, `"authenticated_as": "admin"`)
}

func TestHealthCheckUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer server.Close()

	tool := NewHealthCheckTool(newTestClient(t, server), zap.NewNop())

	result, err := tool.Execute(context.Background(), map[string]interface{}{})
	require.NoError(t, err)
	// Diagnosis is data, not an error result
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"status": "unhealthy"`)
}

func TestGetAllToolsHaveUniqueNames(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	all := GetAllTools(newTestClient(t, server), zap.NewNop())
	require.Len(t, all, 20)

	seen := make(map[string]bool)
	for _, tool := range all {
		name := tool.Name()
		assert.False(t, seen[name], "duplicate tool name %s", name)
		seen[name] = true
		assert.NotEmpty(t, tool.Description())
		assert.NotNil(t, tool.InputSchema())
		if _, ok := ToolCategories[name]; !ok {
			t.Errorf("tool %s missing category", name)
		}
	}
}
