package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ytwork/youtrack-mcp-server/internal/format"
)

// Response size limits
const (
	// MaxResultSize is the maximum size of tool results in bytes (100KB for Claude Desktop compatibility)
	// Claude Desktop's context compaction can fail with very large tool results, so we use a conservative limit
	// This is much lower than MCP's 1MB limit to ensure reliable operation
	MaxResultSize = 100 * 1024

	// FinalResponseLimit is the absolute maximum size for the final response text before sending to MCP
	FinalResponseLimit = 150 * 1024

	// TruncationBufferSize is the buffer size reserved for warning messages when truncating results
	TruncationBufferSize = 500

	// WarningMessageBuffer is the buffer reserved for warning/metadata in truncated results
	WarningMessageBuffer = 1000

	// MinArraySizeForTruncation is the minimum array size before truncation is attempted
	MinArraySizeForTruncation = 10

	// MaxSummaryItems is the maximum number of items to show in result summaries
	MaxSummaryItems = 10
)

var titleCaser = cases.Title(language.English)

// toTitleCase converts a result type like "work items" to "Work Items".
func toTitleCase(s string) string {
	return titleCaser.String(s)
}

// FormatResponse formats an API result as text content for MCP.
// Epoch millisecond fields gain ISO 8601 siblings before rendering, and
// results exceeding MaxResultSize are truncated with guidance.
func (t *BaseTool) FormatResponse(result interface{}) (*mcp.CallToolResult, error) {
	if isEmptyResult(result) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: "(no data returned)",
				},
			},
		}, nil
	}

	augmented := format.AddISO8601Timestamps(result)

	jsonBytes, err := json.MarshalIndent(augmented, "", "  ")
	if err != nil {
		// Return a valid CallToolResult with an error message instead of nil.
		// A nil result causes "compaction failed" errors in Claude Desktop.
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: fmt.Sprintf("Error formatting response: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	responseText := string(jsonBytes)

	if len(jsonBytes) > MaxResultSize {
		truncatedBytes, shown, total := truncateResult(augmented, MaxResultSize)
		if truncatedBytes != nil {
			responseText = string(truncatedBytes)
		} else {
			// Fallback: hard truncate the JSON string
			responseText = string(jsonBytes[:MaxResultSize-TruncationBufferSize])
		}

		warningMsg := fmt.Sprintf("\n\n---\n⚠️ RESULT TRUNCATED: Showing %d of %d items (result was %d bytes, limit is %d bytes).\n\n"+
			"**To get complete results:**\n\n"+
			"1. **Lower the `limit` parameter** - request fewer items per call\n"+
			"2. **Narrow the query** - add attributes like `project: KEY` or `#Unresolved`\n"+
			"3. **Use `$skip`-style paging** - fetch the next page with a smaller window",
			shown, total, len(jsonBytes), MaxResultSize)
		responseText += warningMsg

		t.logger.Warn("Result truncated due to size limit - pagination recommended",
			zap.Int("original_size", len(jsonBytes)),
			zap.Int("truncated_size", len(responseText)),
			zap.Int("total_items", total),
			zap.Int("shown_items", shown),
		)
	}

	responseText = ensureResponseLimit(responseText, t.logger)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: responseText,
			},
		},
	}, nil
}

// FormatResponseWithSummary formats list results with a readable summary header
// above the raw data.
func (t *BaseTool) FormatResponseWithSummary(result interface{}, resultType string) (*mcp.CallToolResult, error) {
	if isEmptyResult(result) {
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{
					Text: fmt.Sprintf("(no %s returned)", resultType),
				},
			},
		}, nil
	}

	summary := GenerateResultSummary(result, resultType)
	if summary == "" {
		return t.FormatResponse(result)
	}

	base, err := t.FormatResponse(result)
	if err != nil {
		return base, err
	}

	text, ok := base.Content[0].(*mcp.TextContent)
	if !ok {
		return base, nil
	}

	combined := summary + "---\n\n### Raw Data\n\n" + text.Text
	combined = ensureResponseLimit(combined, t.logger)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: combined},
		},
	}, nil
}

// isEmptyResult reports whether the API returned nothing worth rendering.
func isEmptyResult(result interface{}) bool {
	switch v := result.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(v) == 0
	case []interface{}:
		return false // an empty list is still meaningful output
	default:
		return false
	}
}

// GenerateResultSummary creates a short overview of list results so the LLM
// can orient itself without parsing the full JSON payload.
func GenerateResultSummary(result interface{}, resultType string) string {
	items := extractItems(result)
	if items == nil {
		return ""
	}

	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("## %s Summary\n\n", toTitleCase(resultType)))
	summary.WriteString(fmt.Sprintf("**Total Items:** %d\n\n", len(items)))

	names := extractFieldValues(items, []string{"idReadable", "summary", "name", "fullName", "login", "id"}, MaxSummaryItems)
	if len(names) > 0 {
		summary.WriteString("### Items\n")
		for i, name := range names {
			summary.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
		}
		if len(items) > MaxSummaryItems {
			summary.WriteString(fmt.Sprintf("... and %d more\n", len(items)-MaxSummaryItems))
		}
		summary.WriteString("\n")
	}

	return summary.String()
}

// extractItems finds the list portion of a result, either a top-level array
// or the first array-valued field of a wrapper object.
func extractItems(result interface{}) []interface{} {
	switch v := result.(type) {
	case []interface{}:
		return v
	case map[string]interface{}:
		for _, key := range []string{"issues", "projects", "users", "work_items", "links"} {
			if arr, ok := v[key].([]interface{}); ok {
				return arr
			}
		}
	}
	return nil
}

// extractFieldValues extracts display values from a list of items for given field names
func extractFieldValues(items []interface{}, fieldNames []string, limit int) []string {
	var values []string

	for _, item := range items {
		if len(values) >= limit {
			break
		}
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		for _, fieldName := range fieldNames {
			val, ok := itemMap[fieldName]
			if !ok {
				continue
			}
			str, ok := val.(string)
			if !ok || str == "" {
				continue
			}
			// Issues read best as "DEMO-42: the summary"
			if fieldName == "idReadable" {
				if sum, ok := itemMap["summary"].(string); ok && sum != "" {
					values = append(values, fmt.Sprintf("%s: %s", str, sum))
					break
				}
			}
			values = append(values, str)
			break
		}
	}

	return values
}

// truncateResult shrinks oversized results by cutting the largest array down
// until the rendered JSON fits. Returns nil bytes when nothing can be cut.
func truncateResult(result interface{}, maxSize int) (data []byte, shown, total int) {
	switch v := result.(type) {
	case []interface{}:
		if len(v) <= MinArraySizeForTruncation {
			return nil, 0, len(v)
		}
		best := fitArray(v, func(n int) interface{} { return v[:n] }, maxSize)
		out := map[string]interface{}{
			"items": v[:best],
			"_truncated_info": map[string]interface{}{
				"original_count": len(v),
				"shown_count":    best,
			},
		}
		bytes, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, 0, len(v)
		}
		return bytes, best, len(v)

	case map[string]interface{}:
		truncated := make(map[string]interface{}, len(v))
		for k, val := range v {
			truncated[k] = val
		}

		// Find the largest array field
		var arrKey string
		var arr []interface{}
		for k, val := range truncated {
			if a, ok := val.([]interface{}); ok && len(a) > len(arr) {
				arrKey, arr = k, a
			}
		}
		if len(arr) <= MinArraySizeForTruncation {
			return nil, 0, 1
		}

		best := fitArray(arr, func(n int) interface{} {
			truncated[arrKey] = arr[:n]
			return truncated
		}, maxSize)

		truncated[arrKey] = arr[:best]
		truncated["_truncated_info"] = map[string]interface{}{
			"field":          arrKey,
			"original_count": len(arr),
			"shown_count":    best,
		}
		bytes, err := json.MarshalIndent(truncated, "", "  ")
		if err != nil {
			return nil, 0, len(arr)
		}
		return bytes, best, len(arr)
	}

	return nil, 0, 1
}

// fitArray binary searches for the largest prefix length whose rendering fits.
func fitArray(arr []interface{}, render func(n int) interface{}, maxSize int) int {
	low, high := MinArraySizeForTruncation, len(arr)
	best := MinArraySizeForTruncation

	for low <= high {
		mid := (low + high) / 2
		testBytes, err := json.MarshalIndent(render(mid), "", "  ")
		if err != nil {
			break
		}
		if len(testBytes) <= maxSize-WarningMessageBuffer {
			best = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return best
}

// ensureResponseLimit ensures the response text doesn't exceed FinalResponseLimit
// This is a safety net to prevent MCP 1MB limit errors
func ensureResponseLimit(text string, logger *zap.Logger) string {
	if len(text) <= FinalResponseLimit {
		return text
	}

	if logger != nil {
		logger.Warn("Response exceeded final limit, truncating",
			zap.Int("original_size", len(text)),
			zap.Int("limit", FinalResponseLimit),
		)
	}

	truncated := text[:FinalResponseLimit-TruncationBufferSize]
	truncated += "\n\n---\n⚠️ **Response truncated** due to size limits. Use filters or pagination to get complete results."
	return truncated
}
