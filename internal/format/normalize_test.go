package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIssueID(t *testing.T) {
	tests := []struct {
		name           string
		issueID        string
		defaultProject string
		want           string
	}{
		{"bare number with default", "123", "DEMO", "DEMO-123"},
		{"already qualified", "DEMO-123", "DEMO", "DEMO-123"},
		{"other project untouched", "OTHER-7", "DEMO", "OTHER-7"},
		{"bare number without default", "123", "", "123"},
		{"internal id untouched", "2-42", "DEMO", "2-42"},
		{"non numeric untouched", "abc", "DEMO", "abc"},
		{"empty", "", "DEMO", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIssueID(tt.issueID, tt.defaultProject))
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		defaultProject string
		want           string
	}{
		{"number in sentence", "fix issue 456 please", "DEMO", "fix issue DEMO-456 please"},
		{"short number untouched", "42", "DEMO", "42"},
		{"two digits untouched", "top 10 bugs", "DEMO", "top 10 bugs"},
		{"multiple numbers", "456 and 789", "DEMO", "DEMO-456 and DEMO-789"},
		{"digits inside word untouched", "abc123def", "DEMO", "abc123def"},
		{"no default project", "fix issue 456", "", "fix issue 456"},
		{"empty query", "", "DEMO", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeQuery(tt.query, tt.defaultProject))
		})
	}
}
