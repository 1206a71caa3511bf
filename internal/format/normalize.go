package format

import (
	"regexp"
	"strings"
)

// queryNumberPattern matches word-bounded runs of three or more digits.
// Shorter runs stay untouched so counts and limits inside a query survive.
var queryNumberPattern = regexp.MustCompile(`\b(\d{3,})\b`)

// NormalizeIssueID expands a bare numeric issue ID using the configured
// default project key, so "123" becomes "DEMO-123". IDs that already carry
// a project prefix (anything containing "-") and non-numeric values pass
// through unchanged and are left for the API to accept or reject.
func NormalizeIssueID(issueID, defaultProject string) string {
	if issueID == "" || strings.Contains(issueID, "-") {
		return issueID
	}
	if defaultProject != "" && allDigits.MatchString(issueID) {
		return defaultProject + "-" + issueID
	}
	return issueID
}

// NormalizeQuery rewrites likely issue numbers inside a search query with
// the default project key: "fix issue 456 please" becomes
// "fix issue DEMO-456 please". Without a default project the query is
// returned as-is.
func NormalizeQuery(query, defaultProject string) string {
	if query == "" || defaultProject == "" {
		return query
	}
	return queryNumberPattern.ReplaceAllString(query, defaultProject+"-${1}")
}
