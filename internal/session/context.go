// Package session provides session context management for the MCP server.
// It maintains state across tool calls within a conversation to enable
// tool chaining and contextual suggestions.
package session

import (
	"sync"
	"time"
)

// Context holds session state that persists across tool calls
type Context struct {
	mu sync.RWMutex

	// Search context
	LastSearch        *SearchInfo
	RecentSearches    []SearchInfo
	maxRecentSearches int

	// Resource context, last accessed resources by type (issue, project, user)
	LastResources map[string]*ResourceInfo

	// Error context
	RecentErrors    []ErrorInfo
	maxRecentErrors int

	// Session metadata
	CreatedAt time.Time
	UpdatedAt time.Time
	ToolCalls int
}

// SearchInfo stores information about an issue search
type SearchInfo struct {
	Query           string    `json:"query"`
	NormalizedQuery string    `json:"normalized_query,omitempty"`
	ResultCount     int       `json:"result_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// ResourceInfo stores information about an accessed resource
type ResourceInfo struct {
	Type      string    `json:"type"` // issue, project, user
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorInfo stores information about errors encountered
type ErrorInfo struct {
	Tool      string    `json:"tool"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a new session context
func New() *Context {
	return &Context{
		LastResources:     make(map[string]*ResourceInfo),
		RecentSearches:    make([]SearchInfo, 0, 10),
		RecentErrors:      make([]ErrorInfo, 0, 10),
		maxRecentSearches: 10,
		maxRecentErrors:   10,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
}

// RecordSearch records an issue search
func (c *Context) RecordSearch(info SearchInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info.Timestamp = time.Now()
	c.LastSearch = &info
	c.UpdatedAt = time.Now()
	c.ToolCalls++

	c.RecentSearches = append(c.RecentSearches, info)
	if len(c.RecentSearches) > c.maxRecentSearches {
		c.RecentSearches = c.RecentSearches[1:]
	}
}

// RecordResource records access to a resource
func (c *Context) RecordResource(resourceType, id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.LastResources[resourceType] = &ResourceInfo{
		Type:      resourceType,
		ID:        id,
		Name:      name,
		Timestamp: time.Now(),
	}
	c.UpdatedAt = time.Now()
	c.ToolCalls++
}

// RecordError records an error encountered during tool execution
func (c *Context) RecordError(tool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.RecentErrors = append(c.RecentErrors, ErrorInfo{
		Tool:      tool,
		Message:   message,
		Timestamp: time.Now(),
	})
	if len(c.RecentErrors) > c.maxRecentErrors {
		c.RecentErrors = c.RecentErrors[1:]
	}
	c.UpdatedAt = time.Now()
}

// GetLastSearch returns the last search info (thread-safe copy)
func (c *Context) GetLastSearch() *SearchInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.LastSearch == nil {
		return nil
	}
	cp := *c.LastSearch
	return &cp
}

// GetLastResource returns the last resource of a given type
func (c *Context) GetLastResource(resourceType string) *ResourceInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if info, ok := c.LastResources[resourceType]; ok {
		cp := *info
		return &cp
	}
	return nil
}

// GetRecentSearches returns recent searches (thread-safe copy)
func (c *Context) GetRecentSearches() []SearchInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]SearchInfo, len(c.RecentSearches))
	copy(result, c.RecentSearches)
	return result
}

// GetRecentErrors returns recent errors (thread-safe copy)
func (c *Context) GetRecentErrors() []ErrorInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]ErrorInfo, len(c.RecentErrors))
	copy(result, c.RecentErrors)
	return result
}

// GetStats returns session statistics
func (c *Context) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"created_at":      c.CreatedAt,
		"updated_at":      c.UpdatedAt,
		"tool_calls":      c.ToolCalls,
		"searches_count":  len(c.RecentSearches),
		"resources_count": len(c.LastResources),
		"errors_count":    len(c.RecentErrors),
		"age_seconds":     time.Since(c.CreatedAt).Seconds(),
	}
}

// Clear resets the session context
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.LastSearch = nil
	c.RecentSearches = make([]SearchInfo, 0, 10)
	c.LastResources = make(map[string]*ResourceInfo)
	c.RecentErrors = make([]ErrorInfo, 0, 10)
	c.UpdatedAt = time.Now()
	c.ToolCalls = 0
}

// SuggestNextTools suggests tools based on session context
func (c *Context) SuggestNextTools() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var suggestions []string

	// A search with results usually leads to drilling into one issue
	if c.LastSearch != nil && c.LastSearch.ResultCount > 0 {
		suggestions = append(suggestions, "get_issue")
	}

	if _, ok := c.LastResources["issue"]; ok {
		suggestions = append(suggestions, "add_comment", "log_work_time", "get_issue_links")
	}

	if _, ok := c.LastResources["project"]; ok {
		suggestions = append(suggestions, "get_project_issues")
	}

	if len(c.RecentErrors) > 0 {
		suggestions = append(suggestions, "health_check")
	}

	return suggestions
}
