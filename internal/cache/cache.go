// Package cache provides a TTL caching layer for slow-changing YouTrack
// reads such as the project list, link types, and work item types.
package cache

import (
	"sync"
	"time"
)

// Entry represents a cached item with metadata
type Entry struct {
	Value     interface{}
	ExpiresAt time.Time
	CreatedAt time.Time
	HitCount  int
}

// IsExpired checks if the cache entry has expired
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Store is a bounded TTL cache. When full, expired entries are evicted
// first, then the oldest entry.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	maxSize int
}

// NewStore creates a new cache store
func NewStore(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &Store{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
	}
}

// Get retrieves a value from the cache
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if entry.IsExpired() {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}

	s.mu.Lock()
	entry.HitCount++
	s.mu.Unlock()

	return entry.Value, true
}

// Set stores a value in the cache with TTL
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.maxSize {
		s.evictExpiredLocked()
	}
	if len(s.entries) >= s.maxSize {
		s.evictOldestLocked()
	}

	s.entries[key] = &Entry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}
}

// Delete removes a specific key from the cache
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// DeleteByPrefix removes all entries with keys starting with prefix
func (s *Store) DeleteByPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.entries, key)
			count++
		}
	}
	return count
}

// Clear removes all entries from the cache
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// Size returns the number of entries in the cache
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns cache statistics
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalHits := 0
	expiredCount := 0
	now := time.Now()

	for _, entry := range s.entries {
		totalHits += entry.HitCount
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return map[string]interface{}{
		"size":          len(s.entries),
		"max_size":      s.maxSize,
		"total_hits":    totalHits,
		"expired_count": expiredCount,
	}
}

func (s *Store) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entry := range s.entries {
		if first || entry.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CreatedAt
			first = false
		}
	}

	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// Config holds cache configuration
type Config struct {
	MaxEntries int
	DefaultTTL time.Duration
	TTLByTool  map[string]time.Duration
	Enabled    bool
}

// DefaultConfig returns the default cache configuration.
// TTLs reflect how quickly each resource changes in practice: project and
// link type metadata is near-static, issue data is not cached at all.
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: 100,
		DefaultTTL: 5 * time.Minute,
		TTLByTool: map[string]time.Duration{
			"get_projects":   10 * time.Minute,
			"get_project":    10 * time.Minute,
			"find_project":   10 * time.Minute,
			"get_link_types": 30 * time.Minute,
			"get_work_types": 10 * time.Minute,
			"health_check":   1 * time.Minute,
		},
		Enabled: true,
	}
}

// Manager applies per-tool TTLs and cross-tool invalidation on top of a Store.
type Manager struct {
	store  *Store
	config *Config
}

// NewManager creates a new cache manager
func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{
		store:  NewStore(config.MaxEntries),
		config: config,
	}
}

// Get retrieves a cached value for a tool
func (m *Manager) Get(toolName, key string) (interface{}, bool) {
	if !m.config.Enabled {
		return nil, false
	}
	return m.store.Get(toolName + ":" + key)
}

// Set stores a value under the tool's TTL
func (m *Manager) Set(toolName, key string, value interface{}) {
	if !m.config.Enabled {
		return
	}

	ttl := m.config.DefaultTTL
	if toolTTL, ok := m.config.TTLByTool[toolName]; ok {
		ttl = toolTTL
	}

	m.store.Set(toolName+":"+key, value, ttl)
}

// Cacheable reports whether results for a tool should be cached at all.
// Only tools with an explicit TTL are cached; everything else is served live.
func (m *Manager) Cacheable(toolName string) bool {
	if !m.config.Enabled {
		return false
	}
	_, ok := m.config.TTLByTool[toolName]
	return ok
}

// InvalidateTool removes all cache entries for a specific tool
func (m *Manager) InvalidateTool(toolName string) int {
	return m.store.DeleteByPrefix(toolName + ":")
}

// invalidationMap lists the read tools whose cached results go stale when
// a mutation tool runs.
var invalidationMap = map[string][]string{
	"create_project": {"get_projects", "get_project", "find_project"},
	"create_issue":   {"get_projects"},
	"log_work_time":  {"get_work_types"},
}

// InvalidateRelated invalidates cache for related tools when a mutation occurs
func (m *Manager) InvalidateRelated(mutationTool string) {
	for _, tool := range invalidationMap[mutationTool] {
		m.InvalidateTool(tool)
	}
}

// Clear removes all cache entries
func (m *Manager) Clear() {
	m.store.Clear()
}

// Stats returns cache statistics
func (m *Manager) Stats() map[string]interface{} {
	stats := m.store.Stats()
	stats["enabled"] = m.config.Enabled
	return stats
}

// SetEnabled enables or disables caching
func (m *Manager) SetEnabled(enabled bool) {
	m.config.Enabled = enabled
}

// IsEnabled returns whether caching is enabled
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}
