package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	store := NewStore(10)

	store.Set("key1", "value1", 5*time.Minute)
	val, ok := store.Get("key1")
	if !ok {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}

	_, ok = store.Get("nonexistent")
	if ok {
		t.Error("Expected not to find nonexistent key")
	}
}

func TestStoreExpiration(t *testing.T) {
	store := NewStore(10)

	store.Set("expiring", "value", 1*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	_, ok := store.Get("expiring")
	if ok {
		t.Error("Expected expired entry to be removed")
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(10)

	store.Set("key1", "value1", 5*time.Minute)
	store.Set("key2", "value2", 5*time.Minute)

	store.Delete("key1")

	if _, ok := store.Get("key1"); ok {
		t.Error("Expected key1 to be deleted")
	}
	if _, ok := store.Get("key2"); !ok {
		t.Error("Expected key2 to still exist")
	}
}

func TestStoreDeleteByPrefix(t *testing.T) {
	store := NewStore(10)

	store.Set("get_projects:all", "projects", 5*time.Minute)
	store.Set("get_projects:archived", "archived", 5*time.Minute)
	store.Set("get_link_types:all", "links", 5*time.Minute)

	count := store.DeleteByPrefix("get_projects:")
	if count != 2 {
		t.Errorf("Expected 2 deletions, got %d", count)
	}

	if _, ok := store.Get("get_projects:all"); ok {
		t.Error("Expected get_projects:all to be deleted")
	}
	if _, ok := store.Get("get_link_types:all"); !ok {
		t.Error("Expected get_link_types:all to survive")
	}
}

func TestStoreEviction(t *testing.T) {
	store := NewStore(3)

	store.Set("a", 1, 5*time.Minute)
	time.Sleep(time.Millisecond)
	store.Set("b", 2, 5*time.Minute)
	time.Sleep(time.Millisecond)
	store.Set("c", 3, 5*time.Minute)
	time.Sleep(time.Millisecond)
	store.Set("d", 4, 5*time.Minute)

	if store.Size() != 3 {
		t.Errorf("Expected size 3 after eviction, got %d", store.Size())
	}

	// The oldest entry should be gone
	if _, ok := store.Get("a"); ok {
		t.Error("Expected oldest entry to be evicted")
	}
	if _, ok := store.Get("d"); !ok {
		t.Error("Expected newest entry to be present")
	}
}

func TestStoreConcurrency(t *testing.T) {
	store := NewStore(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j)
				store.Set(key, j, time.Minute)
				store.Get(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestManagerTTLByTool(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Set("get_projects", "all", []string{"DEMO", "OTHER"})
	val, ok := m.Get("get_projects", "all")
	if !ok {
		t.Fatal("Expected cached project list")
	}
	projects, ok := val.([]string)
	if !ok || len(projects) != 2 {
		t.Errorf("Unexpected cached value %v", val)
	}
}

func TestManagerDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	m := NewManager(cfg)

	m.Set("get_projects", "all", "value")
	if _, ok := m.Get("get_projects", "all"); ok {
		t.Error("Disabled cache should not return values")
	}
}

func TestManagerInvalidateRelated(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Set("get_projects", "all", "projects")
	m.Set("find_project", "DEMO", "demo")
	m.Set("get_link_types", "all", "links")

	m.InvalidateRelated("create_project")

	if _, ok := m.Get("get_projects", "all"); ok {
		t.Error("Expected project list to be invalidated after create_project")
	}
	if _, ok := m.Get("find_project", "DEMO"); ok {
		t.Error("Expected project lookup to be invalidated after create_project")
	}
	if _, ok := m.Get("get_link_types", "all"); !ok {
		t.Error("Expected link types to survive create_project")
	}
}

func TestManagerInvalidateUnknownMutation(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.Set("get_projects", "all", "projects")
	m.InvalidateRelated("update_issue")

	if _, ok := m.Get("get_projects", "all"); !ok {
		t.Error("Unknown mutation should not invalidate unrelated entries")
	}
}

func TestManagerStats(t *testing.T) {
	m := NewManager(DefaultConfig())
	m.Set("get_projects", "all", "projects")

	stats := m.Stats()
	if stats["size"].(int) != 1 {
		t.Errorf("Expected size 1, got %v", stats["size"])
	}
	if stats["enabled"].(bool) != true {
		t.Error("Expected cache to report enabled")
	}
}
