package cache

import (
	"testing"
	"time"
)

func TestLRUCacheSetGet(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)

	c.Set("a", 1)
	got, found := c.Get("a")
	if !found || got != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", got, found)
	}

	if _, found := c.Get("missing"); found {
		t.Error("Get(missing) found = true, want false")
	}
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a so b is the eviction candidate
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("b survived eviction, want least recently used dropped")
	}
	if _, found := c.Get("a"); !found {
		t.Error("a was evicted, want most recently used kept")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expired entry returned from Get")
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() after cleanup = %d, want 1", c.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](8, time.Minute)

	c.Set("u1|M", 1)
	c.Set("u1|Y", 2)
	c.Set("u2|M", 3)

	if removed := c.DeletePrefix("u1|"); removed != 2 {
		t.Errorf("DeletePrefix(u1|) = %d, want 2", removed)
	}
	if _, found := c.Get("u1|M"); found {
		t.Error("u1|M survived prefix delete")
	}
	if _, found := c.Get("u2|M"); !found {
		t.Error("u2|M was dropped by another user's prefix delete")
	}
}

func TestLRUCacheUpdateExistingKey(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("a", 2)

	got, _ := c.Get("a")
	if got != 2 {
		t.Errorf("Get(a) = %d, want updated value 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestManagerCleanupLoop(t *testing.T) {
	c := NewLRUCache[int](4, 5*time.Millisecond)
	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)

	c.Set("a", 1)
	time.Sleep(40 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0 after background cleanup", c.Size())
	}
}
