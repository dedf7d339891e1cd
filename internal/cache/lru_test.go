package cache

import (
	"testing"
	"time"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[int64, string](4, time.Minute)

	if _, ok := c.Get(42); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set(42, "budget")
	got, ok := c.Get(42)
	if !ok || got != "budget" {
		t.Fatalf("Get(42) = %q, %v", got, ok)
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int64, int](2, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get(3); !ok {
		t.Error("newest entry should survive")
	}
}

func TestLRU_RecentUseProtectsFromEviction(t *testing.T) {
	c := NewLRU[int64, int](2, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Get(1)
	c.Set(3, 3)

	if _, ok := c.Get(1); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get(2); ok {
		t.Error("least recently used entry should be evicted")
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[int64, int](4, 10*time.Millisecond)
	c.Set(1, 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(1); ok {
		t.Error("expired entry should miss")
	}
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[int64, int](4, time.Minute)
	c.Set(1, 1)
	c.Delete(1)

	if _, ok := c.Get(1); ok {
		t.Error("deleted entry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("size = %d, want 0", c.Size())
	}
}
