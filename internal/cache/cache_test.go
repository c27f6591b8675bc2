package cache

import (
	"testing"
	"time"
)

func TestCache_Expiry(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := New[string, bool](time.Second)
	c.now = func() time.Time { return clock }

	c.Set("a@b.com", true)

	if v, ok := c.Get("a@b.com"); !ok || !v {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}

	clock = clock.Add(2 * time.Second)

	if _, ok := c.Get("a@b.com"); ok {
		t.Fatalf("expected entry to expire")
	}

	c.mu.RLock()
	_, kept := c.m["a@b.com"]
	c.mu.RUnlock()

	if kept {
		t.Fatalf("expired entry should be dropped on read")
	}
}
