package cache

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("sandbox_signkey", "abc123", time.Minute)

	got, ok := c.Get("sandbox_signkey")
	if !ok || got != "abc123" {
		t.Fatalf("expected cached value, got %q (%v)", got, ok)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("k", "v", -time.Second)
	c.Set("expired", "v", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("expired"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	// Non-positive TTL means no expiry.
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected non-expiring entry to hit")
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected deleted entry to miss")
	}
}

func TestTTLCacheNilSafe(t *testing.T) {
	var c *TTLCache[string, string]
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected nil cache to miss")
	}
}
