package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(100 * time.Millisecond)

	c.Set("key1", "value1")

	// Should exist immediately
	_, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1 immediately")
	}

	// Wait for expiration
	time.Sleep(150 * time.Millisecond)

	_, found = c.Get("key1")
	if found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")
	c.Clear("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to be cleared")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := New(1 * time.Hour)

	c.SetWithTTL("key1", "value1", 100*time.Millisecond)

	time.Sleep(150 * time.Millisecond)

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to expire on its own TTL, not the default")
	}
}

func TestSizingKey(t *testing.T) {
	key := SizingKey("profile-1", "params-abc", "fingerprint-xyz")
	expected := "sizing:profile-1:params-abc:fingerprint-xyz"
	if key != expected {
		t.Errorf("Expected %q, got %q", expected, key)
	}
}

func TestAnalysisKey(t *testing.T) {
	if key := AnalysisKey("fingerprint-xyz"); key != "analysis:fingerprint-xyz" {
		t.Errorf("Expected analysis:fingerprint-xyz, got %q", key)
	}
}
