package cache_test

import (
	"testing"
	"time"

	"github.com/AlexFilippov-it/scanrole-api/internal/cache"
)

func TestGetAfterSet(t *testing.T) {
	c := cache.New[string]()
	c.Set("k", "v", time.Minute)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Get(\"k\") after Set returned absent")
	}
	if got != "v" {
		t.Errorf("Get(\"k\") = %q, want %q", got, "v")
	}
}

func TestGetMissingKey(t *testing.T) {
	c := cache.New[int]()
	if _, ok := c.Get("missing"); ok {
		t.Error("Get on missing key should return absent")
	}
}

func TestGetAfterExpiry(t *testing.T) {
	c := cache.New[string]()
	c.Set("k", "v", 10*time.Millisecond)

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Get after TTL elapsed should return absent")
	}
}

func TestExpiredEntryIsEvicted(t *testing.T) {
	c := cache.New[string]()
	c.Set("k", "v", 10*time.Millisecond)

	time.Sleep(25 * time.Millisecond)

	c.Get("k")
	if n := c.Len(); n != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", n)
	}
}

func TestSetOverwrites(t *testing.T) {
	c := cache.New[string]()
	c.Set("k", "old", time.Minute)
	c.Set("k", "new", time.Minute)

	got, ok := c.Get("k")
	if !ok || got != "new" {
		t.Errorf("Get(\"k\") = %q, %v; want %q, true", got, ok, "new")
	}
	if n := c.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}
