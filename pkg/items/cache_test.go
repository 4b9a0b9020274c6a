package items

import (
	"testing"
	"time"

	"simpleapp/itemsvc/pkg/config"
)

type countingRecorder struct {
	hits, misses int
}

func (c *countingRecorder) RecordCacheHit(string)  { c.hits++ }
func (c *countingRecorder) RecordCacheMiss(string) { c.misses++ }

func newTestCache(t *testing.T, ttl time.Duration, recorder CacheRecorder) *Cache {
	t.Helper()
	c, err := NewCache(config.CacheConfig{Enabled: true, TTL: ttl, MaxItems: 100}, recorder)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCache_SetGetInvalidate(t *testing.T) {
	recorder := &countingRecorder{}
	c := newTestCache(t, time.Minute, recorder)

	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache returned an item")
	}

	item := &Item{ID: 1, Name: "Pen", Price: 1}
	c.Set(item)

	got, ok := c.Get(1)
	if !ok || got.Name != "Pen" {
		t.Fatalf("Get() = (%v, %v), want Pen", got, ok)
	}

	got.Name = "mutated"
	if again, _ := c.Get(1); again.Name != "Pen" {
		t.Error("cache entry shares memory with a returned item")
	}

	c.Invalidate(1)
	if _, ok := c.Get(1); ok {
		t.Error("Get() after Invalidate returned an item")
	}

	if recorder.hits != 2 || recorder.misses != 2 {
		t.Errorf("hits/misses = %d/%d, want 2/2", recorder.hits, recorder.misses)
	}
}

func TestCache_TTL(t *testing.T) {
	c := newTestCache(t, 50*time.Millisecond, nil)
	c.Set(&Item{ID: 7})

	if _, ok := c.Get(7); !ok {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Get(7); ok {
		t.Error("expired entry still returned")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := NewCache(config.CacheConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if c != nil {
		t.Fatal("disabled cache should be nil")
	}

	c.Set(&Item{ID: 1})
	c.Invalidate(1)
	c.Close()
	if _, ok := c.Get(1); ok {
		t.Error("nil cache returned an item")
	}
}

func TestCache_Ping(t *testing.T) {
	c := newTestCache(t, time.Minute, nil)
	if err := c.Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	var disabled *Cache
	if err := disabled.Ping(); err != nil {
		t.Errorf("nil Ping() error = %v", err)
	}
}
