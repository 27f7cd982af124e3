package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestManager(t *testing.T, disabled bool, ttl time.Duration) (*Manager[string, int], *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
	m := NewManager[string, int](disabled, ttl, nil)
	m.now = c.now
	t.Cleanup(m.Close)
	return m, c
}

func TestCacheManager(t *testing.T) {
	t.Run("EnabledCache", func(t *testing.T) {
		m, _ := newTestManager(t, false, 5*time.Minute)

		if _, ok := m.Get("senders"); ok {
			t.Error("Expected cache miss")
		}

		m.Set("senders", 3)

		got, ok := m.Get("senders")
		if !ok {
			t.Fatal("Expected cache hit")
		}
		if got != 3 {
			t.Errorf("Expected 3, got %d", got)
		}

		m.Delete("senders")
		if _, ok := m.Get("senders"); ok {
			t.Error("Expected cache miss after delete")
		}
	})

	t.Run("DisabledCache", func(t *testing.T) {
		m, _ := newTestManager(t, true, 5*time.Minute)

		m.Set("senders", 3)
		if _, ok := m.Get("senders"); ok {
			t.Error("Disabled cache should always miss")
		}
		if m.IsEnabled() {
			t.Error("Expected cache to be disabled")
		}
	})

	t.Run("ZeroTTLDisables", func(t *testing.T) {
		m, _ := newTestManager(t, false, 0)

		if m.IsEnabled() {
			t.Error("Expected zero TTL to disable the cache")
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		m, c := newTestManager(t, false, time.Minute)

		m.Set("weight", 2)
		c.t = c.t.Add(30 * time.Second)
		if _, ok := m.Get("weight"); !ok {
			t.Error("Expected entry to be valid before TTL")
		}

		c.t = c.t.Add(time.Minute)
		if _, ok := m.Get("weight"); ok {
			t.Error("Expected entry to expire after TTL")
		}
	})
}

func TestCacheManager_GetOrLoad(t *testing.T) {
	m, _ := newTestManager(t, false, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		got, err := m.GetOrLoad(ctx, "answer", load)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got != 42 {
			t.Errorf("Expected 42, got %d", got)
		}
	}
	if calls != 1 {
		t.Errorf("Expected one load, got %d", calls)
	}

	failing := errors.New("portal down")
	_, err := m.GetOrLoad(ctx, "broken", func(context.Context) (int, error) { return 0, failing })
	if !errors.Is(err, failing) {
		t.Errorf("Expected load error, got %v", err)
	}
	if _, ok := m.Get("broken"); ok {
		t.Error("Errors must not be cached")
	}
}

func TestCacheManager_CleanupAndStats(t *testing.T) {
	m, c := newTestManager(t, false, time.Minute)

	m.Set("a", 1)
	c.t = c.t.Add(2 * time.Minute)
	m.Set("b", 2)

	stats := m.GetStats()
	if stats.Total != 2 || stats.Expired != 1 {
		t.Errorf("Expected 2 entries with 1 expired, got %+v", stats)
	}
	if stats.TTL != "1m0s" {
		t.Errorf("Expected TTL 1m0s, got %s", stats.TTL)
	}

	m.cleanup()

	stats = m.GetStats()
	if stats.Total != 1 || stats.Expired != 0 {
		t.Errorf("Expected 1 live entry after cleanup, got %+v", stats)
	}
}
