package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CachedValue is an in-memory cache entry with expiry
type CachedValue[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// IsExpired checks if the entry has expired at now
func (c *CachedValue[V]) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Manager is a TTL cache for portal lookups that rarely change
type Manager[K comparable, V any] struct {
	memory   sync.Map // map[K]*CachedValue[V]
	disabled bool
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger

	// Cleanup goroutine control
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a cache. A disabled cache or a non-positive ttl
// misses on every lookup.
func NewManager[K comparable, V any](disabled bool, ttl time.Duration, logger *slog.Logger) *Manager[K, V] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager[K, V]{
		disabled: disabled || ttl <= 0,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !m.disabled {
		go m.cleanupLoop()
	}
	return m
}

// Get returns a cached value
func (m *Manager[K, V]) Get(key K) (V, bool) {
	var zero V
	if m.disabled {
		return zero, false
	}

	value, ok := m.memory.Load(key)
	if !ok {
		return zero, false
	}
	cached := value.(*CachedValue[V])
	if cached.IsExpired(m.now()) {
		m.memory.Delete(key)
		return zero, false
	}
	return cached.Value, true
}

// Set stores a value for the configured TTL
func (m *Manager[K, V]) Set(key K, value V) {
	if m.disabled {
		return
	}
	m.memory.Store(key, &CachedValue[V]{
		Value:     value,
		ExpiresAt: m.now().Add(m.ttl),
	})
}

// Delete removes a cached value
func (m *Manager[K, V]) Delete(key K) {
	m.memory.Delete(key)
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func (m *Manager[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if value, ok := m.Get(key); ok {
		m.logger.Debug("Cache hit", "key", key)
		return value, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	m.Set(key, value)
	return value, nil
}

// IsEnabled returns true if caching is enabled
func (m *Manager[K, V]) IsEnabled() bool {
	return !m.disabled
}

// GetTTL returns the cache TTL duration
func (m *Manager[K, V]) GetTTL() time.Duration {
	return m.ttl
}

// cleanupLoop runs periodically to clean up expired entries
func (m *Manager[K, V]) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

// cleanup removes expired entries
func (m *Manager[K, V]) cleanup() {
	now := m.now()
	removed := 0
	m.memory.Range(func(key, value any) bool {
		if value.(*CachedValue[V]).IsExpired(now) {
			m.memory.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		m.logger.Debug("Cleaned up expired cache entries", "count", removed)
	}
}

// GetStats returns cache statistics
func (m *Manager[K, V]) GetStats() CacheStats {
	stats := CacheStats{
		Disabled: m.disabled,
		TTL:      m.ttl.String(),
	}
	if m.disabled {
		return stats
	}

	now := m.now()
	m.memory.Range(func(key, value any) bool {
		stats.Total++
		if value.(*CachedValue[V]).IsExpired(now) {
			stats.Expired++
		}
		return true
	})
	return stats
}

// Close stops the cleanup goroutine
func (m *Manager[K, V]) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// CacheStats represents cache statistics
type CacheStats struct {
	Disabled bool   `json:"disabled"`
	TTL      string `json:"ttl"`
	Total    int    `json:"total"`
	Expired  int    `json:"expired"`
}
