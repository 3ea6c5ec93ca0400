package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"phishguard/internal/logger"
)

type cacheEntry[V any] struct {
	value     V
	timestamp time.Time
	ttl       time.Duration
}

func (e *cacheEntry[V]) isExpired(now time.Time) bool {
	if e.ttl == 0 {
		return false
	}
	return now.Sub(e.timestamp) > e.ttl
}

type MemoryStore[V any] struct {
	entries map[string]*cacheEntry[V]
	mutex   sync.RWMutex
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore returns an in-process store. A ttl of zero disables expiry;
// otherwise a janitor goroutine sweeps expired entries until Close is called.
func NewMemoryStore[V any](ttl time.Duration) *MemoryStore[V] {
	store := &MemoryStore[V]{
		entries: make(map[string]*cacheEntry[V]),
		ttl:     ttl,
		done:    make(chan struct{}),
	}

	if ttl > 0 {
		go store.cleanupExpired()
	}

	return store
}

func (m *MemoryStore[V]) Get(ctx context.Context, key string) (V, bool) {
	log := logger.FromContext(ctx)
	now := time.Now()

	m.mutex.RLock()
	entry, exists := m.entries[key]
	m.mutex.RUnlock()

	var zero V
	if !exists {
		log.Debug("cache miss",
			slog.String("key", key),
			slog.String("reason", "not_found"))
		return zero, false
	}

	if entry.isExpired(now) {
		log.Debug("cache miss",
			slog.String("key", key),
			slog.String("reason", "expired"),
			slog.Duration("age", now.Sub(entry.timestamp)))

		m.mutex.Lock()
		if current, ok := m.entries[key]; ok && current == entry {
			delete(m.entries, key)
		}
		m.mutex.Unlock()
		return zero, false
	}

	age := now.Sub(entry.timestamp)
	log.Debug("cache hit",
		slog.String("key", key),
		slog.Duration("age", age),
		slog.Duration("remaining_ttl", m.ttl-age))

	return entry.value, true
}

func (m *MemoryStore[V]) Set(ctx context.Context, key string, value V) {
	m.mutex.Lock()
	m.entries[key] = &cacheEntry[V]{
		value:     value,
		timestamp: time.Now(),
		ttl:       m.ttl,
	}
	total := len(m.entries)
	m.mutex.Unlock()

	logger.FromContext(ctx).Debug("cache set",
		slog.String("key", key),
		slog.Int("total_entries", total))
}

func (m *MemoryStore[V]) Delete(_ context.Context, key string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.entries, key)
}

func (m *MemoryStore[V]) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.entries = make(map[string]*cacheEntry[V])
}

func (m *MemoryStore[V]) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return len(m.entries)
}

// Close stops the janitor goroutine. It is safe to call more than once.
func (m *MemoryStore[V]) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *MemoryStore[V]) cleanupExpired() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mutex.Lock()
		now := time.Now()
		removed := 0
		for key, entry := range m.entries {
			if entry.isExpired(now) {
				delete(m.entries, key)
				removed++
			}
		}
		remaining := len(m.entries)
		m.mutex.Unlock()

		if removed > 0 {
			logger.Get().Debug("cache cleanup completed",
				slog.Int("removed", removed),
				slog.Int("remaining", remaining))
		}
	}
}
