package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devtrail/idea-engine/internal/models"
)

type memoryEntry struct {
	value     *models.AnalyzeCompanyResponse
	expiresAt time.Time
}

// Memory is a bounded in-memory TTL cache. When full, the entry closest to
// expiry is evicted to make room.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewMemory creates a bounded in-memory cache
func NewMemory(ttl time.Duration, capacity int) *Memory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if capacity < 1 {
		capacity = 1000
	}

	return &Memory{
		entries:  make(map[string]memoryEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get implements Store
func (m *Memory) Get(_ context.Context, key string) (*models.AnalyzeCompanyResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set implements Store
func (m *Memory) Set(_ context.Context, key string, value *models.AnalyzeCompanyResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.capacity {
		m.evictLocked()
	}

	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

// Close implements Store
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of live entries
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// StartSweeper begins a background worker that prunes expired entries at
// the given interval until ctx is cancelled
func (m *Memory) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go m.sweepLoop(ctx, interval)
}

func (m *Memory) sweepLoop(ctx context.Context, interval time.Duration) {
	slog.Info("cache sweeper started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cache sweeper stopped")
			return
		case <-ticker.C:
			if removed := m.sweep(); removed > 0 {
				slog.Debug("cache sweep removed expired entries", "count", removed)
			}
		}
	}
}

// sweep removes all expired entries and reports how many were dropped
func (m *Memory) sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// evictLocked drops expired entries, or failing that the entry closest to
// expiry. Caller holds the lock.
func (m *Memory) evictLocked() {
	now := m.now()

	var oldestKey string
	var oldestExpiry time.Time
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			return
		}
		if oldestKey == "" || entry.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiresAt
		}
	}

	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
