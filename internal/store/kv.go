// Package store provides the journal store and its durable key-value backends.
package store

import (
	"context"
	"sync"
	"time"
)

// Storage keys. The names match the keys the browser build wrote so an
// exported blob restores unchanged.
const (
	JournalsKey = "trademind_journals"
	LanguageKey = "trademind_language"
)

// KV is the durable key-value store that receives whole-state snapshots.
type KV interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Historian is implemented by backends that keep replaced values.
type Historian interface {
	// Previous returns the value key held n writes ago (n >= 1).
	Previous(ctx context.Context, key string, n int) ([]byte, bool, error)
	PruneHistory(ctx context.Context, key string, keep int) (int64, error)
	UpdatedAt(ctx context.Context, key string) time.Time
}

// HistoryDepth is how many replaced journal snapshots a Historian keeps.
const HistoryDepth = 50

// MemoryKV is an in-process KV used by tests and ephemeral sessions.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
	writes int
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	m.writes++
	return nil
}

// Writes reports how many Set calls succeeded.
func (m *MemoryKV) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Close implements KV.
func (m *MemoryKV) Close() error { return nil }
