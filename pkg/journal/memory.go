package journal

import (
	"context"
	"sync"
)

// Memory is an in-memory journal for tests and ephemeral runs.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ Log = (*Memory)(nil)

// NewMemory creates an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends the entry.
func (m *Memory) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// List returns entries newest first.
func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.entries))
	out := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Close is a no-op; memory journals hold no resources.
func (m *Memory) Close() error {
	return nil
}
