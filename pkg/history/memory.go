package history

import (
	"context"
	"sync"
)

// DefaultCapacity is the MemoryStore ring size.
const DefaultCapacity = 1000

// MemoryStore keeps the most recent entries in a fixed-size ring.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a ring holding up to capacity entries
// (DefaultCapacity when capacity <= 0).
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{entries: make([]Entry, capacity)}
}

// Append stores the entry, overwriting the oldest one when full.
func (m *MemoryStore) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !entry.Kind.Valid() {
		return ErrInvalidKind
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.next] = entry
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// List returns matching entries, newest first.
func (m *MemoryStore) List(ctx context.Context, query Query) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := query.limit()
	out := make([]Entry, 0, min(limit, m.lenLocked()))
	for i := 0; i < m.lenLocked() && len(out) < limit; i++ {
		idx := (m.next - 1 - i + len(m.entries)) % len(m.entries)
		if e := m.entries[idx]; query.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lenLocked()
}

func (m *MemoryStore) lenLocked() int {
	if m.full {
		return len(m.entries)
	}
	return m.next
}
