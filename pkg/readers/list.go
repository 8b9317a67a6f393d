package readers

import (
	"maps"

	"github.com/mobile-access/readers-go/pkg/sdk"
)

// List is an ordered set of readers keyed by ID. It is not safe for
// concurrent use; the Synchronizer guards it.
type List struct {
	items []sdk.Reader
	index map[string]int
}

// NewList creates an empty list.
func NewList() *List {
	return &List{index: make(map[string]int)}
}

// Upsert merges r into the entry with the same ID, or appends it. The stored
// status is never taken from r. Returns true when r was appended.
func (l *List) Upsert(r sdk.Reader) bool {
	if i, ok := l.index[r.ID]; ok {
		existing := &l.items[i]
		existing.Name = r.Name
		existing.Distance = r.Clone().Distance
		if len(r.Attributes) > 0 {
			if existing.Attributes == nil {
				existing.Attributes = make(map[string]any, len(r.Attributes))
			}
			maps.Copy(existing.Attributes, r.Attributes)
		}
		return false
	}

	added := r.Clone()
	added.Status = ""
	l.index[r.ID] = len(l.items)
	l.items = append(l.items, added)
	return true
}

// Remove deletes the entry with the given ID. Returns false if absent.
func (l *List) Remove(id string) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	delete(l.index, id)
	for j := i; j < len(l.items); j++ {
		l.index[l.items[j].ID] = j
	}
	return true
}

// Get returns a copy of the entry with the given ID.
func (l *List) Get(id string) (sdk.Reader, bool) {
	i, ok := l.index[id]
	if !ok {
		return sdk.Reader{}, false
	}
	return l.items[i].Clone(), true
}

// SetStatus replaces the status of the entry with the given ID and returns
// the previous one.
func (l *List) SetStatus(id, status string) (string, bool) {
	i, ok := l.index[id]
	if !ok {
		return "", false
	}
	old := l.items[i].Status
	l.items[i].Status = status
	return old, true
}

// Len returns the number of readers.
func (l *List) Len() int {
	return len(l.items)
}

// Snapshot returns deep copies of all entries in list order. The result is
// never nil.
func (l *List) Snapshot() []sdk.Reader {
	out := make([]sdk.Reader, len(l.items))
	for i, r := range l.items {
		out[i] = r.Clone()
	}
	return out
}
