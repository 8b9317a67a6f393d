package subscription

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Subscription errors.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNilHandler           = errors.New("nil handler")
)

// Subscription is the handle returned when registering a handler.
type Subscription struct {
	// ID uniquely identifies the subscription within the process.
	ID uint32

	active atomic.Bool
	remove func(id uint32)
}

func newSubscription(remove func(id uint32)) *Subscription {
	s := &Subscription{ID: nextID(), remove: remove}
	s.active.Store(true)
	return s
}

// Remove unregisters the handler. Calling Remove more than once is a no-op.
func (s *Subscription) Remove() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	if s.remove != nil {
		s.remove(s.ID)
	}
}

// IsActive returns false once the subscription has been removed.
func (s *Subscription) IsActive() bool {
	return s.active.Load()
}

// Remover is anything that can be released, such as a *Subscription.
type Remover interface {
	Remove()
}

// Set tracks subscriptions owned by one component.
type Set struct {
	mu     sync.Mutex
	items  []Remover
	closed bool
}

// Add tracks r. If the set was already released, r is removed immediately.
// A nil r is ignored.
func (s *Set) Add(r Remover) {
	if r == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		r.Remove()
		return
	}
	s.items = append(s.items, r)
	s.mu.Unlock()
}

// RemoveAll releases every tracked subscription. Subsequent Adds are released
// on arrival.
func (s *Set) RemoveAll() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.closed = true
	s.mu.Unlock()

	for _, r := range items {
		r.Remove()
	}
}

// Len returns the number of tracked subscriptions.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// idGenerator generates unique subscription IDs.
var idGenerator atomic.Uint32

// nextID returns the next unique subscription ID.
func nextID() uint32 {
	return idGenerator.Add(1)
}
