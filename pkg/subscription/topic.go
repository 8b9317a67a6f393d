package subscription

import (
	"sync"
)

type handlerEntry[T any] struct {
	sub *Subscription
	fn  func(T)
}

// Topic delivers values of type T to registered handlers.
type Topic[T any] struct {
	mu sync.RWMutex

	// Name is used in log output only.
	name string

	// Handlers in registration order
	handlers []handlerEntry[T]
}

// NewTopic creates an empty topic.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers fn and returns its handle. A nil fn yields an inactive
// subscription that never fires.
func (t *Topic[T]) Subscribe(fn func(T)) *Subscription {
	sub := newSubscription(t.remove)
	if fn == nil {
		sub.active.Store(false)
		return sub
	}

	t.mu.Lock()
	t.handlers = append(t.handlers, handlerEntry[T]{sub: sub, fn: fn})
	t.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscription with the given ID.
func (t *Topic[T]) Unsubscribe(id uint32) error {
	t.mu.RLock()
	var sub *Subscription
	for _, h := range t.handlers {
		if h.sub.ID == id {
			sub = h.sub
			break
		}
	}
	t.mu.RUnlock()

	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Remove()
	return nil
}

func (t *Topic[T]) remove(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, h := range t.handlers {
		if h.sub.ID == id {
			t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
			return
		}
	}
}

// Publish invokes every active handler with v and returns how many were
// called.
func (t *Topic[T]) Publish(v T) int {
	t.mu.RLock()
	handlers := make([]handlerEntry[T], len(t.handlers))
	copy(handlers, t.handlers)
	t.mu.RUnlock()

	n := 0
	for _, h := range handlers {
		// Removed between snapshot and delivery
		if !h.sub.IsActive() {
			continue
		}
		h.fn(v)
		n++
	}
	return n
}

// Count returns the number of registered handlers.
func (t *Topic[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers)
}

// ClearAll removes every handler.
func (t *Topic[T]) ClearAll() {
	t.mu.Lock()
	handlers := t.handlers
	t.handlers = nil
	t.mu.Unlock()

	for _, h := range handlers {
		h.sub.active.Store(false)
	}
}
