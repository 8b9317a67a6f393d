package dwell

import (
	"errors"
	"sync"
	"time"
)

// Dwell timer errors.
var (
	ErrTimerNotFound   = errors.New("timer not found")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Duration limits.
const (
	// DefaultDuration is how long an access status stays on screen.
	DefaultDuration = 2000 * time.Millisecond

	// MaxDuration is the longest accepted dwell.
	MaxDuration = 1 * time.Hour
)

// Timer represents a pending status clear.
type Timer struct {
	// Key is the reader ID.
	Key string

	// Generation is the status generation the timer was scheduled for.
	Generation uint64

	// StartTime is when the timer was scheduled.
	StartTime time.Time

	// Duration is the dwell time.
	Duration time.Duration

	timer *time.Timer
}

// ExpiresAt returns when the timer will fire.
func (t *Timer) ExpiresAt() time.Time {
	return t.StartTime.Add(t.Duration)
}

// RemainingTime returns time until expiry.
func (t *Timer) RemainingTime() time.Duration {
	remaining := t.Duration - time.Since(t.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Manager tracks pending dwell timers.
type Manager struct {
	mu sync.Mutex

	// Pending timers by key
	timers map[string]*Timer

	onExpiry func(key string, generation uint64)
}

// NewManager creates a new dwell timer manager.
func NewManager() *Manager {
	return &Manager{
		timers: make(map[string]*Timer),
	}
}

// Schedule starts or replaces the timer for key.
func (m *Manager) Schedule(key string, generation uint64, d time.Duration) error {
	if d <= 0 || d > MaxDuration {
		return ErrInvalidDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.timers[key]; ok {
		existing.timer.Stop()
	}

	t := &Timer{
		Key:        key,
		Generation: generation,
		StartTime:  time.Now(),
		Duration:   d,
	}
	t.timer = time.AfterFunc(d, func() {
		m.expire(t)
	})
	m.timers[key] = t
	return nil
}

// Cancel stops the timer for key without invoking the expiry callback.
func (m *Manager) Cancel(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[key]
	if !ok {
		return ErrTimerNotFound
	}
	t.timer.Stop()
	delete(m.timers, key)
	return nil
}

// CancelAll stops every pending timer and returns how many there were.
func (m *Manager) CancelAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.timers)
	for key, t := range m.timers {
		t.timer.Stop()
		delete(m.timers, key)
	}
	return n
}

// Get returns a copy of the timer for key, or nil.
func (m *Manager) Get(key string) *Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[key]
	if !ok {
		return nil
	}
	return &Timer{
		Key:        t.Key,
		Generation: t.Generation,
		StartTime:  t.StartTime,
		Duration:   t.Duration,
	}
}

// Count returns the number of pending timers.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// OnExpiry sets the callback invoked when a timer fires.
func (m *Manager) OnExpiry(fn func(key string, generation uint64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpiry = fn
}

func (m *Manager) expire(t *Timer) {
	m.mu.Lock()

	// Replaced or cancelled after the runtime already fired it
	if m.timers[t.Key] != t {
		m.mu.Unlock()
		return
	}
	delete(m.timers, t.Key)
	callback := m.onExpiry

	m.mu.Unlock()

	// Call callback outside lock
	if callback != nil {
		callback(t.Key, t.Generation)
	}
}
