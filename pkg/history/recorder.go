package history

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
)

// Recorder defaults.
const (
	DefaultBufferSize    = 256
	DefaultAppendTimeout = 5 * time.Second
)

// RecorderConfig configures a Recorder.
type RecorderConfig struct {
	// BufferSize is the number of entries queued before new ones are
	// dropped (default: 256).
	BufferSize int

	// AppendTimeout bounds each Store.Append call (default: 5s).
	AppendTimeout time.Duration

	// Logger for store failures and dropped entries (optional).
	Logger *slog.Logger

	// Now returns the entry timestamp (default: time.Now).
	Now func() time.Time
}

// Recorder turns status overlay transitions into journal entries. Observer
// calls never block on the store: entries are queued and appended by a
// single worker in the order they arrived.
type Recorder struct {
	store  Store
	config RecorderConfig

	queue   chan Entry
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	failed  atomic.Uint64
	done    chan struct{}
}

var _ readers.Observer = (*Recorder)(nil)

// NewRecorder starts a recorder writing to store.
func NewRecorder(store Store, config RecorderConfig) *Recorder {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBufferSize
	}
	if config.AppendTimeout <= 0 {
		config.AppendTimeout = DefaultAppendTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	r := &Recorder{
		store:  store,
		config: config,
		queue:  make(chan Entry, config.BufferSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// StatusSet records a status being set by an access event.
func (r *Recorder) StatusSet(reader sdk.Reader, event string) {
	r.enqueue(Entry{
		ReaderID:   reader.ID,
		ReaderName: reader.Name,
		Kind:       KindSet,
		Status:     reader.Status,
		Event:      event,
	})
}

// StatusCleared records a status being cleared after the dwell time.
func (r *Recorder) StatusCleared(reader sdk.Reader, previous string) {
	r.enqueue(Entry{
		ReaderID:   reader.ID,
		ReaderName: reader.Name,
		Kind:       KindCleared,
		Status:     previous,
	})
}

// Dropped returns the number of entries discarded because the queue was
// full or the recorder was closed.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Failed returns the number of entries the store rejected.
func (r *Recorder) Failed() uint64 {
	return r.failed.Load()
}

// Close stops accepting entries, appends the ones already queued and waits
// for the worker to exit. It is safe to call more than once.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
}

func (r *Recorder) enqueue(e Entry) {
	e.ID = uuid.New()
	e.At = r.config.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}

	select {
	case r.queue <- e:
	default:
		r.dropped.Add(1)
		if r.config.Logger != nil {
			r.config.Logger.Warn("history queue full, entry dropped", "reader", e.ReaderID, "kind", e.Kind)
		}
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.AppendTimeout)
		err := r.store.Append(ctx, e)
		cancel()

		if err != nil {
			r.failed.Add(1)
			if r.config.Logger != nil {
				r.config.Logger.Error("history append failed", "reader", e.ReaderID, "kind", e.Kind, "error", err)
			}
		}
	}
}
