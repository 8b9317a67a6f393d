package simulator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mobile-access/readers-go/pkg/sdk"
)

// Config configures a Simulator.
type Config struct {
	// InitialStates seeds GetStates before any SetStates call.
	InitialStates []string

	// Scanning seeds the scanning flag.
	Scanning bool

	// Logger for operational logging (optional).
	Logger *slog.Logger
}

// Simulator is an in-process sdk.SDK whose state is set by its caller.
type Simulator struct {
	hub    *sdk.Hub
	logger *slog.Logger

	mu       sync.Mutex
	scanning bool
	states   []string
	readers  map[string]sdk.Reader
	order    []string
}

var _ sdk.SDK = (*Simulator)(nil)

// New creates a simulator.
func New(config Config) *Simulator {
	return &Simulator{
		hub:      sdk.NewHub(),
		logger:   config.Logger,
		scanning: config.Scanning,
		states:   append([]string(nil), config.InitialStates...),
		readers:  make(map[string]sdk.Reader),
	}
}

// GetStates returns the current state codes.
func (s *Simulator) GetStates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.states...), nil
}

// OnSdkStateChanged subscribes to state changes.
func (s *Simulator) OnSdkStateChanged(fn func(sdk.SdkStateChanged)) sdk.Subscription {
	return s.hub.OnSdkStateChanged(fn)
}

// OnReaderUpdated subscribes to reader updates.
func (s *Simulator) OnReaderUpdated(fn func(sdk.ReaderUpdated)) sdk.Subscription {
	return s.hub.OnReaderUpdated(fn)
}

// OnAccess subscribes to access events.
func (s *Simulator) OnAccess(fn func(sdk.AccessEvent)) sdk.Subscription {
	return s.hub.OnAccess(fn)
}

// SetStates replaces the active states and emits sdkStateChanged.
func (s *Simulator) SetStates(scanning bool, states ...string) {
	s.mu.Lock()
	s.scanning = scanning
	s.states = append([]string{}, states...)
	ev := sdk.SdkStateChanged{IsScanning: scanning, States: append([]string{}, states...)}
	s.mu.Unlock()

	s.debugLog("states", "scanning", scanning, "states", states)
	s.hub.EmitSdkStateChanged(ev)
}

// SeeReader records the reader as nearby and emits attributesChanged.
func (s *Simulator) SeeReader(r sdk.Reader) {
	s.mu.Lock()
	if _, ok := s.readers[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.readers[r.ID] = r.Clone()
	s.mu.Unlock()

	s.debugLog("reader seen", "id", r.ID, "name", r.Name)
	s.hub.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.AttributesChanged, Reader: r.Clone()})
}

// LoseReader forgets the reader and emits readerUnavailable. Unknown ids
// are still announced, like an SDK that lost track of its own list.
func (s *Simulator) LoseReader(id string) {
	s.mu.Lock()
	r, ok := s.readers[id]
	if ok {
		delete(s.readers, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	} else {
		r = sdk.Reader{ID: id}
	}
	s.mu.Unlock()

	s.debugLog("reader lost", "id", id)
	s.hub.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.ReaderUnavailable, Reader: r})
}

// Access emits an access event for the reader with the given id.
func (s *Simulator) Access(event, message, id string) {
	s.mu.Lock()
	r, ok := s.readers[id]
	s.mu.Unlock()
	if !ok {
		r = sdk.Reader{ID: id}
	}

	s.debugLog("access", "id", id, "event", event, "message", message)
	s.hub.EmitAccess(sdk.AccessEvent{Event: event, Message: message, Reader: r.Clone()})
}

// Readers returns the readers currently in range, in first-seen order.
func (s *Simulator) Readers() []sdk.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sdk.Reader, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.readers[id].Clone())
	}
	return out
}

// Scanning returns the current scanning flag.
func (s *Simulator) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// ListenerCount returns the number of live subscriptions.
func (s *Simulator) ListenerCount() int {
	return s.hub.ListenerCount()
}

// Close drops all subscriptions.
func (s *Simulator) Close() {
	s.hub.Close()
}

func (s *Simulator) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug("sim: "+msg, args...)
	}
}
