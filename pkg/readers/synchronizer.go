package readers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mobile-access/readers-go/pkg/dwell"
	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/sdkstate"
	"github.com/mobile-access/readers-go/pkg/subscription"
)

// Synchronizer errors.
var (
	ErrAlreadyStarted = errors.New("synchronizer already started")
	ErrClosed         = errors.New("synchronizer closed")
)

// View is an immutable snapshot of the screen state.
type View struct {
	// Version increases by one with every state change.
	Version uint64 `json:"version"`

	// Scanning is the SDK's scanning flag from the last state event.
	Scanning bool `json:"scanning"`

	Messages []sdkstate.Message `json:"messages"`
	Readers  []sdk.Reader       `json:"readers"`
}

// Synchronizer maintains the status messages and reader list from SDK events.
type Synchronizer struct {
	config Config
	source sdk.SDK

	mu       sync.Mutex
	messages []sdkstate.Message
	scanning bool
	readers  *List
	version  uint64

	// Current status generation per reader, drawn from nextGen so that a
	// generation is never reused, even across remove and re-add.
	generations map[string]uint64
	nextGen     uint64

	// Set once an sdkStateChanged event is applied; a GetStates reply that
	// arrives later is stale.
	statesSeen bool

	started bool
	closed  bool

	subs   subscription.Set
	timers *dwell.Manager

	listeners  *subscription.Topic[View]
	pending    []View
	delivering bool

	eventLog  log.Logger
	sessionID string
}

// New creates a Synchronizer reading from source. Call Start to subscribe.
func New(source sdk.SDK, config Config) *Synchronizer {
	if config.DwellTime <= 0 {
		config.DwellTime = dwell.DefaultDuration
	}
	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	s := &Synchronizer{
		config:      config,
		source:      source,
		messages:    []sdkstate.Message{},
		readers:     NewList(),
		generations: make(map[string]uint64),
		timers:      dwell.NewManager(),
		listeners:   subscription.NewTopic[View]("view"),
		eventLog:    log.OrNoop(config.EventLogger),
		sessionID:   sessionID,
	}
	s.timers.OnExpiry(s.handleDwellExpired)
	return s
}

// SessionID returns the ID used to tag captured events.
func (s *Synchronizer) SessionID() string {
	return s.sessionID
}

// Start subscribes to the SDK events and seeds the message list from
// GetStates. If GetStates fails, the subscriptions are released and the
// synchronizer is closed.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.subs.Add(s.source.OnSdkStateChanged(s.HandleSdkStateChanged))
	s.subs.Add(s.source.OnReaderUpdated(s.HandleReaderUpdated))
	s.subs.Add(s.source.OnAccess(s.HandleAccess))

	states, err := s.source.GetStates(ctx)
	if err != nil {
		s.captureError("get states", err)
		s.Close()
		return fmt.Errorf("get states: %w", err)
	}

	s.mu.Lock()
	if s.closed || s.statesSeen {
		s.mu.Unlock()
		s.debugLog("discarding initial state snapshot", "states", states)
		return nil
	}
	s.applyStatesLocked(states, s.scanning, "initial")
	s.commitLocked()
	return nil
}

// Refresh re-reads the SDK states and replaces the message list. The
// scanning flag is left unchanged.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	states, err := s.source.GetStates(ctx)
	if err != nil {
		s.captureError("refresh states", err)
		return fmt.Errorf("get states: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.applyStatesLocked(states, s.scanning, "refresh")
	s.commitLocked()
	return nil
}

// HandleSdkStateChanged replaces the message list with the event's states.
func (s *Synchronizer) HandleSdkStateChanged(ev sdk.SdkStateChanged) {
	s.debugLog("sdk state changed", "scanning", ev.IsScanning, "states", ev.States)
	s.captureSDK("", &log.SDKEventData{
		Name:       sdk.EventSdkStateChanged,
		States:     ev.States,
		IsScanning: ev.IsScanning,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.statesSeen = true
	s.applyStatesLocked(ev.States, ev.IsScanning, sdk.EventSdkStateChanged)
	s.commitLocked()
}

func (s *Synchronizer) applyStatesLocked(states []string, scanning bool, reason string) {
	old := len(s.messages)
	s.messages = sdkstate.Messages(states)
	s.scanning = scanning
	s.captureState(log.StateEntityMessages, "", strconv.Itoa(old), strconv.Itoa(len(s.messages)), reason)
}

// HandleReaderUpdated applies a readerUpdated event to the reader list.
func (s *Synchronizer) HandleReaderUpdated(ev sdk.ReaderUpdated) {
	id := ev.Reader.ID
	s.debugLog("reader updated", "type", ev.UpdateType, "reader", id, "name", ev.Reader.Name)
	s.captureSDK(id, &log.SDKEventData{
		Name:       sdk.EventReaderUpdated,
		UpdateType: string(ev.UpdateType),
		ReaderName: ev.Reader.Name,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	switch ev.UpdateType {
	case sdk.ReaderUnavailable:
		if !s.readers.Remove(id) {
			s.mu.Unlock()
			return
		}
		_ = s.timers.Cancel(id)
		delete(s.generations, id)
		s.captureState(log.StateEntityReader, id, "present", "removed", string(ev.UpdateType))

	case sdk.AttributesChanged:
		if s.readers.Upsert(ev.Reader) {
			s.captureState(log.StateEntityReader, id, "", "added", string(ev.UpdateType))
		} else {
			s.captureState(log.StateEntityReader, id, "present", "updated", string(ev.UpdateType))
		}

	default:
		s.mu.Unlock()
		s.debugLog("ignoring reader update", "type", ev.UpdateType, "reader", id)
		return
	}

	s.commitLocked()
}

// HandleAccess sets the transient status of the reader named by the event
// and schedules its clear. Events for unknown readers are ignored.
func (s *Synchronizer) HandleAccess(ev sdk.AccessEvent) {
	id := ev.Reader.ID
	s.debugLog("access event", "event", ev.Event, "message", ev.Message, "reader", id)
	s.captureSDK(id, &log.SDKEventData{
		Name:          sdk.EventAccess,
		AccessEvent:   ev.Event,
		AccessMessage: ev.Message,
		ReaderName:    ev.Reader.Name,
	})

	status := ev.Message
	if ev.Event == sdk.AccessStarted {
		status = StatusConnecting
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	old, ok := s.readers.SetStatus(id, status)
	if !ok {
		s.mu.Unlock()
		s.debugLog("access event for unknown reader", "reader", id)
		return
	}

	s.nextGen++
	gen := s.nextGen
	s.generations[id] = gen
	if err := s.timers.Schedule(id, gen, s.config.DwellTime); err != nil {
		s.captureError("schedule status clear", err)
	}
	s.captureState(log.StateEntityStatus, id, old, status, ev.Event)

	reader, _ := s.readers.Get(id)
	observer := s.config.Observer
	s.commitLocked()

	if observer != nil {
		observer.StatusSet(reader, ev.Event)
	}
}

func (s *Synchronizer) handleDwellExpired(id string, gen uint64) {
	s.mu.Lock()
	if s.closed || s.generations[id] != gen {
		s.mu.Unlock()
		return
	}

	previous, ok := s.readers.SetStatus(id, "")
	if !ok || previous == "" {
		s.mu.Unlock()
		return
	}
	s.captureState(log.StateEntityStatus, id, previous, "", "dwell elapsed")

	reader, _ := s.readers.Get(id)
	observer := s.config.Observer
	s.commitLocked()

	if observer != nil {
		observer.StatusCleared(reader, previous)
	}
}

// commitLocked records a state change and delivers views to listeners.
// It must be called with s.mu held and returns with it released. Views are
// queued under the lock and drained by whichever goroutine is not already
// delivering, so listeners see changes in order without holding s.mu.
func (s *Synchronizer) commitLocked() {
	s.version++
	if s.listeners.Count() > 0 {
		s.pending = append(s.pending, s.viewLocked())
	}
	if s.delivering {
		s.mu.Unlock()
		return
	}

	s.delivering = true
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()
		for _, v := range batch {
			s.listeners.Publish(v)
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// OnChange registers fn to receive a View after every state change.
func (s *Synchronizer) OnChange(fn func(View)) sdk.Subscription {
	return s.listeners.Subscribe(fn)
}

// Close releases the SDK subscriptions, cancels pending status clears and
// drops change listeners. Events delivered afterwards change nothing.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	s.subs.RemoveAll()
	cancelled := s.timers.CancelAll()
	s.listeners.ClearAll()

	s.debugLog("synchronizer closed", "cancelled_timers", cancelled)
	return nil
}

// Messages returns the current status messages.
func (s *Synchronizer) Messages() []sdkstate.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sdkstate.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Readers returns the current reader list.
func (s *Synchronizer) Readers() []sdk.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readers.Snapshot()
}

// Reader returns the reader with the given ID.
func (s *Synchronizer) Reader(id string) (sdk.Reader, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readers.Get(id)
}

// View returns a snapshot of the full screen state.
func (s *Synchronizer) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Synchronizer) viewLocked() View {
	msgs := make([]sdkstate.Message, len(s.messages))
	copy(msgs, s.messages)
	return View{
		Version:  s.version,
		Scanning: s.scanning,
		Messages: msgs,
		Readers:  s.readers.Snapshot(),
	}
}

// PendingTimers returns the number of scheduled status clears.
func (s *Synchronizer) PendingTimers() int {
	return s.timers.Count()
}

// Closed reports whether Close has been called.
func (s *Synchronizer) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Synchronizer) debugLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}

func (s *Synchronizer) captureSDK(readerID string, data *log.SDKEventData) {
	s.eventLog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.sessionID,
		Direction: log.DirectionIn,
		Layer:     log.LayerSync,
		Category:  log.CategoryMessage,
		LocalRole: log.RoleScreen,
		ReaderID:  readerID,
		SDKEvent:  data,
	})
}

func (s *Synchronizer) captureState(entity log.StateEntity, readerID, oldState, newState, reason string) {
	s.eventLog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.sessionID,
		Layer:     log.LayerSync,
		Category:  log.CategoryState,
		LocalRole: log.RoleScreen,
		ReaderID:  readerID,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

func (s *Synchronizer) captureError(op string, err error) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(op+" failed", "error", err)
	}
	s.eventLog.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.sessionID,
		Layer:     log.LayerSync,
		Category:  log.CategoryError,
		LocalRole: log.RoleScreen,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSync,
			Message: err.Error(),
			Context: op,
		},
	})
}
