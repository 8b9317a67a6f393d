package sdk

import (
	"github.com/mobile-access/readers-go/pkg/subscription"
)

// Hub fans SDK events out to registered handlers. It implements Events.
// Handlers run on the emitting goroutine.
type Hub struct {
	states  *subscription.Topic[SdkStateChanged]
	readers *subscription.Topic[ReaderUpdated]
	access  *subscription.Topic[AccessEvent]
}

var _ Events = (*Hub)(nil)

// NewHub creates a hub with no handlers.
func NewHub() *Hub {
	return &Hub{
		states:  subscription.NewTopic[SdkStateChanged](EventSdkStateChanged),
		readers: subscription.NewTopic[ReaderUpdated](EventReaderUpdated),
		access:  subscription.NewTopic[AccessEvent](EventAccess),
	}
}

// OnSdkStateChanged registers fn for sdkStateChanged events.
func (h *Hub) OnSdkStateChanged(fn func(SdkStateChanged)) Subscription {
	return h.states.Subscribe(fn)
}

// OnReaderUpdated registers fn for readerUpdated events.
func (h *Hub) OnReaderUpdated(fn func(ReaderUpdated)) Subscription {
	return h.readers.Subscribe(fn)
}

// OnAccess registers fn for access events.
func (h *Hub) OnAccess(fn func(AccessEvent)) Subscription {
	return h.access.Subscribe(fn)
}

// EmitSdkStateChanged delivers ev and returns the number of handlers called.
func (h *Hub) EmitSdkStateChanged(ev SdkStateChanged) int {
	return h.states.Publish(ev)
}

// EmitReaderUpdated delivers ev and returns the number of handlers called.
func (h *Hub) EmitReaderUpdated(ev ReaderUpdated) int {
	return h.readers.Publish(ev)
}

// EmitAccess delivers ev and returns the number of handlers called.
func (h *Hub) EmitAccess(ev AccessEvent) int {
	return h.access.Publish(ev)
}

// ListenerCount returns the number of registered handlers across all events.
func (h *Hub) ListenerCount() int {
	return h.states.Count() + h.readers.Count() + h.access.Count()
}

// Close drops every handler.
func (h *Hub) Close() {
	h.states.ClearAll()
	h.readers.ClearAll()
	h.access.ClearAll()
}
