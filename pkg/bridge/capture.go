package bridge

import (
	"time"

	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/transport"
	"github.com/mobile-access/readers-go/pkg/wire"
)

// capturer records decoded bridge messages for one connection.
type capturer struct {
	logger log.Logger
	role   log.Role
}

func (c capturer) message(conn *transport.Conn, dir log.Direction, msg wire.Message, processing *time.Duration) {
	if c.logger == nil {
		return
	}

	ev := &log.MessageEvent{ProcessingTime: processing}
	var readerID string

	switch m := msg.(type) {
	case *wire.Request:
		ev.Type = log.MessageTypeRequest
		ev.RequestID = m.ID
		ev.Method = m.Method
	case *wire.Response:
		status := uint8(m.Status)
		ev.Type = log.MessageTypeResponse
		ev.RequestID = m.ID
		ev.Status = &status
		if m.States != nil {
			ev.Payload = m.States
		}
	case *wire.Event:
		ev.Type = log.MessageTypeEvent
		ev.EventName = m.Name
		ev.Payload = eventPayload(m)
		readerID = eventReaderID(m)
	case *wire.Hello, *wire.Challenge, *wire.Proof, *wire.Welcome:
		ev.Type = log.MessageTypeHandshake
		ev.Method = msg.MessageKind().String()
	default:
		return
	}

	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  conn.SessionID(),
		Direction:  dir,
		Layer:      log.LayerWire,
		Category:   log.CategoryMessage,
		LocalRole:  c.role,
		RemoteAddr: conn.RemoteAddr().String(),
		ReaderID:   readerID,
		Message:    ev,
	})
}

func (c capturer) error(conn *transport.Conn, op string, err error) {
	if c.logger == nil || err == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  conn.SessionID(),
		Layer:      log.LayerWire,
		Category:   log.CategoryError,
		LocalRole:  c.role,
		RemoteAddr: conn.RemoteAddr().String(),
		Error: &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: err.Error(),
			Context: op,
		},
	})
}

func eventPayload(e *wire.Event) any {
	switch {
	case e.SdkState != nil:
		return e.SdkState
	case e.ReaderUpdate != nil:
		return e.ReaderUpdate
	case e.Access != nil:
		return e.Access
	}
	return nil
}

func eventReaderID(e *wire.Event) string {
	switch {
	case e.ReaderUpdate != nil:
		return e.ReaderUpdate.Reader.ID
	case e.Access != nil:
		return e.Access.Reader.ID
	}
	return ""
}

// emit publishes a received event on the hub.
func emit(hub *sdk.Hub, e *wire.Event) {
	switch {
	case e.SdkState != nil:
		hub.EmitSdkStateChanged(*e.SdkState)
	case e.ReaderUpdate != nil:
		hub.EmitReaderUpdated(*e.ReaderUpdate)
	case e.Access != nil:
		hub.EmitAccess(*e.Access)
	}
}
