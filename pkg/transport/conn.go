package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/wire"
)

// Connection errors.
var (
	// ErrConnectionClosed is returned by operations on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrDecode wraps a frame that arrived intact but could not be decoded.
	// The connection stays usable.
	ErrDecode = errors.New("decode failed")
)

// Conn is a framed bridge connection. Send may be called concurrently;
// Receive must be called from a single reader goroutine.
type Conn struct {
	conn      net.Conn
	framer    *Framer
	sessionID string
	role      log.Role
	logger    log.Logger

	closeCh   chan struct{}
	closeOnce sync.Once
}

// NewConn wraps an established network connection.
func NewConn(nc net.Conn, sessionID string, role log.Role, maxSize uint32, logger log.Logger) *Conn {
	framer := NewFramer(nc, maxSize)
	if logger != nil {
		framer.SetLogger(logger, sessionID, role)
	}
	return &Conn{
		conn:      nc,
		framer:    framer,
		sessionID: sessionID,
		role:      role,
		logger:    logger,
		closeCh:   make(chan struct{}),
	}
}

// SessionID returns the connection's session identifier.
func (c *Conn) SessionID() string {
	return c.sessionID
}

// RemoteAddr returns the remote network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr returns the local network address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Send writes one frame.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}
	return c.framer.WriteFrame(data)
}

// SendMessage encodes and sends a bridge message.
func (c *Conn) SendMessage(msg wire.Message) error {
	data, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	if ctrl, ok := msg.(*wire.Control); ok {
		c.logControl(ctrl, log.DirectionOut)
	}
	return c.Send(data)
}

// Receive reads one frame. A zero timeout waits indefinitely.
func (c *Conn) Receive(timeout time.Duration) ([]byte, error) {
	select {
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	default:
	}

	if timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}
	data, err := c.framer.ReadFrame()
	if err != nil {
		select {
		case <-c.closeCh:
			return nil, ErrConnectionClosed
		default:
		}
	}
	return data, err
}

// ReceiveMessage reads and decodes one bridge message.
func (c *Conn) ReceiveMessage(timeout time.Duration) (wire.Message, error) {
	data, err := c.Receive(timeout)
	if err != nil {
		return nil, err
	}
	msg, err := wire.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if ctrl, ok := msg.(*wire.Control); ok {
		c.logControl(ctrl, log.DirectionIn)
	}
	return msg, nil
}

// SendPing sends a ping control message.
func (c *Conn) SendPing(seq uint32) error {
	return c.SendMessage(&wire.Control{Type: wire.ControlPing, Seq: seq})
}

// SendPong answers a ping.
func (c *Conn) SendPong(seq uint32) error {
	return c.SendMessage(&wire.Control{Type: wire.ControlPong, Seq: seq})
}

// SendClose sends a close control message.
func (c *Conn) SendClose(reason wire.CloseReason) error {
	return c.SendMessage(&wire.Control{Type: wire.ControlClose, Reason: reason})
}

// Done is closed when the connection is closed locally.
func (c *Conn) Done() <-chan struct{} {
	return c.closeCh
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

func (c *Conn) logControl(msg *wire.Control, direction log.Direction) {
	if c.logger == nil {
		return
	}

	var t log.ControlMsgType
	switch msg.Type {
	case wire.ControlPing:
		t = log.ControlMsgPing
	case wire.ControlPong:
		t = log.ControlMsgPong
	case wire.ControlClose:
		t = log.ControlMsgClose
	default:
		return
	}

	c.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  c.sessionID,
		Direction:  direction,
		Layer:      log.LayerTransport,
		Category:   log.CategoryControl,
		LocalRole:  c.role,
		RemoteAddr: c.conn.RemoteAddr().String(),
		ControlMsg: &log.ControlMsgEvent{Type: t, Seq: msg.Seq},
	})
}

func logConnState(logger log.Logger, c *Conn, oldState, newState, reason string) {
	if logger == nil {
		return
	}
	logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  c.sessionID,
		Layer:      log.LayerTransport,
		Category:   log.CategoryState,
		LocalRole:  c.role,
		RemoteAddr: c.conn.RemoteAddr().String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
