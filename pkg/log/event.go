package log

import (
	"time"
)

// Event is a single captured event. CBOR encoding uses integer keys.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the bridge connection or synchronizer session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// LocalRole is the role of the process that captured the event.
	LocalRole Role `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (IP:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// ReaderID is set when the event concerns a single reader.
	ReaderID string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire layer (decoded)
	SDKEvent    *SDKEventData     `cbor:"12,keyasint,omitempty"` // SDK event as received
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Connection/list/status changes
	ControlMsg  *ControlMsgEvent  `cbor:"14,keyasint,omitempty"` // Ping/pong/close
	Error       *ErrorEventData   `cbor:"15,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerTransport is the framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the bridge message layer (decoded CBOR).
	LayerWire Layer = 1
	// LayerSync is the reader list synchronizer.
	LayerSync Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSync:
		return "SYNC"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a bridge message or SDK event.
	CategoryMessage Category = 0
	// CategoryControl indicates a control message (ping/pong/close).
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates which side of the bridge captured the event.
type Role uint8

const (
	// RoleScreen is the process rendering the reader list.
	RoleScreen Role = 0
	// RoleBridge is the process hosting the SDK.
	RoleBridge Role = 1
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleScreen:
		return "SCREEN"
	case RoleBridge:
		return "BRIDGE"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including length prefix).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a decoded bridge message.
type MessageEvent struct {
	// Type distinguishes request/response/event/handshake.
	Type MessageType `cbor:"1,keyasint"`

	// RequestID correlates request/response pairs (0 for events).
	RequestID uint32 `cbor:"2,keyasint"`

	// Method is the requested SDK method (requests only).
	Method string `cbor:"3,keyasint,omitempty"`

	// Status is the response status code (responses only).
	Status *uint8 `cbor:"4,keyasint,omitempty"`

	// EventName is the SDK event carried (events only).
	EventName string `cbor:"5,keyasint,omitempty"`

	// Payload is the decoded body (CBOR-compatible representation).
	Payload any `cbor:"6,keyasint,omitempty"`

	// ProcessingTime is the duration from request receipt to response send.
	ProcessingTime *time.Duration `cbor:"7,keyasint,omitempty"`
}

// MessageType distinguishes bridge message kinds.
type MessageType uint8

const (
	// MessageTypeRequest indicates a request message.
	MessageTypeRequest MessageType = 0
	// MessageTypeResponse indicates a response message.
	MessageTypeResponse MessageType = 1
	// MessageTypeEvent indicates a forwarded SDK event.
	MessageTypeEvent MessageType = 2
	// MessageTypeHandshake indicates a pairing handshake message.
	MessageTypeHandshake MessageType = 3
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	case MessageTypeEvent:
		return "EVENT"
	case MessageTypeHandshake:
		return "HANDSHAKE"
	default:
		return "UNKNOWN"
	}
}

// SDKEventData captures an SDK event as delivered to the synchronizer.
type SDKEventData struct {
	// Name is the SDK event name (sdkStateChanged, readerUpdated, access).
	Name string `cbor:"1,keyasint"`

	// States is the snapshot carried by sdkStateChanged.
	States []string `cbor:"2,keyasint,omitempty"`

	// IsScanning is the scanning flag carried by sdkStateChanged.
	IsScanning bool `cbor:"3,keyasint,omitempty"`

	// UpdateType is set for readerUpdated.
	UpdateType string `cbor:"4,keyasint,omitempty"`

	// AccessEvent and AccessMessage are set for access.
	AccessEvent   string `cbor:"5,keyasint,omitempty"`
	AccessMessage string `cbor:"6,keyasint,omitempty"`

	// ReaderName is the reader name when a reader is attached.
	ReaderName string `cbor:"7,keyasint,omitempty"`
}

// StateChangeEvent captures lifecycle and view changes.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a bridge connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityMessages indicates the status message list was replaced.
	StateEntityMessages StateEntity = 1
	// StateEntityReader indicates a reader was added, updated or removed.
	StateEntityReader StateEntity = 2
	// StateEntityStatus indicates a reader status overlay was set or cleared.
	StateEntityStatus StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityMessages:
		return "MESSAGES"
	case StateEntityReader:
		return "READER"
	case StateEntityStatus:
		return "STATUS"
	default:
		return "UNKNOWN"
	}
}

// ControlMsgEvent captures transport-level control messages.
type ControlMsgEvent struct {
	// Type of control message.
	Type ControlMsgType `cbor:"1,keyasint"`

	// Seq is the ping sequence number.
	Seq uint32 `cbor:"2,keyasint,omitempty"`
}

// ControlMsgType indicates the type of control message.
type ControlMsgType uint8

const (
	// ControlMsgPing indicates a ping message.
	ControlMsgPing ControlMsgType = 0
	// ControlMsgPong indicates a pong message.
	ControlMsgPong ControlMsgType = 1
	// ControlMsgClose indicates a close message.
	ControlMsgClose ControlMsgType = 2
)

// String returns the control message type name.
func (c ControlMsgType) String() string {
	switch c {
	case ControlMsgPing:
		return "PING"
	case ControlMsgPong:
		return "PONG"
	case ControlMsgClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
