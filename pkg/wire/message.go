package wire

import (
	"fmt"

	"github.com/mobile-access/readers-go/pkg/sdk"
)

// ProtocolVersion is the bridge protocol version spoken by this package.
const ProtocolVersion uint8 = 1

// NonceSize is the length of handshake nonces.
const NonceSize = 16

// ProofSize is the length of handshake proofs (HMAC-SHA256).
const ProofSize = 32

// MethodGetStates is the only SDK method exposed over the bridge.
const MethodGetStates = "getStates"

// Kind identifies the message type. It is encoded under key 1.
type Kind uint8

const (
	KindUnknown   Kind = 0
	KindHello     Kind = 1
	KindChallenge Kind = 2
	KindProof     Kind = 3
	KindRequest   Kind = 4
	KindResponse  Kind = 5
	KindEvent     Kind = 6
	KindControl   Kind = 7
	KindWelcome   Kind = 8
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindHello:
		return "hello"
	case KindChallenge:
		return "challenge"
	case KindProof:
		return "proof"
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	case KindControl:
		return "control"
	case KindWelcome:
		return "welcome"
	default:
		return "unknown"
	}
}

// Message is implemented by every bridge message.
type Message interface {
	MessageKind() Kind
}

// Hello opens the handshake.
//
// CBOR encoding:
//
//	{
//	  1: kind,      // 1
//	  2: version,   // uint8
//	  3: name,      // client name
//	  4: nonce      // 16 random bytes
//	}
type Hello struct {
	Kind    Kind   `cbor:"1,keyasint"`
	Version uint8  `cbor:"2,keyasint"`
	Name    string `cbor:"3,keyasint,omitempty"`
	Nonce   []byte `cbor:"4,keyasint"`
}

// Challenge answers a Hello. Proof is empty when the server has no secret.
type Challenge struct {
	Kind         Kind   `cbor:"1,keyasint"`
	Version      uint8  `cbor:"2,keyasint"`
	Name         string `cbor:"3,keyasint,omitempty"`
	Nonce        []byte `cbor:"4,keyasint"`
	Proof        []byte `cbor:"5,keyasint,omitempty"`
	AuthRequired bool   `cbor:"6,keyasint,omitempty"`
}

// Proof carries the client's handshake proof.
type Proof struct {
	Kind  Kind   `cbor:"1,keyasint"`
	Proof []byte `cbor:"5,keyasint,omitempty"`
}

// Welcome completes the handshake.
type Welcome struct {
	Kind      Kind   `cbor:"1,keyasint"`
	SessionID string `cbor:"2,keyasint"`
}

// Request is an SDK method call from the screen to the host.
//
// CBOR encoding:
//
//	{
//	  1: kind,     // 4
//	  2: id,       // uint32, non-zero
//	  3: method    // e.g. "getStates"
//	}
type Request struct {
	Kind   Kind   `cbor:"1,keyasint"`
	ID     uint32 `cbor:"2,keyasint"`
	Method string `cbor:"3,keyasint"`
}

// Validate checks the request is well-formed.
func (r *Request) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("request id 0 is reserved")
	}
	if r.Method == "" {
		return fmt.Errorf("missing method")
	}
	return nil
}

// Response answers a Request.
type Response struct {
	Kind   Kind     `cbor:"1,keyasint"`
	ID     uint32   `cbor:"2,keyasint"`
	Status Status   `cbor:"3,keyasint"`
	States []string `cbor:"4,keyasint,omitempty"`
	Error  string   `cbor:"5,keyasint,omitempty"`
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// Event forwards one SDK event. Exactly one payload is set, matching Name.
type Event struct {
	Kind         Kind                 `cbor:"1,keyasint"`
	Name         string               `cbor:"2,keyasint"`
	SdkState     *sdk.SdkStateChanged `cbor:"3,keyasint,omitempty"`
	ReaderUpdate *sdk.ReaderUpdated   `cbor:"4,keyasint,omitempty"`
	Access       *sdk.AccessEvent     `cbor:"5,keyasint,omitempty"`

	// Seq increases by one per event on a connection.
	Seq uint64 `cbor:"6,keyasint,omitempty"`
}

// Validate checks that the payload matches the event name.
func (e *Event) Validate() error {
	switch e.Name {
	case sdk.EventSdkStateChanged:
		if e.SdkState == nil {
			return fmt.Errorf("%s event without payload", e.Name)
		}
	case sdk.EventReaderUpdated:
		if e.ReaderUpdate == nil {
			return fmt.Errorf("%s event without payload", e.Name)
		}
	case sdk.EventAccess:
		if e.Access == nil {
			return fmt.Errorf("%s event without payload", e.Name)
		}
	default:
		return fmt.Errorf("unknown event %q", e.Name)
	}
	return nil
}

// ControlType is the type of a control message.
type ControlType uint8

const (
	// ControlPing is sent to check connection liveness.
	ControlPing ControlType = 1

	// ControlPong is the response to a ping.
	ControlPong ControlType = 2

	// ControlClose initiates graceful connection close.
	ControlClose ControlType = 3
)

// String returns the control message type name.
func (t ControlType) String() string {
	switch t {
	case ControlPing:
		return "ping"
	case ControlPong:
		return "pong"
	case ControlClose:
		return "close"
	default:
		return "unknown"
	}
}

// CloseReason explains a ControlClose.
type CloseReason uint8

const (
	CloseNormal     CloseReason = 0
	CloseAuthFailed CloseReason = 1
	CloseVersion    CloseReason = 2
	CloseShutdown   CloseReason = 3
	CloseProtocol   CloseReason = 4
)

// String returns the close reason name.
func (r CloseReason) String() string {
	switch r {
	case CloseNormal:
		return "normal"
	case CloseAuthFailed:
		return "auth_failed"
	case CloseVersion:
		return "version_mismatch"
	case CloseShutdown:
		return "shutdown"
	case CloseProtocol:
		return "protocol_error"
	default:
		return "unknown"
	}
}

// Control is a transport-level control message.
type Control struct {
	Kind   Kind        `cbor:"1,keyasint"`
	Type   ControlType `cbor:"2,keyasint"`
	Seq    uint32      `cbor:"3,keyasint,omitempty"`
	Reason CloseReason `cbor:"4,keyasint,omitempty"`
}

func (*Hello) MessageKind() Kind     { return KindHello }
func (*Challenge) MessageKind() Kind { return KindChallenge }
func (*Proof) MessageKind() Kind     { return KindProof }
func (*Welcome) MessageKind() Kind   { return KindWelcome }
func (*Request) MessageKind() Kind   { return KindRequest }
func (*Response) MessageKind() Kind  { return KindResponse }
func (*Event) MessageKind() Kind     { return KindEvent }
func (*Control) MessageKind() Kind   { return KindControl }

// NewSdkStateEvent wraps an sdkStateChanged payload.
func NewSdkStateEvent(ev sdk.SdkStateChanged) *Event {
	return &Event{Name: sdk.EventSdkStateChanged, SdkState: &ev}
}

// NewReaderUpdatedEvent wraps a readerUpdated payload.
func NewReaderUpdatedEvent(ev sdk.ReaderUpdated) *Event {
	return &Event{Name: sdk.EventReaderUpdated, ReaderUpdate: &ev}
}

// NewAccessEvent wraps an access payload.
func NewAccessEvent(ev sdk.AccessEvent) *Event {
	return &Event{Name: sdk.EventAccess, Access: &ev}
}
