package wire

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	ErrUnknownKind = errors.New("unknown message kind")
	ErrInvalid     = errors.New("invalid message")
)

// mapStringAny makes nested maps inside passthrough reader attributes decode
// with string keys, so they can be re-encoded as JSON.
var mapStringAny = reflect.TypeOf(map[string]any(nil))

// encMode is the CBOR encoder mode for bridge messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for bridge messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient for forward compatibility
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
		DefaultMapType:    mapStringAny,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// Encode sets the kind field of msg and encodes it.
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *Hello:
		m.Kind = KindHello
	case *Challenge:
		m.Kind = KindChallenge
	case *Proof:
		m.Kind = KindProof
	case *Welcome:
		m.Kind = KindWelcome
	case *Request:
		m.Kind = KindRequest
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case *Response:
		m.Kind = KindResponse
	case *Event:
		m.Kind = KindEvent
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case *Control:
		m.Kind = KindControl
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, msg)
	}
	return Marshal(msg)
}

// PeekKind reads the kind of an encoded message without decoding the body.
func PeekKind(data []byte) (Kind, error) {
	var peek struct {
		Kind Kind `cbor:"1,keyasint"`
	}
	if err := Unmarshal(data, &peek); err != nil {
		return KindUnknown, fmt.Errorf("failed to peek message: %w", err)
	}
	return peek.Kind, nil
}

// Decode decodes any bridge message.
func Decode(data []byte) (Message, error) {
	kind, err := PeekKind(data)
	if err != nil {
		return nil, err
	}

	var msg Message
	switch kind {
	case KindHello:
		msg = &Hello{}
	case KindChallenge:
		msg = &Challenge{}
	case KindProof:
		msg = &Proof{}
	case KindWelcome:
		msg = &Welcome{}
	case KindRequest:
		msg = &Request{}
	case KindResponse:
		msg = &Response{}
	case KindEvent:
		msg = &Event{}
	case KindControl:
		msg = &Control{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	if err := Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}

	switch m := msg.(type) {
	case *Request:
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case *Event:
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return msg, nil
}
