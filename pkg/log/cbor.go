package log

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// A capture file is a bare sequence of CBOR items, one Event each, with no
// header or framing. Appending to an existing file is always valid.

// eventCodec holds the modes shared by the file logger and the reader.
type eventCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var codec = mustEventCodec()

func mustEventCodec() eventCodec {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		ShortestFloat: cbor.ShortestFloat16,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: capture encoder: %v", err))
	}

	// Payloads are decoded wire messages; keep their maps string keyed so
	// readers-log can print them as JSON.
	dec, err := cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		MaxNestedLevels: 32,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: capture decoder: %v", err))
	}
	return eventCodec{enc: enc, dec: dec}
}

// EncodeEvent returns the capture encoding of one event.
func EncodeEvent(event Event) ([]byte, error) {
	return codec.enc.Marshal(event)
}

// DecodeEvent parses one captured event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := codec.dec.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return event, nil
}

func newEventEncoder(w io.Writer) *cbor.Encoder { return codec.enc.NewEncoder(w) }

func newEventDecoder(r io.Reader) *cbor.Decoder { return codec.dec.NewDecoder(r) }
