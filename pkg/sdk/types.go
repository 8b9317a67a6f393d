package sdk

import (
	"context"
	"maps"
)

// Event names as used by the SDK.
const (
	EventSdkStateChanged = "sdkStateChanged"
	EventReaderUpdated   = "readerUpdated"
	EventAccess          = "access"
)

// UpdateType classifies a readerUpdated event.
type UpdateType string

const (
	// ReaderUnavailable means the reader is out of range or gone.
	ReaderUnavailable UpdateType = "readerUnavailable"

	// AttributesChanged covers both newly seen readers and attribute updates.
	AttributesChanged UpdateType = "attributesChanged"
)

// String returns the update type as sent by the SDK.
func (u UpdateType) String() string {
	return string(u)
}

// Access event kinds emitted by the SDK. Kinds other than AccessStarted are
// displayed using the accompanying message.
const (
	AccessStarted   = "started"
	AccessSucceeded = "succeeded"
	AccessFailed    = "failed"
)

// Reader is a physical access-control reader as reported by the SDK.
type Reader struct {
	ID   string `json:"id" cbor:"1,keyasint"`
	Name string `json:"name" cbor:"2,keyasint"`

	// Distance in meters; nil when unknown.
	Distance *float64 `json:"distance" cbor:"3,keyasint"`

	// Status is the transient overlay set by access events. Empty means none.
	Status string `json:"status,omitempty" cbor:"4,keyasint,omitempty"`

	// Attributes holds any additional SDK fields, passed through untouched.
	Attributes map[string]any `json:"attributes,omitempty" cbor:"5,keyasint,omitempty"`
}

// Clone returns a copy that shares no mutable state with r.
func (r Reader) Clone() Reader {
	out := r
	if r.Distance != nil {
		d := *r.Distance
		out.Distance = &d
	}
	if r.Attributes != nil {
		out.Attributes = maps.Clone(r.Attributes)
	}
	return out
}

// Float returns a pointer to v, for building Distance values.
func Float(v float64) *float64 {
	return &v
}

// SdkStateChanged is the payload of the sdkStateChanged event.
type SdkStateChanged struct {
	IsScanning bool     `json:"isScanning" cbor:"1,keyasint"`
	States     []string `json:"states" cbor:"2,keyasint"`
}

// ReaderUpdated is the payload of the readerUpdated event.
type ReaderUpdated struct {
	UpdateType UpdateType `json:"updateType" cbor:"1,keyasint"`
	Reader     Reader     `json:"reader" cbor:"2,keyasint"`
}

// AccessEvent is the payload of the access event.
type AccessEvent struct {
	Event   string `json:"event" cbor:"1,keyasint"`
	Message string `json:"message" cbor:"2,keyasint"`
	Reader  Reader `json:"reader" cbor:"3,keyasint"`
}

// Subscription is returned by event registration; Remove releases it.
type Subscription interface {
	Remove()
}

// Client is the request side of the SDK.
type Client interface {
	// GetStates returns the currently active state codes.
	GetStates(ctx context.Context) ([]string, error)
}

// Events is the event side of the SDK.
type Events interface {
	OnSdkStateChanged(fn func(SdkStateChanged)) Subscription
	OnReaderUpdated(fn func(ReaderUpdated)) Subscription
	OnAccess(fn func(AccessEvent)) Subscription
}

// SDK is the full surface consumed by the readers screen.
type SDK interface {
	Client
	Events
}
