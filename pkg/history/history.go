package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind tells whether an entry records a status being set or cleared.
type Kind string

const (
	KindSet     Kind = "set"
	KindCleared Kind = "cleared"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindSet || k == KindCleared
}

// Store errors.
var (
	ErrNilDatabase    = errors.New("nil database connection supplied")
	ErrEmptyTableName = errors.New("empty table name supplied")
	ErrInvalidKind    = errors.New("invalid entry kind")
	ErrAppendFailed   = errors.New("appending history entry failed")
	ErrQueryFailed    = errors.New("querying history failed")
	ErrScanFailed     = errors.New("scanning history row failed")
	ErrBuildQuery     = errors.New("building history query failed")
)

// Entry is one journal record.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	ReaderID   string    `json:"readerId"`
	ReaderName string    `json:"readerName"`
	Kind       Kind      `json:"kind"`

	// Status is the overlay that was set, or the one that was cleared.
	Status string `json:"status"`

	// Event is the access event kind that set the status. Empty for clears.
	Event string `json:"event,omitempty"`

	At time.Time `json:"at"`
}

// DefaultLimit caps List results when Query.Limit is zero.
const DefaultLimit = 100

// Query filters List results. Zero fields match everything.
type Query struct {
	ReaderID string
	Kind     Kind
	Since    time.Time
	Limit    int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

func (q Query) matches(e Entry) bool {
	if q.ReaderID != "" && e.ReaderID != q.ReaderID {
		return false
	}
	if q.Kind != "" && e.Kind != q.Kind {
		return false
	}
	if !q.Since.IsZero() && e.At.Before(q.Since) {
		return false
	}
	return true
}

// Store persists entries. List returns the newest entries first.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, query Query) ([]Entry, error)
}
