package readers

import (
	"log/slog"
	"time"

	"github.com/mobile-access/readers-go/pkg/dwell"
	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/sdk"
)

// StatusConnecting is shown while an access exchange is starting.
const StatusConnecting = "Connecting..."

// Config configures a Synchronizer.
type Config struct {
	// DwellTime is how long an access status stays visible.
	DwellTime time.Duration

	// SessionID tags captured events. A random UUID is used if empty.
	SessionID string

	// Logger is used for operational logging. If nil, logging is disabled.
	Logger *slog.Logger

	// EventLogger receives captured SDK events and state changes.
	// If nil, capture is disabled.
	EventLogger log.Logger

	// Observer is notified about status overlay changes. Optional.
	Observer Observer
}

// DefaultConfig returns the default synchronizer configuration.
func DefaultConfig() Config {
	return Config{
		DwellTime: dwell.DefaultDuration,
	}
}

// Observer receives status overlay transitions. Calls are made outside the
// synchronizer lock, after the change is visible in the view.
type Observer interface {
	// StatusSet is called when an access event sets a reader's status.
	StatusSet(reader sdk.Reader, event string)

	// StatusCleared is called when the dwell time elapses. previous is the
	// status that was cleared.
	StatusCleared(reader sdk.Reader, previous string)
}
