package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/mobile-access/readers-go/pkg/log"
)

// DefaultDialTimeout bounds connection establishment when the context has
// no deadline.
const DefaultDialTimeout = 10 * time.Second

// DialConfig configures an outgoing bridge connection.
type DialConfig struct {
	// TLSConfig wraps the connection in TLS when set.
	TLSConfig *tls.Config

	// Timeout for connection establishment (default: 10s).
	Timeout time.Duration

	// MaxMessageSize is the maximum message size (default: 64KB).
	MaxMessageSize uint32

	// SessionID for capture events. A UUID is generated when empty.
	SessionID string

	// Logger for protocol capture (optional).
	Logger log.Logger
}

// Dial connects to a bridge host.
func Dial(ctx context.Context, address string, config DialConfig) (*Conn, error) {
	if config.Timeout == 0 {
		config.Timeout = DefaultDialTimeout
	}
	if config.SessionID == "" {
		config.SessionID = uuid.New().String()
	}

	dialer := &net.Dialer{Timeout: config.Timeout}

	var nc net.Conn
	var err error
	if config.TLSConfig != nil {
		td := &tls.Dialer{NetDialer: dialer, Config: config.TLSConfig}
		nc, err = td.DialContext(ctx, "tcp", address)
	} else {
		nc, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	conn := NewConn(nc, config.SessionID, log.RoleScreen, config.MaxMessageSize, config.Logger)
	logConnState(config.Logger, conn, "", "CONNECTED", "")
	return conn, nil
}
