package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mobile-access/readers-go/pkg/log"
)

// DefaultPort is the default bridge port.
const DefaultPort = 7420

// ErrServerRunning is returned by Start on a running server.
var ErrServerRunning = errors.New("server already running")

// ServerConfig configures a bridge listener.
type ServerConfig struct {
	// Address to listen on (e.g., ":7420" or "127.0.0.1:0").
	Address string

	// TLSConfig wraps accepted connections in TLS when set.
	TLSConfig *tls.Config

	// MaxMessageSize is the maximum message size (default: 64KB).
	MaxMessageSize uint32

	// Logger for protocol capture (optional).
	Logger log.Logger

	// Handler serves one connection. The connection is closed when it returns.
	Handler func(ctx context.Context, conn *Conn)
}

// Server accepts bridge connections and hands each to the Handler in
// its own goroutine.
type Server struct {
	config   ServerConfig
	listener net.Listener

	conns   map[*Conn]struct{}
	connsMu sync.RWMutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a bridge listener.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	return &Server{
		config: config,
		conns:  make(map[*Conn]struct{}),
	}, nil
}

// Start opens the listener and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrServerRunning
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if s.config.TLSConfig != nil {
		listener = tls.NewListener(listener, s.config.TLSConfig)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.listener = listener
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener and all connections, then waits for handlers
// to return.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}

	s.cancel()
	s.listener.Close()

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the listener's address, or nil if not started.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Port returns the listening TCP port, or 0 if not started.
func (s *Server) Port() int {
	if tcp, ok := s.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			continue
		}

		conn := NewConn(nc, uuid.New().String(), log.RoleBridge, s.config.MaxMessageSize, s.config.Logger)

		s.connsMu.Lock()
		s.conns[conn] = struct{}{}
		s.connsMu.Unlock()

		logConnState(s.config.Logger, conn, "", "CONNECTED", "")

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn *Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()

		s.connsMu.Lock()
		delete(s.conns, conn)
		s.connsMu.Unlock()

		logConnState(s.config.Logger, conn, "CONNECTED", "DISCONNECTED", "")
	}()

	s.config.Handler(s.ctx, conn)
}

// IsClosedError reports whether err means the peer or the local side
// closed the connection.
func IsClosedError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, ErrConnectionClosed) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, ErrFrameTruncated)
}
