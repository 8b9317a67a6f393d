package bridge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/subscription"
	"github.com/mobile-access/readers-go/pkg/transport"
	"github.com/mobile-access/readers-go/pkg/wire"
)

// DefaultRequestTimeout bounds a getStates call on the host.
const DefaultRequestTimeout = 5 * time.Second

// ServerConfig configures a bridge host.
type ServerConfig struct {
	// Address to listen on (default ":7420").
	Address string

	// Name is announced to screens during the handshake.
	Name string

	// Secret is the pairing secret. Empty disables authentication.
	Secret []byte

	// TLSConfig wraps connections in TLS when set.
	TLSConfig *tls.Config

	// HandshakeTimeout bounds each handshake step (default 5s).
	HandshakeTimeout time.Duration

	// RequestTimeout bounds each SDK call (default 5s).
	RequestTimeout time.Duration

	// KeepAlive configures liveness checks. Zero fields take defaults.
	KeepAlive transport.KeepAliveConfig

	// Logger for operational logging (optional).
	Logger *slog.Logger

	// EventLogger captures frames and decoded messages (optional).
	EventLogger log.Logger
}

// Server exposes an sdk.SDK to remote screens.
type Server struct {
	config    ServerConfig
	source    sdk.SDK
	transport *transport.Server
	capture   capturer

	subs subscription.Set

	mu       sync.RWMutex
	sessions map[*session]struct{}
}

// session is one authenticated screen connection.
type session struct {
	conn *transport.Conn
	name string

	// sendMu keeps event sequence numbers in wire order.
	sendMu sync.Mutex
	seq    uint64
}

// NewServer creates a bridge host serving source.
func NewServer(source sdk.SDK, config ServerConfig) (*Server, error) {
	if source == nil {
		return nil, errors.New("bridge: nil SDK")
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		config:   config,
		source:   source,
		capture:  capturer{logger: config.EventLogger, role: log.RoleBridge},
		sessions: make(map[*session]struct{}),
	}

	ts, err := transport.NewServer(transport.ServerConfig{
		Address:   config.Address,
		TLSConfig: config.TLSConfig,
		Logger:    config.EventLogger,
		Handler:   s.handle,
	})
	if err != nil {
		return nil, err
	}
	s.transport = ts
	return s, nil
}

// Start subscribes to the SDK and begins accepting screens.
func (s *Server) Start(ctx context.Context) error {
	s.subs.Add(s.source.OnSdkStateChanged(func(ev sdk.SdkStateChanged) {
		s.broadcast(wire.NewSdkStateEvent(ev))
	}))
	s.subs.Add(s.source.OnReaderUpdated(func(ev sdk.ReaderUpdated) {
		s.broadcast(wire.NewReaderUpdatedEvent(ev))
	}))
	s.subs.Add(s.source.OnAccess(func(ev sdk.AccessEvent) {
		s.broadcast(wire.NewAccessEvent(ev))
	}))

	if err := s.transport.Start(ctx); err != nil {
		s.subs.RemoveAll()
		return err
	}
	s.debugLog("bridge listening", "addr", s.transport.Addr())
	return nil
}

// Stop releases SDK subscriptions and closes every session.
func (s *Server) Stop() error {
	s.subs.RemoveAll()

	s.mu.RLock()
	for sess := range s.sessions {
		_ = sess.conn.SendClose(wire.CloseShutdown)
	}
	s.mu.RUnlock()

	return s.transport.Stop()
}

// Addr returns the listening address.
func (s *Server) Addr() net.Addr {
	return s.transport.Addr()
}

// Port returns the listening TCP port.
func (s *Server) Port() int {
	return s.transport.Port()
}

// SessionCount returns the number of authenticated screens.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) handle(ctx context.Context, conn *transport.Conn) {
	name, err := serverHandshake(conn, s.config.Name, s.config.Secret, s.config.HandshakeTimeout)
	if err != nil {
		s.capture.error(conn, "handshake", err)
		if s.config.Logger != nil {
			s.config.Logger.Warn("bridge handshake failed", "remote", conn.RemoteAddr(), "error", err)
		}
		return
	}

	// Events broadcast while the Welcome is in flight queue behind sendMu.
	sess := &session{conn: conn, name: name}
	sess.sendMu.Lock()
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
	}()

	err = conn.SendMessage(&wire.Welcome{SessionID: conn.SessionID()})
	sess.sendMu.Unlock()
	if err != nil {
		s.capture.error(conn, "handshake", err)
		return
	}

	s.debugLog("screen connected", "session", conn.SessionID(), "name", name, "remote", conn.RemoteAddr())

	ka := transport.NewKeepAlive(s.config.KeepAlive, conn.SendPing, func() {
		s.debugLog("screen unresponsive", "session", conn.SessionID())
		conn.Close()
	})
	ka.Start(ctx)
	defer ka.Stop()

	for {
		msg, err := conn.ReceiveMessage(0)
		if err != nil {
			if errors.Is(err, transport.ErrDecode) {
				s.capture.error(conn, "decode", err)
				continue
			}
			if !transport.IsClosedError(err) {
				s.capture.error(conn, "receive", err)
			}
			s.debugLog("screen disconnected", "session", conn.SessionID(), "error", err)
			return
		}

		switch m := msg.(type) {
		case *wire.Request:
			s.capture.message(conn, log.DirectionIn, m, nil)
			s.serveRequest(ctx, sess, m)
		case *wire.Control:
			switch m.Type {
			case wire.ControlPing:
				_ = conn.SendPong(m.Seq)
			case wire.ControlPong:
				ka.PongReceived(m.Seq)
			case wire.ControlClose:
				return
			}
		default:
			s.capture.error(conn, "dispatch", fmt.Errorf("unexpected %s message", m.MessageKind()))
		}
	}
}

func (s *Server) serveRequest(ctx context.Context, sess *session, req *wire.Request) {
	start := time.Now()
	resp := &wire.Response{ID: req.ID}

	switch req.Method {
	case wire.MethodGetStates:
		callCtx, cancel := context.WithTimeout(ctx, s.config.RequestTimeout)
		states, err := s.source.GetStates(callCtx)
		cancel()

		switch {
		case err == nil:
			resp.Status = wire.StatusSuccess
			resp.States = states
			if resp.States == nil {
				resp.States = []string{}
			}
		case errors.Is(err, context.DeadlineExceeded):
			resp.Status = wire.StatusTimeout
			resp.Error = err.Error()
		default:
			resp.Status = wire.StatusSDKError
			resp.Error = err.Error()
		}
	default:
		resp.Status = wire.StatusUnknownMethod
		resp.Error = fmt.Sprintf("unknown method %q", req.Method)
	}

	elapsed := time.Since(start)
	if err := sess.send(resp); err != nil {
		s.capture.error(sess.conn, "respond", err)
		return
	}
	s.capture.message(sess.conn, log.DirectionOut, resp, &elapsed)
}

func (s *Server) broadcast(ev *wire.Event) {
	s.mu.RLock()
	targets := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.RUnlock()

	for _, sess := range targets {
		// Each session gets its own copy so Seq stays per-connection.
		copied := *ev
		if err := sess.sendEvent(&copied); err != nil {
			s.capture.error(sess.conn, "forward", err)
			continue
		}
		s.capture.message(sess.conn, log.DirectionOut, &copied, nil)
	}
}

func (sess *session) send(msg wire.Message) error {
	sess.sendMu.Lock()
	defer sess.sendMu.Unlock()
	return sess.conn.SendMessage(msg)
}

func (sess *session) sendEvent(ev *wire.Event) error {
	sess.sendMu.Lock()
	defer sess.sendMu.Unlock()
	sess.seq++
	ev.Seq = sess.seq
	return sess.conn.SendMessage(ev)
}

func (s *Server) debugLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
