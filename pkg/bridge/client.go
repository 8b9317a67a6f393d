package bridge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mobile-access/readers-go/pkg/connection"
	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/transport"
	"github.com/mobile-access/readers-go/pkg/wire"
)

// Client errors.
var (
	ErrNotConnected = errors.New("bridge not connected")
	ErrDisconnected = errors.New("bridge disconnected during request")
	ErrRemote       = errors.New("bridge host error")
)

// ClientConfig configures the screen side of a bridge.
type ClientConfig struct {
	// Address of the host (host:port). Ignored when Resolve is set.
	Address string

	// Resolve returns the host address before every connection attempt,
	// e.g. by browsing mDNS.
	Resolve func(ctx context.Context) (string, error)

	// Name is announced to the host during the handshake.
	Name string

	// Secret is the pairing secret.
	Secret []byte

	// TLSConfig wraps the connection in TLS when set.
	TLSConfig *tls.Config

	// HandshakeTimeout bounds each handshake step (default 5s).
	HandshakeTimeout time.Duration

	// RequestTimeout bounds a getStates round trip when the context has
	// no deadline (default 5s).
	RequestTimeout time.Duration

	// KeepAlive configures liveness checks. Zero fields take defaults.
	KeepAlive transport.KeepAliveConfig

	// Backoff configures reconnection delays.
	Backoff connection.BackoffConfig

	// Logger for operational logging (optional).
	Logger *slog.Logger

	// EventLogger captures frames and decoded messages (optional).
	EventLogger log.Logger

	// OnStateChange reports link state transitions (optional).
	OnStateChange func(oldState, newState connection.State)
}

// Client is a remote sdk.SDK reached over the bridge.
type Client struct {
	config  ClientConfig
	hub     *sdk.Hub
	manager *connection.Manager
	capture capturer

	nextID atomic.Uint32

	mu        sync.Mutex
	link      *link
	hostName  string
	scanning  bool
	closed    bool
	sessionID string

	// emitMu orders forwarded events against the reconnect resync.
	emitMu     sync.Mutex
	forwarded  map[string]struct{}
	stateEpoch uint64
}

// link is one live connection and its in-flight requests.
type link struct {
	conn    *transport.Conn
	ka      *transport.KeepAlive
	cancel  context.CancelFunc
	mu      sync.Mutex
	pending map[uint32]chan *wire.Response
	lastSeq uint64
	done    chan struct{}
}

var _ sdk.SDK = (*Client)(nil)

// NewClient creates an unconnected bridge client.
func NewClient(config ClientConfig) *Client {
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	c := &Client{
		config:  config,
		hub:     sdk.NewHub(),
		capture:   capturer{logger: config.EventLogger, role: log.RoleScreen},
		forwarded: make(map[string]struct{}),
	}
	c.manager = connection.NewManager(c.dial, connection.ManagerConfig{
		Backoff:       config.Backoff,
		Logger:        config.Logger,
		OnStateChange: config.OnStateChange,
		OnConnected:   c.onConnected,
		OnGiveUp: func(err error) {
			if config.Logger != nil {
				config.Logger.Error("bridge reconnect abandoned", "error", err)
			}
		},
	})
	return c
}

// Connect dials the host and completes the handshake. Reconnection is
// automatic after the first success.
func (c *Client) Connect(ctx context.Context) error {
	return c.manager.Connect(ctx)
}

// State returns the link state.
func (c *Client) State() connection.State {
	return c.manager.State()
}

// SessionID returns the host-assigned ID of the current session.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// HostName returns the name the host announced.
func (c *Client) HostName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostName
}

// OnSdkStateChanged subscribes to forwarded sdkStateChanged events.
func (c *Client) OnSdkStateChanged(fn func(sdk.SdkStateChanged)) sdk.Subscription {
	return c.hub.OnSdkStateChanged(fn)
}

// OnReaderUpdated subscribes to forwarded readerUpdated events.
func (c *Client) OnReaderUpdated(fn func(sdk.ReaderUpdated)) sdk.Subscription {
	return c.hub.OnReaderUpdated(fn)
}

// OnAccess subscribes to forwarded access events.
func (c *Client) OnAccess(fn func(sdk.AccessEvent)) sdk.Subscription {
	return c.hub.OnAccess(fn)
}

// GetStates asks the host for the active state codes.
func (c *Client) GetStates(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	l := c.link
	c.mu.Unlock()
	if l == nil {
		return nil, ErrNotConnected
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	id := c.nextID.Add(1)
	if id == 0 {
		id = c.nextID.Add(1)
	}
	ch := make(chan *wire.Response, 1)

	l.mu.Lock()
	l.pending[id] = ch
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.pending, id)
		l.mu.Unlock()
	}()

	req := &wire.Request{ID: id, Method: wire.MethodGetStates}
	if err := l.conn.SendMessage(req); err != nil {
		return nil, fmt.Errorf("send getStates: %w", err)
	}
	c.capture.message(l.conn, log.DirectionOut, req, nil)

	select {
	case resp := <-ch:
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("%w: %s: %s", ErrRemote, resp.Status, resp.Error)
		}
		return resp.States, nil
	case <-l.done:
		return nil, ErrDisconnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close tears down the link, stops reconnecting and drops all listeners.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	l := c.link
	c.mu.Unlock()

	c.manager.Close()
	if l != nil {
		_ = l.conn.SendClose(wire.CloseNormal)
		l.shutdown()
	}
	c.hub.Close()
	return nil
}

// dial is the connection.ConnectFunc.
func (c *Client) dial(ctx context.Context) error {
	addr := c.config.Address
	if c.config.Resolve != nil {
		resolved, err := c.config.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("resolve bridge: %w", err)
		}
		addr = resolved
	}

	conn, err := transport.Dial(ctx, addr, transport.DialConfig{
		TLSConfig: c.config.TLSConfig,
		Logger:    c.config.EventLogger,
	})
	if err != nil {
		return err
	}

	sessionID, hostName, err := clientHandshake(conn, c.config.Name, c.config.Secret, c.config.HandshakeTimeout)
	if err != nil {
		c.capture.error(conn, "handshake", err)
		conn.Close()
		if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrVersionMismatch) {
			return connection.Permanent(err)
		}
		return err
	}

	linkCtx, cancel := context.WithCancel(context.Background())
	l := &link{
		conn:    conn,
		cancel:  cancel,
		pending: make(map[uint32]chan *wire.Response),
		done:    make(chan struct{}),
	}
	l.ka = transport.NewKeepAlive(c.config.KeepAlive, conn.SendPing, func() {
		c.debugLog("bridge host unresponsive", "session", sessionID)
		conn.Close()
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		conn.Close()
		return connection.Permanent(connection.ErrClosed)
	}
	c.link = l
	c.sessionID = sessionID
	c.hostName = hostName
	c.mu.Unlock()

	c.debugLog("bridge connected", "addr", addr, "host", hostName, "session", sessionID)

	// The new host may have lost readers while the link was down. Drop them
	// before its first event is forwarded.
	c.dropForwardedReaders()

	l.ka.Start(linkCtx)
	go c.readLoop(l)
	return nil
}

// dropForwardedReaders emits readerUnavailable for every reader forwarded
// on a previous link.
func (c *Client) dropForwardedReaders() {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if len(c.forwarded) == 0 {
		return
	}
	ids := slices.Sorted(maps.Keys(c.forwarded))
	clear(c.forwarded)

	c.debugLog("dropping readers from previous link", "count", len(ids))
	for _, id := range ids {
		c.hub.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.ReaderUnavailable, Reader: sdk.Reader{ID: id}})
	}
}

// onConnected reseeds subscribers after a reconnect.
func (c *Client) onConnected(reconnect bool) {
	if !reconnect {
		return
	}

	c.emitMu.Lock()
	epoch := c.stateEpoch
	c.emitMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.RequestTimeout)
	defer cancel()

	states, err := c.GetStates(ctx)
	if err != nil {
		if c.config.Logger != nil {
			c.config.Logger.Warn("resync after reconnect failed", "error", err)
		}
		return
	}
	c.resync(epoch, states)
}

// resync emits the snapshot unless a state event was forwarded after epoch
// was taken. That event is at least as recent as the snapshot.
func (c *Client) resync(epoch uint64, states []string) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if c.stateEpoch != epoch {
		c.debugLog("resync superseded by host state event")
		return
	}

	c.mu.Lock()
	scanning := c.scanning
	c.mu.Unlock()

	c.hub.EmitSdkStateChanged(sdk.SdkStateChanged{IsScanning: scanning, States: states})
}

func (c *Client) readLoop(l *link) {
	var cause error
	defer func() {
		l.shutdown()

		c.mu.Lock()
		if c.link == l {
			c.link = nil
		}
		closed := c.closed
		c.mu.Unlock()

		if !closed {
			c.debugLog("bridge link lost", "error", cause)
			c.manager.NotifyConnectionLost(cause)
		}
	}()

	for {
		msg, err := l.conn.ReceiveMessage(0)
		if err != nil {
			if errors.Is(err, transport.ErrDecode) {
				c.capture.error(l.conn, "decode", err)
				continue
			}
			cause = err
			return
		}

		switch m := msg.(type) {
		case *wire.Event:
			c.capture.message(l.conn, log.DirectionIn, m, nil)
			c.handleEvent(l, m)
		case *wire.Response:
			c.capture.message(l.conn, log.DirectionIn, m, nil)
			l.mu.Lock()
			ch, ok := l.pending[m.ID]
			l.mu.Unlock()
			if ok {
				select {
				case ch <- m:
				default:
				}
			}
		case *wire.Control:
			switch m.Type {
			case wire.ControlPing:
				_ = l.conn.SendPong(m.Seq)
			case wire.ControlPong:
				l.ka.PongReceived(m.Seq)
			case wire.ControlClose:
				cause = fmt.Errorf("host closed link: %s", m.Reason)
				return
			}
		}
	}
}

func (c *Client) handleEvent(l *link, ev *wire.Event) {
	if ev.Seq != 0 {
		if l.lastSeq != 0 && ev.Seq != l.lastSeq+1 {
			if c.config.Logger != nil {
				c.config.Logger.Warn("bridge event gap", "expected", l.lastSeq+1, "got", ev.Seq)
			}
		}
		l.lastSeq = ev.Seq
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	if ev.SdkState != nil {
		c.stateEpoch++
		c.mu.Lock()
		c.scanning = ev.SdkState.IsScanning
		c.mu.Unlock()
	}
	if ru := ev.ReaderUpdate; ru != nil {
		switch ru.UpdateType {
		case sdk.AttributesChanged:
			c.forwarded[ru.Reader.ID] = struct{}{}
		case sdk.ReaderUnavailable:
			delete(c.forwarded, ru.Reader.ID)
		}
	}
	emit(c.hub, ev)
}

func (l *link) shutdown() {
	l.mu.Lock()
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	l.mu.Unlock()

	l.ka.Stop()
	l.cancel()
	l.conn.Close()
}

func (c *Client) debugLog(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}
