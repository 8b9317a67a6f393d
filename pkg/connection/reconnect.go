package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Connection errors.
var (
	ErrClosed           = errors.New("connection manager closed")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
)

// PermanentError marks a connect failure that retrying cannot fix, such
// as a rejected pairing secret or a protocol version mismatch.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the manager stops reconnecting.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// State represents the link state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates the first connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc establishes the link. It returns nil once the link is
// usable; wrap the error with Permanent to stop retries.
type ConnectFunc func(ctx context.Context) error

// DefaultAttemptTimeout bounds a single reconnection attempt.
const DefaultAttemptTimeout = 30 * time.Second

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Backoff controls the delay between reconnection attempts.
	Backoff BackoffConfig

	// AttemptTimeout bounds each reconnection attempt (default: 30s).
	AttemptTimeout time.Duration

	// MaxAttempts stops reconnecting after this many failures (0 = unlimited).
	MaxAttempts int

	// Logger for reconnect diagnostics (optional).
	Logger *slog.Logger

	// OnStateChange is called after every state transition, outside the lock.
	OnStateChange func(oldState, newState State)

	// OnConnected is called after every successful (re)connection.
	OnConnected func(reconnect bool)

	// OnReconnecting is called before each reconnection delay.
	OnReconnecting func(attempt int, delay time.Duration)

	// OnGiveUp is called when reconnection stops for good.
	OnGiveUp func(err error)
}

// Manager supervises one link and reconnects it when it drops.
type Manager struct {
	mu      sync.Mutex
	state   State
	config  ManagerConfig
	backoff *Backoff
	connect ConnectFunc
	lastErr error

	// lostDuring is set when the link dropped before the connect call
	// that created it returned.
	lostDuring bool

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	reconnectCh chan struct{}
}

// NewManager creates a manager. The reconnect loop starts immediately and
// idles until the link is lost.
func NewManager(connect ConnectFunc, config ManagerConfig) *Manager {
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = DefaultAttemptTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		state:       StateDisconnected,
		config:      config,
		backoff:     NewBackoffWithConfig(config.Backoff),
		connect:     connect,
		ctx:         ctx,
		cancel:      cancel,
		reconnectCh: make(chan struct{}, 1),
	}

	m.wg.Add(1)
	go m.reconnectLoop()

	return m
}

// State returns the current link state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected returns true if the link is up.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// LastError returns the most recent connect error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Connect performs the first connection attempt synchronously. A failed
// first attempt does not start reconnection; the caller decides.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrClosed
	}
	m.lostDuring = false
	m.mu.Unlock()
	m.transition(StateConnecting)

	err := m.connect(ctx)
	if err != nil {
		m.setErr(err)
		m.transition(StateDisconnected)
		return err
	}

	m.connected(false)
	return nil
}

// NotifyConnectionLost reports that the link dropped. Reconnection starts
// in the background.
func (m *Manager) NotifyConnectionLost(cause error) {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
	case StateConnecting, StateReconnecting:
		m.lostDuring = true
		m.lastErr = cause
		m.mu.Unlock()
		return
	default:
		m.mu.Unlock()
		return
	}
	m.lastErr = cause
	m.mu.Unlock()

	m.debugLog("link lost", "error", cause)
	if m.transition(StateReconnecting) {
		select {
		case m.reconnectCh <- struct{}{}:
		default:
		}
	}
}

// Close stops reconnection and waits for the loop to exit. It is safe to
// call more than once.
func (m *Manager) Close() {
	if !m.transition(StateClosed) {
		return
	}
	m.cancel()
	m.wg.Wait()
}

// Attempts returns the number of reconnection attempts since the last
// successful connect.
func (m *Manager) Attempts() int {
	return m.backoff.Attempts()
}

// transition moves to newState unless the manager is closed. It returns
// false if the transition was refused.
func (m *Manager) transition(newState State) bool {
	m.mu.Lock()
	oldState := m.state
	if oldState == StateClosed {
		m.mu.Unlock()
		return false
	}
	m.state = newState
	m.mu.Unlock()

	if oldState != newState && m.config.OnStateChange != nil {
		m.config.OnStateChange(oldState, newState)
	}
	return true
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.attemptReconnect()
		}
	}
}

func (m *Manager) attemptReconnect() {
	for {
		if m.State() != StateReconnecting {
			return
		}

		if m.config.MaxAttempts > 0 && m.backoff.Attempts() >= m.config.MaxAttempts {
			m.giveUp(fmt.Errorf("gave up after %d attempts: %w", m.backoff.Attempts(), m.LastError()))
			return
		}

		delay := m.backoff.Next()
		attempt := m.backoff.Attempts()
		if m.config.OnReconnecting != nil {
			m.config.OnReconnecting(attempt, delay)
		}
		m.debugLog("reconnecting", "attempt", attempt, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		m.mu.Lock()
		m.lostDuring = false
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(m.ctx, m.config.AttemptTimeout)
		err := m.connect(ctx)
		cancel()

		if err == nil {
			m.connected(true)
			return
		}

		m.setErr(err)
		if IsPermanent(err) {
			m.giveUp(err)
			return
		}
	}
}

func (m *Manager) connected(reconnect bool) {
	m.backoff.Reset()
	if !m.transition(StateConnected) {
		return
	}
	if m.config.OnConnected != nil {
		m.config.OnConnected(reconnect)
	}

	m.mu.Lock()
	lost, cause := m.lostDuring, m.lastErr
	m.lostDuring = false
	m.mu.Unlock()
	if lost {
		m.NotifyConnectionLost(cause)
	}
}

func (m *Manager) giveUp(err error) {
	m.debugLog("reconnect abandoned", "error", err)
	if m.transition(StateDisconnected) && m.config.OnGiveUp != nil {
		m.config.OnGiveUp(err)
	}
}

func (m *Manager) debugLog(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, args...)
	}
}
