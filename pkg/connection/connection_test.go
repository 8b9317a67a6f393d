package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	t.Run("DefaultSequence", func(t *testing.T) {
		b := NewBackoff()

		expected := []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
			32 * time.Second,
			60 * time.Second,
			60 * time.Second,
		}

		for i, exp := range expected {
			base := b.Current()
			_ = b.Next()
			if base != exp {
				t.Errorf("Attempt %d: base = %v, want %v", i, base, exp)
			}
		}

		seq := DefaultBackoffConfig().Sequence(len(expected))
		for i := range expected {
			if seq[i] != expected[i] {
				t.Errorf("Sequence[%d] = %v, want %v", i, seq[i], expected[i])
			}
		}
	})

	t.Run("JitterBounds", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			d := NewBackoff().Next()
			if d < time.Second || d > 1250*time.Millisecond {
				t.Fatalf("sample %d: %v outside [1s, 1.25s]", i, d)
			}
		}
	})

	t.Run("Reset", func(t *testing.T) {
		b := NewBackoff()
		for i := 0; i < 5; i++ {
			b.Next()
		}
		if b.Attempts() != 5 {
			t.Errorf("Attempts() = %d, want 5", b.Attempts())
		}

		b.Reset()
		if b.Current() != InitialBackoff {
			t.Errorf("Current() = %v after reset, want %v", b.Current(), InitialBackoff)
		}
		if b.Attempts() != 0 {
			t.Errorf("Attempts() = %d after reset, want 0", b.Attempts())
		}
	})

	t.Run("NoJitter", func(t *testing.T) {
		b := NewBackoffWithConfig(BackoffConfig{
			Initial: 100 * time.Millisecond,
			Max:     500 * time.Millisecond,
			Jitter:  -1,
		})

		expected := []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
			500 * time.Millisecond,
			500 * time.Millisecond,
		}
		for i, exp := range expected {
			if got := b.Next(); got != exp {
				t.Errorf("Attempt %d: got %v, want %v", i, got, exp)
			}
		}
	})
}

func fastConfig() ManagerConfig {
	return ManagerConfig{
		Backoff: BackoffConfig{Initial: time.Millisecond, Max: 5 * time.Millisecond, Jitter: -1},
	}
}

func TestManagerConnect(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var transitions []State
		var reconnectFlag atomic.Bool
		reconnectFlag.Store(true)

		cfg := fastConfig()
		cfg.OnStateChange = func(_, newState State) { transitions = append(transitions, newState) }
		cfg.OnConnected = func(reconnect bool) { reconnectFlag.Store(reconnect) }

		m := NewManager(func(context.Context) error { return nil }, cfg)
		defer m.Close()

		if err := m.Connect(context.Background()); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
		if !m.IsConnected() {
			t.Errorf("State() = %v, want CONNECTED", m.State())
		}
		if reconnectFlag.Load() {
			t.Error("first connect reported as reconnect")
		}
		if len(transitions) != 2 || transitions[0] != StateConnecting || transitions[1] != StateConnected {
			t.Errorf("transitions = %v", transitions)
		}
		if err := m.Connect(context.Background()); !errors.Is(err, ErrAlreadyConnected) {
			t.Errorf("second Connect() = %v, want ErrAlreadyConnected", err)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		want := errors.New("refused")
		m := NewManager(func(context.Context) error { return want }, fastConfig())
		defer m.Close()

		if err := m.Connect(context.Background()); !errors.Is(err, want) {
			t.Errorf("Connect() = %v, want %v", err, want)
		}
		if m.State() != StateDisconnected {
			t.Errorf("State() = %v", m.State())
		}
		if !errors.Is(m.LastError(), want) {
			t.Errorf("LastError() = %v", m.LastError())
		}
	})

	t.Run("Closed", func(t *testing.T) {
		m := NewManager(func(context.Context) error { return nil }, fastConfig())
		m.Close()
		m.Close()

		if err := m.Connect(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("Connect() after Close = %v", err)
		}
		if m.State() != StateClosed {
			t.Errorf("State() = %v", m.State())
		}
	})
}

func TestManagerReconnect(t *testing.T) {
	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		var calls atomic.Int32
		reconnected := make(chan struct{})

		cfg := fastConfig()
		cfg.OnConnected = func(reconnect bool) {
			if reconnect {
				close(reconnected)
			}
		}

		m := NewManager(func(context.Context) error {
			n := calls.Add(1)
			if n == 1 || n >= 4 {
				return nil
			}
			return errors.New("host unreachable")
		}, cfg)
		defer m.Close()

		if err := m.Connect(context.Background()); err != nil {
			t.Fatal(err)
		}
		m.NotifyConnectionLost(errors.New("eof"))

		select {
		case <-reconnected:
		case <-time.After(2 * time.Second):
			t.Fatal("did not reconnect")
		}
		if calls.Load() != 4 {
			t.Errorf("connect calls = %d, want 4", calls.Load())
		}
		if m.Attempts() != 0 {
			t.Errorf("Attempts() = %d after success, want 0", m.Attempts())
		}
	})

	t.Run("PermanentStops", func(t *testing.T) {
		var calls atomic.Int32
		gaveUp := make(chan error, 1)

		cfg := fastConfig()
		cfg.OnGiveUp = func(err error) { gaveUp <- err }

		authErr := errors.New("pairing rejected")
		m := NewManager(func(context.Context) error {
			if calls.Add(1) == 1 {
				return nil
			}
			return Permanent(authErr)
		}, cfg)
		defer m.Close()

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost(nil)

		select {
		case err := <-gaveUp:
			if !errors.Is(err, authErr) || !IsPermanent(err) {
				t.Errorf("give-up error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("manager kept retrying")
		}
		if calls.Load() != 2 {
			t.Errorf("connect calls = %d, want 2", calls.Load())
		}
		if m.State() != StateDisconnected {
			t.Errorf("State() = %v", m.State())
		}
	})

	t.Run("MaxAttempts", func(t *testing.T) {
		gaveUp := make(chan error, 1)
		cfg := fastConfig()
		cfg.MaxAttempts = 3
		cfg.OnGiveUp = func(err error) { gaveUp <- err }

		var calls atomic.Int32
		m := NewManager(func(context.Context) error {
			if calls.Add(1) == 1 {
				return nil
			}
			return errors.New("down")
		}, cfg)
		defer m.Close()

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost(nil)

		select {
		case <-gaveUp:
		case <-time.After(2 * time.Second):
			t.Fatal("did not give up")
		}
		if calls.Load() != 4 {
			t.Errorf("connect calls = %d, want 4", calls.Load())
		}
	})

	t.Run("LostDuringConnect", func(t *testing.T) {
		var calls atomic.Int32
		var mu sync.Mutex
		var connects []bool

		cfg := fastConfig()
		cfg.OnConnected = func(reconnect bool) {
			mu.Lock()
			connects = append(connects, reconnect)
			mu.Unlock()
		}

		var m *Manager
		m = NewManager(func(context.Context) error {
			if calls.Add(1) == 1 {
				m.NotifyConnectionLost(errors.New("dropped early"))
			}
			return nil
		}, cfg)
		defer m.Close()

		if err := m.Connect(context.Background()); err != nil {
			t.Fatal(err)
		}

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			mu.Lock()
			n := len(connects)
			mu.Unlock()
			if n == 2 {
				break
			}
			time.Sleep(5 * time.Millisecond)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(connects) != 2 || connects[0] || !connects[1] {
			t.Errorf("connects = %v, want [false true]", connects)
		}
	})

	t.Run("CloseDuringBackoff", func(t *testing.T) {
		cfg := ManagerConfig{Backoff: BackoffConfig{Initial: time.Hour, Jitter: -1}}
		var calls atomic.Int32
		m := NewManager(func(context.Context) error {
			calls.Add(1)
			return nil
		}, cfg)

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost(nil)

		done := make(chan struct{})
		go func() {
			m.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close blocked during backoff wait")
		}
		if calls.Load() != 1 {
			t.Errorf("connect calls = %d, want 1", calls.Load())
		}
	})
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateDisconnected: "DISCONNECTED",
		StateConnecting:   "CONNECTING",
		StateConnected:    "CONNECTED",
		StateReconnecting: "RECONNECTING",
		StateClosed:       "CLOSED",
		State(99):         "UNKNOWN",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
