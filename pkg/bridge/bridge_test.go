package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/connection"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
)

type hostSDK struct {
	*sdk.Hub

	mu     sync.Mutex
	states []string
	err    error

	// gate, when set, holds GetStates until closed. entered is signalled
	// once the call is waiting.
	gate    chan struct{}
	entered chan struct{}
}

func newHostSDK(states ...string) *hostSDK {
	return &hostSDK{Hub: sdk.NewHub(), states: states}
}

func (h *hostSDK) GetStates(ctx context.Context) ([]string, error) {
	h.mu.Lock()
	gate, entered := h.gate, h.entered
	h.mu.Unlock()

	if gate != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.states, h.err
}

func (h *hostSDK) setStates(states ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = states
}

func startHost(t *testing.T, src sdk.SDK, address string, secret string) *Server {
	t.Helper()
	if address == "" {
		address = "127.0.0.1:0"
	}
	srv, err := NewServer(src, ServerConfig{Address: address, Name: "test-host", Secret: []byte(secret)})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func newTestClient(t *testing.T, srv *Server, secret string) *Client {
	t.Helper()
	c := NewClient(ClientConfig{
		Address: srv.Addr().String(),
		Name:    "test-screen",
		Secret:  []byte(secret),
		Backoff: connection.BackoffConfig{Initial: 10 * time.Millisecond, Max: 50 * time.Millisecond, Jitter: -1},
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func waitSessions(t *testing.T, srv *Server, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return srv.SessionCount() == n }, 2*time.Second, 5*time.Millisecond)
}

func TestGetStatesOverBridge(t *testing.T) {
	host := newHostSDK("errorNoCredentials", "bleErrorDisabled")
	srv := startHost(t, host, "", "")
	c := newTestClient(t, srv, "")

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, connection.StateConnected, c.State())
	assert.Equal(t, "test-host", c.HostName())
	assert.NotEmpty(t, c.SessionID())

	states, err := c.GetStates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"errorNoCredentials", "bleErrorDisabled"}, states)
}

func TestGetStatesEmptyIsNotNil(t *testing.T) {
	srv := startHost(t, newHostSDK(), "", "")
	c := newTestClient(t, srv, "")
	require.NoError(t, c.Connect(context.Background()))

	states, err := c.GetStates(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, states)
	assert.Empty(t, states)
}

func TestGetStatesRemoteError(t *testing.T) {
	host := newHostSDK()
	host.err = errors.New("sdk not initialised")
	srv := startHost(t, host, "", "")
	c := newTestClient(t, srv, "")
	require.NoError(t, c.Connect(context.Background()))

	_, err := c.GetStates(context.Background())
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "sdk not initialised")
}

func TestGetStatesNotConnected(t *testing.T) {
	c := NewClient(ClientConfig{Address: "127.0.0.1:1"})
	defer c.Close()

	_, err := c.GetStates(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestEventsArriveInOrder(t *testing.T) {
	host := newHostSDK()
	srv := startHost(t, host, "", "")
	c := newTestClient(t, srv, "")

	var mu sync.Mutex
	var got []string
	record := func(s string) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	}
	c.OnReaderUpdated(func(ev sdk.ReaderUpdated) { record("reader:" + ev.Reader.ID) })
	c.OnAccess(func(ev sdk.AccessEvent) { record("access:" + ev.Event) })
	c.OnSdkStateChanged(func(ev sdk.SdkStateChanged) { record(fmt.Sprintf("states:%d", len(ev.States))) })

	require.NoError(t, c.Connect(context.Background()))
	waitSessions(t, srv, 1)

	distance := 1.5
	host.EmitReaderUpdated(sdk.ReaderUpdated{
		UpdateType: sdk.AttributesChanged,
		Reader:     sdk.Reader{ID: "r1", Name: "Front door", Distance: &distance, Attributes: map[string]any{"rssi": int64(-60)}},
	})
	host.EmitAccess(sdk.AccessEvent{Event: sdk.AccessStarted, Reader: sdk.Reader{ID: "r1"}})
	host.EmitSdkStateChanged(sdk.SdkStateChanged{IsScanning: true, States: []string{"nfcErrorDisabled"}})
	for i := 2; i <= 20; i++ {
		host.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.AttributesChanged, Reader: sdk.Reader{ID: fmt.Sprintf("r%d", i)}})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 22
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"reader:r1", "access:started", "states:1"}, got[:3])
	for i := 3; i < 22; i++ {
		assert.Equal(t, fmt.Sprintf("reader:r%d", i-1), got[i])
	}
}

func TestPairingSecret(t *testing.T) {
	t.Run("matching secret", func(t *testing.T) {
		srv := startHost(t, newHostSDK("bleErrorDisabled"), "", "s3cret")
		c := newTestClient(t, srv, "s3cret")

		require.NoError(t, c.Connect(context.Background()))
		waitSessions(t, srv, 1)
	})

	t.Run("wrong secret", func(t *testing.T) {
		srv := startHost(t, newHostSDK(), "", "s3cret")
		c := newTestClient(t, srv, "guess")

		err := c.Connect(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuthFailed)
		assert.True(t, connection.IsPermanent(err))
		assert.Equal(t, connection.StateDisconnected, c.State())
		assert.Equal(t, 0, srv.SessionCount())
	})

	t.Run("missing secret", func(t *testing.T) {
		srv := startHost(t, newHostSDK(), "", "s3cret")
		c := newTestClient(t, srv, "")

		err := c.Connect(context.Background())
		assert.ErrorIs(t, err, ErrAuthFailed)
		assert.Equal(t, 0, srv.SessionCount())
	})
}

func TestReconnectReseeds(t *testing.T) {
	host := newHostSDK("bleErrorDisabled")
	srv := startHost(t, host, "", "")
	addr := srv.Addr().String()
	c := newTestClient(t, srv, "")

	synthetic := make(chan sdk.SdkStateChanged, 4)
	c.OnSdkStateChanged(func(ev sdk.SdkStateChanged) { synthetic <- ev })

	require.NoError(t, c.Connect(context.Background()))
	waitSessions(t, srv, 1)

	host.EmitSdkStateChanged(sdk.SdkStateChanged{IsScanning: true, States: []string{"bleErrorDisabled"}})
	select {
	case <-synthetic:
	case <-time.After(2 * time.Second):
		t.Fatal("forwarded event not received")
	}

	require.NoError(t, srv.Stop())
	require.Eventually(t, func() bool { return c.State() == connection.StateReconnecting }, 2*time.Second, 5*time.Millisecond)

	host.setStates("nfcErrorDisabled")
	startHost(t, host, addr, "")

	select {
	case ev := <-synthetic:
		assert.Equal(t, []string{"nfcErrorDisabled"}, ev.States)
		assert.True(t, ev.IsScanning, "scanning flag carried over from last event")
	case <-time.After(5 * time.Second):
		t.Fatal("no synthetic sdkStateChanged after reconnect")
	}
	assert.Equal(t, connection.StateConnected, c.State())
}

func TestReconnectResyncYieldsToNewerEvent(t *testing.T) {
	host := newHostSDK("bleErrorDisabled")
	srv := startHost(t, host, "", "")
	addr := srv.Addr().String()
	c := newTestClient(t, srv, "")

	events := make(chan sdk.SdkStateChanged, 4)
	c.OnSdkStateChanged(func(ev sdk.SdkStateChanged) { events <- ev })

	require.NoError(t, c.Connect(context.Background()))
	waitSessions(t, srv, 1)

	require.NoError(t, srv.Stop())
	require.Eventually(t, func() bool { return c.State() == connection.StateReconnecting }, 2*time.Second, 5*time.Millisecond)

	gate := make(chan struct{})
	entered := make(chan struct{}, 1)
	host.mu.Lock()
	host.gate, host.entered = gate, entered
	host.mu.Unlock()

	srv2 := startHost(t, host, addr, "")
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("resync request never reached the host")
	}
	waitSessions(t, srv2, 1)

	// The host reports a change while the resync snapshot is still pending.
	host.EmitSdkStateChanged(sdk.SdkStateChanged{IsScanning: true, States: []string{"nfcErrorDisabled"}})
	select {
	case ev := <-events:
		assert.Equal(t, []string{"nfcErrorDisabled"}, ev.States)
	case <-time.After(2 * time.Second):
		t.Fatal("forwarded event not received")
	}

	close(gate)
	assert.Never(t, func() bool { return len(events) > 0 }, 200*time.Millisecond, 10*time.Millisecond,
		"stale snapshot must not follow the newer event")
}

func TestReconnectDropsReadersFromPreviousLink(t *testing.T) {
	host := newHostSDK()
	srv := startHost(t, host, "", "")
	addr := srv.Addr().String()
	c := newTestClient(t, srv, "")
	require.NoError(t, c.Connect(context.Background()))
	waitSessions(t, srv, 1)

	s := readers.New(c, readers.DefaultConfig())
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	host.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.AttributesChanged, Reader: sdk.Reader{ID: "door", Name: "Door"}})
	host.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.AttributesChanged, Reader: sdk.Reader{ID: "lift", Name: "Lift"}})
	require.Eventually(t, func() bool { return len(s.Readers()) == 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, srv.Stop())
	require.Eventually(t, func() bool { return c.State() == connection.StateReconnecting }, 2*time.Second, 5*time.Millisecond)

	// Lost while the link was down; the host will never report it.
	host.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.ReaderUnavailable, Reader: sdk.Reader{ID: "door"}})

	srv2 := startHost(t, host, addr, "")
	waitSessions(t, srv2, 1)
	require.Eventually(t, func() bool { return len(s.Readers()) == 0 }, 5*time.Second, 5*time.Millisecond)

	host.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.AttributesChanged, Reader: sdk.Reader{ID: "lift", Name: "Lift"}})
	require.Eventually(t, func() bool {
		_, ok := s.Reader("lift")
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	_, ok := s.Reader("door")
	assert.False(t, ok)
}

func TestSynchronizerOverBridge(t *testing.T) {
	host := newHostSDK("errorNoCredentials")
	srv := startHost(t, host, "", "pair")
	c := newTestClient(t, srv, "pair")
	require.NoError(t, c.Connect(context.Background()))
	waitSessions(t, srv, 1)

	cfg := readers.DefaultConfig()
	cfg.DwellTime = 50 * time.Millisecond
	s := readers.New(c, cfg)
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	require.Len(t, s.Messages(), 1)
	assert.Equal(t, "Please register a credential to scan for readers", s.Messages()[0].Message)

	host.EmitReaderUpdated(sdk.ReaderUpdated{UpdateType: sdk.AttributesChanged, Reader: sdk.Reader{ID: "door", Name: "Door"}})
	host.EmitAccess(sdk.AccessEvent{Event: sdk.AccessStarted, Reader: sdk.Reader{ID: "door"}})

	require.Eventually(t, func() bool {
		r, ok := s.Reader("door")
		return ok && r.Status == readers.StatusConnecting
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		r, ok := s.Reader("door")
		return ok && r.Status == ""
	}, 2*time.Second, 5*time.Millisecond)
}

func TestClientCloseStopsEvents(t *testing.T) {
	host := newHostSDK()
	srv := startHost(t, host, "", "")
	c := newTestClient(t, srv, "")

	var count int
	var mu sync.Mutex
	c.OnAccess(func(sdk.AccessEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))
	waitSessions(t, srv, 1)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	waitSessions(t, srv, 0)
	host.EmitAccess(sdk.AccessEvent{Event: "succeeded", Reader: sdk.Reader{ID: "x"}})
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
	assert.Equal(t, connection.StateClosed, c.State())
}
