package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/wire"
)

func startEchoServer(t *testing.T, logger log.Logger) *Server {
	t.Helper()

	srv, err := NewServer(ServerConfig{
		Address: "127.0.0.1:0",
		Logger:  logger,
		Handler: func(ctx context.Context, conn *Conn) {
			for {
				msg, err := conn.ReceiveMessage(0)
				if err != nil {
					return
				}
				if ctrl, ok := msg.(*wire.Control); ok && ctrl.Type == wire.ControlPing {
					_ = conn.SendPong(ctrl.Seq)
					continue
				}
				_ = conn.SendMessage(msg)
			}
		},
	})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop() })
	return srv
}

func TestNewServerRequiresHandler(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestServerRoundTrip(t *testing.T) {
	logger := &captureLogger{}
	srv := startEchoServer(t, logger)
	assert.NotZero(t, srv.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, srv.Addr().String(), DialConfig{})
	require.NoError(t, err)
	defer conn.Close()
	assert.NotEmpty(t, conn.SessionID())

	require.NoError(t, conn.SendMessage(&wire.Request{ID: 7, Method: wire.MethodGetStates}))
	msg, err := conn.ReceiveMessage(time.Second)
	require.NoError(t, err)

	req, ok := msg.(*wire.Request)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, uint32(7), req.ID)

	require.NoError(t, conn.SendPing(3))
	msg, err = conn.ReceiveMessage(time.Second)
	require.NoError(t, err)
	pong, ok := msg.(*wire.Control)
	require.True(t, ok)
	assert.Equal(t, wire.ControlPong, pong.Type)
	assert.Equal(t, uint32(3), pong.Seq)

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	var connected bool
	for _, e := range logger.snapshot() {
		if e.StateChange != nil && e.StateChange.NewState == "CONNECTED" {
			connected = true
		}
	}
	assert.True(t, connected, "expected CONNECTED capture")
}

func TestServerStopClosesConnections(t *testing.T) {
	srv := startEchoServer(t, nil)

	conn, err := Dial(context.Background(), srv.Addr().String(), DialConfig{})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, srv.Stop())
	assert.Equal(t, 0, srv.ConnectionCount())

	_, err = conn.Receive(time.Second)
	assert.True(t, IsClosedError(err), "got %v", err)
}

func TestConnClosedOperations(t *testing.T) {
	srv := startEchoServer(t, nil)

	conn, err := Dial(context.Background(), srv.Addr().String(), DialConfig{})
	require.NoError(t, err)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())

	assert.ErrorIs(t, conn.Send([]byte{1}), ErrConnectionClosed)
	_, err = conn.Receive(0)
	assert.ErrorIs(t, err, ErrConnectionClosed)

	select {
	case <-conn.Done():
	default:
		t.Error("Done should be closed")
	}
}
