package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/history"
	hmocks "github.com/mobile-access/readers-go/pkg/history/mocks"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/simulator"
)

// syncBuffer is a bytes.Buffer safe for the change listener goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func newTestScreen(t *testing.T, store history.Store) (*Screen, *simulator.Simulator, *syncBuffer) {
	t.Helper()

	sim := simulator.New(simulator.Config{InitialStates: []string{"bleErrorDisabled"}, Scanning: true})
	cfg := readers.DefaultConfig()
	cfg.DwellTime = time.Second
	s := readers.New(sim, cfg)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		_ = s.Close()
		sim.Close()
	})

	out := &syncBuffer{}
	return NewScreen(s, store, func() string { return "CONNECTED" }, out), sim, out
}

func TestScreenReaders(t *testing.T) {
	screen, sim, out := newTestScreen(t, nil)
	sim.SeeReader(sdk.Reader{ID: "door-1", Name: "Front door", Distance: sdk.Float(1.25)})
	sim.SeeReader(sdk.Reader{ID: "door-2", Name: "Parking gate"})

	assert.True(t, screen.Exec(context.Background(), "readers"))

	text := out.String()
	assert.Contains(t, text, "Bluetooth is disabled (may still use nfc)")
	assert.Contains(t, text, "Front door")
	assert.Contains(t, text, "1.25 m")
	assert.Contains(t, text, "Parking gate")
	assert.Less(t, strings.Index(text, "Front door"), strings.Index(text, "Parking gate"))
}

func TestScreenShowsStatusInsteadOfDistance(t *testing.T) {
	screen, sim, out := newTestScreen(t, nil)
	sim.SeeReader(sdk.Reader{ID: "door-1", Name: "Front door", Distance: sdk.Float(1.25)})
	sim.Access(sdk.AccessStarted, "", "door-1")

	screen.Exec(context.Background(), "readers")
	assert.Contains(t, out.String(), readers.StatusConnecting)
	assert.NotContains(t, out.String(), "1.25 m")
}

func TestScreenEmpty(t *testing.T) {
	screen, sim, out := newTestScreen(t, nil)
	sim.SetStates(false)

	screen.Exec(context.Background(), "readers")
	assert.Contains(t, out.String(), "No status messages")
	assert.Contains(t, out.String(), "No readers in range")
}

func TestScreenReaderDetail(t *testing.T) {
	screen, sim, out := newTestScreen(t, nil)
	sim.SeeReader(sdk.Reader{ID: "door-1", Name: "Front door", Attributes: map[string]any{"rssi": -58, "floor": 2}})

	screen.Exec(context.Background(), "reader door-1")
	text := out.String()
	assert.Contains(t, text, "Reader door-1")
	assert.Contains(t, text, "(none)")
	assert.Less(t, strings.Index(text, "floor: 2"), strings.Index(text, "rssi: -58"))

	out.Reset()
	screen.Exec(context.Background(), "reader nope")
	assert.Contains(t, out.String(), "Reader not found: nope")

	out.Reset()
	screen.Exec(context.Background(), "reader")
	assert.Contains(t, out.String(), "Usage: reader <id>")
}

func TestScreenStatus(t *testing.T) {
	screen, _, out := newTestScreen(t, nil)

	screen.Exec(context.Background(), "status")
	text := out.String()
	assert.Contains(t, text, "SDK link:       CONNECTED")
	assert.Contains(t, text, "Scanning:       false")
	assert.Contains(t, text, "Messages:       1")
}

func TestScreenHistory(t *testing.T) {
	store := history.NewMemoryStore(10)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(context.Background(), history.Entry{
		ReaderID: "door-1", ReaderName: "Front door", Kind: history.KindSet, Status: "Access granted", Event: "succeeded", At: at,
	}))
	require.NoError(t, store.Append(context.Background(), history.Entry{
		ReaderID: "door-2", Kind: history.KindCleared, Status: "Denied", At: at.Add(time.Second),
	}))

	screen, _, out := newTestScreen(t, store)

	screen.Exec(context.Background(), "history")
	assert.Contains(t, out.String(), "Front door")
	assert.Contains(t, out.String(), "door-2")

	out.Reset()
	screen.Exec(context.Background(), "history door-1")
	assert.Contains(t, out.String(), "Access granted")
	assert.NotContains(t, out.String(), "door-2")
}

func TestScreenHistoryDisabled(t *testing.T) {
	screen, _, out := newTestScreen(t, nil)
	screen.Exec(context.Background(), "history")
	assert.Contains(t, out.String(), "History is disabled")
}

func TestScreenHistoryError(t *testing.T) {
	store := hmocks.NewMockStore(t)
	store.EXPECT().List(mock.Anything, history.Query{Limit: 20}).Return(nil, errors.New("db down"))

	screen, _, out := newTestScreen(t, store)
	screen.Exec(context.Background(), "history")
	assert.Contains(t, out.String(), "History error: db down")
}

func TestScreenFollow(t *testing.T) {
	screen, sim, out := newTestScreen(t, nil)
	screen.Follow()
	defer screen.Stop()

	sim.SeeReader(sdk.Reader{ID: "door-1", Name: "Front door"})
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Front door")
	}, time.Second, 5*time.Millisecond)

	screen.Exec(context.Background(), "live off")
	out.Reset()
	sim.SeeReader(sdk.Reader{ID: "door-2", Name: "Parking gate"})
	assert.NotContains(t, out.String(), "Parking gate")

	screen.Stop()
	screen.Exec(context.Background(), "live on")
	out.Reset()
	sim.SeeReader(sdk.Reader{ID: "door-3", Name: "Side door"})
	assert.NotContains(t, out.String(), "Side door")
}

func TestScreenCommands(t *testing.T) {
	screen, _, out := newTestScreen(t, nil)
	ctx := context.Background()

	assert.True(t, screen.Exec(ctx, ""))
	assert.True(t, screen.Exec(ctx, "help"))
	assert.Contains(t, out.String(), "Readers Screen Commands")

	assert.True(t, screen.Exec(ctx, "bogus"))
	assert.Contains(t, out.String(), "Unknown command: bogus")

	assert.True(t, screen.Exec(ctx, "live maybe"))
	assert.Contains(t, out.String(), "Usage: live on|off")

	assert.False(t, screen.Exec(ctx, "quit"))
}
