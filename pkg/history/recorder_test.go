package history_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/history"
	"github.com/mobile-access/readers-go/pkg/history/mocks"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/simulator"
)

func TestRecorderAppendsInOrder(t *testing.T) {
	store := mocks.NewMockStore(t)
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	var got []history.Entry
	store.EXPECT().Append(mock.Anything, mock.Anything).
		Run(func(_ context.Context, e history.Entry) {
			mu.Lock()
			got = append(got, e)
			mu.Unlock()
		}).
		Return(nil).Times(2)

	rec := history.NewRecorder(store, history.RecorderConfig{Now: func() time.Time { return at }})
	reader := sdk.Reader{ID: "r1", Name: "Front door", Status: readers.StatusConnecting}
	rec.StatusSet(reader, sdk.AccessStarted)
	reader.Status = ""
	rec.StatusCleared(reader, readers.StatusConnecting)
	rec.Close()

	require.Len(t, got, 2)
	assert.Equal(t, history.KindSet, got[0].Kind)
	assert.Equal(t, readers.StatusConnecting, got[0].Status)
	assert.Equal(t, sdk.AccessStarted, got[0].Event)
	assert.Equal(t, "Front door", got[0].ReaderName)
	assert.Equal(t, at, got[0].At)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	assert.Equal(t, history.KindCleared, got[1].Kind)
	assert.Equal(t, readers.StatusConnecting, got[1].Status)
	assert.Empty(t, got[1].Event)
}

func TestRecorderCountsStoreFailures(t *testing.T) {
	store := mocks.NewMockStore(t)
	store.EXPECT().Append(mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	rec := history.NewRecorder(store, history.RecorderConfig{})
	rec.StatusSet(sdk.Reader{ID: "r1"}, sdk.AccessFailed)
	rec.Close()

	assert.Equal(t, uint64(1), rec.Failed())
	assert.Equal(t, uint64(0), rec.Dropped())
}

func TestRecorderDropsWhenFull(t *testing.T) {
	store := mocks.NewMockStore(t)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	store.EXPECT().Append(mock.Anything, mock.Anything).
		Run(func(context.Context, history.Entry) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
		}).
		Return(nil).Times(2)

	rec := history.NewRecorder(store, history.RecorderConfig{BufferSize: 1})
	rec.StatusSet(sdk.Reader{ID: "r1"}, sdk.AccessStarted)
	<-started

	rec.StatusSet(sdk.Reader{ID: "r2"}, sdk.AccessStarted)
	rec.StatusSet(sdk.Reader{ID: "r3"}, sdk.AccessStarted)
	assert.Equal(t, uint64(1), rec.Dropped())

	close(release)
	rec.Close()
}

func TestRecorderAfterClose(t *testing.T) {
	store := mocks.NewMockStore(t)
	rec := history.NewRecorder(store, history.RecorderConfig{})
	rec.Close()
	rec.Close()

	rec.StatusSet(sdk.Reader{ID: "r1"}, sdk.AccessStarted)
	assert.Equal(t, uint64(1), rec.Dropped())
}

func TestRecorderWithSynchronizer(t *testing.T) {
	store := history.NewMemoryStore(10)
	rec := history.NewRecorder(store, history.RecorderConfig{})

	sim := simulator.New(simulator.Config{})
	cfg := readers.DefaultConfig()
	cfg.DwellTime = 20 * time.Millisecond
	cfg.Observer = rec
	s := readers.New(sim, cfg)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { _ = s.Close() })

	sim.SeeReader(sdk.Reader{ID: "r1", Name: "Front door"})
	sim.Access(sdk.AccessSucceeded, "Access granted", "r1")

	require.Eventually(t, func() bool { return store.Len() == 2 }, time.Second, 5*time.Millisecond)
	rec.Close()

	r, ok := s.Reader("r1")
	require.True(t, ok)
	assert.Empty(t, r.Status)

	entries, err := store.List(context.Background(), history.Query{ReaderID: "r1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, history.KindCleared, entries[0].Kind)
	assert.Equal(t, "Access granted", entries[0].Status)
	assert.Equal(t, history.KindSet, entries[1].Kind)
	assert.Equal(t, sdk.AccessSucceeded, entries[1].Event)
}
