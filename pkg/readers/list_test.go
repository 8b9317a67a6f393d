package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/sdk"
)

func TestListUpsertAppendsInOrder(t *testing.T) {
	l := NewList()

	assert.True(t, l.Upsert(sdk.Reader{ID: "a", Name: "Front door"}))
	assert.True(t, l.Upsert(sdk.Reader{ID: "b", Name: "Back door"}))

	snap := l.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, "b", snap[1].ID)
}

func TestListUpsertMergesAndKeepsStatus(t *testing.T) {
	l := NewList()
	l.Upsert(sdk.Reader{ID: "a", Name: "Old", Distance: sdk.Float(4), Attributes: map[string]any{"rssi": -80, "fw": "1.0"}})
	_, _ = l.SetStatus("a", "Granted")

	added := l.Upsert(sdk.Reader{ID: "a", Name: "New", Distance: nil, Status: "ignored", Attributes: map[string]any{"rssi": -50}})
	assert.False(t, added)

	r, ok := l.Get("a")
	require.True(t, ok)
	assert.Equal(t, "New", r.Name)
	assert.Nil(t, r.Distance)
	assert.Equal(t, "Granted", r.Status)
	assert.Equal(t, map[string]any{"rssi": -50, "fw": "1.0"}, r.Attributes)
	assert.Equal(t, 1, l.Len())
}

func TestListUpsertDropsIncomingStatus(t *testing.T) {
	l := NewList()
	l.Upsert(sdk.Reader{ID: "a", Status: "stray"})

	r, _ := l.Get("a")
	assert.Empty(t, r.Status)
}

func TestListRemoveReindexes(t *testing.T) {
	l := NewList()
	l.Upsert(sdk.Reader{ID: "a"})
	l.Upsert(sdk.Reader{ID: "b"})
	l.Upsert(sdk.Reader{ID: "c"})

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))

	old, ok := l.SetStatus("c", "x")
	assert.True(t, ok)
	assert.Empty(t, old)

	snap := l.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
	assert.Equal(t, "c", snap[1].ID)
	assert.Equal(t, "x", snap[1].Status)
}

func TestListSnapshotIsolated(t *testing.T) {
	l := NewList()
	l.Upsert(sdk.Reader{ID: "a", Attributes: map[string]any{"k": 1}})

	snap := l.Snapshot()
	snap[0].Attributes["k"] = 2
	snap[0].Name = "changed"

	r, _ := l.Get("a")
	assert.Equal(t, 1, r.Attributes["k"])
	assert.Empty(t, r.Name)
}

func TestListEmptySnapshotNotNil(t *testing.T) {
	assert.NotNil(t, NewList().Snapshot())
}
