package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobile-access/readers-go/pkg/log"
	"github.com/mobile-access/readers-go/pkg/sdk"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func writeLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "screen.rlog")
	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)

	status := uint8(0)
	events := []log.Event{
		{
			Timestamp: base,
			SessionID: "aaaaaaaa-1111",
			LocalRole: log.RoleScreen,
			Layer:     log.LayerTransport,
			Category:  log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityConnection,
				NewState: "CONNECTED",
			},
		},
		{
			Timestamp:  base.Add(time.Second),
			SessionID:  "aaaaaaaa-1111",
			LocalRole:  log.RoleScreen,
			Direction:  log.DirectionIn,
			Layer:      log.LayerWire,
			Category:   log.CategoryMessage,
			RemoteAddr: "10.0.0.5:7420",
			ReaderID:   "r1",
			Message: &log.MessageEvent{
				Type:      log.MessageTypeEvent,
				EventName: sdk.EventReaderUpdated,
				Payload:   map[string]any{"updateType": "attributesChanged"},
			},
		},
		{
			Timestamp: base.Add(2 * time.Second),
			SessionID: "aaaaaaaa-1111",
			Direction: log.DirectionOut,
			Layer:     log.LayerWire,
			Category:  log.CategoryMessage,
			Message:   &log.MessageEvent{Type: log.MessageTypeResponse, RequestID: 7, Status: &status},
		},
		{
			Timestamp: base.Add(3 * time.Second),
			SessionID: "bbbbbbbb-2222",
			Layer:     log.LayerSync,
			Category:  log.CategoryMessage,
			ReaderID:  "r1",
			SDKEvent: &log.SDKEventData{
				Name:          sdk.EventAccess,
				AccessEvent:   sdk.AccessSucceeded,
				AccessMessage: "Access granted",
				ReaderName:    "Front door",
			},
		},
		{
			Timestamp: base.Add(4 * time.Second),
			SessionID: "bbbbbbbb-2222",
			Layer:     log.LayerSync,
			Category:  log.CategoryState,
			ReaderID:  "r1",
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityStatus,
				NewState: "Access granted",
				Reason:   "succeeded",
			},
		},
		{
			Timestamp: base.Add(5 * time.Second),
			SessionID: "bbbbbbbb-2222",
			Layer:     log.LayerSync,
			Category:  log.CategoryError,
			Error:     &log.ErrorEventData{Layer: log.LayerSync, Message: "boom", Context: "get states"},
		},
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	require.NoError(t, logger.Close())
	return path
}

func TestRunView(t *testing.T) {
	path := writeLog(t)

	var buf bytes.Buffer
	require.NoError(t, RunView(path, log.Filter{}, &buf))
	out := buf.String()

	assert.Contains(t, out, "2026-03-01T08:00:00.000000Z [SCREEN aaaaaaaa] IN  TRANSPORT State")
	assert.Contains(t, out, "  -> CONNECTED")
	assert.Contains(t, out, "EVENT reader=r1")
	assert.Contains(t, out, `Payload: {"updateType":"attributesChanged"}`)
	assert.Contains(t, out, "RequestID: 7")
	assert.Contains(t, out, `Access: succeeded "Access granted"`)
	assert.Contains(t, out, "Context: get states")
}

func TestRunViewFiltered(t *testing.T) {
	path := writeLog(t)
	filter, err := FilterOptions{Layer: "sync", ReaderID: "r1"}.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RunView(path, filter, &buf))
	out := buf.String()

	assert.Equal(t, 2, strings.Count(out, " SYNC "))
	assert.NotContains(t, out, "TRANSPORT")
}

func TestFilterOptionsErrors(t *testing.T) {
	for _, opts := range []FilterOptions{
		{Layer: "service"},
		{Direction: "sideways"},
		{Category: "snapshot"},
		{TimeStart: "yesterday"},
		{TimeEnd: "tomorrow"},
	} {
		_, err := opts.Build()
		assert.Error(t, err, "%+v", opts)
	}
}

func TestRunFilter(t *testing.T) {
	path := writeLog(t)
	out := filepath.Join(t.TempDir(), "out.rlog")

	filter, err := FilterOptions{SessionID: "bbbbbbbb-2222"}.Build()
	require.NoError(t, err)
	n, err := RunFilter(path, out, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	events, err := log.ReadAll(out, log.Filter{})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestRunExportJSONL(t *testing.T) {
	path := writeLog(t)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	filter, err := FilterOptions{Event: sdk.EventReaderUpdated}.Build()
	require.NoError(t, err)
	require.NoError(t, RunExport(path, "jsonl", out, filter))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "r1", ev["ReaderID"])
}

func TestRunExportCSV(t *testing.T) {
	path := writeLog(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, RunExport(path, "csv", out, log.Filter{}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,session_id,role"))
	assert.Contains(t, lines[3], ",RESPONSE,,7")
	assert.Contains(t, lines[4], ",SDK,access,")
}

func TestRunExportUnknownFormat(t *testing.T) {
	err := RunExport(writeLog(t), "xml", "", log.Filter{})
	assert.ErrorContains(t, err, "unknown format")
}

func TestCollectStats(t *testing.T) {
	stats, err := Collect(writeLog(t))
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalEvents)
	assert.Len(t, stats.Sessions, 2)
	assert.Equal(t, 3, stats.Readers["r1"])
	assert.Equal(t, 1, stats.SDKEvents[sdk.EventAccess])
	assert.Equal(t, 1, stats.StatusChanges)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 3, stats.EventsByLayer[log.LayerSync])
	assert.Equal(t, "10.0.0.5:7420", stats.Sessions["aaaaaaaa-1111"].RemoteAddr)

	var buf bytes.Buffer
	printStats(&buf, stats)
	assert.Contains(t, buf.String(), "Total Events: 6")
	assert.Contains(t, buf.String(), "Sessions: 2")
}

func TestJSONSafe(t *testing.T) {
	in := map[any]any{uint64(1): "r1", uint64(2): []any{map[any]any{"k": 1}}}
	out := jsonSafe(in)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"r1","2":[{"k":1}]}`, string(data))
}
