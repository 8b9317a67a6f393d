package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, SessionID: "a", Direction: DirectionIn, Layer: LayerTransport, Category: CategoryMessage, Frame: &FrameEvent{Size: 10}},
		{Timestamp: base.Add(time.Second), SessionID: "a", Direction: DirectionIn, Layer: LayerWire, Category: CategoryMessage, Message: &MessageEvent{Type: MessageTypeEvent, EventName: "access"}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "b", Layer: LayerSync, Category: CategoryMessage, ReaderID: "r1", SDKEvent: &SDKEventData{Name: "access", AccessEvent: "started"}},
		{Timestamp: base.Add(3 * time.Second), SessionID: "b", Layer: LayerSync, Category: CategoryState, ReaderID: "r1", StateChange: &StateChangeEvent{Entity: StateEntityStatus, NewState: "Connecting..."}},
		{Timestamp: base.Add(4 * time.Second), SessionID: "b", Layer: LayerSync, Category: CategoryError, Error: &ErrorEventData{Layer: LayerSync, Message: "boom"}},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 5 {
		t.Errorf("got %d events, want 5", count)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	layerSync := LayerSync
	catState := CategoryState
	dirIn := DirectionIn
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 5},
		{"session", Filter{SessionID: "a"}, 2},
		{"layer", Filter{Layer: &layerSync}, 3},
		{"category", Filter{Category: &catState}, 1},
		{"direction", Filter{Direction: &dirIn}, 5},
		{"reader", Filter{ReaderID: "r1"}, 2},
		{"event name", Filter{EventName: "access"}, 2},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"no match", Filter{SessionID: "zzz"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ReadAll(path, tt.filter)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.rlog")); err == nil {
		t.Error("expected error for missing file")
	}
}
