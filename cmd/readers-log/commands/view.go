package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mobile-access/readers-go/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// RunView writes every matching event in human-readable form.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}

// formatEvent writes one event: a header line, its details and a blank line.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timestampLayout)

	layer := event.Layer.String()
	if event.Category == log.CategoryControl {
		layer = "CTRL"
	}

	fmt.Fprintf(w, "%s [%s %s] %-3s %s %s", ts, event.LocalRole.String(), shortID(event.SessionID),
		event.Direction.String(), layer, eventType(event))
	if event.ReaderID != "" {
		fmt.Fprintf(w, " reader=%s", event.ReaderID)
	}
	fmt.Fprintln(w)

	switch {
	case event.Frame != nil:
		formatFrame(w, event.Frame)
	case event.Message != nil:
		formatMessage(w, event.Message)
	case event.SDKEvent != nil:
		formatSDKEvent(w, event.SDKEvent)
	case event.StateChange != nil:
		formatStateChange(w, event.StateChange)
	case event.ControlMsg != nil:
		if event.ControlMsg.Seq != 0 {
			fmt.Fprintf(w, "  Seq: %d\n", event.ControlMsg.Seq)
		}
	case event.Error != nil:
		formatError(w, event.Error)
	}

	fmt.Fprintln(w)
}

func formatFrame(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

func formatMessage(w io.Writer, msg *log.MessageEvent) {
	switch msg.Type {
	case log.MessageTypeRequest:
		fmt.Fprintf(w, "  RequestID: %d\n", msg.RequestID)
		fmt.Fprintf(w, "  Method: %s\n", msg.Method)
	case log.MessageTypeResponse:
		fmt.Fprintf(w, "  RequestID: %d\n", msg.RequestID)
		if msg.Status != nil {
			fmt.Fprintf(w, "  Status: %d\n", *msg.Status)
		}
		if msg.ProcessingTime != nil {
			fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*msg.ProcessingTime))
		}
	case log.MessageTypeEvent:
		fmt.Fprintf(w, "  Event: %s\n", msg.EventName)
	case log.MessageTypeHandshake:
		fmt.Fprintf(w, "  Step: %s\n", msg.Method)
	}

	if msg.Payload != nil {
		if data, err := json.Marshal(jsonSafe(msg.Payload)); err == nil {
			fmt.Fprintf(w, "  Payload: %s\n", data)
		}
	}
}

func formatSDKEvent(w io.Writer, ev *log.SDKEventData) {
	fmt.Fprintf(w, "  Event: %s\n", ev.Name)
	switch {
	case ev.UpdateType != "":
		fmt.Fprintf(w, "  Update: %s\n", ev.UpdateType)
	case ev.AccessEvent != "":
		fmt.Fprintf(w, "  Access: %s", ev.AccessEvent)
		if ev.AccessMessage != "" {
			fmt.Fprintf(w, " %q", ev.AccessMessage)
		}
		fmt.Fprintln(w)
	default:
		fmt.Fprintf(w, "  Scanning: %t\n", ev.IsScanning)
		fmt.Fprintf(w, "  States: [%s]\n", strings.Join(ev.States, ", "))
	}
	if ev.ReaderName != "" {
		fmt.Fprintf(w, "  Reader: %s\n", ev.ReaderName)
	}
}

func formatStateChange(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatError(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}
