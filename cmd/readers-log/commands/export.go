package commands

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mobile-access/readers-go/pkg/log"
)

// RunExport writes matching events as JSONL or CSV to output (stdout when
// empty).
func RunExport(path, format, output string, filter log.Filter) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	stream := json.BorrowStream(w)
	defer json.ReturnStream(stream)

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return stream.Flush()
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if event.Message != nil && event.Message.Payload != nil {
			event.Message.Payload = jsonSafe(event.Message.Payload)
		}

		stream.WriteVal(event)
		stream.WriteRaw("\n")
		if stream.Error != nil {
			return fmt.Errorf("failed to encode event: %w", stream.Error)
		}
		if err := stream.Flush(); err != nil {
			return fmt.Errorf("failed to write event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "role", "direction", "layer", "category", "reader_id", "type", "name", "request_id"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var name, reqID string
		switch {
		case event.Message != nil:
			name = event.Message.EventName
			if name == "" {
				name = event.Message.Method
			}
			if event.Message.Type == log.MessageTypeRequest || event.Message.Type == log.MessageTypeResponse {
				reqID = strconv.FormatUint(uint64(event.Message.RequestID), 10)
			}
		case event.SDKEvent != nil:
			name = event.SDKEvent.Name
		case event.StateChange != nil:
			name = event.StateChange.Entity.String()
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.SessionID,
			event.LocalRole.String(),
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			event.ReaderID,
			eventType(event),
			name,
			reqID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
