package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes captured events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.ReaderID != "" {
		attrs = append(attrs, slog.String("reader_id", event.ReaderID))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		attrs = append(attrs,
			slog.Uint64("req_id", uint64(event.Message.RequestID)),
			slog.String("msg_type", event.Message.Type.String()),
		)
		if event.Message.Method != "" {
			attrs = append(attrs, slog.String("method", event.Message.Method))
		}
		if event.Message.EventName != "" {
			attrs = append(attrs, slog.String("event", event.Message.EventName))
		}
		if event.Message.Status != nil {
			attrs = append(attrs, slog.Int("status", int(*event.Message.Status)))
		}
		if event.Message.ProcessingTime != nil {
			attrs = append(attrs, slog.Duration("processing_time", *event.Message.ProcessingTime))
		}
	case event.SDKEvent != nil:
		attrs = append(attrs, slog.String("event", event.SDKEvent.Name))
		switch {
		case event.SDKEvent.States != nil:
			attrs = append(attrs,
				slog.Any("states", event.SDKEvent.States),
				slog.Bool("scanning", event.SDKEvent.IsScanning),
			)
		case event.SDKEvent.UpdateType != "":
			attrs = append(attrs, slog.String("update_type", event.SDKEvent.UpdateType))
		case event.SDKEvent.AccessEvent != "":
			attrs = append(attrs,
				slog.String("access_event", event.SDKEvent.AccessEvent),
				slog.String("access_message", event.SDKEvent.AccessMessage),
			)
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.ControlMsg != nil:
		attrs = append(attrs, slog.String("ctrl_type", event.ControlMsg.Type.String()))
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "capture", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
