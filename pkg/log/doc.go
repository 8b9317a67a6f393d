// Package log provides structured event capture for the readers stack.
//
// It records everything that flows into and through the reader list: raw
// bridge frames, decoded bridge messages, SDK events and the resulting
// status/list changes. It is separate from operational logging (slog); the
// capture is a complete machine-readable trace that can be replayed or
// inspected with the readers-log tool.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For field debugging: write to a binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/readers/screen.rlog")
//
//	// Both
//	cfg.EventLogger = log.NewMultiLogger(adapter, fileLogger)
//
// # Event Types
//
// Events are captured at three layers:
//   - Transport: raw frames on the bridge connection (FrameEvent)
//   - Wire: decoded bridge messages (MessageEvent)
//   - Sync: SDK events as received (SDKEventData) and the state changes
//     they caused (StateChangeEvent)
//
// Control messages (ping/pong/close) and errors have dedicated event types.
//
// # File Format
//
// Log files are a sequence of CBOR-encoded events with integer keys, using
// the .rlog extension.
package log
