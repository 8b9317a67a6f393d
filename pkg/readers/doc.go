// Package readers keeps the reader list shown on the readers screen in sync
// with the mobile-access SDK.
//
// The Synchronizer consumes the three SDK event streams and maintains two
// views: the status messages derived from the current SDK state snapshot, and
// the list of nearby readers with an optional transient status line.
//
// # Reader List
//
// Readers are keyed by ID and kept in first-seen order. An attributesChanged
// update merges into an existing entry without touching its status; a
// readerUnavailable update removes it. Other update types are ignored.
//
// # Transient Status
//
// An access event sets the reader's status ("Connecting..." while an exchange
// is starting, otherwise the SDK message) and schedules a clear after the
// dwell time. Each status set gets a fresh generation; a clear only applies if
// it still belongs to the latest generation, so an older timer never clears a
// newer status. Removing a reader or closing the synchronizer cancels its
// pending clears.
//
// # Concurrency
//
// All handlers and timer callbacks serialize on one lock. Change listeners
// registered with OnChange are called outside that lock, in change order.
package readers
