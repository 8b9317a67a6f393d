// Package dwell implements the one-shot timers that clear transient reader
// status after it has been visible for a while.
//
// # Timer Lifecycle
//
// A timer is keyed by reader ID and tagged with the status generation it was
// scheduled for. When it fires, the expiry callback receives that generation
// so the owner can ignore clears for a status that has since been replaced.
//
// # Timer Replacement
//
// Scheduling a timer for a key that already has one stops the old timer.
// There is no stacking: at most one timer is pending per key.
//
// # Cancellation
//
// Timers are cancelled explicitly when the reader disappears and all at once
// on teardown. A cancelled timer never invokes the expiry callback, even if
// its underlying time.Timer already fired and is waiting for the lock.
package dwell
