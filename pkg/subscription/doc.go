// Package subscription implements scoped listener registration.
//
// A Topic fans a value out to every registered handler. Registering returns a
// Subscription handle; removing the handle guarantees the handler is never
// invoked again once Remove returns, except for a delivery that was already
// in progress on another goroutine.
//
// # Delivery
//
// Publish snapshots the handler set under a read lock and invokes handlers
// outside of it, in registration order, on the publishing goroutine.
// Handlers may therefore subscribe or unsubscribe from within a callback.
//
// # Scoped Release
//
// A Set collects the subscriptions taken by one owner so they can all be
// released together at teardown.
package subscription
