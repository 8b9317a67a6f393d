// Package connection keeps a bridge link alive.
//
// A Manager owns the connect function for one remote SDK host. When the
// link drops it retries with exponential backoff until the host answers
// again, the manager is closed, or the connect function reports a
// permanent failure such as a rejected pairing secret.
//
// # Reconnection Strategy
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//  4. Continue at 60s until successful
//  5. Reset to 1s on successful reconnection
//
// # Jitter
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
package connection
