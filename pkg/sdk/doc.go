// Package sdk describes the surface of the mobile-access SDK as seen by the
// readers screen.
//
// The SDK owns Bluetooth/NFC scanning, credentials and the reader protocol.
// This package only models what it reports: a snapshot of active state codes
// (GetStates) and three event streams.
//
//   - sdkStateChanged: the full set of active states plus the scanning flag
//   - readerUpdated: a reader appeared, changed, or became unavailable
//   - access: progress of an access exchange with a reader
//
// Implementations include the bridge client (pkg/bridge), which proxies a
// remote SDK host, and the simulator (pkg/simulator). Hub is the event
// fan-out both of them build on.
package sdk
