// Package discovery finds bridge hosts on the local network with mDNS/DNS-SD.
//
// A host running the SDK bridge advertises one service instance:
//
//	_readersbridge._tcp.local.
//
// The instance name is the bridge's display name. TXT records carry:
//   - v: bridge protocol version
//   - name: display name (unabridged; instance names are capped at 63 bytes)
//   - auth: "1" when a pairing secret is required
//   - sdk: label of the SDK behind the bridge (e.g. "simulator")
//
// Screens browse for the service and connect to the first match, or to the
// one whose name matches a filter.
package discovery
