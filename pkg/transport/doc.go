// Package transport carries bridge messages between an SDK host and a
// readers screen.
//
// The transport layer handles:
//   - TCP connections, optionally wrapped in TLS
//   - Length-prefixed message framing
//   - Keep-alive ping/pong for connection liveness
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages (wire)      │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│        TLS (optional)          │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// Peer authentication is not done here; the bridge handshake proves
// knowledge of a shared pairing secret on top of the framed connection.
//
// # Keep-Alive
//
// Connection liveness is monitored using ping/pong messages:
//   - Ping interval: 15 seconds
//   - Pong timeout: 5 seconds
//   - Max missed pongs: 3
//   - Maximum detection delay: 50 seconds
package transport
