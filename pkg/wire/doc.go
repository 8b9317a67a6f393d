// Package wire defines the CBOR messages exchanged over an SDK bridge
// connection.
//
// A bridge connects the process hosting the mobile-access SDK (or the
// simulator) to a readers screen. Every message is a CBOR map with integer
// keys; key 1 always holds the message Kind so a receiver can dispatch
// without decoding the whole body.
//
// # Message Kinds
//
// Handshake, client first:
//   - Hello: client name, protocol version and a random nonce
//   - Challenge: server nonce and the server's proof
//   - Proof: the client's proof
//   - Welcome: the session is established
//
// Session:
//   - Request / Response: SDK method calls (getStates)
//   - Event: an SDK event forwarded from the host
//   - Control: ping, pong and close
//
// # Forward Compatibility
//
// Decoding ignores unknown keys, so newer peers can add fields without
// breaking older ones.
package wire
