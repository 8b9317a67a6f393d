// Package bridge streams SDK events between a process that hosts the
// access SDK and a process that renders the readers screen.
//
// The Server side wraps any sdk.SDK (the native SDK binding or the
// simulator), forwards every event to each connected screen and answers
// getStates requests. The Client side implements sdk.SDK itself, so a
// readers.Synchronizer cannot tell a remote SDK from a local one.
//
// # Pairing
//
// Both sides may share a pairing secret. The handshake is
//
//	screen                         host
//	  | Hello{version, nonceC}       |
//	  |----------------------------->|
//	  | Challenge{nonceS, proofS}    |
//	  |<-----------------------------|
//	  | Proof{proofC}                |
//	  |----------------------------->|
//	  | Welcome{sessionID}           |
//	  |<-----------------------------|
//
// with key = HKDF-SHA256(secret, nonceC||nonceS, "readers-bridge/1") and
// proofX = HMAC-SHA256(key, label||nonceC||nonceS). A host without a
// secret sends no proof and accepts an empty one.
//
// # Reconnection
//
// The client reconnects with exponential backoff (see package connection).
// After every reconnect it calls getStates and publishes the answer as a
// synthetic sdkStateChanged event, so subscribers reseed their message list.
package bridge
