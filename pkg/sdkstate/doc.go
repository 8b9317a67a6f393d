// Package sdkstate maps the state codes reported by the mobile-access SDK to
// the text shown on the readers screen.
//
// The table lives in states.yaml and is compiled into states_gen.go by
// cmd/sdkstate-gen. Codes missing from the table are shown verbatim, so a
// newer SDK reporting a state this package does not know yet still produces a
// visible message.
//
// # Snapshot semantics
//
// The SDK always reports the full set of active states. Messages converts one
// such snapshot into display messages; callers replace their message list with
// the result rather than merging it into the previous one.
package sdkstate
