// Package simulator provides a scripted stand-in for the vendor access SDK.
//
// A Simulator implements sdk.SDK. Tests and demos drive it directly
// (SetStates, SeeReader, LoseReader, Access) or play a YAML scenario:
//
//	name: lobby
//	scanning: true
//	initialStates: [bleErrorNoBackgroundLocationPermission]
//	loop: true
//	steps:
//	  - after: 500ms
//	    type: reader
//	    reader: {id: door-1, name: Front door, distance: 1.2}
//	  - after: 1s
//	    type: access
//	    id: door-1
//	    event: started
//	  - after: 800ms
//	    type: access
//	    id: door-1
//	    event: succeeded
//	    message: Access granted
//	  - after: 3s
//	    type: lost
//	    id: door-1
//
// Served through a bridge.Server, the simulator lets a screen run without
// the native SDK.
package simulator
