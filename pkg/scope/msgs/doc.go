// Package msgs defines the messages exchanged with remote displays.
//
// Producer: scoped bridge (samples, parameters, trigger and state events)
// Consumer: remote displays, which may send Control messages back.
package msgs
