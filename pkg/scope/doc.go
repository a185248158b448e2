// Package scope drives an oscilloscope over the L0 protocol.
//
// A Session runs the device bring-up (ping, version, parameters) and then the
// sampling loop, handing sample buffers to a Displayer. A Conn binds a Session
// to a serial port and owns the read loop.
package scope
