// Package comm provides L0 protocol support.
package comm

// L0 protocol is communicated between the oscilloscope firmware and the host
// over a reliable ordered byte stream (a serial port).
//
// Every frame is laid out as
//
//	[Length: 1 or 2 bytes][Command: 1 byte][Payload: 0..N bytes][Checksum: 1 byte]
//
// Length counts the command byte plus the payload. Values up to 127 take a
// single byte with bit 7 clear. Larger values take two bytes, the first one
// carrying bit 7 and the high 7 bits, the second one the low 8 bits.
// The checksum makes the XOR of all bytes in the frame zero.
//
// A length byte of zero is not a frame. It's used as a resynchronization
// marker and the host writes a run of them to reset the device's decoder.
