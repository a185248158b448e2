package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksum indicates a received frame doesn't XOR to zero.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrPayloadOverflow indicates a received frame carries more payload
	// than the parser accepts. The frame is skipped.
	ErrPayloadOverflow = errors.New("payload overflow")
	// ErrInvalidLength indicates a two-byte length field of zero.
	ErrInvalidLength = errors.New("invalid frame length")
	// ErrPacketTooLarge indicates a packet can't be encoded in 15 bits of length.
	ErrPacketTooLarge = errors.New("packet too large")
	// ErrWrite matches any WriteError.
	ErrWrite = errors.New("write failed")
)

// WriteError is returned when a frame can't be written to the sink.
type WriteError struct {
	Cmd Command
	Err error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Cmd, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWrite) hold for all WriteErrors.
func (e *WriteError) Is(target error) bool {
	return target == ErrWrite
}
