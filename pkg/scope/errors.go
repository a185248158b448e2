package scope

import (
	"errors"
	"fmt"

	"github.com/robotalks/oscope.go/pkg/l0/comm"
)

var (
	// ErrNotConnected indicates no transport is attached to the session.
	ErrNotConnected = errors.New("not connected")
	// ErrDeviceUnresponsive indicates all ping attempts timed out.
	ErrDeviceUnresponsive = errors.New("device unresponsive")
	// ErrConnectionLost indicates the transport failed while reading.
	ErrConnectionLost = errors.New("connection lost")
	// ErrShortPayload indicates a reply is shorter than its fixed layout.
	ErrShortPayload = errors.New("short payload")
)

// DeviceError is reported when the device replies with an ERROR packet.
type DeviceError struct {
	Data []byte
}

// Error implements error.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error % x", e.Data)
}

// PayloadError reports a reply which couldn't be decoded.
type PayloadError struct {
	Cmd comm.Command
	Err error
}

// Error implements error.
func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

// Unwrap returns the cause.
func (e *PayloadError) Unwrap() error {
	return e.Err
}

func connectionLost(err error) error {
	return fmt.Errorf("%w: %v", ErrConnectionLost, err)
}
