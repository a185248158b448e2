package scope

import "time"

// Protocol holds the constants of the session protocol.
type Protocol struct {
	// PingTimeout is how long to wait for a PONG.
	PingTimeout time.Duration
	// PingAttempts is the number of pings before giving up.
	PingAttempts int
	// PingPayload is echoed by the device.
	PingPayload []byte
	// ResetLen is the number of resync markers written before a retry.
	ResetLen int
	// AutoTrigTimeout is sent with SET_AUTOTRIG when leaving one-shot mode.
	AutoTrigTimeout uint8
	// MaxPayload bounds the payload of received frames.
	MaxPayload int
}

// DefaultProtocol returns the protocol constants used by the firmware.
func DefaultProtocol() Protocol {
	return Protocol{
		PingTimeout:     2 * time.Second,
		PingAttempts:    3,
		PingPayload:     []byte{1, 2, 3, 4},
		ResetLen:        512,
		AutoTrigTimeout: 100,
		MaxPayload:      1024,
	}
}
