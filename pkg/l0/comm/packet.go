package comm

import (
	"fmt"
	"io"
)

// Command is the command code of a packet.
type Command byte

// Commands understood by the firmware.
const (
	CmdPing            Command = 0x3E
	CmdGetVersion      Command = 0x40
	CmdStartSampling   Command = 0x41
	CmdSetTrigger      Command = 0x42
	CmdSetHoldoff      Command = 0x43
	CmdSetTrigInvert   Command = 0x44 // superseded by CmdSetFlags
	CmdSetVref         Command = 0x45
	CmdSetPrescaler    Command = 0x46
	CmdGetParameters   Command = 0x47
	CmdSetSamples      Command = 0x48
	CmdSetAutoTrig     Command = 0x49
	CmdSetFlags        Command = 0x50
	CmdVersionReply    Command = 0x80
	CmdBufferSeg       Command = 0x81
	CmdParametersReply Command = 0x87
	CmdPong            Command = 0xE3
	CmdError           Command = 0xFF
)

var commandNames = map[Command]string{
	CmdPing:            "PING",
	CmdGetVersion:      "GET_VERSION",
	CmdStartSampling:   "START_SAMPLING",
	CmdSetTrigger:      "SET_TRIGGER",
	CmdSetHoldoff:      "SET_HOLDOFF",
	CmdSetTrigInvert:   "SET_TRIGINVERT",
	CmdSetVref:         "SET_VREF",
	CmdSetPrescaler:    "SET_PRESCALER",
	CmdGetParameters:   "GET_PARAMETERS",
	CmdSetSamples:      "SET_SAMPLES",
	CmdSetAutoTrig:     "SET_AUTOTRIG",
	CmdSetFlags:        "SET_FLAGS",
	CmdVersionReply:    "VERSION_REPLY",
	CmdBufferSeg:       "BUFFER_SEG",
	CmdParametersReply: "PARAMETERS_REPLY",
	CmdPong:            "PONG",
	CmdError:           "ERROR",
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", byte(c))
}

const (
	// MaxShortLen is the largest length encoded in a single byte.
	MaxShortLen = 0x7f
	// MaxFrameLen is the largest length the two-byte form can carry.
	MaxFrameLen = 0x7fff

	longLenFlag byte = 0x80
)

// Packet contains the information of a parsed packet.
type Packet struct {
	Cmd  Command
	Data []byte
}

// Len is the value carried in the length field: command byte plus payload.
func (p *Packet) Len() int {
	return len(p.Data) + 1
}

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() ([]byte, error) {
	n := p.Len()
	if n > MaxFrameLen {
		return nil, ErrPacketTooLarge
	}
	b := make([]byte, 0, n+3)
	if n > MaxShortLen {
		b = append(b, longLenFlag|byte(n>>8)&0x7f, byte(n))
	} else {
		b = append(b, byte(n))
	}
	b = append(b, byte(p.Cmd))
	b = append(b, p.Data...)
	var cksum byte
	for _, v := range b {
		cksum ^= v
	}
	return append(b, cksum), nil
}

// Flusher is implemented by sinks which buffer writes.
type Flusher interface {
	Flush() error
}

// WriteTo writes the encoded frame in a single Write and flushes
// the sink if it supports flushing.
func (p *Packet) WriteTo(w io.Writer) (n int64, err error) {
	b, err := p.Bytes()
	if err != nil {
		return 0, err
	}
	written, err := w.Write(b)
	n = int64(written)
	if err == nil && written < len(b) {
		err = io.ErrShortWrite
	}
	if err == nil {
		if f, ok := w.(Flusher); ok {
			err = f.Flush()
		}
	}
	if err != nil {
		err = &WriteError{Cmd: p.Cmd, Err: err}
	}
	return
}

// WritePacket encodes a packet to w.
func WritePacket(w io.Writer, cmd Command, data ...byte) error {
	_, err := (&Packet{Cmd: cmd, Data: data}).WriteTo(w)
	return err
}
