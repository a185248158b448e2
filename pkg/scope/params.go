package scope

import (
	"encoding/binary"
	"fmt"
)

// Flags is the device flags bitmask.
type Flags byte

// Flag bits.
const (
	FlagInvertTrigger Flags = 1 << 0
	FlagDualChannel   Flags = 1 << 1
)

// InvertTrigger reports whether the trigger fires on a falling edge.
func (f Flags) InvertTrigger() bool {
	return f&FlagInvertTrigger != 0
}

// DualChannel reports whether both channels are sampled.
func (f Flags) DualChannel() bool {
	return f&FlagDualChannel != 0
}

func makeFlags(dualChannel, invertTrigger bool) (f Flags) {
	if dualChannel {
		f |= FlagDualChannel
	}
	if invertTrigger {
		f |= FlagInvertTrigger
	}
	return
}

// Params are the acquisition parameters last reported by the device.
type Params struct {
	TriggerLevel   uint8
	HoldoffSamples uint8
	ADCRef         uint8
	Prescaler      uint8
	NumSamples     uint16
	Flags          Flags
}

const paramsLen = 7

// DecodeParams decodes the payload of a PARAMETERS_REPLY.
func DecodeParams(data []byte) (p Params, err error) {
	if len(data) < paramsLen {
		return p, ErrShortPayload
	}
	p.TriggerLevel = data[0]
	p.HoldoffSamples = data[1]
	p.ADCRef = data[2]
	p.Prescaler = data[3]
	p.NumSamples = binary.BigEndian.Uint16(data[4:6])
	p.Flags = Flags(data[6])
	return
}

// Encode encodes the payload of a PARAMETERS_REPLY.
func (p Params) Encode() []byte {
	data := make([]byte, paramsLen)
	data[0] = p.TriggerLevel
	data[1] = p.HoldoffSamples
	data[2] = p.ADCRef
	data[3] = p.Prescaler
	binary.BigEndian.PutUint16(data[4:6], p.NumSamples)
	data[6] = byte(p.Flags)
	return data
}

// ADC conversion takes 13 ADC clock cycles.
const adcCyclesPerSample = 13

// SampleRate computes the sampling frequency in Hz from the MCU clock.
func (p Params) SampleRate(clockHz float64) float64 {
	if p.Prescaler == 0 {
		return 0
	}
	return clockHz / float64(p.Prescaler) / adcCyclesPerSample
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return fmt.Sprintf("trigger=%d holdoff=%d vref=%d prescaler=%d samples=%d dual=%v invert=%v",
		p.TriggerLevel, p.HoldoffSamples, p.ADCRef, p.Prescaler, p.NumSamples,
		p.Flags.DualChannel(), p.Flags.InvertTrigger())
}

// Version is the firmware version.
type Version struct {
	Major uint8
	Minor uint8
}

func decodeVersion(data []byte) (v Version) {
	if len(data) > 0 {
		v.Major = data[0]
	}
	if len(data) > 1 {
		v.Minor = data[1]
	}
	return
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("OSCOPE %d.%d", v.Major, v.Minor)
}
