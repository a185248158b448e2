// Package sim emulates an oscilloscope device speaking the serial protocol,
// so the tools can run without hardware.
package sim

import (
	"context"
	"io"
	"math"

	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/l0/comm"
	"github.com/robotalks/oscope.go/pkg/scope"
)

// ADC references.
const (
	RefExternal = 0
	RefAVcc     = 1
	RefInternal = 3
)

// DefaultParams are the parameters after reset.
var DefaultParams = scope.Params{
	TriggerLevel:   128,
	HoldoffSamples: 0,
	ADCRef:         RefAVcc,
	Prescaler:      16,
	NumSamples:     512,
}

// Device emulates the firmware. It's not safe for concurrent use.
type Device struct {
	Version         scope.Version
	Params          scope.Params
	AutoTrigTimeout uint8
	ClockHz         float64
	// Frequency of the signal in Hz.
	Frequency float64
	// Amplitude of the signal relative to the AVcc range.
	Amplitude float64
	// Signal is sampled on the first channel, Signal2 on the second.
	Signal  Signal
	Signal2 Signal
	// MaxPayload limits the size of a buffer.
	MaxPayload int

	phase  Phase
	parser comm.Parser
}

// NewDevice creates a Device in reset state.
func NewDevice() *Device {
	return &Device{
		Version:         scope.Version{Major: 1, Minor: 0},
		Params:          DefaultParams,
		AutoTrigTimeout: 100,
		ClockHz:         16e6,
		Frequency:       1000,
		Amplitude:       0.8,
		Signal:          Sine,
		Signal2:         Square,
		MaxPayload:      comm.DefaultMaxPayload,
	}
}

func errorReply(cmd comm.Command) []comm.Packet {
	return []comm.Packet{{Cmd: comm.CmdError, Data: []byte{byte(cmd)}}}
}

// Handle executes a command and returns the replies.
func (d *Device) Handle(pkt *comm.Packet) []comm.Packet {
	switch pkt.Cmd {
	case comm.CmdPing:
		return []comm.Packet{{Cmd: comm.CmdPong, Data: pkt.Data}}
	case comm.CmdGetVersion:
		return []comm.Packet{{Cmd: comm.CmdVersionReply, Data: []byte{d.Version.Major, d.Version.Minor}}}
	case comm.CmdGetParameters:
		return []comm.Packet{{Cmd: comm.CmdParametersReply, Data: d.Params.Encode()}}
	case comm.CmdStartSampling:
		if buf, ok := d.capture(); ok {
			return []comm.Packet{{Cmd: comm.CmdBufferSeg, Data: buf}}
		}
		return nil
	case comm.CmdSetSamples:
		if len(pkt.Data) < 2 {
			return errorReply(pkt.Cmd)
		}
		d.Params.NumSamples = uint16(pkt.Data[0])<<8 | uint16(pkt.Data[1])
		return nil
	}

	if len(pkt.Data) < 1 {
		return errorReply(pkt.Cmd)
	}
	val := pkt.Data[0]
	switch pkt.Cmd {
	case comm.CmdSetTrigger:
		d.Params.TriggerLevel = val
	case comm.CmdSetHoldoff:
		d.Params.HoldoffSamples = val
	case comm.CmdSetVref:
		d.Params.ADCRef = val
	case comm.CmdSetPrescaler:
		if val == 0 {
			return errorReply(pkt.Cmd)
		}
		d.Params.Prescaler = val
	case comm.CmdSetAutoTrig:
		d.AutoTrigTimeout = val
	case comm.CmdSetFlags:
		d.Params.Flags = scope.Flags(val) & (scope.FlagDualChannel | scope.FlagInvertTrigger)
	case comm.CmdSetTrigInvert:
		if val != 0 {
			d.Params.Flags |= scope.FlagInvertTrigger
		} else {
			d.Params.Flags &^= scope.FlagInvertTrigger
		}
	default:
		return errorReply(pkt.Cmd)
	}
	return nil
}

func (d *Device) gain() float64 {
	if d.Params.ADCRef == RefInternal {
		return d.Amplitude * 5.0 / 1.1
	}
	return d.Amplitude
}

func (d *Device) sample(sig Signal, p Phase) byte {
	return quantize(sig.Level(p), d.gain())
}

// capture returns false when waiting for a trigger in one-shot mode.
func (d *Device) capture() ([]byte, bool) {
	p := d.Params
	channels := 1
	if p.Flags.DualChannel() {
		channels = 2
	}
	n := int(p.NumSamples)
	if limit := d.MaxPayload / channels; d.MaxPayload > 0 && n > limit {
		n = limit
	}
	rate := p.SampleRate(d.ClockHz)
	if rate <= 0 {
		return nil, false
	}
	step, search := 0.0, 2
	if d.Frequency > 0 {
		step = 2 * math.Pi * d.Frequency / rate
		search += int(rate / d.Frequency)
	}

	// search a crossing of the trigger level within one period.
	triggered := false
	prev := d.sample(d.Signal, d.phase)
	for i := search; i > 0; i-- {
		next := d.phase.Advance(step)
		cur := d.sample(d.Signal, next)
		d.phase = next
		if p.Flags.InvertTrigger() {
			triggered = prev > p.TriggerLevel && cur <= p.TriggerLevel
		} else {
			triggered = prev < p.TriggerLevel && cur >= p.TriggerLevel
		}
		if triggered {
			break
		}
		prev = cur
	}
	if !triggered && d.AutoTrigTimeout == 0 {
		return nil, false
	}
	phase := d.phase.Advance(-step * float64(p.HoldoffSamples))

	buf := make([]byte, 0, n*channels)
	for i := 0; i < n; i++ {
		buf = append(buf, d.sample(d.Signal, phase))
		if channels > 1 {
			buf = append(buf, d.sample(d.Signal2, phase))
		}
		phase = phase.Advance(step)
	}
	d.phase = phase
	return buf, true
}

// Feed decodes received bytes and returns the replies.
func (d *Device) Feed(data []byte) (replies []comm.Packet) {
	if d.parser.MaxPayload == 0 {
		d.parser.MaxPayload = comm.DefaultMaxPayload
	}
	for _, b := range data {
		pr := d.parser.Parse(b)
		if pr.Err != nil {
			glog.V(1).Infof("sim: frame dropped: %v", pr.Err)
			continue
		}
		if pr.Packet != nil {
			replies = append(replies, d.Handle(pr.Packet)...)
		}
	}
	return
}

// Serve answers commands received on rw until it fails or ctx is done.
func (d *Device) Serve(ctx context.Context, rw io.ReadWriter) error {
	link := comm.NewLink(rw, comm.FeedFunc(func(data []byte) error {
		for _, reply := range d.Feed(data) {
			if _, err := reply.WriteTo(rw); err != nil {
				return err
			}
		}
		return nil
	}))
	return link.Run(ctx)
}
