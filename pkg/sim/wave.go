package sim

import (
	"fmt"
	"math"
)

// Signal produces a level in [-1, 1] at a phase.
type Signal interface {
	Level(Phase) float64
}

// SignalFunc is func type of Signal.
type SignalFunc func(Phase) float64

// Level implements Signal.
func (f SignalFunc) Level(p Phase) float64 {
	return f(p)
}

// Signals.
var (
	Sine = SignalFunc(func(p Phase) float64 {
		return p.Sin()
	})
	Square = SignalFunc(func(p Phase) float64 {
		if p.Cycle() < 0.5 {
			return 1
		}
		return -1
	})
	Sawtooth = SignalFunc(func(p Phase) float64 {
		return 2*p.Cycle() - 1
	})
	Triangle = SignalFunc(func(p Phase) float64 {
		return 1 - 4*math.Abs(p.Cycle()-0.5)
	})
)

// SignalByName finds a signal by name.
func SignalByName(name string) (Signal, error) {
	switch name {
	case "sine", "":
		return Sine, nil
	case "square":
		return Square, nil
	case "sawtooth":
		return Sawtooth, nil
	case "triangle":
		return Triangle, nil
	}
	return nil, fmt.Errorf("unknown waveform %q", name)
}

// quantize maps a level to an 8-bit ADC reading.
func quantize(level, amplitude float64) byte {
	v := 127.5 + level*amplitude*127.5
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}
