package sim

import (
	"flag"
	"log"

	"github.com/robotalks/oscope.go/pkg/env"
	"github.com/robotalks/oscope.go/pkg/scope"
)

// Config defines the simulated signal.
type Config struct {
	Waveform  string  `toml:"waveform"`
	Waveform2 string  `toml:"waveform2"`
	Frequency float64 `toml:"frequency"`
	Amplitude float64 `toml:"amplitude"`
}

var defaultConfig = Config{
	Waveform:  "sine",
	Waveform2: "square",
	Frequency: 1000,
	Amplitude: 0.8,
}

func init() {
	if err := env.LoadSection("sim", &defaultConfig); err != nil {
		log.Fatalf("config %s: %v", env.ConfigFile(), err)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Waveform, "sim-wave", defaultConfig.Waveform, "Simulated signal: sine, square, sawtooth or triangle.")
	flag.Float64Var(&defaultConfig.Frequency, "sim-freq", defaultConfig.Frequency, "Frequency (Hz) of the simulated signal.")
	flag.Float64Var(&defaultConfig.Amplitude, "sim-amplitude", defaultConfig.Amplitude, "Amplitude of the simulated signal, 1 is full range.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewDevice creates a Device using the config.
func (c *Config) NewDevice(clockHz float64) (*Device, error) {
	sig, err := SignalByName(c.Waveform)
	if err != nil {
		return nil, err
	}
	sig2, err := SignalByName(c.Waveform2)
	if err != nil {
		return nil, err
	}
	d := NewDevice()
	d.Signal, d.Signal2 = sig, sig2
	d.Frequency, d.Amplitude = c.Frequency, c.Amplitude
	if clockHz > 0 {
		d.ClockHz = clockHz
	}
	return d, nil
}

// Wrap adds the simulated port to a transport.
func (c *Config) Wrap(t scope.Transport, clockHz float64) (*Transport, error) {
	if _, err := c.NewDevice(clockHz); err != nil {
		return nil, err
	}
	return &Transport{
		Fallback:  t,
		NewDevice: func() *Device {
			d, _ := c.NewDevice(clockHz)
			return d
		},
	}, nil
}
