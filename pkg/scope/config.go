package scope

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/oscope.go/pkg/env"
	"github.com/robotalks/oscope.go/pkg/l0/serial"
)

// Config defines the port and protocol settings.
type Config struct {
	Port         string        `toml:"port"`
	BaudRate     int           `toml:"baud"`
	OpenTimeout  time.Duration `toml:"open_timeout"`
	PingTimeout  time.Duration `toml:"ping_timeout"`
	PingAttempts int           `toml:"ping_attempts"`
	MaxPayload   int           `toml:"max_payload"`
	// ClockHz is the MCU clock, used to compute the sample rate.
	ClockHz float64 `toml:"clock_hz"`
}

var defaultConfig = Config{
	BaudRate:     serial.DefaultBaudRate,
	OpenTimeout:  serial.DefaultOpenTimeout,
	PingTimeout:  2 * time.Second,
	PingAttempts: 3,
	MaxPayload:   1024,
	ClockHz:      16e6,
}

func init() {
	if err := env.LoadSection("scope", &defaultConfig); err != nil {
		log.Fatalf("config %s: %v", env.ConfigFile(), err)
	}
	if val := os.Getenv("OSCOPE_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("OSCOPE_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.BaudRate = baud
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the oscilloscope.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.OpenTimeout, "open-timeout", defaultConfig.OpenTimeout, "Timeout opening the serial port.")
	flag.DurationVar(&defaultConfig.PingTimeout, "ping-timeout", defaultConfig.PingTimeout, "Timeout waiting for a ping reply.")
	flag.IntVar(&defaultConfig.PingAttempts, "ping-attempts", defaultConfig.PingAttempts, "Ping attempts before giving up.")
	flag.Float64Var(&defaultConfig.ClockHz, "clock", defaultConfig.ClockHz, "MCU clock in Hz.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Protocol builds the protocol constants from the config.
func (c *Config) Protocol() Protocol {
	p := DefaultProtocol()
	if c.PingTimeout > 0 {
		p.PingTimeout = c.PingTimeout
	}
	if c.PingAttempts > 0 {
		p.PingAttempts = c.PingAttempts
	}
	if c.MaxPayload > 0 {
		p.MaxPayload = c.MaxPayload
	}
	return p
}

// NewTransport creates the serial transport.
func (c *Config) NewTransport() *serial.Transport {
	return &serial.Transport{BaudRate: c.BaudRate, OpenTimeout: c.OpenTimeout}
}

// NewSession creates a Session using the config.
func (c *Config) NewSession(disp Displayer) *Session {
	s := NewSession(disp)
	s.Protocol = c.Protocol()
	return s
}

// NewConn creates a Conn over serial ports using the config.
func (c *Config) NewConn(disp Displayer) *Conn {
	return NewConn(c.NewTransport(), c.NewSession(disp))
}
