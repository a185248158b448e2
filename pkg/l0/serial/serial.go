// Package serial provides the serial port transport for the L0 protocol.
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

var (
	// ErrOpenFailed matches any OpenError.
	ErrOpenFailed = errors.New("port open failed")
	// ErrOpenTimeout indicates the port didn't open in time.
	ErrOpenTimeout = errors.New("open timeout")
)

// OpenError is returned when a port can't be opened.
type OpenError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Name, e.Err)
}

// Unwrap returns the cause.
func (e *OpenError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrOpenFailed) hold for all OpenErrors.
func (e *OpenError) Is(target error) bool {
	return target == ErrOpenFailed
}

// Config is the serial port configuration.
type Config struct {
	Name        string
	BaudRate    int
	OpenTimeout time.Duration
}

// Default settings of the oscilloscope firmware.
const (
	DefaultBaudRate    = 115200
	DefaultOpenTimeout = 2 * time.Second
)

// DefaultConfig returns the configuration for a named port.
func DefaultConfig(name string) *Config {
	return &Config{
		Name:        name,
		BaudRate:    DefaultBaudRate,
		OpenTimeout: DefaultOpenTimeout,
	}
}

// Port is an open serial port.
type Port struct {
	port serial.Port
	name string
}

// Open opens a serial port in 8N1 mode.
func Open(cfg *Config) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if mode.BaudRate == 0 {
		mode.BaudRate = DefaultBaudRate
	}

	type result struct {
		port serial.Port
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		p, err := serial.Open(cfg.Name, mode)
		resCh <- result{p, err}
	}()

	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = DefaultOpenTimeout
	}
	select {
	case res := <-resCh:
		if res.err != nil {
			return nil, &OpenError{Name: cfg.Name, Err: res.err}
		}
		glog.Infof("port %s open successfully", cfg.Name)
		return &Port{port: res.port, name: cfg.Name}, nil
	case <-time.After(timeout):
		go func() {
			// close it when it eventually opens.
			if res := <-resCh; res.err == nil {
				res.port.Close()
			}
		}()
		return nil, &OpenError{Name: cfg.Name, Err: ErrOpenTimeout}
	}
}

// Name returns the port name.
func (p *Port) Name() string {
	return p.name
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err == nil && n == 0 {
		// no read timeout is configured, an empty read means the port is gone.
		return 0, io.EOF
	}
	return n, err
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Flush waits until all written bytes are transmitted.
func (p *Port) Flush() error {
	return p.port.Drain()
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.port.Close()
}

// List enumerates available serial ports.
func List() ([]string, error) {
	return serial.GetPortsList()
}

// Transport opens serial ports by name with shared settings.
type Transport struct {
	BaudRate    int
	OpenTimeout time.Duration
}

// Open opens the named port.
func (t *Transport) Open(name string) (io.ReadWriteCloser, error) {
	port, err := Open(&Config{Name: name, BaudRate: t.BaudRate, OpenTimeout: t.OpenTimeout})
	if err != nil {
		return nil, err
	}
	return port, nil
}

// List enumerates available serial ports.
func (t *Transport) List() ([]string, error) {
	return List()
}
