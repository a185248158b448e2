package sim

import (
	"context"
	"fmt"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/scope"
)

// PortName is the name of the simulated port.
const PortName = "sim"

// Transport adds the simulated port to another transport.
type Transport struct {
	Fallback  scope.Transport
	NewDevice func() *Device
}

// Open implements scope.Transport.
func (t *Transport) Open(name string) (io.ReadWriteCloser, error) {
	if name != PortName {
		if t.Fallback == nil {
			return nil, fmt.Errorf("unknown port %q", name)
		}
		return t.Fallback.Open(name)
	}
	newDevice := t.NewDevice
	if newDevice == nil {
		newDevice = NewDevice
	}
	return Start(newDevice()), nil
}

// List implements scope.Transport.
func (t *Transport) List() ([]string, error) {
	var ports []string
	if t.Fallback != nil {
		var err error
		if ports, err = t.Fallback.List(); err != nil {
			return nil, err
		}
	}
	return append(ports, PortName), nil
}

// Start runs the device on a loopback connection and returns the host side.
// The device stops when the host side is closed.
func Start(d *Device) io.ReadWriteCloser {
	host, dev := loopback()
	go func() {
		defer dev.Close()
		err := d.Serve(context.Background(), dev)
		glog.V(1).Infof("sim: device stopped: %v", err)
	}()
	return host
}
