package scope

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/oscope.go/pkg/framework"
	"github.com/robotalks/oscope.go/pkg/l0/comm"
)

// Transport opens byte streams by port name.
type Transport interface {
	Open(name string) (io.ReadWriteCloser, error)
	List() ([]string, error)
}

// Conn binds a Session to a port of a Transport and runs the read loop.
type Conn struct {
	Transport Transport
	Session   *Session

	lock     sync.Mutex
	name     string
	cancel   context.CancelFunc
	readDone chan struct{}
}

// NewConn creates a Conn.
func NewConn(t Transport, s *Session) *Conn {
	return &Conn{Transport: t, Session: s}
}

// Ports lists available ports.
func (c *Conn) Ports() ([]string, error) {
	return c.Transport.List()
}

// PortName returns the name of the attached port, empty if none.
func (c *Conn) PortName() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.name
}

// ChangePort tears down the current port and session, then opens the named
// port and starts the device bring-up on it.
func (c *Conn) ChangePort(name string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.teardown()

	port, err := c.Transport.Open(name)
	if err != nil {
		glog.Errorf("open port %s failed: %v", name, err)
		return err
	}
	if err = c.Session.Connect(port); err != nil {
		port.Close()
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.name, c.cancel, c.readDone = name, cancel, make(chan struct{})
	go c.read(ctx, port, c.readDone)
	go c.watch(ctx, cancel, c.Session.Done(), c.readDone)
	return nil
}

// watch detaches the port when the session ends on its own: pings
// exhausted, connection lost or a failed write.
func (c *Conn) watch(ctx context.Context, cancel context.CancelFunc, sessDone <-chan struct{}, readDone chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-sessDone:
	}
	cancel()
	<-readDone
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.readDone != readDone {
		// already torn down or replaced.
		return
	}
	glog.Infof("port %s detached: %v", c.name, c.Session.Err())
	c.name, c.cancel, c.readDone = "", nil, nil
}

// Close detaches the port and closes the session.
func (c *Conn) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.teardown()
	return nil
}

// Done is closed when the current connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.Session.Done()
}

// Err returns why the current connection ended.
func (c *Conn) Err() error {
	return c.Session.Err()
}

func (c *Conn) teardown() {
	if c.cancel != nil {
		c.cancel()
		<-c.readDone
		c.cancel, c.readDone = nil, nil
	}
	c.Session.Close()
	c.name = ""
}

func (c *Conn) read(ctx context.Context, port io.ReadWriteCloser, done chan struct{}) {
	defer close(done)
	link := comm.NewLink(port, c.Session)
	err := fx.RunWithContextCloser(ctx, port, func() error {
		return link.Run(ctx)
	})
	if ctx.Err() != nil {
		return
	}
	c.Session.ConnectionLost(err)
}
