package sim

import (
	"bytes"
	"io"
	"sync"
)

// pipe is an in-memory byte stream whose writes never block,
// like the OS buffers of a serial port.
type pipe struct {
	lock   sync.Mutex
	cond   *sync.Cond
	buf    bytes.Buffer
	closed bool
}

func newPipe() *pipe {
	p := &pipe{}
	p.cond = sync.NewCond(&p.lock)
	return p
}

func (p *pipe) Read(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	for p.buf.Len() == 0 && !p.closed {
		p.cond.Wait()
	}
	if p.buf.Len() == 0 {
		return 0, io.EOF
	}
	return p.buf.Read(b)
}

func (p *pipe) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	n, _ := p.buf.Write(b)
	p.cond.Broadcast()
	return n, nil
}

func (p *pipe) Close() error {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()
	p.cond.Broadcast()
	return nil
}

// endpoint is one side of a loopback connection.
type endpoint struct {
	in  *pipe
	out *pipe
}

func (e *endpoint) Read(b []byte) (int, error)  { return e.in.Read(b) }
func (e *endpoint) Write(b []byte) (int, error) { return e.out.Write(b) }

func (e *endpoint) Close() error {
	e.in.Close()
	return e.out.Close()
}

// loopback returns the two connected endpoints.
func loopback() (*endpoint, *endpoint) {
	a, b := newPipe(), newPipe()
	return &endpoint{in: a, out: b}, &endpoint{in: b, out: a}
}
