package comm

import (
	"context"
	"io"
)

// Receiver consumes bytes received from the link.
type Receiver interface {
	Feed(data []byte) error
}

// FeedFunc is func type of Receiver.
type FeedFunc func([]byte) error

// Feed implements Receiver.
func (f FeedFunc) Feed(data []byte) error {
	return f(data)
}

// DefaultReadSize is the size of a single read from the link.
const DefaultReadSize = 256

// Link pumps bytes from a byte stream into a Receiver.
type Link struct {
	Reader   io.Reader
	Receiver Receiver
	ReadSize int
}

// NewLink creates a Link.
func NewLink(r io.Reader, recv Receiver) *Link {
	return &Link{Reader: r, Receiver: recv, ReadSize: DefaultReadSize}
}

// Run reads until the reader fails, the receiver fails, or ctx is done.
// A blocked Read is only interrupted by closing the underlying stream.
func (l *Link) Run(ctx context.Context) error {
	dataCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, dataCh, errCh)
	for {
		select {
		case data := <-dataCh:
			if err := l.Receiver.Feed(data); err != nil {
				return err
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) readLoop(ctx context.Context, dataCh chan []byte, errCh chan error) {
	size := l.ReadSize
	if size <= 0 {
		size = DefaultReadSize
	}
	for {
		buf := make([]byte, size)
		n, err := l.Reader.Read(buf)
		if n > 0 {
			select {
			case dataCh <- buf[:n]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}
