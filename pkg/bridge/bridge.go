// Package bridge keeps a device connected and streams it to the sinks.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/scope"
)

// ErrTooManyAttempts is returned when MaxAttempts connections failed in a row.
var ErrTooManyAttempts = errors.New("too many attempts")

// Bridge reconnects the port whenever the session ends.
type Bridge struct {
	Conn        *scope.Conn
	Port        string
	Backoff     Backoff
	MaxAttempts int
	// OnEnded is called with the reason every time a connection ends.
	OnEnded func(error)

	rng     *rand.Rand
	sampled int32
}

// New creates a Bridge.
func New(conn *scope.Conn, port string, backoff Backoff) *Bridge {
	return &Bridge{
		Conn:    conn,
		Port:    port,
		Backoff: backoff,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StateChanged implements scope.StateNotifier. A connection which reached
// sampling resets the backoff.
func (b *Bridge) StateChanged(state scope.State) {
	if state == scope.StateSampling {
		atomic.StoreInt32(&b.sampled, 1)
	}
}

func (b *Bridge) portName() (string, error) {
	if b.Port != "" {
		return b.Port, nil
	}
	ports, err := b.Conn.Ports()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial ports found")
	}
	return ports[0], nil
}

func (b *Bridge) connect(ctx context.Context) error {
	name, err := b.portName()
	if err != nil {
		return err
	}
	if err = b.Conn.ChangePort(name); err != nil {
		return err
	}
	glog.Infof("port %s opened", name)
	select {
	case <-ctx.Done():
		return nil
	case <-b.Conn.Done():
	}
	if err = b.Conn.Err(); err == nil {
		err = scope.ErrNotConnected
	}
	return err
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.Conn.Close()
	var attempt int
	for {
		atomic.StoreInt32(&b.sampled, 0)
		err := b.connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if h := b.OnEnded; h != nil {
			h(err)
		}
		if atomic.LoadInt32(&b.sampled) != 0 {
			attempt = 0
		}
		attempt++
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return fmt.Errorf("%w: %v", ErrTooManyAttempts, err)
		}
		delay := b.Backoff.NextDelay(attempt, b.rng)
		glog.Warningf("connection ended: %v, retry in %s", err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
