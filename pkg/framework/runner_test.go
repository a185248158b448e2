package framework

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerStopsOthers(t *testing.T) {
	runErr := errors.New("failed")
	r := NewRunner().Go(
		NamedRun("fail", RunFunc(func(context.Context) error { return runErr })),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	err := r.Wait()
	require.Error(t, err)
	var agg *AggregatedError
	require.True(t, errors.As(err, &agg))
	require.Equal(t, []error{runErr}, agg.Errors)
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner().Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	r.Stop()
	require.NoError(t, r.Wait())
}

type countCloser struct {
	closed  int32
	unblock chan struct{}
}

func (c *countCloser) Close() error {
	if atomic.AddInt32(&c.closed, 1) == 1 {
		close(c.unblock)
	}
	return nil
}

var _ io.Closer = &countCloser{}

func TestRunWithContextCloser(t *testing.T) {
	c := &countCloser{unblock: make(chan struct{})}
	err := RunWithContextCloser(context.Background(), c, func() error { return io.EOF })
	require.Equal(t, io.EOF, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&c.closed))

	c = &countCloser{unblock: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RunWithContextCloser(ctx, c, func() error {
		<-c.unblock
		return io.ErrClosedPipe
	})
	require.Equal(t, context.Canceled, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&c.closed))
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(errors.New("a"), nil, errors.New("b"))
	require.Equal(t, "Multiple errors:\na\nb", errs.Aggregate().Error())
}
