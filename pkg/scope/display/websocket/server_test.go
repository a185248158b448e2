package websocket

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/scope/msgs"
)

type freezeRecorder struct {
	msgs.Controller
	lock   sync.Mutex
	frozen []bool
}

func (r *freezeRecorder) SetFreeze(freeze bool) error {
	r.lock.Lock()
	r.frozen = append(r.frozen, freeze)
	r.lock.Unlock()
	return nil
}

func (r *freezeRecorder) calls() []bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]bool(nil), r.frozen...)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	return conn
}

func receive(t *testing.T, conn *websocket.Conn) *Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var ev Event
	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	return &ev
}

func TestServer(t *testing.T) {
	s := NewServer()
	s.ClockHz = 16e6
	rec := &freezeRecorder{}
	s.Controller = rec
	srv := httptest.NewServer(s)
	defer srv.Close()

	s.ParametersReceived(scope.Params{Prescaler: 16, NumSamples: 4, Flags: scope.FlagDualChannel})

	conn := dial(t, srv)
	defer conn.Close()
	ev := receive(t, conn)
	require.Equal(t, EventParams, ev.Type)
	require.NotNil(t, ev.Params)
	require.Equal(t, uint32(4), ev.Params.NumSamples)
	require.True(t, ev.Params.DualChannel)

	s.DisplaySamples([]byte{0, 128, 255, 7})
	ev = receive(t, conn)
	require.Equal(t, EventSamples, ev.Type)
	require.Equal(t, []int{0, 128, 255, 7}, ev.Samples)
	require.True(t, ev.Dual)

	s.TriggerDone()
	require.Equal(t, EventTrigger, receive(t, conn).Type)

	s.StateChanged(scope.StateDisconnected)
	ev = receive(t, conn)
	require.Equal(t, EventState, ev.Type)
	require.Equal(t, "DISCONNECTED", ev.State)

	require.NoError(t, websocket.JSON.Send(conn, &msgs.Control{Op: msgs.OpFreeze, Value: 1}))
	require.Eventually(t, func() bool {
		return len(rec.calls()) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, []bool{true}, rec.calls())

	conn.Close()
	require.Eventually(t, func() bool {
		return s.Clients() == 0
	}, time.Second, time.Millisecond)
}

func TestServerDropsForSlowClient(t *testing.T) {
	s := NewServer()
	s.QueueSize = 2
	c := s.add()
	for n := 0; n < 5; n++ {
		s.DisplaySamples([]byte{byte(n)})
	}
	require.Len(t, c.eventCh, 2)
	require.Equal(t, 3, c.dropped)
	require.Equal(t, []int{0}, (<-c.eventCh).Samples)
	s.remove(c)
	require.Zero(t, s.Clients())
}
