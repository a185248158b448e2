package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/oscope.go/pkg/framework"
	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/scope/msgs"
)

// Event types.
const (
	EventSamples = "samples"
	EventParams  = "params"
	EventTrigger = "trigger"
	EventState   = "state"
)

// Event is sent to clients as JSON.
type Event struct {
	Type    string           `json:"type"`
	Samples []int            `json:"samples,omitempty"`
	Dual    bool             `json:"dual,omitempty"`
	Params  *msgs.Parameters `json:"params,omitempty"`
	State   string           `json:"state,omitempty"`
}

// DefaultQueueSize is the number of events buffered per client.
const DefaultQueueSize = 16

type client struct {
	eventCh chan *Event
	dropped int
}

// Server is a scope.Displayer streaming events to websocket clients.
// Clients may send msgs.Control as JSON, applied to Controller.
type Server struct {
	Controller msgs.Controller
	ClockHz    float64
	QueueSize  int

	lock    sync.Mutex
	clients map[*client]struct{}
	params  *msgs.Parameters
	dual    bool
}

// NewServer creates a Server.
func NewServer() *Server {
	return &Server{
		ClockHz:   scope.Default().ClockHz,
		QueueSize: DefaultQueueSize,
		clients:   make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.clients)
}

// DisplaySamples implements scope.Displayer.
func (s *Server) DisplaySamples(buf []byte) {
	samples := make([]int, len(buf))
	for n, b := range buf {
		samples[n] = int(b)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.broadcast(&Event{Type: EventSamples, Samples: samples, Dual: s.dual})
}

// TriggerDone implements scope.Displayer.
func (s *Server) TriggerDone() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.broadcast(&Event{Type: EventTrigger})
}

// ParametersReceived implements scope.Displayer.
func (s *Server) ParametersReceived(p scope.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.params = msgs.NewParameters(p, s.ClockHz)
	s.dual = p.Flags.DualChannel()
	s.broadcast(&Event{Type: EventParams, Params: s.params})
}

// StateChanged implements scope.StateNotifier.
func (s *Server) StateChanged(state scope.State) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.broadcast(&Event{Type: EventState, State: state.String()})
}

// broadcast never blocks, a client which can't keep up loses events.
func (s *Server) broadcast(ev *Event) {
	for c := range s.clients {
		select {
		case c.eventCh <- ev:
		default:
			c.dropped++
			glog.V(2).Infof("websocket client slow, %s dropped", ev.Type)
		}
	}
}

func (s *Server) add() *client {
	size := s.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	c := &client{eventCh: make(chan *Event, size)}
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.clients == nil {
		s.clients = make(map[*client]struct{})
	}
	s.clients[c] = struct{}{}
	if s.params != nil {
		c.eventCh <- &Event{Type: EventParams, Params: s.params}
	}
	return c
}

func (s *Server) remove(c *client) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.clients, c)
	if c.dropped > 0 {
		glog.Infof("websocket client gone, %d events dropped", c.dropped)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Server{Handler: s.serveConn}.ServeHTTP(w, r)
}

func (s *Server) serveConn(conn *websocket.Conn) {
	glog.Infof("websocket client %s connected", conn.Request().RemoteAddr)
	c := s.add()
	defer s.remove(c)
	readDone := make(chan struct{})
	go s.readControls(conn, readDone)
	for {
		select {
		case <-readDone:
			return
		case ev := <-c.eventCh:
			if err := websocket.JSON.Send(conn, ev); err != nil {
				glog.V(1).Infof("websocket send: %v", err)
				return
			}
		}
	}
}

func (s *Server) readControls(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var ctl msgs.Control
		if err := websocket.JSON.Receive(conn, &ctl); err != nil {
			glog.V(1).Infof("websocket receive: %v", err)
			return
		}
		if s.Controller == nil {
			continue
		}
		if err := ctl.Apply(s.Controller); err != nil {
			glog.Warningf("control %s failed: %v", ctl.String(), err)
		}
	}
}

// Listener serves a Server on an address.
type Listener struct {
	Addr   string
	Server *Server
}

// Run implements framework.Runnable.
func (l *Listener) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/scope", l.Server)
	srv := &http.Server{Addr: l.Addr, Handler: mux}
	glog.Infof("websocket listening on %s/scope", l.Addr)
	return fx.RunWithContextCancel(ctx, func() { srv.Close() }, srv.ListenAndServe)
}
