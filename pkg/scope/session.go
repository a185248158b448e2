package scope

import (
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/l0/comm"
)

// State is the protocol state of a Session.
type State int

// Session states.
const (
	StateDisconnected State = iota
	StatePinging
	StateAwaitingVersion
	StateAwaitingParameters
	StateSampling
)

var stateNames = [...]string{
	StateDisconnected:       "DISCONNECTED",
	StatePinging:            "PINGING",
	StateAwaitingVersion:    "AWAITING_VERSION",
	StateAwaitingParameters: "AWAITING_PARAMETERS",
	StateSampling:           "SAMPLING",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// Stats counts session activity since the last Connect.
type Stats struct {
	Frames       int
	DecodeErrors int
	Buffers      int
	Requests     int
	Pings        int
}

// Session is the protocol conversation with one device connection.
type Session struct {
	Protocol  Protocol
	Displayer Displayer
	Notifier  StateNotifier
	Errors    ErrorHandler
	Scheduler Scheduler

	lock          sync.Mutex
	w             io.Writer
	state         State
	parser        comm.Parser
	params        Params
	version       Version
	dualChannel   bool
	triggerInvert bool
	oneShot       bool
	inRequest     bool
	delayRequest  bool
	freeze        bool
	pingAttempts  int
	pingTimer     Timer
	timerGen      uint64
	stats         Stats
	done          chan struct{}
	err           error
}

// NewSession creates a Session with default protocol constants.
func NewSession(disp Displayer) *Session {
	return &Session{
		Protocol:  DefaultProtocol(),
		Displayer: disp,
		Scheduler: RealTime,
	}
}

// Connect attaches the session to a transport sink and starts the device
// bring-up by pinging it.
func (s *Session) Connect(w io.Writer) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.disconnect(nil)
	s.reset()
	s.w = w
	s.done, s.err = make(chan struct{}), nil
	s.pingAttempts = s.Protocol.PingAttempts
	s.setState(StatePinging)
	glog.Info("pinging device")
	if err := s.ping(); err != nil {
		s.disconnect(err)
		return err
	}
	return nil
}

// Close detaches the transport. Pending timers are cancelled and any
// partially decoded frame is dropped.
func (s *Session) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.disconnect(nil)
}

// ConnectionLost terminates the session after a transport read failure.
func (s *Session) ConnectionLost(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.w == nil {
		return
	}
	glog.Errorf("connection lost: %v", err)
	s.disconnect(connectionLost(err))
}

// Done is closed when the current connection ends.
func (s *Session) Done() <-chan struct{} {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
		close(s.done)
	}
	return s.done
}

// Err returns why the current connection ended, nil if closed explicitly.
func (s *Session) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}

// State gets the protocol state.
func (s *Session) State() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// Params gets the last parameters reported by the device.
func (s *Session) Params() Params {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.params
}

// Version gets the firmware version.
func (s *Session) Version() Version {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.version
}

// Stats gets a snapshot of counters.
func (s *Session) Stats() Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stats
}

// InRequest indicates a sampling request is in flight.
func (s *Session) InRequest() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.inRequest
}

// Feed implements comm.Receiver. It decodes the received bytes and
// dispatches complete packets. Errors returned are write failures of
// commands issued in response; decode failures are only reported.
func (s *Session) Feed(data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, b := range data {
		if s.w == nil {
			return nil
		}
		pr := s.parser.Parse(b)
		if pr.Err != nil {
			s.stats.DecodeErrors++
			glog.Warningf("frame dropped: %v", pr.Err)
			s.report(pr.Err)
			continue
		}
		if pr.Packet == nil {
			continue
		}
		s.stats.Frames++
		if err := s.handlePacket(pr.Packet); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) handlePacket(pkt *comm.Packet) error {
	glog.V(2).Infof("RCV %s (%d bytes) in %s", pkt.Cmd, len(pkt.Data), s.state)

	var paramsOK bool
	switch pkt.Cmd {
	case comm.CmdParametersReply:
		paramsOK = s.updateParams(pkt.Data)
	case comm.CmdError:
		glog.Warningf("device error: % x", pkt.Data)
		s.report(&DeviceError{Data: pkt.Data})
		return nil
	}

	switch s.state {
	case StatePinging:
		if pkt.Cmd != comm.CmdPong {
			glog.Warningf("invalid packet %s in state %s, expecting %s", pkt.Cmd, s.state, comm.CmdPong)
			return nil
		}
		s.stopTimer()
		glog.Info("got ping reply")
		if err := s.send(comm.CmdGetVersion); err != nil {
			return err
		}
		s.setState(StateAwaitingVersion)
	case StateAwaitingVersion:
		if pkt.Cmd != comm.CmdVersionReply {
			glog.Warningf("invalid packet %s in state %s", pkt.Cmd, s.state)
			return nil
		}
		s.version = decodeVersion(pkt.Data)
		glog.Infof("got version: %s", s.version)
		if err := s.send(comm.CmdGetParameters); err != nil {
			return err
		}
		s.setState(StateAwaitingParameters)
	case StateAwaitingParameters:
		if !paramsOK {
			if pkt.Cmd != comm.CmdParametersReply {
				glog.Warningf("invalid packet %s in state %s", pkt.Cmd, s.state)
			}
			return nil
		}
		if err := s.requestSamples(); err != nil {
			return err
		}
		s.setState(StateSampling)
	case StateSampling:
		if pkt.Cmd == comm.CmdBufferSeg {
			return s.handleBuffer(pkt.Data)
		}
	}
	return nil
}

func (s *Session) updateParams(data []byte) bool {
	p, err := DecodeParams(data)
	if err != nil {
		glog.Warningf("bad parameters reply: %v", err)
		s.report(&PayloadError{Cmd: comm.CmdParametersReply, Err: err})
		return false
	}
	s.params = p
	s.triggerInvert = p.Flags.InvertTrigger()
	s.dualChannel = p.Flags.DualChannel()
	glog.Infof("parameters: %s", p)
	if d := s.Displayer; d != nil {
		d.ParametersReceived(p)
	}
	return true
}

func (s *Session) handleBuffer(data []byte) (err error) {
	s.stats.Buffers++
	d := s.Displayer
	if d != nil {
		d.DisplaySamples(data)
	}
	switch {
	case s.oneShot && !s.delayRequest:
		s.inRequest = false
		if d != nil {
			d.TriggerDone()
		}
	case !s.freeze:
		err = s.requestSamples()
	default:
		s.inRequest = false
	}
	s.delayRequest = false
	return
}

func (s *Session) requestSamples() error {
	if err := s.send(comm.CmdStartSampling); err != nil {
		return err
	}
	s.stats.Requests++
	s.inRequest = true
	return nil
}

func (s *Session) send(cmd comm.Command, data ...byte) error {
	if s.w == nil {
		return ErrNotConnected
	}
	glog.V(2).Infof("SND %s (%d bytes)", cmd, len(data))
	return comm.WritePacket(s.w, cmd, data...)
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	glog.V(1).Infof("state %s -> %s", s.state, state)
	s.state = state
	if n := s.Notifier; n != nil {
		n.StateChanged(state)
	}
}

func (s *Session) report(err error) {
	if h := s.Errors; h != nil {
		h.HandleError(err)
	}
}

func (s *Session) reset() {
	s.parser = comm.Parser{MaxPayload: s.Protocol.MaxPayload}
	s.params, s.version, s.stats = Params{}, Version{}, Stats{}
	s.dualChannel, s.triggerInvert = false, false
	s.oneShot, s.inRequest, s.delayRequest = false, false, false
}

// disconnect ends the current connection, err is the reason reported by Err.
func (s *Session) disconnect(err error) {
	s.stopTimer()
	s.w = nil
	s.parser.Reset()
	s.inRequest, s.delayRequest = false, false
	s.setState(StateDisconnected)
	if s.done != nil {
		select {
		case <-s.done:
		default:
			s.err = err
			close(s.done)
		}
	}
}
