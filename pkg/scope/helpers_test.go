package scope

import (
	"errors"
	"sync"
	"time"

	"github.com/robotalks/oscope.go/pkg/l0/comm"
)

// sink records what the session writes.
type sink struct {
	lock    sync.Mutex
	parser  comm.Parser
	packets []*comm.Packet
	raw     []byte
	failErr error
}

func (s *sink) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.failErr != nil {
		return 0, s.failErr
	}
	s.raw = append(s.raw, p...)
	for _, b := range p {
		if pr := s.parser.Parse(b); pr.Packet != nil {
			s.packets = append(s.packets, pr.Packet)
		}
	}
	return len(p), nil
}

func (s *sink) fail(err error) {
	s.lock.Lock()
	s.failErr = err
	s.lock.Unlock()
}

func (s *sink) cmds() []comm.Command {
	s.lock.Lock()
	defer s.lock.Unlock()
	cmds := make([]comm.Command, 0, len(s.packets))
	for _, pkt := range s.packets {
		cmds = append(cmds, pkt.Cmd)
	}
	return cmds
}

func (s *sink) last() *comm.Packet {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.packets) == 0 {
		return nil
	}
	return s.packets[len(s.packets)-1]
}

func (s *sink) clear() {
	s.lock.Lock()
	s.packets, s.raw = nil, nil
	s.lock.Unlock()
}

func (s *sink) zeros() (n int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, b := range s.raw {
		if b == 0 {
			n++
		}
	}
	return
}

// manualTimer fires only when told so.
type manualTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped
	t.stopped = true
	return active
}

type manualScheduler struct {
	lock   sync.Mutex
	timers []*manualTimer
}

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	m.lock.Lock()
	defer m.lock.Unlock()
	t := &manualTimer{d: d, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualScheduler) count() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.timers)
}

func (m *manualScheduler) timer(n int) *manualTimer {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.timers[n]
}

// fireLast runs the latest timer callback, even if stopped, like a timer
// which already fired while Stop was racing with it.
func (m *manualScheduler) fireLast() {
	m.lock.Lock()
	t := m.timers[len(m.timers)-1]
	m.lock.Unlock()
	t.fn()
}

type recorder struct {
	lock     sync.Mutex
	buffers  [][]byte
	params   []Params
	triggers int
	states   []State
	errs     []error
}

func (r *recorder) DisplaySamples(buf []byte) {
	r.lock.Lock()
	r.buffers = append(r.buffers, buf)
	r.lock.Unlock()
}

func (r *recorder) TriggerDone() {
	r.lock.Lock()
	r.triggers++
	r.lock.Unlock()
}

func (r *recorder) ParametersReceived(p Params) {
	r.lock.Lock()
	r.params = append(r.params, p)
	r.lock.Unlock()
}

func (r *recorder) StateChanged(state State) {
	r.lock.Lock()
	r.states = append(r.states, state)
	r.lock.Unlock()
}

func (r *recorder) HandleError(err error) {
	r.lock.Lock()
	r.errs = append(r.errs, err)
	r.lock.Unlock()
}

func (r *recorder) numBuffers() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.buffers)
}

func (r *recorder) numTriggers() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.triggers
}

func frame(cmd comm.Command, data ...byte) []byte {
	encoded, err := (&comm.Packet{Cmd: cmd, Data: data}).Bytes()
	if err != nil {
		panic(err)
	}
	return encoded
}

var (
	testParams = []byte{10, 20, 0, 3, 0x03, 0xc2, 2}
	errBroken  = errors.New("broken")
)

type testSession struct {
	*Session
	out   *sink
	sched *manualScheduler
	rec   *recorder
}

func newTestSession() *testSession {
	ts := &testSession{out: &sink{}, sched: &manualScheduler{}, rec: &recorder{}}
	ts.Session = NewSession(ts.rec)
	ts.Scheduler = ts.sched
	ts.Notifier = ts.rec
	ts.Errors = ts.rec
	return ts
}

func (ts *testSession) feed(frames ...[]byte) error {
	for _, f := range frames {
		if err := ts.Feed(f); err != nil {
			return err
		}
	}
	return nil
}

// sampling brings the session to SAMPLING.
func (ts *testSession) sampling() error {
	if err := ts.Connect(ts.out); err != nil {
		return err
	}
	return ts.feed(
		frame(comm.CmdPong, 1, 2, 3, 4),
		frame(comm.CmdVersionReply, 1, 0),
		frame(comm.CmdParametersReply, testParams...),
	)
}
