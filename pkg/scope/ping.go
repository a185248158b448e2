package scope

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/l0/comm"
)

func (s *Session) scheduler() Scheduler {
	if s.Scheduler != nil {
		return s.Scheduler
	}
	return RealTime
}

// ping sends PING and arms the ping timeout.
func (s *Session) ping() error {
	if err := s.send(comm.CmdPing, s.Protocol.PingPayload...); err != nil {
		return err
	}
	s.stats.Pings++
	s.stopTimer()
	gen := s.timerGen
	s.pingTimer = s.scheduler().AfterFunc(s.Protocol.PingTimeout, func() {
		s.pingTimeout(gen)
	})
	return nil
}

// stopTimer cancels the ping timeout. A callback already fired but still
// waiting for the lock sees a newer generation and does nothing.
func (s *Session) stopTimer() {
	if s.pingTimer != nil {
		s.pingTimer.Stop()
		s.pingTimer = nil
	}
	s.timerGen++
}

func (s *Session) pingTimeout(gen uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if gen != s.timerGen || s.state != StatePinging {
		return
	}
	s.pingTimer = nil
	if s.pingAttempts--; s.pingAttempts > 0 {
		glog.Warningf("ping timeout, resetting and pinging again (%d attempts left)", s.pingAttempts)
		err := s.resetTarget()
		if err == nil {
			err = s.ping()
		}
		if err != nil {
			glog.Errorf("ping retry failed: %v", err)
			s.disconnect(err)
		}
		return
	}
	glog.Error("oscilloscope not responding")
	s.disconnect(ErrDeviceUnresponsive)
}

// resetTarget writes resync markers to bring the device decoder
// back to the start of a frame.
func (s *Session) resetTarget() error {
	if s.w == nil {
		return ErrNotConnected
	}
	if s.Protocol.ResetLen <= 0 {
		return nil
	}
	if _, err := s.w.Write(make([]byte, s.Protocol.ResetLen)); err != nil {
		return fmt.Errorf("%w: reset: %v", comm.ErrWrite, err)
	}
	if f, ok := s.w.(comm.Flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("%w: reset: %v", comm.ErrWrite, err)
		}
	}
	return nil
}
