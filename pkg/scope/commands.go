package scope

import (
	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/l0/comm"
)

func (s *Session) sendLocked(cmd comm.Command, data ...byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.send(cmd, data...)
}

// SetTriggerLevel sets the trigger level.
func (s *Session) SetTriggerLevel(level uint8) error {
	return s.sendLocked(comm.CmdSetTrigger, level)
}

// SetHoldoff sets the number of holdoff samples.
func (s *Session) SetHoldoff(samples uint8) error {
	return s.sendLocked(comm.CmdSetHoldoff, samples)
}

// SetPrescaler sets the ADC clock prescaler.
func (s *Session) SetPrescaler(prescaler uint8) error {
	return s.sendLocked(comm.CmdSetPrescaler, prescaler)
}

// SetVref selects the ADC reference.
func (s *Session) SetVref(ref uint8) error {
	glog.V(1).Infof("set VREF to %d", ref)
	return s.sendLocked(comm.CmdSetVref, ref)
}

// SetSamples sets the number of samples per buffer.
func (s *Session) SetSamples(n uint16) error {
	return s.sendLocked(comm.CmdSetSamples, byte(n>>8), byte(n))
}

// RequestParameters asks the device to report its parameters.
func (s *Session) RequestParameters() error {
	return s.sendLocked(comm.CmdGetParameters)
}

// SetDualChannel enables sampling of both channels.
func (s *Session) SetDualChannel(enable bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.dualChannel = enable
	return s.sendFlags()
}

// SetTriggerInvert makes the trigger fire on the falling edge.
func (s *Session) SetTriggerInvert(enable bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.triggerInvert = enable
	return s.sendFlags()
}

func (s *Session) sendFlags() error {
	return s.send(comm.CmdSetFlags, byte(makeFlags(s.dualChannel, s.triggerInvert)))
}

// SetOneShot switches between one-shot capture, where sampling stops after
// the first trigger and TriggerDone is notified, and continuous capture.
func (s *Session) SetOneShot(enable bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.w == nil {
		return ErrNotConnected
	}
	s.oneShot = enable
	timeout := s.Protocol.AutoTrigTimeout
	if enable {
		timeout = 0
	}
	if err := s.send(comm.CmdSetAutoTrig, timeout); err != nil {
		return err
	}
	if s.state != StateSampling {
		// bring-up issues the first request once parameters arrive.
		return nil
	}
	if s.inRequest {
		// the reply to the outstanding request issues the next one.
		s.delayRequest = true
		return nil
	}
	return s.requestSamples()
}

// SetFreeze suspends re-issuing sampling requests. Unfreezing resumes
// continuous sampling if nothing is in flight.
func (s *Session) SetFreeze(freeze bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.freeze = freeze
	if !freeze && s.state == StateSampling && !s.inRequest && !s.oneShot {
		return s.requestSamples()
	}
	return nil
}

// Frozen indicates sampling requests are suspended.
func (s *Session) Frozen() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.freeze
}

// OneShot indicates one-shot capture is enabled.
func (s *Session) OneShot() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.oneShot
}

// Flags gets the locally cached flags.
func (s *Session) Flags() Flags {
	s.lock.Lock()
	defer s.lock.Unlock()
	return makeFlags(s.dualChannel, s.triggerInvert)
}
