package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"
)

// Control ops.
const (
	OpTrigger   = "trigger"
	OpHoldoff   = "holdoff"
	OpPrescaler = "prescaler"
	OpVref      = "vref"
	OpSamples   = "samples"
	OpDual      = "dual"
	OpInvert    = "invert"
	OpOneShot   = "oneshot"
	OpFreeze    = "freeze"
	OpParams    = "params"
)

var (
	// ErrUnknownOp indicates the control op is unknown.
	ErrUnknownOp = errors.New("unknown op")
	// ErrValueRange indicates the value doesn't fit the op.
	ErrValueRange = errors.New("value out of range")
)

// Control is a command sent by a remote display.
type Control struct {
	Op    string `protobuf:"bytes,1,opt,name=op,proto3" json:"op"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value"`
}

// Reset implements proto.Message.
func (m *Control) Reset() { *m = Control{} }

// String implements proto.Message.
func (m *Control) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Control) ProtoMessage() {}

// Controller is the command surface of a scope session.
type Controller interface {
	SetTriggerLevel(uint8) error
	SetHoldoff(uint8) error
	SetPrescaler(uint8) error
	SetVref(uint8) error
	SetSamples(uint16) error
	SetDualChannel(bool) error
	SetTriggerInvert(bool) error
	SetOneShot(bool) error
	SetFreeze(bool) error
	RequestParameters() error
}

func (m *Control) byteValue() (uint8, error) {
	if m.Value > 0xff {
		return 0, fmt.Errorf("%s %d: %w", m.Op, m.Value, ErrValueRange)
	}
	return uint8(m.Value), nil
}

// Apply executes the control on c.
func (m *Control) Apply(c Controller) error {
	switch m.Op {
	case OpTrigger, OpHoldoff, OpPrescaler, OpVref:
		val, err := m.byteValue()
		if err != nil {
			return err
		}
		switch m.Op {
		case OpTrigger:
			return c.SetTriggerLevel(val)
		case OpHoldoff:
			return c.SetHoldoff(val)
		case OpPrescaler:
			return c.SetPrescaler(val)
		default:
			return c.SetVref(val)
		}
	case OpSamples:
		if m.Value > 0xffff {
			return fmt.Errorf("%s %d: %w", m.Op, m.Value, ErrValueRange)
		}
		return c.SetSamples(uint16(m.Value))
	case OpDual:
		return c.SetDualChannel(m.Value != 0)
	case OpInvert:
		return c.SetTriggerInvert(m.Value != 0)
	case OpOneShot:
		return c.SetOneShot(m.Value != 0)
	case OpFreeze:
		return c.SetFreeze(m.Value != 0)
	case OpParams:
		return c.RequestParameters()
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, m.Op)
}
