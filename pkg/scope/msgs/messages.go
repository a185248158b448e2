package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/oscope.go/pkg/scope"
)

// SampleBuffer carries one captured buffer.
type SampleBuffer struct {
	Samples     []byte `protobuf:"bytes,1,opt,name=samples,proto3" json:"samples,omitempty"`
	DualChannel bool   `protobuf:"varint,2,opt,name=dual_channel,json=dualChannel,proto3" json:"dual_channel,omitempty"`
}

// Reset implements proto.Message.
func (m *SampleBuffer) Reset() { *m = SampleBuffer{} }

// String implements proto.Message.
func (m *SampleBuffer) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*SampleBuffer) ProtoMessage() {}

// Parameters mirrors scope.Params.
type Parameters struct {
	TriggerLevel   uint32  `protobuf:"varint,1,opt,name=trigger_level,json=triggerLevel,proto3" json:"trigger_level"`
	HoldoffSamples uint32  `protobuf:"varint,2,opt,name=holdoff_samples,json=holdoffSamples,proto3" json:"holdoff_samples"`
	AdcRef         uint32  `protobuf:"varint,3,opt,name=adc_ref,json=adcRef,proto3" json:"adc_ref"`
	Prescaler      uint32  `protobuf:"varint,4,opt,name=prescaler,proto3" json:"prescaler"`
	NumSamples     uint32  `protobuf:"varint,5,opt,name=num_samples,json=numSamples,proto3" json:"num_samples"`
	DualChannel    bool    `protobuf:"varint,6,opt,name=dual_channel,json=dualChannel,proto3" json:"dual_channel"`
	InvertTrigger  bool    `protobuf:"varint,7,opt,name=invert_trigger,json=invertTrigger,proto3" json:"invert_trigger"`
	SampleRate     float64 `protobuf:"fixed64,8,opt,name=sample_rate,json=sampleRate,proto3" json:"sample_rate"`
}

// Reset implements proto.Message.
func (m *Parameters) Reset() { *m = Parameters{} }

// String implements proto.Message.
func (m *Parameters) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Parameters) ProtoMessage() {}

// NewParameters converts scope.Params, clockHz is used to compute the sample rate.
func NewParameters(p scope.Params, clockHz float64) *Parameters {
	return &Parameters{
		TriggerLevel:   uint32(p.TriggerLevel),
		HoldoffSamples: uint32(p.HoldoffSamples),
		AdcRef:         uint32(p.ADCRef),
		Prescaler:      uint32(p.Prescaler),
		NumSamples:     uint32(p.NumSamples),
		DualChannel:    p.Flags.DualChannel(),
		InvertTrigger:  p.Flags.InvertTrigger(),
		SampleRate:     p.SampleRate(clockHz),
	}
}

// TriggerDone is sent when a one-shot capture completes.
type TriggerDone struct {
	Sequence uint64 `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

// Reset implements proto.Message.
func (m *TriggerDone) Reset() { *m = TriggerDone{} }

// String implements proto.Message.
func (m *TriggerDone) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*TriggerDone) ProtoMessage() {}

// StateChange reports the session state.
type StateChange struct {
	State string `protobuf:"bytes,1,opt,name=state,proto3" json:"state"`
	Error string `protobuf:"bytes,2,opt,name=error,proto3" json:"error,omitempty"`
}

// Reset implements proto.Message.
func (m *StateChange) Reset() { *m = StateChange{} }

// String implements proto.Message.
func (m *StateChange) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*StateChange) ProtoMessage() {}

// Encode marshals a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// Decode unmarshals data into msg.
func Decode(data []byte, msg proto.Message) error {
	return proto.Unmarshal(data, msg)
}
