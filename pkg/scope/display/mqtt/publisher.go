package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/scope/msgs"
)

// Topics under the device prefix.
const (
	TopicSamples = "samples"
	TopicParams  = "params"
	TopicTrigger = "trigger"
	TopicState   = "state"
	TopicControl = "control"
)

// DefaultQueueSize is the number of events buffered for publishing.
const DefaultQueueSize = 64

type event struct {
	topic   string
	payload []byte
	retain  bool
}

// Publisher is a scope.Displayer publishing to MQTT, and applies Control
// messages received on the control topic to Controller.
type Publisher struct {
	Queue      *Queue
	Device     string
	ClockHz    float64
	Controller msgs.Controller

	eventCh chan event

	lock    sync.Mutex
	dual    bool
	seq     uint64
	dropped int
}

// NewPublisher creates a Publisher for a device.
func NewPublisher(q *Queue, device string, queueSize int) *Publisher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Publisher{
		Queue:   q,
		Device:  device,
		ClockHz: scope.Default().ClockHz,
		eventCh: make(chan event, queueSize),
	}
}

// Topic returns the full topic (without queue prefix) of the device.
func (p *Publisher) Topic(name string) string {
	return p.Device + "/" + name
}

// Dropped returns the number of events dropped because publishing was too slow.
func (p *Publisher) Dropped() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.dropped
}

// DisplaySamples implements scope.Displayer.
func (p *Publisher) DisplaySamples(buf []byte) {
	p.lock.Lock()
	dual := p.dual
	p.lock.Unlock()
	p.post(TopicSamples, &msgs.SampleBuffer{Samples: buf, DualChannel: dual}, false)
}

// TriggerDone implements scope.Displayer.
func (p *Publisher) TriggerDone() {
	p.lock.Lock()
	p.seq++
	seq := p.seq
	p.lock.Unlock()
	p.post(TopicTrigger, &msgs.TriggerDone{Sequence: seq}, false)
}

// ParametersReceived implements scope.Displayer.
func (p *Publisher) ParametersReceived(params scope.Params) {
	p.lock.Lock()
	p.dual = params.Flags.DualChannel()
	p.lock.Unlock()
	p.post(TopicParams, msgs.NewParameters(params, p.ClockHz), true)
}

// StateChanged implements scope.StateNotifier.
func (p *Publisher) StateChanged(state scope.State) {
	p.post(TopicState, &msgs.StateChange{State: state.String()}, true)
}

// Ended publishes the reason the connection ended.
func (p *Publisher) Ended(err error) {
	msg := &msgs.StateChange{State: scope.StateDisconnected.String()}
	if err != nil {
		msg.Error = err.Error()
	}
	p.post(TopicState, msg, true)
}

func (p *Publisher) post(name string, msg proto.Message, retain bool) {
	payload, err := msgs.Encode(msg)
	if err != nil {
		glog.Errorf("encode %s: %v", name, err)
		return
	}
	select {
	case p.eventCh <- event{topic: p.Topic(name), payload: payload, retain: retain}:
	default:
		p.lock.Lock()
		p.dropped++
		p.lock.Unlock()
		glog.V(1).Infof("publish queue full, %s dropped", name)
	}
}

// Run implements framework.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	if err := p.Queue.Connect(); err != nil {
		return err
	}
	defer p.Queue.Close()
	sub := p.Queue.Sub(p.Topic(TopicControl), p.handleControl)
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-p.eventCh:
			token := p.Queue.PubWith(ev.topic, ev.payload, ev.retain)
			if token.Wait() && token.Error() != nil {
				glog.Warningf("publish %s failed: %v", ev.topic, token.Error())
			}
		}
	}
}

func (p *Publisher) handleControl(topic string, payload []byte) {
	var ctl msgs.Control
	if err := msgs.Decode(payload, &ctl); err != nil {
		glog.Warningf("invalid control on %s: %v", topic, err)
		return
	}
	c := p.Controller
	if c == nil {
		return
	}
	glog.V(1).Infof("control %s", ctl.String())
	if err := ctl.Apply(c); err != nil {
		glog.Warningf("control %s failed: %v", ctl.String(), err)
	}
}

// DecodeEvent decodes a message published under a device topic by the
// last topic segment.
func DecodeEvent(topic string, payload []byte) (proto.Message, error) {
	var msg proto.Message
	switch topic[strings.LastIndex(topic, "/")+1:] {
	case TopicSamples:
		msg = &msgs.SampleBuffer{}
	case TopicParams:
		msg = &msgs.Parameters{}
	case TopicTrigger:
		msg = &msgs.TriggerDone{}
	case TopicState:
		msg = &msgs.StateChange{}
	case TopicControl:
		msg = &msgs.Control{}
	default:
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	if err := msgs.Decode(payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
