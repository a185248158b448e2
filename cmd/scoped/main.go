package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/oscope.go/pkg/bridge"
	fx "github.com/robotalks/oscope.go/pkg/framework"
	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/scope/display/mqtt"
	"github.com/robotalks/oscope.go/pkg/scope/display/websocket"
	"github.com/robotalks/oscope.go/pkg/sim"
)

func init() {
	scope.SetupFlags()
	mqtt.SetupFlags()
	websocket.SetupFlags()
	bridge.SetupFlags()
	sim.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := scope.NewConfig()
	conn := conf.NewConn(nil)
	transport, err := sim.NewConfig().Wrap(conn.Transport, conf.ClockHz)
	if err != nil {
		log.Fatalln(err)
	}
	conn.Transport = transport
	b := bridge.NewConfig().NewBridge(conn, conf.Port)

	displayers := scope.Displayers{&logDisplayer{clockHz: conf.ClockHz}}
	notifiers := scope.StateNotifiers{b}
	runner := fx.NewRunner().HandleSignals()

	if mqttConf := mqtt.NewConfig(); mqttConf.Enabled() {
		pub, err := mqttConf.NewPublisher()
		if err != nil {
			log.Fatalf("mqtt: %v", err)
		}
		pub.ClockHz = conf.ClockHz
		pub.Controller = conn.Session
		displayers = append(displayers, pub)
		notifiers = append(notifiers, pub)
		b.OnEnded = pub.Ended
		runner.Go(fx.NamedRun("mqtt", pub))
	}
	if wsConf := websocket.NewConfig(); wsConf.Enabled() {
		l := wsConf.NewListener()
		l.Server.ClockHz = conf.ClockHz
		l.Server.Controller = conn.Session
		displayers = append(displayers, l.Server)
		notifiers = append(notifiers, l.Server)
		runner.Go(fx.NamedRun("websocket", l))
	}
	conn.Session.Displayer = displayers
	conn.Session.Notifier = notifiers

	if err := runner.Go(fx.NamedRun("bridge", b)).Wait(); err != nil {
		log.Fatalln(err)
	}
}

type logDisplayer struct {
	clockHz float64
	buffers int
}

func (d *logDisplayer) DisplaySamples(buf []byte) {
	d.buffers++
	glog.V(2).Infof("buffer #%d: %d samples", d.buffers, len(buf))
}

func (d *logDisplayer) TriggerDone() {
	glog.Info("one-shot capture done")
}

func (d *logDisplayer) ParametersReceived(p scope.Params) {
	glog.Infof("parameters: %s rate=%.0fHz", p, p.SampleRate(d.clockHz))
}
