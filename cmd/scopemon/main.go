package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"reflect"

	"github.com/robotalks/oscope.go/pkg/scope/display/mqtt"
	"github.com/robotalks/oscope.go/pkg/scope/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/oscope/"
	device  = "+"
	verbose bool
)

func init() {
	if val := os.Getenv(mqtt.EnvURL); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&device, "device", device, "Device to monitor, + for all.")
	flag.BoolVar(&verbose, "v", verbose, "Print sample buffers.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	q.Sub(device+"/#", func(topic string, payload []byte) {
		msg, err := mqtt.DecodeEvent(topic, payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		if buf, ok := msg.(*msgs.SampleBuffer); ok && !verbose {
			log.Printf("%s: %d samples dual=%v", topic, len(buf.Samples), buf.DualChannel)
			return
		}
		log.Printf("%s: [%s] %s", topic, reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String())
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
}
