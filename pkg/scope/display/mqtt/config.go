package mqtt

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/oscope.go/pkg/env"
)

// EnvURL is the environment variable of the broker URL.
const EnvURL = "OSCOPE_MQTT_URL"

// Config defines the MQTT publishing settings.
type Config struct {
	// URL of the broker, publishing is disabled when empty.
	URL       string `toml:"url"`
	QoS       int    `toml:"qos"`
	QueueSize int    `toml:"queue_size"`
	// Device overrides the device segment of topics, defaults to host ID.
	Device string `toml:"device"`
}

var defaultConfig = Config{QueueSize: DefaultQueueSize}

func init() {
	if err := env.LoadSection("mqtt", &defaultConfig); err != nil {
		log.Fatalf("config %s: %v", env.ConfigFile(), err)
	}
	if val := os.Getenv(EnvURL); val != "" {
		defaultConfig.URL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "mqtt", defaultConfig.URL, "MQTT broker URL, e.g. mqtt://localhost:1883/oscope/.")
	flag.StringVar(&defaultConfig.Device, "device", defaultConfig.Device, "Device name in MQTT topics, default to host ID.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled indicates a broker is configured.
func (c *Config) Enabled() bool {
	return c.URL != ""
}

// NewPublisher creates the Publisher, the broker is connected when it runs.
func (c *Config) NewPublisher() (*Publisher, error) {
	q, err := NewQueueFromURL(c.URL)
	if err != nil {
		return nil, err
	}
	q.QoS = byte(c.QoS)
	device := c.Device
	if device == "" {
		device = env.HostID()
	}
	return NewPublisher(q, device, c.QueueSize), nil
}
