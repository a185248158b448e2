package websocket

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/oscope.go/pkg/env"
)

// EnvAddr is the environment variable of the listening address.
const EnvAddr = "OSCOPE_WS_ADDR"

// Config defines the websocket settings.
type Config struct {
	// Addr to listen on, disabled when empty.
	Addr      string `toml:"addr"`
	QueueSize int    `toml:"queue_size"`
}

var defaultConfig = Config{QueueSize: DefaultQueueSize}

func init() {
	if err := env.LoadSection("websocket", &defaultConfig); err != nil {
		log.Fatalf("config %s: %v", env.ConfigFile(), err)
	}
	if val := os.Getenv(EnvAddr); val != "" {
		defaultConfig.Addr = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Addr, "ws", defaultConfig.Addr, "Websocket listening address, e.g. :8080.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Enabled indicates the listener is configured.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

// NewListener creates a Listener with a new Server.
func (c *Config) NewListener() *Listener {
	srv := NewServer()
	if c.QueueSize > 0 {
		srv.QueueSize = c.QueueSize
	}
	return &Listener{Addr: c.Addr, Server: srv}
}
