package bridge

import (
	"flag"
	"log"
	"time"

	"github.com/robotalks/oscope.go/pkg/env"
	"github.com/robotalks/oscope.go/pkg/scope"
)

// Config defines the reconnect policy.
type Config struct {
	Backoff     Backoff `toml:"backoff"`
	MaxAttempts int     `toml:"max_attempts"`
}

var defaultConfig = Config{
	Backoff: Backoff{
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
		Jitter:       true,
	},
}

func init() {
	if err := env.LoadSection("bridge", &defaultConfig); err != nil {
		log.Fatalf("config %s: %v", env.ConfigFile(), err)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Backoff.InitialDelay, "retry-delay", defaultConfig.Backoff.InitialDelay, "Initial delay before reconnecting.")
	flag.DurationVar(&defaultConfig.Backoff.MaxDelay, "retry-max-delay", defaultConfig.Backoff.MaxDelay, "Max delay before reconnecting.")
	flag.IntVar(&defaultConfig.MaxAttempts, "retry-attempts", defaultConfig.MaxAttempts, "Give up after failing the number of times in a row, 0 for never.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewBridge creates a Bridge.
func (c *Config) NewBridge(conn *scope.Conn, port string) *Bridge {
	b := New(conn, port, c.Backoff)
	b.MaxAttempts = c.MaxAttempts
	return b
}
