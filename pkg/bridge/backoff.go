package bridge

import (
	"math"
	"math/rand"
	"time"
)

// Backoff defines the delay between reconnect attempts.
type Backoff struct {
	InitialDelay time.Duration `toml:"initial_delay"`
	Multiplier   float64       `toml:"multiplier"`
	MaxDelay     time.Duration `toml:"max_delay"`
	Jitter       bool          `toml:"jitter"`
}

// NextDelay returns the delay before attempt N (1-based).
func (b Backoff) NextDelay(attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 || b.InitialDelay <= 0 {
		return b.InitialDelay
	}
	mul := b.Multiplier
	if mul < 1.0 {
		mul = 1.0
	}
	delay := float64(b.InitialDelay) * math.Pow(mul, float64(attempt-1))
	if b.MaxDelay > 0 && delay > float64(b.MaxDelay) {
		delay = float64(b.MaxDelay)
	}
	if b.Jitter {
		f := 0.5
		if rng != nil {
			f += rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}
