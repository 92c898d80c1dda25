package game

import "time"

// Config contains settings that affect game behavior.
type Config struct {
	TickPeriod time.Duration // movement clock period
	PollPeriod time.Duration // logic loop poll period
	Seed       uint64        // RNG seed; 0 means time-derived
}

// Defaults fills missing fields with the standard timings.
func (c *Config) Defaults() {
	if c.TickPeriod <= 0 {
		c.TickPeriod = time.Second
	}
	if c.PollPeriod <= 0 {
		c.PollPeriod = 100 * time.Millisecond
	}
}
