package pipeline

import "time"

// Clock is a monotonically increasing cycle counter with an optional
// real-time throttle. It carries no other state.
type Clock struct {
	cycle uint64
	speed uint64
}

// NewClock creates a Clock. speed is a non-negative throttle factor; 0
// disables the wall-clock pause entirely.
func NewClock(speed uint64) *Clock {
	return &Clock{speed: speed}
}

// Tick pauses for speed/4 time units (if speed > 0) and advances the cycle
// counter. The pause is a throttle only and has no semantic effect on the
// simulated pipeline state.
func (c *Clock) Tick() {
	if c.speed > 0 {
		time.Sleep(time.Duration(c.speed/4) * time.Millisecond)
	}
	c.cycle++
}

// Now returns the current cycle count.
func (c *Clock) Now() uint64 {
	return c.cycle
}
