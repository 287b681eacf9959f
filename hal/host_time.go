//go:build !tinygo

package hal

import (
	"sync"
	"time"
)

// hostClock is a stepped microsecond timebase. The runner owns the advance
// rate: the headless runner steps it by a fixed amount per tick so runs are
// reproducible, the window runner follows wall time.
type hostClock struct {
	mu     sync.Mutex
	micros uint64
	last   time.Time
}

func (c *hostClock) Micros() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.micros
}

func (c *hostClock) advance(us uint64) {
	c.mu.Lock()
	c.micros += us
	c.mu.Unlock()
}

// pendingReal returns the wall time elapsed since the previous call in µs,
// capped so a stalled frame does not explode the simulation. The caller
// advances the clock in its own step size.
func (c *hostClock) pendingReal() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	us := uint64(now.Sub(c.last) / time.Microsecond)
	c.last = now
	if us > 100_000 {
		us = 100_000
	}
	return us
}
