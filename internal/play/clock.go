package play

import (
	"sync"
	"time"
)

// Clock reports the current chart time in seconds.
type Clock interface {
	Now() float64
}

// WallClock is a pausable clock for hosts without a music track.
type WallClock struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	offset  float64 // Chart time at started
	paused  bool
	rate    float64
}

func NewWallClock(rate float64) *WallClock {
	if rate <= 0 {
		rate = 1
	}
	return &WallClock{now: time.Now, paused: true, rate: rate}
}

func (c *WallClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *WallClock) position() float64 {
	if c.paused {
		return c.offset
	}
	return c.offset + c.now().Sub(c.started).Seconds()*c.rate
}

// Start runs the clock from at seconds.
func (c *WallClock) Start(at float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = at
	c.started = c.now()
	c.paused = false
}

func (c *WallClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.offset = c.position()
	c.paused = true
}

func (c *WallClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.started = c.now()
	c.paused = false
}

func (c *WallClock) Seek(at float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = at
	c.started = c.now()
}
