package engine

import (
	"sync"
	"time"
)

// Clock provides the two time bases of a session
//   - Tick: real seconds since the clock was created, drives variable color transitions
//   - StepTime: simulated seconds, advanced once per simulation step
type Clock struct {
	mu       sync.RWMutex
	provider TimeProvider
	epoch    time.Time
	step     float64
}

// NewClock creates a clock reading from provider; nil uses the system clock
func NewClock(provider TimeProvider) *Clock {
	if provider == nil {
		provider = NewMonotonicTimeProvider()
	}
	return &Clock{provider: provider, epoch: provider.Now()}
}

// Tick returns real elapsed seconds
func (c *Clock) Tick() float64 {
	return c.provider.Now().Sub(c.epoch).Seconds()
}

// StepTime returns the simulated session time
func (c *Clock) StepTime() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// Advance moves session time forward by dt seconds and returns the new time
func (c *Clock) Advance(dt float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step += dt
	return c.step
}
