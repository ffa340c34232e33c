// Package testing provides test doubles for the refresh package.
package testing

import (
	"sync"
	"time"
)

type waiter struct {
	deadline time.Time
	ch       chan time.Time
}

// FakeClock is a manually driven refresh.Clock.
//
// In manual mode After returns a channel that fires once Advance moves the
// clock past its deadline. In auto mode (NewAutoClock) every After call
// advances the clock by the requested duration and fires immediately, which
// lets a whole session run synchronously.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	auto    bool
	waiters []waiter

	// AfterCalls records every duration passed to After.
	AfterCalls []time.Duration
}

// NewFakeClock creates a manual clock starting at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// NewAutoClock creates a clock whose After advances time immediately.
func NewAutoClock(start time.Time) *FakeClock {
	return &FakeClock{now: start, auto: true}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After returns a channel that receives the fake time once d has passed.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.AfterCalls = append(c.AfterCalls, d)
	ch := make(chan time.Time, 1)

	if c.auto {
		c.now = c.now.Add(d)
		ch <- c.now
		return ch
	}
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.waiters = append(c.waiters, waiter{deadline: c.now.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward and fires every expired waiter.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if !w.deadline.After(c.now) {
			w.ch <- c.now
			continue
		}
		pending = append(pending, w)
	}
	c.waiters = pending
}

// Waiters returns the number of After channels that have not fired yet.
func (c *FakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
