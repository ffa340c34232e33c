package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	ch := c.After(time.Second)
	assert.Equal(t, 1, c.Waiters())

	c.Advance(500 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("fired early")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case at := <-ch:
		assert.Equal(t, start.Add(time.Second), at)
	default:
		t.Fatal("did not fire")
	}
	assert.Equal(t, 0, c.Waiters())
}

func TestAutoClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewAutoClock(start)

	<-c.After(2 * time.Second)
	<-c.After(time.Second)

	assert.Equal(t, start.Add(3*time.Second), c.Now())
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second}, c.AfterCalls)
}
