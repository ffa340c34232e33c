package refresh

import (
	"context"
	"testing"
	"time"

	rtesting "github.com/r3dlabs/termkit/internal/refresh/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_TimerFires(t *testing.T) {
	clock := rtesting.NewFakeClock(epoch)
	done := make(chan error, 1)

	go func() { done <- Wait(context.Background(), clock, time.Second) }()

	require.Eventually(t, func() bool { return clock.Waiters() == 1 }, time.Second, time.Millisecond)
	clock.Advance(time.Second)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after the timer fired")
	}
}

func TestWait_CancelBeforeTimer(t *testing.T) {
	clock := rtesting.NewFakeClock(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- Wait(ctx, clock, time.Hour) }()

	require.Eventually(t, func() bool { return clock.Waiters() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("wait ignored cancellation")
	}
}

func TestWait_AlreadyCancelled(t *testing.T) {
	clock := rtesting.NewAutoClock(epoch)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Wait(ctx, clock, time.Second)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, clock.AfterCalls, "no timer is started for a cancelled context")
	assert.Equal(t, epoch, clock.Now())
}

func TestWait_NonPositive(t *testing.T) {
	clock := rtesting.NewFakeClock(epoch)
	assert.NoError(t, Wait(context.Background(), clock, 0))
	assert.Zero(t, clock.Waiters())
}
