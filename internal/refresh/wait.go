package refresh

import (
	"context"
	"time"
)

// Wait blocks for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when cancelled and nil when the full duration elapsed.
func Wait(ctx context.Context, clock Clock, d time.Duration) error {
	// Checked first so an already-cancelled context never races a timer
	// that is also ready.
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}
