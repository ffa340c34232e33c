package metrics

import (
	"context"
	"time"

	"github.com/r3dlabs/termkit/internal/refresh"
)

// DefaultSettle is the gap between the two samples of a one-shot read.
const DefaultSettle = 250 * time.Millisecond

// Once takes a single snapshot from src for the static views. Delta
// readings need a baseline, so it samples twice settle apart and returns
// the second snapshot. A failed second sample falls back to the first.
func Once[S any](ctx context.Context, src refresh.Source[S], clock refresh.Clock, settle time.Duration) (snap S, err error) {
	if clock == nil {
		clock = refresh.RealClock()
	}
	if err := src.Open(ctx); err != nil {
		return snap, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	first, err := src.Sample(ctx, nil)
	if err != nil {
		return snap, err
	}
	if settle <= 0 {
		return first, nil
	}
	if err := refresh.Wait(ctx, clock, settle); err != nil {
		return snap, err
	}

	second, err := src.Sample(ctx, &first)
	if err != nil {
		return first, nil
	}
	return second, nil
}
