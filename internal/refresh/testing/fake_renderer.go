package testing

import "sync"

// FakeRenderer records every frame it is asked to draw.
type FakeRenderer[S any] struct {
	mu sync.Mutex

	// DrawErr, when set, is consulted for each 1-based frame.
	DrawErr func(frame int) error

	// OnDraw runs after a frame is recorded. Tests use it to cancel a
	// session at a known cycle.
	OnDraw func(frame int)

	Frames   []S
	Failures []error
}

// Draw records the snapshot.
func (r *FakeRenderer[S]) Draw(snapshot S) error {
	r.mu.Lock()
	r.Frames = append(r.Frames, snapshot)
	frame := len(r.Frames)
	drawErr, onDraw := r.DrawErr, r.OnDraw
	r.mu.Unlock()

	if onDraw != nil {
		onDraw(frame)
	}
	if drawErr != nil {
		return drawErr(frame)
	}
	return nil
}

// Degraded records a failed cycle.
func (r *FakeRenderer[S]) Degraded(cycle int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, err)
}

// FrameCount returns the number of frames drawn so far.
func (r *FakeRenderer[S]) FrameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Frames)
}
