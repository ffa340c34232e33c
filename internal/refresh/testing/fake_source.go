package testing

import (
	"context"
	"sync"
)

// FakeSource is a scriptable refresh.Source.
type FakeSource[S any] struct {
	mu sync.Mutex

	// OpenErr is returned from Open.
	OpenErr error

	// CloseErr is returned from Close.
	CloseErr error

	// Produce builds the snapshot for a 1-based cycle. When nil, Sample
	// returns the zero snapshot.
	Produce func(cycle int, prev *S) (S, error)

	// Call tracking
	OpenCalls   int
	CloseCalls  int
	SampleCalls int
	// PrevNil records, per Sample call, whether prev was nil.
	PrevNil []bool
}

// NewFakeSource creates a source that produces snapshots with fn.
func NewFakeSource[S any](fn func(cycle int, prev *S) (S, error)) *FakeSource[S] {
	return &FakeSource[S]{Produce: fn}
}

func (f *FakeSource[S]) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OpenCalls++
	return f.OpenErr
}

func (f *FakeSource[S]) Sample(ctx context.Context, prev *S) (S, error) {
	f.mu.Lock()
	f.SampleCalls++
	cycle := f.SampleCalls
	f.PrevNil = append(f.PrevNil, prev == nil)
	produce := f.Produce
	f.mu.Unlock()

	if produce == nil {
		var zero S
		return zero, nil
	}
	return produce(cycle, prev)
}

func (f *FakeSource[S]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCalls++
	return f.CloseErr
}

// Calls returns the open, sample and close counts.
func (f *FakeSource[S]) Calls() (open, sample, close int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.OpenCalls, f.SampleCalls, f.CloseCalls
}
