package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/r3dlabs/termkit/internal/logger"
)

// ErrUnavailable marks a provider that cannot produce snapshots at all.
// Returned before the first successful sample it aborts the session;
// afterwards it is treated like any other transient failure.
var ErrUnavailable = errors.New("metrics provider unavailable")

// ErrSessionUsed is returned when Run is called on a session that already ran.
var ErrSessionUsed = errors.New("refresh session already started")

// Source produces snapshots of some external resource.
type Source[S any] interface {
	// Open acquires provider handles. It is called once when the session
	// enters Running; an error aborts the session.
	Open(ctx context.Context) error

	// Sample captures one snapshot. prev is the last successful snapshot,
	// nil on the first cycle, so implementations can derive rates.
	// Per-field failures belong inside the snapshot; a returned error
	// means the whole cycle produced nothing.
	Sample(ctx context.Context, prev *S) (S, error)

	// Close releases whatever Open acquired. It is called on every exit path.
	Close() error
}

// Renderer displays snapshots. Draw must be safe to call repeatedly.
type Renderer[S any] interface {
	Draw(snapshot S) error
}

// DegradedRenderer is implemented by renderers that want to show cycles
// whose sample failed instead of only having them logged.
type DegradedRenderer interface {
	Degraded(cycle int, err error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc[S any] func(S) error

func (f RendererFunc[S]) Draw(snapshot S) error {
	return f(snapshot)
}

// Options configures a Session.
type Options struct {
	// Interval is the wait between cycles.
	Interval time.Duration

	// Duration bounds the whole session.
	Duration time.Duration

	// Clock defaults to RealClock.
	Clock Clock

	// Logger defaults to an env logger with the "[refresh]" prefix.
	Logger logger.Logger
}

// Default session timing.
const (
	DefaultInterval = 500 * time.Millisecond
	DefaultDuration = 30 * time.Second
)

// Validate checks the timing options.
func (o Options) Validate() error {
	if o.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive (got %s)", o.Interval)
	}
	if o.Duration < o.Interval {
		return fmt.Errorf("duration %s is shorter than the poll interval %s", o.Duration, o.Interval)
	}
	return nil
}

// Session is one bounded live-monitoring run.
type Session[S any] struct {
	source   Source[S]
	renderer Renderer[S]
	interval time.Duration
	duration time.Duration
	clock    Clock
	log      logger.Logger

	mu      sync.Mutex
	status  Status
	started time.Time
}

// New creates an Idle session. Zero Interval and Duration take the defaults.
func New[S any](source Source[S], renderer Renderer[S], opts Options) (*Session[S], error) {
	if source == nil {
		return nil, errors.New("refresh session needs a source")
	}
	if renderer == nil {
		return nil, errors.New("refresh session needs a renderer")
	}
	if opts.Interval == 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Duration == 0 {
		opts.Duration = DefaultDuration
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[refresh]")
	}

	return &Session[S]{
		source:   source,
		renderer: renderer,
		interval: opts.Interval,
		duration: opts.Duration,
		clock:    opts.Clock,
		log:      opts.Logger,
		status:   Idle,
	}, nil
}

// Status returns the current lifecycle state.
func (s *Session[S]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Interval returns the poll interval.
func (s *Session[S]) Interval() time.Duration { return s.interval }

// Duration returns the session's duration limit.
func (s *Session[S]) Duration() time.Duration { return s.duration }

// Run drives the session until the duration elapses, ctx is cancelled, or
// the source is found unavailable. It may be called once.
func (s *Session[S]) Run(ctx context.Context) Result {
	s.mu.Lock()
	if s.status != Idle {
		s.mu.Unlock()
		return Result{Status: Aborted, Err: ErrSessionUsed}
	}
	s.status = Running
	s.started = s.clock.Now()
	s.mu.Unlock()

	res := s.run(ctx)
	res.Elapsed = s.clock.Now().Sub(s.started)

	s.mu.Lock()
	s.status = res.Status
	s.mu.Unlock()

	s.log.Debug("session %s after %s (%d cycles, %d degraded)", res.Status, res.Elapsed, res.Cycles, res.Degraded)
	return res
}

func (s *Session[S]) run(ctx context.Context) (res Result) {
	if ctx.Err() != nil {
		res.Status = Cancelled
		return res
	}

	defer func() {
		if err := s.source.Close(); err != nil {
			s.log.Warn("releasing metrics provider: %v", err)
		}
	}()

	if err := s.source.Open(ctx); err != nil {
		if ctx.Err() != nil {
			res.Status = Cancelled
			return res
		}
		res.Status = Aborted
		res.Err = err
		return res
	}

	var prev *S
	for {
		snap, err := s.source.Sample(ctx, prev)
		if ctx.Err() != nil {
			res.Status = Cancelled
			return res
		}

		switch {
		case err == nil:
			prev = &snap
			if derr := s.renderer.Draw(snap); derr != nil {
				res.RenderFailures++
				s.log.Warn("render cycle %d: %v", res.Cycles+1, derr)
			}
		case prev == nil && errors.Is(err, ErrUnavailable):
			res.Status = Aborted
			res.Err = err
			return res
		default:
			res.Degraded++
			s.degraded(res.Cycles+1, err)
		}
		res.Cycles++

		elapsed := s.clock.Now().Sub(s.started)
		if elapsed >= s.duration {
			res.Status = Completed
			return res
		}

		wait := s.interval
		if remaining := s.duration - elapsed; remaining < wait {
			wait = remaining
		}
		if err := Wait(ctx, s.clock, wait); err != nil {
			res.Status = Cancelled
			return res
		}

		if s.clock.Now().Sub(s.started) >= s.duration {
			res.Status = Completed
			return res
		}
	}
}

func (s *Session[S]) degraded(cycle int, err error) {
	if dr, ok := s.renderer.(DegradedRenderer); ok {
		dr.Degraded(cycle, err)
		return
	}
	s.log.Warn("sample cycle %d: %v", cycle, err)
}
