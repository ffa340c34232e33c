package monitor

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	tkerrors "github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/logger"
	"github.com/r3dlabs/termkit/internal/refresh"
)

// DebugLogFile receives log output while a dashboard owns the terminal.
const DebugLogFile = "termkit-debug.log"

// Options configures a live dashboard run.
type Options struct {
	Interval time.Duration
	Duration time.Duration

	// Plain writes one line per cycle instead of running the full-screen
	// dashboard. Callers set it when stdout is not a terminal.
	Plain bool

	Input  io.Reader
	Output io.Writer

	Clock  refresh.Clock
	Logger logger.Logger
}

// sessionResult holds the result from the session goroutine.
type sessionResult struct {
	result refresh.Result
}

// Run drives a refresh session over src, rendering with panel, until the
// duration elapses, the user quits, or ctx is cancelled. The returned error
// is only for setup or terminal failures; how the session ended is in the
// Result.
func Run[S any](ctx context.Context, src refresh.Source[S], panel Panel[S], opts Options) (refresh.Result, error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = refresh.RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[monitor]")
	}

	if opts.Interval == 0 {
		opts.Interval = refresh.DefaultInterval
	}
	if opts.Duration == 0 {
		opts.Duration = refresh.DefaultDuration
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionOpts := refresh.Options{
		Interval: opts.Interval,
		Duration: opts.Duration,
		Clock:    opts.Clock,
		Logger:   opts.Logger,
	}

	if opts.Plain {
		session, err := refresh.New[S](src, NewPlainRenderer(opts.Output, panel, opts.Clock.Now), sessionOpts)
		if err != nil {
			return refresh.Result{}, invalidTiming(err)
		}
		return session.Run(ctx), nil
	}

	restoreLog := redirectStdLog()
	defer restoreLog()

	model := NewModel(panel, opts.Interval, opts.Duration, cancel, opts.Clock.Now)
	programOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithOutput(opts.Output),
	}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	program := tea.NewProgram(model, programOpts...)

	session, err := refresh.New[S](src, NewProgramRenderer[S](program), sessionOpts)
	if err != nil {
		return refresh.Result{}, invalidTiming(err)
	}

	resultChan := make(chan sessionResult, 1)
	go func() {
		res := session.Run(ctx)
		resultChan <- sessionResult{result: res}
		program.Send(sessionDoneMsg{result: res})
	}()

	// An outer cancellation (signal) closes the dashboard too.
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil && !userInterrupt(err) {
		cancel()
		<-resultChan
		return refresh.Result{}, tkerrors.WrapWithCode(err, tkerrors.ErrRender,
			"The live dashboard could not run",
			"Run with output piped (e.g. | cat) for line-per-cycle output.")
	}

	// The user may have quit before the session finished.
	cancel()
	r := <-resultChan
	return r.result, nil
}

// redirectStdLog points the standard logger at DebugLogFile when debug
// logging is on and discards it otherwise. Anything written to the terminal
// while the alt screen is up would corrupt it. The returned func restores
// the previous output.
func redirectStdLog() func() {
	out, prefix, flags := log.Writer(), log.Prefix(), log.Flags()
	restore := func() {
		log.SetOutput(out)
		log.SetPrefix(prefix)
		log.SetFlags(flags)
	}

	if logger.DebugEnabled() {
		if f, err := tea.LogToFile(DebugLogFile, "termkit"); err == nil {
			return func() {
				restore()
				f.Close()
			}
		}
	}
	log.SetOutput(io.Discard)
	return restore
}

func userInterrupt(err error) bool {
	return errors.Is(err, tea.ErrInterrupted) || errors.Is(err, tea.ErrProgramKilled)
}

func invalidTiming(err error) error {
	return tkerrors.WrapWithCode(err, tkerrors.ErrConfig,
		"Invalid live session timing",
		"Check live.interval and the live durations in your .termkit.yaml.")
}
