package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/r3dlabs/termkit/internal/config"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/history"
	"github.com/r3dlabs/termkit/internal/logger"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/monitor"
	"github.com/r3dlabs/termkit/internal/refresh"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	// clock drives live sessions and one-shot snapshots; tests use a fake.
	clock = refresh.RealClock()

	// settle is the gap between the two samples of a one-shot snapshot.
	settle = metrics.DefaultSettle
)

// liveTiming resolves interval and duration from flags over config and
// checks them against the responsiveness bounds.
func liveTiming(flags LiveFlags, name string, configured time.Duration) (interval, duration time.Duration, err error) {
	cfg := currentConfig()

	interval, err = ParseDurationFlag("interval", flags.Interval, cfg.Live.Interval)
	if err != nil {
		return 0, 0, err
	}
	duration, err = ParseDurationFlag("duration", flags.Duration, configured)
	if err != nil {
		return 0, 0, err
	}

	if err := config.ValidateInterval(interval); err != nil {
		return 0, 0, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid poll interval",
			fmt.Sprintf("Use --interval between %s and %s.", config.MinInterval, config.MaxInterval))
	}
	if err := config.ValidateDuration(name, duration, interval); err != nil {
		return 0, 0, errors.WrapWithCode(err, errors.ErrConfig,
			"Session would end before its first refresh",
			"Use a --duration of at least one interval.")
	}
	return interval, duration, nil
}

// thresholds converts the configured gauge thresholds.
func thresholds() monitor.Thresholds {
	t := currentConfig().Thresholds
	return monitor.Thresholds{Warning: t.Warning, Critical: t.Critical}
}

// runLive runs one live session for tool, prints how it ended and records
// it in the session history.
func runLive[S any](cmd *cobra.Command, tool string, src refresh.Source[S], panel monitor.Panel[S], flags LiveFlags, configured time.Duration) error {
	interval, duration, err := liveTiming(flags, tool, configured)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.NewEnvLogger("[" + tool + "]")
	started := clock.Now()
	res, err := monitor.Run(ctx, src, panel, monitor.Options{
		Interval: interval,
		Duration: duration,
		Plain:    flags.Plain || !stdoutIsTerminal(),
		Input:    cmd.InOrStdin(),
		Output:   cmd.OutOrStdout(),
		Clock:    clock,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	recordSession(ctx, history.FromResult(tool, started, interval, duration, res), log)

	out := cmd.ErrOrStderr()
	switch res.Status {
	case refresh.Aborted:
		fmt.Fprintf(out, "%s %s\n", ui.ErrorStyle().Render(ui.SymbolFail), res.Summary())
	default:
		fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), res.Summary())
	}
	if res.RenderFailures > 0 {
		fmt.Fprintf(out, "%s %d frames could not be drawn\n", ui.WarningStyle().Render(ui.SymbolWarning), res.RenderFailures)
	}

	if code := res.ExitCode(); code != 0 {
		return errors.NewExitError(code)
	}
	return nil
}

// openHistory opens the configured history store, or returns nil when
// history is disabled.
func openHistory() (*history.Store, error) {
	cfg := currentConfig()
	if !cfg.History.Enabled {
		return nil, nil
	}

	path := config.ExpandPath(cfg.History.Path)
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}

// recordSession appends a finished session to the history. Failures are
// logged and never fail the command.
func recordSession(ctx context.Context, sess history.Session, log logger.Logger) {
	store, err := openHistory()
	if err != nil {
		log.Warn("session history unavailable: %v", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, sess); err != nil {
		log.Warn("couldn't record session: %v", err)
	}
}
