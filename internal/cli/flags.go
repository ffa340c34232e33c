package cli

import (
	"fmt"
	"time"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/spf13/cobra"
)

// LiveFlags holds the flags shared by the live subcommands.
type LiveFlags struct {
	Interval string
	Duration string
	Plain    bool
}

// AddLiveFlags registers --interval, --duration and --plain on a command.
func AddLiveFlags(cmd *cobra.Command, flags *LiveFlags) {
	cmd.Flags().StringVarP(&flags.Interval, "interval", "i", "", "poll interval, 100ms to 500ms (default from live.interval)")
	cmd.Flags().StringVarP(&flags.Duration, "duration", "d", "", "how long to run (e.g. 30s, 5m)")
	cmd.Flags().BoolVar(&flags.Plain, "plain", false, "print one line per cycle instead of the dashboard")
}

// ParseDurationFlag parses a duration flag value.
// Returns def if the flag is empty.
func ParseDurationFlag(name, flag string, def time.Duration) (time.Duration, error) {
	if flag == "" {
		return def, nil
	}

	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", flag, name),
			"Try something like 500ms, 30s, or 2m.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s must be positive, got %s", name, flag),
			"Try something like 500ms, 30s, or 2m.")
	}
	return duration, nil
}
