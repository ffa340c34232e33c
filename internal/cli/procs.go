package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/monitor"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

// ProcessFlags holds the process selection flags shared by procs and
// procs live.
type ProcessFlags struct {
	Sort       string
	Reverse    bool
	Filter     string
	User       string
	Mine       bool
	Limit      int
	Restricted string
}

var (
	procsFlags     ProcessFlags
	procsLiveFlags LiveFlags
	procsKillYes   bool
)

var procsCmd = &cobra.Command{
	Use:     "procs",
	Aliases: []string{"ps"},
	Short:   "List the busiest processes",
	Long: `List processes sorted by CPU, memory, name or PID.

CPU usage is measured over a short settle window, so the first call takes
about a quarter second. Processes whose details you may not read are shown
with N/A cells, or dropped with --restricted hide.

Examples:
  termkit procs
  termkit procs --sort memory --limit 10
  termkit procs --filter postgres --mine
  termkit procs --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := procsFlags.Query()
		if err != nil {
			return err
		}

		snap, err := takeSnapshot[metrics.ProcessSnapshot](cmd, "Reading processes", metrics.NewProcessSampler(provider, q))
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), snap)
		}
		writeLines(cmd.OutOrStdout(), renderProcesses(snap))
		return nil
	},
}

var procsLiveCmd = &cobra.Command{
	Use:   "live",
	Short: "Live process table",
	Long: `Refresh the process table every interval. Use the arrow keys to scroll
and q to quit.

Examples:
  termkit procs live
  termkit procs live --sort memory --duration 5m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := procsFlags.Query()
		if err != nil {
			return err
		}
		return runLive[metrics.ProcessSnapshot](cmd, "procs", metrics.NewProcessSampler(provider, q),
			monitor.NewProcessPanel(thresholds()), procsLiveFlags, currentConfig().Live.Processes)
	},
}

var procsKillCmd = &cobra.Command{
	Use:   "kill <pid>",
	Short: "Ask a process to terminate",
	Long: `Send a termination request (SIGTERM on Unix) to a process after
confirming.

Examples:
  termkit procs kill 4242
  termkit procs kill 4242 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePID(args[0])
		if err != nil {
			return err
		}
		return killProcess(cmd, pid, procsKillYes)
	},
}

func init() {
	for _, c := range []*cobra.Command{procsCmd, procsLiveCmd} {
		addProcessFlags(c, &procsFlags)
	}
	AddLiveFlags(procsLiveCmd, &procsLiveFlags)
	procsKillCmd.Flags().BoolVarP(&procsKillYes, "yes", "y", false, "skip the confirmation prompt")

	procsCmd.AddCommand(procsLiveCmd)
	procsCmd.AddCommand(procsKillCmd)
	rootCmd.AddCommand(procsCmd)
}

func addProcessFlags(cmd *cobra.Command, flags *ProcessFlags) {
	cmd.Flags().StringVarP(&flags.Sort, "sort", "s", "", "sort by cpu, memory, name or pid (default from processes.sort)")
	cmd.Flags().BoolVarP(&flags.Reverse, "reverse", "r", false, "reverse the sort order")
	cmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "only processes whose name contains this")
	cmd.Flags().StringVarP(&flags.User, "user", "u", "", "only processes owned by this user")
	cmd.Flags().BoolVar(&flags.Mine, "mine", false, "only your own processes")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", -1, "number of rows, 0 for all (default from processes.limit)")
	cmd.Flags().StringVar(&flags.Restricted, "restricted", "", "show or hide processes you may not inspect")
}

// Query builds a process query from the flags over the config defaults.
func (f ProcessFlags) Query() (metrics.ProcessQuery, error) {
	cfg := currentConfig().Processes

	sortKey := cfg.Sort
	if f.Sort != "" {
		sortKey = f.Sort
	}
	key, err := metrics.ParseSortKey(sortKey)
	if err != nil {
		return metrics.ProcessQuery{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a process sort key", sortKey),
			"Use --sort cpu, memory, name or pid.")
	}

	q := metrics.ProcessQuery{
		Sort:       key,
		Reverse:    f.Reverse,
		Filter:     f.Filter,
		User:       f.User,
		Limit:      cfg.Limit,
		Restricted: cfg.Restricted,
	}
	if f.Limit >= 0 {
		q.Limit = f.Limit
	}

	if f.Restricted != "" {
		if f.Restricted != metrics.RestrictedShow && f.Restricted != metrics.RestrictedHide {
			return metrics.ProcessQuery{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' isn't a restricted-process policy", f.Restricted),
				"Use --restricted show or --restricted hide.")
		}
		q.Restricted = f.Restricted
	}

	if f.Mine {
		if f.User != "" {
			return metrics.ProcessQuery{}, errors.New(errors.ErrConfig,
				"--mine and --user cannot be used together",
				"Use --mine for your own processes, or --user for someone else's.")
		}
		name, err := metrics.CurrentUsername()
		if err != nil {
			return metrics.ProcessQuery{}, errors.WrapWithCode(err, errors.ErrProvider,
				"Can't tell who you are", "Use --user <name> instead of --mine.")
		}
		q.User = name
	}
	return q, nil
}

// renderProcesses formats the process table with a one-line summary.
func renderProcesses(s metrics.ProcessSnapshot) string {
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{
			strconv.Itoa(int(r.PID)),
			r.Name.String(),
			r.Username.String(),
			monitor.FormatPercent(r.CPU),
			monitor.FormatPercent(r.Memory),
			r.RSS.Format(monitor.FormatBytes),
			r.Status.String(),
		})
	}

	summary := fmt.Sprintf("%d processes, %d matched, showing %d", s.Total, s.Matched, len(s.Rows))
	if s.Restricted > 0 {
		summary += fmt.Sprintf(", %d restricted", s.Restricted)
	}
	summary = ui.MutedStyle().Render(summary)

	if len(rows) == 0 {
		return summary + "\n"
	}
	return ui.RenderTable([]ui.TableColumn{
		{Title: "PID"}, {Title: "Name", Width: 24}, {Title: "User"},
		{Title: "CPU%"}, {Title: "MEM%"}, {Title: "RSS"}, {Title: "Status"},
	}, rows) + "\n" + summary + "\n"
}

func parsePID(arg string) (int32, error) {
	pid, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 32)
	if err != nil || pid <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a process ID", arg),
			"Find the PID with: termkit procs --filter <name>")
	}
	return int32(pid), nil
}

// confirmKill asks before terminating; tests replace it.
var confirmKill = func(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

func killProcess(cmd *cobra.Command, pid int32, yes bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if !yes {
		if !stdinIsTerminal() {
			return errors.New(errors.ErrConfig,
				"Refusing to kill without confirmation",
				"Pass --yes to confirm non-interactively.")
		}

		description := describeProcess(ctx, pid)
		ok, err := confirmKill(fmt.Sprintf("Terminate process %d?", pid), description)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Pass --yes to skip the prompt")
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := metrics.KillProcess(ctx, provider, pid); err != nil {
		suggestion := "Check the PID with: termkit procs"
		if metrics.IsPermissionDenied(err) {
			suggestion = "The process belongs to another user. Retry with elevated privileges."
		}
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Couldn't terminate process %d", pid), suggestion)
	}

	if machineMode {
		return WriteJSONSuccess(out, map[string]int32{"terminated": pid})
	}
	fmt.Fprintf(out, "%s Sent terminate to process %d\n", ui.SuccessStyle().Render(ui.SymbolSuccess), pid)
	return nil
}

// describeProcess names the process for the confirmation prompt.
func describeProcess(ctx context.Context, pid int32) string {
	h, err := provider.NewProcess(ctx, pid)
	if err != nil {
		return "The process could not be inspected."
	}
	name, err := h.NameWithContext(ctx)
	if err != nil {
		return "The process could not be inspected."
	}
	desc := name
	if user, err := h.UsernameWithContext(ctx); err == nil {
		desc += " owned by " + user
	}
	return desc
}
