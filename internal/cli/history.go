package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/history"
	"github.com/r3dlabs/termkit/internal/monitor"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	historyTool      string
	historyLimit     int
	historyOlderThan string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded live sessions",
	Long: `Show the live sessions termkit has recorded, newest first.

Examples:
  termkit history
  termkit history --tool procs --limit 5
  termkit history prune --older-than 720h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit < 1 {
			return errors.New(errors.ErrConfig, "--limit must be at least 1", "")
		}
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		sessions, err := store.List(commandContext(cmd), history.Filter{Tool: historyTool, Limit: historyLimit})
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrFS, "Can't read session history", "")
		}
		if machineMode {
			if sessions == nil {
				sessions = []history.Session{}
			}
			return WriteJSONSuccess(cmd.OutOrStdout(), sessions)
		}
		writeLines(cmd.OutOrStdout(), renderSessions(sessions))
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old session records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		age, err := ParseDurationFlag("older-than", historyOlderThan, 0)
		if err != nil {
			return err
		}
		store, err := requireHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Prune(commandContext(cmd), clock.Now().Add(-age))
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrFS, "Can't prune session history", "")
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), map[string]int64{"deleted": n})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %d sessions older than %s\n",
			ui.SuccessStyle().Render(ui.SymbolSuccess), n, age)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyTool, "tool", "t", "", "only sessions of this tool (sys, procs, net)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of sessions")
	historyPruneCmd.Flags().StringVar(&historyOlderThan, "older-than", "720h", "delete sessions started before this long ago")

	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func requireHistory() (*history.Store, error) {
	store, err := openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New(errors.ErrConfig,
			"Session history is disabled",
			"Enable it with: termkit config set history.enabled true")
	}
	return store, nil
}

func renderSessions(sessions []history.Session) string {
	if len(sessions) == 0 {
		return ui.MutedStyle().Render("No live sessions recorded yet.")
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		status := s.Status
		if s.Error != "" {
			status += ": " + s.Error
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.StartedAt.Local().Format(time.DateTime),
			s.Tool,
			monitor.FormatClock(s.Elapsed),
			strconv.Itoa(s.Cycles),
			strconv.Itoa(s.Degraded),
			status,
		})
	}
	return ui.RenderTable([]ui.TableColumn{
		{Title: "ID"}, {Title: "Started"}, {Title: "Tool"}, {Title: "Ran"},
		{Title: "Cycles"}, {Title: "Degraded"}, {Title: "Status", Width: 40},
	}, rows)
}
