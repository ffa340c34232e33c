package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/r3dlabs/termkit/internal/files"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var filesAll bool

var filesCmd = &cobra.Command{
	Use:     "files [dir]",
	Aliases: []string{"ls"},
	Short:   "List a directory with sizes and file types",
	Long: `List a directory, folders first, with each entry's type, size and
modification time.

Examples:
  termkit files
  termkit files ~/Downloads --all
  termkit files /var/log --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		listing, err := files.List(dir, files.Options{All: filesAll})
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), listing)
		}
		writeLines(cmd.OutOrStdout(), renderListing(listing))
		return nil
	},
}

func init() {
	filesCmd.Flags().BoolVarP(&filesAll, "all", "a", false, "include dotfiles")
	rootCmd.AddCommand(filesCmd)
}

func renderListing(l *files.Listing) string {
	out := ui.TitleStyle().Render(l.Path) + "\n"

	if len(l.Entries) > 0 {
		rows := make([][]string, 0, len(l.Entries))
		for _, e := range l.Entries {
			name := e.Name
			if e.IsDir {
				name += "/"
			}
			rows = append(rows, []string{
				e.Kind.Icon() + " " + name,
				string(e.Kind),
				e.SizeString(),
				humanize.Time(e.ModTime),
			})
		}
		out += ui.RenderTable([]ui.TableColumn{
			{Title: "Name", Width: 40}, {Title: "Type"}, {Title: "Size"}, {Title: "Modified"},
		}, rows) + "\n"
	}

	summary := fmt.Sprintf("%d folders, %d files, %s", l.Dirs, l.Files, humanize.IBytes(uint64(l.TotalSize)))
	if l.HiddenCount > 0 {
		summary += fmt.Sprintf(", %d hidden", l.HiddenCount)
	}
	if l.Skipped > 0 {
		summary += fmt.Sprintf(", %d unreadable", l.Skipped)
	}
	return out + ui.MutedStyle().Render(summary)
}
