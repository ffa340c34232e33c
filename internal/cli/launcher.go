package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/spf13/cobra"
)

// launcherItem is one entry of the interactive menu.
type launcherItem struct {
	Label string
	Args  []string
}

var launcherItems = []launcherItem{
	{Label: "System info", Args: []string{"sys"}},
	{Label: "System monitor (live)", Args: []string{"sys", "live"}},
	{Label: "Processes", Args: []string{"procs"}},
	{Label: "Process monitor (live)", Args: []string{"procs", "live"}},
	{Label: "Network", Args: []string{"net"}},
	{Label: "Network monitor (live)", Args: []string{"net", "live"}},
	{Label: "Files", Args: []string{"files"}},
	{Label: "Session history", Args: []string{"history"}},
}

const launcherQuit = -1

// chooseTool shows the menu and returns the chosen index or launcherQuit;
// tests replace it.
var chooseTool = func() (int, error) {
	choice := launcherQuit
	options := make([]huh.Option[int], 0, len(launcherItems)+1)
	for i, item := range launcherItems {
		options = append(options, huh.NewOption(item.Label, i))
	}
	options = append(options, huh.NewOption("Quit", launcherQuit))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("termkit").
				Description("Pick a tool").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return launcherQuit, err
	}
	return choice, nil
}

// chooseDir asks which directory to list; tests replace it.
var chooseDir = func() (string, error) {
	dir := "."
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Directory").
				Value(&dir),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return dir, nil
}

// runLauncher loops over the menu until the user quits. A failing tool is
// reported and the menu comes back.
func runLauncher(root *cobra.Command) error {
	out := root.OutOrStdout()
	for {
		choice, err := chooseTool()
		if stderrors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrRender,
				"The menu could not run", "Run a tool directly, e.g. termkit sys")
		}
		if choice == launcherQuit {
			return nil
		}

		args := append([]string{}, launcherItems[choice].Args...)
		if args[0] == "files" {
			dir, err := chooseDir()
			if stderrors.Is(err, huh.ErrUserAborted) {
				continue
			}
			if err != nil {
				return err
			}
			args = append(args, dir)
		}

		if err := launch(root, args); err != nil {
			if _, ok := errors.GetExitCode(err); !ok {
				fmt.Fprintln(root.ErrOrStderr(), err)
			}
		}
		fmt.Fprintln(out)
	}
}

// launch runs the subcommand named by args with its flag defaults.
func launch(root *cobra.Command, args []string) error {
	target, rest, err := root.Find(args)
	if err != nil {
		return err
	}
	if target.RunE == nil {
		return fmt.Errorf("%s is not runnable", target.CommandPath())
	}
	target.SetContext(commandContext(root))
	target.SetOut(root.OutOrStdout())
	target.SetErr(root.ErrOrStderr())
	return target.RunE(target, rest)
}
