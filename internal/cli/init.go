package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/r3dlabs/termkit/internal/config"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	initForce  bool
	initGlobal bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .termkit.yaml with the defaults",
	Long: `Write a config file holding every setting at its default value.

By default the file is created in the current directory. With --global it
goes to ~/.config/termkit/config.yaml and applies everywhere.

Examples:
  termkit init
  termkit init --global
  termkit init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initPath(initGlobal)
		if err != nil {
			return err
		}
		return initConfig(cmd, path, initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().BoolVarP(&initGlobal, "global", "g", false, "write the global config instead")
	rootCmd.AddCommand(initCmd)
}

func initPath(global bool) (string, error) {
	if !global {
		return filepath.Join(".", config.ConfigFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Can't find your home directory", "Create the file by hand, or run without --global")
	}
	return filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile), nil
}

// confirmOverwrite asks before replacing a config; tests replace it.
var confirmOverwrite = func(path string) (bool, error) {
	var overwrite bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
				Value(&overwrite),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return overwrite, nil
}

func initConfig(cmd *cobra.Command, path string, force bool) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err == nil && !force {
		if !stdinIsTerminal() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}
		overwrite, err := confirmOverwrite(path)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't create "+filepath.Dir(path), "Check directory permissions")
	}
	if err := config.WriteDefault(path, true); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path, "Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)
	fmt.Fprintln(out, ui.MutedStyle().Render("  Change a setting with: termkit config set live.interval 250ms"))
	return nil
}
