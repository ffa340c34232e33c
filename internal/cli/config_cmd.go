package cli

import (
	"fmt"
	"os"

	"github.com/r3dlabs/termkit/internal/config"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Long: `Print the config in effect: the file's settings with defaults and
TERMKIT_* environment overrides applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), cfg)
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Can't render config", "")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loadedConfigPath == "" {
			return errors.New(errors.ErrConfig,
				"No config file found, using defaults",
				"Run 'termkit init' to create one")
		}
		fmt.Fprintln(cmd.OutOrStdout(), loadedConfigPath)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Long: `Change one dotted key in the config file in use, keeping its comments.
The change is rejected if the result does not validate.

Examples:
  termkit config set live.interval 250ms
  termkit config set processes.sort memory
  termkit config set history.enabled false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConfigValue(cmd, loadedConfigPath, args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func setConfigValue(cmd *cobra.Command, path, key, value string) error {
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file to change",
			"Run 'termkit init' first")
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Can't read "+path, "")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't set %s", key), "Keys are dotted paths like live.interval")
	}

	cfg, err := config.Load(path)
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		if rerr := os.WriteFile(path, original, 0644); rerr != nil {
			return errors.WrapWithCode(rerr, errors.ErrConfig,
				"Invalid value and the original file could not be restored", "Fix "+path+" by hand")
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid value for %s", value, key), "The file was left unchanged")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", ui.SuccessStyle().Render(ui.SymbolSuccess), key, value)
	return nil
}
