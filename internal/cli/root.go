package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/r3dlabs/termkit/internal/config"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/logger"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

var (
	// loadedConfig is set by the root PersistentPreRunE.
	loadedConfig *config.Config
	// loadedConfigPath is empty when defaults are in use.
	loadedConfigPath string

	// provider backs every sampler; tests swap in a fake machine.
	provider = metrics.DefaultBackend()

	// stdinIsTerminal and stdoutIsTerminal gate prompts and dashboards.
	stdinIsTerminal  = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

var rootCmd = &cobra.Command{
	Use:   "termkit",
	Short: "System, process, network and file utilities for the terminal",
	Long: `termkit bundles small terminal utilities with live dashboards.

  termkit sys [live]        system info, or a live CPU/memory/disk view
  termkit procs [live]      top processes, or a live process table
  termkit net [live]        interfaces and traffic, or live throughput
  termkit files [dir]       directory snapshot
  termkit serve             snapshots as JSON over HTTP

Run termkit with no arguments in a terminal to pick a tool from a menu.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stdinIsTerminal() || !stdoutIsTerminal() {
			return cmd.Help()
		}
		return runLauncher(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .termkit.yaml, then ~/.config/termkit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging (same as TERMKIT_DEBUG=1)")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output for one-shot commands")
}

// setupCommand loads config and applies the global output flags.
func setupCommand(cmd *cobra.Command, args []string) error {
	if verbose {
		os.Setenv(logger.DebugEnvVar, "1")
	}

	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	loadedConfig, loadedConfigPath = cfg, path
	logger.Default().Debug("config: %q", path)

	switch {
	case noColor || os.Getenv("NO_COLOR") != "" || machineMode:
		ui.DisableColors()
	default:
		ui.SetColorMode(cfg.Output.Color)
	}
	return nil
}

// currentConfig returns the loaded config, or defaults when a command runs
// without the root pre-run (tests, the launcher).
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.DefaultConfig()
	}
	return loadedConfig
}

// Execute runs the root command and exits with the right status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}

	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
		os.Exit(1)
	}

	printError(os.Stderr, err)
	os.Exit(1)
}

// printError writes a command error. Cobra already appends suggestions to
// unknown command errors, so only the usage hint is added here.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	if isUnknownCommandError(err) {
		fmt.Fprintln(w, "Run 'termkit --help' for usage.")
	}
}

// isUnknownCommandError reports whether err is cobra's unknown command or
// flag error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") || strings.HasPrefix(msg, "unknown shorthand flag")
}
