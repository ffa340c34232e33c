package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".termkit.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/termkit"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix is the prefix for environment overrides (TERMKIT_LIVE_INTERVAL, ...).
	EnvPrefix = "TERMKIT"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'termkit init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find returns the config file to use: explicit if given (it must exist),
// else the first existing path from SearchPaths, else "".
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	home, _ := os.UserHomeDir()

	for _, candidate := range SearchPaths(cwd, home) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// SearchPaths lists where Find looks, in order: .termkit.yaml in cwd and
// each parent up to the repository root or just below home, then the
// global config under home.
func SearchPaths(cwd, home string) []string {
	var paths []string
	for dir := cwd; ; {
		paths = append(paths, filepath.Join(dir, ConfigFileName))
		parent := filepath.Dir(dir)
		if parent == dir || parent == home || isRepoRoot(dir) {
			break
		}
		dir = parent
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, GlobalConfigDir, GlobalConfigFile))
	}
	return paths
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
// Environment overrides apply in both cases.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

var envKeyReplacer = strings.NewReplacer(".", "_")

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	// Viper's default decode hooks turn "500ms" into time.Duration.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent
// from the file.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	for key, value := range map[string]any{
		"version":               d.Version,
		"live.interval":         d.Live.Interval,
		"live.system":           d.Live.System,
		"live.processes":        d.Live.Processes,
		"live.network":          d.Live.Network,
		"processes.limit":       d.Processes.Limit,
		"processes.sort":        d.Processes.Sort,
		"processes.restricted":  d.Processes.Restricted,
		"network.check_timeout": d.Network.CheckTimeout,
		"network.check_workers": d.Network.CheckWorkers,
		"thresholds.warning":    d.Thresholds.Warning,
		"thresholds.critical":   d.Thresholds.Critical,
		"output.color":          d.Output.Color,
		"history.enabled":       d.History.Enabled,
		"history.path":          d.History.Path,
		"serve.addr":            d.Serve.Addr,
	} {
		v.SetDefault(key, value)
	}
}

// isRepoRoot reports whether dir holds a .git directory.
func isRepoRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}
