package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .termkit.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Live       LiveConfig       `yaml:"live" mapstructure:"live"`
	Processes  ProcessesConfig  `yaml:"processes" mapstructure:"processes"`
	Network    NetworkConfig    `yaml:"network" mapstructure:"network"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	History    HistoryConfig    `yaml:"history" mapstructure:"history"`
	Serve      ServeConfig      `yaml:"serve" mapstructure:"serve"`
}

// LiveConfig controls the live monitoring sessions.
type LiveConfig struct {
	// Interval is the poll interval between snapshots.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// System is how long `termkit sys live` runs.
	System time.Duration `yaml:"system" mapstructure:"system"`

	// Processes is how long `termkit procs live` runs.
	Processes time.Duration `yaml:"processes" mapstructure:"processes"`

	// Network is how long `termkit net live` runs.
	Network time.Duration `yaml:"network" mapstructure:"network"`
}

// Restricted process policies.
const (
	RestrictedShow = "show"
	RestrictedHide = "hide"
)

// ProcessesConfig controls the process table.
type ProcessesConfig struct {
	// Limit is the number of rows shown.
	Limit int `yaml:"limit" mapstructure:"limit"`

	// Sort is one of cpu, memory, name, pid.
	Sort string `yaml:"sort" mapstructure:"sort"`

	// Restricted decides what happens to processes whose details are
	// permission-denied: "show" keeps them with N/A cells, "hide" drops them.
	Restricted string `yaml:"restricted" mapstructure:"restricted"`
}

// NetworkConfig controls the network utilities.
type NetworkConfig struct {
	// CheckTimeout bounds each TCP port check.
	CheckTimeout time.Duration `yaml:"check_timeout" mapstructure:"check_timeout"`

	// CheckWorkers caps concurrent port checks.
	CheckWorkers int `yaml:"check_workers" mapstructure:"check_workers"`
}

// ThresholdsConfig sets the percentages where gauges turn yellow and red.
type ThresholdsConfig struct {
	Warning  int `yaml:"warning" mapstructure:"warning"`
	Critical int `yaml:"critical" mapstructure:"critical"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// HistoryConfig controls the live session log.
type HistoryConfig struct {
	// Enabled records every finished live session.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite file; empty means ~/.local/share/termkit/history.db.
	Path string `yaml:"path" mapstructure:"path"`
}

// ServeConfig controls `termkit serve`.
type ServeConfig struct {
	// Addr is the listen address of the snapshot API.
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Default values shared by DefaultConfig and the viper defaults.
const (
	DefaultInterval        = 500 * time.Millisecond
	DefaultSystemDuration  = 30 * time.Second
	DefaultProcessDuration = 60 * time.Second
	DefaultNetworkDuration = 30 * time.Second
	DefaultProcessLimit    = 20
	DefaultCheckTimeout    = 3 * time.Second
	DefaultCheckWorkers    = 16
	DefaultWarningPercent  = 50
	DefaultCriticalPercent = 80
	MinInterval            = 100 * time.Millisecond
	MaxInterval            = 500 * time.Millisecond
	DefaultServeAddr       = "127.0.0.1:7420"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Live: LiveConfig{
			Interval:  DefaultInterval,
			System:    DefaultSystemDuration,
			Processes: DefaultProcessDuration,
			Network:   DefaultNetworkDuration,
		},
		Processes: ProcessesConfig{
			Limit:      DefaultProcessLimit,
			Sort:       "cpu",
			Restricted: RestrictedShow,
		},
		Network: NetworkConfig{
			CheckTimeout: DefaultCheckTimeout,
			CheckWorkers: DefaultCheckWorkers,
		},
		Thresholds: ThresholdsConfig{
			Warning:  DefaultWarningPercent,
			Critical: DefaultCriticalPercent,
		},
		Output: OutputConfig{
			Color: "auto",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Serve: ServeConfig{
			Addr: DefaultServeAddr,
		},
	}
}
