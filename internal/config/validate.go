package config

import (
	"fmt"
	"time"

	"github.com/r3dlabs/termkit/internal/errors"
)

// SortKeys lists the accepted values for processes.sort.
var SortKeys = []string{"cpu", "memory", "name", "pid"}

// ColorModes lists the accepted values for output.color.
var ColorModes = []string{"auto", "always", "never"}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but termkit only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade termkit or lower the version field.")
	}

	if err := validateLive(cfg.Live); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'live' section in your .termkit.yaml.")
	}

	if err := validateProcesses(cfg.Processes); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'processes' section in your .termkit.yaml.")
	}

	if err := validateNetwork(cfg.Network); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'network' section in your .termkit.yaml.")
	}

	if err := validateThresholds(cfg.Thresholds); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'thresholds' section in your .termkit.yaml.")
	}

	if !contains(ColorModes, cfg.Output.Color) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("output.color '%s' isn't recognized", cfg.Output.Color),
			"Use one of: auto, always, never.")
	}

	if cfg.Serve.Addr == "" {
		return errors.New(errors.ErrConfig,
			"serve.addr is empty",
			"Set it to a listen address like 127.0.0.1:7420.")
	}

	return nil
}

// ValidateInterval checks a poll interval against the responsiveness bounds.
// Quit has to land within half a second, so the interval may not exceed that.
func ValidateInterval(interval time.Duration) error {
	if interval < MinInterval {
		return fmt.Errorf("interval %s is below the %s minimum", interval, MinInterval)
	}
	if interval > MaxInterval {
		return fmt.Errorf("interval %s exceeds the %s maximum", interval, MaxInterval)
	}
	return nil
}

// ValidateDuration checks a live session duration against its poll interval.
func ValidateDuration(name string, duration, interval time.Duration) error {
	if duration < interval {
		return fmt.Errorf("live.%s (%s) is shorter than the poll interval (%s)", name, duration, interval)
	}
	return nil
}

func validateLive(live LiveConfig) error {
	if err := ValidateInterval(live.Interval); err != nil {
		return fmt.Errorf("live.interval: %w", err)
	}
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"system", live.System},
		{"processes", live.Processes},
		{"network", live.Network},
	}
	for _, d := range durations {
		if err := ValidateDuration(d.name, d.d, live.Interval); err != nil {
			return err
		}
	}
	return nil
}

func validateProcesses(p ProcessesConfig) error {
	if p.Limit < 1 {
		return fmt.Errorf("processes.limit must be at least 1 (got %d)", p.Limit)
	}
	if !contains(SortKeys, p.Sort) {
		return fmt.Errorf("processes.sort '%s' isn't one of cpu, memory, name, pid", p.Sort)
	}
	if p.Restricted != RestrictedShow && p.Restricted != RestrictedHide {
		return fmt.Errorf("processes.restricted '%s' must be 'show' or 'hide'", p.Restricted)
	}
	return nil
}

func validateNetwork(n NetworkConfig) error {
	if n.CheckTimeout <= 0 {
		return fmt.Errorf("network.check_timeout must be positive (got %s)", n.CheckTimeout)
	}
	if n.CheckWorkers < 1 {
		return fmt.Errorf("network.check_workers must be at least 1 (got %d)", n.CheckWorkers)
	}
	return nil
}

func validateThresholds(t ThresholdsConfig) error {
	if t.Warning < 0 || t.Critical > 100 {
		return fmt.Errorf("thresholds must be between 0 and 100 (warning %d, critical %d)", t.Warning, t.Critical)
	}
	if t.Warning >= t.Critical {
		return fmt.Errorf("thresholds.warning (%d) must be below thresholds.critical (%d)", t.Warning, t.Critical)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
