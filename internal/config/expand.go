package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ExpandPath expands ~ and ${VAR} references in a local path from the
// config file, e.g. "~/.cache/termkit/${HOSTNAME}.db".
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	return ExpandTilde(os.Expand(path, lookupVar))
}

// lookupVar resolves ${VAR} for ExpandPath. HOSTNAME and USER fall back to
// the OS when unset in the environment.
func lookupVar(name string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	switch name {
	case "HOSTNAME":
		if h, err := os.Hostname(); err == nil {
			return h
		}
	case "USER":
		for _, alt := range []string{"LOGNAME", "USERNAME"} {
			if v := os.Getenv(alt); v != "" {
				return v
			}
		}
	}
	return ""
}
