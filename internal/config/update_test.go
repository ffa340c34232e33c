package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "interval: 500ms")
	assert.Contains(t, content, "processes: 1m0s")
	assert.Contains(t, content, "restricted: show")

	// The written file must load back to the defaults.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	err := WriteDefault(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteDefault(path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "thresholds:")
}

func TestSetValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	initial := `# termkit settings
version: 1
live:
  # poll faster on this box
  interval: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0644))

	require.NoError(t, SetValue(path, "live.interval", "250ms"))
	require.NoError(t, SetValue(path, "processes.limit", "12"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# poll faster on this box", "comments should be preserved")
	assert.Contains(t, content, "interval: 250ms")
	assert.True(t, strings.Contains(content, "processes:\n  limit: 12"), "missing section should be created")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Live.Interval)
	assert.Equal(t, 12, cfg.Processes.Limit)
}

func TestSetValue_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nlive:\n  interval: 500ms\n"), 0644))

	err := SetValue(path, "live", "fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a section")

	err = SetValue(path, "version.major", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a section")

	err = SetValue(filepath.Join(dir, "missing.yaml"), "live.interval", "1s")
	require.Error(t, err)
}
