package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/data/history.db", filepath.Join(home, "data", "history.db")},
		{"/var/lib/termkit.db", "/var/lib/termkit.db"},
		{"~other/file", "~other/file"},
		{"relative/~/path", "relative/~/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandTilde(tt.in))
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("TERMKIT_TEST_DIR", "/srv/termkit")
	t.Setenv("HOSTNAME", "build-01")

	assert.Equal(t, "/srv/termkit/build-01.db", ExpandPath("${TERMKIT_TEST_DIR}/${HOSTNAME}.db"))
	assert.Equal(t, "/tmp/.db", ExpandPath("/tmp/${TERMKIT_UNSET_VAR}.db"))
	assert.Empty(t, ExpandPath(""))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "build-01.db"), ExpandPath("~/$HOSTNAME.db"))
}
