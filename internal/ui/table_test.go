package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable(t *testing.T) {
	tbl := NewTable([]TableColumn{
		{Title: "Interface", Width: 12},
		{Title: "MTU", Width: 6},
	}, []table.Row{
		{"eth0", "1500"},
		{"lo", "65536"},
	})

	view := tbl.View()
	assert.Contains(t, view, "Interface")
	assert.Contains(t, view, "eth0")
	assert.Contains(t, view, "65536")
}

func TestRenderTable(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, RenderTable([]TableColumn{{Title: "PID"}}, nil))
	})

	t.Run("auto width fits content", func(t *testing.T) {
		out := RenderTable([]TableColumn{
			{Title: "Name"},
			{Title: "Size", Width: 8},
		}, [][]string{
			{"a-rather-long-file-name.txt", "1.2 KiB"},
		})
		assert.Contains(t, out, "a-rather-long-file-name.txt", "not truncated")
		assert.False(t, strings.HasSuffix(out, "\n"))
	})
}

func TestFitWidths(t *testing.T) {
	cols := fitWidths([]TableColumn{
		{Title: "Proto"},
		{Title: "Local", Width: 30},
	}, []table.Row{
		{"tcp6", "[::1]:8080"},
		{"udp", "0.0.0.0:53"},
	})

	require.Len(t, cols, 2)
	assert.Equal(t, 5, cols[0].Width, "header is wider than cells")
	assert.Equal(t, 30, cols[1].Width, "explicit widths are kept")
}

func TestRenderKeyValues(t *testing.T) {
	out := RenderKeyValues("Host", []KeyValue{
		{Key: "Hostname", Value: "build-01"},
		{Key: "OS", Value: "linux"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Host")
	assert.Contains(t, lines[1], "build-01")
	assert.Contains(t, lines[2], "linux")
	// Values line up after the longest key.
	assert.Equal(t, strings.Index(lines[1], "build-01"), strings.Index(lines[2], "linux"))
}
