package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width. A zero width is
// sized to fit the widest cell.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a Bubbles table with the CLI styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	columns = fitWidths(columns, rows)
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Static output has no cursor; keep the first row unhighlighted.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderTable renders a non-interactive table for command output.
func RenderTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	view := NewTable(columns, tableRows).View()
	// bubbles pads short tables to their height with blank lines.
	return strings.TrimRight(view, "\n ")
}

// KeyValue is one labelled reading in a details block.
type KeyValue struct {
	Key   string
	Value string
}

// RenderKeyValues renders a titled block of aligned "key  value" lines.
func RenderKeyValues(title string, pairs []KeyValue) string {
	width := 0
	for _, p := range pairs {
		if w := lipgloss.Width(p.Key); w > width {
			width = w
		}
	}

	keyStyle := MutedStyle().Width(width + 2)

	var b strings.Builder
	b.WriteString(TitleStyle().Render(title))
	b.WriteString("\n")
	for _, p := range pairs {
		b.WriteString("  ")
		b.WriteString(keyStyle.Render(p.Key))
		b.WriteString(p.Value)
		b.WriteString("\n")
	}
	return b.String()
}

// fitWidths sizes zero-width columns to their content.
func fitWidths(columns []TableColumn, rows []table.Row) []TableColumn {
	out := make([]TableColumn, len(columns))
	copy(out, columns)
	for i := range out {
		if out[i].Width > 0 {
			continue
		}
		w := lipgloss.Width(out[i].Title)
		for _, row := range rows {
			if i < len(row) {
				if cw := lipgloss.Width(row[i]); cw > w {
					w = cw
				}
			}
		}
		out[i].Width = w
	}
	return out
}
