package monitor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/r3dlabs/termkit/internal/metrics"
)

// ProcessPanel renders the top processes as a scrollable table.
type ProcessPanel struct {
	thresholds Thresholds
	table      table.Model
	history    *History
	last       *metrics.ProcessSnapshot
}

// processColumns are the table columns. Name absorbs spare width.
var processColumns = []table.Column{
	{Title: "PID", Width: 7},
	{Title: "NAME", Width: 20},
	{Title: "USER", Width: 12},
	{Title: "CPU%", Width: 6},
	{Title: "MEM%", Width: 6},
	{Title: "RSS", Width: 10},
	{Title: "STATUS", Width: 9},
}

// NewProcessPanel creates a process panel colored by t.
func NewProcessPanel(t Thresholds) *ProcessPanel {
	tbl := table.New(
		table.WithColumns(processColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorTextPrimary)
	s.Cell = s.Cell.
		Foreground(ColorTextSecondary)
	s.Selected = s.Selected.
		Foreground(ColorTextPrimary).
		Background(ColorBorder).
		Bold(false)
	tbl.SetStyles(s)

	return &ProcessPanel{
		thresholds: t,
		table:      tbl,
		history:    NewHistory(DefaultHistorySize),
	}
}

// Title implements Panel.
func (p *ProcessPanel) Title() string {
	return "termkit process monitor"
}

// Update implements Panel.
func (p *ProcessPanel) Update(s metrics.ProcessSnapshot) {
	p.last = &s
	p.history.Push(SeriesRunning, float64(s.Statuses["running"]))
	p.table.SetRows(ProcessTableRows(s.Rows))
}

// Rows returns the rows currently in the table.
func (p *ProcessPanel) Rows() []table.Row {
	return p.table.Rows()
}

// Cursor returns the selected row index.
func (p *ProcessPanel) Cursor() int {
	return p.table.Cursor()
}

// processKeys are the table navigation keys the panel forwards.
var processKeys = []key.Binding{
	key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous process")),
	key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next process")),
	key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll a page")),
	key.NewBinding(key.WithKeys("home", "g", "end", "G"), key.WithHelp("home/end", "first / last process")),
}

// HandleKey implements KeyHandler by forwarding navigation to the table.
func (p *ProcessPanel) HandleKey(msg tea.KeyMsg) bool {
	if !key.Matches(msg, processKeys...) {
		return false
	}
	p.table, _ = p.table.Update(msg)
	return true
}

// KeyBindings implements HelpProvider.
func (p *ProcessPanel) KeyBindings() []key.Binding {
	return processKeys
}

// View implements Panel.
func (p *ProcessPanel) View(width, height int) string {
	if p.last == nil {
		return ""
	}

	p.table.SetColumns(fitColumns(processColumns, width))
	p.table.SetWidth(width)
	tableHeight := height - 3
	if tableHeight < 3 {
		tableHeight = 3
	}
	p.table.SetHeight(tableHeight)

	return p.summary(*p.last) + "\n\n" + p.table.View()
}

// Line implements Panel.
func (p *ProcessPanel) Line(s metrics.ProcessSnapshot) string {
	var top []string
	for i, row := range s.Rows {
		if i == 3 {
			break
		}
		top = append(top, fmt.Sprintf("%s(%d) %s", row.Name.String(), row.PID, FormatPercent(row.CPU)))
	}
	return fmt.Sprintf("%d procs, %d running | top: %s", s.Total, s.Statuses["running"], strings.Join(top, ", "))
}

func (p *ProcessPanel) summary(s metrics.ProcessSnapshot) string {
	parts := []string{
		ValueStyle.Render(strconv.Itoa(s.Total)) + LabelStyle.Render(" processes"),
	}

	states := make([]string, 0, len(s.Statuses))
	for state := range s.Statuses {
		states = append(states, state)
	}
	sort.Strings(states)
	for _, state := range states {
		parts = append(parts, LabelStyle.Render(fmt.Sprintf("%s %d", state, s.Statuses[state])))
	}

	if s.Restricted > 0 {
		parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d restricted", s.Restricted)))
	}

	query := "sort " + string(s.Query.Sort)
	if s.Query.Reverse {
		query += " (reversed)"
	}
	if s.Query.Filter != "" {
		query += fmt.Sprintf(" · filter %q", s.Query.Filter)
	}
	if s.Query.User != "" {
		query += " · user " + s.Query.User
	}
	parts = append(parts, MutedStyle.Render(query))

	return strings.Join(parts, MutedStyle.Render(" · "))
}

// ProcessTableRows converts process rows to table cells, with "N/A" for
// readings that could not be taken.
func ProcessTableRows(rows []metrics.ProcessRow) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			strconv.Itoa(int(r.PID)),
			r.Name.String(),
			r.Username.String(),
			r.CPU.Format(func(v float64) string { return fmt.Sprintf("%.1f", v) }),
			r.Memory.Format(func(v float64) string { return fmt.Sprintf("%.1f", v) }),
			r.RSS.Format(FormatBytes),
			r.Status.String(),
		})
	}
	return out
}

// fitColumns widens the name column to fill width.
func fitColumns(cols []table.Column, width int) []table.Column {
	out := make([]table.Column, len(cols))
	copy(out, cols)

	used := 0
	for _, c := range out {
		// bubbles/table pads each cell by one column on either side.
		used += c.Width + 2
	}
	if extra := width - used; extra > 0 {
		out[1].Width += extra
	}
	return out
}
