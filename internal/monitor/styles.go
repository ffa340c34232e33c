package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	// Semantic colors for metrics
	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	// Graph colors
	ColorGraph    = lipgloss.Color("#00FFFF")
	ColorGraphAlt = lipgloss.Color("#BF40FF")
)

// Thresholds are the percentages where a gauge turns yellow and red.
type Thresholds struct {
	Warning  int
	Critical int
}

// DefaultThresholds matches the config defaults.
var DefaultThresholds = Thresholds{Warning: 50, Critical: 80}

// Color returns the severity color for percent.
func (t Thresholds) Color(percent float64) lipgloss.Color {
	switch {
	case percent >= float64(t.Critical):
		return ColorCritical
	case percent >= float64(t.Warning):
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// Style returns a foreground style for percent.
func (t Thresholds) Style(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Color(percent))
}

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)
)

// ProgressBar renders a bracketless bar colored by t.
func (t Thresholds) ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}

	// Clamp percentage to 0-100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return t.Style(percent).Render(bar)
}

// UnknownBar renders an empty bar for a reading that is not available.
func UnknownBar(width int) string {
	if width < 1 {
		width = 1
	}
	return MutedStyle.Render(strings.Repeat("▱", width))
}

// SectionHeader renders a section header with the title on the left and value on the right.
// Format: ╭─ Title ────────────────────────────────────── Value ╮
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}

	// Left: "╭─ " + title + " ", right: " " + value + " ╮"
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	return borderStyle.Render("╭─ ") +
		TitleStyle.Render(title) +
		borderStyle.Render(" "+middle+" ") +
		valueStyle.Render(value) +
		borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
// Format: ╰────────────────────────────────────────────────────╯
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders, properly padded to width.
// Format: │ content                                              │
func SectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	borderStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	innerWidth := width - 4

	contentWidth := lipgloss.Width(content)
	if contentWidth > innerWidth {
		content = truncate(content, innerWidth)
		contentWidth = lipgloss.Width(content)
	}
	padding := innerWidth - contentWidth

	return borderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + borderStyle.Render("│")
}

// Section renders a bordered block of lines.
func Section(title, value string, lines []string, width int) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, SectionHeader(title, value, width))
	for _, l := range lines {
		for _, sub := range strings.Split(l, "\n") {
			out = append(out, SectionContentLine(sub, width))
		}
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}

// truncate shortens plain or styled text to width cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
