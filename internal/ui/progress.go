package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	gaugeFilled = '█'
	gaugeEmpty  = '░'
)

// GaugeWidth is the bar width used by the static views.
const GaugeWidth = 20

// RenderGauge draws a usage bar followed by the percentage, e.g.
// "[█████████░░░░░░░░░░░]  45%". percent is clamped to 0-100. The bar is
// green below warning, amber from warning and red from critical.
func RenderGauge(percent float64, width int, warning, critical float64) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(percent, 100))

	filled := int(percent / 100 * float64(width))

	var sb strings.Builder
	sb.Grow(width*3 + 2)
	sb.WriteRune('[')
	sb.WriteString(strings.Repeat(string(gaugeFilled), filled))
	sb.WriteString(strings.Repeat(string(gaugeEmpty), width-filled))
	sb.WriteRune(']')

	style := lipgloss.NewStyle().Foreground(GaugeColor(percent, warning, critical))
	return style.Render(sb.String()) + fmt.Sprintf(" %3.0f%%", percent)
}

// GaugeColor picks the threshold colour for percent.
func GaugeColor(percent, warning, critical float64) lipgloss.Color {
	switch {
	case percent >= critical:
		return ColorError
	case percent >= warning:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
