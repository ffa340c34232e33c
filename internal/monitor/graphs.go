package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// sparkLevels holds the eight block heights, lowest first.
var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// span is the value range a graph is drawn against.
type span struct {
	lo, hi float64
}

// percentSpan keeps percentage graphs on a stable 0-100 scale.
var percentSpan = span{0, 100}

// spanOf returns percentSpan when every reading fits in 0-100, otherwise
// the observed range.
func spanOf(data []float64) span {
	if len(data) == 0 {
		return percentSpan
	}
	s := span{data[0], data[0]}
	for _, v := range data[1:] {
		s.lo = min(s.lo, v)
		s.hi = max(s.hi, v)
	}
	if s.lo >= 0 && s.hi <= 100 {
		return percentSpan
	}
	return s
}

// level maps v onto one of n steps of the span. A flat span sits mid-height.
func (s span) level(v float64, n int) int {
	if s.hi <= s.lo {
		return n / 2
	}
	i := int((v - s.lo) / (s.hi - s.lo) * float64(n-1))
	return max(0, min(i, n-1))
}

// compress shrinks data to at most n points, keeping the peak of each
// bucket so short spikes stay visible. Shorter series are returned as is.
func compress(data []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(data) <= n {
		return data
	}
	out := make([]float64, n)
	for i := range out {
		start := i * len(data) / n
		end := max((i+1)*len(data)/n, start+1)
		peak := data[start]
		for _, v := range data[start+1 : end] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}

func sparkline(data []float64, width int, s span) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	points := compress(data, width)
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(points)))
	for _, v := range points {
		b.WriteRune(sparkLevels[s.level(v, len(sparkLevels))])
	}
	return b.String()
}

// RenderRateSparkline draws a one-row sparkline scaled to the series' own
// range, newest reading at the right edge.
func RenderRateSparkline(data []float64, width int) string {
	return sparkline(data, width, spanOf(data))
}

// RenderPercentSparkline draws a one-row 0-100 sparkline in color.
func RenderPercentSparkline(data []float64, width int, color lipgloss.Color) string {
	line := sparkline(data, width, percentSpan)
	if line == "" {
		return ""
	}
	trimmed := strings.TrimLeft(line, " ")
	pad := line[:len(line)-len(trimmed)]
	return pad + lipgloss.NewStyle().Foreground(color).Render(trimmed)
}

// RenderPlot draws a line chart of data with asciigraph. Percentage series
// are pinned to a 0-100 axis so the scale does not jump between frames.
func RenderPlot(data []float64, width, height int, caption string, color asciigraph.AnsiColor) string {
	if len(data) < 2 || width < 10 || height < 2 {
		return ""
	}

	// The y-axis labels take roughly 8 columns.
	plotWidth := width - 8
	data = compress(data, plotWidth)

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(color),
		asciigraph.Precision(0),
	}
	if caption != "" {
		opts = append(opts, asciigraph.Caption(caption))
	}
	if spanOf(data) == percentSpan {
		opts = append(opts, asciigraph.LowerBound(0), asciigraph.UpperBound(100))
	}
	return asciigraph.Plot(data, opts...)
}
