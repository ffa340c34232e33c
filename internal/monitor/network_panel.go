package monitor

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/r3dlabs/termkit/internal/metrics"
)

// NetworkPanel renders interface throughput and the connection count.
type NetworkPanel struct {
	history *History
	last    *metrics.NetworkSnapshot
	peak    float64
}

// NewNetworkPanel creates a network panel.
func NewNetworkPanel() *NetworkPanel {
	return &NetworkPanel{history: NewHistory(DefaultHistorySize)}
}

// Title implements Panel.
func (p *NetworkPanel) Title() string {
	return "termkit network monitor"
}

// Update implements Panel. Rates are undefined on the first cycle and are
// not recorded.
func (p *NetworkPanel) Update(s metrics.NetworkSnapshot) {
	p.last = &s
	if s.TotalRate.Recv.OK() {
		p.history.Push(SeriesRecv, s.TotalRate.Recv.Value)
	}
	if s.TotalRate.Sent.OK() {
		p.history.Push(SeriesSent, s.TotalRate.Sent.Value)
	}
	if total, ok := s.TotalRate.Total(); ok && total > p.peak {
		p.peak = total
	}
}

// History exposes the recorded series.
func (p *NetworkPanel) History() *History {
	return p.history
}

// View implements Panel.
func (p *NetworkPanel) View(width, height int) string {
	if p.last == nil {
		return ""
	}
	s := p.last
	if width < 40 {
		width = 40
	}
	inner := width - 4

	speedLines := []string{
		LabelStyle.Render("down ") + ValueStyle.Render(fmt.Sprintf("%-14s", FormatRateField(s.TotalRate.Recv))) +
			LabelStyle.Render("up ") + ValueStyle.Render(FormatRateField(s.TotalRate.Sent)),
		LabelStyle.Render("peak ") + MutedStyle.Render(FormatMbps(p.peak)),
		LabelStyle.Render("established connections ") + ValueStyle.Render(s.Established.String()),
	}
	if hist := p.history.All(SeriesRecv); len(hist) > 0 {
		speedLines = append(speedLines, MutedStyle.Render("down ")+RenderRateSparkline(hist, inner-5))
	}
	if hist := p.history.All(SeriesSent); len(hist) > 0 {
		speedLines = append(speedLines, MutedStyle.Render("up   ")+RenderRateSparkline(hist, inner-5))
	}

	sections := []string{
		Section("Busiest: "+busiestName(s.Busiest), busiestSpeed(s.Busiest), speedLines, width),
		Section("Interfaces", fmt.Sprintf("%d", len(s.Counters)), interfaceLines(s), width),
	}
	out := strings.Join(sections, "\n")

	used := strings.Count(out, "\n") + 1
	plotHeight := height - used - 3
	if height >= HeightStandard && plotHeight >= 4 {
		if plot := RenderPlot(p.history.All(SeriesRecv), width, min(plotHeight, 8), "download B/s (recent)", asciigraph.Green); plot != "" {
			out += "\n\n" + plot
		}
	}
	return out
}

// Line implements Panel.
func (p *NetworkPanel) Line(s metrics.NetworkSnapshot) string {
	return fmt.Sprintf("down %s | up %s | busiest %s %s | conns %s",
		FormatRateField(s.TotalRate.Recv),
		FormatRateField(s.TotalRate.Sent),
		busiestName(s.Busiest),
		busiestSpeed(s.Busiest),
		s.Established.String(),
	)
}

func interfaceLines(s *metrics.NetworkSnapshot) []string {
	lines := []string{
		LabelStyle.Render(fmt.Sprintf("%-12s %14s %14s %12s %12s", "NAME", "DOWN", "UP", "RECV", "SENT")),
	}
	counters := make(map[string]metrics.InterfaceCounters, len(s.Counters))
	for _, c := range s.Counters {
		counters[c.Name] = c
	}
	for _, r := range s.Rates {
		c := counters[r.Name]
		lines = append(lines, fmt.Sprintf("%-12s %14s %14s %12s %12s",
			truncate(r.Name, 12),
			FormatRateField(r.Recv),
			FormatRateField(r.Sent),
			FormatBytes(c.BytesRecv),
			FormatBytes(c.BytesSent),
		))
	}
	return lines
}

func busiestName(f metrics.Field[metrics.InterfaceRate]) string {
	return f.Format(func(r metrics.InterfaceRate) string { return r.Name })
}

func busiestSpeed(f metrics.Field[metrics.InterfaceRate]) string {
	return f.Format(func(r metrics.InterfaceRate) string {
		total, _ := r.Total()
		return FormatMbps(total)
	})
}
