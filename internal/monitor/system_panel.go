package monitor

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/r3dlabs/termkit/internal/metrics"
)

// SystemPanel renders CPU, memory and disk gauges with recent history.
type SystemPanel struct {
	thresholds Thresholds
	history    *History
	last       *metrics.SystemSnapshot
}

// NewSystemPanel creates a system panel colored by t.
func NewSystemPanel(t Thresholds) *SystemPanel {
	return &SystemPanel{
		thresholds: t,
		history:    NewHistory(DefaultHistorySize),
	}
}

// Title implements Panel.
func (p *SystemPanel) Title() string {
	return "termkit system monitor"
}

// Update implements Panel. Unknown readings leave gaps out of the history.
func (p *SystemPanel) Update(s metrics.SystemSnapshot) {
	p.last = &s
	if s.CPU.OK() {
		p.history.Push(SeriesCPU, s.CPU.Value)
	}
	if s.Memory.OK() {
		p.history.Push(SeriesMemory, s.Memory.Value.Percent)
	}
}

// History exposes the recorded series.
func (p *SystemPanel) History() *History {
	return p.history
}

// View implements Panel.
func (p *SystemPanel) View(width, height int) string {
	if p.last == nil {
		return ""
	}
	s := p.last
	if width < 40 {
		width = 40
	}
	inner := width - 4
	barWidth := inner - 40
	if barWidth < 10 {
		barWidth = 10
	}

	var sections []string
	sections = append(sections, Section("Host", hostSummary(s.Host), nil, width))

	cpuLines := []string{
		p.gauge("total", s.CPU, barWidth),
	}
	if s.Cores.OK() {
		cpuLines = append(cpuLines, p.coreBars(s.Cores.Value, inner)...)
	} else {
		cpuLines = append(cpuLines, MutedStyle.Render("per-core "+metrics.NA))
	}
	cpuLines = append(cpuLines, LabelStyle.Render("load ")+ValueStyle.Render(s.Load.Format(func(l metrics.LoadAvg) string {
		return fmt.Sprintf("%.2f %.2f %.2f", l.Load1, l.Load5, l.Load15)
	})))
	if hist := p.history.All(SeriesCPU); len(hist) > 0 {
		cpuLines = append(cpuLines, RenderPercentSparkline(hist, inner, ColorGraph))
	}
	sections = append(sections, Section("CPU", FormatPercent(s.CPU), cpuLines, width))

	memPct := percentOf(s.Memory)
	memLines := []string{
		p.gauge("used", memPct, barWidth) + "  " + MutedStyle.Render(usageText(s.Memory)),
		p.gauge("swap", percentOf(s.Swap), barWidth) + "  " + MutedStyle.Render(usageText(s.Swap)),
	}
	if hist := p.history.All(SeriesMemory); len(hist) > 0 {
		memLines = append(memLines, RenderPercentSparkline(hist, inner, ColorGraphAlt))
	}
	sections = append(sections, Section("Memory", FormatPercent(memPct), memLines, width))

	diskPct := metrics.Field[float64]{Value: s.Disk.Value.Percent, Err: s.Disk.Err}
	diskLines := []string{
		p.gauge(s.Disk.Format(func(d metrics.DiskUsage) string { return d.Mountpoint }), diskPct, barWidth) +
			"  " + MutedStyle.Render(s.Disk.Format(func(d metrics.DiskUsage) string {
			return FormatBytes(d.Used) + " / " + FormatBytes(d.Total)
		})),
	}
	sections = append(sections, Section("Disk", FormatPercent(diskPct), diskLines, width))

	out := strings.Join(sections, "\n")

	// A plot only fits once the gauges leave room for it.
	used := strings.Count(out, "\n") + 1
	plotHeight := height - used - 3
	if height >= HeightStandard && plotHeight >= 4 {
		if plot := RenderPlot(p.history.All(SeriesCPU), width, min(plotHeight, 10), "CPU % (recent)", asciigraph.Cyan); plot != "" {
			out += "\n\n" + plot
		}
	}
	return out
}

// Line implements Panel.
func (p *SystemPanel) Line(s metrics.SystemSnapshot) string {
	return fmt.Sprintf("cpu %s | mem %s (%s) | swap %s | disk %s | load %s",
		FormatPercent(s.CPU),
		FormatPercent(percentOf(s.Memory)),
		usageText(s.Memory),
		FormatPercent(percentOf(s.Swap)),
		s.Disk.Format(func(d metrics.DiskUsage) string { return fmt.Sprintf("%.1f%%", d.Percent) }),
		s.Load.Format(func(l metrics.LoadAvg) string { return fmt.Sprintf("%.2f", l.Load1) }),
	)
}

// gauge renders "label  ▰▰▰▱▱  42.0%" with an empty bar for unknown values.
func (p *SystemPanel) gauge(label string, pct metrics.Field[float64], width int) string {
	bar := UnknownBar(width)
	if pct.OK() {
		bar = p.thresholds.ProgressBar(width, pct.Value)
	}
	value := FormatPercent(pct)
	if pct.OK() {
		value = p.thresholds.Style(pct.Value).Render(value)
	}
	return LabelStyle.Render(fmt.Sprintf("%-6s", truncate(label, 6))) + " " + bar + " " + fmt.Sprintf("%7s", value)
}

// coreBars lays per-core gauges out two to a line.
func (p *SystemPanel) coreBars(cores []float64, width int) []string {
	colWidth := width / 2
	barWidth := colWidth - 14
	if barWidth < 4 {
		barWidth = 4
	}

	var lines []string
	for i := 0; i < len(cores); i += 2 {
		line := p.coreBar(i, cores[i], barWidth)
		if i+1 < len(cores) {
			line += "  " + p.coreBar(i+1, cores[i+1], barWidth)
		}
		lines = append(lines, line)
	}
	return lines
}

func (p *SystemPanel) coreBar(i int, pct float64, width int) string {
	return MutedStyle.Render(fmt.Sprintf("c%-3d", i)) +
		p.thresholds.ProgressBar(width, pct) +
		p.thresholds.Style(pct).Render(fmt.Sprintf(" %5.1f%%", pct))
}

func percentOf(f metrics.Field[metrics.MemoryUsage]) metrics.Field[float64] {
	return metrics.Field[float64]{Value: f.Value.Percent, Err: f.Err}
}

func usageText(f metrics.Field[metrics.MemoryUsage]) string {
	return f.Format(func(m metrics.MemoryUsage) string {
		return FormatBytes(m.Used) + " / " + FormatBytes(m.Total)
	})
}

func hostSummary(f metrics.Field[metrics.HostInfo]) string {
	return f.Format(func(h metrics.HostInfo) string {
		return fmt.Sprintf("%s · %s %s · up %s", h.Hostname, h.Platform, h.PlatformVersion, FormatUptime(h.Uptime))
	})
}
