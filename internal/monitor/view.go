package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/r3dlabs/termkit/internal/metrics"
)

// renderDashboard renders the complete dashboard view.
func (m Model[S]) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.sampled {
		b.WriteString(m.panel.View(m.width, m.bodyHeight()))
	} else {
		b.WriteString(LabelStyle.Render("Sampling..."))
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("⚠ last sample failed: " + m.lastErr))
	}

	if m.ShowFooter() {
		b.WriteString("\n\n")
		b.WriteString(m.renderFooter())
	}

	return b.String()
}

// renderHeader renders the title with session progress.
func (m Model[S]) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render(m.panel.Title())

	parts := []string{
		fmt.Sprintf("%s / %s", FormatClock(m.Elapsed()), FormatClock(m.duration)),
		fmt.Sprintf("cycle %d", m.cycles),
		fmt.Sprintf("every %s", m.interval),
	}
	if m.degraded > 0 {
		parts = append(parts, fmt.Sprintf("%d degraded", m.degraded))
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	return HeaderStyle.Render(title + stats)
}

// FormatClock renders a duration as m:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// FormatBytes formats a byte count with binary units.
func FormatBytes(bytes uint64) string {
	return humanize.IBytes(bytes)
}

// FormatRate formats a bytes-per-second rate.
func FormatRate(bytesPerSecond float64) string {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

// FormatMbps formats a bytes-per-second rate as megabits per second.
func FormatMbps(bytesPerSecond float64) string {
	return fmt.Sprintf("%.2f Mbps", bytesPerSecond*8/1_000_000)
}

// FormatPercent renders a percentage field with one decimal.
func FormatPercent(f metrics.Field[float64]) string {
	return f.Format(func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	})
}

// FormatRateField renders a rate field, N/A when undefined.
func FormatRateField(f metrics.Field[float64]) string {
	return f.Format(FormatRate)
}

// FormatUptime renders an uptime as "3d 4h 12m".
func FormatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	mins := int(d / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
