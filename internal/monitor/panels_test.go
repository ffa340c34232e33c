package monitor

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3dlabs/termkit/internal/metrics"
)

func systemSnapshot(cpu float64) metrics.SystemSnapshot {
	return metrics.SystemSnapshot{
		TakenAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Host: metrics.Known(metrics.HostInfo{
			Hostname:        "build-01",
			Platform:        "ubuntu",
			PlatformVersion: "24.04",
			Uptime:          26 * time.Hour,
		}),
		CPU:   metrics.Known(cpu),
		Cores: metrics.Known([]float64{10, 20, 30, 95}),
		Load:  metrics.Known(metrics.LoadAvg{Load1: 0.5, Load5: 0.4, Load15: 0.3}),
		Memory: metrics.Known(metrics.MemoryUsage{
			Total: 8 << 30, Used: 2 << 30, Percent: 25,
		}),
		Swap: metrics.Unknown[metrics.MemoryUsage](metrics.ErrPermissionDenied),
		Disk: metrics.Known(metrics.DiskUsage{
			Mountpoint: "/", Total: 100 << 30, Used: 40 << 30, Percent: 40,
		}),
	}
}

func TestSystemPanel_View(t *testing.T) {
	p := NewSystemPanel(DefaultThresholds)
	p.Update(systemSnapshot(23.4))
	p.Update(systemSnapshot(41.0))

	view := p.View(100, 30)
	assert.Contains(t, view, "build-01")
	assert.Contains(t, view, "up 1d 2h 0m")
	assert.Contains(t, view, "41.0%")
	assert.Contains(t, view, "25.0%")
	assert.Contains(t, view, "2.0 GiB / 8.0 GiB")
	assert.Contains(t, view, "40 GiB / 100 GiB")
	assert.Contains(t, view, "0.50 0.40 0.30")
	assert.Contains(t, view, "c3", "per-core gauges")
	assert.Contains(t, view, metrics.NA, "swap is unknown")

	assert.Equal(t, []float64{23.4, 41.0}, p.History().All(SeriesCPU))
}

func TestSystemPanel_UnknownCPU(t *testing.T) {
	p := NewSystemPanel(DefaultThresholds)
	s := systemSnapshot(0)
	s.CPU = metrics.Unknown[float64](metrics.ErrNoBaseline)
	s.Cores = metrics.Unknown[[]float64](metrics.ErrNoBaseline)
	p.Update(s)

	assert.Equal(t, 0, p.History().Count(SeriesCPU), "unknown readings are not recorded")
	view := p.View(80, 30)
	assert.Contains(t, view, "per-core "+metrics.NA)
}

func TestSystemPanel_PlotWhenTall(t *testing.T) {
	p := NewSystemPanel(DefaultThresholds)
	for _, v := range []float64{10, 30, 20, 60, 45, 70} {
		p.Update(systemSnapshot(v))
	}

	short := p.View(100, 20)
	tall := p.View(100, 60)
	assert.NotContains(t, short, "CPU % (recent)")
	assert.Contains(t, tall, "CPU % (recent)")
}

func TestSystemPanel_Line(t *testing.T) {
	p := NewSystemPanel(DefaultThresholds)
	line := p.Line(systemSnapshot(23.4))

	assert.Equal(t, "cpu 23.4% | mem 25.0% (2.0 GiB / 8.0 GiB) | swap N/A | disk 40.0% | load 0.50", line)
}

func processSnapshot() metrics.ProcessSnapshot {
	return metrics.ProcessSnapshot{
		Total:      3,
		Statuses:   map[string]int{"running": 1, "sleep": 2},
		Restricted: 1,
		Matched:    3,
		Query:      metrics.ProcessQuery{Sort: metrics.SortCPU, Filter: "post"},
		Rows: []metrics.ProcessRow{
			{
				PID:      412,
				Name:     metrics.Known("postgres"),
				Username: metrics.Known("postgres"),
				CPU:      metrics.Known(12.5),
				Memory:   metrics.Known(3.2),
				RSS:      metrics.Known(uint64(256 << 20)),
				Status:   metrics.Known("running"),
			},
			{
				PID:      1,
				Name:     metrics.Known("systemd"),
				Username: metrics.Known("root"),
				CPU:      metrics.Unknown[float64](metrics.ErrPermissionDenied),
				Memory:   metrics.Unknown[float64](metrics.ErrPermissionDenied),
				RSS:      metrics.Unknown[uint64](metrics.ErrPermissionDenied),
				Status:   metrics.Known("sleep"),
			},
		},
	}
}

func TestProcessPanel_Rows(t *testing.T) {
	rows := ProcessTableRows(processSnapshot().Rows)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"412", "postgres", "postgres", "12.5", "3.2", "256 MiB", "running"}, []string(rows[0]))
	assert.Equal(t, []string{"1", "systemd", "root", "N/A", "N/A", "N/A", "sleep"}, []string(rows[1]))
}

func TestProcessPanel_View(t *testing.T) {
	p := NewProcessPanel(DefaultThresholds)
	p.Update(processSnapshot())

	view := p.View(100, 20)
	assert.Contains(t, view, "3")
	assert.Contains(t, view, "processes")
	assert.Contains(t, view, "running 1")
	assert.Contains(t, view, "sleep 2")
	assert.Contains(t, view, "1 restricted")
	assert.Contains(t, view, `filter "post"`)
	assert.Contains(t, view, "postgres")
	assert.Contains(t, view, "N/A")
}

func TestProcessPanel_Scroll(t *testing.T) {
	p := NewProcessPanel(DefaultThresholds)
	p.Update(processSnapshot())
	assert.Equal(t, 0, p.Cursor())

	assert.True(t, p.HandleKey(tea.KeyMsg{Type: tea.KeyDown}))
	assert.Equal(t, 1, p.Cursor())

	assert.True(t, p.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	assert.Equal(t, 0, p.Cursor())

	assert.False(t, p.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}))
}

func TestProcessPanel_Line(t *testing.T) {
	p := NewProcessPanel(DefaultThresholds)
	line := p.Line(processSnapshot())

	assert.Equal(t, "3 procs, 1 running | top: postgres(412) 12.5%, systemd(1) N/A", line)
}

func TestFitColumns(t *testing.T) {
	cols := fitColumns(processColumns, 120)
	total := 0
	for _, c := range cols {
		total += c.Width + 2
	}
	assert.Equal(t, 120, total)
	assert.Equal(t, 20, processColumns[1].Width, "input is not modified")

	narrow := fitColumns(processColumns, 40)
	assert.Equal(t, processColumns[1].Width, narrow[1].Width)
}

func networkSnapshots() (metrics.NetworkSnapshot, metrics.NetworkSnapshot) {
	first := metrics.NetworkSnapshot{
		Counters: []metrics.InterfaceCounters{
			{Name: "eth0", BytesRecv: 1_000_000, BytesSent: 200_000},
		},
		Rates: []metrics.InterfaceRate{{
			Name: "eth0",
			Recv: metrics.Unknown[float64](metrics.ErrNoBaseline),
			Sent: metrics.Unknown[float64](metrics.ErrNoBaseline),
		}},
		TotalRate: metrics.InterfaceRate{
			Name: "all",
			Recv: metrics.Unknown[float64](metrics.ErrNoBaseline),
			Sent: metrics.Unknown[float64](metrics.ErrNoBaseline),
		},
		Busiest:     metrics.Unknown[metrics.InterfaceRate](metrics.ErrNoBaseline),
		Established: metrics.Unknown[int](metrics.ErrPermissionDenied),
	}

	rate := metrics.InterfaceRate{Name: "eth0", Recv: metrics.Known(300_000.0), Sent: metrics.Known(12_500.0)}
	second := metrics.NetworkSnapshot{
		Counters: []metrics.InterfaceCounters{
			{Name: "eth0", BytesRecv: 2_500_000, BytesSent: 262_500},
		},
		Rates:       []metrics.InterfaceRate{rate},
		TotalRate:   metrics.InterfaceRate{Name: "all", Recv: rate.Recv, Sent: rate.Sent},
		Busiest:     metrics.Known(rate),
		Established: metrics.Known(14),
	}
	return first, second
}

func TestNetworkPanel_FirstCycleUndefined(t *testing.T) {
	first, _ := networkSnapshots()
	p := NewNetworkPanel()
	p.Update(first)

	assert.Equal(t, 0, p.History().Count(SeriesRecv))
	view := p.View(100, 20)
	assert.Contains(t, view, "Busiest: N/A")
	assert.Contains(t, view, "eth0")
	assert.Equal(t, "down N/A | up N/A | busiest N/A N/A | conns N/A", p.Line(first))
}

func TestNetworkPanel_Rates(t *testing.T) {
	first, second := networkSnapshots()
	p := NewNetworkPanel()
	p.Update(first)
	p.Update(second)

	assert.Equal(t, []float64{300_000}, p.History().All(SeriesRecv))
	view := p.View(100, 20)
	assert.Contains(t, view, "Busiest: eth0")
	assert.Contains(t, view, "2.50 Mbps")
	assert.Contains(t, view, "293 KiB/s")
	assert.Contains(t, view, "established connections")
	assert.Contains(t, view, "14")

	line := p.Line(second)
	assert.True(t, strings.HasPrefix(line, "down 293 KiB/s | up 12 KiB/s"), line)
	assert.Contains(t, line, "busiest eth0 2.50 Mbps")
	assert.Contains(t, line, "conns 14")
}

func TestPlainRenderer(t *testing.T) {
	var buf strings.Builder
	now := func() time.Time { return time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC) }
	r := NewPlainRenderer[int](&buf, &counterPanel{}, now)

	require.NoError(t, r.Draw(4))
	r.Degraded(2, errors.New("counter read failed"))

	assert.Equal(t,
		"[09:05:07] value=4\n[09:05:07] cycle 2 degraded: counter read failed\n",
		buf.String())
}
