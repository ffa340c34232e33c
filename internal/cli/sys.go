package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/monitor"
	"github.com/r3dlabs/termkit/internal/refresh"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	sysPartitions bool
	sysDiskPath   string
	sysLiveFlags  LiveFlags
)

var sysCmd = &cobra.Command{
	Use:   "sys",
	Short: "Show host, CPU, memory and disk information",
	Long: `Show a one-time summary of the host, CPU, memory and disk usage.

Examples:
  termkit sys
  termkit sys --partitions
  termkit sys --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sampler := metrics.NewSystemSampler(provider, sysDiskPath)
		sampler.WithPartitions = sysPartitions

		snap, err := takeSnapshot[metrics.SystemSnapshot](cmd, "Reading system info", sampler)
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), snap)
		}
		fmt.Fprint(cmd.OutOrStdout(), renderSystem(snap, sysPartitions, thresholds()))
		return nil
	},
}

var sysLiveCmd = &cobra.Command{
	Use:   "live",
	Short: "Live CPU, memory and disk dashboard",
	Long: `Refresh CPU, per-core, memory, swap and disk usage every interval until
the duration elapses or you press q.

Examples:
  termkit sys live
  termkit sys live --interval 250ms --duration 2m
  termkit sys live --plain | tee cpu.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sampler := metrics.NewSystemSampler(provider, sysDiskPath)
		return runLive[metrics.SystemSnapshot](cmd, "sys", sampler, monitor.NewSystemPanel(thresholds()),
			sysLiveFlags, currentConfig().Live.System)
	},
}

func init() {
	sysCmd.Flags().BoolVarP(&sysPartitions, "partitions", "p", false, "list every mounted filesystem")
	sysCmd.PersistentFlags().StringVar(&sysDiskPath, "disk", "", "path whose filesystem usage is shown (default /)")
	AddLiveFlags(sysLiveCmd, &sysLiveFlags)

	sysCmd.AddCommand(sysLiveCmd)
	rootCmd.AddCommand(sysCmd)
}

// takeSnapshot reads one snapshot from src behind a spinner.
func takeSnapshot[S any](cmd *cobra.Command, label string, src refresh.Source[S]) (S, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var snap S
	err := ui.WithSpinner(cmd.ErrOrStderr(), label, !machineMode && stdoutIsTerminal(), func() error {
		var err error
		snap, err = metrics.Once[S](ctx, src, clock, settle)
		return err
	})
	if err != nil {
		return snap, errors.WrapWithCode(err, errors.ErrProvider,
			"Can't read "+strings.ToLower(strings.TrimPrefix(label, "Reading ")),
			"Run with --verbose for details. Some readings need elevated privileges.")
	}
	return snap, nil
}

// renderSystem formats a system snapshot as titled key/value blocks.
func renderSystem(s metrics.SystemSnapshot, partitions bool, th monitor.Thresholds) string {
	var b strings.Builder
	gauge := func(percent float64) string {
		return ui.RenderGauge(percent, ui.GaugeWidth, float64(th.Warning), float64(th.Critical))
	}

	b.WriteString(ui.RenderKeyValues("Host", []ui.KeyValue{
		{Key: "Hostname", Value: s.Host.Format(func(h metrics.HostInfo) string { return h.Hostname })},
		{Key: "OS", Value: s.Host.Format(func(h metrics.HostInfo) string {
			return strings.TrimSpace(fmt.Sprintf("%s %s %s", h.OS, h.Platform, h.PlatformVersion))
		})},
		{Key: "Kernel", Value: s.Host.Format(func(h metrics.HostInfo) string { return h.Kernel + " (" + h.Arch + ")" })},
		{Key: "Uptime", Value: s.Host.Format(func(h metrics.HostInfo) string { return monitor.FormatUptime(h.Uptime) })},
		{Key: "Processes", Value: s.Host.Format(func(h metrics.HostInfo) string { return fmt.Sprint(h.Procs) })},
	}))
	b.WriteString("\n")

	b.WriteString(ui.RenderKeyValues("CPU", []ui.KeyValue{
		{Key: "Model", Value: s.CPUInfo.Format(func(c metrics.CPUInfo) string { return c.Model })},
		{Key: "Cores", Value: s.CPUInfo.Format(func(c metrics.CPUInfo) string {
			return fmt.Sprintf("%d physical, %d logical", c.Physical, c.Logical)
		})},
		{Key: "Clock", Value: s.CPUInfo.Format(func(c metrics.CPUInfo) string { return fmt.Sprintf("%.0f MHz", c.Mhz) })},
		{Key: "Usage", Value: s.CPU.Format(gauge)},
		{Key: "Load", Value: s.Load.Format(func(l metrics.LoadAvg) string {
			return fmt.Sprintf("%.2f %.2f %.2f", l.Load1, l.Load5, l.Load15)
		})},
	}))
	b.WriteString("\n")

	b.WriteString(ui.RenderKeyValues("Memory", []ui.KeyValue{
		{Key: "RAM", Value: s.Memory.Format(func(m metrics.MemoryUsage) string { return gauge(m.Percent) + "  " + formatUsage(m) })},
		{Key: "Swap", Value: s.Swap.Format(func(m metrics.MemoryUsage) string { return gauge(m.Percent) + "  " + formatUsage(m) })},
	}))
	b.WriteString("\n")

	b.WriteString(ui.RenderKeyValues("Disk", []ui.KeyValue{
		{Key: s.Disk.Format(func(d metrics.DiskUsage) string { return d.Mountpoint }), Value: s.Disk.Format(func(d metrics.DiskUsage) string { return gauge(d.Percent) + "  " + formatDisk(d) })},
	}))

	if partitions {
		b.WriteString("\n")
		b.WriteString(renderPartitions(s.Partitions))
	}
	return b.String()
}

func formatUsage(m metrics.MemoryUsage) string {
	return fmt.Sprintf("%s / %s (%.1f%%)", monitor.FormatBytes(m.Used), monitor.FormatBytes(m.Total), m.Percent)
}

func formatDisk(d metrics.DiskUsage) string {
	return fmt.Sprintf("%s / %s (%.1f%%), %s free", monitor.FormatBytes(d.Used), monitor.FormatBytes(d.Total), d.Percent, monitor.FormatBytes(d.Free))
}

func renderPartitions(f metrics.Field[[]metrics.DiskUsage]) string {
	title := ui.TitleStyle().Render("Partitions") + "\n"
	if !f.OK() {
		return title + "  " + metrics.NA + "\n"
	}

	rows := make([][]string, 0, len(f.Value))
	for _, d := range f.Value {
		rows = append(rows, []string{
			d.Mountpoint, d.Device, d.Fstype,
			monitor.FormatBytes(d.Total), monitor.FormatBytes(d.Used), fmt.Sprintf("%.1f%%", d.Percent),
		})
	}
	return title + ui.RenderTable([]ui.TableColumn{
		{Title: "Mount"}, {Title: "Device"}, {Title: "Type"},
		{Title: "Size"}, {Title: "Used"}, {Title: "Use%"},
	}, rows) + "\n"
}

// writeLines writes s followed by a newline unless it already ends in one.
func writeLines(w io.Writer, s string) {
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	fmt.Fprint(w, s)
}
