package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/monitor"
	"github.com/r3dlabs/termkit/internal/netcheck"
	"github.com/r3dlabs/termkit/internal/ui"
	"github.com/spf13/cobra"
)

var (
	netLiveFlags LiveFlags
	netConnsAll  bool
	netPingCount int
)

var (
	// dialer and pinger are replaced in tests.
	dialer netcheck.DialFunc
	pinger = netcheck.NewPinger()
)

var netCmd = &cobra.Command{
	Use:   "net",
	Short: "Show network interfaces and traffic",
	Long: `Show each interface with its addresses and traffic counters, plus the
current throughput measured over a short settle window.

Examples:
  termkit net
  termkit net live
  termkit net check example.com 22 80,443 8000-8010
  termkit net ping example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sampler := metrics.NewNetworkSampler(provider)
		sampler.WithInterfaces = true

		snap, err := takeSnapshot[metrics.NetworkSnapshot](cmd, "Reading network counters", sampler)
		if err != nil {
			return err
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), snap)
		}
		writeLines(cmd.OutOrStdout(), renderNetwork(snap))
		return nil
	},
}

var netLiveCmd = &cobra.Command{
	Use:   "live",
	Short: "Live network throughput dashboard",
	Long: `Refresh upload and download rates per interface every interval.

Examples:
  termkit net live
  termkit net live --duration 5m --plain`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLive[metrics.NetworkSnapshot](cmd, "net", metrics.NewNetworkSampler(provider),
			monitor.NewNetworkPanel(), netLiveFlags, currentConfig().Live.Network)
	},
}

var netConnsCmd = &cobra.Command{
	Use:   "conns",
	Short: "List established connections",
	Long: `List inet connections. Other users' sockets need elevated privileges
on most platforms.

Examples:
  termkit net conns
  termkit net conns --all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conns, err := metrics.Connections(commandContext(cmd), provider, !netConnsAll)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrProvider,
				"Can't read the connection table",
				"Retry with elevated privileges.")
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), conns)
		}
		writeLines(cmd.OutOrStdout(), renderConnections(conns))
		return nil
	},
}

var netCheckCmd = &cobra.Command{
	Use:   "check <host> <port>...",
	Short: "Check which TCP ports accept connections",
	Long: `Dial each port once, concurrently. Ports may be single numbers,
comma-separated lists or ranges.

Exits non-zero when no port is open.

Examples:
  termkit net check db.internal 5432
  termkit net check example.com 22,80,443
  termkit net check 10.0.0.5 8000-8100`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkPorts(cmd, args[0], args[1:])
	},
}

var netPingCmd = &cobra.Command{
	Use:   "ping <host>",
	Short: "Ping a host with the system ping command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return pingHost(cmd, args[0], netPingCount)
	},
}

func init() {
	AddLiveFlags(netLiveCmd, &netLiveFlags)
	netConnsCmd.Flags().BoolVarP(&netConnsAll, "all", "a", false, "include listening and closing sockets")
	netPingCmd.Flags().IntVarP(&netPingCount, "count", "c", 4, "echo requests to send")

	netCmd.AddCommand(netLiveCmd, netConnsCmd, netCheckCmd, netPingCmd)
	rootCmd.AddCommand(netCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// renderNetwork formats interfaces with their counters and rates.
func renderNetwork(s metrics.NetworkSnapshot) string {
	var b strings.Builder

	rates := make(map[string]metrics.InterfaceRate, len(s.Rates))
	for _, r := range s.Rates {
		rates[r.Name] = r
	}
	infos := make(map[string]metrics.InterfaceInfo)
	for _, info := range s.Interfaces.Or(nil) {
		infos[info.Name] = info
	}

	rows := make([][]string, 0, len(s.Counters))
	for _, c := range s.Counters {
		info := infos[c.Name]
		state := "down"
		if info.Up {
			state = "up"
		}
		if !s.Interfaces.OK() {
			state = metrics.NA
		}
		rate := rates[c.Name]
		rows = append(rows, []string{
			c.Name,
			state,
			addressList(info),
			monitor.FormatBytes(c.BytesRecv),
			monitor.FormatBytes(c.BytesSent),
			monitor.FormatRateField(rate.Recv),
			monitor.FormatRateField(rate.Sent),
		})
	}
	b.WriteString(ui.RenderTable([]ui.TableColumn{
		{Title: "Interface"}, {Title: "State"}, {Title: "Address", Width: 28},
		{Title: "Received"}, {Title: "Sent"}, {Title: "Down"}, {Title: "Up"},
	}, rows))
	b.WriteString("\n\n")

	pairs := []ui.KeyValue{
		{Key: "Received", Value: monitor.FormatBytes(s.Totals.BytesRecv)},
		{Key: "Sent", Value: monitor.FormatBytes(s.Totals.BytesSent)},
		{Key: "Download", Value: monitor.FormatRateField(s.TotalRate.Recv)},
		{Key: "Upload", Value: monitor.FormatRateField(s.TotalRate.Sent)},
		{Key: "Busiest", Value: s.Busiest.Format(func(r metrics.InterfaceRate) string { return r.Name })},
		{Key: "Established", Value: s.Established.String()},
	}
	if errs := s.Totals.ErrIn + s.Totals.ErrOut; errs > 0 {
		pairs = append(pairs, ui.KeyValue{Key: "Errors", Value: strconv.FormatUint(errs, 10)})
	}
	if drops := s.Totals.DropIn + s.Totals.DropOut; drops > 0 {
		pairs = append(pairs, ui.KeyValue{Key: "Dropped", Value: strconv.FormatUint(drops, 10)})
	}
	b.WriteString(ui.RenderKeyValues("Totals", pairs))
	return b.String()
}

func addressList(info metrics.InterfaceInfo) string {
	addrs := append(append([]string{}, info.IPv4...), info.IPv6...)
	if len(addrs) == 0 {
		return "-"
	}
	return strings.Join(addrs, ", ")
}

func renderConnections(conns []metrics.Connection) string {
	if len(conns) == 0 {
		return ui.MutedStyle().Render("No connections.")
	}
	rows := make([][]string, 0, len(conns))
	for _, c := range conns {
		pid := "-"
		if c.PID > 0 {
			pid = strconv.Itoa(int(c.PID))
		}
		rows = append(rows, []string{c.Proto, c.Local, c.Remote, c.Status, pid})
	}
	return ui.RenderTable([]ui.TableColumn{
		{Title: "Proto"}, {Title: "Local"}, {Title: "Remote"}, {Title: "Status"}, {Title: "PID"},
	}, rows)
}

func checkPorts(cmd *cobra.Command, host string, portArgs []string) error {
	ports, err := netcheck.ParsePorts(portArgs)
	if err != nil {
		return err
	}

	cfg := currentConfig().Network
	checker := netcheck.New(cfg.CheckTimeout, cfg.CheckWorkers)
	checker.Dial = dialer

	var results []netcheck.Result
	label := fmt.Sprintf("Checking %d ports on %s", len(ports), host)
	_ = ui.WithSpinner(cmd.ErrOrStderr(), label, !machineMode && stdoutIsTerminal(), func() error {
		results = checker.CheckPorts(commandContext(cmd), host, ports)
		return nil
	})

	open := netcheck.OpenCount(results)
	out := cmd.OutOrStdout()

	if machineMode {
		if open == 0 {
			_ = WriteJSONError(out, ErrCodeNetFailed,
				fmt.Sprintf("No open ports on %s", host), "", portCheckDetails(results))
			return errors.NewExitError(1)
		}
		return WriteJSONSuccess(out, results)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := ui.ErrorStyle().Render(ui.SymbolFail + " " + r.Reason.String())
		latency := "-"
		if r.Open {
			state = ui.SuccessStyle().Render(ui.SymbolSuccess + " open")
			latency = r.Latency.Round(100 * time.Microsecond).String()
		}
		rows = append(rows, []string{strconv.Itoa(r.Port), r.Service(), state, latency})
	}
	writeLines(out, ui.RenderTable([]ui.TableColumn{
		{Title: "Port"}, {Title: "Service"}, {Title: "State"}, {Title: "Latency"},
	}, rows))
	fmt.Fprintln(out, ui.MutedStyle().Render(fmt.Sprintf("%d of %d ports open on %s", open, len(results), host)))

	if open == 0 {
		return errors.NewExitError(1)
	}
	return nil
}

func pingHost(cmd *cobra.Command, host string, count int) error {
	if count < 1 {
		return errors.New(errors.ErrConfig, "--count must be at least 1", "")
	}

	var res netcheck.PingResult
	label := fmt.Sprintf("Pinging %s", host)
	err := ui.WithSpinner(cmd.ErrOrStderr(), label, !machineMode && stdoutIsTerminal(), func() error {
		var err error
		res, err = pinger.Ping(commandContext(cmd), host, count)
		return err
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if machineMode {
		if !res.OK {
			_ = WriteJSONError(out, ErrCodeNetFailed, fmt.Sprintf("%s did not answer", host), "", res)
			return errors.NewExitError(1)
		}
		return WriteJSONSuccess(out, res)
	}

	if !res.OK {
		fmt.Fprintf(out, "%s %s did not answer (%d/%d received)\n", ui.ErrorStyle().Render(ui.SymbolFail), host, res.Received, res.Sent)
		if res.Output != "" && res.Sent == 0 {
			fmt.Fprintln(out, ui.MutedStyle().Render(strings.TrimSpace(res.Output)))
		}
		return errors.NewExitError(1)
	}

	rtt := metrics.NA
	if res.AvgRTT > 0 {
		rtt = res.AvgRTT.String()
	}
	fmt.Fprint(out, ui.RenderKeyValues(host, []ui.KeyValue{
		{Key: "Received", Value: fmt.Sprintf("%d/%d", res.Received, res.Sent)},
		{Key: "Loss", Value: fmt.Sprintf("%.1f%%", res.Loss)},
		{Key: "Average", Value: rtt},
	}))
	return nil
}
