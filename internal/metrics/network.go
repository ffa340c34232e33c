package metrics

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/r3dlabs/termkit/internal/refresh"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// InterfaceCounters are the cumulative I/O counters of one interface.
type InterfaceCounters struct {
	Name        string
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
	ErrIn       uint64
	ErrOut      uint64
	DropIn      uint64
	DropOut     uint64
}

// InterfaceRate is the throughput of one interface between two snapshots.
type InterfaceRate struct {
	Name string
	// Sent and Recv are bytes per second.
	Sent Field[float64]
	Recv Field[float64]
}

// Total returns Sent+Recv, or false when either is unknown.
func (r InterfaceRate) Total() (float64, bool) {
	if !r.Sent.OK() || !r.Recv.OK() {
		return 0, false
	}
	return r.Sent.Value + r.Recv.Value, true
}

// InterfaceInfo describes a network interface's configuration.
type InterfaceInfo struct {
	Name         string
	HardwareAddr string
	MTU          int
	Up           bool
	IPv4         []string
	IPv6         []string
}

// Connection is one socket from the connection table.
type Connection struct {
	Proto  string
	Local  string
	Remote string
	Status string
	PID    int32
}

// NetworkSnapshot is one capture of network activity.
type NetworkSnapshot struct {
	TakenAt time.Time

	// Counters are per-interface cumulative counters sorted by name.
	Counters []InterfaceCounters
	// Totals sums Counters.
	Totals InterfaceCounters

	// Rates are per-interface throughput since the previous snapshot,
	// unknown on the first cycle.
	Rates []InterfaceRate
	// TotalRate is the throughput across all interfaces.
	TotalRate InterfaceRate
	// Busiest is the interface that moved the most bytes since the
	// previous snapshot.
	Busiest Field[InterfaceRate]

	// Established counts established inet connections.
	Established Field[int]

	Interfaces Field[[]InterfaceInfo]
}

// NetworkSampler produces NetworkSnapshots.
type NetworkSampler struct {
	backend Backend

	// WithInterfaces adds interface addresses to each snapshot.
	WithInterfaces bool
	// WithConnections adds the established connection count.
	WithConnections bool
}

// NewNetworkSampler creates a sampler with connections enabled.
func NewNetworkSampler(backend Backend) *NetworkSampler {
	return &NetworkSampler{backend: backend, WithConnections: true}
}

// Open probes the I/O counters.
func (s *NetworkSampler) Open(ctx context.Context) error {
	if _, err := s.backend.NetIOCounters(ctx, true); err != nil {
		return unavailable("network counters", err)
	}
	return nil
}

// Sample captures a NetworkSnapshot.
func (s *NetworkSampler) Sample(ctx context.Context, prev *NetworkSnapshot) (NetworkSnapshot, error) {
	stats, err := s.backend.NetIOCounters(ctx, true)
	if err != nil {
		return NetworkSnapshot{}, fmt.Errorf("network counters: %w", Classify(err))
	}

	snap := NetworkSnapshot{
		TakenAt:  s.backend.now(),
		Counters: make([]InterfaceCounters, 0, len(stats)),
		Totals:   InterfaceCounters{Name: "all"},
	}
	for _, st := range stats {
		c := InterfaceCounters{
			Name:        st.Name,
			BytesSent:   st.BytesSent,
			BytesRecv:   st.BytesRecv,
			PacketsSent: st.PacketsSent,
			PacketsRecv: st.PacketsRecv,
			ErrIn:       st.Errin,
			ErrOut:      st.Errout,
			DropIn:      st.Dropin,
			DropOut:     st.Dropout,
		}
		snap.Counters = append(snap.Counters, c)
		snap.Totals.add(c)
	}
	sort.Slice(snap.Counters, func(i, j int) bool { return snap.Counters[i].Name < snap.Counters[j].Name })

	snap.Rates, snap.TotalRate, snap.Busiest = networkRates(prev, snap)

	if s.WithConnections {
		snap.Established = s.established(ctx)
	} else {
		snap.Established = Unknown[int](ErrUnavailable)
	}
	if s.WithInterfaces {
		snap.Interfaces = Interfaces(ctx, s.backend)
	} else {
		snap.Interfaces = Unknown[[]InterfaceInfo](ErrUnavailable)
	}

	return snap, nil
}

// Close is a no-op; the network sampler holds no handles.
func (s *NetworkSampler) Close() error {
	return nil
}

func (c *InterfaceCounters) add(o InterfaceCounters) {
	c.BytesSent += o.BytesSent
	c.BytesRecv += o.BytesRecv
	c.PacketsSent += o.PacketsSent
	c.PacketsRecv += o.PacketsRecv
	c.ErrIn += o.ErrIn
	c.ErrOut += o.ErrOut
	c.DropIn += o.DropIn
	c.DropOut += o.DropOut
}

func (s *NetworkSampler) established(ctx context.Context) Field[int] {
	conns, err := s.backend.NetConnections(ctx, "inet")
	if err != nil {
		return Unknown[int](err)
	}
	n := 0
	for _, c := range conns {
		if c.Status == "ESTABLISHED" {
			n++
		}
	}
	return Known(n)
}

// networkRates derives per-interface and total rates from prev.
func networkRates(prev *NetworkSnapshot, cur NetworkSnapshot) ([]InterfaceRate, InterfaceRate, Field[InterfaceRate]) {
	rates := make([]InterfaceRate, 0, len(cur.Counters))

	if prev == nil {
		for _, c := range cur.Counters {
			rates = append(rates, undefinedRate(c.Name))
		}
		return rates, undefinedRate("all"), Unknown[InterfaceRate](ErrNoBaseline)
	}

	elapsed := cur.TakenAt.Sub(prev.TakenAt)
	previous := make(map[string]InterfaceCounters, len(prev.Counters))
	for _, c := range prev.Counters {
		previous[c.Name] = c
	}

	busiest := Unknown[InterfaceRate](ErrNoBaseline)
	var busiestBytes float64
	for _, c := range cur.Counters {
		p, ok := previous[c.Name]
		if !ok {
			// Interface appeared since the last cycle.
			rates = append(rates, undefinedRate(c.Name))
			continue
		}
		r := counterRate(c.Name, p, c, elapsed)
		rates = append(rates, r)
		if total, ok := r.Total(); ok && (!busiest.OK() || total > busiestBytes) {
			busiestBytes = total
			busiest = Known(r)
		}
	}

	return rates, counterRate("all", prev.Totals, cur.Totals, elapsed), busiest
}

func counterRate(name string, prev, cur InterfaceCounters, elapsed time.Duration) InterfaceRate {
	r := InterfaceRate{Name: name}
	if sent, ok := refresh.Rate(prev.BytesSent, cur.BytesSent, elapsed); ok {
		r.Sent = Known(sent)
	} else {
		r.Sent = Unknown[float64](ErrNoBaseline)
	}
	if recv, ok := refresh.Rate(prev.BytesRecv, cur.BytesRecv, elapsed); ok {
		r.Recv = Known(recv)
	} else {
		r.Recv = Unknown[float64](ErrNoBaseline)
	}
	return r
}

func undefinedRate(name string) InterfaceRate {
	return InterfaceRate{
		Name: name,
		Sent: Unknown[float64](ErrNoBaseline),
		Recv: Unknown[float64](ErrNoBaseline),
	}
}

// Interfaces lists network interfaces with their addresses.
func Interfaces(ctx context.Context, backend Backend) Field[[]InterfaceInfo] {
	list, err := backend.NetInterfaces(ctx)
	if err != nil {
		return Unknown[[]InterfaceInfo](err)
	}

	infos := make([]InterfaceInfo, 0, len(list))
	for _, iface := range list {
		info := InterfaceInfo{
			Name:         iface.Name,
			HardwareAddr: iface.HardwareAddr,
			MTU:          iface.MTU,
		}
		for _, f := range iface.Flags {
			if f == "up" {
				info.Up = true
			}
		}
		for _, a := range iface.Addrs {
			ip := a.Addr
			if i := strings.IndexByte(ip, '/'); i >= 0 {
				ip = ip[:i]
			}
			parsed := net.ParseIP(ip)
			switch {
			case parsed == nil:
				continue
			case parsed.To4() != nil:
				info.IPv4 = append(info.IPv4, ip)
			default:
				info.IPv6 = append(info.IPv6, ip)
			}
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return Known(infos)
}

// Connections lists inet connections, established first. It needs elevated
// privileges to see other users' sockets on most platforms.
func Connections(ctx context.Context, backend Backend, establishedOnly bool) ([]Connection, error) {
	conns, err := backend.NetConnections(ctx, "inet")
	if err != nil {
		return nil, fmt.Errorf("connections: %w", Classify(err))
	}

	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		if establishedOnly && c.Status != "ESTABLISHED" {
			continue
		}
		out = append(out, Connection{
			Proto:  connProto(c),
			Local:  formatAddr(c.Laddr),
			Remote: formatAddr(c.Raddr),
			Status: c.Status,
			PID:    c.Pid,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := out[i].Status == "ESTABLISHED", out[j].Status == "ESTABLISHED"
		if ei != ej {
			return ei
		}
		return out[i].Local < out[j].Local
	})
	return out, nil
}

func formatAddr(a psnet.Addr) string {
	if a.IP == "" {
		return NA
	}
	return net.JoinHostPort(a.IP, strconv.FormatUint(uint64(a.Port), 10))
}

func connProto(c psnet.ConnectionStat) string {
	proto := "?"
	switch c.Type {
	case syscall.SOCK_STREAM:
		proto = "tcp"
	case syscall.SOCK_DGRAM:
		proto = "udp"
	}
	if c.Family == syscall.AF_INET6 {
		return proto + "6"
	}
	return proto
}
