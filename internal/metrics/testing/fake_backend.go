// Package testing provides a scriptable machine for the metrics package.
package testing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// FakeMachine is an in-memory machine whose readings tests control.
// Mutate it through its methods or directly under Lock/Unlock.
type FakeMachine struct {
	mu sync.Mutex

	Now time.Time

	Host    host.InfoStat
	HostErr error

	CPUTotal cpu.TimesStat
	Cores    []cpu.TimesStat
	CPUErr   error
	Logical  int
	Physical int

	Load    load.AvgStat
	LoadErr error

	Memory    mem.VirtualMemoryStat
	MemoryErr error
	Swap      mem.SwapMemoryStat
	SwapErr   error

	Disks      map[string]disk.UsageStat
	DiskErr    error
	Partitions []disk.PartitionStat

	NICs   map[string]net.IOCountersStat
	NetErr error

	Ifaces net.InterfaceStatList

	Conns   []net.ConnectionStat
	ConnErr error

	Procs   map[int32]*FakeProcess
	PidsErr error

	// Terminated records PIDs passed to Terminate.
	Terminated []int32
}

// NewFakeMachine creates a small healthy machine: two cores, 8 GiB of RAM,
// a root disk, one ethernet interface plus loopback, and no processes.
func NewFakeMachine() *FakeMachine {
	return &FakeMachine{
		Now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Host: host.InfoStat{
			Hostname:        "devbox",
			OS:              "linux",
			Platform:        "ubuntu",
			PlatformVersion: "24.04",
			KernelVersion:   "6.8.0",
			KernelArch:      "x86_64",
			Uptime:          3600,
			BootTime:        1772362800,
			Procs:           3,
		},
		CPUTotal: cpu.TimesStat{CPU: "cpu-total", User: 100, System: 50, Idle: 850},
		Cores: []cpu.TimesStat{
			{CPU: "cpu0", User: 50, System: 25, Idle: 425},
			{CPU: "cpu1", User: 50, System: 25, Idle: 425},
		},
		Logical:  2,
		Physical: 1,
		Load:     load.AvgStat{Load1: 0.5, Load5: 0.4, Load15: 0.3},
		Memory: mem.VirtualMemoryStat{
			Total:       8 << 30,
			Used:        2 << 30,
			Available:   6 << 30,
			UsedPercent: 25,
		},
		Swap: mem.SwapMemoryStat{Total: 2 << 30, Used: 0, Free: 2 << 30},
		Disks: map[string]disk.UsageStat{
			"/": {Path: "/", Fstype: "ext4", Total: 100 << 30, Used: 40 << 30, Free: 60 << 30, UsedPercent: 40},
		},
		Partitions: []disk.PartitionStat{
			{Device: "/dev/sda1", Mountpoint: "/", Fstype: "ext4"},
		},
		NICs: map[string]net.IOCountersStat{
			"eth0": {Name: "eth0"},
			"lo":   {Name: "lo"},
		},
		Ifaces: net.InterfaceStatList{
			{Name: "lo", MTU: 65536, Flags: []string{"up", "loopback"}, Addrs: net.InterfaceAddrList{{Addr: "127.0.0.1/8"}, {Addr: "::1/128"}}},
			{Name: "eth0", MTU: 1500, HardwareAddr: "02:42:ac:11:00:02", Flags: []string{"up", "broadcast"}, Addrs: net.InterfaceAddrList{{Addr: "192.168.1.20/24"}, {Addr: "fe80::42:acff:fe11:2/64"}}},
		},
		Procs: make(map[int32]*FakeProcess),
	}
}

// Lock locks the machine for direct field access.
func (m *FakeMachine) Lock() { m.mu.Lock() }

// Unlock releases Lock.
func (m *FakeMachine) Unlock() { m.mu.Unlock() }

// Advance moves the machine clock forward.
func (m *FakeMachine) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Now = m.Now.Add(d)
}

// AddCPU accounts busy and idle time to the total and spreads it evenly
// across the cores.
func (m *FakeMachine) AddCPU(busy, idle float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CPUTotal.User += busy
	m.CPUTotal.Idle += idle
	n := float64(len(m.Cores))
	for i := range m.Cores {
		m.Cores[i].User += busy / n
		m.Cores[i].Idle += idle / n
	}
}

// SetTraffic sets the cumulative byte counters of an interface, creating it
// if needed.
func (m *FakeMachine) SetTraffic(name string, sent, recv uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.NICs[name]
	c.Name = name
	c.BytesSent = sent
	c.BytesRecv = recv
	m.NICs[name] = c
}

// AddProcess registers a process.
func (m *FakeMachine) AddProcess(p *FakeProcess) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.machine = m
	m.Procs[p.PID] = p
}

// RemoveProcess makes a process exit.
func (m *FakeMachine) RemoveProcess(pid int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Procs[pid]; ok {
		p.gone = true
		delete(m.Procs, pid)
	}
}

// Backend exposes the machine through metrics.Backend.
func (m *FakeMachine) Backend() metrics.Backend {
	return metrics.Backend{
		HostInfo: func(ctx context.Context) (*host.InfoStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.HostErr != nil {
				return nil, m.HostErr
			}
			h := m.Host
			return &h, nil
		},
		CPUTimes: func(ctx context.Context, perCPU bool) ([]cpu.TimesStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.CPUErr != nil {
				return nil, m.CPUErr
			}
			if perCPU {
				return append([]cpu.TimesStat(nil), m.Cores...), nil
			}
			return []cpu.TimesStat{m.CPUTotal}, nil
		},
		CPUCounts: func(ctx context.Context, logical bool) (int, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.CPUErr != nil {
				return 0, m.CPUErr
			}
			if logical {
				return m.Logical, nil
			}
			return m.Physical, nil
		},
		CPUInfo: func(ctx context.Context) ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{{ModelName: "Fake CPU @ 3.00GHz", Mhz: 3000}}, nil
		},
		LoadAvg: func(ctx context.Context) (*load.AvgStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.LoadErr != nil {
				return nil, m.LoadErr
			}
			l := m.Load
			return &l, nil
		},
		VirtualMemory: func(ctx context.Context) (*mem.VirtualMemoryStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.MemoryErr != nil {
				return nil, m.MemoryErr
			}
			v := m.Memory
			return &v, nil
		},
		SwapMemory: func(ctx context.Context) (*mem.SwapMemoryStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.SwapErr != nil {
				return nil, m.SwapErr
			}
			s := m.Swap
			return &s, nil
		},
		DiskUsage: func(ctx context.Context, path string) (*disk.UsageStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.DiskErr != nil {
				return nil, m.DiskErr
			}
			u, ok := m.Disks[path]
			if !ok {
				return nil, errors.New("no such file or directory")
			}
			return &u, nil
		},
		DiskPartitions: func(ctx context.Context, all bool) ([]disk.PartitionStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return append([]disk.PartitionStat(nil), m.Partitions...), nil
		},
		NetIOCounters: func(ctx context.Context, perNIC bool) ([]net.IOCountersStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.NetErr != nil {
				return nil, m.NetErr
			}
			out := make([]net.IOCountersStat, 0, len(m.NICs))
			for _, c := range m.NICs {
				out = append(out, c)
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
			return out, nil
		},
		NetInterfaces: func(ctx context.Context) (net.InterfaceStatList, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return append(net.InterfaceStatList(nil), m.Ifaces...), nil
		},
		NetConnections: func(ctx context.Context, kind string) ([]net.ConnectionStat, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.ConnErr != nil {
				return nil, m.ConnErr
			}
			return append([]net.ConnectionStat(nil), m.Conns...), nil
		},
		Pids: func(ctx context.Context) ([]int32, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.PidsErr != nil {
				return nil, m.PidsErr
			}
			pids := make([]int32, 0, len(m.Procs))
			for pid := range m.Procs {
				pids = append(pids, pid)
			}
			sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
			return pids, nil
		},
		NewProcess: func(ctx context.Context, pid int32) (metrics.ProcessHandle, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			p, ok := m.Procs[pid]
			if !ok {
				return nil, process.ErrorProcessNotRunning
			}
			return p, nil
		},
		Now: func() time.Time {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.Now
		},
	}
}
