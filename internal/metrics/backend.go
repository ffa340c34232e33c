package metrics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// ProcessHandle is the subset of *process.Process the samplers use.
// A handle keeps gopsutil's CPU baseline between calls, so the same
// handle must be reused across cycles for CPU percentages to be deltas.
type ProcessHandle interface {
	NameWithContext(ctx context.Context) (string, error)
	UsernameWithContext(ctx context.Context) (string, error)
	CmdlineWithContext(ctx context.Context) (string, error)
	CreateTimeWithContext(ctx context.Context) (int64, error)
	PercentWithContext(ctx context.Context, interval time.Duration) (float64, error)
	MemoryPercentWithContext(ctx context.Context) (float32, error)
	MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error)
	StatusWithContext(ctx context.Context) ([]string, error)
	TerminateWithContext(ctx context.Context) error
}

// Backend is the table of provider calls the samplers make. DefaultBackend
// points every entry at gopsutil; tests swap in fakes.
type Backend struct {
	HostInfo       func(ctx context.Context) (*host.InfoStat, error)
	CPUTimes       func(ctx context.Context, perCPU bool) ([]cpu.TimesStat, error)
	CPUCounts      func(ctx context.Context, logical bool) (int, error)
	CPUInfo        func(ctx context.Context) ([]cpu.InfoStat, error)
	LoadAvg        func(ctx context.Context) (*load.AvgStat, error)
	VirtualMemory  func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory     func(ctx context.Context) (*mem.SwapMemoryStat, error)
	DiskUsage      func(ctx context.Context, path string) (*disk.UsageStat, error)
	DiskPartitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	NetIOCounters  func(ctx context.Context, perNIC bool) ([]net.IOCountersStat, error)
	NetInterfaces  func(ctx context.Context) (net.InterfaceStatList, error)
	NetConnections func(ctx context.Context, kind string) ([]net.ConnectionStat, error)
	Pids           func(ctx context.Context) ([]int32, error)
	NewProcess     func(ctx context.Context, pid int32) (ProcessHandle, error)
	Now            func() time.Time
}

// DefaultBackend returns a Backend backed by gopsutil.
func DefaultBackend() Backend {
	return Backend{
		HostInfo:       host.InfoWithContext,
		CPUTimes:       cpu.TimesWithContext,
		CPUCounts:      cpu.CountsWithContext,
		CPUInfo:        cpu.InfoWithContext,
		LoadAvg:        load.AvgWithContext,
		VirtualMemory:  mem.VirtualMemoryWithContext,
		SwapMemory:     mem.SwapMemoryWithContext,
		DiskUsage:      disk.UsageWithContext,
		DiskPartitions: disk.PartitionsWithContext,
		NetIOCounters:  net.IOCountersWithContext,
		NetInterfaces:  net.InterfacesWithContext,
		NetConnections: net.ConnectionsWithContext,
		Pids:           process.PidsWithContext,
		NewProcess: func(ctx context.Context, pid int32) (ProcessHandle, error) {
			p, err := process.NewProcessWithContext(ctx, pid)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
		Now: time.Now,
	}
}

func (b Backend) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}
