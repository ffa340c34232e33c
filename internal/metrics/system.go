package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// HostInfo describes the machine and its operating system.
type HostInfo struct {
	Hostname        string
	OS              string
	Platform        string
	PlatformVersion string
	Kernel          string
	Arch            string
	Uptime          time.Duration
	BootTime        time.Time
	Procs           uint64
}

// CPUInfo is static processor information, read once per session.
type CPUInfo struct {
	Model    string
	Physical int
	Logical  int
	Mhz      float64
}

// LoadAvg holds the 1, 5 and 15 minute load averages.
type LoadAvg struct {
	Load1, Load5, Load15 float64
}

// MemoryUsage is a used/total pair for RAM or swap.
type MemoryUsage struct {
	Total     uint64
	Used      uint64
	Available uint64
	Percent   float64
}

// DiskUsage describes one mounted filesystem.
type DiskUsage struct {
	Device     string
	Mountpoint string
	Fstype     string
	Total      uint64
	Used       uint64
	Free       uint64
	Percent    float64
}

// SystemSnapshot is one capture of host-wide resource usage.
type SystemSnapshot struct {
	TakenAt time.Time

	Host    Field[HostInfo]
	CPUInfo Field[CPUInfo]

	// CPU is total utilisation since the previous snapshot.
	CPU Field[float64]
	// Cores is per-core utilisation since the previous snapshot.
	Cores Field[[]float64]

	Load   Field[LoadAvg]
	Memory Field[MemoryUsage]
	Swap   Field[MemoryUsage]

	// Disk is usage of the sampler's root path.
	Disk Field[DiskUsage]
	// Partitions lists every physical mount with its usage.
	Partitions Field[[]DiskUsage]

	// Raw CPU counters the next snapshot derives percentages from.
	cpuTimes  Field[cpu.TimesStat]
	coreTimes Field[[]cpu.TimesStat]
}

// SystemSampler produces SystemSnapshots.
type SystemSampler struct {
	backend  Backend
	diskPath string

	// WithPartitions enables per-mount usage, which costs one statfs per mount.
	WithPartitions bool

	cpuInfo Field[CPUInfo]
}

// NewSystemSampler creates a sampler that reports disk usage for diskPath
// (the filesystem root when empty).
func NewSystemSampler(backend Backend, diskPath string) *SystemSampler {
	if diskPath == "" {
		diskPath = rootPath()
	}
	return &SystemSampler{backend: backend, diskPath: diskPath}
}

// Open probes the CPU counters; a machine without them cannot be monitored.
func (s *SystemSampler) Open(ctx context.Context) error {
	if _, err := s.backend.CPUTimes(ctx, false); err != nil {
		return unavailable("cpu times", err)
	}
	s.cpuInfo = s.readCPUInfo(ctx)
	return nil
}

// Sample captures a SystemSnapshot. It only fails when every reading failed.
func (s *SystemSampler) Sample(ctx context.Context, prev *SystemSnapshot) (SystemSnapshot, error) {
	b := s.backend
	snap := SystemSnapshot{
		TakenAt: b.now(),
		CPUInfo: s.cpuInfo,
	}

	if info, err := b.HostInfo(ctx); err != nil {
		snap.Host = Unknown[HostInfo](err)
	} else {
		snap.Host = Known(HostInfo{
			Hostname:        info.Hostname,
			OS:              info.OS,
			Platform:        info.Platform,
			PlatformVersion: info.PlatformVersion,
			Kernel:          info.KernelVersion,
			Arch:            info.KernelArch,
			Uptime:          time.Duration(info.Uptime) * time.Second,
			BootTime:        time.Unix(int64(info.BootTime), 0),
			Procs:           info.Procs,
		})
	}

	if times, err := b.CPUTimes(ctx, false); err != nil {
		snap.cpuTimes = Unknown[cpu.TimesStat](err)
	} else if len(times) == 0 {
		snap.cpuTimes = Unknown[cpu.TimesStat](ErrUnavailable)
	} else {
		snap.cpuTimes = Known(times[0])
	}
	coreTimes, err := b.CPUTimes(ctx, true)
	snap.coreTimes = FieldOf(coreTimes, err)

	snap.CPU, snap.Cores = cpuUsage(prev, snap)

	if avg, err := b.LoadAvg(ctx); err != nil {
		snap.Load = Unknown[LoadAvg](err)
	} else {
		snap.Load = Known(LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15})
	}

	if vm, err := b.VirtualMemory(ctx); err != nil {
		snap.Memory = Unknown[MemoryUsage](err)
	} else {
		snap.Memory = Known(MemoryUsage{Total: vm.Total, Used: vm.Used, Available: vm.Available, Percent: vm.UsedPercent})
	}

	if sw, err := b.SwapMemory(ctx); err != nil {
		snap.Swap = Unknown[MemoryUsage](err)
	} else {
		snap.Swap = Known(MemoryUsage{Total: sw.Total, Used: sw.Used, Available: sw.Free, Percent: sw.UsedPercent})
	}

	snap.Disk = s.diskUsage(ctx, "", s.diskPath, "")
	if s.WithPartitions {
		snap.Partitions = s.partitions(ctx)
	} else {
		snap.Partitions = Unknown[[]DiskUsage](ErrUnavailable)
	}

	if !snap.Host.OK() && !snap.cpuTimes.OK() && !snap.Memory.OK() && !snap.Disk.OK() {
		return SystemSnapshot{}, unavailable("system metrics", snap.cpuTimes.Err)
	}
	return snap, nil
}

// Close is a no-op; the system sampler holds no handles.
func (s *SystemSampler) Close() error {
	return nil
}

func (s *SystemSampler) readCPUInfo(ctx context.Context) Field[CPUInfo] {
	b := s.backend
	var info CPUInfo

	logical, err := b.CPUCounts(ctx, true)
	if err != nil {
		return Unknown[CPUInfo](err)
	}
	info.Logical = logical
	// Physical counts are unsupported on some platforms; keep logical.
	if physical, err := b.CPUCounts(ctx, false); err == nil {
		info.Physical = physical
	}
	if stats, err := b.CPUInfo(ctx); err == nil && len(stats) > 0 {
		info.Model = stats[0].ModelName
		info.Mhz = stats[0].Mhz
	}
	return Known(info)
}

func (s *SystemSampler) diskUsage(ctx context.Context, device, path, fstype string) Field[DiskUsage] {
	u, err := s.backend.DiskUsage(ctx, path)
	if err != nil {
		return Unknown[DiskUsage](err)
	}
	if fstype == "" {
		fstype = u.Fstype
	}
	return Known(DiskUsage{
		Device:     device,
		Mountpoint: u.Path,
		Fstype:     fstype,
		Total:      u.Total,
		Used:       u.Used,
		Free:       u.Free,
		Percent:    u.UsedPercent,
	})
}

func (s *SystemSampler) partitions(ctx context.Context) Field[[]DiskUsage] {
	parts, err := s.backend.DiskPartitions(ctx, false)
	if err != nil {
		return Unknown[[]DiskUsage](err)
	}
	usages := make([]DiskUsage, 0, len(parts))
	for _, p := range parts {
		// Mounts we cannot stat are skipped, matching df.
		u := s.diskUsage(ctx, p.Device, p.Mountpoint, p.Fstype)
		if !u.OK() {
			continue
		}
		usages = append(usages, u.Value)
	}
	return Known(usages)
}

// cpuUsage derives utilisation from the counters in prev and cur.
func cpuUsage(prev *SystemSnapshot, cur SystemSnapshot) (Field[float64], Field[[]float64]) {
	if prev == nil {
		return Unknown[float64](ErrNoBaseline), Unknown[[]float64](ErrNoBaseline)
	}

	total := Unknown[float64](ErrNoBaseline)
	if prev.cpuTimes.OK() && cur.cpuTimes.OK() {
		if pct, ok := CPUPercent(prev.cpuTimes.Value, cur.cpuTimes.Value); ok {
			total = Known(pct)
		}
	} else if !cur.cpuTimes.OK() {
		total = Unknown[float64](cur.cpuTimes.Err)
	}

	cores := Unknown[[]float64](ErrNoBaseline)
	if !cur.coreTimes.OK() {
		cores = Unknown[[]float64](cur.coreTimes.Err)
	} else if prev.coreTimes.OK() && len(prev.coreTimes.Value) == len(cur.coreTimes.Value) {
		pcts := make([]float64, len(cur.coreTimes.Value))
		for i := range cur.coreTimes.Value {
			pcts[i], _ = CPUPercent(prev.coreTimes.Value[i], cur.coreTimes.Value[i])
		}
		cores = Known(pcts)
	}

	return total, cores
}

// CPUPercent returns busy time as a percentage of all time elapsed between
// two counter readings. ok is false when no time was accounted in between.
func CPUPercent(prev, cur cpu.TimesStat) (float64, bool) {
	prevTotal, prevBusy := cpuTotals(prev)
	curTotal, curBusy := cpuTotals(cur)

	delta := curTotal - prevTotal
	if delta <= 0 {
		return 0, false
	}
	busy := curBusy - prevBusy
	if busy <= 0 {
		return 0, true
	}
	if busy >= delta {
		return 100, true
	}
	return busy / delta * 100, true
}

func cpuTotals(t cpu.TimesStat) (total, busy float64) {
	// Guest time is already included in User on Linux.
	total = t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	busy = total - t.Idle - t.Iowait
	return total, busy
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}
