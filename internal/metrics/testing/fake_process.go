package testing

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// FakeProcess implements metrics.ProcessHandle.
type FakeProcess struct {
	PID     int32
	Name    string
	User    string
	Cmdline string
	CPU     float64
	Memory  float32
	RSS     uint64
	Status  string
	// Created is the start time in ms since the epoch.
	Created int64

	// Errs fails individual readings, keyed by "name", "user", "cmdline",
	// "created", "cpu", "memory", "rss", "status" or "terminate".
	Errs map[string]error

	machine *FakeMachine
	gone    bool
}

func (p *FakeProcess) fail(key string) error {
	if p.machine != nil {
		p.machine.mu.Lock()
		defer p.machine.mu.Unlock()
	}
	if p.gone {
		return process.ErrorProcessNotRunning
	}
	return p.Errs[key]
}

func (p *FakeProcess) NameWithContext(ctx context.Context) (string, error) {
	if err := p.fail("name"); err != nil {
		return "", err
	}
	return p.Name, nil
}

func (p *FakeProcess) UsernameWithContext(ctx context.Context) (string, error) {
	if err := p.fail("user"); err != nil {
		return "", err
	}
	return p.User, nil
}

func (p *FakeProcess) CmdlineWithContext(ctx context.Context) (string, error) {
	if err := p.fail("cmdline"); err != nil {
		return "", err
	}
	return p.Cmdline, nil
}

func (p *FakeProcess) CreateTimeWithContext(ctx context.Context) (int64, error) {
	if err := p.fail("created"); err != nil {
		return 0, err
	}
	return p.Created, nil
}

func (p *FakeProcess) PercentWithContext(ctx context.Context, interval time.Duration) (float64, error) {
	if err := p.fail("cpu"); err != nil {
		return 0, err
	}
	return p.CPU, nil
}

func (p *FakeProcess) MemoryPercentWithContext(ctx context.Context) (float32, error) {
	if err := p.fail("memory"); err != nil {
		return 0, err
	}
	return p.Memory, nil
}

func (p *FakeProcess) MemoryInfoWithContext(ctx context.Context) (*process.MemoryInfoStat, error) {
	if err := p.fail("rss"); err != nil {
		return nil, err
	}
	return &process.MemoryInfoStat{RSS: p.RSS}, nil
}

func (p *FakeProcess) StatusWithContext(ctx context.Context) ([]string, error) {
	if err := p.fail("status"); err != nil {
		return nil, err
	}
	status := p.Status
	if status == "" {
		status = process.Sleep
	}
	return []string{status}, nil
}

func (p *FakeProcess) TerminateWithContext(ctx context.Context) error {
	if err := p.fail("terminate"); err != nil {
		return err
	}
	if p.machine != nil {
		p.machine.mu.Lock()
		p.machine.Terminated = append(p.machine.Terminated, p.PID)
		p.machine.mu.Unlock()
	}
	return nil
}
