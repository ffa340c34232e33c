package metrics_test

import (
	"context"
	"os"
	"testing"

	"github.com/r3dlabs/termkit/internal/metrics"
	mtesting "github.com/r3dlabs/termkit/internal/metrics/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func machineWithProcesses() *mtesting.FakeMachine {
	m := mtesting.NewFakeMachine()
	m.AddProcess(&mtesting.FakeProcess{PID: 1, Name: "systemd", User: "root", CPU: 0.1, Memory: 0.2, RSS: 12 << 20, Status: "sleep"})
	m.AddProcess(&mtesting.FakeProcess{PID: 200, Name: "postgres", User: "postgres", CPU: 12.5, Memory: 8.0, RSS: 512 << 20, Status: "running"})
	m.AddProcess(&mtesting.FakeProcess{PID: 310, Name: "bash", User: "alice", CPU: 0, Memory: 0.1, RSS: 4 << 20, Status: "sleep"})
	m.AddProcess(&mtesting.FakeProcess{PID: 420, Name: "Chrome", User: "alice", CPU: 35.0, Memory: 12.0, RSS: 900 << 20, Status: "running"})
	m.AddProcess(&mtesting.FakeProcess{PID: 999, Name: "defunct", User: "alice", Status: "zombie"})
	return m
}

// sampleTwice returns the second snapshot so CPU readings have a baseline.
func sampleTwice(t *testing.T, s *metrics.ProcessSampler) metrics.ProcessSnapshot {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Open(ctx))
	first, err := s.Sample(ctx, nil)
	require.NoError(t, err)
	second, err := s.Sample(ctx, &first)
	require.NoError(t, err)
	return second
}

func pids(rows []metrics.ProcessRow) []int32 {
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.PID
	}
	return out
}

func TestProcessSampler_FirstCycleCPUUnknown(t *testing.T) {
	ctx := context.Background()
	s := metrics.NewProcessSampler(machineWithProcesses().Backend(), metrics.ProcessQuery{})
	require.NoError(t, s.Open(ctx))

	first, err := s.Sample(ctx, nil)
	require.NoError(t, err)
	for _, row := range first.Rows {
		assert.ErrorIs(t, row.CPU.Err, metrics.ErrNoBaseline, "pid %d", row.PID)
		assert.True(t, row.Memory.OK())
	}

	second, err := s.Sample(ctx, &first)
	require.NoError(t, err)
	for _, row := range second.Rows {
		assert.True(t, row.CPU.OK(), "pid %d", row.PID)
	}
}

func TestProcessSampler_Counts(t *testing.T) {
	snap := sampleTwice(t, metrics.NewProcessSampler(machineWithProcesses().Backend(), metrics.ProcessQuery{}))

	assert.Equal(t, 5, snap.Total)
	assert.Equal(t, 5, snap.Matched)
	assert.Equal(t, 2, snap.Statuses["running"])
	assert.Equal(t, 2, snap.Statuses["sleep"])
	assert.Equal(t, 1, snap.Statuses["zombie"])
	assert.Zero(t, snap.Restricted)
}

func TestProcessSampler_SortAndFilter(t *testing.T) {
	tests := []struct {
		name  string
		query metrics.ProcessQuery
		want  []int32
	}{
		{"cpu descending", metrics.ProcessQuery{Sort: metrics.SortCPU}, []int32{420, 200, 1, 310, 999}},
		{"cpu reversed", metrics.ProcessQuery{Sort: metrics.SortCPU, Reverse: true}, []int32{999, 310, 1, 200, 420}},
		{"memory", metrics.ProcessQuery{Sort: metrics.SortMemory, Limit: 3}, []int32{420, 200, 1}},
		{"name case-insensitive", metrics.ProcessQuery{Sort: metrics.SortName}, []int32{310, 420, 999, 200, 1}},
		{"pid", metrics.ProcessQuery{Sort: metrics.SortPID}, []int32{1, 200, 310, 420, 999}},
		{"filter", metrics.ProcessQuery{Sort: metrics.SortPID, Filter: "GRES"}, []int32{200}},
		{"user", metrics.ProcessQuery{Sort: metrics.SortPID, User: "alice"}, []int32{310, 420, 999}},
		{"user with domain", metrics.ProcessQuery{Sort: metrics.SortPID, User: `WORKGROUP\alice`}, []int32{310, 420, 999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleTwice(t, metrics.NewProcessSampler(machineWithProcesses().Backend(), tt.query))
			assert.Equal(t, tt.want, pids(snap.Rows))
		})
	}
}

func TestProcessSampler_LimitKeepsMatchedCount(t *testing.T) {
	snap := sampleTwice(t, metrics.NewProcessSampler(machineWithProcesses().Backend(), metrics.ProcessQuery{Limit: 2}))

	assert.Len(t, snap.Rows, 2)
	assert.Equal(t, 5, snap.Matched)
}

func TestProcessSampler_RestrictedPolicy(t *testing.T) {
	build := func() *mtesting.FakeMachine {
		m := machineWithProcesses()
		m.AddProcess(&mtesting.FakeProcess{
			PID:  77,
			Name: "sshd",
			User: "root",
			Errs: map[string]error{
				"cpu":     os.ErrPermission,
				"memory":  os.ErrPermission,
				"rss":     os.ErrPermission,
				"cmdline": os.ErrPermission,
			},
		})
		return m
	}

	t.Run("show keeps the row with blanks", func(t *testing.T) {
		snap := sampleTwice(t, metrics.NewProcessSampler(build().Backend(), metrics.ProcessQuery{Sort: metrics.SortPID}))

		assert.Equal(t, 1, snap.Restricted)
		require.Contains(t, pids(snap.Rows), int32(77))
		var row metrics.ProcessRow
		for _, r := range snap.Rows {
			if r.PID == 77 {
				row = r
			}
		}
		assert.True(t, row.Restricted())
		assert.Equal(t, "sshd", row.Name.String())
		assert.Equal(t, metrics.NA, row.CPU.String())
		assert.Equal(t, metrics.NA, row.Memory.String())
	})

	t.Run("hide drops the row but still counts it", func(t *testing.T) {
		q := metrics.ProcessQuery{Sort: metrics.SortPID, Restricted: metrics.RestrictedHide}
		snap := sampleTwice(t, metrics.NewProcessSampler(build().Backend(), q))

		assert.Equal(t, 1, snap.Restricted)
		assert.Equal(t, 6, snap.Total)
		assert.NotContains(t, pids(snap.Rows), int32(77))
	})

	t.Run("restricted rows sort last by cpu", func(t *testing.T) {
		snap := sampleTwice(t, metrics.NewProcessSampler(build().Backend(), metrics.ProcessQuery{Sort: metrics.SortCPU}))
		assert.Equal(t, int32(77), snap.Rows[len(snap.Rows)-1].PID)
	})
}

func TestProcessSampler_ExitedProcesses(t *testing.T) {
	ctx := context.Background()
	m := machineWithProcesses()
	s := metrics.NewProcessSampler(m.Backend(), metrics.ProcessQuery{Sort: metrics.SortPID})
	require.NoError(t, s.Open(ctx))

	first, err := s.Sample(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Total)

	m.RemoveProcess(200)
	m.AddProcess(&mtesting.FakeProcess{PID: 500, Name: "make", User: "alice", CPU: 90})

	second, err := s.Sample(ctx, &first)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 310, 420, 500, 999}, pids(second.Rows))

	for _, r := range second.Rows {
		if r.PID == 500 {
			assert.ErrorIs(t, r.CPU.Err, metrics.ErrNoBaseline, "new process has no baseline yet")
		}
	}

	// A PID reused by a new process gets a fresh handle.
	m.AddProcess(&mtesting.FakeProcess{PID: 200, Name: "redis", User: "redis"})
	third, err := s.Sample(ctx, &second)
	require.NoError(t, err)
	for _, r := range third.Rows {
		if r.PID == 200 {
			assert.Equal(t, "redis", r.Name.Value)
		}
	}
}

func TestProcessSampler_ReusedPID(t *testing.T) {
	ctx := context.Background()
	m := mtesting.NewFakeMachine()
	m.AddProcess(&mtesting.FakeProcess{PID: 42, Name: "old", User: "alice", CPU: 5, Created: 1_000})

	s := metrics.NewProcessSampler(m.Backend(), metrics.ProcessQuery{})
	require.NoError(t, s.Open(ctx))
	first, err := s.Sample(ctx, nil)
	require.NoError(t, err)
	second, err := s.Sample(ctx, &first)
	require.NoError(t, err)
	require.Len(t, second.Rows, 1)
	assert.Equal(t, "old", second.Rows[0].Name.Value)

	m.AddProcess(&mtesting.FakeProcess{PID: 42, Name: "new", User: "bob", CPU: 7, Created: 2_000})

	third, err := s.Sample(ctx, &second)
	require.NoError(t, err)
	require.Len(t, third.Rows, 1)
	row := third.Rows[0]
	assert.Equal(t, "new", row.Name.Value)
	assert.Equal(t, "bob", row.Username.Value)
	assert.ErrorIs(t, row.CPU.Err, metrics.ErrNoBaseline, "a new process starts a new CPU baseline")
}

func TestProcessSampler_OpenUnavailable(t *testing.T) {
	m := mtesting.NewFakeMachine()
	m.PidsErr = os.ErrNotExist

	err := metrics.NewProcessSampler(m.Backend(), metrics.ProcessQuery{}).Open(context.Background())
	assert.ErrorIs(t, err, metrics.ErrUnavailable)
}

func TestProcessSampler_CloseDropsHandles(t *testing.T) {
	ctx := context.Background()
	m := machineWithProcesses()
	s := metrics.NewProcessSampler(m.Backend(), metrics.ProcessQuery{})

	_ = sampleTwice(t, s)
	require.NoError(t, s.Close())

	// After Close every process is new again.
	snap, err := s.Sample(ctx, nil)
	require.NoError(t, err)
	for _, r := range snap.Rows {
		assert.ErrorIs(t, r.CPU.Err, metrics.ErrNoBaseline)
	}
}

func TestParseSortKey(t *testing.T) {
	k, err := metrics.ParseSortKey("Memory")
	require.NoError(t, err)
	assert.Equal(t, metrics.SortMemory, k)

	_, err = metrics.ParseSortKey("threads")
	assert.Error(t, err)
}

func TestKillProcess(t *testing.T) {
	ctx := context.Background()
	m := machineWithProcesses()
	b := m.Backend()

	require.NoError(t, metrics.KillProcess(ctx, b, 310))
	assert.Equal(t, []int32{310}, m.Terminated)

	err := metrics.KillProcess(ctx, b, 4242)
	assert.ErrorIs(t, err, metrics.ErrNotRunning)

	m.AddProcess(&mtesting.FakeProcess{PID: 1000, Name: "root-owned", Errs: map[string]error{"terminate": os.ErrPermission}})
	err = metrics.KillProcess(ctx, b, 1000)
	assert.ErrorIs(t, err, metrics.ErrPermissionDenied)
}
