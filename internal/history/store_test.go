package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/r3dlabs/termkit/internal/refresh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", DefaultFileName))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestFromResult(t *testing.T) {
	res := refresh.Result{
		Status:   refresh.Aborted,
		Cycles:   0,
		Degraded: 0,
		Elapsed:  120 * time.Millisecond,
		Err:      errors.New("cpu times: unavailable"),
	}

	sess := FromResult("sys", base, 500*time.Millisecond, 30*time.Second, res)
	assert.Equal(t, "sys", sess.Tool)
	assert.Equal(t, refresh.Aborted.String(), sess.Status)
	assert.Equal(t, "cpu times: unavailable", sess.Error)
	assert.Equal(t, 30*time.Second, sess.Duration)
}

func TestStore_RecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, tool := range []string{"sys", "procs", "net", "sys"} {
		_, err := s.Record(ctx, Session{
			Tool:      tool,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Interval:  500 * time.Millisecond,
			Duration:  30 * time.Second,
			Status:    "completed",
			Cycles:    60 + i,
			Degraded:  i,
			Elapsed:   30 * time.Second,
		})
		require.NoError(t, err)
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 63, all[0].Cycles, "newest first")
	assert.Equal(t, 500*time.Millisecond, all[0].Interval)
	assert.Equal(t, 30*time.Second, all[0].Elapsed)
	assert.True(t, base.Add(3*time.Minute).Equal(all[0].StartedAt))
	assert.Empty(t, all[0].Error)

	sys, err := s.List(ctx, Filter{Tool: "sys", Limit: 1})
	require.NoError(t, err)
	require.Len(t, sys, 1)
	assert.Equal(t, 3, sys[0].Degraded)
}

func TestStore_ErrorText(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, Session{Tool: "net", StartedAt: base, Status: "aborted", Error: "network counters: unavailable"})
	require.NoError(t, err)

	got, err := s.List(ctx, Filter{Tool: "net"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "network counters: unavailable", got[0].Error)
}

func TestStore_Prune(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Record(ctx, Session{Tool: "sys", StartedAt: base.AddDate(0, 0, -i*10), Status: "completed"})
		require.NoError(t, err)
	}

	n, err := s.Prune(ctx, base.AddDate(0, 0, -5))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Session{Tool: "sys", StartedAt: base, Status: "completed"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err, "migrations are idempotent")
	defer s.Close()

	got, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "termkit", DefaultFileName), path)
}
