package refresh

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "aborted", Aborted.String())
	assert.Equal(t, "status(9)", Status(9).String())

	assert.False(t, Running.Terminal())
	assert.True(t, Cancelled.Terminal())
}

func TestResult_Summary(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{
			name: "completed",
			res:  Result{Status: Completed, Cycles: 60, Elapsed: 30 * time.Second},
			want: "completed after 30s (60 cycles)",
		},
		{
			name: "cancelled",
			res:  Result{Status: Cancelled, Cycles: 8, Elapsed: 4*time.Second + 37*time.Millisecond},
			want: "stopped by user after 4s (8 cycles)",
		},
		{
			name: "single cycle with degraded",
			res:  Result{Status: Cancelled, Cycles: 1, Degraded: 1, Elapsed: 250 * time.Millisecond},
			want: "stopped by user after 200ms (1 cycle), 1 degraded",
		},
		{
			name: "aborted",
			res:  Result{Status: Aborted, Err: errors.New("cpu counts: metrics provider unavailable")},
			want: "aborted: cpu counts: metrics provider unavailable",
		},
		{
			name: "aborted without cause",
			res:  Result{Status: Aborted},
			want: "aborted: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Summary())
		})
	}
}

func TestResult_ExitCode(t *testing.T) {
	assert.Equal(t, 0, Result{Status: Completed}.ExitCode())
	assert.Equal(t, 0, Result{Status: Cancelled}.ExitCode())
	assert.Equal(t, 1, Result{Status: Aborted}.ExitCode())
}
