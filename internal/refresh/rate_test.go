package refresh

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name    string
		prev    uint64
		cur     uint64
		elapsed time.Duration
		want    float64
		wantOK  bool
	}{
		{"known counters", 1_000_000, 2_500_000, 5 * time.Second, 300_000, true},
		{"half second tick", 0, 1024, 500 * time.Millisecond, 2048, true},
		{"idle", 42, 42, time.Second, 0, true},
		{"counter reset", 5000, 10, time.Second, 0, true},
		{"zero elapsed", 0, 100, 0, 0, false},
		{"negative elapsed", 0, 100, -time.Second, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Rate(tt.prev, tt.cur, tt.elapsed)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateSince(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cur := Counter{Value: 2_500_000, At: at.Add(5 * time.Second)}

	rate, ok := RateSince(nil, cur)
	assert.False(t, ok, "first cycle has no previous reading")
	assert.Zero(t, rate)

	rate, ok = RateSince(&Counter{Value: 1_000_000, At: at}, cur)
	assert.True(t, ok)
	assert.Equal(t, 300_000.0, rate)
}
