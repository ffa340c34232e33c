package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistory(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -1, DefaultHistorySize},
		{"custom size", 100, 100},
		{"small size", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(tt.size)
			assert.NotNil(t, h)
			assert.Equal(t, tt.expected, h.size)
			assert.NotNil(t, h.series)
		})
	}
}

func TestHistoryPushMultiple(t *testing.T) {
	h := NewHistory(10)

	for i := 0; i < 5; i++ {
		h.Push(SeriesCPU, float64(i*10))
	}

	assert.Equal(t, 5, h.Count(SeriesCPU))
	assert.Zero(t, h.Count(SeriesMemory))

	cpu := h.Last(SeriesCPU, 5)
	require.Len(t, cpu, 5)
	assert.Equal(t, []float64{0, 10, 20, 30, 40}, cpu)
	assert.Equal(t, []float64{30, 40}, h.Last(SeriesCPU, 2))
	assert.Equal(t, 40.0, h.Peak(SeriesCPU))
}

func TestHistoryRingBufferOverflow(t *testing.T) {
	h := NewHistory(5)

	for i := 0; i < 8; i++ {
		h.Push(SeriesRecv, float64(i))
	}

	assert.Equal(t, 5, h.Count(SeriesRecv))
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, h.All(SeriesRecv))
	assert.Equal(t, []float64{3, 4, 5, 6, 7}, h.Last(SeriesRecv, 100))
}

func TestHistoryUnknownSeries(t *testing.T) {
	h := NewHistory(5)

	assert.Nil(t, h.Last("nope", 3))
	assert.Nil(t, h.All("nope"))
	assert.Zero(t, h.Peak("nope"))
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(5)
	h.Push(SeriesCPU, 1)
	h.Push(SeriesSent, 2)

	h.Clear()

	assert.Zero(t, h.Count(SeriesCPU))
	assert.Zero(t, h.Count(SeriesSent))
}

func TestHistoryConcurrentAccess(t *testing.T) {
	h := NewHistory(50)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Push(SeriesCPU, float64(n+j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.Last(SeriesCPU, 10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Count(SeriesCPU))
}

func TestRingBufferGetLast(t *testing.T) {
	r := newRingBuffer(3)
	assert.Nil(t, r.getLast(2))

	r.push(1)
	r.push(2)
	assert.Equal(t, []float64{1, 2}, r.getLast(5))
	assert.Nil(t, r.getLast(0))

	r.push(3)
	r.push(4)
	assert.Equal(t, []float64{2, 3, 4}, r.getLast(3))
	assert.Equal(t, []float64{4}, r.getLast(1))
}
