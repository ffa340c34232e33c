package monitor

import "sync"

// DefaultHistorySize is the default number of data points to retain per series.
// At the default 500ms interval this covers the last 60 seconds.
const DefaultHistorySize = 120

// Series names recorded by the dashboards.
const (
	SeriesCPU     = "cpu"
	SeriesMemory  = "memory"
	SeriesRecv    = "recv"
	SeriesSent    = "sent"
	SeriesRunning = "running"
)

// History keeps named ring buffers of recent readings for sparklines and
// plots. Readings that are unknown are simply not pushed.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[string]*ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a new history tracker with the specified buffer size.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:   size,
		series: make(map[string]*ringBuffer),
	}
}

// Push appends a value to the named series, creating it if needed.
func (h *History) Push(name string, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.series[name]
	if !ok {
		r = newRingBuffer(h.size)
		h.series[name] = r
	}
	r.push(value)
}

// Last returns up to count of the most recent values of a series, oldest first.
func (h *History) Last(name string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.series[name]
	if !ok {
		return nil
	}
	return r.getLast(count)
}

// All returns every stored value of a series, oldest first.
func (h *History) All(name string) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.series[name]
	if !ok {
		return nil
	}
	return r.getLast(r.count)
}

// Count returns the number of data points stored for a series.
func (h *History) Count(name string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.series[name]
	if !ok {
		return 0
	}
	return r.count
}

// Peak returns the largest stored value of a series.
func (h *History) Peak(name string) float64 {
	var peak float64
	for _, v := range h.All(name) {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Clear removes all history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.series = make(map[string]*ringBuffer)
}

// newRingBuffer creates a new ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value to the ring buffer.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value is at head-1
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		idx := (start + i) % r.size
		result[i] = r.data[idx]
	}

	return result
}
