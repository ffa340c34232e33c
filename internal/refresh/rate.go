package refresh

import "time"

// Rate returns the per-second change of a monotonic counter between two
// samples taken elapsed apart. ok is false when elapsed is not positive,
// since no rate can be derived. A counter that went backwards (interface
// reset, wraparound) yields 0.
func Rate(prev, cur uint64, elapsed time.Duration) (rate float64, ok bool) {
	if elapsed <= 0 {
		return 0, false
	}
	if cur < prev {
		return 0, true
	}
	return float64(cur-prev) / elapsed.Seconds(), true
}

// Counter is a monotonic counter reading paired with the time it was taken.
type Counter struct {
	Value uint64
	At    time.Time
}

// RateSince returns the rate from prev to cur. It is undefined (ok=false)
// when there is no previous reading, which is always the case on the first
// cycle of a session.
func RateSince(prev *Counter, cur Counter) (float64, bool) {
	if prev == nil {
		return 0, false
	}
	return Rate(prev.Value, cur.Value, cur.At.Sub(prev.At))
}
