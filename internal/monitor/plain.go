package monitor

import (
	"fmt"
	"io"
	"time"
)

// PlainRenderer writes one timestamped line per cycle. It is used when
// output is not a terminal.
type PlainRenderer[S any] struct {
	w     io.Writer
	panel Panel[S]
	now   func() time.Time
}

// NewPlainRenderer creates a line renderer for panel.
func NewPlainRenderer[S any](w io.Writer, panel Panel[S], now func() time.Time) *PlainRenderer[S] {
	if now == nil {
		now = time.Now
	}
	return &PlainRenderer[S]{w: w, panel: panel, now: now}
}

// Draw writes the snapshot's summary line.
func (r *PlainRenderer[S]) Draw(snapshot S) error {
	r.panel.Update(snapshot)
	_, err := fmt.Fprintf(r.w, "[%s] %s\n", r.stamp(), r.panel.Line(snapshot))
	return err
}

// Degraded writes a line for a failed cycle.
func (r *PlainRenderer[S]) Degraded(cycle int, err error) {
	fmt.Fprintf(r.w, "[%s] cycle %d degraded: %v\n", r.stamp(), cycle, err)
}

func (r *PlainRenderer[S]) stamp() string {
	return r.now().Format("15:04:05")
}
