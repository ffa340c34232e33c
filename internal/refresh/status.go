package refresh

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a Session.
type Status int

const (
	Idle Status = iota
	Running
	Completed
	Cancelled
	Aborted
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether s is one of the end states.
func (s Status) Terminal() bool {
	return s == Completed || s == Cancelled || s == Aborted
}

// Result describes how a session ended.
type Result struct {
	Status Status

	// Cycles counts sample/render cycles, including degraded ones.
	Cycles int

	// Degraded counts cycles whose sample failed transiently.
	Degraded int

	// RenderFailures counts frames the renderer could not draw.
	RenderFailures int

	Elapsed time.Duration

	// Err is the fatal cause for Aborted sessions and nil otherwise.
	Err error
}

// ExitCode maps the result to a process exit status. Only aborted sessions
// are failures; a user quitting early is a normal way to end.
func (r Result) ExitCode() int {
	if r.Status == Aborted {
		return 1
	}
	return 0
}

// Summary is the status line printed when a live session ends.
func (r Result) Summary() string {
	elapsed := r.Elapsed.Truncate(100 * time.Millisecond)

	var line string
	switch r.Status {
	case Completed:
		line = fmt.Sprintf("completed after %s (%s)", elapsed, cycles(r.Cycles))
	case Cancelled:
		line = fmt.Sprintf("stopped by user after %s (%s)", elapsed, cycles(r.Cycles))
	case Aborted:
		cause := "unknown error"
		if r.Err != nil {
			cause = strings.TrimSpace(r.Err.Error())
		}
		return "aborted: " + cause
	default:
		return r.Status.String()
	}

	if r.Degraded > 0 {
		line += fmt.Sprintf(", %d degraded", r.Degraded)
	}
	return line
}

func cycles(n int) string {
	if n == 1 {
		return "1 cycle"
	}
	return fmt.Sprintf("%d cycles", n)
}
