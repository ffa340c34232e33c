package monitor

import tea "github.com/charmbracelet/bubbletea"

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramRenderer forwards session events to a Bubble Tea program via
// Send, so the program stays the only writer to the terminal. It implements
// refresh.Renderer and refresh.DegradedRenderer.
type ProgramRenderer[S any] struct {
	program Sender
	cycle   int
}

// NewProgramRenderer creates a renderer that feeds program.
func NewProgramRenderer[S any](program Sender) *ProgramRenderer[S] {
	return &ProgramRenderer[S]{program: program}
}

// Draw forwards a snapshot.
func (r *ProgramRenderer[S]) Draw(snapshot S) error {
	r.cycle++
	r.program.Send(snapshotMsg[S]{snapshot: snapshot, cycle: r.cycle})
	return nil
}

// Degraded forwards a failed cycle.
func (r *ProgramRenderer[S]) Degraded(cycle int, err error) {
	r.cycle = cycle
	r.program.Send(degradedMsg{cycle: cycle, err: err})
}
