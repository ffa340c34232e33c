package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/r3dlabs/termkit/internal/refresh"
)

// Panel turns snapshots of one kind into dashboard content.
type Panel[S any] interface {
	// Title names the dashboard in the header.
	Title() string
	// Update folds a new snapshot into the panel's state.
	Update(snapshot S)
	// View renders the panel body within width x height cells.
	View(width, height int) string
	// Line renders a snapshot as a single plain-text line.
	Line(snapshot S) string
}

// KeyHandler is implemented by panels that react to keys the model does not
// consume itself, such as table scrolling.
type KeyHandler interface {
	HandleKey(msg tea.KeyMsg) bool
}

// Height breakpoints for layout adjustments
const (
	HeightMinimal  = 16
	HeightStandard = 36
)

// snapshotMsg carries a successful sample from the session goroutine.
type snapshotMsg[S any] struct {
	snapshot S
	cycle    int
}

// degradedMsg reports a cycle whose sample failed.
type degradedMsg struct {
	cycle int
	err   error
}

// sessionDoneMsg carries the session's final result.
type sessionDoneMsg struct {
	result refresh.Result
}

// Model is the Bubble Tea model for a live dashboard.
type Model[S any] struct {
	panel    Panel[S]
	cancel   context.CancelFunc
	now      func() time.Time
	started  time.Time
	interval time.Duration
	duration time.Duration

	cycles   int
	degraded int
	lastErr  string
	sampled  bool

	result   *refresh.Result
	keys     keyMap
	help     help.Model
	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewModel creates a dashboard model for panel. cancel stops the refresh
// session; now is the clock used for the elapsed-time readout.
func NewModel[S any](panel Panel[S], interval, duration time.Duration, cancel context.CancelFunc, now func() time.Time) Model[S] {
	if now == nil {
		now = time.Now
	}
	if cancel == nil {
		cancel = func() {}
	}
	return Model[S]{
		panel:    panel,
		cancel:   cancel,
		now:      now,
		started:  now(),
		interval: interval,
		duration: duration,
		keys:     newKeyMap(panel),
		help:     newHelp(),
		width:    80,
		height:   24,
	}
}

// Init has nothing to start; snapshots arrive from the session goroutine.
func (m Model[S]) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model[S]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		_, cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case snapshotMsg[S]:
		m.panel.Update(msg.snapshot)
		m.cycles = msg.cycle
		m.sampled = true
		m.lastErr = ""

	case degradedMsg:
		m.cycles = msg.cycle
		m.degraded++
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}

	case sessionDoneMsg:
		result := msg.result
		m.result = &result
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the dashboard.
func (m Model[S]) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// Result returns the session result once the session has finished.
func (m Model[S]) Result() (refresh.Result, bool) {
	if m.result == nil {
		return refresh.Result{}, false
	}
	return *m.result, true
}

// Cycles returns the number of cycles reported so far.
func (m Model[S]) Cycles() int {
	return m.cycles
}

// Degraded returns the number of degraded cycles reported so far.
func (m Model[S]) Degraded() int {
	return m.degraded
}

// Elapsed returns the time since the dashboard started, capped at the
// session duration.
func (m Model[S]) Elapsed() time.Duration {
	elapsed := m.now().Sub(m.started)
	if m.duration > 0 && elapsed > m.duration {
		elapsed = m.duration
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

// ShowFooter returns true if the terminal is tall enough to show the footer.
func (m Model[S]) ShowFooter() bool {
	return m.height >= HeightMinimal
}

// bodyHeight is the space left for the panel after header and footer.
func (m Model[S]) bodyHeight() int {
	h := m.height - 3
	if m.ShowFooter() {
		h -= 2
	}
	if h < 1 {
		h = 1
	}
	return h
}
