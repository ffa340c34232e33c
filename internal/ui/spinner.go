package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// spinnerKind supplies the animation frames and their rate.
var spinnerKind = spinner.Dot

// Spinner draws an animated status line while a one-shot command gathers
// data, then replaces it with a ✓ or ✗ and the time taken.
type Spinner struct {
	out   io.Writer
	label string

	mu      sync.Mutex
	frame   int
	width   int // cells of the frame on screen
	started time.Time
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner returns a spinner for label that draws to out.
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{out: out, label: label}
}

// Start draws the first frame and animates until Finish. Starting twice
// does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return
	}
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawFrame()
	s.mu.Unlock()

	go s.animate()
}

func (s *Spinner) animate() {
	defer close(s.done)
	ticker := time.NewTicker(spinnerKind.FPS)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame++
			s.drawFrame()
			s.mu.Unlock()
		}
	}
}

// Finish stops the animation and prints the outcome line. It is safe to
// call more than once; only the first call prints.
func (s *Spinner) Finish(err error) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	if stop == nil {
		s.mu.Unlock()
		return
	}
	s.stop = nil
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	symbol := SuccessStyle().Render(SymbolSuccess)
	if err != nil {
		symbol = ErrorStyle().Render(SymbolFail)
	}
	s.clear()
	fmt.Fprintf(s.out, "%s %s %s\n", symbol, s.label, MutedStyle().Render(formatElapsed(time.Since(s.started))))
}

// drawFrame replaces the current frame. Callers hold s.mu.
func (s *Spinner) drawFrame() {
	frames := spinnerKind.Frames
	color := SpinnerColors[(s.frame/2)%len(SpinnerColors)]
	line := lipgloss.NewStyle().Foreground(color).Render(frames[s.frame%len(frames)]) + " " + s.label + "..."

	s.clear()
	fmt.Fprint(s.out, line)
	s.width = lipgloss.Width(line)
}

// clear blanks the frame on screen. Callers hold s.mu.
func (s *Spinner) clear() {
	if s.width == 0 {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
	s.width = 0
}

// WithSpinner runs fn behind a spinner when animate is set and silently
// otherwise, as for pipes and JSON output.
func WithSpinner(out io.Writer, label string, animate bool, fn func() error) error {
	if !animate {
		return fn()
	}
	s := NewSpinner(out, label)
	s.Start()
	err := fn()
	s.Finish(err)
	return err
}

// formatElapsed shows sub-second times to two decimals, e.g. "0.05s", "1.2s".
func formatElapsed(d time.Duration) string {
	if d < 100*time.Millisecond {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
