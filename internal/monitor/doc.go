// Package monitor renders live dashboards for refresh sessions.
//
// A dashboard is a Bubble Tea program whose content comes from a Panel. The
// refresh session samples in its own goroutine and hands each snapshot to a
// ProgramRenderer, which forwards it to the program with Send. The program
// is therefore the only writer to the terminal.
//
// # Key Components
//
//	Model          - Generic Bubble Tea model: header, panel body, footer, help
//	Panel          - Turns snapshots into content (SystemPanel, ProcessPanel, NetworkPanel)
//	ProgramRenderer - refresh.Renderer that feeds the program
//	PlainRenderer  - refresh.Renderer that prints one line per cycle
//	History        - Ring buffers behind sparklines and plots
//
// # Message Flow
//
//  1. The session samples and calls ProgramRenderer.Draw
//  2. snapshotMsg reaches Model.Update, which passes it to the panel
//  3. A failed sample arrives as degradedMsg and shows as a warning line
//  4. sessionDoneMsg carries the final result and quits the program
//
// Pressing q, Ctrl+C or Esc cancels the session's context, so the session
// returns Cancelled at once rather than after its current wait.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Stop and exit
//	Esc         - Close help, otherwise exit
//	?           - Toggle help overlay
//	j/k, ↑/↓    - Scroll the process table
package monitor
