// Package ui provides terminal components for termkit's one-shot commands.
//
// Live dashboards live in internal/monitor; this package covers the static
// output of commands like `termkit sys` and `termkit files`.
//
// # Components Overview
//
//	Spinner       - Animated status indicator while a command gathers data
//	Tables        - Non-interactive Bubbles tables and key/value blocks
//	Colors        - Semantic ANSI palette and the --no-color switch
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Passed checks
//	ColorError     (red)    - Failures and errors
//	ColorWarning   (yellow) - Degraded or unknown readings
//	ColorInfo      (cyan)   - Section titles
//	ColorMuted     (gray)   - Secondary text, timing info
//
// SetColorMode applies the output.color setting; DisableColors backs the
// --no-color flag.
//
// # Spinner Usage
//
//	err := ui.WithSpinner(os.Stderr, "Gathering system info", isTTY, func() error {
//		// ... do work ...
//		return nil
//	})
package ui
