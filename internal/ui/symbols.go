package ui

// Status symbols printed before one-line outcomes.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolWarning = "⚠"
)
