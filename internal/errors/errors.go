package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Codes group errors by what failed. The CLI maps them to JSON error codes.
const (
	ErrConfig   = "CONFIG"
	ErrProvider = "PROVIDER"
	ErrRender   = "RENDER"
	ErrExec     = "EXEC"
	ErrNet      = "NET"
	ErrFS       = "FS"
)

// Error is a user-facing failure. It renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error renders the message, the cause and the suggestion as separate
// paragraphs. A cause repeating the message is left out.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	if detail := causeText(e.Cause); detail != "" && detail != e.Message {
		fmt.Fprintf(&b, "\n  %s\n", detail)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  %s\n", e.Suggestion)
	}
	return b.String()
}

// causeText flattens a cause into one line. A nested *Error contributes
// its message and cause, not its full rendering.
func causeText(err error) string {
	tkErr, ok := err.(*Error)
	if !ok {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	if inner := causeText(tkErr.Cause); inner != "" && inner != tkErr.Message {
		return tkErr.Message + ": " + inner
	}
	return tkErr.Message
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (string, bool) {
	var tkErr *Error
	if errors.As(err, &tkErr) {
		return tkErr.Code, true
	}
	return "", false
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// ExitError carries a process exit status for a command whose user-facing
// output has already been printed.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given status.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the status from an ExitError anywhere in err's chain.
func GetExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
