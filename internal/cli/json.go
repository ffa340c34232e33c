package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/netcheck"
)

// Machine mode flag - when true, one-shot commands print JSON envelopes
// instead of tables.
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound      = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid       = "CONFIG_INVALID"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodePermissionDenied    = "PERMISSION_DENIED"
	ErrCodeRenderFailed        = "RENDER_FAILED"
	ErrCodeNetFailed           = "NET_FAILED"
	ErrCodeFSFailed            = "FS_FAILED"
	ErrCodeCommandFailed       = "COMMAND_FAILED"
	ErrCodeUnknown             = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var tkErr *errors.Error
	if stderrors.As(err, &tkErr) {
		jsonErr := &JSONError{
			Code:       mapErrorCode(tkErr.Code, tkErr.Message),
			Message:    tkErr.Message,
			Suggestion: tkErr.Suggestion,
		}
		// Sampling failures carry more precise causes than their code.
		if code := providerCode(err); code != "" {
			jsonErr.Code = code
		}
		return jsonErr
	}

	if code := providerCode(err); code != "" {
		return &JSONError{Code: code, Message: err.Error()}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// providerCode recognises the metrics sentinels anywhere in the chain.
func providerCode(err error) string {
	switch {
	case metrics.IsPermissionDenied(err):
		return ErrCodePermissionDenied
	case stderrors.Is(err, metrics.ErrUnavailable):
		return ErrCodeProviderUnavailable
	}
	return ""
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrProvider:
		return ErrCodeProviderUnavailable
	case errors.ErrRender:
		return ErrCodeRenderFailed
	case errors.ErrNet:
		return ErrCodeNetFailed
	case errors.ErrFS:
		return ErrCodeFSFailed
	case errors.ErrExec:
		return ErrCodeCommandFailed
	}

	return ErrCodeUnknown
}

// portCheckDetails is the details payload when every checked port is closed.
func portCheckDetails(results []netcheck.Result) []map[string]interface{} {
	details := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		details = append(details, map[string]interface{}{
			"port":   r.Port,
			"reason": r.Reason.String(),
		})
	}
	return details
}
