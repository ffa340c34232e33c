package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, code := range []string{ErrConfig, ErrProvider, ErrRender, ErrExec, ErrNet, ErrFS} {
		require.NotEmpty(t, code)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true
	}
}

func TestError_Rendering(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(ErrConfig, "Config file not found", ""),
			want: "✗ Config file not found\n",
		},
		{
			name: "message and suggestion",
			err:  New(ErrConfig, "--count must be at least 1", "Use --count 4"),
			want: "✗ --count must be at least 1\n\n  Use --count 4\n",
		},
		{
			name: "cause and suggestion",
			err: WrapWithCode(fs.ErrPermission, ErrFS,
				"Can't read /root", "Try a directory you own"),
			want: "✗ Can't read /root\n\n  permission denied\n\n  Try a directory you own\n",
		},
		{
			name: "cause repeating the message is dropped",
			err: WrapWithCode(errors.New("live.interval must be at least 100ms"), ErrConfig,
				"live.interval must be at least 100ms", "Check the 'live' section"),
			want: "✗ live.interval must be at least 100ms\n\n  Check the 'live' section\n",
		},
		{
			name: "nested structured cause is flattened",
			err: WrapWithCode(
				WrapWithCode(errors.New("cpu times: unavailable"), ErrProvider, "Can't read system info", "Retry"),
				ErrConfig, "Snapshot failed", ""),
			want: "✗ Snapshot failed\n\n  Can't read system info: cpu times: unavailable\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_ChainWorksWithStdlib(t *testing.T) {
	base := fs.ErrNotExist
	wrapped := fmt.Errorf("loading: %w", WrapWithCode(base, ErrConfig, "Config file not found", ""))

	assert.ErrorIs(t, wrapped, fs.ErrNotExist)

	var tkErr *Error
	require.ErrorAs(t, wrapped, &tkErr)
	assert.Equal(t, "Config file not found", tkErr.Message)
	assert.Equal(t, base, tkErr.Unwrap())
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("outer: %w", New(ErrNet, "Port check failed", "")))
	assert.True(t, ok)
	assert.Equal(t, ErrNet, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)

	_, ok = CodeOf(nil)
	assert.False(t, ok)
}

func TestIsCode(t *testing.T) {
	err := WrapWithCode(errors.New("dial tcp: refused"), ErrNet, "Port check failed", "")

	assert.True(t, IsCode(err, ErrNet))
	assert.False(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrNet))
	assert.False(t, IsCode(nil, ErrNet))
}

func TestExitError(t *testing.T) {
	err := NewExitError(3)
	assert.Equal(t, "exit code 3", err.Error())

	var asErr error = err
	code, ok := GetExitCode(asErr)
	assert.True(t, ok)
	assert.Equal(t, 3, code)
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOK   bool
	}{
		{"nil", nil, 0, false},
		{"plain error", errors.New("boom"), 0, false},
		{"structured error", New(ErrExec, "failed", ""), 0, false},
		{"exit error", NewExitError(1), 1, true},
		{"wrapped exit error", fmt.Errorf("ping: %w", NewExitError(2)), 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
