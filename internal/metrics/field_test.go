package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
)

func TestField(t *testing.T) {
	known := Known(42.5)
	assert.True(t, known.OK())
	assert.Equal(t, 42.5, known.Or(0))
	assert.Equal(t, "42.5", known.String())
	assert.Equal(t, "42.5%", known.Format(func(v float64) string { return fmt.Sprintf("%.1f%%", v) }))

	denied := Unknown[float64](os.ErrPermission)
	assert.False(t, denied.OK())
	assert.True(t, denied.Denied())
	assert.Equal(t, -1.0, denied.Or(-1))
	assert.Equal(t, NA, denied.String())
	assert.Equal(t, NA, denied.Format(func(v float64) string { return "never" }))

	assert.ErrorIs(t, Unknown[int](nil).Err, ErrUnavailable)

	assert.True(t, FieldOf("bash", nil).OK())
	boom := errors.New("boom")
	assert.Same(t, boom, FieldOf("", boom).Err, "unmatched errors pass through")
}

func TestClassify(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", fmt.Errorf("open /proc/1/io: %w", os.ErrPermission), ErrPermissionDenied},
		{"eacces", syscall.EACCES, ErrPermissionDenied},
		{"eperm", syscall.EPERM, ErrPermissionDenied},
		{"process gone", process.ErrorProcessNotRunning, ErrNotRunning},
		{"esrch", syscall.ESRCH, ErrNotRunning},
		{"not supported", errors.New("not implemented yet"), ErrUnavailable},
		{"already classified", ErrNoBaseline, ErrNoBaseline},
		{"other", boom, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err, "original error stays in the chain")
		})
	}

	assert.NoError(t, Classify(nil))
	assert.True(t, IsPermissionDenied(syscall.EACCES))
	assert.False(t, IsPermissionDenied(nil))
	assert.False(t, IsPermissionDenied(boom))
}

func TestField_MarshalJSON(t *testing.T) {
	known, err := json.Marshal(Known(0.0))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"value": 0}`, string(known), "zero values are kept")

	denied, err := json.Marshal(Unknown[float64](os.ErrPermission))
	assert.NoError(t, err)
	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(denied, &decoded))
	assert.NotContains(t, decoded, "value")
	assert.Contains(t, decoded["error"], ErrPermissionDenied.Error())

	row, err := json.Marshal(struct {
		Name Field[string] `json:"name"`
	}{Name: Known("sshd")})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"name": {"value": "sshd"}}`, string(row))
}
