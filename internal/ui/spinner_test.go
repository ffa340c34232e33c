package ui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a strings.Builder safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_AnimatesUntilFinish(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out, "Reading processes")

	s.Start()
	s.Start()
	time.Sleep(3 * spinnerKind.FPS)
	s.Finish(nil)

	text := out.String()
	assert.Contains(t, text, "Reading processes...")
	assert.GreaterOrEqual(t, strings.Count(text, "\r"), 2, "frames are redrawn in place")
	assert.Contains(t, text, SymbolSuccess)
	assert.Contains(t, text, " Reading processes ")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestSpinner_FinishTwicePrintsOnce(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out, "Pinging")
	s.Start()
	s.Finish(errors.New("no route"))
	s.Finish(nil)

	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), SymbolFail)
	assert.NotContains(t, out.String(), SymbolSuccess)
}

func TestSpinner_FinishWithoutStart(t *testing.T) {
	out := &syncBuffer{}
	NewSpinner(out, "Idle").Finish(nil)
	assert.Empty(t, out.String())
}

func TestWithSpinner(t *testing.T) {
	t.Run("quiet runs fn without output", func(t *testing.T) {
		out := &syncBuffer{}
		called := false
		err := WithSpinner(out, "Listing", false, func() error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
		assert.Empty(t, out.String())
	})

	t.Run("error is returned and marked", func(t *testing.T) {
		out := &syncBuffer{}
		boom := errors.New("boom")
		err := WithSpinner(out, "Listing", true, func() error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, out.String(), SymbolFail)
	})
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0.05s", formatElapsed(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatElapsed(1200*time.Millisecond))
}
