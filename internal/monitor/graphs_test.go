package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestSpanOf(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want span
	}{
		{"no data", nil, percentSpan},
		{"cpu readings", []float64{3, 47.5, 99}, percentSpan},
		{"byte rates", []float64{1500, 0, 250000}, span{0, 250000}},
		{"negative", []float64{-5, 20}, span{-5, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spanOf(tt.data))
		})
	}
}

func TestSpanLevel(t *testing.T) {
	assert.Equal(t, 0, percentSpan.level(0, 8))
	assert.Equal(t, 7, percentSpan.level(100, 8))
	assert.Equal(t, 7, percentSpan.level(250, 8), "clamped at the top")
	assert.Equal(t, 0, percentSpan.level(-10, 8), "clamped at the bottom")
	assert.Equal(t, 4, span{7, 7}.level(7, 8), "flat span sits mid-height")
}

func TestCompress(t *testing.T) {
	t.Run("short series untouched", func(t *testing.T) {
		data := []float64{1, 2, 3}
		assert.Equal(t, data, compress(data, 10))
		assert.Nil(t, compress(data, 0))
	})

	t.Run("keeps spikes", func(t *testing.T) {
		data := make([]float64, 120)
		for i := range data {
			data[i] = 5
		}
		data[61] = 97

		out := compress(data, 30)
		require.Len(t, out, 30)
		assert.Contains(t, out, 97.0)
		assert.Equal(t, 5.0, out[0])
	})

	t.Run("uneven buckets cover every point", func(t *testing.T) {
		out := compress([]float64{1, 2, 3, 4, 5, 6, 7}, 3)
		require.Len(t, out, 3)
		assert.Equal(t, 7.0, out[2])
	})
}

func TestRenderRateSparkline(t *testing.T) {
	assert.Empty(t, RenderRateSparkline(nil, 8))
	assert.Empty(t, RenderRateSparkline([]float64{1}, 0))

	out := RenderRateSparkline([]float64{100, 5000, 250000}, 9)
	assert.Len(t, []rune(out), 9)
	assert.True(t, strings.HasSuffix(out, "█"), "largest reading is the tallest block: %q", out)
	assert.True(t, strings.HasPrefix(out, "      ▁"), "short series is right aligned: %q", out)
}

func TestRenderPercentSparkline(t *testing.T) {
	t.Run("short series is right aligned", func(t *testing.T) {
		out := RenderPercentSparkline([]float64{50, 60}, 6, ColorGraph)
		assert.True(t, strings.HasPrefix(out, "    "), "expected four pad cells, got %q", out)
		assert.Equal(t, 6, lipgloss.Width(out))
		assert.Contains(t, out, "\x1b[")
	})

	t.Run("long series is compressed to width", func(t *testing.T) {
		out := RenderPercentSparkline(make([]float64, 50), 10, ColorGraph)
		assert.Equal(t, 10, lipgloss.Width(out))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, RenderPercentSparkline(nil, 10, ColorGraph))
	})
}

func TestRenderPlot(t *testing.T) {
	t.Run("needs two points and room", func(t *testing.T) {
		assert.Empty(t, RenderPlot([]float64{42}, 60, 6, "", asciigraph.Cyan))
		assert.Empty(t, RenderPlot([]float64{1, 2}, 8, 6, "", asciigraph.Cyan))
		assert.Empty(t, RenderPlot([]float64{1, 2}, 60, 1, "", asciigraph.Cyan))
	})

	t.Run("plots with caption", func(t *testing.T) {
		out := RenderPlot([]float64{10, 35, 20, 80, 55}, 60, 6, "CPU %", asciigraph.Cyan)
		require.NotEmpty(t, out)
		assert.Contains(t, out, "CPU %")
		assert.GreaterOrEqual(t, len(strings.Split(out, "\n")), 6)
	})

	t.Run("percent axis pinned to 100", func(t *testing.T) {
		out := RenderPlot([]float64{10, 12, 11}, 60, 5, "", asciigraph.Default)
		assert.Contains(t, out, "100")
	})
}
