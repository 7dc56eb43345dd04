package game

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/quantum-field/internal/config"
	"github.com/iburimskiy/quantum-field/internal/manifest"
)

func TestHsvToRgb(t *testing.T) {
	cases := []struct {
		h       float64
		r, g, b uint8
	}{
		{0, 255, 0, 0},
		{120, 0, 255, 0},
		{240, 0, 0, 255},
		{360, 255, 0, 0},
		{-120, 0, 0, 255},
	}
	for _, c := range cases {
		r, g, b := hsvToRgb(c.h, 1, 1)
		assert.Equal(t, [3]uint8{c.r, c.g, c.b}, [3]uint8{r, g, b}, "hue %v", c.h)
	}
}

func TestWithOpacity(t *testing.T) {
	c := withOpacity(config.ConnectionColor, 0.2)
	assert.Equal(t, color.NRGBA{R: 0, G: 217, B: 255, A: 51}, c)
	assert.Equal(t, uint8(0), withOpacity(config.ConnectionColor, -1).A)
	assert.Equal(t, uint8(255), withOpacity(config.ConnectionColor, 3).A)
}

func TestGlowLayers(t *testing.T) {
	c := config.Palette[0]
	layers := glowLayers(2, 10, c)
	require.Len(t, layers, glowSteps+1)

	assert.Equal(t, 12.0, layers[0].radius)
	for i := 1; i < len(layers); i++ {
		assert.Less(t, layers[i].radius, layers[i-1].radius)
		assert.GreaterOrEqual(t, layers[i].color.A, layers[i-1].color.A)
	}
	assert.Equal(t, circleLayer{radius: 2, color: c}, layers[len(layers)-1])

	assert.Equal(t, []circleLayer{{radius: 2, color: c}}, glowLayers(2, 0, c))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", formatDuration(0))
	assert.Equal(t, "01:05", formatDuration(65*time.Second))
	assert.Equal(t, "75:00", formatDuration(75*time.Minute))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "ü…", truncate("üüüü", 2))
	assert.Equal(t, "a", truncate("abc", 1))
}

func TestClampSelection(t *testing.T) {
	assert.Zero(t, clampSelection(3, 0))
	assert.Zero(t, clampSelection(-1, 4))
	assert.Equal(t, 3, clampSelection(9, 4))
	assert.Equal(t, 2, clampSelection(2, 4))
}

func TestVisibleRange(t *testing.T) {
	s, e := visibleRange(0, 3, 5)
	assert.Equal(t, [2]int{0, 3}, [2]int{s, e})

	s, e = visibleRange(1, 10, 4)
	assert.Equal(t, [2]int{0, 4}, [2]int{s, e})

	s, e = visibleRange(7, 10, 4)
	assert.Equal(t, [2]int{4, 8}, [2]int{s, e})

	s, e = visibleRange(0, 0, 4)
	assert.Equal(t, [2]int{0, 0}, [2]int{s, e})
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, "Fulfilled", statusBadge(manifest.Fulfilled))
	assert.Equal(t, "Archived", statusBadge(manifest.Archived))
}

func TestProgressColorEnds(t *testing.T) {
	assert.NotEqual(t, progressColor(0, 255), progressColor(100, 255))
	assert.Equal(t, progressColor(100, 255), progressColor(150, 255))
}
