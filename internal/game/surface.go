package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/quantum-field/internal/field"
)

const glowSteps = 4

// canvasSurface draws the field onto an offscreen image that persists
// between frames.
type canvasSurface struct {
	img        *ebiten.Image
	background color.NRGBA
}

func newCanvasSurface(width, height int, background color.NRGBA) *canvasSurface {
	return &canvasSurface{
		img:        ebiten.NewImage(max(width, 1), max(height, 1)),
		background: background,
	}
}

func (s *canvasSurface) Clear() {
	s.img.Fill(s.background)
}

func (s *canvasSurface) StrokeLine(x0, y0, x1, y1 float64, st field.Stroke) {
	vector.StrokeLine(s.img, float32(x0), float32(y0), float32(x1), float32(y1),
		float32(st.Width), withOpacity(st.Color, st.Opacity), true)
}

func (s *canvasSurface) FillCircle(x, y, r float64, c color.NRGBA, glow float64) {
	for _, l := range glowLayers(r, glow, c) {
		vector.DrawFilledCircle(s.img, float32(x), float32(y), float32(l.radius), l.color, true)
	}
}

func (s *canvasSurface) dispose() {
	s.img.Deallocate()
}

type circleLayer struct {
	radius float64
	color  color.NRGBA
}

// glowLayers approximates a blurred halo with translucent rings spreading
// glow pixels past the core, outermost first. The last layer is the core.
func glowLayers(r, glow float64, c color.NRGBA) []circleLayer {
	layers := make([]circleLayer, 0, glowSteps+1)
	if glow > 0 {
		for i := glowSteps; i >= 1; i-- {
			t := float64(i) / glowSteps
			layers = append(layers, circleLayer{
				radius: r + glow*t,
				color:  withOpacity(c, 0.35*(1-t)+0.05),
			})
		}
	}
	return append(layers, circleLayer{radius: r, color: c})
}
