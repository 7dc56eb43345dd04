package field

import (
	"image/color"

	"github.com/iburimskiy/quantum-field/internal/config"
)

// RepulsionStrength is the displacement, in units per frame, a particle
// receives when it sits on the cursor.
const RepulsionStrength = config.RepulsionStrength

// Particle is a single moving point. Radius and Color never change after
// creation.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
	Color  color.NRGBA
}

// Step advances the particle by one frame inside a width x height surface:
// cursor repulsion is applied to the position directly, then the velocity,
// then a velocity component flips when the new position lies outside the
// surface and the particle is still heading away from it. The position is
// not clamped, so a particle may overshoot an edge for a frame before it
// turns around; one left outside by a resize or a cursor push keeps heading
// back in instead of flipping every frame.
func (p *Particle) Step(c Cursor, width, height float64) {
	dx, dy := c.Repulsion(p.X, p.Y, RepulsionStrength)
	p.X += dx
	p.Y += dy

	p.X += p.VX
	p.Y += p.VY

	if (p.X < 0 && p.VX < 0) || (p.X > width && p.VX > 0) {
		p.VX = -p.VX
	}
	if (p.Y < 0 && p.VY < 0) || (p.Y > height && p.VY > 0) {
		p.VY = -p.VY
	}
}

func (p *Particle) Draw(s Surface, glow float64) {
	s.FillCircle(p.X, p.Y, p.Radius, p.Color, glow)
}
