package field

import "math"

// Cursor is the pointer state a particle reacts to. An inactive cursor has
// not been placed yet and is treated as infinitely far away.
type Cursor struct {
	X, Y   float64
	Radius float64
	Active bool
}

// Repulsion returns the positional nudge the cursor applies to a point at
// (x, y). The magnitude falls off linearly from strength at the cursor to
// zero at Radius; points at or beyond Radius are not affected.
func (c Cursor) Repulsion(x, y, strength float64) (float64, float64) {
	if !c.Active {
		return 0, 0
	}
	dx := c.X - x
	dy := c.Y - y
	distance := math.Sqrt(dx*dx + dy*dy)
	if !(distance < c.Radius) {
		return 0, 0
	}
	force := (c.Radius - distance) / c.Radius
	// atan2(0, 0) is 0, so a point sitting on the cursor is pushed along -x.
	angle := math.Atan2(dy, dx)
	return -math.Cos(angle) * force * strength, -math.Sin(angle) * force * strength
}
