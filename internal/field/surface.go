package field

import "image/color"

// Stroke describes how a connection line is painted. Opacity multiplies the
// color's own alpha.
type Stroke struct {
	Color   color.NRGBA
	Opacity float64
	Width   float64
}

// Surface is the 2D drawing target a Field renders into once per frame.
type Surface interface {
	Clear()
	StrokeLine(x0, y0, x1, y1 float64, st Stroke)
	// FillCircle draws a filled circle with a glow of the same color
	// extending glow units beyond r.
	FillCircle(x, y, r float64, c color.NRGBA, glow float64)
}

// Line is a recorded StrokeLine call.
type Line struct {
	X0, Y0, X1, Y1 float64
	Stroke
}

// Circle is a recorded FillCircle call.
type Circle struct {
	X, Y, R float64
	Color   color.NRGBA
	Glow    float64
}

// Recorder is a Surface that keeps the draw calls of the current frame.
// Clear starts a new frame.
type Recorder struct {
	Lines   []Line
	Circles []Circle
	Clears  int
}

func (r *Recorder) Clear() {
	r.Lines = r.Lines[:0]
	r.Circles = r.Circles[:0]
	r.Clears++
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1 float64, st Stroke) {
	r.Lines = append(r.Lines, Line{X0: x0, Y0: y0, X1: x1, Y1: y1, Stroke: st})
}

func (r *Recorder) FillCircle(x, y, radius float64, c color.NRGBA, glow float64) {
	r.Circles = append(r.Circles, Circle{X: x, Y: y, R: radius, Color: c, Glow: glow})
}

// Discard is a Surface that draws nothing.
var Discard Surface = discard{}

type discard struct{}

func (discard) Clear()                                               {}
func (discard) StrokeLine(_, _, _, _ float64, _ Stroke)               {}
func (discard) FillCircle(_, _, _ float64, _ color.NRGBA, _ float64) {}
