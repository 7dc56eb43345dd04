package field

import (
	"image/color"
	"math"
	"sync/atomic"

	"github.com/iburimskiy/quantum-field/internal/config"
)

// Options configures a Field. Count is fixed for the lifetime of the field.
type Options struct {
	Count               int
	Width, Height       float64
	CursorRadius        float64
	ConnectionThreshold float64
	ConnectionOpacity   float64
	ConnectionWidth     float64
	ConnectionColor     color.NRGBA
	GlowRadius          float64
	Palette             []color.NRGBA
	MaxSpeed            float64
	MinSize             float64
	SizeRange           float64
	// UseGrid finds connections through a bucket grid instead of testing
	// every pair. The set of drawn connections is the same.
	UseGrid bool
}

// DefaultOptions returns the stock field on a width x height surface.
func DefaultOptions(width, height float64) Options {
	return Options{
		Count:               config.ParticleCount,
		Width:               width,
		Height:              height,
		CursorRadius:        config.CursorRadius,
		ConnectionThreshold: config.ConnectionThreshold,
		ConnectionOpacity:   config.ConnectionOpacity,
		ConnectionWidth:     config.ConnectionWidth,
		ConnectionColor:     config.ConnectionColor,
		GlowRadius:          config.GlowRadius,
		Palette:             config.Palette,
		MaxSpeed:            config.MaxSpeed,
		MinSize:             config.MinParticleSize,
		SizeRange:           config.ParticleSizeRange,
	}
}

// Size is the drawing surface extent.
type Size struct {
	Width, Height float64
}

// FrameStats summarizes one Step.
type FrameStats struct {
	Particles   int
	Connections int
}

type point struct{ x, y float64 }

// Field owns the particles and the shared cursor and surface state.
//
// Step must be called from a single goroutine. The cursor, size and the two
// tunables may be written from other goroutines; Step reads one snapshot of
// each per frame.
type Field struct {
	opts      Options
	particles []Particle
	grid      *grid

	pointer      atomic.Pointer[point]
	size         atomic.Pointer[Size]
	cursorRadius atomic.Uint64
	threshold    atomic.Uint64
}

// New populates a field with opts.Count particles drawn from rnd.
func New(opts Options, rnd Random) *Field {
	if opts.Count < 0 {
		opts.Count = 0
	}
	if len(opts.Palette) == 0 {
		opts.Palette = config.Palette
	}

	f := &Field{opts: opts}
	f.Resize(opts.Width, opts.Height)
	f.SetCursorRadius(opts.CursorRadius)
	f.SetConnectionThreshold(opts.ConnectionThreshold)
	if opts.UseGrid {
		f.grid = newGrid()
	}

	size := f.Size()
	f.particles = make([]Particle, opts.Count)
	for i := range f.particles {
		f.particles[i] = Particle{
			X:      rnd.Float64() * size.Width,
			Y:      rnd.Float64() * size.Height,
			Radius: rnd.Float64()*opts.SizeRange + opts.MinSize,
			VX:     rnd.Float64()*2*opts.MaxSpeed - opts.MaxSpeed,
			VY:     rnd.Float64()*2*opts.MaxSpeed - opts.MaxSpeed,
			Color:  opts.Palette[rnd.Intn(len(opts.Palette))],
		}
	}
	return f
}

// Step renders one frame: clears s, draws the connections, then advances and
// draws every particle.
func (f *Field) Step(s Surface) FrameStats {
	cursor := f.Cursor()
	size := f.Size()
	threshold := f.ConnectionThreshold()

	s.Clear()
	stats := FrameStats{
		Particles:   len(f.particles),
		Connections: f.connect(s, threshold),
	}

	for i := range f.particles {
		p := &f.particles[i]
		p.Step(cursor, size.Width, size.Height)
		p.Draw(s, f.opts.GlowRadius)
	}
	return stats
}

func (f *Field) connect(s Surface, threshold float64) int {
	if !(threshold > 0) {
		return 0
	}

	n := 0
	visit := func(i, j int) {
		a, b := &f.particles[i], &f.particles[j]
		dx := a.X - b.X
		dy := a.Y - b.Y
		distance := math.Sqrt(dx*dx + dy*dy)
		if distance < threshold {
			s.StrokeLine(a.X, a.Y, b.X, b.Y, Stroke{
				Color:   f.opts.ConnectionColor,
				Opacity: ConnectionOpacity(distance, threshold, f.opts.ConnectionOpacity),
				Width:   f.opts.ConnectionWidth,
			})
			n++
		}
	}

	if f.grid != nil {
		f.grid.rebuild(f.particles, threshold)
		f.grid.pairs(f.particles, visit)
		return n
	}
	for i := 0; i < len(f.particles); i++ {
		for j := i + 1; j < len(f.particles); j++ {
			visit(i, j)
		}
	}
	return n
}

// ConnectionOpacity is the line opacity for two particles distance apart:
// peak at distance 0, falling linearly to 0 at threshold.
func ConnectionOpacity(distance, threshold, peak float64) float64 {
	if !(distance < threshold) || threshold <= 0 {
		return 0
	}
	return peak * (1 - distance/threshold)
}

// Resize changes the surface bounds. Particles keep their positions; any
// left outside turn back on their next step. Negative or NaN extents are
// treated as zero.
func (f *Field) Resize(width, height float64) {
	f.size.Store(&Size{Width: nonNegative(width), Height: nonNegative(height)})
}

func (f *Field) Size() Size {
	return *f.size.Load()
}

// SetCursor places the cursor, activating it on first use.
func (f *Field) SetCursor(x, y float64) {
	f.pointer.Store(&point{x, y})
}

// ClearCursor deactivates the cursor.
func (f *Field) ClearCursor() {
	f.pointer.Store(nil)
}

func (f *Field) SetCursorRadius(r float64) {
	f.cursorRadius.Store(math.Float64bits(nonNegative(r)))
}

func (f *Field) SetConnectionThreshold(t float64) {
	f.threshold.Store(math.Float64bits(nonNegative(t)))
}

func (f *Field) ConnectionThreshold() float64 {
	return math.Float64frombits(f.threshold.Load())
}

// Cursor returns a snapshot of the cursor state.
func (f *Field) Cursor() Cursor {
	c := Cursor{Radius: math.Float64frombits(f.cursorRadius.Load())}
	if p := f.pointer.Load(); p != nil {
		c.X, c.Y, c.Active = p.x, p.y, true
	}
	return c
}

// Particles returns a copy of the current particle state.
func (f *Field) Particles() []Particle {
	return append([]Particle(nil), f.particles...)
}

func (f *Field) Len() int { return len(f.particles) }

func nonNegative(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return v
}
