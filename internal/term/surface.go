package term

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/quantum-field/internal/field"
)

const (
	lineRune = '·'
	dotRune  = '•'
	bigRune  = '●'

	// Cells are coarse; thin connection lines need extra weight to show.
	lineGain = 3.0
	// Particles at least this large draw as bigRune.
	bigRadius = 2.5
)

// Surface draws a field onto a tcell screen. World coordinates are divided
// by the cell size, so the field keeps its pixel-scale constants.
type Surface struct {
	screen     tcell.Screen
	cellW      float64
	cellH      float64
	rows       int
	background color.NRGBA
}

// NewSurface maps world units onto screen cells of cellW x cellH. Drawing is
// limited to the top rows of the screen.
func NewSurface(screen tcell.Screen, cellW, cellH float64, rows int, background color.NRGBA) *Surface {
	return &Surface{
		screen:     screen,
		cellW:      cellW,
		cellH:      cellH,
		rows:       rows,
		background: background,
	}
}

func (s *Surface) setRows(rows int) { s.rows = rows }

func (s *Surface) Clear() {
	s.screen.SetStyle(tcell.StyleDefault.Background(rgb(s.background)))
	s.screen.Clear()
}

func (s *Surface) StrokeLine(x0, y0, x1, y1 float64, st field.Stroke) {
	style := s.style(blend(st.Color, st.Opacity*lineGain, s.background))
	cx0, cy0 := s.cell(x0, y0)
	cx1, cy1 := s.cell(x1, y1)
	bresenham(cx0, cy0, cx1, cy1, func(x, y int) {
		s.put(x, y, lineRune, style)
	})
}

func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA, _ float64) {
	ch := dotRune
	if r >= bigRadius {
		ch = bigRune
	}
	cx, cy := s.cell(x, y)
	s.put(cx, cy, ch, s.style(blend(c, 1, s.background)))
}

func (s *Surface) cell(x, y float64) (int, int) {
	return int(math.Floor(x / s.cellW)), int(math.Floor(y / s.cellH))
}

func (s *Surface) put(x, y int, ch rune, style tcell.Style) {
	if y < 0 || y >= s.rows {
		return
	}
	s.screen.SetContent(x, y, ch, nil, style)
}

func (s *Surface) style(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg).Background(rgb(s.background))
}

func rgb(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// blend composites c at its alpha times opacity over an opaque background,
// since terminal cells have no transparency.
func blend(c color.NRGBA, opacity float64, bg color.NRGBA) tcell.Color {
	a := math.Max(0, math.Min(1, float64(c.A)/255*opacity))
	mix := func(fg, bg uint8) int32 {
		return int32(math.Round(float64(bg) + (float64(fg)-float64(bg))*a))
	}
	return tcell.NewRGBColor(mix(c.R, bg.R), mix(c.G, bg.G), mix(c.B, bg.B))
}

// bresenham visits every cell on the line from (x0, y0) to (x1, y1),
// endpoints included.
func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
