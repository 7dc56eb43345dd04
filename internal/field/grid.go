package field

import "math"

type cellKey struct{ cx, cy int }

// grid buckets particle indices into square cells with side equal to the
// connection threshold, so only the 3x3 neighbourhood of a cell can hold
// particles close enough to connect. It is rebuilt every frame.
type grid struct {
	size  float64
	cells map[cellKey][]int
}

func newGrid() *grid {
	return &grid{cells: make(map[cellKey][]int)}
}

func (g *grid) key(x, y float64) cellKey {
	return cellKey{int(math.Floor(x / g.size)), int(math.Floor(y / g.size))}
}

func (g *grid) rebuild(ps []Particle, size float64) {
	g.size = size
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
	for i := range ps {
		k := g.key(ps[i].X, ps[i].Y)
		g.cells[k] = append(g.cells[k], i)
	}
}

// pairs calls visit(i, j) with i < j for every pair in neighbouring cells.
// Each candidate pair is reported once.
func (g *grid) pairs(ps []Particle, visit func(i, j int)) {
	for i := range ps {
		k := g.key(ps[i].X, ps[i].Y)
		for ox := -1; ox <= 1; ox++ {
			for oy := -1; oy <= 1; oy++ {
				for _, j := range g.cells[cellKey{k.cx + ox, k.cy + oy}] {
					if j > i {
						visit(i, j)
					}
				}
			}
		}
	}
}
