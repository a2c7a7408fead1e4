// Package spatial provides allocation-free helper structures for the
// simulation: a uniform grid for broad-phase queries, a bounded MPSC
// command queue and a ranked skip list for leaderboards.
//
// All structures store integer ids, never pointers, so callers can keep
// their own slabs and resolve ids with a bounds check.
package spatial

import "math"

// Grid buckets ids into fixed-size cells. Rebuild it every tick with
// Reset and Insert, then Query for candidates.
//
// Cells are stored row-major (cells[row*cols+col]). Positions outside the
// bounds clamp to the border cells, so entities spawning just off-screen
// are still found.
type Grid struct {
	cellSize float64
	inv      float64
	cols     int
	rows     int
	cells    [][]uint32
	scratch  []uint32
}

// NewGrid creates a grid over width x height. cellSize should be at least
// the largest query radius. expected sizes the per-cell buckets.
func NewGrid(width, height, cellSize float64, expected int) *Grid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := max(1, int(math.Ceil(width/cellSize)))
	rows := max(1, int(math.Ceil(height/cellSize)))

	per := max(4, expected/(cols*rows))
	cells := make([][]uint32, cols*rows)
	for i := range cells {
		cells[i] = make([]uint32, 0, per)
	}
	return &Grid{
		cellSize: cellSize,
		inv:      1 / cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
		scratch:  make([]uint32, 0, 64),
	}
}

// Reset empties every cell, keeping capacity.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert files id under the cell containing (x, y).
func (g *Grid) Insert(id uint32, x, y float64) {
	col, row := g.coords(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], id)
}

// Query returns ids in every cell overlapping the square around (x, y)
// with half-size r. Candidates may lie outside r; callers do the narrow
// phase. The slice is reused by the next call.
func (g *Grid) Query(x, y, r float64) []uint32 {
	g.scratch = g.scratch[:0]
	c0, r0 := g.coords(x-r, y-r)
	c1, r1 := g.coords(x+r, y+r)
	for row := r0; row <= r1; row++ {
		base := row * g.cols
		for col := c0; col <= c1; col++ {
			g.scratch = append(g.scratch, g.cells[base+col]...)
		}
	}
	return g.scratch
}

// Len returns the number of ids currently filed.
func (g *Grid) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

// Dimensions returns the grid size in cells.
func (g *Grid) Dimensions() (cols, rows int) {
	return g.cols, g.rows
}

func (g *Grid) coords(x, y float64) (col, row int) {
	col = int(math.Floor(x * g.inv))
	row = int(math.Floor(y * g.inv))
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
