// Package movingwindow shifts the field, current and species state left
// by one cell along axis 0 whenever the simulation has advanced far
// enough for the simulated box to have "moved" relative to the lab
// frame, per spec.md §4.5.
package movingwindow

import (
	"github.com/nullplasma/pic2d/current"
	"github.com/nullplasma/pic2d/fields"
	"github.com/nullplasma/pic2d/grid"
	"github.com/nullplasma/pic2d/species"
)

// Window tracks the moving-window trigger state and performs the
// cell-shift advection when due.
type Window struct {
	g      *grid.Params
	nMove  int
	active bool
}

// New enables a moving window over g. The window is inert until Maybe is
// called with an iteration count past the trigger.
func New(g *grid.Params) *Window {
	return &Window{g: g, active: true}
}

// NMove returns how many shifts have occurred so far.
func (w *Window) NMove() int { return w.nMove }

// Maybe shifts every buffer left by exactly one cell if
// iter*dt > dx0*nMove + 1, per spec.md §9 (preserve the "+1" offset
// exactly: it is load-bearing for scenario 5's reproduction, not an
// off-by-one to clean up).
func (w *Window) Maybe(iter int, dt float64, emf *fields.EMF, cur *current.Buffer, specs []*species.Species) {
	if !w.active {
		return
	}
	t := float64(iter) * dt
	if t <= w.g.Dx[0]*float64(w.nMove)+1 {
		return
	}
	emf.ShiftWindow()
	w.shiftCurrent(cur)
	for _, s := range specs {
		s.ShiftWindow()
	}
	w.nMove++
}

func (w *Window) shiftCurrent(c *current.Buffer) {
	wdt, h := c.Dims()
	for _, comp := range [][]float64{c.Jx, c.Jy, c.Jz} {
		shiftRowsLeft(comp, wdt, h)
	}
}

// shiftRowsLeft drops column 0 of every row and zeros the new rightmost
// column, done as an in-place slice rotation (O(grid), no reallocation,
// per spec.md §9).
func shiftRowsLeft(comp []float64, w, h int) {
	for y := 0; y < h; y++ {
		base := y * w
		copy(comp[base:base+w-1], comp[base+1:base+w])
		comp[base+w-1] = 0
	}
}
