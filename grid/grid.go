// Package grid owns the geometry shared by every grid-resident component:
// cell counts, cell size, physical box, guard-cell widths and
// periodicity. Field, current and species state are all built on top of
// one grid.Params value.
package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is wrapped by every grid configuration error.
var ErrInvalidGrid = errors.New("grid: invalid configuration")

// GuardCells holds the guard-cell width on the low and high side of one axis.
type GuardCells struct {
	Lo, Hi int
}

// Params describes the 2D grid geometry. Axis 0 is x, axis 1 is y.
type Params struct {
	Nx [2]int        // physical cell counts per axis
	Dx [2]float64    // cell size per axis
	GC [2]GuardCells // guard-cell widths per axis (Lo >= 2 for the deposition stencil)
	Periodic [2]bool // periodic vs open boundary per axis
	Dt       float64
}

// New validates and constructs a grid.Params.
//
// nx0, nx1 >= 2; dx0, dx1 > 0; dt > 0 and dt < min(dx0, dx1) (the Courant
// condition with c=1 in natural units). Guard cells default to (2,1) on
// each axis (2 on the low side, as the deposition stencil in species
// requires) if not supplied via WithGuardCells.
func New(nx0, nx1 int, dx0, dx1, dt float64, periodic [2]bool, opts ...Option) (*Params, error) {
	if nx0 < 2 || nx1 < 2 {
		return nil, fmt.Errorf("%w: nx=(%d,%d) must be >= 2 on each axis", ErrInvalidGrid, nx0, nx1)
	}
	if dx0 <= 0 || dx1 <= 0 {
		return nil, fmt.Errorf("%w: dx=(%g,%g) must be positive", ErrInvalidGrid, dx0, dx1)
	}
	minDx := dx0
	if dx1 < minDx {
		minDx = dx1
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g must be positive", ErrInvalidGrid, dt)
	}
	if dt >= minDx {
		return nil, fmt.Errorf("%w: dt=%g violates the Courant condition (min dx=%g)", ErrInvalidGrid, dt, minDx)
	}

	p := &Params{
		Nx:       [2]int{nx0, nx1},
		Dx:       [2]float64{dx0, dx1},
		GC:       [2]GuardCells{{Lo: 2, Hi: 1}, {Lo: 2, Hi: 1}},
		Periodic: periodic,
		Dt:       dt,
	}
	for _, o := range opts {
		o(p)
	}
	if p.GC[0].Lo < 1 || p.GC[0].Hi < 1 || p.GC[1].Lo < 1 || p.GC[1].Hi < 1 {
		return nil, fmt.Errorf("%w: guard cells must be >= 1 on every side", ErrInvalidGrid)
	}
	return p, nil
}

// Option configures optional grid.Params fields.
type Option func(*Params)

// WithGuardCells overrides the default guard-cell widths.
func WithGuardCells(axis int, lo, hi int) Option {
	return func(p *Params) {
		p.GC[axis] = GuardCells{Lo: lo, Hi: hi}
	}
}

// Box returns the physical extent of the domain (nx*dx per axis).
func (p *Params) Box() [2]float64 {
	return [2]float64{float64(p.Nx[0]) * p.Dx[0], float64(p.Nx[1]) * p.Dx[1]}
}

// Extent returns the full buffer shape including guard cells, per axis.
func (p *Params) Extent() [2]int {
	return [2]int{
		p.GC[0].Lo + p.Nx[0] + p.GC[0].Hi,
		p.GC[1].Lo + p.Nx[1] + p.GC[1].Hi,
	}
}

// Index maps a physical cell (ix,iy), which may range over the guard
// cells too (i.e. from -GC.Lo to Nx+GC.Hi-1), to a flat buffer offset.
func (p *Params) Index(ix, iy int) int {
	x := ix + p.GC[0].Lo
	y := iy + p.GC[1].Lo
	return y*(p.GC[0].Lo+p.Nx[0]+p.GC[0].Hi) + x
}
