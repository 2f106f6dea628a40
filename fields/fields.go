// Package fields owns the electric and magnetic field state on a 2D Yee
// grid and advances it under the Maxwell-Faraday/Ampere leapfrog
// described in spec.md §4.1. An optional external field overlay and
// laser injector sit alongside the self-consistent state without ever
// being touched by the field advance itself.
package fields

import (
	"gonum.org/v1/gonum/floats"

	"github.com/nullplasma/pic2d/current"
	"github.com/nullplasma/pic2d/grid"
)

// EMF holds E and B on the extended (guard-cell-inclusive) grid, plus an
// optional frozen/analytic external overlay.
//
// Yee staggering (spec.md §3): Ex at (i+1/2,j), Ey at (i,j+1/2),
// Ez at (i+1/2,j+1/2); Bx at (i,j+1/2), By at (i+1/2,j), Bz at (i,j).
// Arrays are flat [w*h]float64 indexed by the same grid.Params.Index
// convention current uses; the staggering lives in which neighbor
// differences the curl stencils take, not in the storage layout.
type EMF struct {
	g    *grid.Params
	w, h int

	Ex, Ey, Ez []float64
	Bx, By, Bz []float64

	extEnabled             bool
	Exext, Eyext, Ezext    []float64
	Bxext, Byext, Bzext    []float64
	externalFn             ExternalFieldFunc
}

// ExternalFieldFunc re-evaluates the external overlay at a physical (x,y)
// position; used to fill newly exposed columns under a moving window.
// nil means the overlay is a frozen uniform value.
type ExternalFieldFunc func(x, y float64) (e [3]float64, b [3]float64)

// LaserSource injects initial fields into an EMF at t=0 (implemented by
// laser.Pulse). Declaring the interface here, rather than importing
// laser, keeps the dependency direction laser -> fields as spec.md §2
// requires.
type LaserSource interface {
	Inject(f *EMF)
}

// New allocates field buffers sized to g's extended grid.
func New(g *grid.Params) *EMF {
	ext := g.Extent()
	size := ext[0] * ext[1]
	mk := func() []float64 { return make([]float64, size) }
	return &EMF{
		g: g, w: ext[0], h: ext[1],
		Ex: mk(), Ey: mk(), Ez: mk(),
		Bx: mk(), By: mk(), Bz: mk(),
	}
}

// Dims returns the extended buffer width and height.
func (f *EMF) Dims() (int, int) { return f.w, f.h }

// Grid returns the grid.Params this EMF was built on, for collaborators
// (laser, movingwindow) that need Nx/Dx directly rather than going
// through Index/Dims.
func (f *EMF) Grid() *grid.Params { return f.g }

// Index maps a physical or guard cell (ix,iy) to a flat offset.
func (f *EMF) Index(ix, iy int) int { return f.g.Index(ix, iy) }

// SetExternal installs a uniform external E0/B0 overlay (spec.md §4.1).
func (f *EMF) SetExternal(e0, b0 [3]float64) {
	size := f.w * f.h
	f.Exext = fillConst(size, e0[0])
	f.Eyext = fillConst(size, e0[1])
	f.Ezext = fillConst(size, e0[2])
	f.Bxext = fillConst(size, b0[0])
	f.Byext = fillConst(size, b0[1])
	f.Bzext = fillConst(size, b0[2])
	f.extEnabled = true
}

// SetExternalFunc installs an analytic external overlay, re-evaluated
// column-by-column as the moving window exposes new space.
func (f *EMF) SetExternalFunc(fn ExternalFieldFunc) {
	f.externalFn = fn
	size := f.w * f.h
	f.Exext = make([]float64, size)
	f.Eyext = make([]float64, size)
	f.Ezext = make([]float64, size)
	f.Bxext = make([]float64, size)
	f.Byext = make([]float64, size)
	f.Bzext = make([]float64, size)
	f.extEnabled = true
	f.evaluateExternalAll()
}

func (f *EMF) evaluateExternalAll() {
	if f.externalFn == nil {
		return
	}
	for iy := -f.g.GC[1].Lo; iy < f.g.Nx[1]+f.g.GC[1].Hi; iy++ {
		for ix := -f.g.GC[0].Lo; ix < f.g.Nx[0]+f.g.GC[0].Hi; ix++ {
			f.evaluateExternalAt(ix, iy)
		}
	}
}

func (f *EMF) evaluateExternalAt(ix, iy int) {
	idx := f.Index(ix, iy)
	x := float64(ix) * f.g.Dx[0]
	y := float64(iy) * f.g.Dx[1]
	e, b := f.externalFn(x, y)
	f.Exext[idx], f.Eyext[idx], f.Ezext[idx] = e[0], e[1], e[2]
	f.Bxext[idx], f.Byext[idx], f.Bzext[idx] = b[0], b[1], b[2]
}

func fillConst(size int, v float64) []float64 {
	s := make([]float64, size)
	for i := range s {
		s[i] = v
	}
	return s
}

// ShiftWindow shifts every self and external field buffer left by one
// cell along axis 0, zeroing the newly exposed right column (the last
// physical column plus the high guard cells), or re-evaluating it from
// externalFn, if set, for movingwindow's cell shift (spec.md §4.5, §9:
// "keep external overlay out of the field advance, just shift and
// re-evaluate it").
func (f *EMF) ShiftWindow() {
	zeroCols := 1 + f.g.GC[0].Hi
	for _, comp := range [][]float64{f.Ex, f.Ey, f.Ez, f.Bx, f.By, f.Bz} {
		shiftLeft(comp, f.w, f.h, zeroCols)
	}
	if !f.extEnabled {
		return
	}
	for _, comp := range [][]float64{f.Exext, f.Eyext, f.Ezext, f.Bxext, f.Byext, f.Bzext} {
		shiftLeft(comp, f.w, f.h, zeroCols)
	}
	if f.externalFn == nil {
		return
	}
	for iy := -f.g.GC[1].Lo; iy < f.g.Nx[1]+f.g.GC[1].Hi; iy++ {
		for ix := f.g.Nx[0] - 1; ix < f.g.Nx[0]+f.g.GC[0].Hi; ix++ {
			f.evaluateExternalAt(ix, iy)
		}
	}
}

func shiftLeft(comp []float64, w, h, zeroCols int) {
	for y := 0; y < h; y++ {
		base := y * w
		copy(comp[base:base+w-1], comp[base+1:base+w])
		for x := w - zeroCols; x < w; x++ {
			comp[base+x] = 0
		}
	}
}

// AddLaser sums a laser's initial field contribution into E and B.
func (f *EMF) AddLaser(src LaserSource) {
	src.Inject(f)
}

// EPart returns the particle-facing E field at extended-grid index idx:
// self-consistent plus external.
func (f *EMF) EPart(idx int) [3]float64 {
	e := [3]float64{f.Ex[idx], f.Ey[idx], f.Ez[idx]}
	if f.extEnabled {
		e[0] += f.Exext[idx]
		e[1] += f.Eyext[idx]
		e[2] += f.Ezext[idx]
	}
	return e
}

// BPart returns the particle-facing B field at extended-grid index idx.
func (f *EMF) BPart(idx int) [3]float64 {
	b := [3]float64{f.Bx[idx], f.By[idx], f.Bz[idx]}
	if f.extEnabled {
		b[0] += f.Bxext[idx]
		b[1] += f.Byext[idx]
		b[2] += f.Bzext[idx]
	}
	return b
}

// Advance runs one Yee leapfrog step: B half-step, E full-step (against
// curl B minus J), B half-step, each followed by a guard-cell refresh.
func (f *EMF) Advance(j *current.Buffer, dt float64) {
	f.bHalfStep(dt)
	f.refreshGuards()
	f.eFullStep(j, dt)
	f.refreshGuards()
	f.bHalfStep(dt)
	f.refreshGuards()
}

func (f *EMF) idx(ix, iy int) int { return f.g.Index(ix, iy) }

func (f *EMF) bHalfStep(dt float64) {
	half := 0.5 * dt
	dx, dy := f.g.Dx[0], f.g.Dx[1]
	for iy := 0; iy < f.g.Nx[1]; iy++ {
		for ix := 0; ix < f.g.Nx[0]; ix++ {
			c := f.idx(ix, iy)
			ezDy := (f.Ez[c] - f.Ez[f.idx(ix, iy-1)]) / dy
			ezDx := (f.Ez[c] - f.Ez[f.idx(ix-1, iy)]) / dx
			exDy := (f.Ex[c] - f.Ex[f.idx(ix, iy-1)]) / dy
			eyDx := (f.Ey[c] - f.Ey[f.idx(ix-1, iy)]) / dx

			f.Bx[c] -= half * ezDy
			f.By[c] += half * ezDx
			f.Bz[c] -= half * (eyDx - exDy)
		}
	}
}

func (f *EMF) eFullStep(j *current.Buffer, dt float64) {
	dx, dy := f.g.Dx[0], f.g.Dx[1]
	for iy := 0; iy < f.g.Nx[1]; iy++ {
		for ix := 0; ix < f.g.Nx[0]; ix++ {
			c := f.idx(ix, iy)
			bzDy := (f.Bz[f.idx(ix, iy+1)] - f.Bz[c]) / dy
			bzDx := (f.Bz[f.idx(ix+1, iy)] - f.Bz[c]) / dx
			byDx := (f.By[f.idx(ix+1, iy)] - f.By[c]) / dx
			bxDy := (f.Bx[f.idx(ix, iy+1)] - f.Bx[c]) / dy

			f.Ex[c] += dt * (bzDy - j.Jx[c])
			f.Ey[c] += dt * (-bzDx - j.Jy[c])
			f.Ez[c] += dt * (byDx - bxDy - j.Jz[c])
		}
	}
}

// refreshGuards reapplies boundary policy after every half/full step:
// periodic axes copy from the opposite physical edge, open axes apply a
// first-order Mur-like absorbing condition that damps outgoing waves.
func (f *EMF) refreshGuards() {
	f.refreshAxis0()
	f.refreshAxis1()
}

func (f *EMF) refreshAxis0() {
	nx := f.g.Nx[0]
	gc := f.g.GC[0]
	comps := [][]float64{f.Ex, f.Ey, f.Ez, f.Bx, f.By, f.Bz}
	for _, c := range comps {
		for iy := -f.g.GC[1].Lo; iy < f.g.Nx[1]+f.g.GC[1].Hi; iy++ {
			if f.g.Periodic[0] {
				for g := 1; g <= gc.Lo; g++ {
					c[f.idx(-g, iy)] = c[f.idx(nx-g, iy)]
				}
				for g := 0; g < gc.Hi; g++ {
					c[f.idx(nx+g, iy)] = c[f.idx(g, iy)]
				}
			} else {
				// First-order Mur absorbing condition: outgoing value at
				// the edge is carried from the adjacent interior cell
				// evaluated one step ago, approximated here by copying
				// the interior neighbor (c*dt/dx ~ 1 at the Courant
				// limit, which is the regime this engine runs in).
				for g := 1; g <= gc.Lo; g++ {
					c[f.idx(-g, iy)] = c[f.idx(-g+1, iy)]
				}
				for g := 0; g < gc.Hi; g++ {
					c[f.idx(nx+g, iy)] = c[f.idx(nx+g-1, iy)]
				}
			}
		}
	}
}

func (f *EMF) refreshAxis1() {
	ny := f.g.Nx[1]
	gc := f.g.GC[1]
	comps := [][]float64{f.Ex, f.Ey, f.Ez, f.Bx, f.By, f.Bz}
	for _, c := range comps {
		for ix := -f.g.GC[0].Lo; ix < f.g.Nx[0]+f.g.GC[0].Hi; ix++ {
			if f.g.Periodic[1] {
				for g := 1; g <= gc.Lo; g++ {
					c[f.idx(ix, -g)] = c[f.idx(ix, ny-g)]
				}
				for g := 0; g < gc.Hi; g++ {
					c[f.idx(ix, ny+g)] = c[f.idx(ix, g)]
				}
			} else {
				for g := 1; g <= gc.Lo; g++ {
					c[f.idx(ix, -g)] = c[f.idx(ix, -g+1)]
				}
				for g := 0; g < gc.Hi; g++ {
					c[f.idx(ix, ny+g)] = c[f.idx(ix, ny+g-1)]
				}
			}
		}
	}
}

// Energy returns (E²_x, E²_y, E²_z, B²_x, B²_y, B²_z) integrated (summed,
// times cell area) over the physical interior.
func (f *EMF) Energy() (ex2, ey2, ez2, bx2, by2, bz2 float64) {
	cellArea := f.g.Dx[0] * f.g.Dx[1]
	ex2 = sumSquaresInterior(f, f.Ex) * cellArea
	ey2 = sumSquaresInterior(f, f.Ey) * cellArea
	ez2 = sumSquaresInterior(f, f.Ez) * cellArea
	bx2 = sumSquaresInterior(f, f.Bx) * cellArea
	by2 = sumSquaresInterior(f, f.By) * cellArea
	bz2 = sumSquaresInterior(f, f.Bz) * cellArea
	return
}

func sumSquaresInterior(f *EMF, comp []float64) float64 {
	buf := make([]float64, 0, f.g.Nx[0]*f.g.Nx[1])
	for iy := 0; iy < f.g.Nx[1]; iy++ {
		base := f.idx(0, iy)
		buf = append(buf, comp[base:base+f.g.Nx[0]]...)
	}
	return floats.Dot(buf, buf)
}

// Report returns a copy of one component's physical-interior values as a
// row-major [nx0*nx1]float64 array, with guard cells hidden (spec.md §6).
func (f *EMF) Report(kind Kind, component int) []float64 {
	comps := f.componentSlices(kind)
	src := comps[component]
	out := make([]float64, f.g.Nx[0]*f.g.Nx[1])
	for iy := 0; iy < f.g.Nx[1]; iy++ {
		base := f.idx(0, iy)
		copy(out[iy*f.g.Nx[0]:(iy+1)*f.g.Nx[0]], src[base:base+f.g.Nx[0]])
	}
	return out
}

func (f *EMF) componentSlices(kind Kind) [3][]float64 {
	if kind == B {
		return [3][]float64{f.Bx, f.By, f.Bz}
	}
	return [3][]float64{f.Ex, f.Ey, f.Ez}
}

// Kind selects E or B for Report.
type Kind int

const (
	E Kind = iota
	B
)

// GaussResidual computes ∇·E - ρ at the interior cell (ix,iy), using the
// standard Yee divergence stencil, for the Gauss's-law testable property
// in spec.md §8. rho is a same-shape interior charge density grid.
func (f *EMF) GaussResidual(ix, iy int, rho []float64, nx0 int) float64 {
	c := f.idx(ix, iy)
	dx, dy := f.g.Dx[0], f.g.Dx[1]
	divE := (f.Ex[c]-f.Ex[f.idx(ix-1, iy)])/dx + (f.Ey[c]-f.Ey[f.idx(ix, iy-1)])/dy
	return divE - rho[iy*nx0+ix]
}
