package species

import (
	"math"

	"github.com/nullplasma/pic2d/current"
	"github.com/nullplasma/pic2d/grid"
)

// depositZigzag deposits the charge-conserving current for one particle's
// motion within a single step, following Umeda et al. (2003): the segment
// from (ix+x0, iy+y0) to (ix+xf, iy+yf) is split at a relay point so that
// each half never leaves a single cell, then each half is deposited with
// the standard area-weighting formulas. This guarantees the discrete
// continuity equation holds exactly, which is what lets the field solver
// trust curl B instead of re-solving Gauss's law every step (spec.md
// §4.2, §8 "charge conservation").
//
// x0,y0 are the particle's starting in-cell offset (both in [0,1)); xf,yf
// are its ending offset in the same cell's units, and may fall outside
// [0,1) since the particle may have crossed into a neighboring cell
// during this step (the Courant condition bounds it to at most one).
func depositZigzag(j *current.Buffer, g *grid.Params, ix, iy int, x0, y0, xf, yf, vz, w float64) {
	xi, yiGlobal := float64(ix)+x0, float64(iy)+y0
	xf2, yf2 := float64(ix)+xf, float64(iy)+yf

	i1, j1 := int(math.Floor(xi)), int(math.Floor(yiGlobal))
	i2, j2 := int(math.Floor(xf2)), int(math.Floor(yf2))

	xr := relayPoint(xi, xf2, i1, i2)
	yr := relayPoint(yiGlobal, yf2, j1, j2)

	// Both halves are always deposited, even when the particle never
	// leaves cell (i1,j1): the relay point then just bisects the segment
	// and both depositSegment calls land in the same cell. Skipping the
	// second call here would silently drop half the flux.
	depositSegment(j, g, i1, j1, xi, yiGlobal, xr, yr, w)
	depositSegment(j, g, i2, j2, xr, yr, xf2, yf2, w)

	// Jz has no continuity constraint of its own (vz carries no in-plane
	// displacement), so it is CIC-deposited at the segment's mean
	// position rather than split at the relay point.
	depositJz(j, g, xi, yiGlobal, xf2, yf2, vz, w)
}

// relayPoint is the Umeda relay coordinate: the point along one axis
// where a straight-line move between two cells is clipped to the shared
// cell boundary, or the segment midpoint if the move never leaves cell
// i1 (i1 == i2).
func relayPoint(a, b float64, i1, i2 int) float64 {
	lo := i1
	if i2 < lo {
		lo = i2
	}
	hi := i1
	if i2 > hi {
		hi = i2
	}
	mid := 0.5 * (a + b)
	r := math.Max(float64(hi), mid)
	r = math.Min(float64(lo+1), r)
	return r
}

// depositSegment deposits one relay-clipped half-segment, wholly
// contained in cell (ci,cj), using Umeda's area-weighted Jx/Jy formulas.
func depositSegment(j *current.Buffer, g *grid.Params, ci, cj int, xa, ya, xb, yb float64, w float64) {
	x1, y1 := xa-float64(ci), ya-float64(cj)
	x2, y2 := xb-float64(ci), yb-float64(cj)

	fx := w * (x2 - x1)
	fy := w * (y2 - y1)
	wx := 0.5 * (y1 + y2)
	wy := 0.5 * (x1 + x2)

	j.Add(j.Index(ci, cj), fx*(1-wx), fy*(1-wy), 0)
	j.Add(j.Index(ci, cj+1), fx*wx, 0, 0)
	j.Add(j.Index(ci+1, cj), 0, fy*wy, 0)
}

// depositJz CIC-deposits the out-of-plane current at the segment's mean
// position, split across the four surrounding Bz-like (unstaggered)
// nodes.
func depositJz(j *current.Buffer, g *grid.Params, xi, yi, xf, yf, vz, w float64) {
	xm, ym := 0.5*(xi+xf), 0.5*(yi+yf)
	ci, cj := int(math.Floor(xm)), int(math.Floor(ym))
	fx, fy := xm-float64(ci), ym-float64(cj)
	q := w * vz

	j.Add(j.Index(ci, cj), 0, 0, q*(1-fx)*(1-fy))
	j.Add(j.Index(ci+1, cj), 0, 0, q*fx*(1-fy))
	j.Add(j.Index(ci, cj+1), 0, 0, q*(1-fx)*fy)
	j.Add(j.Index(ci+1, cj+1), 0, 0, q*fx*fy)
}
