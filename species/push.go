package species

import (
	"math"

	"github.com/nullplasma/pic2d/current"
	"github.com/nullplasma/pic2d/fields"
)

// PushAndDeposit advances every active particle one leapfrog step: gather
// the Yee-staggered E/B at the particle position, apply the relativistic
// Boris rotation, advance the position, and deposit the charge-conserving
// zigzag current for the segment travelled. Grounded on the two-phase
// "compute new state into scratch, then commit" shape of
// systems/particle_resource.go's advectParticlesCompact, adapted here to a
// single pass since each particle only ever touches its own slot.
func (s *Species) PushAndDeposit(f *fields.EMF, j *current.Buffer, dt float64) {
	qm := s.cfg.ChargeSign / s.cfg.MQ
	dx, dy := s.g.Dx[0], s.g.Dx[1]

	for n := 0; n < len(s.activeList); n++ {
		slot := s.activeList[n]
		if s.IX[slot] < 0 {
			continue
		}
		ix, iy := int(s.IX[slot]), int(s.IY[slot])
		x, y := s.X[slot], s.Y[slot]

		e := interpolateE(f, ix, iy, x, y)
		b := interpolateB(f, ix, iy, x, y)

		ux, uy, uz := borisRotate(s.UX[slot], s.UY[slot], s.UZ[slot], e, b, qm, dt)
		s.UX[slot], s.UY[slot], s.UZ[slot] = ux, uy, uz

		gamma := math.Sqrt(1 + ux*ux + uy*uy + uz*uz)
		vx, vy := ux/gamma, uy/gamma

		xf := x + vx*dt/dx
		yf := y + vy*dt/dy
		vz := uz / gamma

		depositZigzag(j, s.g, ix, iy, x, y, xf, yf, vz, s.W[slot])

		newIX, newX := resolveAxis(ix, xf)
		newIY, newY := resolveAxis(iy, yf)

		if removed := s.applyBoundaryCrossing(0, &newIX, &newX); removed {
			s.removeAt(slot)
			continue
		}
		if removed := s.applyBoundaryCrossing(1, &newIY, &newY); removed {
			s.removeAt(slot)
			continue
		}

		s.IX[slot], s.IY[slot] = int32(newIX), int32(newIY)
		s.X[slot], s.Y[slot] = newX, newY
	}

	s.compactActiveList()
}

// compactActiveList drops removed slots (IX < 0) from the active list. It
// runs once per step rather than per removal so a single pass over the
// whole push amortizes the cost, matching cleanupCompact's "sweep once"
// shape in systems/particle_resource.go.
func (s *Species) compactActiveList() {
	out := s.activeList[:0]
	for _, slot := range s.activeList {
		if s.IX[slot] >= 0 {
			out = append(out, slot)
		}
	}
	s.activeList = out
}

// applyBoundaryCrossing normalizes an axis's (cell, fraction) pair that may
// have walked out of [0,Nx) after the position advance, per the species'
// configured boundary kind. It reports whether the particle must be
// removed (open boundary egress).
func (s *Species) applyBoundaryCrossing(axis int, cell *int, frac *float64) bool {
	nx := s.g.Nx[axis]
	if *cell >= 0 && *cell < nx {
		return false
	}
	switch s.cfg.Boundary[axis] {
	case BoundaryPeriodic:
		*cell = ((*cell % nx) + nx) % nx
		return false
	case BoundaryOpen:
		return true
	default: // BoundaryNone
		assertNoneBoundaryNotHit(axis, *cell)
		if *cell < 0 {
			*cell, *frac = 0, 0
		} else {
			*cell, *frac = nx-1, math.Nextafter(1, 0)
		}
		return false
	}
}

// resolveAxis folds a fractional cell-unit position xf (relative to cell
// ix, may be outside [0,1)) into a normalized (cell, fraction) pair.
func resolveAxis(ix int, xf float64) (int, float64) {
	cell := ix + int(math.Floor(xf))
	frac := xf - math.Floor(xf)
	return cell, frac
}

// interpolateE gathers the Yee-staggered E field (plus any external
// overlay) at a particle's in-cell position via bilinear CIC, honoring
// each component's stagger per spec.md §3.
func interpolateE(f *fields.EMF, ix, iy int, x, y float64) [3]float64 {
	return [3]float64{
		bilinear(f, ix, iy, x, y, true, false, exAt(f)),
		bilinear(f, ix, iy, x, y, false, true, eyAt(f)),
		bilinear(f, ix, iy, x, y, true, true, ezAt(f)),
	}
}

// interpolateB gathers the Yee-staggered B field at a particle's in-cell
// position via bilinear CIC.
func interpolateB(f *fields.EMF, ix, iy int, x, y float64) [3]float64 {
	return [3]float64{
		bilinear(f, ix, iy, x, y, false, true, bxAt(f)),
		bilinear(f, ix, iy, x, y, true, false, byAt(f)),
		bilinear(f, ix, iy, x, y, false, false, bzAt(f)),
	}
}

// fieldLookup fetches a component's particle-facing value (self +
// external) at an extended-grid cell, closing over which of Ex..Bz is
// being sampled.
type fieldLookup func(ix, iy int) float64

func exAt(f *fields.EMF) fieldLookup {
	return func(ix, iy int) float64 { return f.EPart(f.Index(ix, iy))[0] }
}
func eyAt(f *fields.EMF) fieldLookup {
	return func(ix, iy int) float64 { return f.EPart(f.Index(ix, iy))[1] }
}
func ezAt(f *fields.EMF) fieldLookup {
	return func(ix, iy int) float64 { return f.EPart(f.Index(ix, iy))[2] }
}
func bxAt(f *fields.EMF) fieldLookup {
	return func(ix, iy int) float64 { return f.BPart(f.Index(ix, iy))[0] }
}
func byAt(f *fields.EMF) fieldLookup {
	return func(ix, iy int) float64 { return f.BPart(f.Index(ix, iy))[1] }
}
func bzAt(f *fields.EMF) fieldLookup {
	return func(ix, iy int) float64 { return f.BPart(f.Index(ix, iy))[2] }
}

// bilinear interpolates a component at (ix+x, iy+y) (x,y in [0,1)) given
// whether that component is staggered by half a cell on each axis.
func bilinear(f *fields.EMF, ix, iy int, x, y float64, stagX, stagY bool, at fieldLookup) float64 {
	i0, wx0, wx1 := stagWeights(x, stagX)
	j0, wy0, wy1 := stagWeights(y, stagY)
	return wx0*wy0*at(ix+i0, iy+j0) +
		wx1*wy0*at(ix+i0+1, iy+j0) +
		wx0*wy1*at(ix+i0, iy+j0+1) +
		wx1*wy1*at(ix+i0+1, iy+j0+1)
}

// stagWeights returns the low-node offset and the (low,high) linear
// weights for one axis of a CIC gather. An unstaggered component sits on
// the cell's own node pair (ix, ix+1); a staggered component sits half a
// cell further along, so its nearest node pair depends on which side of
// the cell center the particle is on.
func stagWeights(frac float64, staggered bool) (i0 int, w0, w1 float64) {
	if !staggered {
		return 0, 1 - frac, frac
	}
	if frac >= 0.5 {
		f := frac - 0.5
		return 0, 1 - f, f
	}
	f := frac + 0.5
	return -1, 1 - f, f
}

// borisRotate applies the standard Boris algorithm: half electric
// acceleration, a magnetic rotation that preserves |u|, then the
// second half electric acceleration (spec.md §4.4).
func borisRotate(ux, uy, uz float64, e, b [3]float64, qm, dt float64) (float64, float64, float64) {
	half := 0.5 * qm * dt
	umx := ux + half*e[0]
	umy := uy + half*e[1]
	umz := uz + half*e[2]

	gamma := math.Sqrt(1 + umx*umx + umy*umy + umz*umz)
	tx := half * b[0] / gamma
	ty := half * b[1] / gamma
	tz := half * b[2] / gamma
	t2 := tx*tx + ty*ty + tz*tz

	upx := umx + (umy*tz - umz*ty)
	upy := umy + (umz*tx - umx*tz)
	upz := umz + (umx*ty - umy*tx)

	sx := 2 * tx / (1 + t2)
	sy := 2 * ty / (1 + t2)
	sz := 2 * tz / (1 + t2)

	u2x := umx + (upy*sz - upz*sy)
	u2y := umy + (upz*sx - upx*sz)
	u2z := umz + (upx*sy - upy*sx)

	return u2x + half*e[0], u2y + half*e[1], u2z + half*e[2]
}

// assertNoneBoundaryNotHit panics under the picdebug build tag when a
// particle crosses a boundary declared BoundaryNone; see
// boundary_debug.go / boundary_release.go.
var assertNoneBoundaryNotHit = assertNoneBoundaryImpl
