package species

import (
	"math"
	"testing"

	"github.com/nullplasma/pic2d/current"
	"github.com/nullplasma/pic2d/fields"
	"github.com/nullplasma/pic2d/rng"
)

func TestPushWithZeroFieldsAdvancesByVelocityOverGamma(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{1, 1}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryPeriodic, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f := fields.New(g)
	j := current.New(g)

	slot := s.activeList[0]
	s.UX[slot], s.UY[slot], s.UZ[slot] = 0.3, -0.1, 0.05
	ux, uy, uz := s.UX[slot], s.UY[slot], s.UZ[slot]
	gamma := math.Sqrt(1 + ux*ux + uy*uy + uz*uz)
	ix0, iy0, x0, y0 := int(s.IX[slot]), int(s.IY[slot]), s.X[slot], s.Y[slot]

	s.PushAndDeposit(f, j, g.Dt)

	wantX := float64(ix0) + x0 + (ux/gamma)*g.Dt/g.Dx[0]
	wantY := float64(iy0) + y0 + (uy/gamma)*g.Dt/g.Dx[1]
	wantIX := int(math.Floor(wantX))
	wantIY := int(math.Floor(wantY))
	wantFracX := wantX - math.Floor(wantX)
	wantFracY := wantY - math.Floor(wantY)

	if int(s.IX[slot]) != wantIX || int(s.IY[slot]) != wantIY {
		t.Fatalf("expected cell (%d,%d), got (%d,%d)", wantIX, wantIY, s.IX[slot], s.IY[slot])
	}
	if math.Abs(s.X[slot]-wantFracX) > 1e-9 || math.Abs(s.Y[slot]-wantFracY) > 1e-9 {
		t.Fatalf("expected in-cell pos (%g,%g), got (%g,%g)", wantFracX, wantFracY, s.X[slot], s.Y[slot])
	}
	// Velocity must be unchanged with E=B=0.
	if s.UX[slot] != ux || s.UY[slot] != uy || s.UZ[slot] != uz {
		t.Fatalf("expected velocity unchanged with zero fields")
	}
}

func TestStagWeightsUnstaggeredSumsToOne(t *testing.T) {
	for _, frac := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		_, w0, w1 := stagWeights(frac, false)
		if math.Abs(w0+w1-1) > 1e-12 {
			t.Fatalf("unstaggered weights at frac=%g do not sum to 1: %g + %g", frac, w0, w1)
		}
	}
}

func TestStagWeightsStaggeredSumsToOne(t *testing.T) {
	for _, frac := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		_, w0, w1 := stagWeights(frac, true)
		if math.Abs(w0+w1-1) > 1e-12 {
			t.Fatalf("staggered weights at frac=%g do not sum to 1: %g + %g", frac, w0, w1)
		}
	}
}

func TestBorisRotationPreservesSpeedWithPureB(t *testing.T) {
	// A pure magnetic field does no work: |u_new| must equal |u|.
	ux, uy, uz := 0.5, 0.2, -0.1
	e := [3]float64{0, 0, 0}
	b := [3]float64{0, 0, 1}
	nx, ny, nz := borisRotate(ux, uy, uz, e, b, 1.0, 0.05)

	before := ux*ux + uy*uy + uz*uz
	after := nx*nx + ny*ny + nz*nz
	if math.Abs(before-after) > 1e-9 {
		t.Fatalf("boris rotation with pure B changed |u|^2: %g -> %g", before, after)
	}
}
