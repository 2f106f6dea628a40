package species

import (
	"errors"
	"testing"

	"github.com/nullplasma/pic2d/grid"
	"github.com/nullplasma/pic2d/rng"
)

func newTestGrid(t *testing.T) *grid.Params {
	t.Helper()
	g, err := grid.New(16, 16, 0.1, 0.1, 0.05, [2]bool{true, true})
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

func TestValidateRejectsZeroPPC(t *testing.T) {
	cfg := Config{ChargeSign: -1, PPC: [2]int{0, 2}, Profile: Uniform(1)}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSpecies) {
		t.Fatalf("expected ErrInvalidSpecies for zero ppc, got %v", err)
	}
}

func TestValidateRejectsZeroChargeSign(t *testing.T) {
	cfg := Config{ChargeSign: 0, PPC: [2]int{2, 2}, Profile: Uniform(1)}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSpecies) {
		t.Fatalf("expected ErrInvalidSpecies for zero charge sign, got %v", err)
	}
}

func TestNewLoadsExactlyPPCParticlesPerCell(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{2, 3}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryPeriodic, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := g.Nx[0] * g.Nx[1] * cfg.PPC[0] * cfg.PPC[1]
	if s.Count() != want {
		t.Fatalf("expected %d particles, got %d", want, s.Count())
	}
}

func TestLoadSkipsCellsBelowMinDensity(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{1, 1},
		Profile:  Step(1, 0.8), // most of the box is below start=0.8
		Boundary: [2]BoundaryKind{BoundaryPeriodic, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Count() == 0 || s.Count() == g.Nx[0]*g.Nx[1] {
		t.Fatalf("expected a partial load, got %d of %d", s.Count(), g.Nx[0]*g.Nx[1])
	}
}

func TestFreeListReusesRemovedSlots(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{1, 1}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryOpen, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := len(s.IX)
	slot := s.activeList[0]
	s.removeAt(slot)
	s.compactActiveList()
	newSlot := s.allocSlot()
	if newSlot != slot {
		t.Fatalf("expected allocSlot to reuse the freed slot %d, got %d", slot, newSlot)
	}
	if len(s.IX) != before {
		t.Fatalf("expected no new backing-array growth, len(IX) went from %d to %d", before, len(s.IX))
	}
}

func TestSortPreservesParticleCount(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{2, 2}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryPeriodic, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := s.Count()
	s.Sort()
	if s.Count() != before {
		t.Fatalf("sort changed particle count from %d to %d", before, s.Count())
	}
	for i := 1; i < len(s.activeList); i++ {
		a := s.activeList[i-1]
		b := s.activeList[i]
		cellA := int(s.IY[a])*g.Nx[0] + int(s.IX[a])
		cellB := int(s.IY[b])*g.Nx[0] + int(s.IX[b])
		if cellA > cellB {
			t.Fatalf("sort did not produce nondecreasing cell order at %d: %d > %d", i, cellA, cellB)
		}
	}
}

func TestChargeDepositionConservesTotalWeight(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{2, 2}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryPeriodic, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := make([]float64, g.Nx[0]*g.Nx[1])
	s.Charge(out)

	var totalW, totalOut float64
	for _, slot := range s.activeList {
		totalW += s.W[slot]
	}
	cellArea := g.Dx[0] * g.Dx[1]
	for _, v := range out {
		totalOut += v * cellArea
	}
	diff := totalOut - totalW
	if diff < 0 {
		diff = -diff
	}
	if diff > 1e-9*float64(len(out)) {
		t.Fatalf("CIC charge deposition did not conserve total weight: particles=%g deposited=%g", totalW, totalOut)
	}
}

func TestApplyBoundaryCrossingWrapsPeriodic(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{1, 1}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryPeriodic, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cell := g.Nx[0]
	frac := 0.3
	removed := s.applyBoundaryCrossing(0, &cell, &frac)
	if removed {
		t.Fatalf("periodic boundary should never remove a particle")
	}
	if cell != 0 {
		t.Fatalf("expected periodic wrap to cell 0, got %d", cell)
	}
}

func TestApplyBoundaryCrossingRemovesOnOpen(t *testing.T) {
	g := newTestGrid(t)
	cfg := Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{1, 1}, Profile: Uniform(1),
		Boundary: [2]BoundaryKind{BoundaryOpen, BoundaryPeriodic},
	}
	s, err := New(cfg, g, rng.New(1, 2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cell := -1
	frac := 0.9
	removed := s.applyBoundaryCrossing(0, &cell, &frac)
	if !removed {
		t.Fatalf("expected open boundary to report removal")
	}
}
