package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/nullplasma/pic2d/laser"
	"github.com/nullplasma/pic2d/species"
)

func TestNewRejectsSubMinimumGridSize(t *testing.T) {
	_, err := New(Config{Nx: [2]int{1, 4}, Box: [2]float64{1, 1}, Dt: 0.01})
	if !errors.Is(err, ErrInvalidSimulation) {
		t.Fatalf("expected ErrInvalidSimulation for nx=1, got %v", err)
	}
}

func TestNewRejectsNonPositiveBox(t *testing.T) {
	_, err := New(Config{Nx: [2]int{4, 4}, Box: [2]float64{0, 1}, Dt: 0.01})
	if !errors.Is(err, ErrInvalidSimulation) {
		t.Fatalf("expected ErrInvalidSimulation for box=0, got %v", err)
	}
}

func TestNewRejectsNonPositiveDt(t *testing.T) {
	_, err := New(Config{Nx: [2]int{4, 4}, Box: [2]float64{1, 1}, Dt: 0})
	if !errors.Is(err, ErrInvalidSimulation) {
		t.Fatalf("expected ErrInvalidSimulation for dt=0, got %v", err)
	}
}

func newTestSim(t *testing.T) *Simulation {
	t.Helper()
	s, err := New(Config{
		Nx: [2]int{16, 16}, Box: [2]float64{1.6, 1.6}, Dt: 0.05,
		Periodic: [2]bool{true, true}, Seed0: 1, Seed1: 2,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestIterAdvancesIterationCountAndTime(t *testing.T) {
	s := newTestSim(t)
	for i := 1; i <= 3; i++ {
		if err := s.Iter(); err != nil {
			t.Fatalf("Iter: %v", err)
		}
		if s.N() != i {
			t.Fatalf("expected N()=%d, got %d", i, s.N())
		}
		want := float64(i) * s.Grid().Dt
		if math.Abs(s.T()-want) > 1e-12 {
			t.Fatalf("expected T()=%g, got %g", want, s.T())
		}
	}
}

func TestRunStopsAtOrPastTmax(t *testing.T) {
	s := newTestSim(t)
	tmax := 0.22
	if err := s.Run(tmax); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.T() < tmax {
		t.Fatalf("expected Run to advance t to at least %g, got %g", tmax, s.T())
	}
	// One less step must have left t short of tmax (Run should not
	// overshoot by more than a single dt).
	if s.T()-tmax > s.Grid().Dt {
		t.Fatalf("Run overshot tmax by more than one dt: t=%g tmax=%g dt=%g", s.T(), tmax, s.Grid().Dt)
	}
}

func TestReportCallbackRunsBeforeEveryIter(t *testing.T) {
	var seenN []int
	s, err := New(Config{
		Nx: [2]int{8, 8}, Box: [2]float64{0.8, 0.8}, Dt: 0.05,
		Periodic: [2]bool{true, true},
		Report: func(sim *Simulation) {
			seenN = append(seenN, sim.N())
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Iter(); err != nil {
			t.Fatalf("Iter: %v", err)
		}
	}
	if len(seenN) != 3 || seenN[0] != 0 || seenN[1] != 1 || seenN[2] != 2 {
		t.Fatalf("expected report to see N=0,1,2 before each iter, got %v", seenN)
	}
}

func TestAddLaserRejectsInvalidPulse(t *testing.T) {
	s := newTestSim(t)
	err := s.AddLaser(laser.Pulse{Omega0: 0})
	if !errors.Is(err, laser.ErrInvalidPulse) {
		t.Fatalf("expected ErrInvalidPulse, got %v", err)
	}
}

func TestAddSpeciesPropagatesConfigError(t *testing.T) {
	s := newTestSim(t)
	_, err := s.AddSpecies(species.Config{PPC: [2]int{0, 0}})
	if !errors.Is(err, species.ErrInvalidSpecies) {
		t.Fatalf("expected ErrInvalidSpecies, got %v", err)
	}
}

func TestIterSortsSpeciesOnTheConfiguredCadence(t *testing.T) {
	s, err := New(Config{
		Nx: [2]int{16, 16}, Box: [2]float64{1.6, 1.6}, Dt: 0.05,
		Periodic: [2]bool{true, true}, Seed0: 3, Seed1: 4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := species.Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{2, 2}, Profile: species.Uniform(1),
		Ufl:       [3]float64{0.3, 0.2, 0},
		Boundary:  [2]species.BoundaryKind{species.BoundaryPeriodic, species.BoundaryPeriodic},
		SortEvery: 1,
	}
	sp, err := s.AddSpecies(cfg)
	if err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}

	if err := s.Iter(); err != nil {
		t.Fatalf("Iter: %v", err)
	}

	active := sp.ActiveIndices()
	for i := 1; i < len(active); i++ {
		a, b := active[i-1], active[i]
		cellA := sp.CellIndex(a)
		cellB := sp.CellIndex(b)
		if cellA > cellB {
			t.Fatalf("expected Iter to leave the active list sorted by cell with SortEvery=1, found %d > %d at %d", cellA, cellB, i)
		}
	}
}

func TestIterDoesNotSortWhenSortEveryIsZero(t *testing.T) {
	// SortEvery=0 disables the sort; Iter must not panic or otherwise
	// misbehave when it is left unset (the common case).
	s, err := New(Config{
		Nx: [2]int{16, 16}, Box: [2]float64{1.6, 1.6}, Dt: 0.05,
		Periodic: [2]bool{true, true}, Seed0: 3, Seed1: 4,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg := species.Config{
		MQ: 1, ChargeSign: -1, PPC: [2]int{1, 1}, Profile: species.Uniform(1),
		Boundary: [2]species.BoundaryKind{species.BoundaryPeriodic, species.BoundaryPeriodic},
	}
	if _, err := s.AddSpecies(cfg); err != nil {
		t.Fatalf("AddSpecies: %v", err)
	}
	if err := s.Iter(); err != nil {
		t.Fatalf("Iter: %v", err)
	}
}

func TestParallelPushMatchesSerialPushDeposition(t *testing.T) {
	build := func(workers int) *Simulation {
		s, err := New(Config{
			Nx: [2]int{16, 16}, Box: [2]float64{1.6, 1.6}, Dt: 0.05,
			Periodic: [2]bool{true, true}, Seed0: 7, Seed1: 9,
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := 0; i < 3; i++ {
			cfg := species.Config{
				MQ: 1, ChargeSign: -1, PPC: [2]int{2, 2}, Profile: species.Uniform(1),
				Boundary: [2]species.BoundaryKind{species.BoundaryPeriodic, species.BoundaryPeriodic},
			}
			if _, err := s.AddSpecies(cfg); err != nil {
				t.Fatalf("AddSpecies: %v", err)
			}
		}
		s.Workers = workers
		return s
	}

	serial := build(1)
	parallel := build(4)

	if err := serial.Iter(); err != nil {
		t.Fatalf("serial Iter: %v", err)
	}
	if err := parallel.Iter(); err != nil {
		t.Fatalf("parallel Iter: %v", err)
	}

	// Both runs use the same per-species seeded loads; the serial run
	// deposits straight into the shared buffer while the parallel run
	// reduces one private buffer per species into it. The resulting field
	// state must match exactly regardless of Workers: partitioning by
	// species (not by worker slot) means no buffer is ever shared between
	// two concurrently-running species.
	for i := range serial.EMF().Ex {
		if serial.EMF().Ex[i] != parallel.EMF().Ex[i] {
			t.Fatalf("Ex diverged between serial and parallel push at %d: %g != %g", i, serial.EMF().Ex[i], parallel.EMF().Ex[i])
		}
	}
}
