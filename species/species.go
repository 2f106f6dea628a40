// Package species owns one macro-particle population: a dynamically
// sized, struct-of-arrays particle pool, initial loading from a density
// profile, the Boris pusher with charge-conserving zigzag deposition,
// boundary handling, periodic bucket sorting, and the CIC charge/
// phasespace diagnostics of spec.md §4.4.
//
// The particle arrays are grounded on the teacher's non-ECS particle pool
// in systems/particle_resource.go: flat []float64 position/velocity
// arrays, a free list of recycled slots, and a compact active-index list
// so the hot loop never walks dead slots.
package species

import (
	"errors"
	"fmt"

	"github.com/nullplasma/pic2d/grid"
)

// ErrInvalidSpecies is wrapped by every species configuration error.
var ErrInvalidSpecies = errors.New("species: invalid configuration")

// BoundaryKind selects what happens to a particle leaving the physical
// domain along one axis.
type BoundaryKind int

const (
	// BoundaryNone is undefined behavior for egressing particles
	// (forbidden in tests, per spec.md §4.4/§9). A picdebug build
	// panics the first time it is hit; a release build falls back to
	// clamping the index into range, a last-resort, explicitly
	// unsupported behavior — never silently "correct" physics.
	BoundaryNone BoundaryKind = iota
	// BoundaryPeriodic wraps ix/iy modulo nx (preferred for both axes).
	BoundaryPeriodic
	// BoundaryOpen marks an egressing particle removed (ix = -1); the
	// active list is compacted at the end of the same push.
	BoundaryOpen
)

// Config holds per-species parameters (spec.md §3 "Species").
type Config struct {
	MQ       float64    // mass-to-charge ratio
	ChargeSign float64  // +1 or -1
	PPC      [2]int     // particles per cell, per axis
	Ufl      [3]float64 // fluid drift
	Uth      [3]float64 // thermal spread
	Profile  DensityProfile
	Boundary [2]BoundaryKind
	// SortEvery triggers a bucket sort every N steps; 0 disables it.
	// Kept as its own field rather than aliasing the grid's Dx (spec.md
	// §9 flags the teacher binding's dx/n_sort aliasing bug as a
	// likely source bug not to repeat).
	SortEvery int
}

// Validate checks Config against spec.md §7's configuration-error rules.
func (c Config) Validate() error {
	if c.PPC[0] <= 0 || c.PPC[1] <= 0 {
		return fmt.Errorf("%w: ppc=(%d,%d) must be positive", ErrInvalidSpecies, c.PPC[0], c.PPC[1])
	}
	if c.ChargeSign == 0 {
		return fmt.Errorf("%w: charge sign must be nonzero", ErrInvalidSpecies)
	}
	return c.Profile.validate()
}

// Species is a dynamically sized SoA macro-particle population living on
// a shared grid.Params (owned by the simulation, not duplicated here).
type Species struct {
	cfg Config
	g   *grid.Params

	// Particle arrays (SoA layout for cache efficiency, grounded on
	// systems/particle_resource.go's X,Y,Mass,Active pools).
	IX, IY     []int32
	X, Y       []float64 // in-cell position, always in [0,1) for a live particle
	UX, UY, UZ []float64
	W          []float64 // macro-particle charge weight (see DESIGN.md)

	freeList   []int
	activeList []int32 // compact list of active particle indices

	normal normalSampler
}

// normalSampler is the minimal interface species needs from rng.Normal,
// declared locally so species does not import rng's Source type directly
// into its public surface (only New takes one).
type normalSampler interface {
	Next() float64
}

// Config returns the species' configuration (mass-to-charge ratio, charge
// sign, etc.), for diagnostics callers that need physical parameters
// alongside the raw particle arrays.
func (s *Species) Config() Config { return s.cfg }

// Count returns the number of live particles.
func (s *Species) Count() int { return len(s.activeList) }

// ActiveIndices returns the compact list of live particle slot indices.
func (s *Species) ActiveIndices() []int32 { return s.activeList }

// CellIndex returns a particle slot's linear cell index (iy*nx0+ix), the
// same ordering key Sort uses.
func (s *Species) CellIndex(slot int32) int {
	return int(s.IY[slot])*s.g.Nx[0] + int(s.IX[slot])
}

func (s *Species) removeAt(slot int32) {
	s.IX[slot] = -1
	s.freeList = append(s.freeList, int(slot))
}

func (s *Species) allocSlot() int32 {
	if n := len(s.freeList); n > 0 {
		slot := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		return int32(slot)
	}
	slot := int32(len(s.IX))
	s.IX = append(s.IX, 0)
	s.IY = append(s.IY, 0)
	s.X = append(s.X, 0)
	s.Y = append(s.Y, 0)
	s.UX = append(s.UX, 0)
	s.UY = append(s.UY, 0)
	s.UZ = append(s.UZ, 0)
	s.W = append(s.W, 0)
	return slot
}
