// Package sim composes grid, fields, current, smoothing, species, laser
// and movingwindow into the step driver of spec.md §4.6, and is the
// engine's programmatic entry point (spec.md §6).
package sim

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nullplasma/pic2d/current"
	"github.com/nullplasma/pic2d/fields"
	"github.com/nullplasma/pic2d/grid"
	"github.com/nullplasma/pic2d/laser"
	"github.com/nullplasma/pic2d/movingwindow"
	"github.com/nullplasma/pic2d/rng"
	"github.com/nullplasma/pic2d/smoothing"
	"github.com/nullplasma/pic2d/species"
)

// ErrInvalidSimulation is wrapped by every simulation configuration error.
var ErrInvalidSimulation = errors.New("sim: invalid configuration")

// Config is the simulation's constructor input (spec.md §6:
// "constructed from (nx, box, dt, species_list, report_callback, seed)").
// Species are added after construction via AddSpecies, since each needs
// the simulation's own grid and RNG to load.
type Config struct {
	Nx       [2]int
	Box      [2]float64
	Dt       float64
	Periodic [2]bool
	Seed0, Seed1 uint32
	// Report, if set, runs before every Iter (spec.md §6).
	Report func(*Simulation)
	// Logger receives per-step Debug diagnostics; nil defaults to
	// slog.Default(). Report returns no error, so report-callback I/O
	// failures never reach it.
	Logger *slog.Logger
}

// Simulation owns every piece of run state: grid, fields, current,
// species and optional moving window / laser sources. There is no
// process-wide mutable state besides the seeded RNG owned here
// (spec.md §3 "Lifecycle").
type Simulation struct {
	g    *grid.Params
	emf  *fields.EMF
	cur  *current.Buffer
	src  *rng.Source
	spec []*species.Species
	win  *movingwindow.Window
	report func(*Simulation)

	n int
	t float64

	log *slog.Logger

	// Workers > 1 enables the parallel particle push described in
	// spec.md §5: one private current sub-buffer per species, at most
	// Workers species pushed concurrently, reduced before
	// current.Update().
	Workers int
}

// New validates cfg and builds an empty simulation (no species, no
// laser, no moving window — add those afterward).
func New(cfg Config) (*Simulation, error) {
	if cfg.Nx[0] < 2 || cfg.Nx[1] < 2 {
		return nil, fmt.Errorf("%w: nx=(%d,%d) must be >= 2", ErrInvalidSimulation, cfg.Nx[0], cfg.Nx[1])
	}
	if cfg.Box[0] <= 0 || cfg.Box[1] <= 0 {
		return nil, fmt.Errorf("%w: box=(%g,%g) must be positive", ErrInvalidSimulation, cfg.Box[0], cfg.Box[1])
	}
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g must be positive", ErrInvalidSimulation, cfg.Dt)
	}
	dx0 := cfg.Box[0] / float64(cfg.Nx[0])
	dx1 := cfg.Box[1] / float64(cfg.Nx[1])

	g, err := grid.New(cfg.Nx[0], cfg.Nx[1], dx0, dx1, cfg.Dt, cfg.Periodic)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Simulation{
		g:       g,
		emf:     fields.New(g),
		cur:     current.New(g),
		src:     rng.New(cfg.Seed0, cfg.Seed1),
		report:  cfg.Report,
		log:     log,
		Workers: 1,
	}
	return s, nil
}

// AddSpecies validates scfg and loads a new species onto the
// simulation's grid, using the simulation's own RNG stream.
func (s *Simulation) AddSpecies(scfg species.Config) (*species.Species, error) {
	sp, err := species.New(scfg, s.g, s.src)
	if err != nil {
		return nil, err
	}
	s.spec = append(s.spec, sp)
	return sp, nil
}

// SetMovingWindow enables the moving window (spec.md §4.5).
func (s *Simulation) SetMovingWindow() {
	s.win = movingwindow.New(s.g)
}

// SetSmooth configures the current buffer's post-deposition filter
// (spec.md §4.3).
func (s *Simulation) SetSmooth(f smoothing.Filter) {
	s.cur.SetSmoothing(f)
}

// SetExternal installs a uniform external field overlay (spec.md §4.1).
func (s *Simulation) SetExternal(e0, b0 [3]float64) {
	s.emf.SetExternal(e0, b0)
}

// SetExternalFunc installs an analytic external field overlay.
func (s *Simulation) SetExternalFunc(fn fields.ExternalFieldFunc) {
	s.emf.SetExternalFunc(fn)
}

// AddLaser validates and injects a laser pulse into the field state at
// t=0 (spec.md §4.1).
func (s *Simulation) AddLaser(p laser.Pulse) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.emf.AddLaser(p)
	return nil
}

// N returns the current iteration count.
func (s *Simulation) N() int { return s.n }

// T returns the current simulation time.
func (s *Simulation) T() float64 { return s.t }

// EMF returns the field state.
func (s *Simulation) EMF() *fields.EMF { return s.emf }

// Current returns the current buffer.
func (s *Simulation) Current() *current.Buffer { return s.cur }

// Grid returns the simulation's grid geometry.
func (s *Simulation) Grid() *grid.Params { return s.g }

// Species returns the simulation's species list.
func (s *Simulation) Species() []*species.Species { return s.spec }

// Iter runs one step (spec.md §4.6):
//  1. current.zero()
//  2. for each species: push_and_deposit()
//  3. current.update()
//  4. emf.advance(current, dt)
//  5. if moving window active: shift
//  6. n += 1; t = n*dt
//  7. for each species: sort() every cfg.SortEvery steps, if set
func (s *Simulation) Iter() error {
	s.log.Debug("iter", "n", s.n, "t", s.t, "species", len(s.spec))

	if s.report != nil {
		s.report(s)
	}

	s.cur.Zero()
	if s.Workers > 1 {
		s.pushParallel()
	} else {
		for _, sp := range s.spec {
			sp.PushAndDeposit(s.emf, s.cur, s.g.Dt)
		}
	}
	s.cur.Update()
	s.emf.Advance(s.cur, s.g.Dt)

	if s.win != nil {
		s.win.Maybe(s.n+1, s.g.Dt, s.emf, s.cur, s.spec)
	}

	s.n++
	s.t = float64(s.n) * s.g.Dt

	for _, sp := range s.spec {
		if every := sp.Config().SortEvery; every > 0 && s.n%every == 0 {
			sp.Sort()
		}
	}
	return nil
}

// Run advances the simulation until t >= tmax.
func (s *Simulation) Run(tmax float64) error {
	for s.t < tmax {
		if err := s.Iter(); err != nil {
			return err
		}
	}
	return nil
}

// pushParallel runs each species' push_and_deposit on its own goroutine
// against a private current.Buffer, bounded to Workers concurrent
// goroutines by a semaphore, then reduces every private buffer into the
// shared one before current.Update() runs (spec.md §5: "per-thread
// private current sub-buffers, accumulated and then reduced... no
// locking on field or particle memory"). Partitioning by species rather
// than by particle keeps every buffer single-writer: two species never
// touch the same sub-buffer concurrently.
func (s *Simulation) pushParallel() {
	buffers := make([]*current.Buffer, len(s.spec))
	sem := make(chan struct{}, s.Workers)
	done := make(chan struct{}, len(s.spec))

	for i, sp := range s.spec {
		buffers[i] = current.New(s.g)
		sem <- struct{}{}
		go func(sp *species.Species, buf *current.Buffer) {
			defer func() { <-sem; done <- struct{}{} }()
			sp.PushAndDeposit(s.emf, buf, s.g.Dt)
		}(sp, buffers[i])
	}
	for range s.spec {
		<-done
	}

	for _, b := range buffers {
		s.cur.Reduce(b)
	}
}
