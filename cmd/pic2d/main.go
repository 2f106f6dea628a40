// Command pic2d is the driver described in spec.md §6: builds a
// Simulation from one of the named scenario fixtures, runs it for a
// fixed number of steps, and writes ZDF field dumps plus a run-summary
// CSV to an output directory — the same flag-parsed,
// fail-fast-with-log.Fatal CLI shape as cmd/optimize's main.go, adapted
// from a parameter-sweep driver to a single-run field/particle driver.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/nullplasma/pic2d/diagnostics"
	"github.com/nullplasma/pic2d/fields"
	"github.com/nullplasma/pic2d/laser"
	"github.com/nullplasma/pic2d/scenario"
	"github.com/nullplasma/pic2d/sim"
	"github.com/nullplasma/pic2d/species"
)

var scenarios = map[string]func() (scenario.Fixture, error){
	"free_streaming": scenario.FreeStreamingColdBeam,
	"two_stream":     scenario.TwoStreamInstability,
	"em_wave":        scenario.EMWavePropagation,
	"laser_plasma":   scenario.RelativisticLaserPlasma,
	"moving_window":  scenario.MovingWindowCopropagation,
	"smoothing":      scenario.SmoothingIdempotence,
}

// formatDuration formats a duration as e.g. "2h03m04s", or "1m30s" for
// durations under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	scenarioName := flag.String("scenario", "two_stream", "named scenario to run: free_streaming, two_stream, em_wave, laser_plasma, moving_window, smoothing")
	steps := flag.Int("steps", 0, "number of steps to run (0 = use the scenario's own step count)")
	workers := flag.Int("workers", 1, "number of goroutines for the parallel particle push")
	seed0 := flag.Uint64("seed0", 12345, "RNG stream seed, low word")
	seed1 := flag.Uint64("seed1", 67890, "RNG stream seed, high word")
	summaryEvery := flag.Int("summary-every", 10, "write a run-summary row every N steps")
	dumpEvery := flag.Int("dump-every", 0, "write an Ex field dump every N steps (0 disables)")
	outputDir := flag.String("output", "", "output directory for diagnostics (required)")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	load, ok := scenarios[*scenarioName]
	if !ok {
		log.Fatalf("unknown scenario %q", *scenarioName)
	}
	fixture, err := load()
	if err != nil {
		log.Fatalf("loading scenario: %v", err)
	}
	if *steps > 0 {
		fixture.Steps = *steps
	}

	s, err := buildSimulation(fixture, uint32(*seed0), uint32(*seed1), *workers)
	if err != nil {
		log.Fatalf("building simulation: %v", err)
	}

	summaryFile, err := os.Create(filepath.Join(*outputDir, "summary.csv"))
	if err != nil {
		log.Fatalf("creating summary.csv: %v", err)
	}
	defer summaryFile.Close()
	summary := diagnostics.NewSummaryWriter(summaryFile)

	var dump *diagnostics.Writer
	if *dumpEvery > 0 {
		dumpFile, err := os.Create(filepath.Join(*outputDir, "ex.zdf"))
		if err != nil {
			log.Fatalf("creating ex.zdf: %v", err)
		}
		defer dumpFile.Close()
		dump = diagnostics.NewWriter(dumpFile)
	}

	log.Printf("running scenario %q for %d steps", fixture.Name, fixture.Steps)
	start := time.Now()
	for i := 0; i < fixture.Steps; i++ {
		if err := s.Iter(); err != nil {
			log.Fatalf("step %d: %v", i, err)
		}
		if *summaryEvery > 0 && s.N()%*summaryEvery == 0 {
			if err := writeSummaryRow(summary, s); err != nil {
				log.Printf("warning: writing summary row at step %d: %v", s.N(), err)
			}
		}
		if dump != nil && s.N()%*dumpEvery == 0 {
			if err := writeExDump(dump, s); err != nil {
				log.Printf("warning: writing field dump at step %d: %v", s.N(), err)
			}
		}
	}
	log.Printf("finished %d steps in %s", fixture.Steps, formatDuration(time.Since(start)))
}

func writeSummaryRow(w *diagnostics.SummaryWriter, s *sim.Simulation) error {
	ex2, ey2, ez2, bx2, by2, bz2 := s.EMF().Energy()
	rho := chargeDensity(s)
	row := diagnostics.SummaryRow{
		Iteration:        s.N(),
		Time:             s.T(),
		FieldEnergy:      ex2 + ey2 + ez2 + bx2 + by2 + bz2,
		KineticEnergy:    kineticEnergy(s),
		TotalCharge:      totalCharge(s, rho),
		MaxGaussResidual: maxGaussResidual(s, rho),
	}
	return w.Write(row)
}

func kineticEnergy(s *sim.Simulation) float64 {
	var total float64
	for _, sp := range s.Species() {
		total += sp.KineticEnergy()
	}
	return total
}

// chargeDensity CIC-deposits every species' charge onto one shared interior
// grid (row-major, Nx[0]*Nx[1]), the common rho source for both the
// total-charge and Gauss's-law-residual summary fields.
func chargeDensity(s *sim.Simulation) []float64 {
	rho := make([]float64, s.Grid().Nx[0]*s.Grid().Nx[1])
	for _, sp := range s.Species() {
		sp.Charge(rho)
	}
	return rho
}

func totalCharge(s *sim.Simulation, rho []float64) float64 {
	var total float64
	for _, v := range rho {
		total += v
	}
	cellArea := s.Grid().Dx[0] * s.Grid().Dx[1]
	return total * cellArea
}

// maxGaussResidual returns the worst-case |∇·E - ρ| over every interior
// cell (spec.md §8's Gauss's-law testable property), reported per summary
// row as an early warning of charge-conservation drift in the deposition
// or field-advance stencils.
func maxGaussResidual(s *sim.Simulation, rho []float64) float64 {
	g := s.Grid()
	emf := s.EMF()
	var worst float64
	for iy := 0; iy < g.Nx[1]; iy++ {
		for ix := 0; ix < g.Nx[0]; ix++ {
			if r := math.Abs(emf.GaussResidual(ix, iy, rho, g.Nx[0])); r > worst {
				worst = r
			}
		}
	}
	return worst
}

func writeExDump(w *diagnostics.Writer, s *sim.Simulation) error {
	g := s.Grid()
	ex := s.EMF().Report(fields.E, 0)
	axes := [2]diagnostics.Axis{
		{Label: "x", Units: "c/wp", Min: 0, Max: g.Box()[0]},
		{Label: "y", Units: "c/wp", Min: 0, Max: g.Box()[1]},
	}
	return w.WriteScalarGrid(s.N(), s.T(), axes, g.Nx, ex)
}

func buildSimulation(f scenario.Fixture, seed0, seed1 uint32, workers int) (*sim.Simulation, error) {
	s, err := sim.New(sim.Config{
		Nx: f.Nx, Box: f.Box, Dt: f.Dt, Periodic: f.Periodic,
		Seed0: seed0, Seed1: seed1,
	})
	if err != nil {
		return nil, err
	}
	if workers > 1 {
		s.Workers = workers
	}

	for _, sf := range f.Species {
		profile, err := buildProfile(sf.Profile.Kind, sf.Profile.N, sf.Profile.Start, sf.Profile.End, sf.Profile.Ramp)
		if err != nil {
			return nil, fmt.Errorf("building density profile: %w", err)
		}
		cfg := species.Config{
			MQ: sf.MQ, ChargeSign: sf.ChargeSign, PPC: sf.PPC,
			Ufl: sf.Ufl, Uth: sf.Uth, Profile: profile,
			Boundary: [2]species.BoundaryKind{boundaryFor(f.Periodic[0]), boundaryFor(f.Periodic[1])},
		}
		if _, err := s.AddSpecies(cfg); err != nil {
			return nil, fmt.Errorf("adding species: %w", err)
		}
	}

	if f.Laser != nil {
		rise, flat, fall := laser.WithFWHM(f.Laser.FWHM)
		p := laser.Pulse{
			Profile: laser.Plane, A0: f.Laser.A0, Omega0: f.Laser.Omega0,
			Start: f.Laser.Start, Rise: rise, Flat: flat, Fall: fall,
		}
		if err := s.AddLaser(p); err != nil {
			return nil, fmt.Errorf("adding laser: %w", err)
		}
	}

	if f.MovingWindow {
		s.SetMovingWindow()
	}
	return s, nil
}

func boundaryFor(periodic bool) species.BoundaryKind {
	if periodic {
		return species.BoundaryPeriodic
	}
	return species.BoundaryOpen
}

func buildProfile(kind string, n, start, end, ramp float64) (species.DensityProfile, error) {
	switch kind {
	case "uniform":
		return species.Uniform(n), nil
	case "step":
		return species.Step(n, start), nil
	case "slab":
		return species.Slab(n, start, end), nil
	case "ramp":
		return species.Ramp(n, start, end, ramp), nil
	default:
		return species.DensityProfile{}, fmt.Errorf("unknown profile kind %q", kind)
	}
}
