// Package laser injects plane and Gaussian laser pulses into an EMF at
// t=0, following the standard paraxial envelope of spec.md §4.1. A Pulse
// implements fields.LaserSource; the dependency runs laser -> fields,
// never the other way, so fields stays ignorant of pulse shapes.
package laser

import (
	"errors"
	"fmt"
	"math"

	"github.com/nullplasma/pic2d/fields"
	"github.com/nullplasma/pic2d/grid"
)

// ErrInvalidPulse is wrapped by every pulse configuration error.
var ErrInvalidPulse = errors.New("laser: invalid configuration")

// Profile selects the pulse's transverse shape.
type Profile int

const (
	// Plane ignores the transverse (y) coordinate entirely.
	Plane Profile = iota
	// Gaussian applies a Gaussian transverse envelope around FocusY with
	// waist W0, focused at FocusX.
	Gaussian
)

// Pulse describes one laser pulse's paraxial envelope parameters
// (spec.md §4.1: a0, omega0, polarization angle, start, rise/flat/fall or
// fwhm, focal waist W0, focus position, transverse axis).
type Pulse struct {
	Profile    Profile
	A0         float64 // normalized vector potential amplitude
	Omega0     float64 // carrier frequency
	Polarization float64 // polarization angle, radians, measured from y axis

	Start              float64 // physical x where the pulse envelope begins
	Rise, Flat, Fall   float64 // envelope segment lengths; FWHM form below converts into these
	W0                 float64 // focal waist (Gaussian only)
	FocusX, FocusY     float64 // focus position (Gaussian only)
}

// WithFWHM builds the Rise/Flat/Fall triple from a full-width-half-max
// pulse length: a sin^2 ramp reaches half max halfway along its length,
// so Rise = Fall = fwhm, Flat = 0 puts the two half-max points fwhm apart.
func WithFWHM(fwhm float64) (rise, flat, fall float64) {
	return fwhm, 0, fwhm
}

// Validate checks the pulse against spec.md §7's configuration-error rules.
func (p Pulse) Validate() error {
	if p.Omega0 <= 0 {
		return fmt.Errorf("%w: omega0=%g must be positive", ErrInvalidPulse, p.Omega0)
	}
	if p.Rise < 0 || p.Flat < 0 || p.Fall < 0 {
		return fmt.Errorf("%w: rise/flat/fall must be nonnegative", ErrInvalidPulse)
	}
	if p.Profile == Gaussian && p.W0 <= 0 {
		return fmt.Errorf("%w: gaussian pulse requires W0 > 0", ErrInvalidPulse)
	}
	return nil
}

// envelope returns the sin^2-ramped temporal/longitudinal envelope at
// distance xi into the pulse (xi = 0 at the rise's start): 0 before rise,
// sin^2-ramped through rise, 1 through flat, sin^2-ramped down through
// fall, 0 after.
func (p Pulse) envelope(xi float64) float64 {
	switch {
	case xi < 0:
		return 0
	case xi < p.Rise:
		return sin2(xi / p.Rise)
	case xi < p.Rise+p.Flat:
		return 1
	case xi < p.Rise+p.Flat+p.Fall:
		return sin2(1 - (xi-p.Rise-p.Flat)/p.Fall)
	default:
		return 0
	}
}

func sin2(u float64) float64 {
	s := math.Sin(0.5 * math.Pi * u)
	return s * s
}

// transverse returns the Gaussian transverse falloff at y (1 for Plane).
func (p Pulse) transverse(y float64) float64 {
	if p.Profile != Gaussian {
		return 1
	}
	dy := y - p.FocusY
	return math.Exp(-(dy * dy) / (p.W0 * p.W0))
}

// Inject sums this pulse's fields into f at t=0. A plane EM wave
// travelling in +x with E polarized at angle Polarization and |B|=|E|
// (natural units, c=1) satisfies the free-space dispersion relation
// exactly, so injecting it directly (rather than ramping it up over
// time) gives a clean initial condition for scenario 3 and 4 of spec.md
// §8.
func (p Pulse) Inject(f *fields.EMF) {
	g := gridOf(f)
	cosPol, sinPol := math.Cos(p.Polarization), math.Sin(p.Polarization)

	for iy := 0; iy < g.Nx[1]; iy++ {
		y := float64(iy) * g.Dx[1]
		trans := p.transverse(y)
		for ix := 0; ix < g.Nx[0]; ix++ {
			x := float64(ix) * g.Dx[0]
			xi := x - p.Start
			amp := p.A0 * p.envelope(xi) * trans * math.Sin(p.Omega0*xi)

			idx := f.Index(ix, iy)
			ey := amp * cosPol
			ez := amp * sinPol
			f.Ey[idx] += ey
			f.Ez[idx] += ez
			// For a +x travelling wave, B = khat x E, so Bz tracks Ey and
			// By tracks -Ez.
			f.Bz[idx] += ey
			f.By[idx] -= ez
		}
	}
}

// gridOf recovers the grid.Params an EMF was built on via its Grid
// accessor; laser needs Nx/Dx directly for the injection sweep, so it
// asks fields for the grid rather than duplicating it in Pulse.
func gridOf(f *fields.EMF) *grid.Params {
	return f.Grid()
}
