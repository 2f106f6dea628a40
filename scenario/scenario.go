// Package scenario holds YAML fixtures describing the six
// end-to-end scenarios of spec.md §8. These are ambient test tooling —
// consumed by sim/scenarios_test.go and by the cmd/pic2d driver's named
// scenarios — not the user-facing parameterization surface the spec's
// Non-goals exclude.
package scenario

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/free_streaming.yaml
var freeStreamingYAML []byte

//go:embed fixtures/two_stream.yaml
var twoStreamYAML []byte

//go:embed fixtures/em_wave.yaml
var emWaveYAML []byte

//go:embed fixtures/laser_plasma.yaml
var laserPlasmaYAML []byte

//go:embed fixtures/moving_window.yaml
var movingWindowYAML []byte

//go:embed fixtures/smoothing_idempotence.yaml
var smoothingIdempotenceYAML []byte

// SpeciesFixture mirrors species.Config's YAML-decodable shape.
type SpeciesFixture struct {
	MQ         float64    `yaml:"mq"`
	ChargeSign float64    `yaml:"charge_sign"`
	PPC        [2]int     `yaml:"ppc"`
	Ufl        [3]float64 `yaml:"ufl"`
	Uth        [3]float64 `yaml:"uth"`
	Profile    struct {
		Kind  string  `yaml:"kind"`
		N     float64 `yaml:"n"`
		Start float64 `yaml:"start"`
		End   float64 `yaml:"end"`
		Ramp  float64 `yaml:"ramp"`
	} `yaml:"profile"`
}

// LaserFixture mirrors laser.Pulse's YAML-decodable shape.
type LaserFixture struct {
	A0     float64 `yaml:"a0"`
	Omega0 float64 `yaml:"omega0"`
	FWHM   float64 `yaml:"fwhm"`
	Start  float64 `yaml:"start"`
}

// Fixture is one end-to-end scenario's literal inputs (spec.md §8).
type Fixture struct {
	Name         string           `yaml:"name"`
	Nx           [2]int           `yaml:"nx"`
	Box          [2]float64       `yaml:"box"`
	Dt           float64          `yaml:"dt"`
	Periodic     [2]bool          `yaml:"periodic"`
	Steps        int              `yaml:"steps"`
	MovingWindow bool             `yaml:"moving_window"`
	Species      []SpeciesFixture `yaml:"species"`
	Laser        *LaserFixture    `yaml:"laser"`
}

// Load decodes raw YAML fixture bytes into a Fixture.
func Load(raw []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fixture{}, fmt.Errorf("scenario: decoding fixture: %w", err)
	}
	return f, nil
}

// FreeStreamingColdBeam is scenario 1 of spec.md §8.
func FreeStreamingColdBeam() (Fixture, error) { return Load(freeStreamingYAML) }

// TwoStreamInstability is scenario 2.
func TwoStreamInstability() (Fixture, error) { return Load(twoStreamYAML) }

// EMWavePropagation is scenario 3.
func EMWavePropagation() (Fixture, error) { return Load(emWaveYAML) }

// RelativisticLaserPlasma is scenario 4.
func RelativisticLaserPlasma() (Fixture, error) { return Load(laserPlasmaYAML) }

// MovingWindowCopropagation is scenario 5.
func MovingWindowCopropagation() (Fixture, error) { return Load(movingWindowYAML) }

// SmoothingIdempotence is scenario 6.
func SmoothingIdempotence() (Fixture, error) { return Load(smoothingIdempotenceYAML) }
