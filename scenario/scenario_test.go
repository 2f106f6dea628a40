package scenario

import "testing"

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load([]byte("nx: [1, 2\n")); err == nil {
		t.Fatalf("expected an error decoding malformed YAML")
	}
}

func TestAllSixFixturesLoadWithoutError(t *testing.T) {
	loaders := []func() (Fixture, error){
		FreeStreamingColdBeam, TwoStreamInstability, EMWavePropagation,
		RelativisticLaserPlasma, MovingWindowCopropagation, SmoothingIdempotence,
	}
	for _, load := range loaders {
		f, err := load()
		if err != nil {
			t.Fatalf("loading fixture: %v", err)
		}
		if f.Name == "" {
			t.Fatalf("expected fixture to have a name")
		}
		if f.Nx[0] <= 0 || f.Nx[1] <= 0 {
			t.Fatalf("expected a positive grid size, got %v", f.Nx)
		}
		if f.Dt <= 0 {
			t.Fatalf("expected a positive dt, got %g", f.Dt)
		}
	}
}
