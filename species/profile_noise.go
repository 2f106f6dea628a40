package species

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseProfile builds a custom density profile whose n(x) is a mean
// density plus amplitude times a 1D open-simplex noise field, clamped
// below at 0 (no upper clamp), for seeding turbulent or rippled initial density profiles
// (spec.md §3's "custom" profile is exactly this escape hatch). Grounded
// on the teacher's use of Perlin-family noise for terrain/resource
// density in systems/noise.go, swapped here for the pack's open-simplex
// library since spec.md's density profile is 1D and open-simplex avoids
// Perlin's directional grid artifacts along a single axis.
func NoiseProfile(seed int64, mean, amplitude, wavelength float64) DensityProfile {
	n := opensimplex.New(seed)
	return Custom(func(x float64) float64 {
		v := n.Eval2(x/wavelength, 0) // in [-1, 1]
		density := mean + amplitude*v
		if density < 0 {
			return 0
		}
		return density
	})
}
