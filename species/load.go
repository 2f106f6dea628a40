package species

import (
	"github.com/nullplasma/pic2d/grid"
	"github.com/nullplasma/pic2d/rng"
)

const minDensity = 1e-6

// New validates cfg and constructs a Species against the shared grid g,
// loading its initial particle population from cfg.Profile. src drives
// thermal velocity sampling.
func New(cfg Config, g *grid.Params, src *rng.Source) (*Species, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Species{cfg: cfg, g: g, normal: rng.NewNormal(src)}
	s.loadRegion(0, g.Nx[0])
	return s, nil
}

// loadRegion seeds particles for cells [ixStart, ixEnd) across the full
// y extent, from cfg.Profile. Used both by New (full-grid load) and by
// the moving window (loading just the newly exposed right-edge column,
// spec.md §4.5).
func (s *Species) loadRegion(ixStart, ixEnd int) {
	p0, p1 := s.cfg.PPC[0], s.cfg.PPC[1]
	invPPC := 1.0 / float64(p0*p1)
	for ix := ixStart; ix < ixEnd; ix++ {
		xCenter := (float64(ix) + 0.5) * s.g.Dx[0]
		n := s.cfg.Profile.Sample(xCenter)
		if n < minDensity {
			continue
		}
		w := s.cfg.ChargeSign * n * invPPC
		for iy := 0; iy < s.g.Nx[1]; iy++ {
			for l := 0; l < p1; l++ {
				for k := 0; k < p0; k++ {
					slot := s.allocSlot()
					s.IX[slot] = int32(ix)
					s.IY[slot] = int32(iy)
					s.X[slot] = (float64(k) + 0.5) / float64(p0)
					s.Y[slot] = (float64(l) + 0.5) / float64(p1)
					s.UX[slot] = s.cfg.Ufl[0] + s.cfg.Uth[0]*s.normal.Next()
					s.UY[slot] = s.cfg.Ufl[1] + s.cfg.Uth[1]*s.normal.Next()
					s.UZ[slot] = s.cfg.Ufl[2] + s.cfg.Uth[2]*s.normal.Next()
					s.W[slot] = w
					s.activeList = append(s.activeList, slot)
				}
			}
		}
	}
}
