package species

import "math"

// KineticEnergy returns this species' total relativistic kinetic energy,
// sum((gamma-1)*|MQ|*|w|) over every live particle, for the run-summary
// diagnostic (spec.md §6).
func (s *Species) KineticEnergy() float64 {
	mq := math.Abs(s.cfg.MQ)
	var total float64
	for _, slot := range s.activeList {
		ux, uy, uz := s.UX[slot], s.UY[slot], s.UZ[slot]
		gamma := math.Sqrt(1 + ux*ux + uy*uy + uz*uz)
		total += (gamma - 1) * mq * math.Abs(s.W[slot])
	}
	return total
}

// Charge CIC-deposits this species' charge density onto a caller-owned
// interior grid (row-major, Nx[0]*Nx[1], no guard cells), for the ZDF
// charge-density diagnostic of spec.md §6.
func (s *Species) Charge(out []float64) {
	nx0, nx1 := s.g.Nx[0], s.g.Nx[1]
	invArea := 1.0 / (s.g.Dx[0] * s.g.Dx[1])
	for _, slot := range s.activeList {
		ix, iy := int(s.IX[slot]), int(s.IY[slot])
		x, y := s.X[slot], s.Y[slot]
		w := s.W[slot] * invArea

		ix1, iy1 := (ix+1)%nx0, (iy+1)%nx1
		if !s.g.Periodic[0] && ix+1 >= nx0 {
			ix1 = ix
		}
		if !s.g.Periodic[1] && iy+1 >= nx1 {
			iy1 = iy
		}

		out[iy*nx0+ix] += w * (1 - x) * (1 - y)
		out[iy*nx0+ix1] += w * x * (1 - y)
		out[iy1*nx0+ix] += w * (1 - x) * y
		out[iy1*nx0+ix1] += w * x * y
	}
}

// PhasespaceAxis names the quantity sampled along one axis of a
// phasespace histogram.
type PhasespaceAxis int

const (
	AxisX PhasespaceAxis = iota
	AxisY
	AxisUX
	AxisUY
	AxisUZ
)

// Phasespace bins every active particle's (q1,q2) pair into an nx1 x nx2
// histogram over [range1[0],range1[1]) x [range2[0],range2[1]), weighted
// by charge (spec.md §6 "phasespace diagnostics"). Out-of-range particles
// are dropped, matching the reference engine's behavior of reporting only
// the requested window.
func (s *Species) Phasespace(q1, q2 PhasespaceAxis, nx1, nx2 int, range1, range2 [2]float64) []float64 {
	out := make([]float64, nx1*nx2)
	w1 := float64(nx1) / (range1[1] - range1[0])
	w2 := float64(nx2) / (range2[1] - range2[0])

	for _, slot := range s.activeList {
		v1 := s.axisValue(slot, q1)
		v2 := s.axisValue(slot, q2)
		if v1 < range1[0] || v1 >= range1[1] || v2 < range2[0] || v2 >= range2[1] {
			continue
		}
		b1 := int((v1 - range1[0]) * w1)
		b2 := int((v2 - range2[0]) * w2)
		out[b2*nx1+b1] += s.W[slot]
	}
	return out
}

func (s *Species) axisValue(slot int32, axis PhasespaceAxis) float64 {
	switch axis {
	case AxisX:
		return (float64(s.IX[slot]) + s.X[slot]) * s.g.Dx[0]
	case AxisY:
		return (float64(s.IY[slot]) + s.Y[slot]) * s.g.Dx[1]
	case AxisUX:
		return s.UX[slot]
	case AxisUY:
		return s.UY[slot]
	case AxisUZ:
		return s.UZ[slot]
	default:
		return 0
	}
}
