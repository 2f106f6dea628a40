// Package smoothing implements the separable binomial/compensated current
// filter described in spec.md §4.3. It operates on flat [W*H]float64
// grids indexed row-major (y-major), the same layout current and fields
// use, and never touches field buffers — only current, after deposition.
package smoothing

// Mode selects the filter kernel applied after the binomial passes.
type Mode int

const (
	// Binomial applies only the [1,2,1]/4 passes.
	Binomial Mode = iota
	// Compensated follows the binomial passes with one [-1,6,-1]/4 pass
	// per axis, sharpening the short-wavelength attenuation back out.
	Compensated
)

// Filter holds the smoothing configuration: number of binomial passes
// along each axis, and the compensation mode.
type Filter struct {
	XLevel, YLevel int
	Mode           Mode
}

// New builds a Filter. xlevel=0, ylevel=0 is the identity (spec.md §8).
func New(xlevel, ylevel int, mode Mode) Filter {
	return Filter{XLevel: xlevel, YLevel: ylevel, Mode: mode}
}

// Apply smooths grid in place. W, H are the full buffer dimensions
// (including guard cells); periodic selects wrap vs clamp-at-edge
// behavior per axis, matching the field boundary policy.
func (f Filter) Apply(grid []float64, w, h int, periodic [2]bool) {
	scratch := make([]float64, w*h)
	for i := 0; i < f.XLevel; i++ {
		pass1DAxis(grid, scratch, w, h, 0, periodic[0], binomialKernel)
	}
	for i := 0; i < f.YLevel; i++ {
		pass1DAxis(grid, scratch, w, h, 1, periodic[1], binomialKernel)
	}
	if f.Mode == Compensated {
		if f.XLevel > 0 {
			pass1DAxis(grid, scratch, w, h, 0, periodic[0], compensateKernel)
		}
		if f.YLevel > 0 {
			pass1DAxis(grid, scratch, w, h, 1, periodic[1], compensateKernel)
		}
	}
}

// kernel1D computes out = k(left, center, right) for one interior sample.
type kernel1D func(left, center, right float64) float64

func binomialKernel(left, center, right float64) float64 {
	return 0.25*left + 0.5*center + 0.25*right
}

func compensateKernel(left, center, right float64) float64 {
	return -0.25*left + 1.5*center - 0.25*right
}

// pass1DAxis runs one 1D stencil pass along the given axis (0=x,1=y),
// reading from grid and writing through scratch, then copying back.
func pass1DAxis(grid, scratch []float64, w, h, axis int, periodic bool, k kernel1D) {
	if axis == 0 {
		for y := 0; y < h; y++ {
			base := y * w
			for x := 0; x < w; x++ {
				l, c, r := neighbors1D(grid, base, x, w, periodic)
				scratch[base+x] = k(l, c, r)
			}
		}
	} else {
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				l, c, r := neighbors1DStride(grid, x, y, w, h, periodic)
				scratch[y*w+x] = k(l, c, r)
			}
		}
	}
	copy(grid, scratch)
}

func neighbors1D(grid []float64, base, x, w int, periodic bool) (l, c, r float64) {
	c = grid[base+x]
	if x > 0 {
		l = grid[base+x-1]
	} else if periodic {
		l = grid[base+w-1]
	} else {
		l = c
	}
	if x < w-1 {
		r = grid[base+x+1]
	} else if periodic {
		r = grid[base]
	} else {
		r = c
	}
	return
}

func neighbors1DStride(grid []float64, x, y, w, h int, periodic bool) (l, c, r float64) {
	c = grid[y*w+x]
	if y > 0 {
		l = grid[(y-1)*w+x]
	} else if periodic {
		l = grid[(h-1)*w+x]
	} else {
		l = c
	}
	if y < h-1 {
		r = grid[(y+1)*w+x]
	} else if periodic {
		r = grid[x]
	} else {
		r = c
	}
	return
}
