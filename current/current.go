// Package current owns the J accumulator shared by every species during a
// step: one buffer, zeroed at the start of the step, written to by each
// species' zigzag deposition, then boundary-exchanged and optionally
// smoothed before the field solver consumes it.
package current

import (
	"github.com/nullplasma/pic2d/grid"
	"github.com/nullplasma/pic2d/smoothing"
)

// Buffer holds Jx, Jy, Jz on the same extended (guard-cell-inclusive) grid
// the field solver uses, so deposition and the curl stencils share index
// math.
type Buffer struct {
	g          *grid.Params
	w, h       int
	Jx, Jy, Jz []float64
	smooth     smoothing.Filter
}

// New allocates a current buffer sized to g's extended grid.
func New(g *grid.Params) *Buffer {
	ext := g.Extent()
	size := ext[0] * ext[1]
	return &Buffer{
		g:  g,
		w:  ext[0],
		h:  ext[1],
		Jx: make([]float64, size),
		Jy: make([]float64, size),
		Jz: make([]float64, size),
	}
}

// SetSmoothing configures the filter update() applies after boundaries.
func (b *Buffer) SetSmoothing(f smoothing.Filter) {
	b.smooth = f
}

// Zero clears the buffer. Called once at the start of every step.
func (b *Buffer) Zero() {
	clearF64(b.Jx)
	clearF64(b.Jy)
	clearF64(b.Jz)
}

func clearF64(s []float64) {
	for i := range s {
		s[i] = 0
	}
}

// Add accumulates a deposition contribution at extended-grid index idx.
// Called by species during push_and_deposit; overlapping writes from
// different particles are fine because there is exactly one writer
// (the current particle) at a time within a single-threaded step, and
// parallel pushers use private per-species buffers instead (see sim).
func (b *Buffer) Add(idx int, jx, jy, jz float64) {
	b.Jx[idx] += jx
	b.Jy[idx] += jy
	b.Jz[idx] += jz
}

// Index maps a physical or guard cell (ix,iy) to a flat offset, sharing
// grid.Params' convention.
func (b *Buffer) Index(ix, iy int) int {
	return b.g.Index(ix, iy)
}

// Dims returns the extended buffer width and height.
func (b *Buffer) Dims() (int, int) {
	return b.w, b.h
}

// Reduce adds another buffer's contents into this one, element-wise. Used
// to fold per-species private sub-buffers into the shared current buffer
// after a parallel particle push (spec.md §5).
func (b *Buffer) Reduce(other *Buffer) {
	for i := range b.Jx {
		b.Jx[i] += other.Jx[i]
		b.Jy[i] += other.Jy[i]
		b.Jz[i] += other.Jz[i]
	}
}

// Update applies boundary conditions (periodic wrap-add or open
// truncation) and then the configured smoothing filter. This is the only
// place current crosses from "raw deposition" to "what the field solver
// reads."
func (b *Buffer) Update() {
	b.applyBoundary(b.Jx)
	b.applyBoundary(b.Jy)
	b.applyBoundary(b.Jz)
	b.smooth.Apply(b.Jx, b.w, b.h, b.g.Periodic)
	b.smooth.Apply(b.Jy, b.w, b.h, b.g.Periodic)
	b.smooth.Apply(b.Jz, b.w, b.h, b.g.Periodic)
}

// applyBoundary folds guard-cell contributions back onto the physical
// edge: periodic axes wrap-add (a particle depositing into the guard
// region on one side is physically depositing near the opposite physical
// edge), open axes simply truncate (drop) the guard contribution.
func (b *Buffer) applyBoundary(j []float64) {
	nx, ny := b.g.Nx[0], b.g.Nx[1]
	gc := b.g.GC

	if b.g.Periodic[0] {
		for y := 0; y < b.h; y++ {
			base := y * b.w
			for g := 0; g < gc[0].Lo; g++ {
				src := base + g
				dst := base + gc[0].Lo + nx - gc[0].Lo + g
				j[dst] += j[src]
				j[src] = 0
			}
			for g := 0; g < gc[0].Hi; g++ {
				src := base + gc[0].Lo + nx + g
				dst := base + gc[0].Lo + g
				j[dst] += j[src]
				j[src] = 0
			}
		}
	} else {
		for y := 0; y < b.h; y++ {
			base := y * b.w
			for g := 0; g < gc[0].Lo; g++ {
				j[base+g] = 0
			}
			for g := 0; g < gc[0].Hi; g++ {
				j[base+gc[0].Lo+nx+g] = 0
			}
		}
	}

	if b.g.Periodic[1] {
		for g := 0; g < gc[1].Lo; g++ {
			srcRow := g
			dstRow := gc[1].Lo + ny - gc[1].Lo + g
			addRow(j, srcRow, dstRow, b.w)
		}
		for g := 0; g < gc[1].Hi; g++ {
			srcRow := gc[1].Lo + ny + g
			dstRow := gc[1].Lo + g
			addRow(j, srcRow, dstRow, b.w)
		}
	} else {
		for g := 0; g < gc[1].Lo; g++ {
			zeroRow(j, g, b.w)
		}
		for g := 0; g < gc[1].Hi; g++ {
			zeroRow(j, gc[1].Lo+ny+g, b.w)
		}
	}
}

func addRow(j []float64, srcRow, dstRow, w int) {
	srcBase, dstBase := srcRow*w, dstRow*w
	for x := 0; x < w; x++ {
		j[dstBase+x] += j[srcBase+x]
		j[srcBase+x] = 0
	}
}

func zeroRow(j []float64, row, w int) {
	base := row * w
	for x := 0; x < w; x++ {
		j[base+x] = 0
	}
}
