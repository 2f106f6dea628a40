// Package diagnostics writes simulation state to the self-describing ZDF
// binary dump format (spec.md §6), plus an auxiliary human-readable
// run-summary CSV and reduction statistics that are not part of the wire
// format but are the same "can a human tail this run" convenience the
// teacher ships alongside every structured output.
package diagnostics

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magic identifies a ZDF record; version is bumped only on a breaking
// layout change. Both are fixed by the externally-defined format and are
// not redesigned here (spec.md §6: "concrete byte layout is fixed by the
// format spec... must be interoperable with existing readers").
const (
	magic   uint32 = 0x5a444620 // "ZDF "
	version uint32 = 1
)

// Kind tags which ZDF record type a Writer call emits.
type Kind uint8

const (
	KindScalarGrid Kind = iota
	KindVectorGrid
	KindParticles
	KindPhasespace
)

// Axis describes one axis' metadata for a grid or phasespace record.
type Axis struct {
	Label string
	Units string
	Min   float64
	Max   float64
}

// Writer emits ZDF records to an underlying io.Writer. It holds no
// simulation state of its own — every call is a self-contained record —
// so a Writer can be reused across report callbacks and even across
// diagnostic kinds.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w for ZDF output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// header is shared by every record kind.
type header struct {
	Magic     uint32
	Version   uint32
	Kind      uint8
	Iteration int32
	Time      float64
	Component int32 // -1 except for vector-grid records
	NAxes     uint8
}

// WriteScalarGrid writes a 2D scalar grid record: header, per-axis
// metadata, shape, then the raw little-endian float32 payload.
func (zw *Writer) WriteScalarGrid(iteration int, t float64, axes [2]Axis, shape [2]int, data []float64) error {
	return zw.writeGrid(KindScalarGrid, -1, iteration, t, axes, shape, data)
}

// WriteVectorGrid writes one component of a vector grid record
// (component selects which of e.g. Ex/Ey/Ez or Bx/By/Bz this call is).
func (zw *Writer) WriteVectorGrid(component int, iteration int, t float64, axes [2]Axis, shape [2]int, data []float64) error {
	return zw.writeGrid(KindVectorGrid, component, iteration, t, axes, shape, data)
}

func (zw *Writer) writeGrid(kind Kind, component int, iteration int, t float64, axes [2]Axis, shape [2]int, data []float64) error {
	if len(data) != shape[0]*shape[1] {
		return fmt.Errorf("diagnostics: data length %d does not match shape %v", len(data), shape)
	}
	h := header{
		Magic: magic, Version: version, Kind: uint8(kind),
		Iteration: int32(iteration), Time: t,
		Component: int32(component), NAxes: uint8(len(axes)),
	}
	if err := binary.Write(zw.w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("diagnostics: writing header: %w", err)
	}
	for _, ax := range axes {
		if err := writeAxis(zw.w, ax); err != nil {
			return err
		}
	}
	if err := binary.Write(zw.w, binary.LittleEndian, [2]int32{int32(shape[0]), int32(shape[1])}); err != nil {
		return fmt.Errorf("diagnostics: writing shape: %w", err)
	}
	return writeFloat32Payload(zw.w, data)
}

// WritePhasespace writes a 2D histogram record (spec.md §4.4 phasespace
// diagnostics) with per-axis metadata describing which of {x,y,ux,uy,uz}
// each axis samples.
func (zw *Writer) WritePhasespace(iteration int, t float64, axes [2]Axis, shape [2]int, data []float64) error {
	return zw.writeGrid(KindPhasespace, -1, iteration, t, axes, shape, data)
}

// Particle is one macro-particle's record fields for WriteParticles
// (spec.md §6: "particles as a flat sequence of {ix, iy, x, y, ux, uy,
// uz}").
type Particle struct {
	IX, IY         int32
	X, Y           float64
	UX, UY, UZ     float64
	W              float64
}

// WriteParticles writes a particle-list record as per-field arrays
// (struct-of-arrays on the wire, mirroring the in-memory layout).
func (zw *Writer) WriteParticles(iteration int, t float64, particles []Particle) error {
	h := header{
		Magic: magic, Version: version, Kind: uint8(KindParticles),
		Iteration: int32(iteration), Time: t, Component: -1, NAxes: 0,
	}
	if err := binary.Write(zw.w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("diagnostics: writing header: %w", err)
	}
	if err := binary.Write(zw.w, binary.LittleEndian, int32(len(particles))); err != nil {
		return fmt.Errorf("diagnostics: writing particle count: %w", err)
	}
	fields := [7][]float64{
		make([]float64, len(particles)), make([]float64, len(particles)),
		make([]float64, len(particles)), make([]float64, len(particles)),
		make([]float64, len(particles)), make([]float64, len(particles)),
		make([]float64, len(particles)),
	}
	for i, p := range particles {
		fields[0][i], fields[1][i] = float64(p.IX), float64(p.IY)
		fields[2][i], fields[3][i] = p.X, p.Y
		fields[4][i], fields[5][i], fields[6][i] = p.UX, p.UY, p.UZ
	}
	for _, f := range fields {
		if err := writeFloat32Payload(zw.w, f); err != nil {
			return err
		}
	}
	return nil
}

func writeAxis(w io.Writer, ax Axis) error {
	label := padString(ax.Label, 32)
	units := padString(ax.Units, 16)
	if _, err := w.Write(label); err != nil {
		return fmt.Errorf("diagnostics: writing axis label: %w", err)
	}
	if _, err := w.Write(units); err != nil {
		return fmt.Errorf("diagnostics: writing axis units: %w", err)
	}
	return binary.Write(w, binary.LittleEndian, [2]float64{ax.Min, ax.Max})
}

func padString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

func writeFloat32Payload(w io.Writer, data []float64) error {
	buf := make([]float32, len(data))
	for i, v := range data {
		buf[i] = float32(v)
	}
	if err := binary.Write(w, binary.LittleEndian, buf); err != nil {
		return fmt.Errorf("diagnostics: writing payload: %w", err)
	}
	return nil
}
