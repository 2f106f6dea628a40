package diagnostics

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SummaryRow is one report callback's worth of human-readable run state,
// written by SummaryWriter alongside (never instead of) the ZDF binary
// record — mirrors telemetry/output.go's header-once-then-append CSV
// convention.
type SummaryRow struct {
	Iteration   int     `csv:"iteration"`
	Time        float64 `csv:"time"`
	FieldEnergy float64 `csv:"field_energy"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	TotalCharge float64 `csv:"total_charge"`
	MaxGaussResidual float64 `csv:"max_gauss_residual"`
}

// SummaryWriter appends SummaryRow records to an underlying io.Writer as
// CSV: the header is written on the first call only, matching
// telemetry/output.go's OutputManager.WriteTelemetry.
type SummaryWriter struct {
	w             io.Writer
	headerWritten bool
}

// NewSummaryWriter wraps w for run-summary CSV output.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	return &SummaryWriter{w: w}
}

// Write appends one summary row, emitting the CSV header on first use.
func (sw *SummaryWriter) Write(row SummaryRow) error {
	rows := []SummaryRow{row}
	var err error
	if !sw.headerWritten {
		err = gocsv.Marshal(rows, sw.w)
		sw.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, sw.w)
	}
	if err != nil {
		return fmt.Errorf("diagnostics: writing summary row: %w", err)
	}
	return nil
}

// EnergyStats holds mean/P10/P50/P90 over a set of per-particle or
// per-cell energy samples, computed via gonum/stat the same way
// cmd/optimize's objective reductions use the gonum/stat + gonum/floats
// pairing.
type EnergyStats struct {
	Mean, P10, P50, P90 float64
}

// Summarize computes EnergyStats over values. A sorted copy of values is
// used (stat.Quantile requires a sorted, weight-free input); values itself
// is left unchanged.
func Summarize(values []float64) EnergyStats {
	if len(values) == 0 {
		return EnergyStats{}
	}
	sorted := append([]float64(nil), values...)
	floats.Sort(sorted)
	return EnergyStats{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// GridNorm returns sum(v^2) over a flat grid array, via gonum/floats.Dot,
// matching fields.EMF.Energy's sum-of-squares convention.
func GridNorm(v []float64) float64 {
	return floats.Dot(v, v)
}
