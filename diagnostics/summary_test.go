package diagnostics

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestSummaryWriterWritesHeaderOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	sw := NewSummaryWriter(&buf)
	if err := sw.Write(SummaryRow{Iteration: 0, Time: 0}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sw.Write(SummaryRow{Iteration: 1, Time: 0.05}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 1 header line + 2 data lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "iteration") {
		t.Fatalf("expected first line to be the CSV header, got %q", lines[0])
	}
}

func TestSummarizeComputesMeanAndMedian(t *testing.T) {
	stats := Summarize([]float64{1, 2, 3, 4, 5})
	if stats.Mean != 3 {
		t.Fatalf("expected mean 3, got %g", stats.Mean)
	}
	if stats.P50 != 3 {
		t.Fatalf("expected median 3, got %g", stats.P50)
	}
	if stats.P10 > stats.P50 || stats.P50 > stats.P90 {
		t.Fatalf("expected P10 <= P50 <= P90, got %g/%g/%g", stats.P10, stats.P50, stats.P90)
	}
}

func TestSummarizeEmptyInputIsZeroValue(t *testing.T) {
	stats := Summarize(nil)
	if stats != (EnergyStats{}) {
		t.Fatalf("expected zero-value EnergyStats for empty input, got %+v", stats)
	}
}

func TestGridNormIsSumOfSquares(t *testing.T) {
	v := []float64{1, 2, 3}
	got := GridNorm(v)
	want := 1.0 + 4.0 + 9.0
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected sum-of-squares %g, got %g", want, got)
	}
}
