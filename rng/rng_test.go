package rng

import "testing"

func TestDeterministicStream(t *testing.T) {
	a := New(12345, 67890)
	b := New(12345, 67890)
	for i := 0; i < 1000; i++ {
		va := a.Uint64()
		vb := b.Uint64()
		if va != vb {
			t.Fatalf("streams diverged at index %d: %d != %d", i, va, vb)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1, 2)
	b := New(3, 4)
	same := true
	for i := 0; i < 8; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("expected different seeds to produce different streams")
	}
}

func TestFloat64Range(t *testing.T) {
	s := New(42, 24)
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() out of range: %f", v)
		}
	}
}

func TestNormalMeanAndVariance(t *testing.T) {
	s := New(7, 9)
	n := NewNormal(s)
	const samples = 200000
	var sum, sumSq float64
	for i := 0; i < samples; i++ {
		v := n.Next()
		sum += v
		sumSq += v * v
	}
	mean := sum / samples
	variance := sumSq/samples - mean*mean
	if mean < -0.02 || mean > 0.02 {
		t.Errorf("mean out of range: %f", mean)
	}
	if variance < 0.95 || variance > 1.05 {
		t.Errorf("variance out of range: %f", variance)
	}
}
