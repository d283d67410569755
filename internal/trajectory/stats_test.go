package trajectory

import (
	"math"
	"testing"
)

func TestSummarizeSpeeds_Empty(t *testing.T) {
	s := SummarizeSpeeds(nil)
	if s.Samples != 0 || s.MeanMps != 0 || s.P85Mps != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestSummarizeSpeeds_SingleSample(t *testing.T) {
	s := SummarizeSpeeds([]float64{7.5})
	if s.Samples != 1 {
		t.Errorf("samples = %d, want 1", s.Samples)
	}
	if s.MeanMps != 7.5 || s.P50Mps != 7.5 || s.P95Mps != 7.5 {
		t.Errorf("single sample summary wrong: %+v", s)
	}
	if s.StdDev != 0 || math.IsNaN(s.StdDev) {
		t.Errorf("single sample stddev must be 0, got %v", s.StdDev)
	}
}

func TestSummarizeSpeeds_Percentiles(t *testing.T) {
	speeds := []float64{3, 10, 1, 8, 5, 2, 9, 4, 7, 6} // 1..10 shuffled
	s := SummarizeSpeeds(speeds)

	if s.Samples != 10 {
		t.Errorf("samples = %d, want 10", s.Samples)
	}
	if math.Abs(s.MeanMps-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", s.MeanMps)
	}
	if s.P50Mps != 5 {
		t.Errorf("p50 = %v, want 5", s.P50Mps)
	}
	if s.P85Mps != 9 {
		t.Errorf("p85 = %v, want 9", s.P85Mps)
	}
	if s.P95Mps != 10 {
		t.Errorf("p95 = %v, want 10", s.P95Mps)
	}
	if s.StdDev <= 0 {
		t.Errorf("stddev should be positive, got %v", s.StdDev)
	}

	// Input order must not matter and input must not be mutated.
	if speeds[0] != 3 {
		t.Error("input slice was mutated")
	}
}
