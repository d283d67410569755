package trajectory

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SpeedSummary aggregates per-trajectory average speeds across a run.
// Percentiles follow the roadside-reporting convention: p85 is the
// usual basis for posted speed review.
type SpeedSummary struct {
	Samples int     `json:"samples"`
	MeanMps float64 `json:"mean_mps"`
	StdDev  float64 `json:"std_dev"`
	P50Mps  float64 `json:"p50_mps"`
	P85Mps  float64 `json:"p85_mps"`
	P95Mps  float64 `json:"p95_mps"`
}

// SummarizeSpeeds computes mean, standard deviation, and p50/p85/p95
// over the given speeds. An empty input yields a zero summary.
func SummarizeSpeeds(speeds []float64) SpeedSummary {
	if len(speeds) == 0 {
		return SpeedSummary{}
	}

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	s := SpeedSummary{
		Samples: len(sorted),
		MeanMps: mean,
		P50Mps:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P85Mps:  stat.Quantile(0.85, stat.Empirical, sorted, nil),
		P95Mps:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	// MeanStdDev returns NaN stddev for a single sample.
	if len(sorted) > 1 {
		s.StdDev = std
	}
	return s
}
