// Package analysis orchestrates the trajectory pipeline over stored
// datasets: load observations, derive trajectories, compute metrics and
// spatial bounds, and persist the result as an analysis run.
package analysis

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roadmetric-data/trajectory.report/internal/column"
	"github.com/roadmetric-data/trajectory.report/internal/config"
	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/monitoring"
	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
)

// Result bundles a persisted run with its trajectory rows and the speed
// summary computed over them.
type Result struct {
	Run          db.Run
	Trajectories []db.RunTrajectory
	Summary      trajectory.SpeedSummary
}

// DeriveDataset runs the full pipeline over a dataset and persists the
// outcome as a new analysis run. cfg may be nil, in which case defaults
// apply (millisecond ticks, unbudgeted allocation).
func DeriveDataset(store *db.DB, cfg *config.AnalysisConfig, datasetID int64) (*Result, error) {
	cols, err := store.LoadObservations(datasetID)
	if err != nil {
		return nil, err
	}

	var opts []trajectory.Option
	opts = append(opts, trajectory.WithTimestampUnit(cfg.GetTimestampUnit()))
	if limit := cfg.GetAllocatorLimitElements(); limit > 0 {
		opts = append(opts, trajectory.WithAllocator(column.NewAllocator(limit)))
	}

	d, err := trajectory.Derive(cols.X, cols.Y, cols.ID, cols.Timestamp, opts...)
	if err != nil {
		return nil, fmt.Errorf("derive failed for dataset %d: %w", datasetID, err)
	}

	dist, speed, err := trajectory.DistanceAndSpeed(d.X, d.Y, d.Timestamp, d.Length, d.Offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("distance/speed failed for dataset %d: %w", datasetID, err)
	}

	bounds, err := trajectory.SpatialBounds(d.X, d.Y, d.Length, d.Offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("spatial bounds failed for dataset %d: %w", datasetID, err)
	}

	run := db.Run{
		RunID:            fmt.Sprintf("run_%s", uuid.NewString()),
		DatasetID:        datasetID,
		TrajectoryCount:  d.Count,
		ObservationCount: cols.Len(),
	}

	trajectories := make([]db.RunTrajectory, d.Count)
	for i := 0; i < d.Count; i++ {
		trajectories[i] = db.RunTrajectory{
			TrajectoryID: int32(i),
			ObjectID:     d.ID[d.Offset[i]],
			Length:       d.Length[i],
			StartIndex:   d.Offset[i],
			DistanceM:    dist[i],
			AvgSpeedMps:  speed[i],
			BboxX1:       bounds.X1[i],
			BboxY1:       bounds.Y1[i],
			BboxX2:       bounds.X2[i],
			BboxY2:       bounds.Y2[i],
		}
	}

	if err := store.SaveRun(run, trajectories); err != nil {
		return nil, err
	}
	monitoring.Logf("analysis: run %s over dataset %d: %d observations, %d trajectories",
		run.RunID, datasetID, run.ObservationCount, run.TrajectoryCount)

	return &Result{
		Run:          run,
		Trajectories: trajectories,
		Summary:      Summarize(cfg, trajectories),
	}, nil
}

// Summarize computes the speed summary over a run's trajectories,
// applying the configured length filter and speed plausibility cap.
func Summarize(cfg *config.AnalysisConfig, trajectories []db.RunTrajectory) trajectory.SpeedSummary {
	minPoints := cfg.GetMinTrajectoryPoints()
	speedCap := cfg.GetSpeedCapMps()

	speeds := make([]float64, 0, len(trajectories))
	for _, tr := range trajectories {
		if int(tr.Length) < minPoints {
			continue
		}
		if tr.AvgSpeedMps > speedCap {
			continue
		}
		speeds = append(speeds, tr.AvgSpeedMps)
	}
	return trajectory.SummarizeSpeeds(speeds)
}
