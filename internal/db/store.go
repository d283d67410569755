package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
)

// ErrNotFound is returned when a dataset or run does not exist.
var ErrNotFound = errors.New("db: not found")

// Dataset is a named batch of raw observations.
type Dataset struct {
	ID               int64     `json:"dataset_id"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	ObservationCount int       `json:"observation_count"`
}

// Run records one derive invocation over a dataset.
type Run struct {
	RunID            string    `json:"run_id"`
	DatasetID        int64     `json:"dataset_id"`
	TrajectoryCount  int       `json:"trajectory_count"`
	ObservationCount int       `json:"observation_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// RunTrajectory is one derived trajectory with its metrics and spatial
// envelope. StartIndex is the trajectory's offset into the sorted
// observation order of its run.
type RunTrajectory struct {
	TrajectoryID int32   `json:"trajectory_id"`
	ObjectID     int32   `json:"object_id"`
	Length       int32   `json:"length"`
	StartIndex   int32   `json:"start_index"`
	DistanceM    float64 `json:"distance_m"`
	AvgSpeedMps  float64 `json:"avg_speed_mps"`
	BboxX1       float64 `json:"bbox_x1"`
	BboxY1       float64 `json:"bbox_y1"`
	BboxX2       float64 `json:"bbox_x2"`
	BboxY2       float64 `json:"bbox_y2"`
}

// CreateDataset inserts a named dataset and returns its id.
func (db *DB) CreateDataset(name string) (int64, error) {
	res, err := db.Exec(`INSERT INTO datasets (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create dataset %q: %w", name, err)
	}
	return res.LastInsertId()
}

// GetDataset returns a dataset by id.
func (db *DB) GetDataset(id int64) (*Dataset, error) {
	row := db.QueryRow(`
		SELECT d.dataset_id, d.name, d.created_at,
		       (SELECT COUNT(*) FROM observations o WHERE o.dataset_id = d.dataset_id)
		FROM datasets d WHERE d.dataset_id = ?`, id)

	var ds Dataset
	if err := row.Scan(&ds.ID, &ds.Name, &ds.CreatedAt, &ds.ObservationCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: dataset %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load dataset %d: %w", id, err)
	}
	return &ds, nil
}

// ListDatasets returns all datasets, newest first.
func (db *DB) ListDatasets() ([]Dataset, error) {
	rows, err := db.Query(`
		SELECT d.dataset_id, d.name, d.created_at,
		       (SELECT COUNT(*) FROM observations o WHERE o.dataset_id = d.dataset_id)
		FROM datasets d ORDER BY d.dataset_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var ds Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.CreatedAt, &ds.ObservationCount); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// InsertObservations appends the given columns to a dataset inside a
// single transaction. Sequence numbers continue from any existing rows
// so repeated ingests into the same dataset are cumulative.
func (db *DB) InsertObservations(datasetID int64, cols trajectory.Columns) error {
	n := cols.Len()
	if len(cols.Y) != n || len(cols.ID) != n || len(cols.Timestamp) != n {
		return fmt.Errorf("db: mismatched column lengths x=%d y=%d id=%d ts=%d",
			n, len(cols.Y), len(cols.ID), len(cols.Timestamp))
	}
	if n == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(seq)+1, 0) FROM observations WHERE dataset_id = ?`,
		datasetID).Scan(&next); err != nil {
		return fmt.Errorf("failed to find next sequence: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO observations (dataset_id, seq, x, y, object_id, ts) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(datasetID, next+int64(i),
			cols.X[i], cols.Y[i], cols.ID[i], cols.Timestamp[i]); err != nil {
			return fmt.Errorf("failed to insert observation %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// LoadObservations reads a dataset's observations back as parallel
// columns in ingest order.
func (db *DB) LoadObservations(datasetID int64) (trajectory.Columns, error) {
	rows, err := db.Query(
		`SELECT x, y, object_id, ts FROM observations WHERE dataset_id = ? ORDER BY seq`,
		datasetID)
	if err != nil {
		return trajectory.Columns{}, fmt.Errorf("failed to load observations: %w", err)
	}
	defer rows.Close()

	var cols trajectory.Columns
	for rows.Next() {
		var x, y float64
		var id int32
		var ts int64
		if err := rows.Scan(&x, &y, &id, &ts); err != nil {
			return trajectory.Columns{}, err
		}
		cols.X = append(cols.X, x)
		cols.Y = append(cols.Y, y)
		cols.ID = append(cols.ID, id)
		cols.Timestamp = append(cols.Timestamp, ts)
	}
	return cols, rows.Err()
}

// SaveRun persists an analysis run and its trajectories atomically.
func (db *DB) SaveRun(run Run, trajectories []RunTrajectory) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO analysis_runs (run_id, dataset_id, trajectory_count, observation_count)
		 VALUES (?, ?, ?, ?)`,
		run.RunID, run.DatasetID, run.TrajectoryCount, run.ObservationCount); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_trajectories (
			run_id, trajectory_id, object_id, length, start_index,
			distance_m, avg_speed_mps, bbox_x1, bbox_y1, bbox_x2, bbox_y2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trajectory insert: %w", err)
	}
	defer stmt.Close()

	for _, tr := range trajectories {
		if _, err := stmt.Exec(run.RunID, tr.TrajectoryID, tr.ObjectID, tr.Length,
			tr.StartIndex, tr.DistanceM, tr.AvgSpeedMps,
			tr.BboxX1, tr.BboxY1, tr.BboxX2, tr.BboxY2); err != nil {
			return fmt.Errorf("failed to insert trajectory %d: %w", tr.TrajectoryID, err)
		}
	}
	return tx.Commit()
}

// GetRun returns a run by id.
func (db *DB) GetRun(runID string) (*Run, error) {
	row := db.QueryRow(`
		SELECT run_id, dataset_id, trajectory_count, observation_count, created_at
		FROM analysis_runs WHERE run_id = ?`, runID)

	var r Run
	if err := row.Scan(&r.RunID, &r.DatasetID, &r.TrajectoryCount, &r.ObservationCount, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
		}
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return &r, nil
}

// ListRuns returns runs for a dataset, newest first. A datasetID of 0
// lists runs across all datasets.
func (db *DB) ListRuns(datasetID int64) ([]Run, error) {
	query := `SELECT run_id, dataset_id, trajectory_count, observation_count, created_at
		FROM analysis_runs`
	args := []interface{}{}
	if datasetID != 0 {
		query += ` WHERE dataset_id = ?`
		args = append(args, datasetID)
	}
	query += ` ORDER BY created_at DESC, run_id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.DatasetID, &r.TrajectoryCount, &r.ObservationCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunTrajectories returns a run's trajectories in trajectory id order.
func (db *DB) RunTrajectories(runID string) ([]RunTrajectory, error) {
	rows, err := db.Query(`
		SELECT trajectory_id, object_id, length, start_index,
		       distance_m, avg_speed_mps, bbox_x1, bbox_y1, bbox_x2, bbox_y2
		FROM run_trajectories WHERE run_id = ? ORDER BY trajectory_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trajectories for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []RunTrajectory
	for rows.Next() {
		var tr RunTrajectory
		if err := rows.Scan(&tr.TrajectoryID, &tr.ObjectID, &tr.Length, &tr.StartIndex,
			&tr.DistanceM, &tr.AvgSpeedMps,
			&tr.BboxX1, &tr.BboxY1, &tr.BboxX2, &tr.BboxY2); err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}
