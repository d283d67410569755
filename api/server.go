// Package api exposes the trajectory pipeline over HTTP: dataset
// ingest, derive runs, run metrics, point subsetting, and HTML reports.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/roadmetric-data/trajectory.report/internal/analysis"
	"github.com/roadmetric-data/trajectory.report/internal/config"
	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/httputil"
	"github.com/roadmetric-data/trajectory.report/internal/ingest"
	"github.com/roadmetric-data/trajectory.report/internal/monitoring"
	"github.com/roadmetric-data/trajectory.report/internal/report"
	"github.com/roadmetric-data/trajectory.report/internal/timeutil"
	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
	"github.com/roadmetric-data/trajectory.report/internal/units"
	"github.com/roadmetric-data/trajectory.report/internal/version"
)

// Server serves the trajectory analytics API.
type Server struct {
	db    *db.DB
	cfg   *config.AnalysisConfig
	clock timeutil.Clock
}

// NewServer creates a Server over the given store and analysis config.
// cfg may be nil; defaults then apply.
func NewServer(database *db.DB, cfg *config.AnalysisConfig) *Server {
	return &Server{db: database, cfg: cfg, clock: timeutil.RealClock{}}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/datasets", s.logged(s.handleDatasets))
	mux.HandleFunc("/api/derive", s.logged(s.handleDerive))
	mux.HandleFunc("/api/runs", s.logged(s.handleRuns))
	mux.HandleFunc("/api/run", s.logged(s.handleRun))
	mux.HandleFunc("/api/subset", s.logged(s.handleSubset))
	mux.HandleFunc("/api/report", s.logged(s.handleReport))
	mux.HandleFunc("/", s.handleHome)
	return mux
}

// logged wraps a handler with request duration logging.
func (s *Server) logged(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		h(w, r)
		monitoring.Logf("api: %s %s (%s)", r.Method, r.URL.Path, s.clock.Since(start))
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintf(w, "trajectory.report analytics server %s\n", version.String())
}

// statusForError maps pipeline and store failures to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trajectory.ErrInvalidArgument),
		errors.Is(err, trajectory.ErrOutOfBounds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleDatasets lists datasets (GET) or creates one from a CSV body
// (POST with ?name=).
func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		datasets, err := s.db.ListDatasets()
		if err != nil {
			httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"datasets": datasets})

	case http.MethodPost:
		name := r.URL.Query().Get("name")
		if name == "" {
			httputil.BadRequest(w, "missing name parameter")
			return
		}
		res, err := ingest.ReadCSV(r.Body)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		id, err := s.db.CreateDataset(name)
		if err != nil {
			httputil.WriteJSONError(w, http.StatusConflict, err.Error())
			return
		}
		if err := s.db.InsertObservations(id, res.Columns); err != nil {
			httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"dataset_id":   id,
			"name":         name,
			"observations": res.Columns.Len(),
			"skipped_rows": res.Skipped,
		})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleDerive runs the pipeline over a dataset (POST ?dataset=ID).
func (s *Server) handleDerive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	datasetID, err := strconv.ParseInt(r.URL.Query().Get("dataset"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "missing or invalid dataset parameter")
		return
	}
	if _, err := s.db.GetDataset(datasetID); err != nil {
		httputil.WriteJSONError(w, statusForError(err), err.Error())
		return
	}

	res, err := analysis.DeriveDataset(s.db, s.cfg, datasetID)
	if err != nil {
		httputil.WriteJSONError(w, statusForError(err), err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"run":           res.Run,
		"trajectories":  res.Trajectories,
		"speed_summary": res.Summary,
	})
}

// handleRuns lists runs, optionally filtered by ?dataset=ID.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	var datasetID int64
	if v := r.URL.Query().Get("dataset"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			httputil.BadRequest(w, "invalid dataset parameter")
			return
		}
		datasetID = parsed
	}
	runs, err := s.db.ListRuns(datasetID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// handleRun returns one run with its trajectories and speed summary.
// Speeds are stored in m/s; ?units=mph or ?units=kmph adds converted
// display speeds alongside.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "missing run_id parameter")
		return
	}
	unit := r.URL.Query().Get("units")
	if unit == "" {
		unit = units.MPS
	}
	if !units.IsValid(unit) {
		httputil.BadRequest(w, fmt.Sprintf("unsupported units %q", unit))
		return
	}
	run, err := s.db.GetRun(runID)
	if err != nil {
		httputil.WriteJSONError(w, statusForError(err), err.Error())
		return
	}
	trajectories, err := s.db.RunTrajectories(runID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	speedsMps := make([]float64, len(trajectories))
	for i, tr := range trajectories {
		speedsMps[i] = tr.AvgSpeedMps
	}
	displaySpeeds, err := units.ConvertSpeeds(speedsMps, unit)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run":            run,
		"trajectories":   trajectories,
		"speed_summary":  analysis.Summarize(s.cfg, trajectories),
		"speed_units":    unit,
		"display_speeds": displaySpeeds,
	})
}

// handleSubset returns the observations of selected object ids within a
// dataset, in (object_id, timestamp) order (GET ?dataset=ID&ids=1,2,3).
func (s *Server) handleSubset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	datasetID, err := strconv.ParseInt(r.URL.Query().Get("dataset"), 10, 64)
	if err != nil {
		httputil.BadRequest(w, "missing or invalid dataset parameter")
		return
	}
	var selected []int32
	for _, part := range strings.Split(r.URL.Query().Get("ids"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 32)
		if err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid id %q", part))
			return
		}
		selected = append(selected, int32(id))
	}

	cols, err := s.db.LoadObservations(datasetID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	subset, err := trajectory.SubsetByID(selected, cols.X, cols.Y, cols.ID, cols.Timestamp)
	if err != nil {
		httputil.WriteJSONError(w, statusForError(err), err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"x":                subset.X,
		"y":                subset.Y,
		"object_id":        subset.ID,
		"timestamp":        subset.Timestamp,
		"trajectory_count": subset.Count,
	})
}

// handleReport renders the HTML report for a run (GET ?run_id=).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httputil.BadRequest(w, "missing run_id parameter")
		return
	}
	run, err := s.db.GetRun(runID)
	if err != nil {
		httputil.WriteJSONError(w, statusForError(err), err.Error())
		return
	}
	trajectories, err := s.db.RunTrajectories(runID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Reports plot the sorted point order the run was computed in.
	cols, err := s.db.LoadObservations(run.DatasetID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	d, err := trajectory.Derive(cols.X, cols.Y, cols.ID, cols.Timestamp)
	if err != nil {
		httputil.WriteJSONError(w, statusForError(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = report.Render(w, report.Input{
		Run:          *run,
		Trajectories: trajectories,
		Points:       trajectory.Columns{X: d.X, Y: d.Y, ID: d.ID, Timestamp: d.Timestamp},
		Summary:      analysis.Summarize(s.cfg, trajectories),
		MaxPoints:    s.cfg.GetReportMaxPoints(),
	})
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
