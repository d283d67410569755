package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/monitoring"
	"github.com/roadmetric-data/trajectory.report/internal/timeutil"
)

const sampleCSV = `x,y,object_id,timestamp
0,0,1,10000
0,3,1,5000
5,0,2,1000
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database, err := db.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	srv := httptest.NewServer(NewServer(database, nil).ServeMux())
	t.Cleanup(srv.Close)
	return srv
}

func postCSV(t *testing.T, srv *httptest.Server, name string) int64 {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/datasets?name="+name, "text/csv",
		strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("POST datasets: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST datasets status = %d, want 201", resp.StatusCode)
	}
	var body struct {
		DatasetID int64 `json:"dataset_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode dataset response: %v", err)
	}
	return body.DatasetID
}

func deriveRun(t *testing.T, srv *httptest.Server, datasetID int64) string {
	t.Helper()
	resp, err := http.Post(srv.URL+fmt.Sprintf("/api/derive?dataset=%d", datasetID), "", nil)
	if err != nil {
		t.Fatalf("POST derive: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST derive status = %d, want 201", resp.StatusCode)
	}
	var body struct {
		Run db.Run `json:"run"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode derive response: %v", err)
	}
	return body.Run.RunID
}

func TestDatasetIngestAndDerive(t *testing.T) {
	srv := newTestServer(t)
	datasetID := postCSV(t, srv, "clip-a")

	resp, err := http.Post(srv.URL+"/api/derive?dataset=1", "", nil)
	if err != nil {
		t.Fatalf("POST derive: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("derive status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Run          db.Run             `json:"run"`
		Trajectories []db.RunTrajectory `json:"trajectories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Run.DatasetID != datasetID {
		t.Errorf("run dataset = %d, want %d", body.Run.DatasetID, datasetID)
	}
	if body.Run.TrajectoryCount != 2 || len(body.Trajectories) != 2 {
		t.Errorf("expected 2 trajectories, got run=%+v", body.Run)
	}
	if body.Trajectories[0].DistanceM != 3.0 {
		t.Errorf("trajectory 0 distance = %v, want 3.0", body.Trajectories[0].DistanceM)
	}
}

func TestRunEndpoints(t *testing.T) {
	srv := newTestServer(t)
	postCSV(t, srv, "clip-b")
	runID := deriveRun(t, srv, 1)

	resp, err := http.Get(srv.URL + "/api/run?run_id=" + runID)
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d, want 200", resp.StatusCode)
	}

	listResp, err := http.Get(srv.URL + "/api/runs?dataset=1")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	defer listResp.Body.Close()
	var list struct {
		Runs []db.Run `json:"runs"`
	}
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(list.Runs) != 1 || list.Runs[0].RunID != runID {
		t.Errorf("runs list = %+v, want single run %s", list.Runs, runID)
	}
}

func TestRun_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/run?run_id=run_missing")
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSubsetEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postCSV(t, srv, "clip-c")

	resp, err := http.Get(srv.URL + "/api/subset?dataset=1&ids=1")
	if err != nil {
		t.Fatalf("GET subset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("subset status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		ObjectID        []int32 `json:"object_id"`
		Timestamp       []int64 `json:"timestamp"`
		TrajectoryCount int     `json:"trajectory_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TrajectoryCount != 1 || len(body.ObjectID) != 2 {
		t.Errorf("expected 2 observations of object 1, got %+v", body)
	}
	if len(body.Timestamp) == 2 && body.Timestamp[0] > body.Timestamp[1] {
		t.Error("subset output must be timestamp-ordered within an object")
	}
}

func TestSubset_BadID(t *testing.T) {
	srv := newTestServer(t)
	postCSV(t, srv, "clip-d")

	resp, err := http.Get(srv.URL + "/api/subset?dataset=1&ids=abc")
	if err != nil {
		t.Fatalf("GET subset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postCSV(t, srv, "clip-e")
	runID := deriveRun(t, srv, 1)

	resp, err := http.Get(srv.URL + "/api/report?run_id=" + runID)
	if err != nil {
		t.Fatalf("GET report: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
}

func TestRun_DisplayUnits(t *testing.T) {
	srv := newTestServer(t)
	postCSV(t, srv, "clip-units")
	runID := deriveRun(t, srv, 1)

	resp, err := http.Get(srv.URL + "/api/run?run_id=" + runID + "&units=kmph")
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Trajectories  []db.RunTrajectory `json:"trajectories"`
		SpeedUnits    string             `json:"speed_units"`
		DisplaySpeeds []float64          `json:"display_speeds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SpeedUnits != "kmph" {
		t.Errorf("speed_units = %q, want kmph", body.SpeedUnits)
	}
	if len(body.DisplaySpeeds) != len(body.Trajectories) {
		t.Fatalf("display_speeds length = %d, want %d", len(body.DisplaySpeeds), len(body.Trajectories))
	}
	for i, tr := range body.Trajectories {
		want := tr.AvgSpeedMps * 3.6
		if diff := body.DisplaySpeeds[i] - want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("display_speeds[%d] = %v, want %v", i, body.DisplaySpeeds[i], want)
		}
	}
}

func TestRun_UnsupportedUnits(t *testing.T) {
	srv := newTestServer(t)
	postCSV(t, srv, "clip-badunits")
	runID := deriveRun(t, srv, 1)

	resp, err := http.Get(srv.URL + "/api/run?run_id=" + runID + "&units=knots")
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRequestLogging(t *testing.T) {
	database, err := db.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s := NewServer(database, nil)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.clock = clock

	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	srv := httptest.NewServer(s.ServeMux())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/api/runs")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	resp.Body.Close()

	found := false
	for _, line := range logged {
		if strings.Contains(line, "GET /api/runs") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a request log line for GET /api/runs, got %q", logged)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/derive?dataset=1")
	if err != nil {
		t.Fatalf("GET derive: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
