package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/roadmetric-data/trajectory.report/api"
	"github.com/roadmetric-data/trajectory.report/internal/analysis"
	"github.com/roadmetric-data/trajectory.report/internal/config"
	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/ingest"
	"github.com/roadmetric-data/trajectory.report/internal/monitoring"
	"github.com/roadmetric-data/trajectory.report/internal/report"
	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
	"github.com/roadmetric-data/trajectory.report/internal/units"
	"github.com/roadmetric-data/trajectory.report/internal/version"
)

// runCommand dispatches a CLI subcommand.
func runCommand(database *db.DB, cfg *config.AnalysisConfig, cmd string, args []string) error {
	switch cmd {
	case "ingest":
		return cmdIngest(database, args)
	case "derive":
		return cmdDerive(database, cfg, args)
	case "runs":
		return cmdRuns(database, args)
	case "report":
		return cmdReport(database, cfg, args)
	case "serve":
		return cmdServe(database, cfg)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdIngest(database *db.DB, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	name := fs.String("name", "", "Dataset name")
	csvPath := fs.String("csv", "", "Observation CSV file")
	fs.Parse(args)

	if *name == "" || *csvPath == "" {
		return fmt.Errorf("both -name and -csv are required")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *csvPath, err)
	}
	defer f.Close()

	res, err := ingest.ReadCSV(f)
	if err != nil {
		return err
	}

	id, err := database.CreateDataset(*name)
	if err != nil {
		return err
	}
	if err := database.InsertObservations(id, res.Columns); err != nil {
		return err
	}
	monitoring.Logf("ingest: dataset %d %q: %d observations loaded, %d rows skipped",
		id, *name, res.Columns.Len(), res.Skipped)
	return nil
}

func cmdDerive(database *db.DB, cfg *config.AnalysisConfig, args []string) error {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	datasetID := fs.Int64("dataset", 0, "Dataset id")
	fs.Parse(args)

	if *datasetID == 0 {
		return fmt.Errorf("-dataset is required")
	}

	res, err := analysis.DeriveDataset(database, cfg, *datasetID)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %d trajectories over %d observations\n",
		res.Run.RunID, res.Run.TrajectoryCount, res.Run.ObservationCount)

	display, err := units.ConvertSpeeds(
		[]float64{res.Summary.MeanMps, res.Summary.P85Mps, res.Summary.P95Mps}, *speedUnits)
	if err != nil {
		return err
	}
	fmt.Printf("speed: mean %.2f %s, p85 %.2f %s, p95 %.2f %s (%d samples)\n",
		display[0], *speedUnits, display[1], *speedUnits, display[2], *speedUnits,
		res.Summary.Samples)
	return nil
}

func cmdRuns(database *db.DB, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	datasetID := fs.Int64("dataset", 0, "Filter by dataset id (0 = all)")
	fs.Parse(args)

	runs, err := database.ListRuns(*datasetID)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("%s  dataset=%s  trajectories=%d  observations=%d  %s\n",
			r.RunID, strconv.FormatInt(r.DatasetID, 10),
			r.TrajectoryCount, r.ObservationCount,
			r.CreatedAt.Format(time.RFC3339))
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
	}
	return nil
}

func cmdReport(database *db.DB, cfg *config.AnalysisConfig, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	runID := fs.String("run", "", "Run id")
	outPath := fs.String("out", "report.html", "Output HTML file")
	fs.Parse(args)

	if *runID == "" {
		return fmt.Errorf("-run is required")
	}

	run, err := database.GetRun(*runID)
	if err != nil {
		return err
	}
	trajectories, err := database.RunTrajectories(*runID)
	if err != nil {
		return err
	}
	cols, err := database.LoadObservations(run.DatasetID)
	if err != nil {
		return err
	}
	d, err := trajectory.Derive(cols.X, cols.Y, cols.ID, cols.Timestamp)
	if err != nil {
		return err
	}

	out, err := os.Create(*outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *outPath, err)
	}
	defer out.Close()

	err = report.Render(out, report.Input{
		Run:          *run,
		Trajectories: trajectories,
		Points:       trajectory.Columns{X: d.X, Y: d.Y, ID: d.ID, Timestamp: d.Timestamp},
		Summary:      analysis.Summarize(cfg, trajectories),
		MaxPoints:    cfg.GetReportMaxPoints(),
	})
	if err != nil {
		return err
	}
	monitoring.Logf("report: wrote %s for run %s", *outPath, *runID)
	return nil
}

func cmdServe(database *db.DB, cfg *config.AnalysisConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    *listen,
		Handler: api.NewServer(database, cfg).ServeMux(),
	}

	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("serve: %s listening on %s", version.String(), *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	monitoring.Logf("serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
