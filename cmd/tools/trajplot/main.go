// Package main renders static PNG plots for a stored analysis run:
// the trajectory paths in plan view and a histogram of average speeds.
// Useful for embedding in written reports where the interactive HTML
// page is not an option.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 140, G: 86, B: 75, A: 255},
}

func main() {
	dbPath := flag.String("db", "trajectory_data.db", "Path to the SQLite database")
	runID := flag.String("run", "", "Run id to plot")
	outputDir := flag.String("out", "plots", "Output directory for PNG files")
	flag.Parse()

	if *runID == "" {
		log.Fatal("-run is required")
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	run, err := database.GetRun(*runID)
	if err != nil {
		log.Fatalf("failed to load run %s: %v", *runID, err)
	}
	trajectories, err := database.RunTrajectories(*runID)
	if err != nil {
		log.Fatalf("failed to load trajectories: %v", err)
	}
	cols, err := database.LoadObservations(run.DatasetID)
	if err != nil {
		log.Fatalf("failed to load observations: %v", err)
	}
	d, err := trajectory.Derive(cols.X, cols.Y, cols.ID, cols.Timestamp)
	if err != nil {
		log.Fatalf("failed to derive trajectories: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}

	pathsFile := filepath.Join(*outputDir, fmt.Sprintf("%s_paths.png", run.RunID))
	if err := plotPaths(pathsFile, run.RunID, trajectories, d); err != nil {
		log.Fatalf("failed to plot paths: %v", err)
	}
	log.Printf("wrote %s", pathsFile)

	speedsFile := filepath.Join(*outputDir, fmt.Sprintf("%s_speeds.png", run.RunID))
	if err := plotSpeeds(speedsFile, run.RunID, trajectories); err != nil {
		log.Fatalf("failed to plot speeds: %v", err)
	}
	log.Printf("wrote %s", speedsFile)
}

// plotPaths draws one polyline per trajectory over the sorted points.
func plotPaths(path, runID string, trajectories []db.RunTrajectory, d *trajectory.Derived) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Trajectory paths — %s", runID)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	for i, tr := range trajectories {
		start := int(tr.StartIndex)
		end := start + int(tr.Length)
		if start < 0 || end > len(d.X) {
			continue
		}

		pts := make(plotter.XYs, 0, end-start)
		for j := start; j < end; j++ {
			pts = append(pts, plotter.XY{X: d.X[j], Y: d.Y[j]})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line for trajectory %d: %w", tr.TrajectoryID, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("object %d", tr.ObjectID), line)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

// plotSpeeds draws a histogram of per-trajectory average speeds.
func plotSpeeds(path, runID string, trajectories []db.RunTrajectory) error {
	speeds := make(plotter.Values, 0, len(trajectories))
	for _, tr := range trajectories {
		speeds = append(speeds, tr.AvgSpeedMps)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Average speed distribution — %s", runID)
	p.X.Label.Text = "speed (m/s)"
	p.Y.Label.Text = "trajectories"

	if len(speeds) > 0 {
		bins := 10
		if len(speeds) < bins {
			bins = len(speeds)
		}
		hist, err := plotter.NewHist(speeds, bins)
		if err != nil {
			return fmt.Errorf("speed histogram: %w", err)
		}
		hist.FillColor = palette[0]
		p.Add(hist)
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
