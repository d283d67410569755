// Package report renders trajectory analysis runs as self-contained
// HTML pages using go-echarts: a scatter of the sorted observation
// points coloured per trajectory, and a bar chart of per-trajectory
// distance and average speed.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/roadmetric-data/trajectory.report/internal/db"
	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
)

// Input collects everything a run report needs: the run row, its
// trajectory metrics, the sorted point columns, and the speed summary.
type Input struct {
	Run          db.Run
	Trajectories []db.RunTrajectory
	Points       trajectory.Columns
	Summary      trajectory.SpeedSummary

	// MaxPoints bounds the scatter point count; larger runs are
	// downsampled by stride. Zero or negative means no bound.
	MaxPoints int
}

// Render writes the HTML report page to w.
func Render(w io.Writer, in Input) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Trajectory report %s", in.Run.RunID)
	page.AddCharts(pointScatter(in), metricsBar(in))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("report: render failed: %w", err)
	}
	return nil
}

// pointScatter plots the sorted observations, one series per
// trajectory, downsampled by stride when over MaxPoints.
func pointScatter(in Input) *charts.Scatter {
	n := in.Points.Len()
	stride := 1
	if in.MaxPoints > 0 && n > in.MaxPoints {
		stride = int(math.Ceil(float64(n) / float64(in.MaxPoints)))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Trajectory points",
			Subtitle: fmt.Sprintf("run=%s trajectories=%d points=%d stride=%d",
				in.Run.RunID, len(in.Trajectories), n, stride),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	for _, tr := range in.Trajectories {
		start := int(tr.StartIndex)
		end := start + int(tr.Length)
		if start < 0 || end > n {
			continue // stale run rows for a reloaded dataset
		}
		data := make([]opts.ScatterData, 0, (end-start+stride-1)/stride)
		for i := start; i < end; i += stride {
			data = append(data, opts.ScatterData{
				Value: []interface{}{in.Points.X[i], in.Points.Y[i]},
			})
		}
		scatter.AddSeries(fmt.Sprintf("object %d", tr.ObjectID), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	return scatter
}

// metricsBar charts per-trajectory distance and average speed side by
// side, with the run's p85 noted in the subtitle.
func metricsBar(in Input) *charts.Bar {
	labels := make([]string, len(in.Trajectories))
	dist := make([]opts.BarData, len(in.Trajectories))
	speed := make([]opts.BarData, len(in.Trajectories))
	for i, tr := range in.Trajectories {
		labels[i] = fmt.Sprintf("obj %d", tr.ObjectID)
		dist[i] = opts.BarData{Value: tr.DistanceM}
		speed[i] = opts.BarData{Value: tr.AvgSpeedMps}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Trajectory metrics",
			Subtitle: fmt.Sprintf("mean=%.2f m/s p85=%.2f m/s over %d trajectories",
				in.Summary.MeanMps, in.Summary.P85Mps, in.Summary.Samples),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("distance (m)", dist).
		AddSeries("avg speed (m/s)", speed)
	return bar
}
