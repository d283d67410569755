// Package ingest reads raw observation feeds into columnar form.
//
// The supported format is CSV with a header row naming at least the
// columns x, y, object_id, and timestamp (any order, extra columns
// ignored). Rows with unparseable fields are skipped, recorded in a
// validity bitmap, and counted rather than failing the whole file:
// field-level corruption is routine in camera export feeds.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roadmetric-data/trajectory.report/internal/column"
	"github.com/roadmetric-data/trajectory.report/internal/monitoring"
	"github.com/roadmetric-data/trajectory.report/internal/trajectory"
)

// Result holds the packed columns plus per-source-row validity.
type Result struct {
	Columns trajectory.Columns

	// Valid has one bit per data row of the source (header excluded);
	// cleared bits mark rows dropped for unparseable fields.
	Valid *column.Bitmap

	// Skipped is the number of dropped rows.
	Skipped int
}

// ReadCSV parses an observation CSV from r.
func ReadCSV(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("ingest: empty input, expected header row")
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: failed to read header: %w", err)
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range []string{"x", "y", "object_id", "timestamp"} {
		if _, ok := idx[want]; !ok {
			return nil, fmt.Errorf("ingest: header missing required column %q", want)
		}
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: failed to read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rec)
	}

	res := &Result{Valid: column.NewBitmap(len(rows))}
	for i, rec := range rows {
		x, errX := strconv.ParseFloat(rec[idx["x"]], 64)
		y, errY := strconv.ParseFloat(rec[idx["y"]], 64)
		id, errID := strconv.ParseInt(rec[idx["object_id"]], 10, 32)
		ts, errTS := strconv.ParseInt(rec[idx["timestamp"]], 10, 64)
		if errX != nil || errY != nil || errID != nil || errTS != nil {
			res.Skipped++
			continue
		}

		res.Valid.Set(i)
		res.Columns.X = append(res.Columns.X, x)
		res.Columns.Y = append(res.Columns.Y, y)
		res.Columns.ID = append(res.Columns.ID, int32(id))
		res.Columns.Timestamp = append(res.Columns.Timestamp, ts)
	}

	if res.Skipped > 0 {
		monitoring.Logf("ingest: skipped %d of %d rows with unparseable fields",
			res.Skipped, len(rows))
	}
	return res, nil
}
