package trajectory

import (
	"fmt"
	"math"

	"github.com/roadmetric-data/trajectory.report/internal/column"
)

// validateRuns checks a length/offset index against columns of n
// elements. Every run must contain at least one observation and lie
// fully inside the backing columns. Called before any element read.
func validateRuns(n int, length, offset []int32) error {
	if len(length) != len(offset) {
		return fmt.Errorf("%w: length has %d entries, offset has %d",
			ErrInvalidArgument, len(length), len(offset))
	}
	for i := range length {
		if length[i] < 1 {
			return fmt.Errorf("%w: trajectory %d has length %d, want >= 1",
				ErrInvalidArgument, i, length[i])
		}
		if offset[i] < 0 || int(offset[i])+int(length[i]) > n {
			return fmt.Errorf("%w: trajectory %d spans [%d, %d) over %d observations",
				ErrOutOfBounds, i, offset[i], int(offset[i])+int(length[i]), n)
		}
	}
	return nil
}

// DistanceAndSpeed computes, for each trajectory run described by
// length/offset, the cumulative Euclidean path length in meters and the
// average speed in meters per second. The x, y, and ts columns must
// already be in (object_id, timestamp) order as produced by Derive.
//
// A single-point trajectory has distance 0, and speed is defined as 0
// whenever the run's elapsed time is zero, so results are never NaN or
// infinite.
func DistanceAndSpeed(x, y []float64, ts []int64, length, offset []int32, opts ...Option) (dist, speed []float64, err error) {
	o := applyOptions(opts)

	n := len(x)
	if len(y) != n || len(ts) != n {
		return nil, nil, fmt.Errorf("%w: column lengths x=%d y=%d ts=%d",
			ErrInvalidArgument, len(x), len(y), len(ts))
	}
	if err := validateRuns(n, length, offset); err != nil {
		return nil, nil, err
	}

	if dist, err = column.Alloc[float64](o.alloc, len(length)); err != nil {
		return nil, nil, err
	}
	if speed, err = column.Alloc[float64](o.alloc, len(length)); err != nil {
		return nil, nil, err
	}

	tickSeconds := o.tsUnit.Seconds()
	for t := range length {
		start := int(offset[t])
		end := start + int(length[t])

		var d float64
		for i := start + 1; i < end; i++ {
			d += math.Hypot(x[i]-x[i-1], y[i]-y[i-1])
		}
		dist[t] = d

		elapsed := float64(ts[end-1]-ts[start]) * tickSeconds
		if elapsed > 0 {
			speed[t] = d / elapsed
		}
	}
	return dist, speed, nil
}
