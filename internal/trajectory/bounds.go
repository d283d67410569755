package trajectory

import (
	"fmt"

	"github.com/roadmetric-data/trajectory.report/internal/column"
)

// Bounds holds per-trajectory axis-aligned spatial envelopes. (X1, Y1)
// is the lower-left corner, (X2, Y2) the upper-right. A single-point
// trajectory yields a degenerate zero-area box.
type Bounds struct {
	X1 []float64
	Y1 []float64
	X2 []float64
	Y2 []float64
}

// SpatialBounds computes the axis-aligned bounding box of every
// trajectory run described by length/offset over the sorted x/y
// columns. Index i of each output column refers to the same trajectory
// as Length[i]/Offset[i] in the Derive output.
func SpatialBounds(x, y []float64, length, offset []int32, opts ...Option) (*Bounds, error) {
	o := applyOptions(opts)

	n := len(x)
	if len(y) != n {
		return nil, fmt.Errorf("%w: column lengths x=%d y=%d",
			ErrInvalidArgument, len(x), len(y))
	}
	if err := validateRuns(n, length, offset); err != nil {
		return nil, err
	}

	b := &Bounds{}
	var err error
	if b.X1, err = column.Alloc[float64](o.alloc, len(length)); err != nil {
		return nil, err
	}
	if b.Y1, err = column.Alloc[float64](o.alloc, len(length)); err != nil {
		return nil, err
	}
	if b.X2, err = column.Alloc[float64](o.alloc, len(length)); err != nil {
		return nil, err
	}
	if b.Y2, err = column.Alloc[float64](o.alloc, len(length)); err != nil {
		return nil, err
	}

	for t := range length {
		start := int(offset[t])
		end := start + int(length[t])

		minX, maxX := x[start], x[start]
		minY, maxY := y[start], y[start]
		for i := start + 1; i < end; i++ {
			if x[i] < minX {
				minX = x[i]
			}
			if x[i] > maxX {
				maxX = x[i]
			}
			if y[i] < minY {
				minY = y[i]
			}
			if y[i] > maxY {
				maxY = y[i]
			}
		}
		b.X1[t], b.Y1[t] = minX, minY
		b.X2[t], b.Y2[t] = maxX, maxY
	}
	return b, nil
}
