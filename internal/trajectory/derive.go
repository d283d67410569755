package trajectory

import (
	"fmt"
	"sort"

	"github.com/roadmetric-data/trajectory.report/internal/column"
)

// Derived holds the output of Derive: the input columns re-sorted by
// (object_id, timestamp), the per-observation trajectory id, and the
// per-trajectory length/offset index.
type Derived struct {
	// Sorted copies of the input columns. The caller's inputs are left
	// untouched.
	X         []float64
	Y         []float64
	ID        []int32
	Timestamp []int64

	// TrajectoryID assigns each sorted observation a sequential
	// trajectory id starting at 0. It is monotone non-decreasing and
	// increments exactly at run boundaries.
	TrajectoryID []int32

	// Length[i] is the observation count of trajectory i; Offset[i] is
	// the start index of its run in the sorted columns (exclusive
	// prefix sum of Length).
	Length []int32
	Offset []int32

	// Perm maps sorted position to original input index. Callers with
	// extra parallel columns apply it to bring them into trajectory
	// order.
	Perm []int32

	// Count is the number of distinct trajectories.
	Count int
}

// Derive groups raw observations into trajectories. The four input
// columns must have equal length. The result is sorted by (object_id
// ascending, timestamp ascending); ties keep their original relative
// order, so the ordering is deterministic for any input.
//
// Empty input yields a Derived with zero trajectories and empty
// columns, not an error.
func Derive(x, y []float64, id []int32, ts []int64, opts ...Option) (*Derived, error) {
	o := applyOptions(opts)

	n := len(x)
	if len(y) != n || len(id) != n || len(ts) != n {
		return nil, fmt.Errorf("%w: column lengths x=%d y=%d id=%d ts=%d",
			ErrInvalidArgument, len(x), len(y), len(id), len(ts))
	}

	perm, err := column.Alloc[int32](o.alloc, n)
	if err != nil {
		return nil, err
	}
	for i := range perm {
		perm[i] = int32(i)
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ia, ib := perm[a], perm[b]
		if id[ia] != id[ib] {
			return id[ia] < id[ib]
		}
		return ts[ia] < ts[ib]
	})

	d := &Derived{Perm: perm}
	if d.X, err = column.Alloc[float64](o.alloc, n); err != nil {
		return nil, err
	}
	if d.Y, err = column.Alloc[float64](o.alloc, n); err != nil {
		return nil, err
	}
	if d.ID, err = column.Alloc[int32](o.alloc, n); err != nil {
		return nil, err
	}
	if d.Timestamp, err = column.Alloc[int64](o.alloc, n); err != nil {
		return nil, err
	}
	if d.TrajectoryID, err = column.Alloc[int32](o.alloc, n); err != nil {
		return nil, err
	}
	for si, oi := range perm {
		d.X[si] = x[oi]
		d.Y[si] = y[oi]
		d.ID[si] = id[oi]
		d.Timestamp[si] = ts[oi]
	}

	// Count runs, then build the length/offset index in a second pass.
	count := 0
	for i := 0; i < n; i++ {
		if i == 0 || d.ID[i] != d.ID[i-1] {
			count++
		}
	}
	if d.Length, err = column.Alloc[int32](o.alloc, count); err != nil {
		return nil, err
	}
	if d.Offset, err = column.Alloc[int32](o.alloc, count); err != nil {
		return nil, err
	}

	tid := int32(-1)
	for i := 0; i < n; i++ {
		if i == 0 || d.ID[i] != d.ID[i-1] {
			tid++
			d.Offset[tid] = int32(i)
		}
		d.Length[tid]++
		d.TrajectoryID[i] = tid
	}
	d.Count = count

	return d, nil
}
