package trajectory

import (
	"fmt"
	"sort"

	"github.com/roadmetric-data/trajectory.report/internal/column"
)

// Subset holds the observations selected by SubsetByID, in canonical
// (object_id, timestamp) order.
type Subset struct {
	X         []float64
	Y         []float64
	ID        []int32
	Timestamp []int64

	// Count is the number of distinct object ids actually present in
	// the output. It may be smaller than the number of requested ids
	// when some have no matching observations.
	Count int
}

// SubsetByID selects every observation whose object_id is in selected.
// The input columns need not be sorted. Output columns are newly
// allocated and ordered by (object_id, timestamp), ties broken by
// original input position, matching the ordering Derive produces.
//
// An empty selection, or a selection with no matching observations,
// yields empty output columns and a Count of 0.
func SubsetByID(selected []int32, x, y []float64, id []int32, ts []int64, opts ...Option) (*Subset, error) {
	o := applyOptions(opts)

	n := len(x)
	if len(y) != n || len(id) != n || len(ts) != n {
		return nil, fmt.Errorf("%w: column lengths x=%d y=%d id=%d ts=%d",
			ErrInvalidArgument, len(x), len(y), len(id), len(ts))
	}

	keep := make(map[int32]struct{}, len(selected))
	for _, v := range selected {
		keep[v] = struct{}{}
	}

	matched := make([]int32, 0, n)
	for i := 0; i < n; i++ {
		if _, ok := keep[id[i]]; ok {
			matched = append(matched, int32(i))
		}
	}
	sort.SliceStable(matched, func(a, b int) bool {
		ia, ib := matched[a], matched[b]
		if id[ia] != id[ib] {
			return id[ia] < id[ib]
		}
		return ts[ia] < ts[ib]
	})

	out := &Subset{}
	var err error
	if out.X, err = column.Alloc[float64](o.alloc, len(matched)); err != nil {
		return nil, err
	}
	if out.Y, err = column.Alloc[float64](o.alloc, len(matched)); err != nil {
		return nil, err
	}
	if out.ID, err = column.Alloc[int32](o.alloc, len(matched)); err != nil {
		return nil, err
	}
	if out.Timestamp, err = column.Alloc[int64](o.alloc, len(matched)); err != nil {
		return nil, err
	}

	for si, oi := range matched {
		out.X[si] = x[oi]
		out.Y[si] = y[oi]
		out.ID[si] = id[oi]
		out.Timestamp[si] = ts[oi]
		if si == 0 || out.ID[si] != out.ID[si-1] {
			out.Count++
		}
	}
	return out, nil
}
