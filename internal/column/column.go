// Package column provides the minimal columnar-array surface the
// trajectory pipeline is written against: typed element allocation with
// an optional budget, and a validity bitmap for tracking dropped rows.
//
// Columns are plain Go slices. Element reads and writes are slice
// indexing; release is the garbage collector. The Allocator exists so
// output-array allocation is an explicit, fallible step rather than an
// unbounded append: batch derives over large datasets can be capped and
// the failure surfaced as a typed error instead of an OOM kill.
package column

import (
	"errors"
	"fmt"
)

// ErrAllocationExceeded is returned when an allocation would push an
// Allocator past its element budget.
var ErrAllocationExceeded = errors.New("column: allocation budget exceeded")

// Element constrains the scalar types stored in trajectory columns.
type Element interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// Allocator tracks element allocations against an optional budget.
// The zero value is an unlimited allocator and is safe to use directly.
// Allocator is not safe for concurrent use; each pipeline invocation
// owns its own.
type Allocator struct {
	// Limit is the maximum total number of elements this allocator may
	// hand out across all Alloc calls. Zero or negative means unlimited.
	Limit int64

	used int64
}

// NewAllocator returns an allocator capped at limit elements.
// A limit of zero or below means unlimited.
func NewAllocator(limit int64) *Allocator {
	return &Allocator{Limit: limit}
}

// Used reports the total number of elements allocated so far.
func (a *Allocator) Used() int64 {
	if a == nil {
		return 0
	}
	return a.used
}

// grant reserves n elements against the budget.
func (a *Allocator) grant(n int) error {
	if n < 0 {
		return fmt.Errorf("column: negative allocation size %d", n)
	}
	if a == nil {
		return nil
	}
	if a.Limit > 0 && a.used+int64(n) > a.Limit {
		return fmt.Errorf("%w: requested %d, used %d of %d",
			ErrAllocationExceeded, n, a.used, a.Limit)
	}
	a.used += int64(n)
	return nil
}

// Alloc allocates a zeroed column of n elements through a. A nil
// allocator allocates without a budget.
func Alloc[T Element](a *Allocator, n int) ([]T, error) {
	if err := a.grant(n); err != nil {
		return nil, err
	}
	return make([]T, n), nil
}
