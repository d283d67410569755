package trajectory

import (
	"time"

	"github.com/roadmetric-data/trajectory.report/internal/column"
)

// options holds per-call settings shared by the pipeline operations.
type options struct {
	alloc  *column.Allocator
	tsUnit time.Duration
}

// Option configures a pipeline operation.
type Option func(*options)

// WithAllocator routes output-column allocation through a budgeted
// allocator. The default is unbudgeted heap allocation.
func WithAllocator(a *column.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// WithTimestampUnit sets the duration of one timestamp tick for speed
// computation. The default is one millisecond (Unix millis feeds).
func WithTimestampUnit(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.tsUnit = d
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{tsUnit: time.Millisecond}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
