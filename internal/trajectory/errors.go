package trajectory

import "errors"

// Sentinel errors returned by the pipeline operations. Callers match
// them with errors.Is; the wrapped message carries the offending
// lengths or indices.
var (
	// ErrInvalidArgument indicates parallel input columns of mismatched
	// length, or an index array describing an empty trajectory run.
	ErrInvalidArgument = errors.New("trajectory: invalid argument")

	// ErrOutOfBounds indicates a length/offset index pair referencing
	// positions beyond the backing columns. It is detected before any
	// element is read.
	ErrOutOfBounds = errors.New("trajectory: index out of bounds")
)
