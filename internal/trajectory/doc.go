// Package trajectory derives per-object trajectories from columnar
// point observations and computes trajectory-level metrics.
//
// An observation is an (x, y, object_id, timestamp) tuple held across
// four parallel columns. Derive stable-sorts the columns by (object_id,
// timestamp) and groups contiguous runs of equal object_id into
// trajectories, described by a per-observation trajectory id plus
// per-trajectory length and offset index arrays. DistanceAndSpeed and
// SpatialBounds reduce each run to path length, average speed, and an
// axis-aligned envelope. SubsetByID filters raw observations down to a
// chosen set of object ids.
//
// Coordinates are meters relative to the sensor origin. Timestamps are
// integer ticks, one millisecond per tick unless overridden with
// WithTimestampUnit; speeds are meters per second.
//
// All operations are pure batch transformations: inputs are never
// mutated, outputs are newly allocated, and validation happens before
// any element is read so no partial results are observable on failure.
package trajectory
