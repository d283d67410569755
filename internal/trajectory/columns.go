package trajectory

// Columns carries a set of parallel observation columns between the
// ingest, storage, and analysis layers.
type Columns struct {
	X         []float64
	Y         []float64
	ID        []int32
	Timestamp []int64
}

// Len returns the observation count.
func (c Columns) Len() int { return len(c.X) }
