package column

// Bitmap is a fixed-length validity bitmap for a column. Ingest uses it
// to mark which source rows survived parsing; a cleared bit means the
// row was dropped and is absent from the packed columns.
type Bitmap struct {
	bits []uint64
	n    int
}

// NewBitmap returns a bitmap of n bits, all cleared.
func NewBitmap(n int) *Bitmap {
	if n < 0 {
		n = 0
	}
	return &Bitmap{bits: make([]uint64, (n+63)/64), n: n}
}

// Len returns the number of bits in the bitmap.
func (b *Bitmap) Len() int { return b.n }

// Set marks bit i as valid. Out-of-range indices are ignored.
func (b *Bitmap) Set(i int) {
	if i < 0 || i >= b.n {
		return
	}
	b.bits[i/64] |= 1 << (uint(i) % 64)
}

// Get reports whether bit i is valid. Out-of-range indices are invalid.
func (b *Bitmap) Get(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.bits[i/64]&(1<<(uint(i)%64)) != 0
}

// CountSet returns the number of valid bits.
func (b *Bitmap) CountSet() int {
	count := 0
	for _, w := range b.bits {
		for ; w != 0; w &= w - 1 {
			count++
		}
	}
	return count
}
