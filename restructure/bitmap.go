package restructure

// Bitmap holds one bit per element of a buffer.
type Bitmap []uint64

// NewBitmap returns a cleared bitmap of at least n bits.
func NewBitmap(n int) Bitmap {
	return make(Bitmap, (n+63)/64)
}

func (b Bitmap) Set(i int) {
	b[i>>6] |= 1 << uint(i&63)
}

func (b Bitmap) Test(i int) bool {
	return b[i>>6]&(1<<uint(i&63)) != 0
}

// Count returns the number of set bits.
func (b Bitmap) Count() int {
	var n int
	for _, w := range b {
		for ; w != 0; w &= w - 1 {
			n++
		}
	}
	return n
}
