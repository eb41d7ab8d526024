// Package alloc is the bit-level codec for the on-disk allocation bitmaps.
// Bit n of a bitmap block tracks item n; a set bit means allocated.
package alloc

// TestBit reports whether bit n is set. The index range is the caller's
// responsibility.
func TestBit(bm []byte, n uint64) bool {
	return bm[n/8]&(1<<(n%8)) != 0
}

// SetBit marks bit n allocated.
func SetBit(bm []byte, n uint64) {
	bm[n/8] = bm[n/8] | (1 << (n % 8))
}

// ClearBit marks bit n free.
func ClearBit(bm []byte, n uint64) {
	bm[n/8] = bm[n/8] & ^byte(1<<(n%8))
}

// FindFree returns the first clear bit in [start, num).
func FindFree(bm []byte, start uint64, num uint64) (uint64, bool) {
	for n := start; n < num; n++ {
		if !TestBit(bm, n) {
			return n, true
		}
	}
	return 0, false
}
