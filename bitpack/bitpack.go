package bitpack

import (
	"math/bits"

	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("bitpack")

// MaxBits is the widest field supported by DoublePack and DoubleUnpack.
const MaxBits = 64

// Pack stores the low n bits of value starting at bit start. All bits outside
// of [start, start+n) are preserved. n must be between 0 and 32.
func Pack(buf []byte, start, n int, value int32) {
	if n < 0 || n > 32 {
		panic("bitpack: invalid width for Pack")
	}

	put(buf, start, n, uint64(uint32(value)))
}

// Unpack returns the n bit field starting at bit start. n must be between 0
// and 32.
func Unpack(buf []byte, start, n int) uint32 {
	if n < 0 || n > 32 {
		panic("bitpack: invalid width for Unpack")
	}

	return uint32(get(buf, start, n))
}

// DoublePack stores the low n bits of value starting at bit start. Fields
// wider than 32 bits are written as two Pack calls: the high n-32 bits first
// and then the low 32 bits.
func DoublePack(buf []byte, start, n int, value int64) {
	if n < 0 || n > MaxBits {
		panic("bitpack: invalid width for DoublePack")
	}

	if n <= 32 {
		Pack(buf, start, n, int32(value))

		return
	}

	Pack(buf, start, n-32, int32(value>>32))
	Pack(buf, start+n-32, 32, int32(value))
}

// DoubleUnpack is the inverse of DoublePack.
func DoubleUnpack(buf []byte, start, n int) uint64 {
	if n < 0 || n > MaxBits {
		panic("bitpack: invalid width for DoubleUnpack")
	}

	if n <= 32 {
		return uint64(Unpack(buf, start, n))
	}

	high := Unpack(buf, start, n-32)
	low := Unpack(buf, start+n-32, 32)

	return uint64(high)<<32 | uint64(low)
}

// Width returns the number of bits needed to hold every value in [0, v].
// Width(0) is 0.
func Width(v uint64) int {
	return bits.Len64(v)
}

// Max returns the largest value representable in n bits.
func Max(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return 1<<uint(n) - 1
}

// ZigZag maps signed integers to unsigned integers with the sign in the low
// bit so that values close to zero stay small: 0, -1, 1, -2, 2 become 0, 1, 2,
// 3, 4.
func ZigZag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// UnZigZag is the inverse of ZigZag.
func UnZigZag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// put writes the low n bits of v at bit start, one byte fragment at a time.
func put(buf []byte, start, n int, v uint64) {
	for n > 0 {
		idx, off := start>>3, start&7
		k := min(8-off, n)
		shift := uint(8 - off - k)
		mask := byte(0xff>>uint(8-k)) << shift
		chunk := byte(v>>uint(n-k)) & byte(0xff>>uint(8-k))

		buf[idx] = buf[idx]&^mask | chunk<<shift

		start += k
		n -= k
	}
}

// get reads n bits at bit start.
func get(buf []byte, start, n int) (v uint64) {
	for n > 0 {
		idx, off := start>>3, start&7
		k := min(8-off, n)
		shift := uint(8 - off - k)
		chunk := (buf[idx] >> shift) & byte(0xff>>uint(8-k))

		v = v<<uint(k) | uint64(chunk)

		start += k
		n -= k
	}

	return v
}
