package bitpack_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebcase/oops"
	"github.com/calebcase/wlf/bitpack"
)

func TestPack(t *testing.T) {
	type TC struct {
		Before []byte
		Start  int
		Bits   int
		Value  int32
		After  []byte
		Mark   error
	}

	tcs := []TC{
		{
			Before: []byte{0b_0000_0000, 0b_0000_0000, 0b_0000_0000},
			Start:  5,
			Bits:   13,
			Value:  0x1fff,
			After:  []byte{0b_0000_0111, 0b_1111_1111, 0b_1100_0000},
			Mark:   oops.New("unexpected"),
		},
		{
			Before: []byte{0b_1111_1111, 0b_1111_1111, 0b_1111_1111},
			Start:  5,
			Bits:   13,
			Value:  0,
			After:  []byte{0b_1111_1000, 0b_0000_0000, 0b_0011_1111},
			Mark:   oops.New("unexpected"),
		},
		{
			Before: []byte{0b_0000_0000},
			Start:  0,
			Bits:   8,
			Value:  -1,
			After:  []byte{0b_1111_1111},
			Mark:   oops.New("unexpected"),
		},
		{
			Before: []byte{0b_1010_1010},
			Start:  2,
			Bits:   0,
			Value:  -1,
			After:  []byte{0b_1010_1010},
			Mark:   oops.New("unexpected"),
		},
		{
			Before: []byte{0b_0000_0000, 0b_0000_0000, 0b_0000_0000, 0b_0000_0000},
			Start:  0,
			Bits:   32,
			Value:  0x12345678,
			After:  []byte{0x12, 0x34, 0x56, 0x78},
			Mark:   oops.New("unexpected"),
		},
		{
			Before: []byte{0b_0000_0000, 0b_0000_0000},
			Start:  7,
			Bits:   2,
			Value:  0b11,
			After:  []byte{0b_0000_0001, 0b_1000_0000},
			Mark:   oops.New("unexpected"),
		},
	}

	for i, tc := range tcs {
		t.Run(fmt.Sprintf("%d/start=%d/bits=%d", i, tc.Start, tc.Bits), func(t *testing.T) {
			buf := append([]byte{}, tc.Before...)

			bitpack.Pack(buf, tc.Start, tc.Bits, tc.Value)
			require.Equal(t, tc.After, buf, tc.Mark)

			got := bitpack.Unpack(buf, tc.Start, tc.Bits)
			require.Equal(t, uint32(tc.Value)&uint32(bitpack.Max(tc.Bits)), got, tc.Mark)
		})
	}
}

// Values wider than the field lose their high bits and never spill into the
// neighboring bits.
func TestPackTruncates(t *testing.T) {
	buf := []byte{0b_0000_0000, 0b_0101_0101}

	bitpack.Pack(buf, 0, 4, 0x1f)
	require.Equal(t, []byte{0b_1111_0000, 0b_0101_0101}, buf)
	require.Equal(t, uint32(0xf), bitpack.Unpack(buf, 0, 4))

	buf = make([]byte, 8)
	bitpack.DoublePack(buf, 0, 36, -1)
	require.Equal(t, bitpack.Max(36), bitpack.DoubleUnpack(buf, 0, 36))
	require.Equal(t, byte(0b_1111_0000), buf[4])
	require.Equal(t, byte(0), buf[5])
}

func TestUnpackNoSignExtension(t *testing.T) {
	buf := make([]byte, 2)

	bitpack.Pack(buf, 3, 5, -1)
	require.Equal(t, uint32(31), bitpack.Unpack(buf, 3, 5))
}

func TestDoublePack(t *testing.T) {
	type TC struct {
		Start int
		Bits  int
		Value uint64
		Mark  error
	}

	tcs := []TC{
		{Start: 0, Bits: 40, Value: 0xab_cdef_0123, Mark: oops.New("unexpected")},
		{Start: 3, Bits: 40, Value: 0xab_cdef_0123, Mark: oops.New("unexpected")},
		{Start: 7, Bits: 33, Value: 1 << 32, Mark: oops.New("unexpected")},
		{Start: 1, Bits: 64, Value: 0xffff_ffff_ffff_ffff, Mark: oops.New("unexpected")},
		{Start: 5, Bits: 20, Value: 0xf_0f0f, Mark: oops.New("unexpected")},
	}

	for i, tc := range tcs {
		t.Run(fmt.Sprintf("%d/start=%d/bits=%d", i, tc.Start, tc.Bits), func(t *testing.T) {
			buf := make([]byte, 10)

			bitpack.DoublePack(buf, tc.Start, tc.Bits, int64(tc.Value))
			require.Equal(t, tc.Value, bitpack.DoubleUnpack(buf, tc.Start, tc.Bits), tc.Mark)

			if tc.Bits > 32 {
				high := bitpack.Unpack(buf, tc.Start, tc.Bits-32)
				low := bitpack.Unpack(buf, tc.Start+tc.Bits-32, 32)

				require.Equal(t, uint32(tc.Value>>32), high, tc.Mark)
				require.Equal(t, uint32(tc.Value), low, tc.Mark)
			}
		})
	}
}

func TestRandomRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		n := rng.Intn(bitpack.MaxBits + 1)
		start := rng.Intn(64)
		v := rng.Uint64() & bitpack.Max(n)

		buf := make([]byte, 17)
		rng.Read(buf)
		before := append([]byte{}, buf...)

		bitpack.DoublePack(buf, start, n, int64(v))
		require.Equal(t, v, bitpack.DoubleUnpack(buf, start, n), "n=%d start=%d", n, start)

		// Restoring the original field must restore the original buffer.
		bitpack.DoublePack(buf, start, n, int64(bitpack.DoubleUnpack(before, start, n)))
		require.Equal(t, before, buf, "n=%d start=%d", n, start)
	}
}

func TestWidth(t *testing.T) {
	type TC struct {
		Value uint64
		Width int
	}

	tcs := []TC{
		{0, 0},
		{1, 1},
		{2, 2},
		{255, 8},
		{256, 9},
		{16383, 14},
		{16384, 15},
		{20100, 15},
		{1<<40 - 1, 40},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.Width, bitpack.Width(tc.Value), "value=%d", tc.Value)
	}
}

func TestZigZag(t *testing.T) {
	type TC struct {
		Signed   int64
		Unsigned uint64
	}

	tcs := []TC{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{-1 << 31, 1<<32 - 1},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.Unsigned, bitpack.ZigZag(tc.Signed))
		require.Equal(t, tc.Signed, bitpack.UnZigZag(tc.Unsigned))
	}
}

func TestCursor(t *testing.T) {
	type field struct {
		Value uint64
		Bits  int
	}

	fields := []field{
		{0b_101, 3},
		{0xabcd, 16},
		{0, 0},
		{1, 1},
		{0x3_ffff_ffff, 34},
		{0x7f, 7},
	}

	w := bitpack.NewWriter(0)
	for _, f := range fields {
		w.Write(f.Value, f.Bits)
	}
	require.Equal(t, 61, w.Pos())
	require.Equal(t, 8, w.Len())

	r := bitpack.NewReader(w.Bytes())
	for _, f := range fields {
		v, err := r.Read(f.Bits)
		require.NoError(t, err)
		require.Equal(t, f.Value, v)
	}
	require.Equal(t, 3, r.Remaining())

	_, err := r.Read(4)
	require.Error(t, err)
	require.True(t, bitpack.Error.Has(err))

	_, err = r.Read(65)
	require.Error(t, err)
}

func TestWriterSkipAndPackAt(t *testing.T) {
	w := bitpack.NewWriter(4)

	w.Skip(32)
	w.Write(0xff, 8)
	w.PackAt(0, 32, uint64(w.Len()))

	require.Equal(t, []byte{0, 0, 0, 5, 0xff}, w.Bytes())

	w.Reset()
	require.Equal(t, 0, w.Pos())
	require.Equal(t, 0, w.Len())
}
