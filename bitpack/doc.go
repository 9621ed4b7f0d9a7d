// Package bitpack reads and writes fixed width bit fields in a byte buffer.
//
// Fields are stored most significant bit first. Bit 0 of a buffer is the high
// bit of byte 0, bit 8 is the high bit of byte 1 and so on. Because the layout
// is defined in terms of bytes rather than machine words the packed form is
// identical on every platform and needs no conversion on read.
//
// Packing a 13 bit field at bit 5 touches three bytes:
//
//	| byte 0                        | byte 1                        | byte 2                        |
//	| 0 | 1 | 2 | 3 | 4 | 5 | 6 | 7 | 0 | 1 | 2 | 3 | 4 | 5 | 6 | 7 | 0 | 1 | 2 | 3 | 4 | 5 | 6 | 7 |
//	|-------------------|-----------|-------------------------------|-------|-----------------------|
//	| untouched         | f12..f10  | f9..f2                        | f1 f0 | untouched             |
//
// Pack and Unpack handle up to 32 bits. DoublePack and DoubleUnpack handle up
// to 64 bits by splitting the field into a high part of n-32 bits followed by
// a low part of 32 bits.
//
// Values wider than the field are truncated to the field width without error.
// Callers that need to detect overflow must range check before packing.
//
// Unpack never sign extends. Fields holding signed values are expected to be
// stored with a bias (value - min) or in zig-zag form (see ZigZag).
package bitpack
