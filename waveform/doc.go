// Package waveform compresses per shot waveform sample blocks.
//
// A block holds one sample array per declared channel. Each channel is delta
// coded: the first sample is stored as an offset from the channel minimum and
// every following sample as the difference to its predecessor, shifted by the
// smallest difference so that all stored values are non-negative.
//
// # Block
//
//	| blocksize (32) | channel 0 | channel 1 | ... | padding to a whole byte |
//
// blocksize is the length of the whole block in bytes, including itself. It
// lets a reader seek straight to a block given only its address.
//
// # Channel
//
//	| start (W) | bias (W+1) | numBits (6) | delta[1]-bias (numBits) | ... | delta[n-1]-bias (numBits) |
//
//	W       the start width, 8, 16 or 32 bits, picked from max - min of the
//	        channel (see StartWidth)
//	start   sample[0] - min
//	bias    min(delta) in zig-zag form
//	numBits bits needed for max(delta) - min(delta); zero for a flat channel,
//	        in which case no deltas follow
//
// During creation of a file blocks are staged in a scratch store because the
// final position of the waveform region is only known once every record has
// been written. Addresses are therefore offsets relative to the start of the
// waveform region, not absolute file offsets.
package waveform
