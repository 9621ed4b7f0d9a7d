package waveform

import (
	"fmt"
	"io"

	"github.com/zeebo/errs"

	"github.com/calebcase/wlf/bitpack"
	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/schema"
)

// Error is the error class for this package.
var Error = errs.Class("waveform")

// Block holds one sample array per channel, in channel order.
type Block [][]int32

// StartWidth is the width of the first sample of a channel.
type StartWidth uint8

// Start widths.
const (
	Start8 StartWidth = iota
	Start16
	Start32
)

// Bits returns the number of bits of the start value.
func (w StartWidth) Bits() int {
	switch w {
	case Start8:
		return 8
	case Start16:
		return 16
	default:
		return 32
	}
}

// String implements fmt.Stringer.
func (w StartWidth) String() string {
	return fmt.Sprintf("start%d", w.Bits())
}

// StartWidthFor picks the narrowest start width holding max - min.
func StartWidthFor(min, max int32) StartWidth {
	span := uint64(int64(max) - int64(min))

	switch {
	case span <= 0xff:
		return Start8
	case span <= 0xffff:
		return Start16
	default:
		return Start32
	}
}

const (
	sizeBits    = 32
	numBitsBits = 6
)

// channel is a declared channel with its precomputed start width.
type channel struct {
	header.Channel
	start StartWidth
}

// Codec encodes and decodes blocks of one channel declaration.
type Codec struct {
	channels []channel
	w        *bitpack.Writer
	deltas   []int64
}

// NewCodec returns a codec for the declared channels.
func NewCodec(channels []header.Channel) (*Codec, error) {
	if len(channels) == 0 {
		return nil, Error.New("no channels")
	}

	c := &Codec{
		channels: make([]channel, len(channels)),
	}

	var samples int
	for i, ch := range channels {
		if ch.Count == 0 || ch.Max < ch.Min {
			return nil, Error.New("invalid channel %q", ch.Name)
		}

		c.channels[i] = channel{
			Channel: ch,
			start:   StartWidthFor(ch.Min, ch.Max),
		}
		samples += int(ch.Count)
	}

	c.w = bitpack.NewWriter(4 + samples*2)

	return c, nil
}

// Channels returns the number of channels.
func (c *Codec) Channels() int {
	return len(c.channels)
}

// Channel returns the index of the named channel.
func (c *Codec) Channel(name string) (int, bool) {
	for i, ch := range c.channels {
		if ch.Name == name {
			return i, true
		}
	}

	return 0, false
}

// check validates the shape and sample ranges of a block.
func (c *Codec) check(b Block) error {
	if len(b) != len(c.channels) {
		return Error.New("block has %d channels, want %d", len(b), len(c.channels))
	}

	for i, ch := range c.channels {
		if len(b[i]) != int(ch.Count) {
			return Error.New("channel %q has %d samples, want %d", ch.Name, len(b[i]), ch.Count)
		}

		for j, s := range b[i] {
			if s < ch.Min || s > ch.Max {
				return &schema.ValidationError{
					Field: fmt.Sprintf("waveform %s[%d]", ch.Name, j),
					Value: float64(s),
					Min:   float64(ch.Min),
					Max:   float64(ch.Max),
				}
			}
		}
	}

	return nil
}

// Encode compresses b. The returned slice is only valid until the next call
// to Encode.
func (c *Codec) Encode(b Block) ([]byte, error) {
	err := c.check(b)
	if err != nil {
		return nil, err
	}

	w := c.w
	w.Reset()
	w.Skip(sizeBits)

	for i, ch := range c.channels {
		samples := b[i]
		wb := ch.start.Bits()

		w.Write(uint64(int64(samples[0])-int64(ch.Min)), wb)

		c.deltas = c.deltas[:0]
		for j := 1; j < len(samples); j++ {
			c.deltas = append(c.deltas, int64(samples[j])-int64(samples[j-1]))
		}

		var bias, top int64
		for j, d := range c.deltas {
			if j == 0 || d < bias {
				bias = d
			}
			if j == 0 || d > top {
				top = d
			}
		}

		numBits := bitpack.Width(uint64(top - bias))

		w.Write(bitpack.ZigZag(bias), wb+1)
		w.Write(uint64(numBits), numBitsBits)

		if numBits == 0 {
			continue
		}

		for _, d := range c.deltas {
			w.Write(uint64(d-bias), numBits)
		}
	}

	w.PackAt(0, sizeBits, uint64(w.Len()))

	return w.Bytes(), nil
}

// Decode expands a block produced by Encode.
func (c *Codec) Decode(data []byte) (b Block, err error) {
	defer Error.WrapP(&err)

	r := bitpack.NewReader(data)

	size, err := r.Read(sizeBits)
	if err != nil {
		return nil, err
	}

	if size != uint64(len(data)) {
		return nil, Error.New("block size %d does not match %d bytes", size, len(data))
	}

	b = make(Block, len(c.channels))
	for i, ch := range c.channels {
		wb := ch.start.Bits()

		start, err := r.Read(wb)
		if err != nil {
			return nil, err
		}

		zbias, err := r.Read(wb + 1)
		if err != nil {
			return nil, err
		}
		bias := bitpack.UnZigZag(zbias)

		numBits, err := r.Read(numBitsBits)
		if err != nil {
			return nil, err
		}

		samples := make([]int32, ch.Count)

		v := int64(ch.Min) + int64(start)
		samples[0] = int32(v)

		for j := 1; j < len(samples); j++ {
			var d uint64
			if numBits > 0 {
				d, err = r.Read(int(numBits))
				if err != nil {
					return nil, err
				}
			}

			v += int64(d) + bias
			if v < int64(ch.Min) || v > int64(ch.Max) {
				return nil, Error.New("channel %q sample %d out of range: %d", ch.Name, j, v)
			}

			samples[j] = int32(v)
		}

		b[i] = samples
	}

	return b, nil
}

// ReadBlock reads and decodes the block starting at off. limit is the number
// of bytes available from off to the end of the waveform region; a block
// claiming to be longer is rejected before anything is allocated.
func (c *Codec) ReadBlock(r io.ReaderAt, off, limit int64) (b Block, err error) {
	var prefix [sizeBits / 8]byte

	_, err = r.ReadAt(prefix[:], off)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	size := int(bitpack.Unpack(prefix[:], 0, sizeBits))
	if size < len(prefix) {
		return nil, Error.New("invalid block size %d at %d", size, off)
	}

	if int64(size) > limit {
		return nil, Error.New("block size %d at %d exceeds the %d bytes left in the region", size, off, limit)
	}

	data := make([]byte, size)

	_, err = r.ReadAt(data, off)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return c.Decode(data)
}
