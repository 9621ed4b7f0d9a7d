package record

import (
	"github.com/zeebo/errs"

	"github.com/calebcase/wlf/bitpack"
	"github.com/calebcase/wlf/schema"
)

// Error is the error class for this package.
var Error = errs.Class("record")

// MutableFields may be rewritten in files opened for update.
var MutableFields = []schema.FieldID{
	schema.Attribute0,
	schema.Attribute1,
	schema.Attribute2,
	schema.Attribute3,
	schema.Attribute4,
	schema.Attribute5,
	schema.Attribute6,
	schema.Attribute7,
	schema.Attribute8,
	schema.Attribute9,
	schema.Red,
	schema.Green,
	schema.Blue,
	schema.Reflectance,
	schema.Classification,
	schema.Status,
}

// Codec packs points into fixed size records of one layout. A Codec keeps
// scratch state and must not be used from multiple goroutines at once.
type Codec struct {
	layout   *schema.Layout
	present  []schema.Field
	constant []schema.Field
	nullZ    float64

	values []uint64
}

// NewCodec returns a codec for layout. Z values equal to nullZ are stored in
// the overflow slot of the Z field.
func NewCodec(layout *schema.Layout, nullZ float64) *Codec {
	present := layout.Present()

	// Derived fields whose range is narrower than one step take no bits and
	// always read back as their minimum.
	var constant []schema.Field
	for _, f := range layout.Fields {
		if f.Scale != 0 && f.Width == 0 {
			constant = append(constant, f)
		}
	}

	return &Codec{
		layout:   layout,
		present:  present,
		constant: constant,
		nullZ:    nullZ,
		values:   make([]uint64, len(present)),
	}
}

// Layout returns the layout of the codec.
func (c *Codec) Layout() *schema.Layout {
	return c.layout
}

// Size returns the packed record size in bytes.
func (c *Codec) Size() int {
	return c.layout.Size
}

// quantize validates and converts one field of p.
func (c *Codec) quantize(f schema.Field, p *Point) (uint64, error) {
	v := get(p, f.ID)

	if f.Overflow && v == c.nullZ {
		return f.OverflowValue(), nil
	}

	err := f.Check(v)
	if err != nil {
		return 0, err
	}

	return f.Quantize(v), nil
}

// Pack returns p as a new record.
func (c *Codec) Pack(p *Point) ([]byte, error) {
	buf := make([]byte, c.layout.Size)

	err := c.PackInto(buf, p)
	if err != nil {
		return nil, err
	}

	return buf, nil
}

// PackInto writes p into buf, which must hold at least Size bytes. Every
// field is validated before anything is written, so buf is unchanged when a
// *schema.ValidationError is returned.
func (c *Codec) PackInto(buf []byte, p *Point) (err error) {
	if len(buf) < c.layout.Size {
		return Error.New("short buffer: %d < %d", len(buf), c.layout.Size)
	}

	for i, f := range c.present {
		c.values[i], err = c.quantize(f, p)
		if err != nil {
			return err
		}
	}

	for i := range buf[:c.layout.Size] {
		buf[i] = 0
	}

	for i, f := range c.present {
		bitpack.DoublePack(buf, f.Offset, f.Width, int64(c.values[i]))
	}

	return nil
}

// PackFields rewrites only the named fields of an existing record in buf.
// Fields that are absent from the layout are skipped.
func (c *Codec) PackFields(buf []byte, p *Point, ids ...schema.FieldID) (err error) {
	if len(buf) < c.layout.Size {
		return Error.New("short buffer: %d < %d", len(buf), c.layout.Size)
	}

	fields := make([]schema.Field, 0, len(ids))
	values := make([]uint64, 0, len(ids))

	for _, id := range ids {
		f, ok := c.layout.Field(id)
		if !ok {
			return Error.New("unknown field %s", id)
		}

		if !f.Present() {
			continue
		}

		v, err := c.quantize(f, p)
		if err != nil {
			return err
		}

		fields = append(fields, f)
		values = append(values, v)
	}

	for i, f := range fields {
		bitpack.DoublePack(buf, f.Offset, f.Width, int64(values[i]))
	}

	return nil
}

// Unpack decodes a record.
func (c *Codec) Unpack(buf []byte) (*Point, error) {
	p := &Point{}

	err := c.UnpackInto(buf, p)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// UnpackInto decodes a record into p. Fields absent from the layout take
// their default values. buf may be longer than Size; trailing bytes belong to
// fields this layout does not know.
func (c *Codec) UnpackInto(buf []byte, p *Point) error {
	if len(buf) < c.layout.Size {
		return Error.New("short record: %d < %d", len(buf), c.layout.Size)
	}

	*p = Point{
		NumberOfReturns: 1,
		ReturnNumber:    1,
	}

	for _, f := range c.constant {
		set(p, f.ID, f.Min)
	}

	for _, f := range c.present {
		n := bitpack.DoubleUnpack(buf, f.Offset, f.Width)

		if f.Overflow && n == f.OverflowValue() {
			set(p, f.ID, c.nullZ)

			continue
		}

		set(p, f.ID, f.Dequantize(n))
	}

	return nil
}
