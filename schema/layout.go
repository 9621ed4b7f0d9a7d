package schema

import (
	"math"

	"github.com/zeebo/errs"

	"github.com/calebcase/wlf/bitpack"
	"github.com/calebcase/wlf/header"
)

// Error is the error class for this package.
var Error = errs.Class("schema")

// Field is one compiled field of a layout.
type Field struct {
	ID   FieldID
	Name string

	Offset int
	Width  int

	Min      float64
	Max      float64
	Scale    float64
	Overflow bool
}

// Present reports whether the field occupies any bits.
func (f Field) Present() bool {
	return f.Width > 0
}

// Steps returns the stored integer for Max.
func (f Field) Steps() uint64 {
	return uint64(math.Round((f.Max - f.Min) * f.Scale))
}

// OverflowValue returns the stored integer reserved for the sentinel of an
// overflow field: Max + 1 scaled, or one step past Max when the scale is too
// coarse to tell the two apart.
func (f Field) OverflowValue() uint64 {
	return overflow(f.Min, f.Max, f.Scale)
}

func overflow(min, max, scale float64) uint64 {
	v := uint64(math.Round((max + 1 - min) * scale))
	if steps := uint64(math.Round((max - min) * scale)); v <= steps {
		v = steps + 1
	}

	return v
}

// Check returns a *ValidationError if v is outside [Min, Max].
func (f Field) Check(v float64) error {
	if math.IsNaN(v) || v < f.Min || v > f.Max {
		return &ValidationError{
			Field: f.Name,
			Value: v,
			Min:   f.Min,
			Max:   f.Max,
		}
	}

	return nil
}

// Quantize maps v onto the stored integer. v must have passed Check.
func (f Field) Quantize(v float64) uint64 {
	return uint64(math.Round((v - f.Min) * f.Scale))
}

// Dequantize is the inverse of Quantize.
func (f Field) Dequantize(n uint64) float64 {
	return float64(n)/f.Scale + f.Min
}

// Layout is the compiled record layout of a file.
type Layout struct {
	// Fields holds every field of the table in canonical order, including
	// absent ones.
	Fields []Field

	// Bits is the sum of all field widths.
	Bits int

	// Size is Bits rounded up to whole bytes.
	Size int

	index map[FieldID]int
}

// Field returns the compiled field for id.
func (l *Layout) Field(id FieldID) (f Field, ok bool) {
	i, ok := l.index[id]
	if !ok {
		return f, false
	}

	return l.Fields[i], true
}

// Present returns the fields that occupy bits, in canonical order.
func (l *Layout) Present() []Field {
	var fs []Field

	for _, f := range l.Fields {
		if f.Present() {
			fs = append(fs, f)
		}
	}

	return fs
}

// Compile builds the layout of the canonical field table.
func Compile(cfg *header.Config) (*Layout, error) {
	return CompileFields(cfg, Fields)
}

// CompileFields builds the layout of an arbitrary field table. It is used by
// Compile and for reading files written with a longer table.
func CompileFields(cfg *header.Config, defs []Def) (l *Layout, err error) {
	defer Error.WrapP(&err)

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	l = &Layout{
		Fields: make([]Field, 0, len(defs)),
		index:  make(map[FieldID]int, len(defs)),
	}

	offset := 0
	for _, d := range defs {
		if _, dup := l.index[d.ID]; dup {
			return nil, Error.New("duplicate field %d (%s)", d.ID, d.Name)
		}

		b := d.Bounds(cfg)

		f := Field{
			ID:       d.ID,
			Name:     d.Name,
			Offset:   offset,
			Min:      b.Min,
			Max:      b.Max,
			Scale:    b.Scale,
			Overflow: b.Overflow,
		}

		f.Width, err = width(b)
		if err != nil {
			return nil, Error.New("%s: %v", d.Name, err)
		}

		offset += f.Width

		l.index[d.ID] = len(l.Fields)
		l.Fields = append(l.Fields, f)
	}

	l.Bits = offset
	l.Size = (offset + 7) / 8

	return l, nil
}

// width derives the number of bits needed for a field.
func width(b Bounds) (int, error) {
	if b.Scale == 0 {
		return 0, nil
	}

	steps := math.Round((b.Max - b.Min) * b.Scale)
	if b.Overflow {
		steps = math.Round((b.Max + 1 - b.Min) * b.Scale)
		steps = math.Max(steps, math.Round((b.Max-b.Min)*b.Scale)+1)
	}

	switch {
	case math.IsNaN(steps) || steps < 0:
		return 0, Error.New("invalid range [%v, %v] scale %v", b.Min, b.Max, b.Scale)
	case steps >= math.Exp2(bitpack.MaxBits):
		return 0, Error.New("range [%v, %v] scale %v needs more than %d bits", b.Min, b.Max, b.Scale, bitpack.MaxBits)
	}

	if b.Width > 0 {
		if uint64(steps) > bitpack.Max(b.Width) {
			return 0, Error.New("range [%v, %v] does not fit %d bits", b.Min, b.Max, b.Width)
		}

		return b.Width, nil
	}

	return bitpack.Width(uint64(steps)), nil
}
