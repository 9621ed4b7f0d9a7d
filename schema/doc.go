// Package schema compiles a header configuration into the bit layout of a
// point record.
//
// Every field has a fixed place in one canonical, append-only order. A field
// is either fixed (its width is a property of the format) or derived (its
// width follows from the declared range and scale of the file):
//
//	steps = round((max - min) * scale)
//	width = bits needed to hold [0, steps]
//
// A derived field with a zero scale, or a count field with a zero count, has
// no bits at all and is absent from the record. Offsets are the running sum
// of widths in canonical order and the record size is the total rounded up to
// a whole byte.
//
// The order must never change and new fields must only be appended at the
// end. Readers always step through a file using the record size stored in its
// header, so an older reader decodes every field it knows from files written
// with additional trailing fields.
package schema
