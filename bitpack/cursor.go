package bitpack

// Writer appends bit fields to an owned, growing buffer.
type Writer struct {
	buf []byte
	pos int
}

// NewWriter returns a writer with room for size bytes before it has to grow.
func NewWriter(size int) *Writer {
	return &Writer{
		buf: make([]byte, 0, size),
	}
}

// grow makes sure the buffer covers n more bits past the cursor.
func (w *Writer) grow(n int) {
	need := (w.pos + n + 7) >> 3
	for len(w.buf) < need {
		w.buf = append(w.buf, 0)
	}
}

// Write appends the low n bits of v.
func (w *Writer) Write(v uint64, n int) {
	w.grow(n)
	DoublePack(w.buf, w.pos, n, int64(v))
	w.pos += n
}

// Skip reserves n zero bits to be filled in later with PackAt.
func (w *Writer) Skip(n int) {
	w.grow(n)
	w.pos += n
}

// PackAt overwrites an already written field.
func (w *Writer) PackAt(start, n int, v uint64) {
	DoublePack(w.buf, start, n, int64(v))
}

// Pos returns the number of bits written.
func (w *Writer) Pos() int {
	return w.pos
}

// Len returns the number of bytes written, counting a partial trailing byte.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written bytes. The slice aliases the writer's buffer
// until the next call to Reset.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reset empties the writer keeping its capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.pos = 0
}

// Reader consumes bit fields from a buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a reader positioned at the first bit of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{
		buf: buf,
	}
}

// Read returns the next n bits.
func (r *Reader) Read(n int) (v uint64, err error) {
	if n < 0 || n > MaxBits {
		return 0, Error.New("invalid width: %d", n)
	}

	if r.pos+n > len(r.buf)*8 {
		return 0, Error.New(
			"short buffer: pos=%d width=%d available=%d",
			r.pos,
			n,
			len(r.buf)*8-r.pos,
		)
	}

	v = DoubleUnpack(r.buf, r.pos, n)
	r.pos += n

	return v, nil
}

// Pos returns the number of bits consumed.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.buf)*8 - r.pos
}
