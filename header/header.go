package header

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/zeebo/errs"
)

// Error is the error class for this package.
var Error = errs.Class("header")

// Size is the number of bytes reserved for the header at the start of a file.
const Size = 65536

// Library version written into new files.
const (
	LibraryMajor = 1
	LibraryMinor = 0
	libraryDate  = "10/14/26"
	versionTag   = "WLF library V"
)

// LibraryVersion is the version string written into new files.
var LibraryVersion = fmt.Sprintf("%s%d.%02d - %s", versionTag, LibraryMajor, LibraryMinor, libraryDate)

// dateLayout is used for creation and modification dates.
const dateLayout = time.RFC3339

// Observed holds statistics accumulated while a file is written.
type Observed struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64

	Start time.Time
	End   time.Time
}

// Header is the complete decoded header of a file.
type Header struct {
	Config

	Version string

	CreationSoftware     string
	CreationDate         time.Time
	ModificationSoftware string
	ModificationDate     time.Time

	HeaderSize      int
	RecordSize      int
	NumberOfRecords uint64

	// WaveformBlockOffset is the file offset of the waveform region. Waveform
	// addresses stored in records are relative to it.
	WaveformBlockOffset int64
	WaveformBytes       int64

	Observed Observed

	// Extra holds keys this version doesn't know about.
	Extra map[string]string
}

// New returns a header for a new file.
func New(cfg Config) *Header {
	return &Header{
		Config:     cfg,
		Version:    LibraryVersion,
		HeaderSize: Size,
	}
}

// FileVersion parses the version string.
func (h *Header) FileVersion() (*semver.Version, error) {
	return parseVersion(h.Version)
}

// Newer reports whether the file was written by a newer library than this
// one.
func (h *Header) Newer() (bool, error) {
	v, err := h.FileVersion()
	if err != nil {
		return false, err
	}

	return v.GreaterThan(semver.New(LibraryMajor, LibraryMinor, 0, "", "")), nil
}

func parseVersion(s string) (_ *semver.Version, err error) {
	idx := strings.Index(s, versionTag)
	if idx < 0 {
		return nil, Error.New("not a WLF file: missing version marker")
	}

	var major, minor uint64

	_, err = fmt.Sscanf(s[idx+len(versionTag):], "%d.%d", &major, &minor)
	if err != nil {
		return nil, Error.New("garbled version %q: %v", s, err)
	}

	return semver.New(major, minor, 0, "", ""), nil
}

// MarshalBinary renders the header as exactly HeaderSize bytes of text padded
// with spaces.
func (h *Header) MarshalBinary() (data []byte, err error) {
	defer Error.WrapP(&err)

	size := h.HeaderSize
	if size == 0 {
		size = Size
	}

	var b strings.Builder

	line := func(key, value string) {
		fmt.Fprintf(&b, "[%s] = %s\n", key, value)
	}
	multi := func(key, value string) {
		if value == "" {
			return
		}

		fmt.Fprintf(&b, "{%s =\n%s\n}\n", key, value)
	}

	line("VERSION", h.Version)
	line("HEADER SIZE", strconv.Itoa(size))
	line("RECORD SIZE", strconv.Itoa(h.RecordSize))
	line("NUMBER OF RECORDS", strconv.FormatUint(h.NumberOfRecords, 10))

	for _, kv := range []struct{ key, value string }{
		{"SOURCE", h.Source},
		{"SYSTEM", h.System},
		{"PROJECT", h.Project},
		{"MISSION", h.Mission},
		{"DATASET", h.Dataset},
		{"FLIGHT", h.Flight},
		{"CREATION SOFTWARE", h.CreationSoftware},
		{"MODIFICATION SOFTWARE", h.ModificationSoftware},
		{"Z OFFSET DATUM", h.ZOffsetDatum},
	} {
		if kv.value != "" {
			line(kv.key, kv.value)
		}
	}

	if !h.CreationDate.IsZero() {
		line("CREATION DATE", h.CreationDate.UTC().Format(dateLayout))
	}
	if !h.ModificationDate.IsZero() {
		line("MODIFICATION DATE", h.ModificationDate.UTC().Format(dateLayout))
	}

	line("NULL Z", formatFloat(h.NullZ))
	line("MAX RETURNS", strconv.FormatUint(uint64(h.MaxReturns), 10))
	line("MAX POINT SOURCE", strconv.FormatUint(uint64(h.MaxPointSource), 10))
	line("RGB MAX", strconv.FormatUint(uint64(h.RGBMax), 10))
	line("EDGE OF FLIGHT LINE", formatBool(h.EdgeOfFlightLine))

	for _, nr := range h.Config.ranges() {
		if !nr.r.Enabled() {
			continue
		}

		line(nr.key+" MIN", formatFloat(nr.r.Min))
		line(nr.key+" MAX", formatFloat(nr.r.Max))
		line(nr.key+" SCALE", formatFloat(nr.r.Scale))
	}

	line("NUMBER OF ATTRIBUTES", strconv.Itoa(len(h.Attributes)))
	for i, a := range h.Attributes {
		n := strconv.Itoa(i)

		if a.Name != "" {
			line("ATTRIBUTE NAME "+n, a.Name)
		}
		line("ATTRIBUTE MIN "+n, formatFloat(a.Min))
		line("ATTRIBUTE MAX "+n, formatFloat(a.Max))
		line("ATTRIBUTE SCALE "+n, formatFloat(a.Scale))
	}

	line("NUMBER OF WAVEFORMS", strconv.Itoa(len(h.Waveforms)))
	for i, ch := range h.Waveforms {
		n := strconv.Itoa(i)

		line("WAVEFORM NAME "+n, ch.Name)
		line("WAVEFORM MIN "+n, strconv.FormatInt(int64(ch.Min), 10))
		line("WAVEFORM MAX "+n, strconv.FormatInt(int64(ch.Max), 10))
		line("WAVEFORM COUNT "+n, strconv.FormatUint(uint64(ch.Count), 10))
	}
	if len(h.Waveforms) > 0 {
		line("WAVEFORM BLOCK OFFSET", strconv.FormatInt(h.WaveformBlockOffset, 10))
		line("WAVEFORM BYTES", strconv.FormatInt(h.WaveformBytes, 10))
	}

	if h.NumberOfRecords > 0 {
		o := h.Observed
		line("OBSERVED MIN X", formatFloat(o.MinX))
		line("OBSERVED MAX X", formatFloat(o.MaxX))
		line("OBSERVED MIN Y", formatFloat(o.MinY))
		line("OBSERVED MAX Y", formatFloat(o.MaxY))
		line("OBSERVED MIN Z", formatFloat(o.MinZ))
		line("OBSERVED MAX Z", formatFloat(o.MaxZ))
		line("OBSERVED START TIME", o.Start.UTC().Format(time.RFC3339Nano))
		line("OBSERVED END TIME", o.End.UTC().Format(time.RFC3339Nano))
	}

	keys := make([]string, 0, len(h.Extra))
	for k := range h.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(h.Extra[k], "\n") {
			multi(k, h.Extra[k])
		} else {
			line(k, h.Extra[k])
		}
	}

	multi("WKT", h.WKT)
	multi("COMMENTS", h.Comments)

	b.WriteString(endMarker)
	b.WriteString("\n")

	if b.Len() > size {
		return nil, Error.New("header text is %d bytes, limit is %d", b.Len(), size)
	}

	data = make([]byte, size)
	n := copy(data, b.String())
	for i := n; i < size; i++ {
		data[i] = ' '
	}

	return data, nil
}

// UnmarshalBinary parses header text. The result is not validated against
// the format rules; see Config.Validate.
func (h *Header) UnmarshalBinary(data []byte) (err error) {
	defer Error.WrapP(&err)

	e, err := parse(data)
	if err != nil {
		return err
	}

	version, ok := e.get("VERSION")
	if !ok {
		return Error.New("not a WLF file: missing version marker")
	}

	_, err = parseVersion(version)
	if err != nil {
		return err
	}

	*h = Header{Version: version}

	d := decoder{e: e}

	h.HeaderSize = int(d.integer("HEADER SIZE", true))
	h.RecordSize = int(d.integer("RECORD SIZE", true))
	h.NumberOfRecords = d.unsigned("NUMBER OF RECORDS", true)

	h.Source = d.str("SOURCE")
	h.System = d.str("SYSTEM")
	h.Project = d.str("PROJECT")
	h.Mission = d.str("MISSION")
	h.Dataset = d.str("DATASET")
	h.Flight = d.str("FLIGHT")
	h.CreationSoftware = d.str("CREATION SOFTWARE")
	h.ModificationSoftware = d.str("MODIFICATION SOFTWARE")
	h.ZOffsetDatum = d.str("Z OFFSET DATUM")
	h.CreationDate = d.timestamp("CREATION DATE")
	h.ModificationDate = d.timestamp("MODIFICATION DATE")

	h.NullZ = d.float("NULL Z", true)
	h.MaxReturns = uint32(d.unsigned("MAX RETURNS", false))
	h.MaxPointSource = uint32(d.unsigned("MAX POINT SOURCE", false))
	h.RGBMax = uint32(d.unsigned("RGB MAX", false))
	h.EdgeOfFlightLine = d.flag("EDGE OF FLIGHT LINE")

	for _, nr := range h.Config.ranges() {
		*nr.r = d.rng(nr.key+" MIN", nr.key+" MAX", nr.key+" SCALE")
	}

	if n := d.integer("NUMBER OF ATTRIBUTES", false); n > 0 {
		if n > MaxAttributes {
			return Error.New("too many attributes: %d", n)
		}

		h.Attributes = make([]Attribute, n)
		for i := range h.Attributes {
			s := strconv.Itoa(i)

			h.Attributes[i] = Attribute{
				Name:  d.str("ATTRIBUTE NAME " + s),
				Range: d.rng("ATTRIBUTE MIN "+s, "ATTRIBUTE MAX "+s, "ATTRIBUTE SCALE "+s),
			}
		}
	}

	if n := d.integer("NUMBER OF WAVEFORMS", false); n > 0 {
		if n > 64 {
			return Error.New("too many waveforms: %d", n)
		}

		h.Waveforms = make([]Channel, n)
		for i := range h.Waveforms {
			s := strconv.Itoa(i)

			h.Waveforms[i] = Channel{
				Name:  d.str("WAVEFORM NAME " + s),
				Min:   int32(d.integer("WAVEFORM MIN "+s, true)),
				Max:   int32(d.integer("WAVEFORM MAX "+s, true)),
				Count: uint32(d.unsigned("WAVEFORM COUNT "+s, true)),
			}
		}

		h.WaveformBlockOffset = d.integer("WAVEFORM BLOCK OFFSET", true)
		h.WaveformBytes = d.integer("WAVEFORM BYTES", false)
	}

	if h.NumberOfRecords > 0 {
		h.Observed = Observed{
			MinX:  d.float("OBSERVED MIN X", false),
			MaxX:  d.float("OBSERVED MAX X", false),
			MinY:  d.float("OBSERVED MIN Y", false),
			MaxY:  d.float("OBSERVED MAX Y", false),
			MinZ:  d.float("OBSERVED MIN Z", false),
			MaxZ:  d.float("OBSERVED MAX Z", false),
			Start: d.timestamp("OBSERVED START TIME"),
			End:   d.timestamp("OBSERVED END TIME"),
		}
	}

	h.WKT = d.str("WKT")
	h.Comments = d.str("COMMENTS")

	if d.err != nil {
		return d.err
	}

	h.Extra = e.unused()

	return nil
}

// decoder converts entries to typed values, remembering the first error.
type decoder struct {
	e   *entries
	err error
}

func (d *decoder) lookup(key string, required bool) (string, bool) {
	v, ok := d.e.get(key)
	if !ok && required && d.err == nil {
		d.err = Error.New("missing [%s]", key)
	}

	return v, ok
}

func (d *decoder) fail(key, v string, err error) {
	if d.err == nil {
		d.err = Error.New("[%s] = %q: %v", key, v, err)
	}
}

func (d *decoder) str(key string) string {
	v, _ := d.lookup(key, false)

	return v
}

func (d *decoder) integer(key string, required bool) int64 {
	v, ok := d.lookup(key, required)
	if !ok {
		return 0
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d.fail(key, v, err)
	}

	return n
}

func (d *decoder) unsigned(key string, required bool) uint64 {
	v, ok := d.lookup(key, required)
	if !ok {
		return 0
	}

	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		d.fail(key, v, err)
	}

	return n
}

func (d *decoder) float(key string, required bool) float64 {
	v, ok := d.lookup(key, required)
	if !ok {
		return 0
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		d.fail(key, v, err)
	}

	return f
}

func (d *decoder) flag(key string) bool {
	v, ok := d.lookup(key, false)
	if !ok {
		return false
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		d.fail(key, v, err)
	}

	return b
}

func (d *decoder) timestamp(key string) time.Time {
	v, ok := d.lookup(key, false)
	if !ok || v == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		d.fail(key, v, err)
	}

	return t
}

func (d *decoder) rng(minKey, maxKey, scaleKey string) Range {
	return Range{
		Min:   d.float(minKey, false),
		Max:   d.float(maxKey, false),
		Scale: d.float(scaleKey, false),
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
