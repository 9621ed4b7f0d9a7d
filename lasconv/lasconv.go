package lasconv

import (
	"fmt"
	"math"

	"github.com/edaniels/lidario"
	"github.com/zeebo/errs"
	"go.uber.org/multierr"

	"github.com/calebcase/wlf"
	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/record"
)

// Error is the error class for this package.
var Error = errs.Class("lasconv")

// LAS limits.
const (
	maxReturns     = 7
	maxPointSource = math.MaxUint16
	maxRGB         = math.MaxUint16
	maxIntensity   = math.MaxUint16

	classMask   = 0b_0001_1111
	withheldBit = 0b_1000_0000
	edgeBit     = 0b_1000_0000
)

// UserDataAttribute names the attribute that holds the LAS user data byte.
const UserDataAttribute = "user_data"

// Progress is called with the number of points converted so far.
type Progress func(done, total int64)

func (p Progress) report(done, total int64) {
	if p != nil {
		p(done, total)
	}
}

// hasGPS reports whether a point format carries GPS time.
func hasGPS(format byte) bool {
	return format == 1 || format == 3
}

// hasRGB reports whether a point format carries color.
func hasRGB(format byte) bool {
	return format == 2 || format == 3
}

// ConfigFromLAS returns a configuration covering every point described by h.
func ConfigFromLAS(h *lidario.LasHeader) header.Config {
	cfg := header.Config{
		Source:           "LAS",
		System:           h.SystemID,
		MaxReturns:       maxReturns,
		MaxPointSource:   maxPointSource,
		EdgeOfFlightLine: true,

		X: span(h.MinX, h.MaxX, h.XScaleFactor),
		Y: span(h.MinY, h.MaxY, h.YScaleFactor),
		Z: span(h.MinZ, h.MaxZ, h.ZScaleFactor),

		ScanAngle: header.Range{Min: -90, Max: 90, Scale: 1},
		Intensity: header.Range{Min: 0, Max: maxIntensity, Scale: 1},
		Attributes: []header.Attribute{
			{Name: UserDataAttribute, Range: header.Range{Min: 0, Max: math.MaxUint8, Scale: 1}},
		},
	}

	cfg.NullZ = cfg.Z.Min - 1

	if hasRGB(h.PointFormatID) {
		cfg.RGBMax = maxRGB
	}

	return cfg
}

// span returns the whole-unit range holding [min, max] at the resolution of
// a LAS scale factor.
func span(min, max, factor float64) header.Range {
	r := header.Range{
		Min:   math.Floor(min),
		Max:   math.Ceil(max),
		Scale: 1000,
	}
	if r.Max <= r.Min {
		r.Max = r.Min + 1
	}

	if factor > 0 {
		r.Scale = math.Round(1 / factor)
		if r.Scale < 1 {
			r.Scale = 1
		}
	}

	return r
}

// Import appends every point of the LAS file at path to s, which must be
// creating a file without waveform channels.
func Import(s *wlf.Session, path string, progress Progress) (n int64, err error) {
	defer Error.WrapP(&err)

	if !s.Creating() {
		return 0, Error.New("import: session is not creating a file")
	}

	if len(s.Header().Waveforms) > 0 {
		return 0, Error.New("import: LAS points have no waveforms for the declared channels")
	}

	lf, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Combine(err, lf.Close())
	}()

	cfg := &s.Header().Config
	total := int64(lf.Header.NumberPoints)

	var p record.Point
	for i := 0; i < lf.Header.NumberPoints; i++ {
		lp, err := lf.LasPoint(i)
		if err != nil {
			return n, err
		}

		err = fromLAS(lp, cfg, &p)
		if err != nil {
			return n, fmt.Errorf("point %d: %w", i, err)
		}

		err = s.Append(&p, nil, int64(i))
		if err != nil {
			return n, fmt.Errorf("point %d: %w", i, err)
		}

		n++
		if n%progressInterval == 0 {
			progress.report(n, total)
		}
	}

	progress.report(n, total)

	return n, nil
}

const progressInterval = 1 << 14

func fromLAS(lp lidario.LasPointer, cfg *header.Config, p *record.Point) error {
	d := lp.PointData()

	*p = record.Point{
		X:               d.X,
		Y:               d.Y,
		Z:               d.Z,
		Intensity:       float64(d.Intensity),
		ReturnNumber:    uint32(d.BitField.Value & 0b_0111),
		NumberOfReturns: uint32(d.BitField.Value >> 3 & 0b_0111),
		ScanAngle:       float64(d.ScanAngle),
		PointSource:     uint32(d.PointSourceID),
		Classification:  d.ClassBitField.Value & classMask,
	}

	if p.ReturnNumber == 0 {
		p.ReturnNumber = 1
	}

	if d.BitField.Value&edgeBit != 0 {
		p.EdgeOfFlightLine = 1
	}

	if d.ClassBitField.Value&withheldBit != 0 {
		p.Status |= record.FilterInvalid
	}

	if idx := attributeIndex(cfg, UserDataAttribute); idx >= 0 {
		p.Attributes[idx] = float64(d.UserData)
	}

	var gps float64
	var rgb *lidario.RgbData

	switch v := lp.(type) {
	case *lidario.PointRecord1:
		gps = v.GPSTime
	case *lidario.PointRecord2:
		rgb = v.RGB
	case *lidario.PointRecord3:
		gps, rgb = v.GPSTime, v.RGB
	}

	if gps < 0 || gps > math.MaxUint32 {
		return Error.New("GPS time %v outside of the unix second range", gps)
	}

	sec := math.Floor(gps)
	nsec := math.Round((gps - sec) * 1e9)
	if nsec >= 1e9 {
		sec++
		nsec -= 1e9
	}
	p.Seconds, p.Nanoseconds = uint32(sec), uint32(nsec)

	if rgb != nil && cfg.RGBMax > 0 {
		p.RGB = [3]uint32{
			rescale(uint32(rgb.Red), maxRGB, cfg.RGBMax),
			rescale(uint32(rgb.Green), maxRGB, cfg.RGBMax),
			rescale(uint32(rgb.Blue), maxRGB, cfg.RGBMax),
		}
	}

	return nil
}

func attributeIndex(cfg *header.Config, name string) int {
	for i, a := range cfg.Attributes {
		if a.Name == name && a.Enabled() {
			return i
		}
	}

	return -1
}

// rescale maps v from [0, from] to [0, to].
func rescale(v, from, to uint32) uint32 {
	if from == to {
		return v
	}

	return uint32(math.Round(float64(v) * float64(to) / float64(from)))
}

// clamp rounds f into [min, max].
func clamp(f, min, max float64) float64 {
	f = math.Round(f)

	switch {
	case math.IsNaN(f) || f < min:
		return min
	case f > max:
		return max
	default:
		return f
	}
}

// Export writes every record of s to a new LAS file at path. It returns the
// number of points written and the number skipped for having a null Z.
func Export(s *wlf.Session, path string, progress Progress) (n, skipped int64, err error) {
	defer Error.WrapP(&err)

	h := s.Header()

	format := byte(1)
	if h.RGBMax > 0 {
		format = 3
	}

	lf, err := lidario.NewLasFile(path, "w")
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		err = multierr.Combine(err, lf.Close())
	}()

	err = lf.AddHeader(lidario.LasHeader{
		PointFormatID: format,
		SystemID:      h.System,
		XScaleFactor:  1 / h.X.Scale,
		YScaleFactor:  1 / h.Y.Scale,
		ZScaleFactor:  1 / h.Z.Scale,
		XOffset:       h.X.Min,
		YOffset:       h.Y.Min,
		ZOffset:       h.Z.Min,
	})
	if err != nil {
		return 0, 0, err
	}

	userData := attributeIndex(&h.Config, UserDataAttribute)
	total := int64(s.Len())

	for i := uint64(0); i < s.Len(); i++ {
		p, _, err := s.Read(i, false)
		if err != nil {
			return n, skipped, err
		}

		if p.Z == h.NullZ {
			skipped++

			continue
		}

		err = lf.AddLasPoint(toLAS(p, h, format, userData))
		if err != nil {
			return n, skipped, fmt.Errorf("point %d: %w", i, err)
		}

		n++
		if n%progressInterval == 0 {
			progress.report(n+skipped, total)
		}
	}

	progress.report(n+skipped, total)

	return n, skipped, nil
}

func toLAS(p *record.Point, h *header.Header, format byte, userData int) lidario.LasPointer {
	bits := byte(clamp(float64(p.ReturnNumber), 0, maxReturns)) |
		byte(clamp(float64(p.NumberOfReturns), 0, maxReturns))<<3
	if p.EdgeOfFlightLine == 1 {
		bits |= edgeBit
	}

	class := p.Classification & classMask
	if p.Invalid() {
		class |= withheldBit
	}

	pr0 := &lidario.PointRecord0{
		X:         p.X,
		Y:         p.Y,
		Z:         p.Z,
		Intensity: uint16(clamp(p.Intensity, 0, maxIntensity)),
		BitField: lidario.PointBitField{
			Value: bits,
		},
		ClassBitField: lidario.ClassificationBitField{
			Value: class,
		},
		ScanAngle:     int8(clamp(p.ScanAngle, -90, 90)),
		PointSourceID: uint16(clamp(float64(p.PointSource), 0, maxPointSource)),
	}

	if userData >= 0 {
		pr0.UserData = uint8(clamp(p.Attributes[userData], 0, math.MaxUint8))
	}

	gps := float64(p.Seconds) + float64(p.Nanoseconds)/1e9

	if format == 1 {
		return &lidario.PointRecord1{
			PointRecord0: pr0,
			GPSTime:      gps,
		}
	}

	return &lidario.PointRecord3{
		PointRecord0: pr0,
		GPSTime:      gps,
		RGB: &lidario.RgbData{
			Red:   uint16(rescale(p.RGB[0], h.RGBMax, maxRGB)),
			Green: uint16(rescale(p.RGB[1], h.RGBMax, maxRGB)),
			Blue:  uint16(rescale(p.RGB[2], h.RGBMax, maxRGB)),
		},
	}
}
