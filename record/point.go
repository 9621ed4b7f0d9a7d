package record

import "github.com/calebcase/wlf/header"

// Status bits.
const (
	ManuallyInvalid Status = 1 << iota
	FilterInvalid
	Selected
	Reference
	Suspect
	Modified

	Invalid = ManuallyInvalid | FilterInvalid
)

// Status is the point status bitmask.
type Status uint8

// Has reports whether any of the bits in s are set.
func (st Status) Has(s Status) bool {
	return st&s != 0
}

// Point is one decoded point measurement.
type Point struct {
	Seconds     uint32
	Nanoseconds uint32

	X float64
	Y float64
	Z float64

	HorizontalUncertainty float64
	VerticalUncertainty   float64

	SensorX       float64
	SensorY       float64
	SensorZ       float64
	SensorRoll    float64
	SensorPitch   float64
	SensorHeading float64

	ScanAngle    float64
	NadirAngle   float64
	WaterSurface float64
	ZOffset      float64

	NumberOfReturns uint32

	// ReturnNumber is one based.
	ReturnNumber uint32
	PointSource  uint32

	// EdgeOfFlightLine is -1, 0 or 1.
	EdgeOfFlightLine int8

	Intensity   float64
	Attributes  [header.MaxAttributes]float64
	RGB         [3]uint32
	Reflectance float64

	Classification uint8
	Status         Status

	// WaveformAddress is the offset of the waveform block of this shot
	// within the waveform region.
	WaveformAddress uint64

	// WaveformPoint is the sample index of this return in its waveform.
	WaveformPoint uint32
}

// Invalid reports whether the point has been marked invalid.
func (p *Point) Invalid() bool {
	return p.Status.Has(Invalid)
}
