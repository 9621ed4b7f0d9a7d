package schema

import (
	"fmt"

	"github.com/calebcase/wlf/header"
)

// FieldID identifies a record field. The numeric value is the position in the
// canonical order.
type FieldID int

// Canonical field order. Append only.
const (
	TvSec FieldID = iota
	TvNsec
	X
	Y
	Z
	HorizontalUncertainty
	VerticalUncertainty
	SensorX
	SensorY
	SensorZ
	SensorRoll
	SensorPitch
	SensorHeading
	ScanAngle
	NadirAngle
	WaterSurface
	ZOffset
	NumberOfReturns
	ReturnNumber
	PointSource
	EdgeOfFlightLine
	Intensity
	Attribute0
	Attribute1
	Attribute2
	Attribute3
	Attribute4
	Attribute5
	Attribute6
	Attribute7
	Attribute8
	Attribute9
	Red
	Green
	Blue
	Reflectance
	Classification
	Status
	WaveformAddress
	WaveformPoint

	// NumFields is the number of fields known to this version.
	NumFields
)

// Fixed field widths.
const (
	TvSecBits           = 32
	TvNsecBits          = 30
	ClassificationBits  = 8
	StatusBits          = 8
	WaveformAddressBits = 40
	EdgeOfFlightBits    = 2
)

// Attribute returns the id of attribute i.
func Attribute(i int) FieldID {
	return Attribute0 + FieldID(i)
}

// Bounds are the logical limits and scale of a field. A field with a zero
// Scale is absent.
type Bounds struct {
	Min   float64
	Max   float64
	Scale float64

	// Overflow reserves one extra unit above Max for a sentinel value.
	Overflow bool

	// Width, when positive, fixes the field width instead of deriving it
	// from the range.
	Width int
}

// Def describes how a field gets its bounds from a configuration.
type Def struct {
	ID   FieldID
	Name string

	Bounds func(cfg *header.Config) Bounds
}

func derived(get func(cfg *header.Config) header.Range) func(cfg *header.Config) Bounds {
	return func(cfg *header.Config) Bounds {
		r := get(cfg)

		return Bounds{Min: r.Min, Max: r.Max, Scale: r.Scale}
	}
}

func fixed(width int, max float64) func(cfg *header.Config) Bounds {
	return func(cfg *header.Config) Bounds {
		return Bounds{Min: 0, Max: max, Scale: 1, Width: width}
	}
}

// counted fields hold integers in [min, max]; a zero max removes the field.
func counted(get func(cfg *header.Config) (min, max float64)) func(cfg *header.Config) Bounds {
	return func(cfg *header.Config) Bounds {
		min, max := get(cfg)
		if max <= 0 {
			return Bounds{}
		}

		return Bounds{Min: min, Max: max, Scale: 1}
	}
}

func hasWaveforms(cfg *header.Config) bool {
	return len(cfg.Waveforms) > 0
}

func attribute(i int) Def {
	return Def{
		ID:     Attribute(i),
		Name:   fmt.Sprintf("attribute[%d]", i),
		Bounds: derived(func(cfg *header.Config) header.Range {
			return cfg.Attribute(i).Range
		}),
	}
}

// Fields is the canonical field table of this version.
var Fields = []Def{
	{TvSec, "tv_sec", fixed(TvSecBits, 1<<32-1)},
	{TvNsec, "tv_nsec", fixed(TvNsecBits, 999_999_999)},
	{X, "x", derived(func(c *header.Config) header.Range { return c.X })},
	{Y, "y", derived(func(c *header.Config) header.Range { return c.Y })},
	{Z, "z", func(c *header.Config) Bounds {
		return Bounds{Min: c.Z.Min, Max: c.Z.Max, Scale: c.Z.Scale, Overflow: true}
	}},
	{HorizontalUncertainty, "horizontal_uncertainty", derived(func(c *header.Config) header.Range { return c.HorizontalUncertainty })},
	{VerticalUncertainty, "vertical_uncertainty", derived(func(c *header.Config) header.Range { return c.VerticalUncertainty })},
	{SensorX, "sensor_x", derived(func(c *header.Config) header.Range { return c.SensorX })},
	{SensorY, "sensor_y", derived(func(c *header.Config) header.Range { return c.SensorY })},
	{SensorZ, "sensor_z", derived(func(c *header.Config) header.Range { return c.SensorZ })},
	{SensorRoll, "sensor_roll", derived(func(c *header.Config) header.Range { return c.SensorRoll })},
	{SensorPitch, "sensor_pitch", derived(func(c *header.Config) header.Range { return c.SensorPitch })},
	{SensorHeading, "sensor_heading", derived(func(c *header.Config) header.Range { return c.SensorHeading })},
	{ScanAngle, "scan_angle", derived(func(c *header.Config) header.Range { return c.ScanAngle })},
	{NadirAngle, "nadir_angle", derived(func(c *header.Config) header.Range { return c.NadirAngle })},
	{WaterSurface, "water_surface", derived(func(c *header.Config) header.Range { return c.WaterSurface })},
	{ZOffset, "z_offset", derived(func(c *header.Config) header.Range { return c.ZOffset })},
	{NumberOfReturns, "number_of_returns", counted(func(c *header.Config) (float64, float64) {
		return 0, float64(c.MaxReturns)
	})},
	// Stored zero based.
	{ReturnNumber, "return_number", counted(func(c *header.Config) (float64, float64) {
		return 1, float64(c.MaxReturns)
	})},
	{PointSource, "point_source", counted(func(c *header.Config) (float64, float64) {
		return 0, float64(c.MaxPointSource)
	})},
	// Stored biased: -1, 0, 1 become 0, 1, 2.
	{EdgeOfFlightLine, "edge_of_flight_line", func(c *header.Config) Bounds {
		if !c.EdgeOfFlightLine {
			return Bounds{}
		}

		return Bounds{Min: -1, Max: 1, Scale: 1, Width: EdgeOfFlightBits}
	}},
	{Intensity, "intensity", derived(func(c *header.Config) header.Range { return c.Intensity })},
	attribute(0),
	attribute(1),
	attribute(2),
	attribute(3),
	attribute(4),
	attribute(5),
	attribute(6),
	attribute(7),
	attribute(8),
	attribute(9),
	{Red, "red", counted(func(c *header.Config) (float64, float64) { return 0, float64(c.RGBMax) })},
	{Green, "green", counted(func(c *header.Config) (float64, float64) { return 0, float64(c.RGBMax) })},
	{Blue, "blue", counted(func(c *header.Config) (float64, float64) { return 0, float64(c.RGBMax) })},
	{Reflectance, "reflectance", derived(func(c *header.Config) header.Range { return c.Reflectance })},
	{Classification, "classification", fixed(ClassificationBits, 1<<ClassificationBits-1)},
	{Status, "status", fixed(StatusBits, 1<<StatusBits-1)},
	{WaveformAddress, "waveform_address", func(c *header.Config) Bounds {
		if !hasWaveforms(c) {
			return Bounds{}
		}

		return Bounds{Min: 0, Max: 1<<WaveformAddressBits - 1, Scale: 1, Width: WaveformAddressBits}
	}},
	{WaveformPoint, "waveform_point", func(c *header.Config) Bounds {
		if !hasWaveforms(c) || c.MaxSampleCount() < 2 {
			return Bounds{}
		}

		return Bounds{Min: 0, Max: float64(c.MaxSampleCount() - 1), Scale: 1}
	}},
}

// String returns the canonical name of a field.
func (id FieldID) String() string {
	if id < 0 || int(id) >= len(Fields) {
		return fmt.Sprintf("field(%d)", int(id))
	}

	return Fields[id].Name
}
