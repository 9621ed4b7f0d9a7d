package header

import (
	"bytes"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxAttributes is the number of user defined attribute fields.
const MaxAttributes = 10

// MaxSamples is the largest number of samples allowed in one waveform
// channel.
const MaxSamples = 1 << 16

// Range declares the values a derived field may hold. A zero Scale removes
// the field from the record entirely.
type Range struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Scale float64 `yaml:"scale"`
}

// Enabled reports whether the field is stored.
func (r Range) Enabled() bool {
	return r.Scale != 0
}

func (r Range) validate(name string) error {
	switch {
	case math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsNaN(r.Scale):
		return Error.New("%s: NaN in range", name)
	case math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) || math.IsInf(r.Scale, 0):
		return Error.New("%s: infinite range", name)
	case r.Scale < 0:
		return Error.New("%s: negative scale %v", name, r.Scale)
	case r.Scale > 0 && r.Max < r.Min:
		return Error.New("%s: max %v below min %v", name, r.Max, r.Min)
	}

	return nil
}

// Attribute is a named user defined field.
type Attribute struct {
	Name  string `yaml:"name"`
	Range `yaml:",inline"`
}

// Channel declares one waveform sample channel.
type Channel struct {
	Name  string `yaml:"name"`
	Min   int32  `yaml:"min"`
	Max   int32  `yaml:"max"`
	Count uint32 `yaml:"count"`
}

// Descriptive holds the strings that may still be changed after a file has
// been created.
type Descriptive struct {
	Project  string `yaml:"project"`
	Mission  string `yaml:"mission"`
	Dataset  string `yaml:"dataset"`
	Flight   string `yaml:"flight"`
	Comments string `yaml:"comments"`
}

// Config is the caller supplied part of a header. It fully determines the
// record layout of a file.
type Config struct {
	Descriptive `yaml:",inline"`

	Source string `yaml:"source"`
	System string `yaml:"system"`

	// WKT is the spatial reference of X, Y and Z as well known text.
	WKT          string `yaml:"wkt"`
	ZOffsetDatum string `yaml:"z_offset_datum"`

	// NullZ marks a point without a valid elevation. It must lie outside of
	// the Z range.
	NullZ float64 `yaml:"null_z"`

	MaxReturns       uint32 `yaml:"max_returns"`
	MaxPointSource   uint32 `yaml:"max_point_source"`
	RGBMax           uint32 `yaml:"rgb_max"`
	EdgeOfFlightLine bool   `yaml:"edge_of_flight_line"`

	X Range `yaml:"x"`
	Y Range `yaml:"y"`
	Z Range `yaml:"z"`

	HorizontalUncertainty Range `yaml:"horizontal_uncertainty"`
	VerticalUncertainty   Range `yaml:"vertical_uncertainty"`

	SensorX       Range `yaml:"sensor_x"`
	SensorY       Range `yaml:"sensor_y"`
	SensorZ       Range `yaml:"sensor_z"`
	SensorRoll    Range `yaml:"sensor_roll"`
	SensorPitch   Range `yaml:"sensor_pitch"`
	SensorHeading Range `yaml:"sensor_heading"`

	ScanAngle    Range `yaml:"scan_angle"`
	NadirAngle   Range `yaml:"nadir_angle"`
	WaterSurface Range `yaml:"water_surface"`
	ZOffset      Range `yaml:"z_offset"`

	Intensity   Range       `yaml:"intensity"`
	Attributes  []Attribute `yaml:"attributes"`
	Reflectance Range       `yaml:"reflectance"`

	Waveforms []Channel `yaml:"waveforms"`
}

// Attribute returns attribute i or a disabled range when it isn't declared.
func (c *Config) Attribute(i int) Attribute {
	if i < 0 || i >= len(c.Attributes) {
		return Attribute{}
	}

	return c.Attributes[i]
}

// MaxSampleCount returns the largest channel sample count.
func (c *Config) MaxSampleCount() (n uint32) {
	for _, ch := range c.Waveforms {
		if ch.Count > n {
			n = ch.Count
		}
	}

	return n
}

// Validate checks the configuration for values the format can't represent.
func (c *Config) Validate() (err error) {
	defer Error.WrapP(&err)

	for _, f := range []struct {
		name string
		r    Range
	}{
		{"x", c.X},
		{"y", c.Y},
		{"z", c.Z},
	} {
		if f.r.Scale <= 0 {
			return Error.New("%s: scale must be positive", f.name)
		}
	}

	for _, nr := range c.ranges() {
		err = nr.r.validate(nr.name)
		if err != nil {
			return err
		}
	}

	if len(c.Attributes) > MaxAttributes {
		return Error.New("too many attributes: %d > %d", len(c.Attributes), MaxAttributes)
	}

	for i, a := range c.Attributes {
		err = a.Range.validate(attributeName(i))
		if err != nil {
			return err
		}

		err = singleLine("attribute name", a.Name)
		if err != nil {
			return err
		}
	}

	if math.IsNaN(c.NullZ) || (c.NullZ >= c.Z.Min && c.NullZ <= c.Z.Max) {
		return Error.New("null z %v must lie outside of z range [%v, %v]", c.NullZ, c.Z.Min, c.Z.Max)
	}

	seen := map[string]bool{}
	for i, ch := range c.Waveforms {
		switch {
		case ch.Name == "":
			return Error.New("waveform %d: missing name", i)
		case seen[ch.Name]:
			return Error.New("waveform %d: duplicate name %q", i, ch.Name)
		case ch.Max < ch.Min:
			return Error.New("waveform %q: max %d below min %d", ch.Name, ch.Max, ch.Min)
		case ch.Count == 0 || ch.Count > MaxSamples:
			return Error.New("waveform %q: sample count %d outside [1, %d]", ch.Name, ch.Count, MaxSamples)
		}

		err = singleLine("waveform name", ch.Name)
		if err != nil {
			return err
		}

		seen[ch.Name] = true
	}

	for name, v := range map[string]string{
		"project":        c.Project,
		"mission":        c.Mission,
		"dataset":        c.Dataset,
		"flight":         c.Flight,
		"source":         c.Source,
		"system":         c.System,
		"z offset datum": c.ZOffsetDatum,
	} {
		err = singleLine(name, v)
		if err != nil {
			return err
		}
	}

	for name, v := range map[string]string{
		"comments": c.Comments,
		"wkt":      c.WKT,
	} {
		err = block(name, v)
		if err != nil {
			return err
		}
	}

	return nil
}

type namedRange struct {
	name string
	key  string
	r    *Range
}

// ranges lists the derived field ranges in header order.
func (c *Config) ranges() []namedRange {
	return []namedRange{
		{"x", "X", &c.X},
		{"y", "Y", &c.Y},
		{"z", "Z", &c.Z},
		{"horizontal uncertainty", "HORIZONTAL UNCERTAINTY", &c.HorizontalUncertainty},
		{"vertical uncertainty", "VERTICAL UNCERTAINTY", &c.VerticalUncertainty},
		{"sensor x", "SENSOR X", &c.SensorX},
		{"sensor y", "SENSOR Y", &c.SensorY},
		{"sensor z", "SENSOR Z", &c.SensorZ},
		{"sensor roll", "SENSOR ROLL", &c.SensorRoll},
		{"sensor pitch", "SENSOR PITCH", &c.SensorPitch},
		{"sensor heading", "SENSOR HEADING", &c.SensorHeading},
		{"scan angle", "SCAN ANGLE", &c.ScanAngle},
		{"nadir angle", "NADIR ANGLE", &c.NadirAngle},
		{"water surface", "WATER SURFACE", &c.WaterSurface},
		{"z offset", "Z OFFSET", &c.ZOffset},
		{"intensity", "INTENSITY", &c.Intensity},
		{"reflectance", "REFLECTANCE", &c.Reflectance},
	}
}

func attributeName(i int) string {
	return "attribute " + itoa(i)
}

func singleLine(name, v string) error {
	if strings.ContainsAny(v, "\r\n") {
		return Error.New("%s: must be a single line", name)
	}

	if strings.TrimSpace(v) != v {
		return Error.New("%s: leading or trailing white space", name)
	}

	return nil
}

func block(name, v string) error {
	for _, line := range strings.Split(v, "\n") {
		if strings.TrimSpace(line) == "}" {
			return Error.New("%s: line holding only a closing brace", name)
		}

		if strings.HasSuffix(line, "\r") {
			return Error.New("%s: carriage return in line", name)
		}
	}

	return nil
}

// ParseConfig decodes a YAML configuration and validates it.
func ParseConfig(data []byte) (cfg *Config, err error) {
	defer Error.WrapP(&err)

	cfg = &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return ParseConfig(data)
}
