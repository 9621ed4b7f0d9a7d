package schema_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebcase/oops"
	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/schema"
)

func minimalConfig() *header.Config {
	return &header.Config{
		NullZ: -998,
		X:     header.Range{Min: 0, Max: 1000, Scale: 100},
		Y:     header.Range{Min: 0, Max: 1000, Scale: 100},
		Z:     header.Range{Min: -100, Max: 100, Scale: 100},
	}
}

func TestCompileMinimal(t *testing.T) {
	l, err := schema.Compile(minimalConfig())
	require.NoError(t, err)

	require.Len(t, l.Fields, int(schema.NumFields))

	type want struct {
		ID     schema.FieldID
		Offset int
		Width  int
	}

	present := []want{
		{schema.TvSec, 0, 32},
		{schema.TvNsec, 32, 30},
		{schema.X, 62, 17},
		{schema.Y, 79, 17},
		{schema.Z, 96, 15},
		{schema.Classification, 111, 8},
		{schema.Status, 119, 8},
	}

	var got []want
	for _, f := range l.Present() {
		got = append(got, want{f.ID, f.Offset, f.Width})
	}
	require.Equal(t, present, got)

	require.Equal(t, 127, l.Bits)
	require.Equal(t, 16, l.Size)

	f, ok := l.Field(schema.Intensity)
	require.True(t, ok)
	require.False(t, f.Present())
	require.Equal(t, 111, f.Offset)
}

func TestZScenario(t *testing.T) {
	l, err := schema.Compile(minimalConfig())
	require.NoError(t, err)

	z, ok := l.Field(schema.Z)
	require.True(t, ok)

	// 20000 steps plus the null slot need 15 bits.
	require.Equal(t, 15, z.Width)
	require.Equal(t, uint64(20000), z.Steps())
	require.Equal(t, uint64(20100), z.OverflowValue())

	require.NoError(t, z.Check(12.34))
	require.Equal(t, uint64(11234), z.Quantize(12.34))
	require.InDelta(t, 12.34, z.Dequantize(11234), 1/z.Scale)
}

func TestCompileFull(t *testing.T) {
	cfg := minimalConfig()
	cfg.MaxReturns = 4
	cfg.MaxPointSource = 1000
	cfg.RGBMax = 255
	cfg.EdgeOfFlightLine = true
	cfg.Intensity = header.Range{Min: 0, Max: 1, Scale: 1000}
	cfg.Attributes = []header.Attribute{
		{Range: header.Range{Min: 0, Max: 100, Scale: 1}},
		{},
		{Range: header.Range{Min: -1, Max: 1, Scale: 0.5}},
	}
	cfg.Waveforms = []header.Channel{
		{Name: "pmt", Min: 0, Max: 1023, Count: 200},
		{Name: "ir", Min: 0, Max: 255, Count: 50},
	}

	l, err := schema.Compile(cfg)
	require.NoError(t, err)

	widths := map[schema.FieldID]int{}
	for _, f := range l.Present() {
		widths[f.ID] = f.Width
	}

	require.Equal(t, map[schema.FieldID]int{
		schema.TvSec:            32,
		schema.TvNsec:           30,
		schema.X:                17,
		schema.Y:                17,
		schema.Z:                15,
		schema.NumberOfReturns:  3,
		schema.ReturnNumber:     2,
		schema.PointSource:      10,
		schema.EdgeOfFlightLine: 2,
		schema.Intensity:        10,
		schema.Attribute0:       7,
		schema.Attribute2:       1,
		schema.Red:              8,
		schema.Green:            8,
		schema.Blue:             8,
		schema.Classification:   8,
		schema.Status:           8,
		schema.WaveformAddress:  40,
		schema.WaveformPoint:    8,
	}, widths)

	sum := 0
	offset := 0
	for _, f := range l.Fields {
		require.Equal(t, offset, f.Offset, f.Name)
		offset += f.Width
		sum += f.Width
	}
	require.Equal(t, sum, l.Bits)
	require.Equal(t, (sum+7)/8, l.Size)

	rn, _ := l.Field(schema.ReturnNumber)
	require.Equal(t, uint64(0), rn.Quantize(1))
	require.Equal(t, uint64(3), rn.Quantize(4))

	edge, _ := l.Field(schema.EdgeOfFlightLine)
	require.Equal(t, uint64(0), edge.Quantize(-1))
	require.Equal(t, uint64(2), edge.Quantize(1))
}

func TestCompileDeterministic(t *testing.T) {
	cfg := minimalConfig()
	cfg.MaxReturns = 7
	cfg.Reflectance = header.Range{Min: 0, Max: 2, Scale: 4096}

	a, err := schema.Compile(cfg)
	require.NoError(t, err)

	b, err := schema.Compile(cfg)
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestCompileErrors(t *testing.T) {
	type TC struct {
		Name   string
		Modify func(c *header.Config)
		Want   string
		Mark   error
	}

	tcs := []TC{
		{
			Name:   "too wide",
			Modify: func(c *header.Config) { c.SensorX = header.Range{Min: 0, Max: 1e10, Scale: 1e10} },
			Want:   "more than 64 bits",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "invalid config",
			Modify: func(c *header.Config) { c.Y.Scale = 0 },
			Want:   "y: scale must be positive",
			Mark:   oops.New("unexpected"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := minimalConfig()
			tc.Modify(cfg)

			_, err := schema.Compile(cfg)
			require.Error(t, err, tc.Mark)
			require.True(t, schema.Error.Has(err), tc.Mark)
			require.Contains(t, err.Error(), tc.Want, tc.Mark)
		})
	}
}

func TestCompileFieldsExtended(t *testing.T) {
	future := schema.Def{
		ID:   schema.NumFields,
		Name: "future",
		Bounds: func(*header.Config) schema.Bounds {
			return schema.Bounds{Min: 0, Max: 4095, Scale: 1}
		},
	}

	cfg := minimalConfig()

	base, err := schema.Compile(cfg)
	require.NoError(t, err)

	ext, err := schema.CompileFields(cfg, append(append([]schema.Def{}, schema.Fields...), future))
	require.NoError(t, err)

	// Every known field keeps its place.
	require.Equal(t, base.Fields, ext.Fields[:len(base.Fields)])

	f, ok := ext.Field(schema.NumFields)
	require.True(t, ok)
	require.Equal(t, base.Bits, f.Offset)
	require.Equal(t, 12, f.Width)
	require.Equal(t, base.Bits+12, ext.Bits)

	_, err = schema.CompileFields(cfg, []schema.Def{future, future})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate field")
}

func TestCheck(t *testing.T) {
	l, err := schema.Compile(minimalConfig())
	require.NoError(t, err)

	x, _ := l.Field(schema.X)

	require.NoError(t, x.Check(0))
	require.NoError(t, x.Check(1000))

	err = x.Check(-0.5)
	require.Error(t, err)

	var verr *schema.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "x", verr.Field)
	require.True(t, verr.Below())
	require.Equal(t, "x: value -0.5 below minimum 0", verr.Error())

	err = x.Check(1000.5)
	require.True(t, errors.As(err, &verr))
	require.False(t, verr.Below())
	require.Equal(t, "x: value 1000.5 above maximum 1000", verr.Error())

	err = x.Check(math.NaN())
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "x: value is not a number", verr.Error())
}

func TestFieldNames(t *testing.T) {
	require.Equal(t, "z", schema.Z.String())
	require.Equal(t, "attribute[3]", schema.Attribute(3).String())
	require.Equal(t, "field(99)", schema.FieldID(99).String())

	for i, d := range schema.Fields {
		require.Equal(t, schema.FieldID(i), d.ID, d.Name)
	}
}
