package header_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calebcase/oops"
	"github.com/calebcase/wlf/header"
)

func validConfig() header.Config {
	return header.Config{
		NullZ:      -998,
		MaxReturns: 4,
		X:          header.Range{Min: 0, Max: 1000, Scale: 100},
		Y:          header.Range{Min: 0, Max: 1000, Scale: 100},
		Z:          header.Range{Min: -100, Max: 100, Scale: 100},
		Waveforms: []header.Channel{
			{Name: "pmt", Min: 0, Max: 1023, Count: 10},
		},
	}
}

func TestValidate(t *testing.T) {
	type TC struct {
		Name   string
		Modify func(c *header.Config)
		Want   string
		Mark   error
	}

	tcs := []TC{
		{
			Name:   "valid",
			Modify: func(c *header.Config) {},
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "x disabled",
			Modify: func(c *header.Config) { c.X.Scale = 0 },
			Want:   "x: scale must be positive",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "negative scale",
			Modify: func(c *header.Config) { c.Intensity = header.Range{Min: 0, Max: 1, Scale: -1} },
			Want:   "intensity: negative scale",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "inverted",
			Modify: func(c *header.Config) { c.ScanAngle = header.Range{Min: 10, Max: -10, Scale: 1} },
			Want:   "scan angle: max -10 below min 10",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "null z inside range",
			Modify: func(c *header.Config) { c.NullZ = 0 },
			Want:   "null z 0 must lie outside",
			Mark:   oops.New("unexpected"),
		},
		{
			Name: "too many attributes",
			Modify: func(c *header.Config) {
				c.Attributes = make([]header.Attribute, header.MaxAttributes+1)
			},
			Want: "too many attributes",
			Mark: oops.New("unexpected"),
		},
		{
			Name:   "duplicate waveform",
			Modify: func(c *header.Config) { c.Waveforms = append(c.Waveforms, c.Waveforms[0]) },
			Want:   "duplicate name",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "empty waveform",
			Modify: func(c *header.Config) { c.Waveforms[0].Count = 0 },
			Want:   "sample count 0",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "multi line project",
			Modify: func(c *header.Config) { c.Project = "a\nb" },
			Want:   "project: must be a single line",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "padded project",
			Modify: func(c *header.Config) { c.Project = " A " },
			Want:   "project: leading or trailing white space",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "padded attribute name",
			Modify: func(c *header.Config) {
				c.Attributes = append(c.Attributes, header.Attribute{Name: "depth\t"})
			},
			Want:   "attribute name: leading or trailing white space",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "carriage return in wkt",
			Modify: func(c *header.Config) { c.WKT = "GEOGCS[\r\n]" },
			Want:   "wkt: carriage return in line",
			Mark:   oops.New("unexpected"),
		},
		{
			Name:   "brace in comments",
			Modify: func(c *header.Config) { c.Comments = "a\n}\nb" },
			Want:   "comments: line holding only a closing brace",
			Mark:   oops.New("unexpected"),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			c := validConfig()
			tc.Modify(&c)

			err := c.Validate()
			if tc.Want == "" {
				require.NoError(t, err, tc.Mark)

				return
			}

			require.Error(t, err, tc.Mark)
			require.True(t, header.Error.Has(err), tc.Mark)
			require.Contains(t, err.Error(), tc.Want, tc.Mark)
		})
	}
}

const yamlConfig = `
project: harbor survey
mission: "2026-10"
null_z: -998
max_returns: 4
rgb_max: 255
edge_of_flight_line: true
x: {min: -180, max: 180, scale: 10000000}
y: {min: -90, max: 90, scale: 10000000}
z: {min: -100, max: 100, scale: 100}
intensity: {min: 0, max: 1, scale: 1000}
attributes:
  - name: confidence
    min: 0
    max: 100
    scale: 1
waveforms:
  - {name: pmt, min: 0, max: 1023, count: 200}
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o644))

	cfg, err := header.LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "harbor survey", cfg.Project)
	require.Equal(t, "2026-10", cfg.Mission)
	require.Equal(t, -998.0, cfg.NullZ)
	require.Equal(t, uint32(4), cfg.MaxReturns)
	require.True(t, cfg.EdgeOfFlightLine)
	require.Equal(t, header.Range{Min: -180, Max: 180, Scale: 1e7}, cfg.X)
	require.Equal(t, []header.Attribute{
		{Name: "confidence", Range: header.Range{Min: 0, Max: 100, Scale: 1}},
	}, cfg.Attributes)
	require.Equal(t, []header.Channel{
		{Name: "pmt", Min: 0, Max: 1023, Count: 200},
	}, cfg.Waveforms)
	require.Equal(t, header.Attribute{}, cfg.Attribute(3))
	require.Equal(t, uint32(200), cfg.MaxSampleCount())
}

func TestParseConfigRejects(t *testing.T) {
	_, err := header.ParseConfig([]byte("x: {min: 0, max: 1, scale: 1}\nbogus: 1\n"))
	require.Error(t, err)

	_, err = header.ParseConfig([]byte("x: {min: 0, max: 1, scale: 1}\ny: {min: 0, max: 1, scale: 1}\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "z: scale must be positive")

	_, err = header.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
