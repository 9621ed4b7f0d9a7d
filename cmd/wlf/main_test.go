package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edaniels/lidario"
	"github.com/stretchr/testify/require"

	"github.com/calebcase/wlf"
	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/record"
	"github.com/calebcase/wlf/waveform"
)

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	err := app.Run(append([]string{"wlf", "--quiet"}, args...))

	return out.String(), err
}

func writeWLF(t *testing.T, path string) {
	cfg := header.Config{
		Descriptive: header.Descriptive{Project: "survey"},
		NullZ:       -999,
		MaxReturns:  2,
		X:           header.Range{Min: 0, Max: 100, Scale: 100},
		Y:           header.Range{Min: 0, Max: 100, Scale: 100},
		Z:           header.Range{Min: -10, Max: 10, Scale: 100},
		Waveforms: []header.Channel{
			{Name: "pmt", Min: 0, Max: 255, Count: 4},
		},
	}

	s, err := wlf.Create(path, cfg)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		p := &record.Point{
			Seconds:         uint32(1000 + i),
			X:               float64(i),
			Y:               float64(2 * i),
			Z:               float64(i) - 2,
			NumberOfReturns: 1,
			ReturnNumber:    1,
		}
		if i == 4 {
			p.Z = cfg.NullZ
		}

		b := waveform.Block{{int32(i), 2, 3, 4}}
		require.NoError(t, s.Append(p, b, int64(i)))
	}

	require.NoError(t, s.Close())
}

func TestInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wlf")
	writeWLF(t, path)

	out, err := run(t, "info", path)
	require.NoError(t, err)
	t.Log(out)

	require.Contains(t, out, header.LibraryVersion)
	require.Contains(t, out, "survey")
	require.Contains(t, out, "waveform pmt")
	require.Contains(t, out, "waveform_address")
	require.Regexp(t, `records\s+5`, out)
}

func TestDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wlf")
	writeWLF(t, path)

	out, err := run(t, "dump", "--waveforms", "--start", "3", "--count", "5", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "3 1003.000000000 x=3 y=6 z=1 "), lines[0])
	require.Equal(t, "  pmt: 3 2 3 4", lines[1])
	require.Contains(t, lines[2], "z=null")
	require.Equal(t, "  pmt: 4 2 3 4", lines[3])

	_, err = run(t, "dump")
	require.Error(t, err)
}

func writeLAS(t *testing.T, path string) {
	lf, err := lidario.NewLasFile(path, "w")
	require.NoError(t, err)

	require.NoError(t, lf.AddHeader(lidario.LasHeader{
		PointFormatID: 1,
		XScaleFactor:  0.01,
		YScaleFactor:  0.01,
		ZScaleFactor:  0.01,
	}))

	for i := 0; i < 10; i++ {
		require.NoError(t, lf.AddLasPoint(&lidario.PointRecord1{
			PointRecord0: &lidario.PointRecord0{
				X: 10 + float64(i),
				Y: 20 + float64(i),
				Z: float64(i) / 4,
				BitField: lidario.PointBitField{
					Value: 1 | 1<<3,
				},
				ClassBitField: lidario.ClassificationBitField{
					Value: 2,
				},
			},
			GPSTime: 5000 + float64(i),
		}))
	}

	require.NoError(t, lf.Close())
}

func TestCreateExport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.las")
	out := filepath.Join(dir, "out.wlf")
	back := filepath.Join(dir, "back.las")

	writeLAS(t, in)

	msg, err := run(t, "create", "--las", in, out)
	require.NoError(t, err)
	require.Contains(t, msg, "wrote 10 records")

	s, err := wlf.Open(out, wlf.ReadOnly)
	require.NoError(t, err)
	require.Equal(t, uint64(10), s.Len())
	require.Equal(t, software, s.Header().CreationSoftware)
	require.NoError(t, s.Close())

	_, err = run(t, "export", out, back)
	require.NoError(t, err)

	lf, err := lidario.NewLasFile(back, "r")
	require.NoError(t, err)
	defer lf.Close()

	require.Equal(t, 10, lf.Header.NumberPoints)
}

func TestCreateWithConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.las")
	out := filepath.Join(dir, "out.wlf")
	cfg := filepath.Join(dir, "cfg.yaml")

	writeLAS(t, in)

	require.NoError(t, os.WriteFile(cfg, []byte(`
project: config test
null_z: -100
max_returns: 1
x: {min: 0, max: 50, scale: 100}
y: {min: 0, max: 50, scale: 100}
z: {min: 0, max: 5, scale: 100}
`), 0o644))

	_, err := run(t, "create", "--config", cfg, "--las", in, out)
	require.NoError(t, err)

	s, err := wlf.Open(out, wlf.ReadOnly)
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, "config test", s.Header().Project)
	require.Equal(t, uint64(10), s.Len())

	// A range that can't hold the points leaves nothing behind.
	require.NoError(t, os.WriteFile(cfg, []byte(`
null_z: -100
x: {min: 0, max: 5, scale: 100}
y: {min: 0, max: 50, scale: 100}
z: {min: 0, max: 5, scale: 100}
`), 0o644))

	bad := filepath.Join(dir, "bad.wlf")

	_, err = run(t, "create", "--config", cfg, "--las", in, bad)
	require.Error(t, err)

	_, err = os.Stat(bad)
	require.True(t, os.IsNotExist(err))
}
