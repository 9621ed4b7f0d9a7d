package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/edaniels/lidario"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/calebcase/wlf"
	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/lasconv"
	"github.com/calebcase/wlf/record"
)

const software = "wlf command"

func info(c *cli.Context, logger *zap.Logger) (err error) {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	s, err := wlf.Open(a[0], wlf.ReadOnly, wlf.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()

	w := c.App.Writer
	h := s.Header()

	for _, warning := range s.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", wlf.Message(warning))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	row := func(k string, v any) {
		fmt.Fprintf(tw, "%s\t%v\n", k, v)
	}

	row("version", h.Version)
	row("records", h.NumberOfRecords)
	row("record size", h.RecordSize)
	row("null z", h.NullZ)
	for _, kv := range [][2]string{
		{"project", h.Project},
		{"mission", h.Mission},
		{"dataset", h.Dataset},
		{"flight", h.Flight},
		{"source", h.Source},
		{"system", h.System},
		{"created by", h.CreationSoftware},
		{"modified by", h.ModificationSoftware},
	} {
		if kv[1] != "" {
			row(kv[0], kv[1])
		}
	}
	if !h.CreationDate.IsZero() {
		row("created", h.CreationDate.Format(time.RFC3339))
	}
	if !h.ModificationDate.IsZero() {
		row("modified", h.ModificationDate.Format(time.RFC3339))
	}

	if h.NumberOfRecords > 0 {
		o := h.Observed
		row("x", fmt.Sprintf("%v .. %v", o.MinX, o.MaxX))
		row("y", fmt.Sprintf("%v .. %v", o.MinY, o.MaxY))
		row("z", fmt.Sprintf("%v .. %v", o.MinZ, o.MaxZ))
		row("time", fmt.Sprintf("%s .. %s", o.Start.Format(time.RFC3339Nano), o.End.Format(time.RFC3339Nano)))
	}

	if len(h.Waveforms) > 0 {
		row("waveform bytes", h.WaveformBytes)
		for _, ch := range h.Waveforms {
			row("waveform "+ch.Name, fmt.Sprintf("%d samples in [%d, %d]", ch.Count, ch.Min, ch.Max))
		}
	}

	err = tw.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "field\toffset\twidth\tmin\tmax\tscale\t\n")
	for _, f := range s.Layout().Present() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%v\t%v\t%v\t\n", f.Name, f.Offset, f.Width, f.Min, f.Max, f.Scale)
	}
	fmt.Fprintf(tw, "total\t\t%d\t\t\t\t\n", s.Layout().Bits)

	return tw.Flush()
}

func dump(c *cli.Context, logger *zap.Logger) (err error) {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	s, err := wlf.Open(a[0], wlf.ReadOnly, wlf.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()

	start := c.Uint64(flagStart)
	end := s.Len()
	if n := c.Uint64(flagCount); n > 0 && start+n < end {
		end = start + n
	}

	channels := s.Header().Waveforms
	w := c.App.Writer

	for i := start; i < end; i++ {
		p, b, err := s.Read(i, c.Bool(flagWaveforms))
		if err != nil {
			return err
		}

		writePoint(w, i, p, s.Header())

		for j, samples := range b {
			fmt.Fprintf(w, "  %s: %s\n", channels[j].Name, formatSamples(samples))
		}
	}

	return nil
}

func writePoint(w io.Writer, i uint64, p *record.Point, h *header.Header) {
	z := fmt.Sprint(p.Z)
	if p.Z == h.NullZ {
		z = "null"
	}

	fmt.Fprintf(w, "%d %d.%09d x=%v y=%v z=%s return=%d/%d intensity=%v class=%d status=%#02x",
		i, p.Seconds, p.Nanoseconds, p.X, p.Y, z,
		p.ReturnNumber, p.NumberOfReturns, p.Intensity, p.Classification, uint8(p.Status))

	if len(h.Waveforms) > 0 {
		fmt.Fprintf(w, " waveform=%d@%d", p.WaveformPoint, p.WaveformAddress)
	}

	fmt.Fprintln(w)
}

func formatSamples(samples []int32) string {
	var b strings.Builder
	for i, v := range samples {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprint(&b, v)
	}

	return b.String()
}

func create(c *cli.Context, logger *zap.Logger) (err error) {
	a, err := args(c, 1)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	r := wlf.NewRegistry(1, wlf.WithLogger(logger), wlf.WithSoftware(software))

	stop := r.AbortOnSignal(c.Context)
	defer stop()

	h, err := r.Create(a[0], cfg)
	if err != nil {
		return err
	}

	s, err := r.Session(h)
	if err != nil {
		return err
	}

	sp, err := newProgress(c, "importing "+c.String(flagLAS))
	if err != nil {
		return multierr.Combine(err, r.AbortCreate(h))
	}

	n, err := lasconv.Import(s, c.String(flagLAS), sp.progress("points"))
	sp.done(err, fmt.Sprintf("imported %d points", n))
	if err != nil {
		return multierr.Combine(err, r.AbortCreate(h))
	}

	err = r.Close(h)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "wrote %d records to %s\n", n, a[0])

	return nil
}

// loadConfig reads the header configuration from the config flag or derives
// it from the LAS header.
func loadConfig(c *cli.Context) (header.Config, error) {
	if path := c.String(flagConfig); path != "" {
		cfg, err := header.LoadConfig(path)
		if err != nil {
			return header.Config{}, err
		}

		return *cfg, nil
	}

	lf, err := lidario.NewLasFile(c.String(flagLAS), "r")
	if err != nil {
		return header.Config{}, err
	}

	cfg := lasconv.ConfigFromLAS(&lf.Header)

	return cfg, lf.Close()
}

func export(c *cli.Context, logger *zap.Logger) (err error) {
	a, err := args(c, 2)
	if err != nil {
		return err
	}

	s, err := wlf.Open(a[0], wlf.ReadOnly, wlf.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()

	sp, err := newProgress(c, "exporting "+a[0])
	if err != nil {
		return err
	}

	n, skipped, err := lasconv.Export(s, a[1], sp.progress("records"))
	sp.done(err, fmt.Sprintf("exported %d points, skipped %d without elevation", n, skipped))

	return err
}

// newProgress starts a spinner unless progress is disabled.
func newProgress(c *cli.Context, text string) (*spinner, error) {
	if c.Bool(flagQuiet) {
		return &spinner{text: text}, nil
	}

	return startSpinner(text)
}
