package wlf

import (
	"bufio"
	"errors"
	"io"
	"math"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/record"
	"github.com/calebcase/wlf/schema"
	"github.com/calebcase/wlf/waveform"
)

const (
	recordBufferSize  = 1 << 16
	scratchBufferSize = 1 << 16
	copyBufferSize    = 1 << 20
)

// Create starts a new file at path. The file only becomes valid once Close
// returns without error; anything left behind by a failing Create is removed.
func Create(path string, cfg header.Config, opts ...Option) (s *Session, err error) {
	s = newSession(path, newOptions(opts))

	err = s.create(cloneConfig(cfg))
	if err != nil {
		return nil, multierr.Append(err, s.abort())
	}

	return s, nil
}

func (s *Session) create(cfg header.Config) (err error) {
	err = cfg.Validate()
	if err != nil {
		return Error.Wrap(err)
	}

	s.layout, err = schema.CompileFields(&cfg, s.opts.fields)
	if err != nil {
		return Error.Wrap(err)
	}

	s.codec = record.NewCodec(s.layout, cfg.NullZ)
	s.buf = make([]byte, s.layout.Size)

	s.hdr = header.New(cfg)
	s.hdr.RecordSize = s.layout.Size
	s.hdr.CreationSoftware = s.opts.software
	s.hdr.CreationDate = s.opts.now().UTC().Truncate(time.Second)

	// Make sure the final header will fit before writing any records.
	placeholder, err := s.hdr.MarshalBinary()
	if err != nil {
		return Error.Wrap(err)
	}

	s.f, err = os.OpenFile(s.path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return IOError.Wrap(err)
	}
	s.created = true

	_, err = s.f.Write(placeholder)
	if err != nil {
		return IOError.Wrap(err)
	}

	s.bw = bufio.NewWriterSize(s.f, recordBufferSize)

	if len(cfg.Waveforms) > 0 {
		s.waves, err = waveform.NewCodec(cfg.Waveforms)
		if err != nil {
			return ResourceError.Wrap(err)
		}

		s.scratchPath = s.path + ScratchSuffix

		s.scratch, err = os.OpenFile(s.scratchPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return ResourceError.Wrap(err)
		}

		s.sbw = bufio.NewWriterSize(s.scratch, scratchBufferSize)
		s.store = waveform.NewStore(s.waves, s.sbw)
	}

	s.state = creating

	s.log.Debugw("created",
		"record_size", s.layout.Size,
		"record_bits", s.layout.Bits,
		"waveforms", len(cfg.Waveforms),
	)

	return nil
}

// Append adds a point to a file being created. With waveform channels
// declared, b holds the samples of the shot the point belongs to. Consecutive
// points of the same shot share one stored block, so b may be nil for every
// point after the first of a shot. The WaveformAddress of p is ignored.
//
// A *ValidationError leaves the file unchanged.
func (s *Session) Append(p *record.Point, b waveform.Block, shot int64) (err error) {
	if s.state != creating {
		return Error.New("append: %q is not being created", s.path)
	}

	if p == nil {
		return Error.New("append: nil point")
	}

	pt := *p
	pt.WaveformAddress = 0

	var st waveform.Staged
	if s.store != nil {
		st, err = s.store.Prepare(shot, b)
		if err != nil {
			return err
		}

		pt.WaveformAddress = st.Address
	} else if b != nil {
		return Error.New("append: %q has no waveform channels", s.path)
	}

	err = s.codec.PackInto(s.buf, &pt)
	if err != nil {
		return err
	}

	if s.store != nil {
		err = s.store.Commit(st)
		if err != nil {
			return IOError.Wrap(err)
		}
	}

	_, err = s.bw.Write(s.buf)
	if err != nil {
		return IOError.Wrap(err)
	}

	s.hdr.NumberOfRecords++
	s.observed.add(&pt, s.hdr.NullZ)

	return nil
}

// finish writes the final file and closes the session. Any failure aborts.
func (s *Session) finish() (err error) {
	defer func() {
		if err != nil {
			err = multierr.Append(err, s.abort())
		}
	}()

	err = s.bw.Flush()
	if err != nil {
		return IOError.Wrap(err)
	}

	if s.store != nil {
		err = s.moveWaveforms()
		if err != nil {
			return err
		}
	}

	s.hdr.Observed = s.observed.result()
	s.hdr.ModificationSoftware = s.opts.software
	s.hdr.ModificationDate = s.opts.now().UTC().Truncate(time.Second)

	data, err := s.hdr.MarshalBinary()
	if err != nil {
		return Error.Wrap(err)
	}

	_, err = s.f.WriteAt(data, 0)
	if err != nil {
		return IOError.Wrap(err)
	}

	err = s.f.Close()
	s.f = nil
	if err != nil {
		return IOError.Wrap(err)
	}

	s.state = closed
	s.created = false

	s.log.Infow("finalized",
		"records", s.hdr.NumberOfRecords,
		"waveform_bytes", s.hdr.WaveformBytes,
	)

	return nil
}

// moveWaveforms copies the staged blocks behind the last record and removes
// the scratch file.
func (s *Session) moveWaveforms() (err error) {
	err = s.sbw.Flush()
	if err != nil {
		return IOError.Wrap(err)
	}

	offset := int64(s.hdr.HeaderSize) + int64(s.hdr.NumberOfRecords)*int64(s.hdr.RecordSize)
	total := s.store.Size()

	_, err = s.scratch.Seek(0, io.SeekStart)
	if err != nil {
		return IOError.Wrap(err)
	}

	_, err = s.f.Seek(offset, io.SeekStart)
	if err != nil {
		return IOError.Wrap(err)
	}

	pw := &progressWriter{
		w:     s.f,
		total: total,
		fn:    s.opts.progress,
	}
	pw.report()

	n, err := io.CopyBuffer(pw, io.LimitReader(s.scratch, total), make([]byte, copyBufferSize))
	if err != nil {
		return IOError.Wrap(err)
	}
	if n != total {
		return IOError.New("copied %d of %d waveform bytes", n, total)
	}

	s.hdr.WaveformBlockOffset = offset
	s.hdr.WaveformBytes = total

	err = s.removeScratch()
	if err != nil {
		return err
	}

	s.store = nil

	return nil
}

func (s *Session) removeScratch() (err error) {
	if s.scratch != nil {
		err = multierr.Append(err, ignoreClosed(s.scratch.Close()))
		s.scratch = nil
	}

	if s.scratchPath != "" {
		err = multierr.Append(err, removeFile(s.scratchPath))
		s.scratchPath = ""
	}

	if err != nil {
		return IOError.Wrap(err)
	}

	return nil
}

// AbortCreate stops creating the file and removes everything written so far.
// Aborting a closed session does nothing.
func (s *Session) AbortCreate() error {
	switch s.state {
	case creating:
		return s.abort()
	case open:
		return Error.New("abort: %q is not being created", s.path)
	default:
		return nil
	}
}

// abort releases and removes the output and scratch files.
func (s *Session) abort() (err error) {
	s.state = closed

	err = s.removeScratch()

	if s.f != nil {
		err = multierr.Append(err, IOError.Wrap(ignoreClosed(s.f.Close())))
		s.f = nil
	}

	if s.created {
		err = multierr.Append(err, IOError.Wrap(removeFile(s.path)))
		s.created = false
	}

	s.store = nil

	s.log.Debugw("aborted", "error", err)

	return err
}

func removeFile(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, os.ErrClosed) {
		return nil
	}

	return err
}

// progressWriter reports the bytes passed through it.
type progressWriter struct {
	w     io.Writer
	done  int64
	total int64
	fn    func(done, total int64)
}

func (pw *progressWriter) Write(p []byte) (n int, err error) {
	n, err = pw.w.Write(p)
	pw.done += int64(n)
	pw.report()

	return n, err
}

func (pw *progressWriter) report() {
	if pw.fn != nil {
		pw.fn(pw.done, pw.total)
	}
}

// observer accumulates the observed statistics of a file being created.
type observer struct {
	have  bool
	haveZ bool
	o     header.Observed
}

func (ob *observer) add(p *record.Point, nullZ float64) {
	t := time.Unix(int64(p.Seconds), int64(p.Nanoseconds)).UTC()

	if !ob.have {
		ob.have = true
		ob.o.MinX, ob.o.MaxX = p.X, p.X
		ob.o.MinY, ob.o.MaxY = p.Y, p.Y
		ob.o.Start, ob.o.End = t, t
	} else {
		ob.o.MinX, ob.o.MaxX = math.Min(ob.o.MinX, p.X), math.Max(ob.o.MaxX, p.X)
		ob.o.MinY, ob.o.MaxY = math.Min(ob.o.MinY, p.Y), math.Max(ob.o.MaxY, p.Y)

		if t.Before(ob.o.Start) {
			ob.o.Start = t
		}
		if t.After(ob.o.End) {
			ob.o.End = t
		}
	}

	if p.Z == nullZ {
		return
	}

	if !ob.haveZ {
		ob.haveZ = true
		ob.o.MinZ, ob.o.MaxZ = p.Z, p.Z
	} else {
		ob.o.MinZ, ob.o.MaxZ = math.Min(ob.o.MinZ, p.Z), math.Max(ob.o.MaxZ, p.Z)
	}
}

func (ob *observer) result() header.Observed {
	return ob.o
}

func cloneConfig(cfg header.Config) header.Config {
	cfg.Attributes = append([]header.Attribute(nil), cfg.Attributes...)
	cfg.Waveforms = append([]header.Channel(nil), cfg.Waveforms...)

	return cfg
}
