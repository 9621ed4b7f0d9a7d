package wlf

import (
	"io"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/record"
	"github.com/calebcase/wlf/schema"
	"github.com/calebcase/wlf/waveform"
)

// Open opens an existing file. Files written by a newer library are opened
// as long as their records hold every field this library knows; a
// VersionWarning is recorded in Warnings.
func Open(path string, mode Mode, opts ...Option) (s *Session, err error) {
	if mode != ReadOnly && mode != Update {
		return nil, Error.New("open: invalid mode %v", mode)
	}

	s = newSession(path, newOptions(opts))
	s.mode = mode

	flag := os.O_RDONLY
	if mode == Update {
		flag = os.O_RDWR
	}

	s.f, err = os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, IOError.Wrap(err)
	}

	err = s.load()
	if err != nil {
		return nil, multierr.Append(err, IOError.Wrap(s.f.Close()))
	}

	s.state = open

	s.log.Debugw("opened",
		"mode", mode,
		"records", s.hdr.NumberOfRecords,
		"record_size", s.hdr.RecordSize,
	)

	return s, nil
}

func (s *Session) load() (err error) {
	fi, err := s.f.Stat()
	if err != nil {
		return IOError.Wrap(err)
	}

	size := fi.Size()
	if size > header.Size {
		size = header.Size
	}

	data := make([]byte, size)

	_, err = io.ReadFull(s.f, data)
	if err != nil {
		return IOError.Wrap(err)
	}

	s.hdr = &header.Header{}

	err = s.hdr.UnmarshalBinary(data)
	if err != nil {
		return FormatError.Wrap(err)
	}

	newer, err := s.hdr.Newer()
	if err != nil {
		return FormatError.Wrap(err)
	}

	if newer {
		w := VersionWarning.New("file version %q is newer than %q", s.hdr.Version, header.LibraryVersion)
		s.warnings = append(s.warnings, w)

		s.log.Warnw("newer file version",
			"file_version", s.hdr.Version,
			"library_version", header.LibraryVersion,
		)
	}

	err = s.hdr.Config.Validate()
	if err != nil {
		return FormatError.Wrap(err)
	}

	s.layout, err = schema.CompileFields(&s.hdr.Config, s.opts.fields)
	if err != nil {
		return FormatError.Wrap(err)
	}

	h := s.hdr

	if h.HeaderSize <= 0 || h.HeaderSize > header.Size {
		return FormatError.New("invalid header size %d", h.HeaderSize)
	}

	if h.RecordSize < s.layout.Size {
		return FormatError.New("record size %d is smaller than the %d bytes of the layout", h.RecordSize, s.layout.Size)
	}

	end := int64(h.HeaderSize) + int64(h.NumberOfRecords)*int64(h.RecordSize)
	if len(h.Waveforms) > 0 {
		if h.WaveformBlockOffset < end {
			return FormatError.New("waveform offset %d overlaps the records ending at %d", h.WaveformBlockOffset, end)
		}

		end = h.WaveformBlockOffset + h.WaveformBytes

		s.waves, err = waveform.NewCodec(h.Waveforms)
		if err != nil {
			return FormatError.Wrap(err)
		}
	}

	if fi.Size() < end {
		return FormatError.New("truncated file: %d bytes, want %d", fi.Size(), end)
	}

	s.codec = record.NewCodec(s.layout, h.NullZ)
	s.buf = make([]byte, h.RecordSize)

	return nil
}

func (s *Session) offset(index uint64) (int64, error) {
	if s.state != open {
		return 0, Error.New("%q is not open", s.path)
	}

	if index >= s.hdr.NumberOfRecords {
		return 0, Error.New("index %d out of range [0, %d)", index, s.hdr.NumberOfRecords)
	}

	return int64(s.hdr.HeaderSize) + int64(index)*int64(s.hdr.RecordSize), nil
}

// Read returns record index. With wantWaveforms set and waveform channels
// declared, the waveform block of the record is returned as well.
func (s *Session) Read(index uint64, wantWaveforms bool) (p *record.Point, b waveform.Block, err error) {
	off, err := s.offset(index)
	if err != nil {
		return nil, nil, err
	}

	_, err = s.f.ReadAt(s.buf, off)
	if err != nil {
		return nil, nil, IOError.Wrap(err)
	}

	p, err = s.codec.Unpack(s.buf)
	if err != nil {
		return nil, nil, FormatError.Wrap(err)
	}

	if wantWaveforms && s.waves != nil {
		if int64(p.WaveformAddress) >= s.hdr.WaveformBytes {
			return nil, nil, FormatError.New("record %d: waveform address %d outside of the %d byte region",
				index, p.WaveformAddress, s.hdr.WaveformBytes)
		}

		b, err = s.waves.ReadBlock(s.f, s.hdr.WaveformBlockOffset+int64(p.WaveformAddress),
			s.hdr.WaveformBytes-int64(p.WaveformAddress))
		if err != nil {
			return nil, nil, FormatError.Wrap(err)
		}
	}

	return p, b, nil
}

// Update rewrites the mutable fields (see record.MutableFields) of record
// index with the values from p. Other fields of p are ignored.
func (s *Session) Update(index uint64, p *record.Point) (err error) {
	if s.state == open && s.mode != Update {
		return Error.New("update: %q is opened %v", s.path, s.mode)
	}

	off, err := s.offset(index)
	if err != nil {
		return err
	}

	_, err = s.f.ReadAt(s.buf, off)
	if err != nil {
		return IOError.Wrap(err)
	}

	err = s.codec.PackFields(s.buf, p, record.MutableFields...)
	if err != nil {
		return err
	}

	_, err = s.f.WriteAt(s.buf, off)
	if err != nil {
		return IOError.Wrap(err)
	}

	return nil
}

// SetDescriptive replaces the descriptive strings of a file opened for update.
// The header is rewritten by Close.
func (s *Session) SetDescriptive(d header.Descriptive) (err error) {
	if s.state != open || s.mode != Update {
		return Error.New("set descriptive: %q is not opened for update", s.path)
	}

	next := *s.hdr
	next.Descriptive = d

	err = next.Config.Validate()
	if err != nil {
		return Error.Wrap(err)
	}

	_, err = next.MarshalBinary()
	if err != nil {
		return Error.Wrap(err)
	}

	s.hdr.Descriptive = d
	s.dirty = true

	return nil
}

func (s *Session) closeOpen() (err error) {
	s.state = closed

	if s.dirty {
		s.hdr.ModificationSoftware = s.opts.software
		s.hdr.ModificationDate = s.opts.now().UTC().Truncate(time.Second)

		data, merr := s.hdr.MarshalBinary()
		if merr != nil {
			err = Error.Wrap(merr)
		} else {
			_, werr := s.f.WriteAt(data, 0)
			err = IOError.Wrap(werr)
		}
	}

	err = multierr.Append(err, IOError.Wrap(s.f.Close()))
	s.f = nil

	return err
}
