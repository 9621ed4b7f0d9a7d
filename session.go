package wlf

import (
	"bufio"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/record"
	"github.com/calebcase/wlf/schema"
	"github.com/calebcase/wlf/waveform"
)

// ScratchSuffix is appended to the output path to name the waveform staging
// file.
const ScratchSuffix = ".wtmp"

// Mode selects how Open accesses a file.
type Mode int

// Open modes.
const (
	ReadOnly Mode = iota
	Update
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type state int

const (
	closed state = iota
	creating
	open
)

// Session is one file being created or opened. A session must not be used
// from multiple goroutines at once.
type Session struct {
	path  string
	mode  Mode
	state state
	opts  options
	log   *zap.SugaredLogger

	hdr    *header.Header
	layout *schema.Layout
	codec  *record.Codec
	waves  *waveform.Codec

	f   *os.File
	buf []byte

	// Creating.
	created     bool
	bw          *bufio.Writer
	scratch     *os.File
	scratchPath string
	sbw         *bufio.Writer
	store       *waveform.Store
	observed    observer

	// Open.
	dirty    bool
	warnings []error
}

func newSession(path string, o options) *Session {
	return &Session{
		path: path,
		opts: o,
		log:  o.log.Named("wlf").Sugar().With("path", path),
	}
}

// Path returns the path of the file.
func (s *Session) Path() string {
	return s.path
}

// Header returns the header of the file. For sessions being created, the
// observed statistics and the waveform region are only filled in by Close.
// The returned header must not be modified.
func (s *Session) Header() *header.Header {
	return s.hdr
}

// Layout returns the record layout compiled from the header.
func (s *Session) Layout() *schema.Layout {
	return s.layout
}

// Len returns the number of records.
func (s *Session) Len() uint64 {
	return s.hdr.NumberOfRecords
}

// WaveformBytes returns the size of the waveform region, or of the staged
// blocks while the file is being created.
func (s *Session) WaveformBytes() int64 {
	if s.store != nil {
		return s.store.Size()
	}

	return s.hdr.WaveformBytes
}

// Creating reports whether the session is creating a file.
func (s *Session) Creating() bool {
	return s.state == creating
}

// Warnings returns the non-fatal problems found when the file was opened.
func (s *Session) Warnings() []error {
	return s.warnings
}

// Close finishes the session. A file being created is finalized; when that
// fails, the partial output is removed. A file opened for update gets its
// header rewritten when descriptive strings were changed. Closing a closed
// session does nothing.
func (s *Session) Close() error {
	switch s.state {
	case creating:
		return s.finish()
	case open:
		return s.closeOpen()
	default:
		return nil
	}
}
