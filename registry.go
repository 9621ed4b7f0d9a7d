package wlf

import (
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/calebcase/wlf/header"
	"github.com/calebcase/wlf/record"
	"github.com/calebcase/wlf/waveform"
)

// DefaultCapacity is the number of sessions a registry holds when no
// capacity is given.
const DefaultCapacity = 32

// Handle identifies a session in a registry.
type Handle int

// Registry is a bounded table of sessions. Operations on different handles
// are independent; a failing session never affects the others.
type Registry struct {
	opts []Option
	log  *zap.SugaredLogger

	// exit ends the process after a signal aborted the sessions.
	exit func(code int)

	mu       sync.Mutex
	sessions []*Session
	err      error
}

// NewRegistry returns a registry holding at most capacity sessions. The
// options apply to every session of the registry.
func NewRegistry(capacity int, opts ...Option) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	o := newOptions(opts)

	return &Registry{
		opts:     opts,
		log:      o.log.Named("registry").Sugar(),
		exit:     os.Exit,
		sessions: make([]*Session, capacity),
	}
}

// Err returns the error of the last failed operation.
func (r *Registry) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

func (r *Registry) fail(err error) error {
	if err != nil {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}

	return err
}

// Len returns the number of sessions in the registry.
func (r *Registry) Len() (n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s != nil {
			n++
		}
	}

	return n
}

// add stores s in a free slot.
func (r *Registry) add(open func() (*Session, error)) (h Handle, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h = -1
	for i, s := range r.sessions {
		if s == nil {
			h = Handle(i)
			break
		}
	}

	if h < 0 {
		return h, CapacityError.New("all %d sessions in use", len(r.sessions))
	}

	s, err := open()
	if err != nil {
		return -1, err
	}

	r.sessions[h] = s

	return h, nil
}

// Session returns the session of h.
func (r *Registry) Session(h Handle) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h < 0 || int(h) >= len(r.sessions) || r.sessions[h] == nil {
		return nil, Error.New("invalid handle %d", h)
	}

	return r.sessions[h], nil
}

func (r *Registry) remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[h] = nil
}

// Create starts a new file. See Create.
func (r *Registry) Create(path string, cfg header.Config) (Handle, error) {
	h, err := r.add(func() (*Session, error) {
		return Create(path, cfg, r.opts...)
	})

	return h, r.fail(err)
}

// Open opens an existing file. See Open.
func (r *Registry) Open(path string, mode Mode) (Handle, error) {
	h, err := r.add(func() (*Session, error) {
		return Open(path, mode, r.opts...)
	})

	return h, r.fail(err)
}

// Append adds a point to the file of h. See Session.Append.
func (r *Registry) Append(h Handle, p *record.Point, b waveform.Block, shot int64) error {
	s, err := r.Session(h)
	if err != nil {
		return r.fail(err)
	}

	return r.fail(s.Append(p, b, shot))
}

// Read returns a record of the file of h. See Session.Read.
func (r *Registry) Read(h Handle, index uint64, wantWaveforms bool) (*record.Point, waveform.Block, error) {
	s, err := r.Session(h)
	if err != nil {
		return nil, nil, r.fail(err)
	}

	p, b, err := s.Read(index, wantWaveforms)

	return p, b, r.fail(err)
}

// Update rewrites the mutable fields of a record. See Session.Update.
func (r *Registry) Update(h Handle, index uint64, p *record.Point) error {
	s, err := r.Session(h)
	if err != nil {
		return r.fail(err)
	}

	return r.fail(s.Update(index, p))
}

// Close closes the session of h and frees its slot, even when closing fails.
func (r *Registry) Close(h Handle) error {
	s, err := r.Session(h)
	if err != nil {
		return r.fail(err)
	}

	err = s.Close()
	r.remove(h)

	return r.fail(err)
}

// AbortCreate aborts the session of h and frees its slot. Sessions of opened
// files keep their slot.
func (r *Registry) AbortCreate(h Handle) error {
	s, err := r.Session(h)
	if err != nil {
		return r.fail(err)
	}

	err = s.AbortCreate()
	if s.state == closed {
		r.remove(h)
	}

	return r.fail(err)
}

// AbortAll aborts every session that is still creating a file. Sessions of
// opened files are left alone.
func (r *Registry) AbortAll() (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.sessions {
		if s == nil || !s.Creating() {
			continue
		}

		r.log.Infow("aborting", "path", s.Path())

		err = multierr.Append(err, s.AbortCreate())
		r.sessions[i] = nil
	}

	if err != nil {
		r.err = err
	}

	return err
}
