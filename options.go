package wlf

import (
	"time"

	"go.uber.org/zap"

	"github.com/calebcase/wlf/schema"
)

// Option configures a session or registry.
type Option func(*options)

type options struct {
	log      *zap.Logger
	progress func(done, total int64)
	software string
	now      func() time.Time
	fields   []schema.Def
}

func newOptions(opts []Option) options {
	o := options{
		log:      zap.NewNop(),
		software: "wlf",
		now:      time.Now,
		fields:   schema.Fields,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithProgress sets a function called while Close copies the staged waveforms
// into place.
func WithProgress(fn func(done, total int64)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithSoftware sets the name recorded as the creation or modification
// software.
func WithSoftware(name string) Option {
	return func(o *options) {
		o.software = name
	}
}

// withFields replaces the field table used to compile layouts.
func withFields(defs []schema.Def) Option {
	return func(o *options) {
		o.fields = defs
	}
}
