package wlf

import (
	"errors"
	"strings"

	"github.com/zeebo/errs"

	"github.com/calebcase/wlf/schema"
)

// Error classes.
var (
	// Error is returned for misuse of a session, like appending to a file
	// opened for reading.
	Error = errs.Class("wlf")

	// FormatError is returned for files that are not WLF files or are
	// damaged.
	FormatError = errs.Class("wlf format")

	// IOError wraps failures of the operating system.
	IOError = errs.Class("wlf io")

	// CapacityError is returned when a registry has no free slot.
	CapacityError = errs.Class("wlf capacity")

	// ResourceError is returned when the waveform staging area can't be set
	// up.
	ResourceError = errs.Class("wlf resource")

	// VersionWarning marks a file written by a newer library. It is not
	// returned; see Session.Warnings.
	VersionWarning = errs.Class("wlf version")
)

// ValidationError is returned when a value is outside of its declared range.
type ValidationError = schema.ValidationError

// Message renders err as a single line for display.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return "invalid value: " + verr.Error()
	}

	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}

	return msg
}
