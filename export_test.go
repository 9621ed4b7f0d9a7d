package wlf

import "github.com/calebcase/wlf/schema"

var WithFields = withFields

// SetExit replaces the function called after a signal aborted the sessions.
func (r *Registry) SetExit(fn func(code int)) {
	r.exit = fn
}

func ExtendedFields(extra ...schema.Def) []schema.Def {
	return append(append([]schema.Def{}, schema.Fields...), extra...)
}
