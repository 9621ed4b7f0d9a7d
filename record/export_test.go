package record

import "github.com/calebcase/wlf/schema"

// Value exposes field access to the external tests.
func Value(p *Point, id schema.FieldID) float64 {
	return get(p, id)
}
