package schema

import (
	"fmt"
	"math"
)

// ValidationError reports a value outside of the declared range of a field or
// waveform channel.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

// Below reports whether the value violated the minimum.
func (e *ValidationError) Below() bool {
	return e.Value < e.Min
}

// Error implements error.
func (e *ValidationError) Error() string {
	switch {
	case math.IsNaN(e.Value):
		return fmt.Sprintf("%s: value is not a number", e.Field)
	case e.Below():
		return fmt.Sprintf("%s: value %v below minimum %v", e.Field, e.Value, e.Min)
	default:
		return fmt.Sprintf("%s: value %v above maximum %v", e.Field, e.Value, e.Max)
	}
}
