package param

import "fmt"

// InvalidSpecificationError reports a malformed terse parameter specification.
type InvalidSpecificationError struct {
	Name   string
	Reason string
}

func (e *InvalidSpecificationError) Error() string {
	return fmt.Sprintf("invalid specification for %q: %s", e.Name, e.Reason)
}

// InvalidRangeError reports a specification whose range cannot be established.
type InvalidRangeError struct {
	Name   string
	Min    float64
	Max    float64
	Step   float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range for %q (min=%g max=%g step=%g): %s", e.Name, e.Min, e.Max, e.Step, e.Reason)
}
