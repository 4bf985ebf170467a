package param

import "math"

// Mapping converts between discrete slider positions and continuous values.
type Mapping struct {
	Min float64
	Max float64
	N   int
}

// NewMapping builds the mapping for a spec; N is the number of steps spanning the range.
func NewMapping(s Spec) Mapping {
	n := int(math.Round((s.Max - s.Min) / s.Step))
	if n < 1 {
		n = 1
	}
	return Mapping{Min: s.Min, Max: s.Max, N: n}
}

// Forward maps a continuous value to a slider position.
func (m Mapping) Forward(v float64) int {
	return int(math.Round((v - m.Min) / (m.Max - m.Min) * float64(m.N)))
}

// Inverse maps a slider position to a continuous value.
func (m Mapping) Inverse(p int) float64 {
	return m.Min + float64(p)/float64(m.N)*(m.Max-m.Min)
}

// SliderMax is the top of the slider domain. One slot past N absorbs rounding at the upper edge.
func (m Mapping) SliderMax() int {
	return m.N + 1
}
