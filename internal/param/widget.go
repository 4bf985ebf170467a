package param

import "math"

// Slider is a discrete, integer-stepped position control.
type Slider struct {
	min     int
	max     int
	pos     int
	blocked bool
	changed func(int)
}

// NewSlider returns a slider over [min, max] at pos.
func NewSlider(min, max, pos int) *Slider {
	s := &Slider{min: min, max: max}
	s.pos = s.clamp(pos)
	return s
}

// OnChange registers the change callback.
func (s *Slider) OnChange(fn func(int)) {
	s.changed = fn
}

// Range returns the slider bounds.
func (s *Slider) Range() (int, int) {
	return s.min, s.max
}

// Value returns the current position.
func (s *Slider) Value() int {
	return s.pos
}

// SetValue moves the slider; the callback fires only on an actual change while signals are not blocked.
func (s *Slider) SetValue(p int) {
	p = s.clamp(p)
	if p == s.pos {
		return
	}
	s.pos = p
	if !s.blocked && s.changed != nil {
		s.changed(p)
	}
}

// BlockSignals suppresses the change callback and returns the previous state.
func (s *Slider) BlockSignals(block bool) bool {
	prev := s.blocked
	s.blocked = block
	return prev
}

func (s *Slider) clamp(p int) int {
	if p < s.min {
		return s.min
	}
	if p > s.max {
		return s.max
	}
	return p
}

// Spin is a continuous numeric entry bounded to [min, max]. An integral spin
// snaps values onto its step grid.
type Spin struct {
	min      float64
	max      float64
	step     float64
	value    float64
	blocked  bool
	integral bool
	changed  func(float64)
}

// NewSpin returns a spin entry over [min, max] holding value.
func NewSpin(min, max, step, value float64) *Spin {
	s := &Spin{min: min, max: max, step: step}
	s.value = s.clamp(value)
	return s
}

// OnChange registers the change callback.
func (s *Spin) OnChange(fn func(float64)) {
	s.changed = fn
}

// Range returns the entry bounds.
func (s *Spin) Range() (float64, float64) {
	return s.min, s.max
}

// SingleStep returns the increment used by step-up/step-down.
func (s *Spin) SingleStep() float64 {
	return s.step
}

// Value returns the current value.
func (s *Spin) Value() float64 {
	return s.value
}

// SetValue stores a value clamped to the range; the callback fires only on an actual change while signals are not blocked.
func (s *Spin) SetValue(v float64) {
	if math.IsNaN(v) {
		return
	}
	if s.integral && s.step > 0 {
		v = s.min + math.Round((v-s.min)/s.step)*s.step
	}
	v = s.clamp(v)
	if v == s.value {
		return
	}
	s.value = v
	if !s.blocked && s.changed != nil {
		s.changed(v)
	}
}

// BlockSignals suppresses the change callback and returns the previous state.
func (s *Spin) BlockSignals(block bool) bool {
	prev := s.blocked
	s.blocked = block
	return prev
}

func (s *Spin) clamp(v float64) float64 {
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}
