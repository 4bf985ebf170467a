package param

import "fmt"

const pageSize = 10

// Notify receives the single downstream notification for a parameter change.
type Notify func(name string, value float64)

// Control binds a slider and a spin entry for one parameter.
type Control struct {
	spec    Spec
	mapping Mapping
	slider  *Slider
	spin    *Spin
	notify  Notify
}

// NewControl creates the widget pair for spec. notify may be nil.
func NewControl(spec Spec, notify Notify) *Control {
	m := NewMapping(spec)
	c := &Control{
		spec:    spec,
		mapping: m,
		slider:  NewSlider(0, m.SliderMax(), m.Forward(spec.Initial)),
		spin:    NewSpin(spec.Min, spec.Max, spec.Step, spec.Initial),
		notify:  notify,
	}
	c.spin.integral = spec.Integer
	c.slider.OnChange(c.sliderChanged)
	c.spin.OnChange(c.spinChanged)
	return c
}

// Spec returns the parameter range.
func (c *Control) Spec() Spec {
	return c.spec
}

// Mapping returns the slider/value mapping.
func (c *Control) Mapping() Mapping {
	return c.mapping
}

// Slider returns the discrete widget.
func (c *Control) Slider() *Slider {
	return c.slider
}

// Spin returns the continuous widget.
func (c *Control) Spin() *Spin {
	return c.spin
}

// Value returns the current continuous value.
func (c *Control) Value() float64 {
	return c.spin.Value()
}

// Position returns the current slider position.
func (c *Control) Position() int {
	return c.slider.Value()
}

// SetValue writes into the continuous widget as if the user had typed it.
func (c *Control) SetValue(v float64) {
	c.spin.SetValue(v)
}

// SetPosition moves the slider as if the user had dragged it.
func (c *Control) SetPosition(p int) {
	c.slider.SetValue(p)
}

// Step moves the slider by delta positions.
func (c *Control) Step(delta int) {
	c.slider.SetValue(c.slider.Value() + delta)
}

// PageStep moves the slider by delta pages of ten positions.
func (c *Control) PageStep(delta int) {
	c.Step(delta * pageSize)
}

// Reset restores the initial value.
func (c *Control) Reset() {
	c.spin.SetValue(c.spec.Initial)
}

func (c *Control) sliderChanged(p int) {
	prev := c.spin.BlockSignals(true)
	c.spin.SetValue(c.mapping.Inverse(p))
	c.spin.BlockSignals(prev)
	c.fire(c.spin.Value())
}

func (c *Control) spinChanged(v float64) {
	prev := c.slider.BlockSignals(true)
	c.slider.SetValue(c.mapping.Forward(v))
	c.slider.BlockSignals(prev)
	c.fire(v)
}

func (c *Control) fire(v float64) {
	if c.notify != nil {
		c.notify(c.spec.Name, v)
	}
}

// Set is an ordered mapping from parameter name to its control.
type Set struct {
	order    []string
	controls map[string]*Control
	notify   Notify
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{controls: map[string]*Control{}}
}

// OnChange registers the notification shared by every control in the set.
func (s *Set) OnChange(fn Notify) {
	s.notify = fn
}

// Add creates a control for spec.
func (s *Set) Add(spec Spec) (*Control, error) {
	if _, ok := s.controls[spec.Name]; ok {
		return nil, &InvalidSpecificationError{Name: spec.Name, Reason: "duplicate parameter"}
	}
	c := NewControl(spec, s.dispatch)
	s.controls[spec.Name] = c
	s.order = append(s.order, spec.Name)
	return c, nil
}

// AddTerse parses, infers and adds a parameter in one step.
func (s *Set) AddTerse(name string, raw any, declared *Number) (*Control, error) {
	t, err := ParseTerse(name, raw)
	if err != nil {
		return nil, err
	}
	spec, err := Infer(name, t, declared)
	if err != nil {
		return nil, err
	}
	return s.Add(spec)
}

// Len returns the number of parameters.
func (s *Set) Len() int {
	return len(s.order)
}

// Names returns parameter names in insertion order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Control returns the control for name, or nil.
func (s *Set) Control(name string) *Control {
	return s.controls[name]
}

// At returns the i-th control in insertion order.
func (s *Set) At(i int) *Control {
	return s.controls[s.order[i]]
}

// Get returns the current value for name.
func (s *Set) Get(name string) (float64, bool) {
	c, ok := s.controls[name]
	if !ok {
		return 0, false
	}
	return c.Value(), true
}

// Set writes a value through the control's continuous widget.
func (s *Set) Set(name string, v float64) error {
	c, ok := s.controls[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q", name)
	}
	c.SetValue(v)
	return nil
}

// Values returns a snapshot of every current value.
func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.controls))
	for name, c := range s.controls {
		out[name] = c.Value()
	}
	return out
}

// Reset restores every control to its initial value.
func (s *Set) Reset() {
	for _, name := range s.order {
		s.controls[name].Reset()
	}
}

func (s *Set) dispatch(name string, v float64) {
	if s.notify != nil {
		s.notify(name, v)
	}
}
