// Package session loads session files describing functions, data and parameters.
package session

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Modes a session may run in.
const (
	ModePlot  = "plot"
	ModeFit   = "fit"
	ModeImage = "image"
)

// File is a parsed session file.
type File struct {
	Title  string       `toml:"title" yaml:"title"`
	Mode   string       `toml:"mode" yaml:"mode" validate:"omitempty,oneof=plot fit image"`
	Watch  bool         `toml:"watch" yaml:"watch"`
	Domain *Domain      `toml:"domain" yaml:"domain"`
	Series []SeriesSpec `toml:"series" yaml:"series" validate:"dive"`
	Params ParamList    `toml:"-" yaml:"params"`
	Fit    *FitSpec     `toml:"fit" yaml:"fit"`
	Image  *ImageSpec   `toml:"image" yaml:"image" validate:"required_if=Mode image"`

	// Dir is the directory relative data paths are resolved against.
	Dir string `toml:"-" yaml:"-"`
}

// Domain is a sampled x axis: a linspace, an arange, or a column read from a file.
type Domain struct {
	Start  float64 `toml:"start" yaml:"start"`
	Stop   float64 `toml:"stop" yaml:"stop"`
	Num    int     `toml:"num" yaml:"num" validate:"omitempty,min=2"`
	Step   float64 `toml:"step" yaml:"step" validate:"omitempty,gt=0"`
	File   string  `toml:"file" yaml:"file"`
	Column string  `toml:"column" yaml:"column"`
}

// SeriesSpec declares one curve.
type SeriesSpec struct {
	Name     string             `toml:"name" yaml:"name"`
	Builtin  string             `toml:"builtin" yaml:"builtin" validate:"required_without_all=Expr File Values"`
	Expr     string             `toml:"expr" yaml:"expr"`
	Defaults map[string]float64 `toml:"defaults" yaml:"defaults"`
	File     string             `toml:"file" yaml:"file"`
	Column   string             `toml:"column" yaml:"column"`
	XColumn  string             `toml:"x_column" yaml:"x_column"`
	Values   []float64          `toml:"values" yaml:"values"`
	Domain   *Domain            `toml:"domain" yaml:"domain"`
	Style    string             `toml:"style" yaml:"style" validate:"omitempty,oneof=- . .- o"`
	// Reference marks the data a fit is made against.
	Reference bool `toml:"reference" yaml:"reference"`
}

// FitSpec places the initial boundary markers.
type FitSpec struct {
	Lo *float64 `toml:"lo" yaml:"lo"`
	Hi *float64 `toml:"hi" yaml:"hi"`
}

// ImageSpec names the matrix shown in image mode.
type ImageSpec struct {
	File string `toml:"file" yaml:"file" validate:"required"`
}

// ParamEntry is one parameter in file order; Spec holds the raw terse value.
type ParamEntry struct {
	Name string
	Spec any
}

// ParamList keeps parameters in the order they were written.
type ParamList []ParamEntry

// UnmarshalYAML reads a mapping node without losing key order.
func (p *ParamList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}
	out := make(ParamList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("param %q: %w", node.Content[i].Value, err)
		}
		out = append(out, ParamEntry{Name: node.Content[i].Value, Spec: value})
	}
	*p = out
	return nil
}

// Names returns parameter names in order.
func (p ParamList) Names() []string {
	names := make([]string, len(p))
	for i, e := range p {
		names[i] = e.Name
	}
	return names
}

var validate = validator.New()

// Load reads a TOML or YAML session file by extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	default:
		f, err = ParseTOML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Dir = filepath.Dir(path)
	return f, nil
}

// ParseTOML decodes a TOML session.
func ParseTOML(data []byte) (*File, error) {
	var raw struct {
		File
		RawParams map[string]any `toml:"params"`
	}
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	for _, key := range md.Undecoded() {
		if len(key) > 0 && key[0] == "params" {
			continue
		}
		return nil, fmt.Errorf("decode session: unknown key %q", key.String())
	}
	f := raw.File
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "params" {
			continue
		}
		value, ok := raw.RawParams[key[1]]
		if !ok {
			continue
		}
		f.Params = append(f.Params, ParamEntry{Name: key[1], Spec: value})
	}
	if err := check(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ParseYAML decodes a YAML session.
func ParseYAML(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if err := check(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks a session assembled in code.
func (f *File) Validate() error {
	return check(f)
}

func check(f *File) error {
	if f.Mode == "" {
		f.Mode = ModePlot
	}
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	if f.Mode != ModeImage && len(f.Series) == 0 {
		return fmt.Errorf("invalid session: no series")
	}
	for i, s := range f.Series {
		sources := 0
		for _, set := range []bool{s.Builtin != "", s.Expr != "", s.File != "", s.Values != nil} {
			if set {
				sources++
			}
		}
		if sources != 1 {
			return fmt.Errorf("invalid session: series %d must have exactly one of builtin, expr, file, values", i)
		}
	}
	return nil
}
