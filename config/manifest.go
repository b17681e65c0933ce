// Package config loads model interface manifests: YAML documents that
// declare the named commands a model exposes and the typed inputs and
// outputs of each, built into data type instances from core/types.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dvschultz/MUNIT-runway/core/types"
)

// Manifest declares a model's public interface.
type Manifest struct {
	// Name identifies the model.
	Name string `yaml:"name"`

	// Description documents the model for remote callers.
	Description string `yaml:"description,omitempty"`

	// Commands are the operations the model exposes.
	Commands []CommandSpec `yaml:"commands"`
}

// CommandSpec declares one named operation with its typed interface.
type CommandSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Inputs      []FieldSpec `yaml:"inputs"`
	Outputs     []FieldSpec `yaml:"outputs"`
}

// FieldSpec declares a single input or output. Type selects the data
// type variant; the remaining knobs apply per variant and are validated
// by the variant's constructor.
type FieldSpec struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description,omitempty"`

	// Scalar knobs
	Default   any      `yaml:"default,omitempty"`
	MinLength *int     `yaml:"min_length,omitempty"`
	MaxLength *int     `yaml:"max_length,omitempty"`
	Min       *float64 `yaml:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty"`
	Step      *float64 `yaml:"step,omitempty"`
	Choices   []string `yaml:"choices,omitempty"`

	// Vector / landmarks knobs
	Length       int        `yaml:"length,omitempty"`
	SamplingMean *float64   `yaml:"sampling_mean,omitempty"`
	SamplingStd  *float64   `yaml:"sampling_std,omitempty"`
	Labels       []string   `yaml:"labels,omitempty"`
	Connections  [][]string `yaml:"connections,omitempty"`

	// Media knobs
	Channels            int              `yaml:"channels,omitempty"`
	MinWidth            *int             `yaml:"min_width,omitempty"`
	MaxWidth            *int             `yaml:"max_width,omitempty"`
	MinHeight           *int             `yaml:"min_height,omitempty"`
	MaxHeight           *int             `yaml:"max_height,omitempty"`
	DefaultOutputFormat string           `yaml:"default_output_format,omitempty"`
	LabelToID           map[string]int   `yaml:"label_to_id,omitempty"`
	LabelToColor        map[string][]int `yaml:"label_to_color,omitempty"`
	DefaultLabel        string           `yaml:"default_label,omitempty"`
	Width               *int             `yaml:"width,omitempty"`
	Height              *int             `yaml:"height,omitempty"`

	// Resource knobs
	IsDirectory bool   `yaml:"is_directory,omitempty"`
	Extension   string `yaml:"extension,omitempty"`

	// Container knob
	ItemType *FieldSpec `yaml:"item_type,omitempty"`
}

// ParseFile loads and validates a manifest from a YAML file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse loads and validates a manifest from YAML bytes. Validation
// includes building every declared field, so a parsed manifest is
// guaranteed to construct.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest yaml: %w", err)
	}
	if err := Validate(&m); err != nil {
		return nil, fmt.Errorf("validate manifest %q: %w", m.Name, err)
	}
	return &m, nil
}

// Validate checks manifest structure and builds every field declaration
// to surface type configuration errors early.
func Validate(m *Manifest) error {
	var errs []string

	if m.Name == "" {
		errs = append(errs, "manifest name is required")
	} else if !isValidIdentifier(m.Name) {
		errs = append(errs, fmt.Sprintf("manifest name %q is not a valid identifier", m.Name))
	}
	if len(m.Commands) == 0 {
		errs = append(errs, "manifest must declare at least one command")
	}

	seen := make(map[string]bool, len(m.Commands))
	for _, cmd := range m.Commands {
		if cmd.Name == "" {
			errs = append(errs, "command name is required")
			continue
		}
		if !isValidIdentifier(cmd.Name) {
			errs = append(errs, fmt.Sprintf("command name %q is not a valid identifier", cmd.Name))
		}
		if seen[cmd.Name] {
			errs = append(errs, fmt.Sprintf("duplicate command %q", cmd.Name))
		}
		seen[cmd.Name] = true

		for _, dir := range []struct {
			label  string
			fields []FieldSpec
		}{{"input", cmd.Inputs}, {"output", cmd.Outputs}} {
			names := make(map[string]bool, len(dir.fields))
			for _, field := range dir.fields {
				if field.Name == "" {
					errs = append(errs, fmt.Sprintf("command %q: %s name is required", cmd.Name, dir.label))
					continue
				}
				if !isValidIdentifier(field.Name) {
					errs = append(errs, fmt.Sprintf("command %q: %s name %q is not a valid identifier", cmd.Name, dir.label, field.Name))
				}
				if names[field.Name] {
					errs = append(errs, fmt.Sprintf("command %q: duplicate %s %q", cmd.Name, dir.label, field.Name))
				}
				names[field.Name] = true
				if _, err := field.Build(); err != nil {
					errs = append(errs, fmt.Sprintf("command %q: %s %q: %v", cmd.Name, dir.label, field.Name, err))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Build constructs the data type instance declared by the field.
func (f FieldSpec) Build() (types.Type, error) {
	switch f.Type {
	case types.KindAny:
		return types.NewAny(types.AnyOptions{Name: f.Name, Description: f.Description}), nil

	case types.KindText:
		def, err := stringDefault(f.Default)
		if err != nil {
			return nil, err
		}
		return types.NewText(types.TextOptions{
			Name:        f.Name,
			Description: f.Description,
			Default:     def,
			MinLength:   f.MinLength,
			MaxLength:   f.MaxLength,
		}), nil

	case types.KindNumber:
		def, err := numberDefault(f.Default)
		if err != nil {
			return nil, err
		}
		return types.NewNumber(types.NumberOptions{
			Name:        f.Name,
			Description: f.Description,
			Default:     def,
			Min:         f.Min,
			Max:         f.Max,
			Step:        f.Step,
		}), nil

	case types.KindBoolean:
		def := false
		if f.Default != nil {
			b, ok := f.Default.(bool)
			if !ok {
				return nil, fmt.Errorf("boolean default must be a boolean literal, got %T", f.Default)
			}
			def = b
		}
		return types.NewBoolean(types.BooleanOptions{
			Name:        f.Name,
			Description: f.Description,
			Default:     def,
		}), nil

	case types.KindCategory:
		def, err := stringDefault(f.Default)
		if err != nil {
			return nil, err
		}
		return types.NewCategory(types.CategoryOptions{
			Name:        f.Name,
			Description: f.Description,
			Choices:     f.Choices,
			Default:     def,
		})

	case types.KindVector:
		def, err := vectorDefault(f.Default)
		if err != nil {
			return nil, err
		}
		return types.NewVector(types.VectorOptions{
			Name:         f.Name,
			Description:  f.Description,
			Length:       f.Length,
			Default:      def,
			SamplingMean: f.SamplingMean,
			SamplingStd:  f.SamplingStd,
		})

	case types.KindArray:
		if f.ItemType == nil {
			return types.NewArray(types.ArrayOptions{Name: f.Name, Description: f.Description})
		}
		item, err := f.ItemType.Build()
		if err != nil {
			return nil, fmt.Errorf("item_type: %w", err)
		}
		return types.NewArray(types.ArrayOptions{
			Name:        f.Name,
			Description: f.Description,
			ItemType:    item,
			MinLength:   f.MinLength,
			MaxLength:   f.MaxLength,
		})

	case types.KindImagePoint:
		return types.NewImagePoint(types.ImagePointOptions{Name: f.Name, Description: f.Description}), nil

	case types.KindImageBoundingBox:
		return types.NewImageBoundingBox(types.ImageBoundingBoxOptions{Name: f.Name, Description: f.Description}), nil

	case types.KindImageLandmarks:
		conns := make([][2]string, 0, len(f.Connections))
		for _, c := range f.Connections {
			if len(c) != 2 {
				return nil, fmt.Errorf("connection %v must have exactly 2 endpoints", c)
			}
			conns = append(conns, [2]string{c[0], c[1]})
		}
		if len(conns) == 0 {
			conns = nil
		}
		return types.NewImageLandmarks(types.ImageLandmarksOptions{
			Name:        f.Name,
			Description: f.Description,
			Length:      f.Length,
			Labels:      f.Labels,
			Connections: conns,
		})

	case types.KindImage:
		return types.NewImage(types.ImageOptions{
			Name:                f.Name,
			Description:         f.Description,
			Channels:            f.Channels,
			MinWidth:            f.MinWidth,
			MaxWidth:            f.MaxWidth,
			MinHeight:           f.MinHeight,
			MaxHeight:           f.MaxHeight,
			DefaultOutputFormat: f.DefaultOutputFormat,
		})

	case types.KindSegmentation:
		return types.NewSegmentation(types.SegmentationOptions{
			Name:         f.Name,
			Description:  f.Description,
			LabelToID:    f.LabelToID,
			LabelToColor: f.LabelToColor,
			DefaultLabel: f.DefaultLabel,
			Width:        f.Width,
			Height:       f.Height,
		})

	case types.KindFile:
		return types.NewFile(types.FileOptions{
			Name:        f.Name,
			Description: f.Description,
			IsDirectory: f.IsDirectory,
			Extension:   f.Extension,
		}), nil

	case "directory":
		return types.NewDirectory(types.DirectoryOptions{Name: f.Name, Description: f.Description}), nil

	case "":
		return nil, fmt.Errorf("field type is required")

	default:
		return nil, fmt.Errorf("unknown field type %q", f.Type)
	}
}

// BuildFields constructs the declared types of one direction, in order.
func BuildFields(fields []FieldSpec) ([]types.Type, error) {
	out := make([]types.Type, 0, len(fields))
	for _, f := range fields {
		t, err := f.Build()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func stringDefault(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("default must be a string, got %T", v)
	}
	return s, nil
}

func numberDefault(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		return &n, nil
	case int:
		f := float64(n)
		return &f, nil
	}
	return nil, fmt.Errorf("default must be numeric, got %T", v)
}

func vectorDefault(v any) ([]float64, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("default must be a numeric sequence, got %T", v)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		switch n := item.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		default:
			return nil, fmt.Errorf("default element %d is not numeric", i)
		}
	}
	return out, nil
}

// isValidIdentifier reports whether the name is usable as an external
// identifier: letters, digits and underscores, not starting with a
// digit.
func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
