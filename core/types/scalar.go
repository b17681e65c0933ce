package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Any passes every JSON-representable value through unchanged in both
// directions.
type Any struct {
	BaseType
}

// AnyOptions configures an Any type.
type AnyOptions struct {
	Name        string
	Description string
}

// NewAny constructs an identity pass-through type.
func NewAny(opts AnyOptions) *Any {
	return &Any{BaseType: NewBase(KindAny, opts.Name, opts.Description)}
}

func (a *Any) Serialize(v any) (any, error)   { return v, nil }
func (a *Any) Deserialize(v any) (any, error) { return v, nil }

// Text is a string value with optional length bounds.
type Text struct {
	BaseType
	def       string
	minLength *int
	maxLength *int
}

// TextOptions configures a Text type.
type TextOptions struct {
	Name        string
	Description string
	Default     string
	MinLength   *int
	MaxLength   *int
}

// NewText constructs a text type.
func NewText(opts TextOptions) *Text {
	return &Text{
		BaseType:  NewBase(KindText, opts.Name, opts.Description),
		def:       opts.Default,
		minLength: opts.MinLength,
		maxLength: opts.MaxLength,
	}
}

// Default returns the configured default value.
func (t *Text) Default() string { return t.def }

func (t *Text) Describe() Dict {
	d := t.BaseType.Describe()
	d["default"] = optString(t.def)
	d["minLength"] = optInt(t.minLength)
	d["maxLength"] = optInt(t.maxLength)
	return d
}

func (t *Text) Serialize(v any) (any, error)   { return stringify(v), nil }
func (t *Text) Deserialize(v any) (any, error) { return stringify(v), nil }

// stringify coerces a value to its string form. Numbers become their
// decimal representation.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(v)
	}
}

// Number is a numeric scalar with optional range and step configuration.
type Number struct {
	BaseType
	def  *float64
	min  *float64
	max  *float64
	step *float64
}

// NumberOptions configures a Number type.
type NumberOptions struct {
	Name        string
	Description string
	Default     *float64
	Min         *float64
	Max         *float64
	Step        *float64
}

// NewNumber constructs a numeric scalar type.
func NewNumber(opts NumberOptions) *Number {
	return &Number{
		BaseType: NewBase(KindNumber, opts.Name, opts.Description),
		def:      opts.Default,
		min:      opts.Min,
		max:      opts.Max,
		step:     opts.Step,
	}
}

func (n *Number) Describe() Dict {
	d := n.BaseType.Describe()
	d["default"] = optFloat(n.def)
	d["min"] = optFloat(n.min)
	d["max"] = optFloat(n.max)
	d["step"] = optFloat(n.step)
	return d
}

// Serialize coerces v to a plain float64. Single-element numeric
// sequences (numeric-library scalar wrappers) are unwrapped.
func (n *Number) Serialize(v any) (any, error) {
	f, ok := floatScalar(v)
	if !ok {
		return nil, invalidArg(n.argName(), "value %v is not numeric", v)
	}
	return f, nil
}

func (n *Number) Deserialize(v any) (any, error) {
	f, ok := floatScalar(v)
	if !ok {
		return nil, invalidArg(n.argName(), "value %v is not numeric", v)
	}
	return f, nil
}

// Boolean accepts exactly the two boolean literals. There is no implicit
// truthiness coercion: strings, numbers, sequences and mappings all fail.
type Boolean struct {
	BaseType
	def bool
}

// BooleanOptions configures a Boolean type.
type BooleanOptions struct {
	Name        string
	Description string
	Default     bool
}

// NewBoolean constructs a boolean type.
func NewBoolean(opts BooleanOptions) *Boolean {
	return &Boolean{
		BaseType: NewBase(KindBoolean, opts.Name, opts.Description),
		def:      opts.Default,
	}
}

func (b *Boolean) Describe() Dict {
	d := b.BaseType.Describe()
	d["default"] = b.def
	return d
}

func (b *Boolean) Serialize(v any) (any, error)   { return b.check(v) }
func (b *Boolean) Deserialize(v any) (any, error) { return b.check(v) }

func (b *Boolean) check(v any) (any, error) {
	lit, ok := v.(bool)
	if !ok {
		return nil, invalidArg(b.argName(), "value %v (%T) is not a boolean literal", v, v)
	}
	return lit, nil
}

// Category is a string value restricted to a fixed set of choices.
type Category struct {
	BaseType
	choices []string
	def     string
}

// CategoryOptions configures a Category type.
type CategoryOptions struct {
	Name        string
	Description string

	// Choices is the non-empty ordered set of allowed values.
	Choices []string

	// Default must be a member of Choices. When empty, the first
	// choice is used.
	Default string
}

// NewCategory constructs a category type.
func NewCategory(opts CategoryOptions) (*Category, error) {
	if len(opts.Choices) == 0 {
		return nil, missingArg("choices")
	}
	seen := make(map[string]bool, len(opts.Choices))
	for _, c := range opts.Choices {
		if seen[c] {
			return nil, invalidArg("choices", "duplicate choice %q", c)
		}
		seen[c] = true
	}
	def := opts.Default
	if def == "" {
		def = opts.Choices[0]
	} else if !seen[def] {
		return nil, invalidArg("default", "default %q is not one of the choices", def)
	}
	choices := make([]string, len(opts.Choices))
	copy(choices, opts.Choices)
	return &Category{
		BaseType: NewBase(KindCategory, opts.Name, opts.Description),
		choices:  choices,
		def:      def,
	}, nil
}

// Choices returns the ordered set of allowed values.
func (c *Category) Choices() []string {
	out := make([]string, len(c.choices))
	copy(out, c.choices)
	return out
}

// Default returns the resolved default choice.
func (c *Category) Default() string { return c.def }

func (c *Category) Describe() Dict {
	d := c.BaseType.Describe()
	d["oneOf"] = c.Choices()
	d["default"] = c.def
	return d
}

// Serialize is identity on strings; membership is not re-checked on the
// way out.
func (c *Category) Serialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidArg(c.argName(), "value %v (%T) is not a string", v, v)
	}
	return s, nil
}

// Deserialize is identity on strings, but the value must be a member of
// the configured choices.
func (c *Category) Deserialize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidArg(c.argName(), "value %v (%T) is not a string", v, v)
	}
	for _, choice := range c.choices {
		if s == choice {
			return s, nil
		}
	}
	return nil, invalidArg(c.argName(), "value %q is not one of the choices", s)
}
