package types

// Array is a homogeneous ordered sequence whose elements are described
// by an owned item type. Serialization applies the item type's own
// conversion element-wise, preserving order.
//
// MinLength and MaxLength are published in the schema for the remote
// caller to enforce; the array itself does not reject length violations.
type Array struct {
	BaseType
	itemType  Type
	minLength *int
	maxLength *int
}

// ArrayOptions configures an Array type.
type ArrayOptions struct {
	Name        string
	Description string

	// ItemType describes the elements. The array takes exclusive
	// ownership and rewrites the item's name.
	ItemType Type

	MinLength *int
	MaxLength *int
}

// NewArray constructs an array type.
func NewArray(opts ArrayOptions) (*Array, error) {
	if opts.ItemType == nil {
		return nil, missingArg("item_type")
	}
	a := &Array{
		BaseType:  NewBase(KindArray, "", opts.Description),
		itemType:  opts.ItemType,
		minLength: opts.MinLength,
		maxLength: opts.MaxLength,
	}
	if opts.ItemType.Name() == "" {
		opts.ItemType.SetName(opts.ItemType.Kind() + "_array_item")
	}
	if opts.Name != "" {
		a.SetName(opts.Name)
	}
	return a, nil
}

// ItemType returns the owned element type.
func (a *Array) ItemType() Type { return a.itemType }

// SetName assigns the array's name and derives the owned item's name
// from it.
func (a *Array) SetName(name string) {
	a.BaseType.SetName(name)
	a.itemType.SetName(name + "_array_item")
}

func (a *Array) Describe() Dict {
	d := a.BaseType.Describe()
	d["minLength"] = optInt(a.minLength)
	d["maxLength"] = optInt(a.maxLength)
	d["itemType"] = a.itemType.Describe()
	return d
}

func (a *Array) Serialize(v any) (any, error) {
	return a.each(v, a.itemType.Serialize)
}

func (a *Array) Deserialize(v any) (any, error) {
	return a.each(v, a.itemType.Deserialize)
}

func (a *Array) each(v any, convert func(any) (any, error)) (any, error) {
	items, ok := anySlice(v)
	if !ok {
		return nil, invalidArg(a.argName(), "value %v is not a sequence", v)
	}
	out := make([]any, len(items))
	for i, item := range items {
		converted, err := convert(item)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// Vector is a fixed-length numeric embedding.
type Vector struct {
	BaseType
	length       int
	def          []float64
	samplingMean *float64
	samplingStd  *float64
}

// VectorOptions configures a Vector type.
type VectorOptions struct {
	Name        string
	Description string

	// Length is the fixed element count. When zero it is inferred
	// from Default.
	Length int

	// Default, when given, must match Length.
	Default []float64

	SamplingMean *float64
	SamplingStd  *float64
}

// NewVector constructs a vector type. Length resolution happens here,
// once; serialization never re-infers it.
func NewVector(opts VectorOptions) (*Vector, error) {
	length := opts.Length
	if length == 0 {
		if len(opts.Default) == 0 {
			return nil, missingArg("length")
		}
		length = len(opts.Default)
	}
	if length < 0 {
		return nil, invalidArg("length", "length must be positive, got %d", length)
	}
	if opts.Default != nil && len(opts.Default) != length {
		return nil, invalidArg("default", "default has %d elements, expected %d", len(opts.Default), length)
	}
	v := &Vector{
		BaseType:     NewBase(KindVector, opts.Name, opts.Description),
		length:       length,
		samplingMean: opts.SamplingMean,
		samplingStd:  opts.SamplingStd,
	}
	if opts.Default != nil {
		v.def = make([]float64, length)
		copy(v.def, opts.Default)
	}
	return v, nil
}

// Length returns the resolved element count.
func (v *Vector) Length() int { return v.length }

// Default returns the configured default, or nil.
func (v *Vector) Default() []float64 {
	if v.def == nil {
		return nil
	}
	out := make([]float64, len(v.def))
	copy(out, v.def)
	return out
}

func (v *Vector) Describe() Dict {
	d := v.BaseType.Describe()
	d["length"] = v.length
	d["samplingMean"] = optFloat(v.samplingMean)
	d["samplingStd"] = optFloat(v.samplingStd)
	if v.def != nil {
		d["default"] = v.Default()
	}
	return d
}

// Serialize converts a numeric-array-like of the fixed length into a
// plain ordered sequence of numbers.
func (v *Vector) Serialize(value any) (any, error) { return v.coerce(value) }

// Deserialize converts a plain ordered sequence back into the native
// numeric representation of the same length.
func (v *Vector) Deserialize(value any) (any, error) { return v.coerce(value) }

func (v *Vector) coerce(value any) (any, error) {
	s, ok := floatSlice(value)
	if !ok {
		return nil, invalidArg(v.argName(), "value %v is not a numeric sequence", value)
	}
	if len(s) != v.length {
		return nil, invalidArg(v.argName(), "expected %d elements, got %d", v.length, len(s))
	}
	return s, nil
}
