// Package types implements the typed schema layer describing the inputs
// and outputs of a model exposed behind a network interface. Each data
// type declares validation constraints and a JSON-compatible schema, and
// converts wire-format values to native in-process values (Deserialize)
// and back (Serialize).
package types

// Dict is the JSON-compatible schema representation of a data type,
// consumed by remote callers. Its keys are a fixed external contract;
// renaming any key is a breaking change.
type Dict = map[string]any

// Type is the contract implemented by every data type variant.
//
// Instances are immutable configuration after construction, except that
// the owning container or registry may assign the name once via SetName.
// Serialize and Deserialize never mutate configuration and are safe to
// call concurrently.
type Type interface {
	// Kind returns the immutable variant tag ("text", "image", ...).
	Kind() string

	// Name returns the field name assigned by the owner, or "".
	Name() string

	// SetName assigns the field name. Containers propagate derived
	// names to owned types.
	SetName(name string)

	// Description returns the human-readable description, or "".
	Description() string

	// Describe exports the schema dictionary published to remote
	// callers.
	Describe() Dict

	// Serialize converts a native value into a wire-safe value.
	Serialize(v any) (any, error)

	// Deserialize converts a wire value into a native value.
	Deserialize(v any) (any, error)
}

// Variant kind tags. The tag is set at construction and never changes.
const (
	KindAny              = "any"
	KindText             = "text"
	KindNumber           = "number"
	KindBoolean          = "boolean"
	KindCategory         = "category"
	KindArray            = "array"
	KindVector           = "vector"
	KindImage            = "image"
	KindSegmentation     = "segmentation"
	KindFile             = "file"
	KindImagePoint       = "image_point"
	KindImageBoundingBox = "image_bounding_box"
	KindImageLandmarks   = "image_landmarks"
)

// BaseType carries the configuration shared by every variant: the kind
// tag, the owner-assigned name and the optional description. The bare
// base does not implement value conversion; calling Serialize or
// Deserialize on it fails with a ContractError.
type BaseType struct {
	kind        string
	name        string
	description string
}

// NewBase constructs a bare BaseType. Variants embed the result; the
// bare value itself is only useful for schema export.
func NewBase(kind, name, description string) BaseType {
	return BaseType{kind: kind, name: name, description: description}
}

// Kind returns the variant tag.
func (b *BaseType) Kind() string { return b.kind }

// Name returns the assigned field name, or "".
func (b *BaseType) Name() string { return b.name }

// SetName assigns the field name.
func (b *BaseType) SetName(name string) { b.name = name }

// Description returns the description, or "".
func (b *BaseType) Description() string { return b.description }

// Describe exports the common schema keys. Variants extend the result
// with their own keys.
func (b *BaseType) Describe() Dict {
	d := Dict{
		"type":        b.kind,
		"description": optString(b.description),
	}
	if b.name != "" {
		d["name"] = b.name
	}
	return d
}

// Serialize on the bare base is a contract violation.
func (b *BaseType) Serialize(v any) (any, error) {
	return nil, &ContractError{Kind: b.kind, Method: "Serialize"}
}

// Deserialize on the bare base is a contract violation.
func (b *BaseType) Deserialize(v any) (any, error) {
	return nil, &ContractError{Kind: b.kind, Method: "Deserialize"}
}

// argName names this type in validation errors: the assigned field name
// when present, the kind tag otherwise.
func (b *BaseType) argName() string {
	if b.name != "" {
		return b.name
	}
	return b.kind
}

// optString maps "" to nil so unset descriptions export as JSON null.
func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func optFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
