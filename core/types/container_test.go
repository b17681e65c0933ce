package types

import (
	"reflect"
	"testing"
)

func TestArrayDescribe(t *testing.T) {
	minLen, maxLen := 5, 10
	arr, err := NewArray(ArrayOptions{
		ItemType:    NewText(TextOptions{}),
		Description: "A description about this variable.",
		MinLength:   &minLen,
		MaxLength:   &maxLen,
	})
	if err != nil {
		t.Fatalf("NewArray error: %v", err)
	}
	d := arr.Describe()

	if d["type"] != "array" {
		t.Errorf("type = %v, want %q", d["type"], "array")
	}
	if d["minLength"] != 5 {
		t.Errorf("minLength = %v, want 5", d["minLength"])
	}
	if d["maxLength"] != 10 {
		t.Errorf("maxLength = %v, want 10", d["maxLength"])
	}

	item, ok := d["itemType"].(Dict)
	if !ok {
		t.Fatalf("itemType = %T, want a schema dict", d["itemType"])
	}
	if item["type"] != "text" {
		t.Errorf("itemType.type = %v, want %q", item["type"], "text")
	}
	if item["name"] != "text_array_item" {
		t.Errorf("itemType.name = %v, want %q", item["name"], "text_array_item")
	}
}

func TestArrayRequiresItemType(t *testing.T) {
	if _, err := NewArray(ArrayOptions{}); !IsMissingArgument(err) {
		t.Errorf("error = %v, want MissingArgumentError", err)
	}
}

func TestArrayItemRenaming(t *testing.T) {
	arr, err := NewArray(ArrayOptions{Name: "styles", ItemType: NewText(TextOptions{})})
	if err != nil {
		t.Fatalf("NewArray error: %v", err)
	}
	if got := arr.ItemType().Name(); got != "styles_array_item" {
		t.Errorf("item name = %q, want %q", got, "styles_array_item")
	}

	arr.SetName("palettes")
	if got := arr.ItemType().Name(); got != "palettes_array_item" {
		t.Errorf("item name after rename = %q, want %q", got, "palettes_array_item")
	}
}

func TestArrayElementWise(t *testing.T) {
	arr, err := NewArray(ArrayOptions{ItemType: NewText(TextOptions{})})
	if err != nil {
		t.Fatalf("NewArray error: %v", err)
	}

	got, err := arr.Serialize([]int{10, 100, 1000})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"10", "100", "1000"}) {
		t.Errorf("Serialize = %v, want [10 100 1000] as strings", got)
	}

	got, err = arr.Deserialize([]any{"one", "two", "three"})
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if !reflect.DeepEqual(got, []any{"one", "two", "three"}) {
		t.Errorf("Deserialize = %v, want order preserved", got)
	}
}

func TestArrayPropagatesItemErrors(t *testing.T) {
	arr, err := NewArray(ArrayOptions{ItemType: NewBoolean(BooleanOptions{})})
	if err != nil {
		t.Fatalf("NewArray error: %v", err)
	}
	if _, err := arr.Serialize([]any{true, "nope"}); !IsInvalidArgument(err) {
		t.Errorf("Serialize error = %v, want InvalidArgumentError", err)
	}
}

func TestArrayRejectsNonSequence(t *testing.T) {
	arr, err := NewArray(ArrayOptions{ItemType: NewText(TextOptions{})})
	if err != nil {
		t.Fatalf("NewArray error: %v", err)
	}
	for _, v := range []any{true, "abc", 1} {
		if _, err := arr.Serialize(v); !IsInvalidArgument(err) {
			t.Errorf("Serialize(%v) error = %v, want InvalidArgumentError", v, err)
		}
	}
}

func TestVectorDescribe(t *testing.T) {
	mean, std := 0.0, 1.0
	vec, err := NewVector(VectorOptions{
		Length:       128,
		SamplingMean: &mean,
		SamplingStd:  &std,
		Description:  "A description about this variable.",
	})
	if err != nil {
		t.Fatalf("NewVector error: %v", err)
	}
	d := vec.Describe()

	if d["type"] != "vector" {
		t.Errorf("type = %v, want %q", d["type"], "vector")
	}
	if d["length"] != 128 {
		t.Errorf("length = %v, want 128", d["length"])
	}
	if d["samplingMean"] != 0.0 {
		t.Errorf("samplingMean = %v, want 0", d["samplingMean"])
	}
	if d["samplingStd"] != 1.0 {
		t.Errorf("samplingStd = %v, want 1", d["samplingStd"])
	}
}

func TestVectorConstruction(t *testing.T) {
	t.Run("no length", func(t *testing.T) {
		if _, err := NewVector(VectorOptions{}); !IsMissingArgument(err) {
			t.Errorf("error = %v, want MissingArgumentError", err)
		}
	})

	t.Run("length inferred from default", func(t *testing.T) {
		vec, err := NewVector(VectorOptions{Default: []float64{42, 42}})
		if err != nil {
			t.Fatalf("NewVector error: %v", err)
		}
		if vec.Length() != 2 {
			t.Errorf("Length() = %d, want 2", vec.Length())
		}
	})

	t.Run("default length mismatch", func(t *testing.T) {
		_, err := NewVector(VectorOptions{Length: 5, Default: []float64{42, 42, 42, 42}})
		if !IsInvalidArgument(err) {
			t.Errorf("error = %v, want InvalidArgumentError", err)
		}
	})

	t.Run("default preserved", func(t *testing.T) {
		vec, err := NewVector(VectorOptions{Length: 5, Default: []float64{1, 2, 3, 4, 5}})
		if err != nil {
			t.Fatalf("NewVector error: %v", err)
		}
		if !reflect.DeepEqual(vec.Default(), []float64{1, 2, 3, 4, 5}) {
			t.Errorf("Default() = %v, want [1 2 3 4 5]", vec.Default())
		}
	})
}

func TestVectorRoundTrip(t *testing.T) {
	vec, err := NewVector(VectorOptions{Length: 5, Default: []float64{1, 2, 3, 4, 5}})
	if err != nil {
		t.Fatalf("NewVector error: %v", err)
	}

	wire, err := vec.Serialize([]float64{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if !reflect.DeepEqual(wire, []float64{1, 2, 3, 4, 5}) {
		t.Errorf("Serialize = %v, want plain numeric sequence", wire)
	}

	native, err := vec.Deserialize(wire)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	if !reflect.DeepEqual(native, []float64{1, 2, 3, 4, 5}) {
		t.Errorf("round trip = %v, want values preserved", native)
	}
}

func TestVectorLengthEnforced(t *testing.T) {
	vec, err := NewVector(VectorOptions{Length: 3})
	if err != nil {
		t.Fatalf("NewVector error: %v", err)
	}
	for _, v := range []any{[]float64{1, 2}, []float64{}, "123", true} {
		if _, err := vec.Serialize(v); !IsInvalidArgument(err) {
			t.Errorf("Serialize(%v) error = %v, want InvalidArgumentError", v, err)
		}
		if _, err := vec.Deserialize(v); !IsInvalidArgument(err) {
			t.Errorf("Deserialize(%v) error = %v, want InvalidArgumentError", v, err)
		}
	}
}

func TestArrayOfVectors(t *testing.T) {
	item, err := NewVector(VectorOptions{Length: 2})
	if err != nil {
		t.Fatalf("NewVector error: %v", err)
	}
	arr, err := NewArray(ArrayOptions{ItemType: item})
	if err != nil {
		t.Fatalf("NewArray error: %v", err)
	}

	got, err := arr.Serialize([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	want := []any{[]float64{1, 2}, []float64{3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Serialize = %v, want %v", got, want)
	}
}
