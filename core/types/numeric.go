package types

import (
	"encoding/json"
	"reflect"
)

// Numeric coercion boundary. Wire values arrive as plain sequences of
// any numeric element kind (or json.Number after decoding); native
// values are plain []float64. Coercion happens at the edge of each
// operation so no specific numeric type is threaded through the core.

// floatScalar coerces v to a float64. A single-element numeric sequence
// (the scalar wrapper produced by numeric libraries) is unwrapped.
func floatScalar(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		return 0, false
	}
	// Unwrap a one-element numeric sequence.
	if s, ok := floatSlice(v); ok && len(s) == 1 {
		return s[0], true
	}
	return 0, false
}

// floatSlice coerces an ordered numeric sequence to []float64.
func floatSlice(v any) ([]float64, bool) {
	if s, ok := v.([]float64); ok {
		out := make([]float64, len(s))
		copy(out, s)
		return out, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]float64, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		el := rv.Index(i).Interface()
		f, ok := elementFloat(el)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// elementFloat is floatScalar without sequence unwrapping; sequence
// elements must be actual scalars.
func elementFloat(v any) (float64, bool) {
	switch v.(type) {
	case bool, nil:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.String:
		if n, ok := v.(json.Number); ok {
			f, err := n.Float64()
			return f, err == nil
		}
	}
	return 0, false
}

// floatMatrix coerces a sequence of numeric sequences to [][]float64.
func floatMatrix(v any) ([][]float64, bool) {
	rows, ok := anySlice(v)
	if !ok {
		return nil, false
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		r, ok := floatSlice(row)
		if !ok {
			return nil, false
		}
		out[i] = r
	}
	return out, true
}

// anySlice coerces any ordered sequence to []any, preserving order.
func anySlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		copy(out, s)
		return out, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		// Raw bytes are a payload, not a sequence of values.
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
