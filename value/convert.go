package value

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toCty converts a native Go value into its corresponding cty.Value.
// Generic containers ([]any, map[string]any) are walked element by
// element because gocty cannot infer a type for interface{}.
func toCty(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case Value:
		return tv.cty(), nil
	case cty.Value:
		return tv, nil
	case []any:
		elems := make([]cty.Value, len(tv))
		for i, e := range tv {
			ev, err := toCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return tupleVal(elems), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(tv))
		for k, e := range tv {
			ev, err := toCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return objectVal(attrs), nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer type for %T: %w", v, err)
	}
	cv, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to convert %T: %w", v, err)
	}
	return cv, nil
}

// normalize rewrites collection types into the algebra's canonical
// shapes: lists and sets become tuples, maps become objects, and nulls
// lose their element type. The result is exactly what a JSON round trip
// of the same data would produce, so normalized values compare equal
// across serialization boundaries.
func normalize(v cty.Value) cty.Value {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return cty.NullVal(cty.DynamicPseudoType)
	}

	ty := v.Type()
	switch {
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		elems := make([]cty.Value, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			elems = append(elems, normalize(ev))
		}
		return tupleVal(elems)

	case ty.IsMapType() || ty.IsObjectType():
		attrs := make(map[string]cty.Value, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			k, ev := it.Element()
			attrs[k.AsString()] = normalize(ev)
		}
		return objectVal(attrs)

	default:
		return v
	}
}

// ctyToNative recursively converts a cty.Value to its most natural Go
// counterpart. Numbers come back as float64, the common representation
// for a generic 'any' target.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			nativeVal, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			slice = append(slice, nativeVal)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		goMap := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, ev := it.Element()
			keyStr := key.AsString()
			nativeVal, err := ctyToNative(ev)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", keyStr, err)
			}
			goMap[keyStr] = nativeVal
		}
		return goMap, nil

	default:
		return nil, fmt.Errorf("unsupported type for native conversion: %s", ty.FriendlyName())
	}
}
