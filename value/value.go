package value

import (
	"encoding/base64"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Value is an immutable element of the algebra. The zero Value is null.
type Value struct {
	v cty.Value
}

// Null returns the null Value.
func Null() Value {
	return Value{cty.NullVal(cty.DynamicPseudoType)}
}

// String returns a string Value.
func String(s string) Value {
	return Value{cty.StringVal(s)}
}

// Int returns a number Value holding an integer.
func Int(i int) Value {
	return Value{cty.NumberIntVal(int64(i))}
}

// Float returns a number Value.
func Float(f float64) Value {
	return Value{cty.NumberFloatVal(f)}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{cty.BoolVal(b)}
}

// Bytes returns a string Value carrying the raw bytes in base64 form.
// Use it to smuggle opaque blobs through the algebra.
func Bytes(b []byte) Value {
	return Value{cty.StringVal(base64.StdEncoding.EncodeToString(b))}
}

// List returns a tuple Value of the given elements.
func List(vs ...Value) Value {
	elems := make([]cty.Value, len(vs))
	for i, v := range vs {
		elems[i] = v.cty()
	}
	return Value{tupleVal(elems)}
}

// StringList returns a tuple Value of strings.
func StringList(ss ...string) Value {
	elems := make([]cty.Value, len(ss))
	for i, s := range ss {
		elems[i] = cty.StringVal(s)
	}
	return Value{tupleVal(elems)}
}

// IntList returns a tuple Value of integers.
func IntList(is ...int) Value {
	elems := make([]cty.Value, len(is))
	for i, n := range is {
		elems[i] = cty.NumberIntVal(int64(n))
	}
	return Value{tupleVal(elems)}
}

// FloatList returns a tuple Value of numbers.
func FloatList(fs ...float64) Value {
	elems := make([]cty.Value, len(fs))
	for i, f := range fs {
		elems[i] = cty.NumberFloatVal(f)
	}
	return Value{tupleVal(elems)}
}

// Object returns an object Value with the given attributes.
func Object(attrs map[string]Value) Value {
	m := make(map[string]cty.Value, len(attrs))
	for k, v := range attrs {
		m[k] = v.cty()
	}
	return Value{objectVal(m)}
}

// FromGo converts a native Go value into a Value. Supported inputs are
// nil, booleans, strings, all integer and float widths, slices and maps
// with string keys, structs with cty tags, plus Value and cty.Value
// themselves. Anything else reports an error naming the offending type.
func FromGo(v any) (Value, error) {
	cv, err := toCty(v)
	if err != nil {
		return Value{}, err
	}
	return Value{normalize(cv)}, nil
}

// MustFromGo is FromGo for literals; it panics on unsupported input.
func MustFromGo(v any) Value {
	cv, err := FromGo(v)
	if err != nil {
		panic(fmt.Sprintf("value: %v", err))
	}
	return cv
}

// FromCty wraps an existing cty.Value, normalizing collections into the
// algebra's tuple and object shapes.
func FromCty(v cty.Value) Value {
	return Value{normalize(v)}
}

// Cty exposes the underlying cty.Value.
func (v Value) Cty() cty.Value {
	return v.cty()
}

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool {
	return v.cty().IsNull()
}

// Type returns a human-oriented name for the Value's type.
func (v Value) Type() string {
	return v.cty().Type().FriendlyName()
}

// AsString returns the string contents, if the Value is a string.
func (v Value) AsString() (string, bool) {
	cv := v.cty()
	if cv.IsNull() || cv.Type() != cty.String {
		return "", false
	}
	return cv.AsString(), true
}

// AsInt returns the integer contents, if the Value is a whole number.
func (v Value) AsInt() (int, bool) {
	cv := v.cty()
	if cv.IsNull() || cv.Type() != cty.Number {
		return 0, false
	}
	var n int64
	if err := gocty.FromCtyValue(cv, &n); err != nil {
		return 0, false
	}
	return int(n), true
}

// AsFloat returns the numeric contents, if the Value is a number.
func (v Value) AsFloat() (float64, bool) {
	cv := v.cty()
	if cv.IsNull() || cv.Type() != cty.Number {
		return 0, false
	}
	var f float64
	if err := gocty.FromCtyValue(cv, &f); err != nil {
		return 0, false
	}
	return f, true
}

// AsBool returns the boolean contents, if the Value is a bool.
func (v Value) AsBool() (bool, bool) {
	cv := v.cty()
	if cv.IsNull() || cv.Type() != cty.Bool {
		return false, false
	}
	return cv.True(), true
}

// AsBytes decodes the contents of a Value built with Bytes.
func (v Value) AsBytes() ([]byte, bool) {
	s, ok := v.AsString()
	if !ok {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return b, true
}

// AsSlice returns the elements of a tuple Value.
func (v Value) AsSlice() ([]Value, bool) {
	cv := v.cty()
	if cv.IsNull() || !cv.Type().IsTupleType() {
		return nil, false
	}
	out := make([]Value, 0, cv.LengthInt())
	it := cv.ElementIterator()
	for it.Next() {
		_, ev := it.Element()
		out = append(out, Value{ev})
	}
	return out, true
}

// AsMap returns the attributes of an object Value.
func (v Value) AsMap() (map[string]Value, bool) {
	cv := v.cty()
	if cv.IsNull() || !cv.Type().IsObjectType() {
		return nil, false
	}
	out := make(map[string]Value, cv.LengthInt())
	it := cv.ElementIterator()
	for it.Next() {
		k, ev := it.Element()
		out[k.AsString()] = Value{ev}
	}
	return out, true
}

// AsStrings returns the elements of a tuple Value as strings.
func (v Value) AsStrings() ([]string, bool) {
	elems, ok := v.AsSlice()
	if !ok {
		return nil, false
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		s, ok := e.AsString()
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// Native converts the Value back to its most natural Go representation:
// nil, bool, string, float64, []any or map[string]any.
func (v Value) Native() (any, error) {
	return ctyToNative(v.cty())
}

// Equal reports whether two Values hold the same contents.
func (v Value) Equal(o Value) bool {
	return v.cty().RawEquals(o.cty())
}

// String renders the Value in its JSON form, for logs and error messages.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return v.Type()
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	cv := v.cty()
	return ctyjson.Marshal(cv, cv.Type())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(b []byte) error {
	ty, err := ctyjson.ImpliedType(b)
	if err != nil {
		return fmt.Errorf("unable to infer value type: %w", err)
	}
	cv, err := ctyjson.Unmarshal(b, ty)
	if err != nil {
		return fmt.Errorf("unable to decode value: %w", err)
	}
	v.v = normalize(cv)
	return nil
}

// cty returns the underlying value, mapping the zero Value to null.
func (v Value) cty() cty.Value {
	if v.v == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return v.v
}

func tupleVal(elems []cty.Value) cty.Value {
	if len(elems) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(elems)
}

func objectVal(attrs map[string]cty.Value) cty.Value {
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}
