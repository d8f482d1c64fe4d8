package xmlrpc

import (
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// RangeValidator is implemented by integer-backed wire types that encode a
// closed set of values plus an empty sentinel (an enum-like tagged
// discriminant, such as a team id). decodeStructViaMapstructure installs
// rangeCheckHook, which calls ValidXMLRPCValue on every such struct field
// as it is decoded, so an unrecognized raw value fails loudly instead of
// being accepted as a new, silently-invented member of the set.
type RangeValidator interface {
	ValidXMLRPCValue() bool
}

// MapError reports that a Value did not have the shape a Go type expected.
type MapError struct {
	Target string
	Got    string
	Reason string
}

func (e *MapError) Error() string {
	return fmt.Sprintf("xmlrpc map into %s: %s (got %s)", e.Target, e.Reason, e.Got)
}

// ToValue converts a Go value into its Value representation. Supported
// inputs are int32/int/bool/string/float64/[]byte, slices of any supported
// type (-> Array), and struct values whose exported fields carry an
// `xmlrpc:"name"` tag (-> Struct, members emitted in field order).
//
// There is no generic library for this direction (mapstructure only
// decodes into Go values, it has no encode side), so this walks the
// input with reflect directly.
func ToValue(in interface{}) (Value, error) {
	return toValue(reflect.ValueOf(in))
}

func toValue(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Value{}, fmt.Errorf("xmlrpc encode: nil value")
	}

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return Value{}, fmt.Errorf("xmlrpc encode: %d overflows Value::Int (int32)", n)
		}
		return NewInt(int32(n)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		if n > math.MaxInt32 {
			return Value{}, fmt.Errorf("xmlrpc encode: %d overflows Value::Int (int32)", n)
		}
		return NewInt(int32(n)), nil
	case reflect.Bool:
		return NewBool(rv.Bool()), nil
	case reflect.String:
		return NewString(rv.String()), nil
	case reflect.Float32, reflect.Float64:
		return NewDouble(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return NewBase64(b), nil
		}
		vals := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := toValue(rv.Index(i))
			if err != nil {
				return Value{}, err
			}
			vals[i] = v
		}
		return Value{Kind: KindArray, Array: vals}, nil
	case reflect.Ptr:
		if rv.IsNil() {
			return Value{}, fmt.Errorf("xmlrpc encode: nil pointer")
		}
		return toValue(rv.Elem())
	case reflect.Struct:
		return structToValue(rv)
	case reflect.Interface:
		return toValue(rv.Elem())
	default:
		return Value{}, fmt.Errorf("xmlrpc encode: unsupported kind %s", rv.Kind())
	}
}

func structToValue(rv reflect.Value) (Value, error) {
	t := rv.Type()
	var members []Member
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		name, _ := tagName(f)
		if name == "-" {
			continue
		}
		v, err := toValue(rv.Field(i))
		if err != nil {
			return Value{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		members = append(members, Member{Name: name, Value: v})
	}
	return Value{Kind: KindStruct, Struct: members}, nil
}

// tagName splits a struct field's `xmlrpc:"name,omitempty"` tag into the
// member name and whether the tag carries ",omitempty", falling back to
// the Go field name when the tag is absent. Neither direction acts on the
// omitempty flag: ToValue emits every field, and FromValue leaves any
// missing member at its zero value whether or not it is tagged. This mirrors the tag dialect
// mapstructure itself understands, so encode (here) and decode (FromValue,
// via mapstructure) agree on field names.
func tagName(f reflect.StructField) (name string, omitempty bool) {
	tag := f.Tag.Get("xmlrpc")
	if tag == "" {
		return f.Name, false
	}
	name = tag
	for i := 0; i < len(tag); i++ {
		if tag[i] == ',' {
			name = tag[:i]
			omitempty = tag[i:] == ",omitempty"
			break
		}
	}
	if name == "" {
		name = f.Name
	}
	return name, omitempty
}

// FromValue decodes v into the Go value pointed to by out. out must be a
// non-nil pointer to a struct, slice, or scalar matching v's shape.
//
// Struct targets are decoded via mitchellh/mapstructure against v's
// ToNative() representation, using the `xmlrpc` struct tag in place of
// mapstructure's default `mapstructure` tag. This is why Value carries an
// explicit ToNative(): mapstructure decodes generic maps/slices into Go
// structs, it does not know how to walk a closed sum type directly.
func FromValue(v Value, out interface{}) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("xmlrpc decode: out must be a non-nil pointer, got %T", out)
	}
	return fromValue(v, rv.Elem())
}

func fromValue(v Value, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Kind != KindInt {
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected an integer value"}
		}
		rv.SetInt(int64(v.Int))
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.Kind != KindInt {
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected an integer value"}
		}
		rv.SetUint(uint64(v.Int))
		return nil

	case reflect.Bool:
		if v.Kind != KindBool {
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected a boolean value"}
		}
		rv.SetBool(v.Bool)
		return nil

	case reflect.String:
		if v.Kind != KindString {
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected a string value"}
		}
		rv.SetString(v.String)
		return nil

	case reflect.Float32, reflect.Float64:
		switch v.Kind {
		case KindDouble:
			rv.SetFloat(v.Double)
		case KindInt:
			rv.SetFloat(float64(v.Int))
		default:
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected a double value"}
		}
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if v.Kind != KindBase64 {
				return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected a base64 value"}
			}
			rv.SetBytes(v.Base64)
			return nil
		}
		if v.Kind != KindArray {
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected an array value"}
		}
		out := reflect.MakeSlice(rv.Type(), len(v.Array), len(v.Array))
		for i, elem := range v.Array {
			if err := fromValue(elem, out.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		rv.Set(out)
		return nil

	case reflect.Ptr:
		elem := reflect.New(rv.Type().Elem())
		if err := fromValue(v, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil

	case reflect.Struct:
		if v.Kind != KindStruct {
			return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: "expected a struct value"}
		}
		return decodeStructViaMapstructure(v, rv)

	default:
		return fmt.Errorf("xmlrpc decode: unsupported target kind %s", rv.Kind())
	}
}

// decodeStructViaMapstructure decodes v (a KindStruct Value) into rv, an
// addressable struct, via mapstructure.Decode over v's native
// map[string]interface{} form.
func decodeStructViaMapstructure(v Value, rv reflect.Value) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "xmlrpc",
		Result:           rv.Addr().Interface(),
		WeaklyTypedInput: false,
		ErrorUnused:      false,
		DecodeHook:       rangeCheckHook,
	})
	if err != nil {
		return fmt.Errorf("xmlrpc decode: building mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(v.ToNative()); err != nil {
		return &MapError{Target: rv.Type().String(), Got: v.Describe(), Reason: err.Error()}
	}
	return nil
}

// rangeCheckHook intercepts decode into any target type implementing
// RangeValidator, converting the raw integer itself and rejecting it
// before mapstructure's ordinary numeric conversion would otherwise
// accept any in-range integer value unconditionally.
func rangeCheckHook(from reflect.Value, to reflect.Value) (interface{}, error) {
	if !to.Type().Implements(rangeValidatorType) {
		return from.Interface(), nil
	}

	var n int64
	switch from.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = from.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = int64(from.Uint())
	default:
		return nil, fmt.Errorf("xmlrpc decode: %s expects an integer value, got %s", to.Type(), from.Kind())
	}

	out := reflect.New(to.Type()).Elem()
	out.SetInt(n)
	if !out.Interface().(RangeValidator).ValidXMLRPCValue() {
		return nil, fmt.Errorf("xmlrpc decode: %d is not a valid %s", n, to.Type())
	}
	return out.Interface(), nil
}

var rangeValidatorType = reflect.TypeOf((*RangeValidator)(nil)).Elem()
