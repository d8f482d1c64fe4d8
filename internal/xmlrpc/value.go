// Package xmlrpc implements the XML-RPC value model and wire codec used by
// the dedicated server protocol: <methodCall>/<methodResponse> documents
// built from a small set of typed <value> variants.
package xmlrpc

import "fmt"

// Kind identifies which XML-RPC variant a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindString
	KindDouble
	KindBase64
	KindArray
	KindStruct
)

// Value is an XML-RPC value: exactly one of the typed fields below is
// meaningful, selected by Kind. It is a closed sum type rather than an
// interface so callers can switch on Kind without a type assertion.
type Value struct {
	Kind Kind

	Int    int32
	Bool   bool
	String string
	Double float64
	Base64 []byte
	Array  []Value
	Struct []Member
}

// Member is one name/value pair of a <struct>. Struct holds a slice of
// Members, not a map, so that encoding has a single deterministic order
// to reason about instead of relying on map iteration.
type Member struct {
	Name  string
	Value Value
}

func NewInt(v int32) Value               { return Value{Kind: KindInt, Int: v} }
func NewBool(v bool) Value                { return Value{Kind: KindBool, Bool: v} }
func NewString(v string) Value            { return Value{Kind: KindString, String: v} }
func NewDouble(v float64) Value           { return Value{Kind: KindDouble, Double: v} }
func NewBase64(v []byte) Value            { return Value{Kind: KindBase64, Base64: v} }
func NewArray(vs ...Value) Value          { return Value{Kind: KindArray, Array: vs} }
func NewStruct(members ...Member) Value   { return Value{Kind: KindStruct, Struct: members} }

// Get returns the value of the named struct member and whether it was present.
func (v Value) Get(name string) (Value, bool) {
	if v.Kind != KindStruct {
		return Value{}, false
	}
	for _, m := range v.Struct {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Describe renders a short human-readable label for logging and error messages.
func (v Value) Describe() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.Int)
	case KindBool:
		return fmt.Sprintf("Bool(%t)", v.Bool)
	case KindString:
		return fmt.Sprintf("String(%q)", v.String)
	case KindDouble:
		return fmt.Sprintf("Double(%v)", v.Double)
	case KindBase64:
		return fmt.Sprintf("Base64(%d bytes)", len(v.Base64))
	case KindArray:
		return fmt.Sprintf("Array(%d elems)", len(v.Array))
	case KindStruct:
		return fmt.Sprintf("Struct(%d members)", len(v.Struct))
	default:
		return "Value(?)"
	}
}

// ToNative converts v into a plain Go value built from
// map[string]interface{}, []interface{}, int32, bool, string, float64 and
// []byte, suitable as input to a generic decoder such as mapstructure.
func (v Value) ToNative() interface{} {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindBool:
		return v.Bool
	case KindString:
		return v.String
	case KindDouble:
		return v.Double
	case KindBase64:
		return v.Base64
	case KindArray:
		out := make([]interface{}, len(v.Array))
		for i, elem := range v.Array {
			out[i] = elem.ToNative()
		}
		return out
	case KindStruct:
		out := make(map[string]interface{}, len(v.Struct))
		for _, m := range v.Struct {
			out[m.Name] = m.Value.ToNative()
		}
		return out
	default:
		return nil
	}
}

// Call is an XML-RPC method call (<methodCall>).
type Call struct {
	Name string
	Args []Value
}

// Fault is the error payload of a failed method call (<fault>).
//
// Specific errors should be matched on Msg, since the dedicated server
// often reuses the code -1000 for unrelated failures. When Msg is empty
// the cause has to be inferred from the call that produced it.
type Fault struct {
	Code int32
	Msg  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Msg)
}

// Response is the outcome of a method call: either a single Value or a Fault.
type Response struct {
	Value Value
	Fault *Fault
}

func (r Response) IsFault() bool { return r.Fault != nil }
