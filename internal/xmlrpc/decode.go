package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// DecodeError reports a malformed XML-RPC document. Stage identifies which
// parser step failed, for metrics and log correlation.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("xmlrpc decode (%s): %v", e.Stage, e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(stage string, err error) error {
	return &DecodeError{Stage: stage, Err: err}
}

// DecodeCall parses a <methodCall> document into a Call.
func DecodeCall(data []byte) (Call, error) {
	d := newDecoder(data)

	if err := d.expectProcInst(); err != nil {
		return Call{}, err
	}
	if err := d.expectStart("methodCall"); err != nil {
		return Call{}, err
	}
	if err := d.expectStart("methodName"); err != nil {
		return Call{}, err
	}
	name, err := d.readText("methodName")
	if err != nil {
		return Call{}, err
	}

	if err := d.expectStart("params"); err != nil {
		return Call{}, err
	}
	args, err := d.readParams()
	if err != nil {
		return Call{}, err
	}

	if err := d.expectEnd("methodCall"); err != nil {
		return Call{}, err
	}

	return Call{Name: name, Args: args}, nil
}

// DecodeResponse parses a <methodResponse> document into a Response.
func DecodeResponse(data []byte) (Response, error) {
	d := newDecoder(data)

	if err := d.expectProcInst(); err != nil {
		return Response{}, err
	}
	if err := d.expectStart("methodResponse"); err != nil {
		return Response{}, err
	}

	tok, err := d.nextSignificant()
	if err != nil {
		return Response{}, decodeErr("methodResponse", err)
	}

	switch se := tok.(type) {
	case xml.StartElement:
		switch se.Name.Local {
		case "params":
			vals, err := d.readParams()
			if err != nil {
				return Response{}, err
			}
			if err := d.expectEnd("methodResponse"); err != nil {
				return Response{}, err
			}
			if len(vals) == 0 {
				return Response{}, decodeErr("methodResponse", fmt.Errorf("expected single param for methodResponse"))
			}
			return Response{Value: vals[0]}, nil

		case "fault":
			if err := d.expectStart("value"); err != nil {
				return Response{}, err
			}
			v, err := d.readValue()
			if err != nil {
				return Response{}, err
			}
			if v.Kind != KindStruct {
				return Response{}, decodeErr("fault", fmt.Errorf("expected <struct>, got %s", v.Describe()))
			}
			codeVal, ok := v.Get("faultCode")
			if !ok || codeVal.Kind != KindInt {
				return Response{}, decodeErr("fault", fmt.Errorf("missing or invalid faultCode in %s", v.Describe()))
			}
			msgVal, ok := v.Get("faultString")
			if !ok || msgVal.Kind != KindString {
				return Response{}, decodeErr("fault", fmt.Errorf("missing or invalid faultString in %s", v.Describe()))
			}
			if err := d.expectEnd("fault"); err != nil {
				return Response{}, err
			}
			if err := d.expectEnd("methodResponse"); err != nil {
				return Response{}, err
			}
			return Response{Fault: &Fault{Code: codeVal.Int, Msg: msgVal.String}}, nil

		default:
			return Response{}, decodeErr("methodResponse", fmt.Errorf("got <%s>, expected <params> or <fault>", se.Name.Local))
		}
	default:
		return Response{}, decodeErr("methodResponse", fmt.Errorf("got %T, expected <params> or <fault>", tok))
	}
}

type decoder struct {
	dec *xml.Decoder
}

func newDecoder(data []byte) *decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	return &decoder{dec: dec}
}

// nextSignificant returns the next token that is not whitespace-only
// character data, mirroring quick_xml's trim_text(true) behavior.
func (d *decoder) nextSignificant() (xml.Token, error) {
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		if cd, ok := tok.(xml.CharData); ok {
			if len(bytes.TrimSpace(cd)) == 0 {
				continue
			}
		}
		return xml.CopyToken(tok), nil
	}
}

func (d *decoder) expectProcInst() error {
	tok, err := d.nextSignificant()
	if err != nil {
		return decodeErr("prolog", err)
	}
	if _, ok := tok.(xml.ProcInst); !ok {
		return decodeErr("prolog", fmt.Errorf("got %T, expected <?xml ... ?>", tok))
	}
	return nil
}

func (d *decoder) expectStart(name string) error {
	tok, err := d.nextSignificant()
	if err != nil {
		return decodeErr(name, err)
	}
	se, ok := tok.(xml.StartElement)
	if !ok || se.Name.Local != name {
		return decodeErr(name, fmt.Errorf("got %v, expected <%s>", tok, name))
	}
	return nil
}

func (d *decoder) expectEnd(name string) error {
	tok, err := d.nextSignificant()
	if err != nil {
		return decodeErr(name, err)
	}
	ee, ok := tok.(xml.EndElement)
	if !ok || ee.Name.Local != name {
		return decodeErr(name, fmt.Errorf("got %v, expected </%s>", tok, name))
	}
	return nil
}

// readText consumes and concatenates character data until the matching end
// tag for name, then returns the accumulated text.
func (d *decoder) readText(name string) (string, error) {
	var sb strings.Builder
	for {
		tok, err := d.dec.Token()
		if err != nil {
			return "", decodeErr(name, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local != name {
				return "", decodeErr(name, fmt.Errorf("got </%s>, expected </%s>", t.Name.Local, name))
			}
			return sb.String(), nil
		case xml.StartElement:
			return "", decodeErr(name, fmt.Errorf("unexpected nested <%s> while reading text of <%s>", t.Name.Local, name))
		}
	}
}

func (d *decoder) readParams() ([]Value, error) {
	var vals []Value
	for {
		tok, err := d.nextSignificant()
		if err != nil {
			return nil, decodeErr("params", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "param" {
				return nil, decodeErr("params", fmt.Errorf("got <%s>, expected <param>", t.Name.Local))
			}
			if err := d.expectStart("value"); err != nil {
				return nil, err
			}
			v, err := d.readValue()
			if err != nil {
				return nil, err
			}
			if err := d.expectEnd("param"); err != nil {
				return nil, err
			}
			vals = append(vals, v)
		case xml.EndElement:
			if t.Name.Local != "params" {
				return nil, decodeErr("params", fmt.Errorf("got </%s>, expected </params>", t.Name.Local))
			}
			return vals, nil
		default:
			return nil, decodeErr("params", fmt.Errorf("got %T, expected <param> or </params>", tok))
		}
	}
}

// readValue reads the body of a <value> element and its closing tag. The
// caller must have already consumed the opening <value> tag.
func (d *decoder) readValue() (Value, error) {
	tok, err := d.nextSignificant()
	if err != nil {
		return Value{}, decodeErr("value", err)
	}

	se, ok := tok.(xml.StartElement)
	if !ok {
		return Value{}, decodeErr("value", fmt.Errorf("got %T, expected a typed value tag", tok))
	}

	var v Value
	switch se.Name.Local {
	case "i4", "int":
		txt, err := d.readText(se.Name.Local)
		if err != nil {
			return Value{}, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(txt), 10, 32)
		if err != nil {
			return Value{}, decodeErr(se.Name.Local, fmt.Errorf("invalid integer %q: %w", txt, err))
		}
		v = NewInt(int32(n))

	case "double":
		txt, err := d.readText("double")
		if err != nil {
			return Value{}, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(txt), 64)
		if err != nil {
			return Value{}, decodeErr("double", fmt.Errorf("invalid double %q: %w", txt, err))
		}
		v = NewDouble(f)

	case "boolean":
		txt, err := d.readText("boolean")
		if err != nil {
			return Value{}, err
		}
		switch strings.TrimSpace(txt) {
		case "0":
			v = NewBool(false)
		case "1":
			v = NewBool(true)
		default:
			return Value{}, decodeErr("boolean", fmt.Errorf("expected 0 or 1, got %q", txt))
		}

	case "string":
		txt, err := d.readText("string")
		if err != nil {
			return Value{}, err
		}
		v = NewString(txt)

	case "base64":
		txt, err := d.readText("base64")
		if err != nil {
			return Value{}, err
		}
		b, err := decodeBase64(txt)
		if err != nil {
			return Value{}, decodeErr("base64", err)
		}
		v = NewBase64(b)

	case "array":
		arr, err := d.readArray()
		if err != nil {
			return Value{}, err
		}
		v = arr

	case "struct":
		strct, err := d.readStruct()
		if err != nil {
			return Value{}, err
		}
		v = strct

	default:
		return Value{}, decodeErr("value", fmt.Errorf(
			"got <%s>, expected <i4>, <int>, <double>, <boolean>, <string>, <base64>, <array> or <struct>", se.Name.Local))
	}

	if err := d.expectEnd("value"); err != nil {
		return Value{}, err
	}
	return v, nil
}

func (d *decoder) readArray() (Value, error) {
	if err := d.expectStart("data"); err != nil {
		return Value{}, err
	}

	var vals []Value
	for {
		tok, err := d.nextSignificant()
		if err != nil {
			return Value{}, decodeErr("array", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "value" {
				return Value{}, decodeErr("array", fmt.Errorf("got <%s>, expected <value>", t.Name.Local))
			}
			v, err := d.readValue()
			if err != nil {
				return Value{}, err
			}
			vals = append(vals, v)
		case xml.EndElement:
			if t.Name.Local != "data" {
				return Value{}, decodeErr("array", fmt.Errorf("got </%s>, expected </data>", t.Name.Local))
			}
			if err := d.expectEnd("array"); err != nil {
				return Value{}, err
			}
			return Value{Kind: KindArray, Array: vals}, nil
		default:
			return Value{}, decodeErr("array", fmt.Errorf("got %T, expected <value> or </data>", tok))
		}
	}
}

func (d *decoder) readStruct() (Value, error) {
	var members []Member
	for {
		tok, err := d.nextSignificant()
		if err != nil {
			return Value{}, decodeErr("struct", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "member" {
				return Value{}, decodeErr("struct", fmt.Errorf("got <%s>, expected <member>", t.Name.Local))
			}
			if err := d.expectStart("name"); err != nil {
				return Value{}, err
			}
			memName, err := d.readText("name")
			if err != nil {
				return Value{}, err
			}
			if err := d.expectStart("value"); err != nil {
				return Value{}, err
			}
			memVal, err := d.readValue()
			if err != nil {
				return Value{}, err
			}
			if err := d.expectEnd("member"); err != nil {
				return Value{}, err
			}
			members = append(members, Member{Name: memName, Value: memVal})
		case xml.EndElement:
			if t.Name.Local != "struct" {
				return Value{}, decodeErr("struct", fmt.Errorf("got </%s>, expected </struct>", t.Name.Local))
			}
			return Value{Kind: KindStruct, Struct: members}, nil
		default:
			return Value{}, decodeErr("struct", fmt.Errorf("got %T, expected <member> or </struct>", tok))
		}
	}
}
