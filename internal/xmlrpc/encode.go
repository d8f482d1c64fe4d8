package xmlrpc

import (
	"strconv"
	"strings"
)

// EncodeCall composes a <methodCall> document for call.
func EncodeCall(call Call) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	sb.WriteString("<methodCall>")
	sb.WriteString("<methodName>")
	sb.WriteString(call.Name)
	sb.WriteString("</methodName>")
	sb.WriteString("<params>")
	for _, arg := range call.Args {
		sb.WriteString("<param>")
		writeValue(&sb, arg)
		sb.WriteString("</param>")
	}
	sb.WriteString("</params>")
	sb.WriteString("</methodCall>")
	return []byte(sb.String())
}

// EncodeResponse composes a <methodResponse> document for resp. Only used
// by tests and by any server-side half of a connection; the client side of
// this transport only ever decodes responses, never encodes them.
func EncodeResponse(resp Response) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	sb.WriteString("<methodResponse>")
	if resp.IsFault() {
		sb.WriteString("<fault><value>")
		writeValue(&sb, NewStruct(
			Member{Name: "faultCode", Value: NewInt(resp.Fault.Code)},
			Member{Name: "faultString", Value: NewString(resp.Fault.Msg)},
		))
		sb.WriteString("</value></fault>")
	} else {
		sb.WriteString("<params><param>")
		writeValue(&sb, resp.Value)
		sb.WriteString("</param></params>")
	}
	sb.WriteString("</methodResponse>")
	return []byte(sb.String())
}

func writeValue(sb *strings.Builder, v Value) {
	sb.WriteString("<value>")
	switch v.Kind {
	case KindInt:
		sb.WriteString("<i4>")
		sb.WriteString(strconv.FormatInt(int64(v.Int), 10))
		sb.WriteString("</i4>")
	case KindDouble:
		sb.WriteString("<double>")
		sb.WriteString(strconv.FormatFloat(v.Double, 'g', -1, 64))
		sb.WriteString("</double>")
	case KindBool:
		sb.WriteString("<boolean>")
		if v.Bool {
			sb.WriteString("1")
		} else {
			sb.WriteString("0")
		}
		sb.WriteString("</boolean>")
	case KindString:
		sb.WriteString("<string>")
		sb.WriteString(v.String)
		sb.WriteString("</string>")
	case KindBase64:
		// Encoded as <base64>, matched by the decoder's <base64> case.
		// The reference implementation this package is ported from writes
		// base64 payloads inside a <string> tag while reading only
		// <base64> as binary; this transport keeps the tag and the Kind
		// consistent on both read and write
		// so that a round trip through this package never silently
		// reinterprets binary data as text.
		sb.WriteString("<base64>")
		sb.WriteString(encodeBase64(v.Base64))
		sb.WriteString("</base64>")
	case KindArray:
		sb.WriteString("<array><data>")
		for _, elem := range v.Array {
			writeValue(sb, elem)
		}
		sb.WriteString("</data></array>")
	case KindStruct:
		sb.WriteString("<struct>")
		for _, m := range v.Struct {
			sb.WriteString("<member><name>")
			sb.WriteString(m.Name)
			sb.WriteString("</name>")
			writeValue(sb, m.Value)
			sb.WriteString("</member>")
		}
		sb.WriteString("</struct>")
	}
	sb.WriteString("</value>")
}
