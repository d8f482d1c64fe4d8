package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for the GBX RPC transport.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"
	AttrClientPort = "client.port"

	// ========================================================================
	// Frame attributes
	// ========================================================================
	AttrFrameLen    = "gbx.frame.length"
	AttrFrameHandle = "gbx.frame.handle"

	// ========================================================================
	// Call attributes
	// ========================================================================
	AttrCallName     = "gbx.call.name"
	AttrCallHandle   = "gbx.call.handle"
	AttrCallArgCount = "gbx.call.arg_count"
	AttrFaultCode    = "gbx.fault.code"
	AttrFaultString  = "gbx.fault.string"

	// ========================================================================
	// Callback attributes
	// ========================================================================
	AttrCallbackName   = "gbx.callback.name"
	AttrScriptCallback = "gbx.callback.script_name"
	AttrResponseID     = "gbx.callback.response_id"
	AttrPrompted       = "gbx.callback.prompted"

	// ========================================================================
	// Connection attributes
	// ========================================================================
	AttrConnectionID = "gbx.connection.id"
	AttrAuthUser     = "gbx.auth.user"
)

// Span names for transport operations.
const (
	SpanHandshake     = "gbx.handshake"
	SpanCall          = "gbx.call"
	SpanTriggerCall   = "gbx.trigger_call"
	SpanFrameRead     = "gbx.frame.read"
	SpanFrameWrite    = "gbx.frame.write"
	SpanDispatch      = "gbx.dispatch"
	SpanClassify      = "gbx.classify"
	SpanXMLEncode     = "gbx.xml.encode"
	SpanXMLDecode     = "gbx.xml.decode"
)

// ClientIP returns an attribute for client IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// FrameLen returns an attribute for the decoded frame payload length.
func FrameLen(n int) attribute.KeyValue {
	return attribute.Int(AttrFrameLen, n)
}

// FrameHandle returns an attribute for a frame's handle, formatted as hex.
func FrameHandle(handle uint32) attribute.KeyValue {
	return attribute.String(AttrFrameHandle, fmt.Sprintf("%#08x", handle))
}

// CallName returns an attribute for an XML-RPC method name.
func CallName(name string) attribute.KeyValue {
	return attribute.String(AttrCallName, name)
}

// CallHandle returns an attribute for the handle assigned to an outgoing call.
func CallHandle(handle uint32) attribute.KeyValue {
	return attribute.String(AttrCallHandle, fmt.Sprintf("%#08x", handle))
}

// CallArgCount returns an attribute for the number of arguments in a call.
func CallArgCount(n int) attribute.KeyValue {
	return attribute.Int(AttrCallArgCount, n)
}

// FaultCode returns an attribute for a returned fault code.
func FaultCode(code int) attribute.KeyValue {
	return attribute.Int(AttrFaultCode, code)
}

// FaultString returns an attribute for a returned fault string.
func FaultString(s string) attribute.KeyValue {
	return attribute.String(AttrFaultString, s)
}

// CallbackName returns an attribute for the wire method name of a callback.
func CallbackName(name string) attribute.KeyValue {
	return attribute.String(AttrCallbackName, name)
}

// ScriptCallbackName returns an attribute for the inner name of a script callback.
func ScriptCallbackName(name string) attribute.KeyValue {
	return attribute.String(AttrScriptCallback, name)
}

// ResponseID returns an attribute for a script trigger's response id.
func ResponseID(id string) attribute.KeyValue {
	return attribute.String(AttrResponseID, id)
}

// Prompted returns an attribute indicating whether a callback was prompted.
func Prompted(prompted bool) attribute.KeyValue {
	return attribute.Bool(AttrPrompted, prompted)
}

// ConnectionID returns an attribute for a connection identifier.
func ConnectionID(id string) attribute.KeyValue {
	return attribute.String(AttrConnectionID, id)
}

// AuthUser returns an attribute for the authenticated username.
func AuthUser(user string) attribute.KeyValue {
	return attribute.String(AttrAuthUser, user)
}

// StartCallSpan starts a span for a one-shot request/response call.
func StartCallSpan(ctx context.Context, name string, handle uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{CallName(name), CallHandle(handle)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanCall, trace.WithAttributes(allAttrs...))
}

// StartDispatchSpan starts a span for dispatching an inbound frame.
func StartDispatchSpan(ctx context.Context, handle uint32, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{FrameHandle(handle)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanDispatch, trace.WithAttributes(allAttrs...))
}

// StartClassifySpan starts a span for classifying an unsolicited callback.
func StartClassifySpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{CallbackName(name)}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, SpanClassify, trace.WithAttributes(allAttrs...))
}
