package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the GBX RPC transport.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Connection
	// ========================================================================
	KeyConnectionID = "connection_id" // Identifier assigned to a TCP connection
	KeyClientIP     = "client_ip"     // Remote address of the connected game server
	KeyAuthUser     = "auth_user"     // Username used to authenticate

	// ========================================================================
	// Frame (wire-level)
	// ========================================================================
	KeyFrameLen    = "frame_len"    // Decoded frame payload length in bytes
	KeyFrameHandle = "frame_handle" // Raw 32-bit handle field from the frame header

	// ========================================================================
	// Call / Response
	// ========================================================================
	KeyCallName   = "call_name"   // XML-RPC method name of an outgoing call
	KeyCallHandle = "call_handle" // Handle assigned to a pending call
	KeyArgCount   = "arg_count"   // Number of encoded call arguments
	KeyFaultCode  = "fault_code"  // Fault code returned by the server
	KeyFaultMsg   = "fault_msg"   // Fault string returned by the server

	// ========================================================================
	// Callback
	// ========================================================================
	KeyCallbackName = "callback_name" // Wire method name of an unsolicited callback
	KeyScriptName   = "script_name"   // Inner name of a ManiaPlanet.ModeScriptCallbackArray callback
	KeyResponseID   = "response_id"   // Script trigger response id correlating a callback to a call

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ConnectionID returns a slog.Attr for a connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// ClientIP returns a slog.Attr for the remote address of a connection.
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// AuthUser returns a slog.Attr for the authenticated username.
func AuthUser(user string) slog.Attr {
	return slog.String(KeyAuthUser, user)
}

// FrameLen returns a slog.Attr for a decoded frame's payload length.
func FrameLen(n int) slog.Attr {
	return slog.Int(KeyFrameLen, n)
}

// FrameHandle returns a slog.Attr for a frame's raw handle field, in hex.
func FrameHandle(handle uint32) slog.Attr {
	return slog.String(KeyFrameHandle, fmt.Sprintf("%#08x", handle))
}

// CallName returns a slog.Attr for an XML-RPC method name.
func CallName(name string) slog.Attr {
	return slog.String(KeyCallName, name)
}

// CallHandle returns a slog.Attr for the handle assigned to a pending call.
func CallHandle(handle uint32) slog.Attr {
	return slog.String(KeyCallHandle, fmt.Sprintf("%#08x", handle))
}

// ArgCount returns a slog.Attr for the number of call arguments.
func ArgCount(n int) slog.Attr {
	return slog.Int(KeyArgCount, n)
}

// FaultCode returns a slog.Attr for a fault code.
func FaultCode(code int) slog.Attr {
	return slog.Int(KeyFaultCode, code)
}

// FaultMsg returns a slog.Attr for a fault message.
func FaultMsg(msg string) slog.Attr {
	return slog.String(KeyFaultMsg, msg)
}

// CallbackName returns a slog.Attr for the wire method name of a callback.
func CallbackName(name string) slog.Attr {
	return slog.String(KeyCallbackName, name)
}

// ScriptName returns a slog.Attr for the inner name of a script callback.
func ScriptName(name string) slog.Attr {
	return slog.String(KeyScriptName, name)
}

// ResponseID returns a slog.Attr for a script trigger response id.
func ResponseID(id string) slog.Attr {
	return slog.String(KeyResponseID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
