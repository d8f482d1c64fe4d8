// Package metrics defines observability interfaces for the GBX RPC transport.
//
// Implementations are optional: a nil RPCMetrics disables collection with
// zero overhead, matching the pattern used throughout the dispatcher and
// call client.
package metrics

import "time"

// RPCMetrics provides observability for the frame reader, dispatcher, call
// client, and callback classifier.
//
// Example usage:
//
//	m := prometheus.NewRPCMetrics()
//	conn, err := gbx.Connect(ctx, addr, cfg, m)
//
//	// Without metrics (zero overhead)
//	conn, err := gbx.Connect(ctx, addr, cfg, nil)
type RPCMetrics interface {
	// RecordCall records a completed call with its method name, duration,
	// and outcome. faultCode is 0 for a successful call.
	RecordCall(method string, duration time.Duration, faultCode int)

	// RecordCallStart increments the in-flight call gauge.
	RecordCallStart(method string)

	// RecordCallEnd decrements the in-flight call gauge.
	RecordCallEnd(method string)

	// RecordCallback records a dispatched regular callback by its wire method name.
	RecordCallback(method string)

	// RecordScriptCallback records a dispatched script callback by its inner name.
	RecordScriptCallback(name string, prompted bool)

	// RecordFrameRead records a decoded inbound frame's payload size.
	RecordFrameRead(bytes int)

	// RecordFrameWrite records an encoded outbound frame's payload size.
	RecordFrameWrite(bytes int)

	// SetPendingCalls updates the current size of the handle-keyed pending call table.
	SetPendingCalls(count int)

	// RecordTimeout records a call or trigger callback that exceeded its deadline.
	RecordTimeout(method string)

	// RecordDecodeError records a frame or value decode failure.
	RecordDecodeError(stage string)

	// RecordConnectionOpened increments the accepted connection counter.
	RecordConnectionOpened()

	// RecordConnectionClosed increments the closed connection counter, tagged with the closure reason.
	RecordConnectionClosed(reason string)
}
