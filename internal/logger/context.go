package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds connection-scoped logging context for the GBX RPC transport.
type LogContext struct {
	TraceID      string    // OpenTelemetry trace ID
	SpanID       string    // OpenTelemetry span ID
	CallName     string    // XML-RPC method name in flight (call or callback)
	ResponseID   string    // Script trigger response id, if this call was prompted
	ClientIP     string    // Remote address of the connected game server
	AuthUser     string    // Username used to authenticate the connection
	ConnectionID string    // Identifier assigned to this TCP connection
	StartTime    time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:      lc.TraceID,
		SpanID:       lc.SpanID,
		CallName:     lc.CallName,
		ResponseID:   lc.ResponseID,
		ClientIP:     lc.ClientIP,
		AuthUser:     lc.AuthUser,
		ConnectionID: lc.ConnectionID,
		StartTime:    lc.StartTime,
	}
}

// WithCallName returns a copy with the call name set
func (lc *LogContext) WithCallName(name string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.CallName = name
	}
	return clone
}

// WithResponseID returns a copy with the response id set
func (lc *LogContext) WithResponseID(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ResponseID = id
	}
	return clone
}

// WithAuth returns a copy with the authenticated username set
func (lc *LogContext) WithAuth(user string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.AuthUser = user
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
