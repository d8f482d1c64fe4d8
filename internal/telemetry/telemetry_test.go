package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "gbxremote", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, ClientIP("192.168.1.1"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("ClientIP", func(t *testing.T) {
		attr := ClientIP("192.168.1.100")
		assert.Equal(t, AttrClientIP, string(attr.Key))
		assert.Equal(t, "192.168.1.100", attr.Value.AsString())
	})

	t.Run("ClientAddr", func(t *testing.T) {
		attr := ClientAddr("192.168.1.100:12345")
		assert.Equal(t, AttrClientAddr, string(attr.Key))
		assert.Equal(t, "192.168.1.100:12345", attr.Value.AsString())
	})

	t.Run("FrameLen", func(t *testing.T) {
		attr := FrameLen(128)
		assert.Equal(t, AttrFrameLen, string(attr.Key))
		assert.Equal(t, int64(128), attr.Value.AsInt64())
	})

	t.Run("FrameHandle", func(t *testing.T) {
		attr := FrameHandle(0x80000042)
		assert.Equal(t, AttrFrameHandle, string(attr.Key))
		assert.Equal(t, "0x80000042", attr.Value.AsString())
	})

	t.Run("CallName", func(t *testing.T) {
		attr := CallName("GetVersion")
		assert.Equal(t, AttrCallName, string(attr.Key))
		assert.Equal(t, "GetVersion", attr.Value.AsString())
	})

	t.Run("CallHandle", func(t *testing.T) {
		attr := CallHandle(0x00000042)
		assert.Equal(t, AttrCallHandle, string(attr.Key))
		assert.Equal(t, "0x00000042", attr.Value.AsString())
	})

	t.Run("FaultCode", func(t *testing.T) {
		attr := FaultCode(-1000)
		assert.Equal(t, AttrFaultCode, string(attr.Key))
		assert.Equal(t, int64(-1000), attr.Value.AsInt64())
	})

	t.Run("CallbackName", func(t *testing.T) {
		attr := CallbackName("ManiaPlanet.PlayerChat")
		assert.Equal(t, AttrCallbackName, string(attr.Key))
		assert.Equal(t, "ManiaPlanet.PlayerChat", attr.Value.AsString())
	})

	t.Run("ScriptCallbackName", func(t *testing.T) {
		attr := ScriptCallbackName("Trackmania.Scores")
		assert.Equal(t, AttrScriptCallback, string(attr.Key))
		assert.Equal(t, "Trackmania.Scores", attr.Value.AsString())
	})

	t.Run("ResponseID", func(t *testing.T) {
		attr := ResponseID("abc-123")
		assert.Equal(t, AttrResponseID, string(attr.Key))
		assert.Equal(t, "abc-123", attr.Value.AsString())
	})

	t.Run("Prompted", func(t *testing.T) {
		attr := Prompted(true)
		assert.Equal(t, AttrPrompted, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})
}

func TestStartCallSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartCallSpan(ctx, "GetVersion", 1)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartCallSpan(ctx, "ChatSendServerMessage", 2, CallArgCount(1))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartDispatchSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartDispatchSpan(ctx, 0x80000001)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartClassifySpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartClassifySpan(ctx, "ManiaPlanet.PlayerChat")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	newCtx2, span2 := StartClassifySpan(ctx, "ManiaPlanet.ModeScriptCallbackArray", ScriptCallbackName("Trackmania.Scores"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
