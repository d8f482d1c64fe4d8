package gbx

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/gbxremote/internal/logger"
	"github.com/marmos91/gbxremote/internal/telemetry"
	"github.com/marmos91/gbxremote/internal/xmlrpc"
	"github.com/marmos91/gbxremote/pkg/metrics"
)

// DispatchConfig tunes the timeouts and buffer sizes of a Connection. Zero
// values are replaced with the package defaults in Connect.
type DispatchConfig struct {
	CallTimeout         time.Duration
	TriggerTimeout      time.Duration
	PendingCallCapacity int
	CallbackBuffer      int
}

const (
	defaultCallTimeout    = 30 * time.Second
	defaultTriggerTimeout = 30 * time.Second
	defaultCallbackBuffer = 256
)

func (c DispatchConfig) withDefaults() DispatchConfig {
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.TriggerTimeout <= 0 {
		c.TriggerTimeout = defaultTriggerTimeout
	}
	if c.CallbackBuffer <= 0 {
		c.CallbackBuffer = defaultCallbackBuffer
	}
	return c
}

// TimeoutError reports that a trigger_callback exceeded its configured
// TriggerTimeout. A plain Call that exceeds CallTimeout fails with a
// ProtocolError wrapping the context's error instead.
type TimeoutError struct {
	Method string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("gbx: %s timed out waiting for a response", e.Method)
}

// Client issues XML-RPC calls over a connected transport and correlates
// their responses via the connection's dispatcher. A Client is safe for
// concurrent use by multiple goroutines; it holds no mutable call state of
// its own beyond a handle counter and a writer lock.
type Client struct {
	conn   net.Conn
	writeMu sync.Mutex

	msgOut chan msg
	cfg    DispatchConfig
	m      metrics.RPCMetrics

	handleMu   sync.Mutex
	prevHandle uint32
}

func newClient(conn net.Conn, msgOut chan msg, cfg DispatchConfig, m metrics.RPCMetrics) *Client {
	return &Client{
		conn:       conn,
		msgOut:     msgOut,
		cfg:        cfg,
		m:          m,
		prevHandle: responseMask,
	}
}

// nextHandle allocates the next call handle, wrapping back to responseMask+1
// when the counter reaches the top of the 32-bit range. All handles carry
// the response bit set, matching the wire's response/callback discriminator.
func (cl *Client) nextHandle() uint32 {
	cl.handleMu.Lock()
	defer cl.handleMu.Unlock()

	if cl.prevHandle == 0xffff_ffff {
		cl.prevHandle = responseMask + 1
	} else {
		cl.prevHandle++
	}
	return cl.prevHandle
}

// Call issues call and returns the decoded Response (which may itself carry
// a Fault — that is not an error returned here, but a well-formed result).
// The returned error is non-nil only for fatal transport problems.
func (cl *Client) Call(ctx context.Context, call xmlrpc.Call) (xmlrpc.Response, error) {
	handle := cl.nextHandle()

	ctx, span := telemetry.StartCallSpan(ctx, call.Name, handle, telemetry.CallArgCount(len(call.Args)))
	defer span.End()

	start := time.Now()
	if cl.m != nil {
		cl.m.RecordCallStart(call.Name)
		defer cl.m.RecordCallEnd(call.Name)
	}

	done := make(chan xmlrpc.Response, 1)

	// Register the pending entry with the dispatcher BEFORE writing the
	// frame, so a response cannot race ahead of its own registration.
	cl.msgOut <- msg{kind: msgAwaitResponse, handle: handle, responseDone: done}

	logger.DebugCtx(ctx, "call start", logger.CallName(call.Name), logger.CallHandle(handle))

	if err := cl.send(call, handle); err != nil {
		telemetry.RecordError(ctx, err)
		return xmlrpc.Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, cl.cfg.CallTimeout)
	defer cancel()

	select {
	case resp := <-done:
		dur := time.Since(start)
		faultCode := 0
		if resp.IsFault() {
			faultCode = int(resp.Fault.Code)
		}
		if cl.m != nil {
			cl.m.RecordCall(call.Name, dur, faultCode)
		}
		logger.DebugCtx(ctx, "call done", logger.CallName(call.Name), logger.CallHandle(handle), logger.DurationMs(float64(dur.Microseconds())/1000.0))
		return resp, nil

	case <-ctx.Done():
		if cl.m != nil {
			cl.m.RecordTimeout(call.Name)
		}
		err := protoErr("call", fmt.Errorf("%s: %w", call.Name, ctx.Err()))
		telemetry.RecordError(ctx, err)
		return xmlrpc.Response{}, err
	}
}

// CallTyped issues call, maps a successful response into out, and returns
// the Fault (if any) as an ordinary, non-fatal error.
func (cl *Client) CallTyped(ctx context.Context, call xmlrpc.Call, out interface{}) (*xmlrpc.Fault, error) {
	resp, err := cl.Call(ctx, call)
	if err != nil {
		return nil, err
	}
	if resp.IsFault() {
		return resp.Fault, nil
	}
	if out == nil {
		return nil, nil
	}
	if err := xmlrpc.FromValue(resp.Value, out); err != nil {
		return nil, protoErr("map response", fmt.Errorf("%s: %w", call.Name, err))
	}
	return nil, nil
}

// CallTypedExpect issues call, maps a successful response into out, and
// converts a Fault into a fatal error identifying the call, instead of
// returning it as data the way CallTyped does.
//
// Use this for server-originated operations that are documented to never
// fault: CallTyped is for calls whose Fault is a legitimate, expected
// outcome the caller must branch on, while CallTypedExpect is for calls
// where a Fault arriving at all means this module's assumptions about the
// server are wrong.
func (cl *Client) CallTypedExpect(ctx context.Context, call xmlrpc.Call, out interface{}) error {
	fault, err := cl.CallTyped(ctx, call, out)
	if err != nil {
		return err
	}
	if fault != nil {
		err := protoErr("call", fmt.Errorf("%s: unexpected fault: %w", call.Name, fault))
		telemetry.RecordError(ctx, err)
		return err
	}
	return nil
}

// TriggerCallback bridges a request/response call to the event-channel
// idiom the script API uses: it appends a fresh response id to args, issues
// a TriggerModeScriptEventArray call, and waits for the classifier to
// recognise a later script callback carrying that response id.
//
// The outer call's own response is discarded; the meaningful result arrives
// later as a Callback on the connection's event channel.
func (cl *Client) TriggerCallback(ctx context.Context, method string, args []xmlrpc.Value) error {
	responseID := uuid.NewString()

	cbCtx, span := telemetry.StartCallSpan(ctx, method, 0, telemetry.ResponseID(responseID))
	defer span.End()

	triggerDone := make(chan struct{})
	cl.msgOut <- msg{kind: msgAwaitCallback, responseID: responseID, callbackDone: triggerDone}

	triggerArgs := append(append([]xmlrpc.Value{}, args...), xmlrpc.NewString(responseID))
	call := xmlrpc.Call{
		Name: "TriggerModeScriptEventArray",
		Args: []xmlrpc.Value{xmlrpc.NewString(method), xmlrpc.NewArray(triggerArgs...)},
	}

	if _, err := cl.Call(cbCtx, call); err != nil {
		return err
	}

	timeoutCtx, cancel := context.WithTimeout(cbCtx, cl.cfg.TriggerTimeout)
	defer cancel()

	select {
	case <-triggerDone:
		logger.DebugCtx(cbCtx, "trigger callback fulfilled", logger.CallName(method), logger.ResponseID(responseID))
		return nil
	case <-timeoutCtx.Done():
		if cl.m != nil {
			cl.m.RecordTimeout(method)
		}
		err := &TimeoutError{Method: method}
		telemetry.RecordError(cbCtx, err)
		return protoErr("trigger callback", err)
	}
}

func (cl *Client) send(call xmlrpc.Call, handle uint32) error {
	payload := xmlrpc.EncodeCall(call)
	frameBytes := encodeFrame(handle, payload)

	cl.writeMu.Lock()
	defer cl.writeMu.Unlock()

	if cl.m != nil {
		cl.m.RecordFrameWrite(len(payload))
	}

	if _, err := cl.conn.Write(frameBytes); err != nil {
		return protoErr("write", err)
	}
	return nil
}
