package gbx

import (
	"context"
	"fmt"

	"github.com/marmos91/gbxremote/internal/logger"
	"github.com/marmos91/gbxremote/internal/telemetry"
	"github.com/marmos91/gbxremote/internal/xmlrpc"
	"github.com/marmos91/gbxremote/pkg/metrics"
)

// msgKind identifies one of the four events the dispatcher goroutine
// processes. This mirrors the source transport's message enum: two
// registration requests from the call client, and two fulfillments from
// the frame reader.
type msgKind int

const (
	msgAwaitResponse msgKind = iota
	msgAwaitCallback
	msgFulfillResponse
	msgFulfillCallback
)

// msg is the single union type flowing over the dispatcher's input channel.
// Exactly the fields relevant to kind are populated.
type msg struct {
	kind msgKind

	// msgAwaitResponse
	handle       uint32
	responseDone chan xmlrpc.Response

	// msgAwaitCallback
	responseID   string
	callbackDone chan struct{}

	// msgFulfillResponse
	response xmlrpc.Response

	// msgFulfillCallback
	call xmlrpc.Call
}

// pendingResponse is a call awaiting its correlated frame.
type pendingResponse struct {
	done chan xmlrpc.Response
}

// pendingTrigger is a trigger-callback await awaiting its correlated
// script callback, keyed by the response id embedded in the original call.
type pendingTrigger struct {
	done chan struct{}
}

// dispatcher is the single goroutine that owns the handle-keyed pending
// call table and the response-id-keyed pending trigger table. Every other
// goroutine communicates with it exclusively through msgIn; no mutex
// guards these maps, because only this goroutine ever touches them.
type dispatcher struct {
	msgIn    chan msg
	cbOut    chan Callback
	errOut   chan error
	metrics  metrics.RPCMetrics
	classify *classifier

	waitingCalls map[uint32]pendingResponse
	waitingCbs   map[string]pendingTrigger
}

func newDispatcher(msgIn chan msg, cbOut chan Callback, errOut chan error, m metrics.RPCMetrics) *dispatcher {
	return &dispatcher{
		msgIn:        msgIn,
		cbOut:        cbOut,
		errOut:       errOut,
		metrics:      m,
		classify:     newClassifier(m),
		waitingCalls: make(map[uint32]pendingResponse),
		waitingCbs:   make(map[string]pendingTrigger),
	}
}

// run processes msgIn until it is closed or a fatal error occurs (a response
// for an unknown handle, a prompted callback for an unknown response id, or
// a classify error), then closes cbOut. It is meant to be the body of exactly one goroutine
// for the lifetime of a connection.
func (d *dispatcher) run(ctx context.Context) {
	defer close(d.cbOut)

	for m := range d.msgIn {
		switch m.kind {
		case msgAwaitResponse:
			d.waitingCalls[m.handle] = pendingResponse{done: m.responseDone}
			d.setPendingGauge()

		case msgAwaitCallback:
			d.waitingCbs[m.responseID] = pendingTrigger{done: m.callbackDone}

		case msgFulfillResponse:
			pending, ok := d.waitingCalls[m.handle]
			if !ok {
				err := protoErr("dispatch", fmt.Errorf("response for unknown handle 0x%x", m.handle))
				logger.ErrorCtx(ctx, "dispatch invariant violation", logger.CallHandle(m.handle), logger.Err(err))
				d.errOut <- err
				return
			}
			delete(d.waitingCalls, m.handle)
			d.setPendingGauge()
			pending.done <- m.response
			close(pending.done)

		case msgFulfillCallback:
			ctx2, span := telemetry.StartClassifySpan(ctx, m.call.Name)
			classified := d.classify.classify(ctx2, m.call)
			span.End()

			if classified.err != nil {
				d.errOut <- classified.err
				return
			}

			switch classified.kind {
			case callbackUnprompted:
				d.cbOut <- classified.callback

			case callbackPrompted:
				trig, ok := d.waitingCbs[classified.responseID]
				if !ok {
					err := protoErr("dispatch", fmt.Errorf("prompted callback for unknown response id %q", classified.responseID))
					logger.ErrorCtx(ctx, "dispatch invariant violation", logger.ResponseID(classified.responseID), logger.Err(err))
					d.errOut <- err
					return
				}
				delete(d.waitingCbs, classified.responseID)
				close(trig.done)
				d.cbOut <- classified.callback

			case callbackDropped:
				// Curated silent allow-list or unknown name; already logged
				// by the classifier.
			}
		}
	}
}

func (d *dispatcher) setPendingGauge() {
	if d.metrics != nil {
		d.metrics.SetPendingCalls(len(d.waitingCalls))
	}
}
