package gbx

import (
	"context"
	"net"

	"github.com/marmos91/gbxremote/internal/logger"
	"github.com/marmos91/gbxremote/internal/xmlrpc"
	"github.com/marmos91/gbxremote/pkg/metrics"
)

// Connection is one live session against a dedicated server's control
// port: a Client for issuing calls, and a Callbacks channel carrying
// classified unsolicited events. Fatal transport or protocol errors are
// delivered on Errors, after which the connection is no longer usable.
// A fatal error found by the dispatcher also closes Callbacks once it has
// been sent; a fatal error from the frame reader leaves Callbacks open.
// Both goroutines can report an error, and Errors buffers only one.
type Connection struct {
	Client    *Client
	Callbacks <-chan Callback
	Errors    <-chan error

	conn net.Conn
}

// Connect dials addr, performs the GBXRemote 2 handshake, and spawns the
// connection's reader and dispatcher goroutines. The caller owns the
// returned Connection's lifetime and must call Close when done.
func Connect(ctx context.Context, addr string, cfg DispatchConfig, m metrics.RPCMetrics) (*Connection, error) {
	cfg = cfg.withDefaults()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, protoErr("dial", err)
	}

	if err := performHandshake(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if m != nil {
		m.RecordConnectionOpened()
	}

	msgOut := make(chan msg, 16)
	cbOut := make(chan Callback, cfg.CallbackBuffer)
	errOut := make(chan error, 1)

	client := newClient(conn, msgOut, cfg, m)
	disp := newDispatcher(msgOut, cbOut, errOut, m)

	go disp.run(ctx)
	go readLoop(ctx, conn, msgOut, errOut, m)

	return &Connection{
		Client:    client,
		Callbacks: cbOut,
		Errors:    errOut,
		conn:      conn,
	}, nil
}

// Close tears down the underlying TCP connection. The reader goroutine's
// subsequent read error is delivered on Errors; callers that are shutting
// the connection down intentionally should stop reading from Errors first
// or tolerate one final error value.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// readLoop is the connection's single blocking-read goroutine. It decodes
// frames one at a time and forwards them to the dispatcher as either a
// fulfilled response or a fulfilled callback, based on the handle's
// response bit. Any decode or I/O failure is fatal and reported once on
// errOut before the goroutine exits.
func readLoop(ctx context.Context, conn net.Conn, msgOut chan msg, errOut chan error, m metrics.RPCMetrics) {
	fr := newFrameReader(conn)

	for {
		f, err := fr.readFrame()
		if err != nil {
			errOut <- err
			return
		}

		if f.payload == nil {
			continue // keep-alive
		}

		if m != nil {
			m.RecordFrameRead(len(f.payload))
		}

		if f.isResponse() {
			resp, err := xmlrpc.DecodeResponse(f.payload)
			if err != nil {
				if m != nil {
					m.RecordDecodeError("response")
				}
				logger.ErrorCtx(ctx, "failed to decode response frame", logger.FrameHandle(f.handle), logger.Err(err))
				errOut <- err
				return
			}
			msgOut <- msg{kind: msgFulfillResponse, handle: f.handle, response: resp}
			continue
		}

		call, err := xmlrpc.DecodeCall(f.payload)
		if err != nil {
			if m != nil {
				m.RecordDecodeError("callback")
			}
			logger.ErrorCtx(ctx, "failed to decode callback frame", logger.FrameHandle(f.handle), logger.Err(err))
			errOut <- err
			return
		}
		msgOut <- msg{kind: msgFulfillCallback, call: call}
	}
}
