// Package gbx implements the binary frame protocol, request/response
// dispatch, and callback classification that turn a single TCP stream to
// a Trackmania dedicated server into a typed async call client and an
// unsolicited event stream.
package gbx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// handshakeBanner is the name the dedicated server sends immediately after
// accepting a connection. Anything else means we connected to something
// that isn't a GBXRemote 2 control port.
const handshakeBanner = "GBXRemote 2"

// responseMask marks a frame handle as belonging to a call response rather
// than an unsolicited callback. Handles are allocated starting just above
// this value (see client.go's handle allocator).
const responseMask uint32 = 0x8000_0000

// ProtocolError reports a fatal transport or protocol violation: a
// malformed frame, an unexpected handshake banner, or an I/O failure. All
// ProtocolErrors are fatal to the connection that produced them.
type ProtocolError struct {
	Stage string
	Err   error
}

func (e *ProtocolError) Error() string { return fmt.Sprintf("gbx protocol (%s): %v", e.Stage, e.Err) }
func (e *ProtocolError) Unwrap() error { return e.Err }

func protoErr(stage string, err error) error {
	return &ProtocolError{Stage: stage, Err: err}
}

// frame is one decoded unit off the wire: a length-prefixed, handle-tagged
// UTF-8 payload. A zero-length frame is a keep-alive and carries no payload.
type frame struct {
	handle  uint32
	payload []byte
}

// isResponse reports whether handle belongs to a call response (bit set)
// as opposed to an unsolicited callback (bit clear).
func (f frame) isResponse() bool {
	return f.handle&responseMask != 0
}

// performHandshake reads the server's name-length-prefixed banner and
// verifies it matches the expected GBXRemote 2 control protocol.
func performHandshake(r io.Reader) error {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return protoErr("handshake length", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])

	nameBuf := make([]byte, n)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return protoErr("handshake banner", err)
	}

	if string(nameBuf) != handshakeBanner {
		return protoErr("handshake banner", fmt.Errorf("got %q, want %q", nameBuf, handshakeBanner))
	}
	return nil
}

// frameReader reads length-prefixed frames off a buffered connection. It
// owns no synchronization: a single goroutine (the transport's read loop)
// is expected to call readFrame in sequence.
type frameReader struct {
	r *bufio.Reader
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{r: bufio.NewReaderSize(r, 64*1024)}
}

// readFrame blocks until a full frame (or a keep-alive) has been read.
// A returned frame with a nil payload is a keep-alive; callers
// should loop and read again rather than treating it as a callback.
func (fr *frameReader) readFrame() (frame, error) {
	var header [8]byte
	if _, err := io.ReadFull(fr.r, header[:]); err != nil {
		return frame{}, protoErr("frame header", err)
	}

	length := binary.LittleEndian.Uint32(header[0:4])
	handle := binary.LittleEndian.Uint32(header[4:8])

	if length == 0 {
		return frame{handle: handle}, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		return frame{}, protoErr("frame payload", err)
	}

	return frame{handle: handle, payload: payload}, nil
}

// encodeFrame serializes handle and payload into the wire's
// {u32 LE length, u32 LE handle, payload} layout.
func encodeFrame(handle uint32, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[4:8], handle)
	copy(buf[8:], payload)
	return buf
}
