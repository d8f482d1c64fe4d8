package gbx

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestPerformHandshake_Success(t *testing.T) {
	var buf bytes.Buffer
	name := []byte(handshakeBanner)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(name)))
	buf.Write(lenBuf[:])
	buf.Write(name)

	if err := performHandshake(&buf); err != nil {
		t.Fatalf("performHandshake: %v", err)
	}
}

func TestPerformHandshake_WrongBanner(t *testing.T) {
	var buf bytes.Buffer
	name := []byte("GBXRemote 1")
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(name)))
	buf.Write(lenBuf[:])
	buf.Write(name)

	err := performHandshake(&buf)
	if err == nil {
		t.Fatal("expected an error for mismatched banner")
	}
	if _, ok := err.(*ProtocolError); !ok {
		t.Errorf("got %T, want *ProtocolError", err)
	}
}

func TestFrameReader_KeepAlive(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeFrame(0, nil))
	buf.Write(encodeFrame(0x80000001, []byte("hi")))

	fr := newFrameReader(&buf)

	f, err := fr.readFrame()
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if f.payload != nil {
		t.Errorf("expected keep-alive with nil payload, got %v", f.payload)
	}

	f2, err := fr.readFrame()
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if string(f2.payload) != "hi" || !f2.isResponse() {
		t.Errorf("got %+v", f2)
	}
}

func TestFrame_ResponseBitDiscriminator(t *testing.T) {
	respFrame := frame{handle: 0x80000001}
	cbFrame := frame{handle: 0x00000001}

	if !respFrame.isResponse() {
		t.Error("expected response frame to report isResponse")
	}
	if cbFrame.isResponse() {
		t.Error("expected callback frame to report !isResponse")
	}
}

func TestClient_NextHandle_UniqueAndWraps(t *testing.T) {
	cl := &Client{prevHandle: 0xffff_fffe}

	h1 := cl.nextHandle()
	h2 := cl.nextHandle()
	h3 := cl.nextHandle()

	if h1 != 0xffff_ffff {
		t.Errorf("h1 = %#x", h1)
	}
	if h2 != responseMask+1 {
		t.Errorf("h2 = %#x, want wrap to responseMask+1", h2)
	}
	if h3 != responseMask+2 {
		t.Errorf("h3 = %#x", h3)
	}

	for _, h := range []uint32{h1, h2, h3} {
		if h&responseMask == 0 {
			t.Errorf("handle %#x missing response bit", h)
		}
	}
}
