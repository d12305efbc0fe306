package net

import (
	"bytes"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/horde/internal/net/packet"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payloads := [][]byte{{1}, []byte("status"), bytes.Repeat([]byte{9}, 1000)}
	for _, p := range payloads {
		if err := WriteFrame(&buf, p); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for i, want := range payloads {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame %d = %v", i, got)
		}
	}
}

func TestFrameRejectsBadLength(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader([]byte{2, 0})); err == nil {
		t.Fatal("expected error for empty frame")
	}
	if _, err := ReadFrame(bytes.NewReader([]byte{10, 0, 1})); err == nil {
		t.Fatal("expected error for short payload")
	}
	if err := WriteFrame(&bytes.Buffer{}, nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestSessionHelloAndQueues(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	sess := NewSession(server, 7, 4, 4, 0, zap.NewNop())
	go sess.Start("horde-test")
	defer sess.Close()

	client.SetDeadline(time.Now().Add(2 * time.Second))
	hello, err := ReadFrame(client)
	if err != nil {
		t.Fatalf("hello: %v", err)
	}
	r := packet.NewReader(hello)
	if r.Opcode() != packet.S_OPCODE_HELLO || r.ReadH() != ProtocolVersion || r.ReadD() != 7 || r.ReadS() != "horde-test" {
		t.Fatalf("hello = %v", hello)
	}

	if err := WriteFrame(client, []byte{packet.C_OPCODE_STATUS}); err != nil {
		t.Fatalf("client write: %v", err)
	}
	select {
	case in := <-sess.InQueue:
		if len(in) != 1 || in[0] != packet.C_OPCODE_STATUS {
			t.Fatalf("in = %v", in)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no inbound packet")
	}

	sess.Send([]byte{packet.S_OPCODE_STATUS, 1})
	sess.FlushOutput()
	out, err := ReadFrame(client)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	if !bytes.Equal(out, []byte{packet.S_OPCODE_STATUS, 1}) {
		t.Fatalf("out = %v", out)
	}
}
