package packet

import (
	"testing"

	"go.uber.org/zap"
)

func TestWriterReaderFields(t *testing.T) {
	w := NewWriterWithOpcode(S_OPCODE_STATUS)
	w.WriteC(7)
	w.WriteH(513)
	w.WriteD(-42)
	w.WriteF(1.25)
	w.WriteBool(true)
	w.WriteS("wave\x00 ten")
	w.WriteS("")

	r := NewReader(w.Bytes())
	if r.Opcode() != S_OPCODE_STATUS {
		t.Fatalf("opcode = %d", r.Opcode())
	}
	if v := r.ReadC(); v != 7 {
		t.Errorf("C = %d", v)
	}
	if v := r.ReadH(); v != 513 {
		t.Errorf("H = %d", v)
	}
	if v := r.ReadD(); v != -42 {
		t.Errorf("D = %d", v)
	}
	if v := r.ReadF(); v != 1.25 {
		t.Errorf("F = %v", v)
	}
	if v := r.ReadC(); v != 1 {
		t.Errorf("bool = %d", v)
	}
	if v := r.ReadS(); v != "wave ten" {
		t.Errorf("S = %q", v)
	}
	if v := r.ReadS(); v != "" {
		t.Errorf("empty S = %q", v)
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining = %d", r.Remaining())
	}
	// Past the end: zero values, no panic.
	if r.ReadD() != 0 || r.ReadF() != 0 || r.ReadS() != "" {
		t.Errorf("reads past end returned data")
	}
}

func TestRegistryStateGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	calls := 0
	reg.Register(C_OPCODE_START, []SessionState{StateAuthenticated}, func(sess any, r *Reader) {
		calls++
	})

	if err := reg.Dispatch(nil, StateConnected, []byte{C_OPCODE_START}); err == nil {
		t.Fatal("expected state error")
	}
	if err := reg.Dispatch(nil, StateAuthenticated, []byte{C_OPCODE_START}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d", calls)
	}
	if err := reg.Dispatch(nil, StateConnected, []byte{250}); err != nil {
		t.Fatalf("unknown opcode: %v", err)
	}
	if err := reg.Dispatch(nil, StateConnected, nil); err == nil {
		t.Fatal("expected empty packet error")
	}
}

func TestRegistryRecoversPanics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(C_OPCODE_STATUS, []SessionState{StateConnected}, func(sess any, r *Reader) {
		_ = sess.(*int) // nil interface: panics
	})
	if err := reg.Dispatch(nil, StateConnected, []byte{C_OPCODE_STATUS}); err == nil {
		t.Fatal("expected panic to surface as error")
	}
}
