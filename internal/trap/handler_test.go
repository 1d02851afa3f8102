package trap

import (
	"testing"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

func TestDispatchRoutesToRegisteredSyscall(t *testing.T) {
	h := NewHandler()
	called := false
	h.Register(kconst.SysPutchar, func(f *Frame) {
		called = true
		if f.A0 != 'x' {
			t.Fatalf("a0 = %d, want 'x'", f.A0)
		}
	})

	f := &Frame{A0: 'x', A3: kconst.SysPutchar}
	newPC := h.Dispatch(f, kconst.ScauseECall, 0, 0x1000)

	if !called {
		t.Fatalf("expected registered syscall to run")
	}
	if newPC != 0x1004 {
		t.Fatalf("sepc = %#x, want %#x (ecall address + 4)", newPC, 0x1004)
	}
}

func TestDispatchPanicsOnNonEcallTrap(t *testing.T) {
	h := NewHandler()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unexpected trap")
		}
	}()
	h.Dispatch(&Frame{}, 0x7 /* not ScauseECall */, 0, 0x2000)
}

func TestDispatchPanicsOnUnknownSyscall(t *testing.T) {
	h := NewHandler()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unregistered syscall number")
		}
	}()
	h.Dispatch(&Frame{A3: 999}, kconst.ScauseECall, 0, 0x2000)
}
