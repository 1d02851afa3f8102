package trap

import (
	"fmt"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

// SyscallFunc implements one syscall number: read arguments from f's a0-a2,
// write the result into f.A0.
type SyscallFunc func(f *Frame)

// Handler is the data-driven syscall table handle_syscall's switch
// statement turns into: a map from syscall number (a3) to handler,
// populated once at boot (spec.md §4.6).
type Handler struct {
	syscalls map[uint32]SyscallFunc
	counts   map[uint32]int64
}

// NewHandler returns an empty Handler; callers Register every syscall
// number spec.md §4.6 lists before installing it via Install.
func NewHandler() *Handler {
	return &Handler{syscalls: make(map[uint32]SyscallFunc), counts: make(map[uint32]int64)}
}

// Counts returns how many times each syscall number has been dispatched,
// for cmd/sysprof to turn into a pprof profile.
func (h *Handler) Counts() map[uint32]int64 {
	out := make(map[uint32]int64, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// Register binds a syscall number to its implementation. Registering the
// same number twice replaces the previous binding.
func (h *Handler) Register(num uint32, fn SyscallFunc) {
	h.syscalls[num] = fn
}

// Dispatch implements handle_trap (spec.md §4.6): a non-ecall scause PANICs
// with the raw CSR values (no unexpected trap is recovered); an ecall with
// no registered handler for f.A3 also PANICs, matching the source's
// `default: PANIC("unexpected syscall")`. On success it returns sepc
// advanced by 4, to skip the ecall instruction that trapped.
func (h *Handler) Dispatch(f *Frame, scause, stval, sepc uint32) uint32 {
	if scause != kconst.ScauseECall {
		panic(fmt.Sprintf("trap: unexpected trap scause=%#x stval=%#x sepc=%#x", scause, stval, sepc))
	}
	fn, ok := h.syscalls[f.A3]
	if !ok {
		panic(fmt.Sprintf("trap: unexpected syscall a3=%#x", f.A3))
	}
	h.counts[f.A3]++
	fn(f)
	return sepc + 4
}
