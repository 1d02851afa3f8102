package trap

// active is the Handler kernelEntry's assembly dispatches into. A
// package-level singleton because the trap vector is a bare function
// symbol with no way to close over state; Install is called exactly once,
// during kernel.Boot, after every syscall has been registered.
var active *Handler

// Install registers h as the trap dispatch target.
func Install(h *Handler) {
	active = h
}

// goHandleTrap is kernelEntry's one Go-level call: scause/stval/sepc have
// already been read into registers by the assembly leaf before the call.
// It returns the new sepc, which the assembly writes back before sret.
//
//go:noinline
func goHandleTrap(f *Frame, scause, stval, sepc uint32) uint32 {
	if active == nil {
		panic("trap: goHandleTrap called before Install")
	}
	return active.Dispatch(f, scause, stval, sepc)
}
