//go:build !tamago

package proc

// Host-side stand-ins for the assembly leaves in switch_tamago.s. Tests
// exercise Create's bookkeeping and Yield's pickNext/pid-selection rule,
// never an actual sret into user_entry or a real register-level context
// switch — there is no hart to switch on the host, so these are no-ops
// rather than simulations of register transfer.

// switchContext would save/restore callee-saved registers and swap SP; on
// the host nothing is actually executing in the switched-from process, so
// there is nothing to save.
func switchContext(prevSP, nextSP *uint32) {}

// userEntry is never invoked on the host; present only so code referencing
// it by name type-checks identically under both build tags.
func userEntry() {}

// userEntryAddr returns a recognizable sentinel instead of a real text
// address, since there is no userEntry symbol to jump to on the host.
func userEntryAddr() uint32 { return 0xFFFFFFFF }

func installAddrSpace(satp uint32) {}

func setScratch(value uint32) {}

// panicIfRescheduled is a no-op on the host: switchContext above never
// actually transfers control, so Yield always returns here, and that is
// expected rather than a violated invariant.
func panicIfRescheduled(pid int) {}
