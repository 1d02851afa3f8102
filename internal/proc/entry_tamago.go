//go:build tamago

package proc

import "fmt"

// switchContext, userEntry, userEntryAddr, installAddrSpace and setScratch
// are implemented in switch_tamago.s — the architecture-touching leaves
// spec.md §9 calls out as unavoidable assembly.
func switchContext(prevSP, nextSP *uint32)
func userEntry()
func userEntryAddr() uint32
func installAddrSpace(satp uint32)
func setScratch(value uint32)

// panicIfRescheduled backs Exit's invariant on real hardware: switchContext
// really does transfer control away, so reaching this line means every
// slot including the one just exited was unrunnable, which should be
// impossible while the idle process exists.
func panicIfRescheduled(pid int) {
	panic(fmt.Sprintf("proc: exited process pid=%d was rescheduled", pid))
}
