// Package diag provides best-effort disassembly of the faulting
// instruction for an unexpected-trap PANIC (spec.md §4.6: "PANIC with the
// register values; no unexpected traps are currently recovered"). Printing
// the decoded instruction alongside scause/stval/sepc turns "something
// faulted at 0x80201234" into something a developer can act on without
// reaching for objdump by hand.
//
// Grounded on the teacher's use of golang.org/x/arch's disassemblers for
// introspecting compiled code (misc/depgraph's neighbors, pprof's own
// dependency on x/arch for profile symbolization); riscv64asm is the
// member of that family for this kernel's target architecture.
package diag

import (
	"fmt"

	"golang.org/x/arch/riscv64/riscv64asm"
)

// FaultReport is the decoded description of an unexpected trap, formatted
// for the PANIC log line.
type FaultReport struct {
	Scause, Stval, Sepc uint32
	Instruction         string
}

// Decode disassembles the 4 bytes at the fault PC (little-endian, as
// loaded from the faulting process's code page by the caller) and bundles
// it with the raw trap CSRs. If the bytes don't decode to a valid RV64
// instruction — RV32C compressed encodings in particular aren't modeled by
// riscv64asm — Instruction reports that instead of panicking a second time
// inside the panic handler.
func Decode(scause, stval, sepc uint32, code []byte) FaultReport {
	r := FaultReport{Scause: scause, Stval: stval, Sepc: sepc}
	inst, err := riscv64asm.Decode(code)
	if err != nil {
		r.Instruction = fmt.Sprintf("<undecodable: %v>", err)
		return r
	}
	r.Instruction = inst.String()
	return r
}

// String formats the report as a single log line. No kernel code calls
// it: trap.Handler.Dispatch panics with the raw CSR values only.
func (r FaultReport) String() string {
	return fmt.Sprintf("scause=%#x stval=%#x sepc=%#x instruction=%q",
		r.Scause, r.Stval, r.Sepc, r.Instruction)
}
