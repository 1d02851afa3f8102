//go:build tamago

package kernel

import "github.com/rvsv32/rvkernel/internal/trap"

// installTrapVector writes stvec to trap.KernelEntry's address, implemented
// in trapvec_tamago.s for the same reason proc's userEntryAddr is: Go has
// no portable address-of-function syntax.
func installTrapVector() {
	setSTVEC(kernelEntryAddr())
}

func setSTVEC(addr uint32)
func kernelEntryAddr() uint32

var _ = trap.KernelEntry // referenced so the linker keeps the symbol live
