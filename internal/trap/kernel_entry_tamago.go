//go:build tamago

package trap

// KernelEntry is the trap vector: install its address into stvec at boot
// (kernel.Boot). Implemented in kernel_entry_tamago.s.
func KernelEntry()
