//go:build tamago

package kernel

// The linker script (cmd/kernel/kernel.ld) supplies these as symbols, not
// Go values; //go:linkname binds each to a zero-sized Go variable so the
// rest of the kernel can take its address the same way the source took
// &__free_ram, per spec.md §6's boot layout list. No code reads these
// variables: cmd/kernel binds __free_ram and the shell image through its
// own linksyms.go, and proc.Create builds the identity map from
// kconst.KernelBase.
import _ "unsafe" // for go:linkname

//go:linkname bssStart __bss
//go:linkname bssEnd __bss_end
//go:linkname freeRAMStart __free_ram
//go:linkname freeRAMEnd __free_ram_end
//go:linkname kernelBaseSym __kernel_base

var bssStart, bssEnd byte
var freeRAMStart, freeRAMEnd byte
var kernelBaseSym byte
