//go:build tamago

// Command kernel is the freestanding entry point: it links against the
// linker script in this directory and calls kernel.Boot with the real
// virtio-blk MMIO window and free-RAM region; it does not zero BSS
// itself. It never returns —
// Boot's first yield transfers control to the shell process, and the
// kernel's only path back to Go code is through a trap.
//
// Build with GOOS=tamago (see TamaGo's own cmd/* conventions in
// other_examples) targeting riscv; this file and everything it pulls in
// under the tamago build tag assume that environment and are not meant to
// build for a hosted GOOS.
package main

import (
	"unsafe"

	"github.com/rvsv32/rvkernel/internal/blkio"
	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/kernel"
	"github.com/rvsv32/rvkernel/internal/pmm"
)

// freeRAMBytes is out of scope to size precisely without the real linker
// symbols resolved (boot stack setup, per spec.md §1, is an external
// collaborator); 16 MiB is a conservative stand-in matching the source's
// QEMU virt machine RAM allocation.
const freeRAMBytes = 16 * 1024 * 1024

func main() {
	mem := pmm.New(pmm.Region{
		Base: kconst.Paddr(uintptr(unsafe.Pointer(&freeRAMStart))),
		Mem:  unsafe.Slice((*byte)(unsafe.Pointer(&freeRAMStart)), freeRAMBytes),
	})

	mmio := mmioWindow(kconst.VirtioBlkPaddr)
	shell := unsafe.Slice((*byte)(unsafe.Pointer(&shellBinStart)), int(uintptr(unsafe.Pointer(&shellBinSize))))

	kernel.Boot(mmio, mem, shell)

	// Boot's final Yield never returns to here on a correctly functioning
	// kernel; if it does, there is nothing left to do but halt.
	select {}
}

// mmioWindow returns an blkio.MMIO reading/writing the real device
// registers at base via volatile 32/64-bit loads and stores.
func mmioWindow(base uint32) blkio.MMIO {
	return realMMIO(base)
}
