// Package kernel wires the boot sequence (C7): install the trap vector,
// bring up the virtio-blk driver and file table, run a disk smoke-test
// read/write, create the idle and shell processes, and yield into the
// shell for the first time. Nothing in this package zeroes BSS.
//
// Grounded on the teacher's main.go-style top-level wiring (cmd/fs/main.go,
// cmd/litc/...), which also assembles otherwise-independent subsystems
// into one struct at a single call site rather than scattering global
// `var`s across packages — a pattern carried over from the source's own
// kernel_main but expressed as an explicit Kernel value instead of package
// globals.
package kernel

import (
	"fmt"

	"github.com/rvsv32/rvkernel/internal/blkio"
	"github.com/rvsv32/rvkernel/internal/fsfile"
	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/proc"
	"github.com/rvsv32/rvkernel/internal/trap"
)

// Memory is the subset of pmm.Allocator the kernel package threads through
// to blkio.Init, proc.Create and uvaddr; named locally so this package
// doesn't need to import pmm just to restate the same four methods.
type Memory interface {
	AllocPage() kconst.Paddr
	Page(pa kconst.Paddr) []byte
	AllocPages(n int) kconst.Paddr
	Slice(pa kconst.Paddr, length int) []byte
}

// Kernel holds every subsystem kernel_main wires together.
type Kernel struct {
	Mem   Memory
	Disk  *blkio.Driver
	Files *fsfile.Table
	Procs *proc.Table

	syscalls *trap.Handler
}

// Boot implements kernel_main (spec.md §2, §4.7 data flow): bring up the
// disk and file table, run the boot-time disk smoke test, create the idle
// and shell processes, and yield to the shell for the first time. Disk
// errors during boot are logged and do not halt: a failed file-table load
// leaves an empty table. mmio is
// the virtio-blk register window; mem is the free-RAM bump allocator;
// shellImage is the embedded user binary (the source's
// _binary_shell_bin_start/size, passed in here instead of linked in, since
// Go has no equivalent of an objcopy-embedded blob without a build step
// outside this package's scope — see cmd/kernel).
func Boot(mmio blkio.MMIO, mem Memory, shellImage []byte) *Kernel {
	installTrapVector()

	k := &Kernel{Mem: mem, Procs: &proc.Table{}}
	k.Disk = blkio.Init(mmio, mem)
	fmt.Printf("virtio-blk: capacity is %d bytes\n", k.Disk.Capacity)

	files, err := fsfile.Load(k.Disk)
	if err != nil {
		fmt.Printf("fs_init: %v\n", err)
		files = &fsfile.Table{}
	}
	k.Files = files

	buf := make([]byte, kconst.SectorSize)
	if err := k.Disk.ReadWriteDisk(buf, 0, false); err != nil {
		fmt.Printf("read_write_disk: %v\n", err)
	}
	fmt.Printf("first sector: %s\n", cstringOf(buf))

	clear(buf)
	copy(buf, "hello from kernel!\n")
	if err := k.Disk.ReadWriteDisk(buf, 0, true); err != nil {
		fmt.Printf("read_write_disk: %v\n", err)
	}

	idle := k.Procs.Create(mem, nil)
	idle.PID = 0 // create_process always assigns slot+1; the idle process is the one exception.
	k.Procs.SetIdle(idle)
	k.Procs.SetCurrent(idle)

	k.Procs.Create(mem, shellImage)

	k.registerSyscalls()
	k.Procs.Yield()
	return k
}

func cstringOf(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
