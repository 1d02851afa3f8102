package kernel

import (
	"fmt"

	"github.com/rvsv32/rvkernel/internal/fsfile"
	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/sbi"
	"github.com/rvsv32/rvkernel/internal/trap"
	"github.com/rvsv32/rvkernel/internal/uvaddr"
)

// registerSyscalls builds the syscall table (spec.md §4.6) and installs it
// as the trap handler's dispatch target.
func (k *Kernel) registerSyscalls() {
	h := trap.NewHandler()

	h.Register(kconst.SysPutchar, func(f *trap.Frame) {
		sbi.Putchar(byte(f.A0))
	})

	h.Register(kconst.SysGetchar, func(f *trap.Frame) {
		for {
			ch := sbi.Getchar()
			if ch >= 0 {
				f.A0 = uint32(ch)
				return
			}
			k.Procs.Yield()
		}
	})

	h.Register(kconst.SysReadfile, func(f *trap.Frame) { k.readOrWriteFile(f, false) })
	h.Register(kconst.SysWritefile, func(f *trap.Frame) { k.readOrWriteFile(f, true) })

	h.Register(kconst.SysExit, func(f *trap.Frame) {
		fmt.Printf("process %d exited\n", k.Procs.Current().PID)
		k.Procs.Exit()
	})

	trap.Install(h)
	k.syscalls = h
}

// SyscallCounts reports how many times each syscall number has been
// dispatched since boot, for cmd/sysprof.
func (k *Kernel) SyscallCounts() map[uint32]int64 {
	return k.syscalls.Counts()
}

// readOrWriteFile implements the shared body of SYS_READFILE and
// SYS_WRITEFILE (spec.md §4.6): a0=name pointer, a1=buf pointer, a2=len.
func (k *Kernel) readOrWriteFile(f *trap.Frame, write bool) {
	p := k.Procs.Current()
	name := uvaddr.CString(k.Mem, p.PageTable, kconst.Vaddr(f.A0), fsfile.NameCap)

	file, ok := k.Files.Lookup(name)
	if !ok {
		fmt.Printf("file not found: %s\n", name)
		f.A0 = ^uint32(0) // -1
		return
	}

	length := int(int32(f.A2))
	if length > fsfile.DataCap {
		// Reproduces the source's clamp exactly: `len = file->size`, not
		// `len = sizeof(file->data)`. Almost certainly a bug in the
		// original (see DESIGN.md) but preserved for behavioral fidelity.
		length = file.Size
	}

	if write {
		uvaddr.Read(k.Mem, p.PageTable, kconst.Vaddr(f.A1), file.Data[:length])
		file.Size = length
		if err := k.Files.Flush(k.Disk); err != nil {
			fmt.Printf("fs_flush: %v\n", err)
		}
	} else {
		uvaddr.Write(k.Mem, p.PageTable, kconst.Vaddr(f.A1), file.Data[:length])
	}
	f.A0 = uint32(length)
}
