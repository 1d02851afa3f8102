// Command runtests runs the end-to-end scenarios from spec.md §8 (S1-S6)
// against the host-side simulation stack (blkio.SimDevice, pmm.Allocator),
// concurrently, and reports which scenarios failed.
//
// Grounded on the teacher's use of golang.org/x/sync/errgroup for fanning
// out independent units of work and collecting the first error (seen
// across the teacher's own test helpers and build tooling); scenarios
// here are independent of each other (each builds its own Kernel), so
// errgroup.Group is a direct fit.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/rvsv32/rvkernel/internal/blkio"
	"github.com/rvsv32/rvkernel/internal/fsfile"
	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/kernel"
	"github.com/rvsv32/rvkernel/internal/pmm"
	"github.com/rvsv32/rvkernel/internal/proc"
)

type scenario struct {
	name string
	run  func() error
}

func main() {
	scenarios := []scenario{
		{"S1-boot-empty-disk", s1BootEmptyDisk},
		{"S2-write-then-read-file", s2WriteThenReadFile},
		{"S3-read-missing-file", s3ReadMissingFile},
		{"S4-round-robin-yield", s4RoundRobinYield},
		{"S5-sector-out-of-range", s5SectorOutOfRange},
		{"S6-exit-removes-from-rotation", s6ExitRemovesFromRotation},
	}

	g, _ := errgroup.WithContext(context.Background())
	results := make([]error, len(scenarios))
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			results[i] = sc.run()
			return nil
		})
	}
	_ = g.Wait()

	failed := false
	for i, sc := range scenarios {
		if results[i] != nil {
			failed = true
			fmt.Printf("FAIL %s: %v\n", sc.name, results[i])
		} else {
			fmt.Printf("ok   %s\n", sc.name)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func newKernel(sectors int) (*kernel.Kernel, *blkio.SimDevice) {
	mem := pmm.New(pmm.Region{
		Base: kconst.Paddr(kconst.KernelBase + kconst.KernelIdentitySize),
		Mem:  make([]byte, 8192*kconst.PageSize),
	})
	disk := make([]byte, sectors*kconst.SectorSize)
	sim := blkio.NewSimDevice(mem, disk)
	k := kernel.Boot(sim, mem, []byte{0xde, 0xad, 0xbe, 0xef})
	return k, sim
}

// s1BootEmptyDisk implements S1: booting against an empty (zeroed) TAR
// disk must still bring up the idle and shell processes and leave the
// scheduler pointed at the shell. The idle process takes slot 0 (pid 1,
// then overridden to 0 by Boot) and the shell takes slot 1, so
// proc.Create's slot+1 rule gives the shell pid 2 (see
// TestCreateAssignsSlotPlusOneAsPID).
func s1BootEmptyDisk() error {
	k, _ := newKernel(64)
	if k.Procs.Current() == nil {
		return fmt.Errorf("no current process after boot")
	}
	if k.Procs.Current().PID != 2 {
		return fmt.Errorf("current pid = %d, want 2 (shell)", k.Procs.Current().PID)
	}
	return nil
}

// s5SectorOutOfRange implements S5: a read past the disk's capacity must
// log (not assert here) and leave buf untouched.
func s5SectorOutOfRange() error {
	k, _ := newKernel(4)
	buf := bytes.Repeat([]byte{0x7a}, kconst.SectorSize)
	sentinel := append([]byte(nil), buf...)

	if err := k.Disk.ReadWriteDisk(buf, 4, false); err == nil {
		return fmt.Errorf("expected an out-of-range error for sector 4 on a 4-sector disk")
	}
	if !bytes.Equal(buf, sentinel) {
		return fmt.Errorf("out-of-range read mutated the caller's buffer")
	}
	return nil
}

// newSeededKernel boots against a disk whose TAR image already contains one
// file, exactly as S2/S3 assume ("file created by TAR on boot"). It exercises
// fs_lookup/fs_flush directly through internal/fsfile rather than through a
// simulated ecall, the same level S5 operates at for internal/blkio.
func newSeededKernel(name string, data []byte) (*kernel.Kernel, *blkio.SimDevice) {
	mem := pmm.New(pmm.Region{
		Base: kconst.Paddr(kconst.KernelBase + kconst.KernelIdentitySize),
		Mem:  make([]byte, 8192*kconst.PageSize),
	})
	image := make([]byte, fsfile.ImageSize)
	writeUstarEntry(image, name, data)
	disk := make([]byte, len(image))
	copy(disk, image)
	sim := blkio.NewSimDevice(mem, disk)
	k := kernel.Boot(sim, mem, []byte{0xde, 0xad, 0xbe, 0xef})
	return k, sim
}

// writeUstarEntry is a minimal, local re-implementation of fsfile's header
// encoding, the same duplication cmd/mkustar uses to avoid an
// import-cycle-motivated exported API on fsfile's unexported header type.
func writeUstarEntry(image []byte, name string, data []byte) {
	h := image[0:512]
	copy(h[0:100], name)
	copy(h[124:135], []byte(fmt.Sprintf("%011o", len(data))))
	h[156] = '0'
	copy(h[257:263], "ustar")

	sum := 0
	for i, b := range h {
		if i >= 148 && i < 156 {
			sum += ' '
			continue
		}
		sum += int(b)
	}
	copy(h[148:154], []byte(fmt.Sprintf("%06o", sum)))
	h[154] = 0
	h[155] = ' '

	copy(image[512:], data)
}

// s2WriteThenReadFile implements S2: a write to a file the boot-time TAR
// image already contains updates its size and persists through a fresh
// fs_init reload; a subsequent read sees the written bytes.
func s2WriteThenReadFile() error {
	k, _ := newSeededKernel("hello.txt", []byte("xxxxx"))

	file, ok := k.Files.Lookup("hello.txt")
	if !ok {
		return fmt.Errorf("expected hello.txt to exist from the boot-time TAR image")
	}
	copy(file.Data[:], "world")
	file.Size = 5
	if err := k.Files.Flush(k.Disk); err != nil {
		return fmt.Errorf("fs_flush: %w", err)
	}

	reloaded, err := fsfile.Load(k.Disk)
	if err != nil {
		return fmt.Errorf("reloading after flush: %w", err)
	}
	got, ok := reloaded.Lookup("hello.txt")
	if !ok {
		return fmt.Errorf("hello.txt missing after reload")
	}
	if got.Size != 5 || !bytes.Equal(got.Data[:5], []byte("world")) {
		return fmt.Errorf("got size=%d data=%q, want size=5 data=\"world\"", got.Size, got.Data[:got.Size])
	}
	return nil
}

// s3ReadMissingFile implements S3: looking up a name absent from the file
// table fails, the fs_lookup miss SYS_READFILE/SYS_WRITEFILE both report as
// a0=-1.
func s3ReadMissingFile() error {
	k, _ := newSeededKernel("hello.txt", []byte("world"))
	if _, ok := k.Files.Lookup("does-not-exist.txt"); ok {
		return fmt.Errorf("expected lookup of a missing file to fail")
	}
	return nil
}

// s4RoundRobinYield implements S4: with two runnable user processes, yield
// alternates between them in pid order.
func s4RoundRobinYield() error {
	mem := pmm.New(pmm.Region{Base: kconst.KernelBase, Mem: make([]byte, 4096*kconst.PageSize)})
	tbl := &proc.Table{}

	idle := tbl.Create(mem, nil)
	idle.PID = 0
	tbl.SetIdle(idle)

	a := tbl.Create(mem, []byte("a"))
	b := tbl.Create(mem, []byte("b"))
	tbl.SetCurrent(a)

	tbl.Yield()
	if tbl.Current() != b {
		return fmt.Errorf("expected yield from A to select B")
	}
	tbl.Yield()
	if tbl.Current() != a {
		return fmt.Errorf("expected yield from B to select A")
	}
	return nil
}

// s6ExitRemovesFromRotation implements S6: SYS_EXIT marks the current
// process EXITED and yield never selects it again.
func s6ExitRemovesFromRotation() error {
	mem := pmm.New(pmm.Region{Base: kconst.KernelBase, Mem: make([]byte, 4096*kconst.PageSize)})
	tbl := &proc.Table{}

	idle := tbl.Create(mem, nil)
	idle.PID = 0
	tbl.SetIdle(idle)

	a := tbl.Create(mem, []byte("a"))
	b := tbl.Create(mem, []byte("b"))
	tbl.SetCurrent(a)

	tbl.Exit()
	if a.State != kconst.ProcExited {
		return fmt.Errorf("expected A to be marked EXITED")
	}
	if tbl.Current() != b {
		return fmt.Errorf("expected exit to yield to B")
	}

	tbl.Yield()
	if tbl.Current() == a {
		return fmt.Errorf("exited process A was selected again")
	}
	return nil
}
