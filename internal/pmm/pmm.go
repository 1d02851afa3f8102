// Package pmm implements the physical page allocator (C1): a bump allocator
// over the region bounded by the linker-provided __free_ram/__free_ram_end
// symbols.
//
// Grounded on the teacher's mem.Physmem_t, which also manages a flat region
// of physical memory and hands out pages via an index cursor; simplified
// here because this kernel never frees a page (Physmem_t's free list and
// refcounts have no analogue, since processes never release resources).
package pmm

import (
	"fmt"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

// Region is the byte-addressable view of physical RAM the allocator bumps
// through, anchored at Base. On the real target Base is __free_ram and the
// slice is backed by an unsafe.Pointer view of that range; in tests it is an
// ordinary make([]byte, n) with Base set to whatever fictitious address the
// test wants to exercise.
type Region struct {
	Base kconst.Paddr
	Mem  []byte
}

// Allocator is a bump allocator: it never reclaims a page once handed out,
// matching the source's "processes never release resources" policy.
type Allocator struct {
	region Region
	cursor int
}

// New creates an allocator over region. region.Mem's length must be a
// multiple of kconst.PageSize; region.Base must be page-aligned (true of
// __free_ram by construction of the linker script).
func New(region Region) *Allocator {
	if region.Base%kconst.PageSize != 0 {
		panic("pmm: region base is not page-aligned")
	}
	return &Allocator{region: region}
}

// AllocPages returns the physical address of n contiguous, zeroed,
// page-aligned pages, advancing the cursor by n*PageSize. It panics with
// "out of memory" if the request would exceed the region, mirroring the
// source's PANIC("out of memory").
func (a *Allocator) AllocPages(n int) kconst.Paddr {
	size := n * kconst.PageSize
	if a.cursor+size > len(a.region.Mem) {
		panic(fmt.Sprintf("pmm: out of memory (requested %d bytes, %d remaining)",
			size, len(a.region.Mem)-a.cursor))
	}
	start := a.cursor
	a.cursor += size
	clear(a.region.Mem[start : start+size])
	return a.region.Base + kconst.Paddr(start)
}

// AllocPage is AllocPages(1), convenient for callers (sv32, proc) that only
// ever need a single page at a time.
func (a *Allocator) AllocPage() kconst.Paddr {
	return a.AllocPages(1)
}

// Page returns a byte slice view of the single physical page at pa, for
// callers that satisfy sv32.Memory/proc's page-view needs.
func (a *Allocator) Page(pa kconst.Paddr) []byte {
	return a.Bytes(pa, 1)
}

// Bytes returns a byte slice view of the n pages of physical memory starting
// at pa, for callers that need to write through an address returned by
// AllocPages (sv32's page tables, proc's per-process pages).
func (a *Allocator) Bytes(pa kconst.Paddr, n int) []byte {
	return a.Slice(pa, n*kconst.PageSize)
}

// Slice returns an arbitrary byte-granular view of length bytes of physical
// memory starting at pa, for callers addressing into the middle of an
// allocated page (blkio's descriptor chains point at sub-page offsets of
// the shared request buffer).
func (a *Allocator) Slice(pa kconst.Paddr, length int) []byte {
	off := int(pa - a.region.Base)
	return a.region.Mem[off : off+length]
}

// Cursor reports the allocator's current bump offset, used by sv32's tests
// to count the pages Map allocates.
func (a *Allocator) Cursor() int {
	return a.cursor
}

// Cap reports the total capacity of the backing region in bytes.
func (a *Allocator) Cap() int {
	return len(a.region.Mem)
}
