// Package sv32 builds two-level RISC-V Sv32 page tables (C2): a single
// root table of 1024 PTEs, each either pointing at a second-level table of
// 1024 PTEs or left invalid.
//
// Grounded on the teacher's mem.Pa_t/Pmap_t newtype-over-an-integer idiom
// (mem/mem.go), specialized from the teacher's four-level, 512-entry amd64
// layout to Sv32's two-level, 1024-entry, 10-bit-VPN layout.
package sv32

import "github.com/rvsv32/rvkernel/internal/kconst"

// PTE is a single Sv32 page table entry: bit 0 V, 1 R, 2 W, 3 X, 4 U, PPN at
// bit 10.
type PTE uint32

// Valid reports whether the V bit is set.
func (p PTE) Valid() bool { return p&kconst.PteV != 0 }

// PPN extracts the physical page number encoded in the entry.
func (p PTE) PPN() uint32 { return uint32(p) >> 10 }

// Addr returns the physical address the entry's PPN encodes.
func (p PTE) Addr() kconst.Paddr { return kconst.Paddr(p.PPN()) << 12 }

// makePTE builds a leaf or intermediate PTE from a physical address and a
// set of flag bits (kconst.PteV/R/W/X/U).
func makePTE(pa kconst.Paddr, flags uint32) PTE {
	return PTE((uint32(pa)>>12)<<10 | flags)
}

// vpn splits a virtual address into its level-1 and level-0 indices.
func vpn(va kconst.Vaddr) (vpn1, vpn0 uint32) {
	v := uint32(va)
	return v >> 22, (v >> 12) & 0x3FF
}
