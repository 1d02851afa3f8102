package sv32

import (
	"fmt"
	"unsafe"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

// Memory is the subset of pmm.Allocator that the mapper needs: a way to
// materialize fresh intermediate tables and a way to view an existing
// physical page as bytes. Factored into an interface so map.go can be
// exercised in tests against a small fake instead of a full allocator.
type Memory interface {
	AllocPage() kconst.Paddr
	Page(pa kconst.Paddr) []byte
}

// asTable reinterprets a page-sized byte slice as a 1024-entry Sv32 table.
//
// Grounded on the teacher's mem.pg2pmap, which performs the same
// unsafe.Pointer reinterpretation of a raw page as a Pmap_t; this is the
// idiomatic way bare-metal Go code gets a typed view over MMU-visible
// memory without a copy.
func asTable(page []byte) *[1024]PTE {
	if len(page) < kconst.PageSize {
		panic("sv32: page view smaller than PageSize")
	}
	return (*[1024]PTE)(unsafe.Pointer(&page[0]))
}

// NewRoot allocates and returns the physical address of a fresh, empty
// root table.
func NewRoot(mem Memory) kconst.Paddr {
	return mem.AllocPage()
}

// Map installs a mapping from vaddr to paddr with the given flag bits in
// the page table rooted at root, materializing the second-level table on
// demand exactly as spec.md §4.2 describes. Both addresses must already be
// page-aligned; flags is the PTE flag bits exclusive of V, which Map always
// sets.
func Map(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr, paddr kconst.Paddr, flags uint32) {
	if uint32(vaddr)%kconst.PageSize != 0 {
		panic(fmt.Sprintf("sv32: vaddr %#x is not page-aligned", vaddr))
	}
	if uint32(paddr)%kconst.PageSize != 0 {
		panic(fmt.Sprintf("sv32: paddr %#x is not page-aligned", paddr))
	}

	vpn1, vpn0 := vpn(vaddr)
	rootTable := asTable(mem.Page(root))

	if !rootTable[vpn1].Valid() {
		table2 := mem.AllocPage()
		rootTable[vpn1] = makePTE(table2, kconst.PteV)
	}

	table2 := asTable(mem.Page(rootTable[vpn1].Addr()))
	table2[vpn0] = makePTE(paddr, flags|kconst.PteV)
}

// MapRange maps the half-open virtual range [vaddr, vaddr+size) to a
// physical range of the same size starting at paddr, one page at a time.
// Used to install the kernel identity map, which needs a single call
// site's worth of flags repeated over many pages (spec.md §4.5 step 3);
// the single virtio MMIO page is mapped with Map directly.
func MapRange(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr, paddr kconst.Paddr, size int, flags uint32) {
	for off := 0; off < size; off += kconst.PageSize {
		Map(mem, root, vaddr+kconst.Vaddr(off), paddr+kconst.Paddr(off), flags)
	}
}

// Lookup walks root and returns the PTE mapping vaddr's page, or false if
// none is installed. Used by tests asserting invariant 2 and by uvaddr to
// translate user pointers.
func Lookup(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr) (PTE, bool) {
	vpn1, vpn0 := vpn(vaddr)
	rootTable := asTable(mem.Page(root))
	if !rootTable[vpn1].Valid() {
		return 0, false
	}
	table2 := asTable(mem.Page(rootTable[vpn1].Addr()))
	pte := table2[vpn0]
	if !pte.Valid() {
		return 0, false
	}
	return pte, true
}
