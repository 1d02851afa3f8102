package sv32

import (
	"testing"

	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/pmm"
)

func newMem(pages int) *pmm.Allocator {
	return pmm.New(pmm.Region{Base: 0x8020_0000, Mem: make([]byte, pages*kconst.PageSize)})
}

func TestMapAndLookupRoundTrip(t *testing.T) {
	mem := newMem(8)
	root := NewRoot(mem)

	va := kconst.Vaddr(0x0100_0000)
	pa := mem.AllocPage()
	Map(mem, root, va, pa, kconst.PteU|kconst.PteR|kconst.PteW|kconst.PteX)

	pte, ok := Lookup(mem, root, va)
	if !ok {
		t.Fatalf("expected mapping to be present")
	}
	if pte.Addr() != pa {
		t.Fatalf("Lookup returned addr %#x, want %#x", pte.Addr(), pa)
	}
	if pte&kconst.PteU == 0 || pte&kconst.PteR == 0 || pte&kconst.PteW == 0 || pte&kconst.PteX == 0 {
		t.Fatalf("mapping lost flag bits: %#x", uint32(pte))
	}
}

func TestMapMaterializesSecondLevelOnDemand(t *testing.T) {
	mem := newMem(8)
	root := NewRoot(mem)
	before := mem.Cursor()

	pa := mem.AllocPage()
	Map(mem, root, kconst.Vaddr(0x0100_0000), pa, kconst.PteR)
	afterFirst := mem.Cursor()
	if afterFirst == before+kconst.PageSize {
		t.Fatalf("expected Map to allocate a second-level table in addition to pa")
	}

	// A second mapping within the same 4 MiB region must not allocate
	// another second-level table.
	pa2 := mem.AllocPage()
	Map(mem, root, kconst.Vaddr(0x0100_1000), pa2, kconst.PteR)
	afterSecond := mem.Cursor()
	if afterSecond != afterFirst+kconst.PageSize {
		t.Fatalf("second Map in the same megapage region allocated an extra table")
	}
}

func TestMapRejectsUnalignedAddresses(t *testing.T) {
	mem := newMem(4)
	root := NewRoot(mem)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unaligned vaddr")
		}
	}()
	Map(mem, root, kconst.Vaddr(0x0100_0001), mem.AllocPage(), kconst.PteR)
}

func TestLookupMissingReturnsFalse(t *testing.T) {
	mem := newMem(4)
	root := NewRoot(mem)
	if _, ok := Lookup(mem, root, kconst.Vaddr(0x1234_5000)); ok {
		t.Fatalf("expected Lookup to report no mapping")
	}
}
