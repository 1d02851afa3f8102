package pmm

import (
	"testing"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

func newTestAllocator(pages int) *Allocator {
	return New(Region{Base: 0x8100_0000, Mem: make([]byte, pages*kconst.PageSize)})
}

func TestAllocPagesZeroedAndAligned(t *testing.T) {
	a := newTestAllocator(4)

	// Dirty the backing memory so a real zeroing bug would be observable.
	for i := range a.region.Mem {
		a.region.Mem[i] = 0xAA
	}
	a.cursor = 0

	pa := a.AllocPages(2)
	if pa%kconst.PageSize != 0 {
		t.Fatalf("AllocPages returned unaligned address %#x", pa)
	}
	for _, b := range a.Bytes(pa, 2) {
		if b != 0 {
			t.Fatalf("AllocPages returned non-zeroed memory")
		}
	}
}

func TestAllocPagesNeverReturnsSamePage(t *testing.T) {
	a := newTestAllocator(4)
	first := a.AllocPages(1)
	second := a.AllocPages(1)
	if first == second {
		t.Fatalf("allocator returned the same page twice: %#x", first)
	}
	if second != first+kconst.PageSize {
		t.Fatalf("expected bump allocation, got first=%#x second=%#x", first, second)
	}
}

func TestAllocPagesOutOfMemoryPanics(t *testing.T) {
	a := newTestAllocator(1)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on out-of-memory allocation")
		}
	}()
	a.AllocPages(2)
}
