// Package uvaddr resolves user virtual addresses against a process's page
// table, for the trap handler's syscall-argument dereferencing (spec.md
// §4.6: "the kernel dereferences a0 and a1 as pointers in the user address
// space without validation"). On real hardware the MMU performs this
// translation transparently on every load/store; in Go there is no such
// instruction-level hook, so syscalls that take user pointers route
// through here instead.
//
// Grounded on the teacher's vm.Vm_t.Userdmap8_inner / Userreadn, which walk
// the active page table one page at a time and hand back a slice clipped
// to the page boundary; Read/Write here loop the same way to span
// requests that cross a page.
package uvaddr

import (
	"fmt"

	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/sv32"
)

// Memory is the subset of pmm.Allocator a page walk needs.
type Memory interface {
	sv32.Memory
	Slice(pa kconst.Paddr, length int) []byte
}

// pageView returns the bytes of the page containing vaddr, starting at
// vaddr's in-page offset. It panics if no mapping exists for vaddr's page
// — the source performs no validation either; on real hardware the
// equivalent would be an unexpected page fault, which the trap path
// already turns into a PANIC.
func pageView(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr) []byte {
	pageBase := kconst.Vaddr(uint32(vaddr) &^ uint32(kconst.PageSize-1))
	pte, ok := sv32.Lookup(mem, root, pageBase)
	if !ok {
		panic(fmt.Sprintf("uvaddr: unmapped user address %#x", vaddr))
	}
	voff := int(uint32(vaddr) % kconst.PageSize)
	return mem.Slice(pte.Addr(), kconst.PageSize)[voff:]
}

// Read copies len(dst) bytes starting at the user address vaddr into dst.
func Read(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr, dst []byte) {
	off := 0
	for off < len(dst) {
		src := pageView(mem, root, vaddr+kconst.Vaddr(off))
		n := min(len(dst)-off, len(src))
		copy(dst[off:off+n], src[:n])
		off += n
	}
}

// Write copies src into the user address space starting at vaddr.
func Write(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr, src []byte) {
	off := 0
	for off < len(src) {
		dst := pageView(mem, root, vaddr+kconst.Vaddr(off))
		n := min(len(src)-off, len(dst))
		copy(dst[:n], src[off:off+n])
		off += n
	}
}

// CString reads a NUL-terminated string starting at the user address
// vaddr, one byte at a time, bailing out after maxLen bytes.
func CString(mem Memory, root kconst.Paddr, vaddr kconst.Vaddr, maxLen int) string {
	buf := make([]byte, 0, 64)
	for off := 0; off < maxLen; off++ {
		b := pageView(mem, root, vaddr+kconst.Vaddr(off))[0]
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf)
}
