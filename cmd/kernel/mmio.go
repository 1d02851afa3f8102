//go:build tamago

package main

import "unsafe"

// realMMIO addresses the virtio-blk legacy register window directly via
// unsafe.Pointer, the same "reinterpret a raw address as Go memory" idiom
// sv32.asTable and pmm use for page tables — grounded on the same family
// of register-access patterns as TamaGo's SoC drivers (other_examples),
// which read/write MMIO through volatile-equivalent pointer dereferences
// rather than a syscall.
type realMMIO uint32

func (m realMMIO) reg32(offset uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(uintptr(m) + uintptr(offset)))
}

func (m realMMIO) ReadReg32(offset uint32) uint32 {
	return *m.reg32(offset)
}

func (m realMMIO) ReadReg64(offset uint32) uint64 {
	lo := uint64(*m.reg32(offset))
	hi := uint64(*m.reg32(offset + 4))
	return lo | hi<<32
}

func (m realMMIO) WriteReg32(offset uint32, v uint32) {
	*m.reg32(offset) = v
}
