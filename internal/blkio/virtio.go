// Package blkio implements the virtio-blk MMIO driver (C3): legacy
// (virtio 0.9.5 / 1.0 §2.4 legacy layout) device initialization and a
// synchronous 3-descriptor request protocol.
//
// Grounded on the teacher's ufs.ahci_disk_t ("the driver" in
// ufs/driver.go), which also services a single Bdev_req_t at a time behind
// a small Start method; the MMIO register names follow tamago's
// register-offset convention (other_examples' arm64/mmu.go and the
// QEMU virtio driver use the same read/write-at-offset idiom via a small
// reg package) adapted to this device's legacy register file.
package blkio

import "github.com/rvsv32/rvkernel/internal/kconst"

// MMIO register byte offsets from VirtioBlkPaddr, per SPEC_FULL.md §6.
const (
	RegMagic          = 0x000
	RegVersion        = 0x004
	RegDeviceID       = 0x008
	RegDeviceFeatures = 0x010
	RegDriverFeatures = 0x020
	RegQueueSel       = 0x030
	RegQueueNumMax    = 0x034
	RegQueueNum       = 0x038
	RegQueueAlign     = 0x03C
	RegQueuePFN       = 0x040
	RegQueueNotify    = 0x050
	RegDeviceStatus   = 0x070
	RegDeviceConfig   = 0x100
)

// Device status bits.
const (
	StatusAck      = 1
	StatusDriver   = 2
	StatusDriverOK = 4
	StatusFeatOK   = 8
)

// Block request types, in the request header's Type field.
const (
	ReqTypeIn  = 0 // device reads FROM disk INTO the request buffer
	ReqTypeOut = 1 // device writes FROM the request buffer TO disk
)

// Descriptor flag bits.
const (
	DescFNext  = 1 << 0
	DescFWrite = 1 << 1 // "device writes to memory" for this descriptor
)

const (
	virtioMagic   = 0x74726976 // "virt"
	versionLegacy = 1
	deviceIDBlk   = 2
)

// QueueEntryNum is the number of descriptors in the single virtqueue this
// driver uses (VIRTQ_ENTRY_NUM in spec.md §3).
const QueueEntryNum = 16

// MMIO is the register-level interface to the device. The real target
// implements it with volatile 32/64-bit loads and stores at
// kconst.VirtioBlkPaddr+offset; SimDevice implements it over an in-memory
// model of the same register file for tests.
type MMIO interface {
	ReadReg32(offset uint32) uint32
	ReadReg64(offset uint32) uint64
	WriteReg32(offset uint32, v uint32)
}

// Memory is the subset of pmm.Allocator the driver needs to place its
// virtqueue and request buffer in DMA-visible physical memory and to
// address into them at byte granularity (descriptor addresses point at
// sub-page offsets of the shared request buffer).
type Memory interface {
	AllocPages(n int) kconst.Paddr
	Slice(pa kconst.Paddr, length int) []byte
}

func fetchAndOr32(m MMIO, offset uint32, bits uint32) {
	m.WriteReg32(offset, m.ReadReg32(offset)|bits)
}
