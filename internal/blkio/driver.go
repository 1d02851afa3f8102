package blkio

import (
	"fmt"
	"unsafe"

	"github.com/rvsv32/rvkernel/internal/kconst"
)

// blockRequest is the virtio-blk request buffer: a header, a fixed-size
// sector payload, and a trailing status byte the device writes on
// completion, per spec.md §3.
type blockRequest struct {
	Type     uint32
	Reserved uint32
	Sector   uint64
	Data     [kconst.SectorSize]byte
	Status   uint8
}

const requestPages = (int(unsafe.Sizeof(blockRequest{})) + 4095) / 4096

func asBlockRequest(page []byte) *blockRequest {
	return (*blockRequest)(unsafe.Pointer(&page[0]))
}

// dataOffset and statusOffset are the byte offsets of Data and Status
// within blockRequest, needed to build descriptor addresses exactly as
// read_write_disk does via offsetof(struct virtio_blk_req, data/status).
const (
	dataOffset   = 16 // Type(4) + Reserved(4) + Sector(8)
	statusOffset = dataOffset + kconst.SectorSize
)

// Driver is the virtio-blk driver state (C3): one virtqueue, one shared
// request buffer, and the cached device capacity.
type Driver struct {
	mmio     MMIO
	mem      Memory
	vq       *Virtqueue
	reqPaddr kconst.Paddr
	req      *blockRequest
	Capacity uint64 // in bytes
}

// Init performs the initialization sequence of spec.md §4.3 steps 1-10 and
// returns a ready-to-use Driver, or panics on any identity/version/device
// mismatch exactly as the source PANICs.
func Init(mmio MMIO, mem Memory) *Driver {
	if got := mmio.ReadReg32(RegMagic); got != virtioMagic {
		panic(fmt.Sprintf("virtio: invalid magic value %#x", got))
	}
	if got := mmio.ReadReg32(RegVersion); got != versionLegacy {
		panic(fmt.Sprintf("virtio: invalid version %d", got))
	}
	if got := mmio.ReadReg32(RegDeviceID); got != deviceIDBlk {
		panic(fmt.Sprintf("virtio: invalid device id %d", got))
	}

	mmio.WriteReg32(RegDeviceStatus, 0)
	fetchAndOr32(mmio, RegDeviceStatus, StatusAck)
	fetchAndOr32(mmio, RegDeviceStatus, StatusDriver)
	fetchAndOr32(mmio, RegDeviceStatus, StatusFeatOK)

	vqPaddr := mem.AllocPages(queueLayoutPages)
	mmio.WriteReg32(RegQueueSel, 0)
	mmio.WriteReg32(RegQueueNum, QueueEntryNum)
	mmio.WriteReg32(RegQueueAlign, 0)
	mmio.WriteReg32(RegQueuePFN, uint32(vqPaddr)/kconst.PageSize)

	fetchAndOr32(mmio, RegDeviceStatus, StatusDriverOK)

	capacity := mmio.ReadReg64(RegDeviceConfig+0) * kconst.SectorSize

	reqPaddr := mem.AllocPages(requestPages)

	return &Driver{
		mmio: mmio,
		mem:  mem,
		vq: &Virtqueue{
			layout:     asQueueLayout(mem.Slice(vqPaddr, queueLayoutPages*kconst.PageSize)),
			paddr:      uint32(vqPaddr),
			queueIndex: 0,
		},
		reqPaddr: reqPaddr,
		req:      asBlockRequest(mem.Slice(reqPaddr, requestPages*kconst.PageSize)),
		Capacity: capacity,
	}
}

// ReadWriteDisk services one sector-sized request, per spec.md §4.3's
// per-request protocol. It returns an error for soft failures (out-of-range
// sector, non-zero device status); these are logged by the caller and never
// propagated as a halting condition, matching spec.md §7.
func (d *Driver) ReadWriteDisk(buf []byte, sector uint32, isWrite bool) error {
	if uint64(sector)*kconst.SectorSize >= d.Capacity {
		return fmt.Errorf("virtio: tried to read/write sector=%d, but capacity is %d",
			sector, d.Capacity/kconst.SectorSize)
	}

	d.req.Sector = uint64(sector)
	if isWrite {
		d.req.Type = ReqTypeOut
		copy(d.req.Data[:], buf)
	} else {
		d.req.Type = ReqTypeIn
	}

	vq := d.vq.layout
	vq.Descs[0] = Desc{
		Addr:  uint64(d.reqPaddr),
		Len:   dataOffset,
		Flags: DescFNext,
		Next:  1,
	}
	writeFlag := uint16(0)
	if !isWrite {
		writeFlag = DescFWrite
	}
	vq.Descs[1] = Desc{
		Addr:  uint64(d.reqPaddr) + dataOffset,
		Len:   kconst.SectorSize,
		Flags: DescFNext | writeFlag,
		Next:  2,
	}
	vq.Descs[2] = Desc{
		Addr:  uint64(d.reqPaddr) + statusOffset,
		Len:   1,
		Flags: DescFWrite,
	}

	vq.Avail.Ring[vq.Avail.Index%QueueEntryNum] = 0
	memoryFence()
	vq.Avail.Index++
	d.mmio.WriteReg32(RegQueueNotify, d.vq.queueIndex)
	d.vq.lastUsedIndex++

	for d.vq.lastUsedIndex != vq.Used.Index {
		// Busy-wait: the simplest correct design, since the device
		// completes in microseconds and this kernel has no timer
		// interrupt to yield on (spec.md §5).
	}

	if d.req.Status != 0 {
		return fmt.Errorf("virtio: warn: failed to read/write sector=%d status=%d",
			sector, d.req.Status)
	}

	if !isWrite {
		copy(buf, d.req.Data[:])
	}
	return nil
}
