package blkio

import "unsafe"

// Desc is one virtqueue descriptor.
type Desc struct {
	Addr  uint64
	Len   uint32
	Flags uint16
	Next  uint16
}

// usedElem is one entry of the used ring.
type usedElem struct {
	ID  uint32
	Len uint32
}

type availRing struct {
	Flags uint16
	Index uint16
	Ring  [QueueEntryNum]uint16
}

type usedRing struct {
	Flags uint16
	Index uint16
	Ring  [QueueEntryNum]usedElem
}

// availPad pads the available ring out to a page boundary. The original
// kernel sets QUEUE_ALIGN to 0 and simply lays the whole queue out
// contiguously, so the "alignment" here is just "the used ring starts
// exactly one page in" rather than anything the device enforces.
const availPad = 4096 - (QueueEntryNum*16 + 4 + QueueEntryNum*2)

// queueLayout is the device-visible portion of a legacy virtqueue: a
// descriptor table immediately followed by the available ring, then the
// used ring at the next page boundary. It is placed at a page-aligned
// physical address and never touched except through Descs/Avail/Used.
type queueLayout struct {
	Descs [QueueEntryNum]Desc
	Avail availRing
	_     [availPad]byte
	Used  usedRing
}

// queueLayoutPages is the number of pages needed to hold one queueLayout.
const queueLayoutPages = (int(unsafe.Sizeof(queueLayout{})) + 4095) / 4096

// Virtqueue is the driver-side handle to one virtqueue: the device-visible
// layout plus purely local bookkeeping (queue index, last observed used
// index) that the device itself never reads.
//
// Splitting local bookkeeping out of the DMA-visible struct is a
// deliberate generalization of the teacher's single-struct-for-everything
// C layout: nothing in the legacy protocol requires the driver's own
// counters to live in the same physical page as the rings.
type Virtqueue struct {
	layout        *queueLayout
	paddr         uint32
	queueIndex    uint32
	lastUsedIndex uint16
}

func asQueueLayout(page []byte) *queueLayout {
	if len(page) < int(unsafe.Sizeof(queueLayout{})) {
		panic("blkio: queue region too small")
	}
	return (*queueLayout)(unsafe.Pointer(&page[0]))
}
