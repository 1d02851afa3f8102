//go:build tamago

package blkio

// memoryFence is implemented in fence_tamago.s as a RISC-V FENCE
// instruction. It provides the __sync_synchronize the source relies on
// between publishing the avail ring and notifying the device (spec.md §5)
// so the device never observes QUEUE_NOTIFY before the ring update.
func memoryFence()
