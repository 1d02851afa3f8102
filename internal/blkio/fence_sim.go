//go:build !tamago

package blkio

// memoryFence is a no-op off the real target: SimDevice is driven
// single-goroutine in tests, so there is no reordering for a fence to
// guard against, only the real MMIO path (fence_tamago.go) needs one.
func memoryFence() {}
