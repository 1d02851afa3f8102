//go:build !tamago

package kernel

// installTrapVector is a no-op on the host: there is no stvec to write,
// and trap.Dispatch is exercised directly by trap's own tests instead of
// through a real ecall.
func installTrapVector() {}
