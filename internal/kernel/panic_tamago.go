//go:build tamago

package kernel

// halt parks the hart forever in WFI (wait-for-interrupt), implemented in
// panic_tamago.s. No interrupt source is ever enabled once halt runs, so
// this never returns.
func halt()
