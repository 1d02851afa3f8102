//go:build !tamago

package kernel

func halt() {
	panic("kernel halted")
}
