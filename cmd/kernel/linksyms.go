//go:build tamago

package main

import _ "unsafe"

// Linker-provided boot symbols (spec.md §6): free RAM bounds and the
// embedded shell binary, placed by cmd/kernel/kernel.ld and
// objcopy-style asset embedding outside this package's scope.
//
//go:linkname freeRAMStart __free_ram
//go:linkname shellBinStart _binary_shell_bin_start
//go:linkname shellBinSize _binary_shell_bin_size

var freeRAMStart byte
var shellBinStart byte
var shellBinSize byte
