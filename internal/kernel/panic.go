package kernel

import "fmt"

// Panicf implements the kernel's single PANIC path (spec.md §7): print a
// message, then halt. On the real target halt never returns (an infinite
// WFI loop); in host test builds it calls Go's panic so tests can recover
// and assert on the message.
func Panicf(format string, args ...any) {
	fmt.Printf("PANIC: "+format+"\n", args...)
	halt()
}
