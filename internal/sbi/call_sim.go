//go:build !tamago

package sbi

import "sync"

// simConsole lets host tests drive Putchar/Getchar without real SBI
// firmware: Getchar drains a queue the test fills via Feed, returning -1
// (no data) once it's empty, matching the legacy extension's behavior on
// an idle console.
var simConsole struct {
	mu      sync.Mutex
	written []byte
	queued  []byte
}

// Feed enqueues bytes for the next Getchar calls to return, for tests
// driving the GETCHAR syscall path.
func Feed(b ...byte) {
	simConsole.mu.Lock()
	defer simConsole.mu.Unlock()
	simConsole.queued = append(simConsole.queued, b...)
}

// Written returns everything Putchar has written so far, for tests
// asserting on console output.
func Written() []byte {
	simConsole.mu.Lock()
	defer simConsole.mu.Unlock()
	return append([]byte(nil), simConsole.written...)
}

func call(arg0, arg1, arg2, arg3, arg4, arg5, fid, eid uint32) (int32, int32) {
	simConsole.mu.Lock()
	defer simConsole.mu.Unlock()
	switch eid {
	case 1: // Console Putchar
		simConsole.written = append(simConsole.written, byte(arg0))
		return 0, 0
	case 2: // Console Getchar
		if len(simConsole.queued) == 0 {
			return -1, 0
		}
		ch := simConsole.queued[0]
		simConsole.queued = simConsole.queued[1:]
		return int32(ch), 0
	default:
		return -1, 0
	}
}
