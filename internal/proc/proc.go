// Package proc implements the process table and the cooperative scheduler
// (C5): a fixed-size process array, per-process kernel stack and page
// table, and round-robin yield.
//
// Grounded on the teacher's proc_t and Proc_t.Sched wiring (proc/proc.go,
// proc/proc_sched.go), which also hold sp/page-table/state in a fixed
// array and hand scheduling decisions to small, separately testable
// functions; simplified here because this kernel has no run queue, no
// priorities and no preemption; a scheduling "decision" is just "the next
// RUNNABLE slot after this one".
package proc

import (
	"unsafe"

	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/sv32"
)

// Process is one process-table entry (spec.md §3).
type Process struct {
	PID       int
	State     int
	SP        uint32
	Stack     [kconst.ProcStackSize]byte
	PageTable kconst.Paddr
}

// Memory is everything Create needs from the physical allocator: the
// sv32.Memory methods to build page tables, plus AllocPages/Slice to place
// and populate the user image's pages. pmm.Allocator satisfies this
// directly.
type Memory interface {
	sv32.Memory
	AllocPages(n int) kconst.Paddr
	Slice(pa kconst.Paddr, length int) []byte
}

// Table is the fixed-size process array (C5).
type Table struct {
	procs   [kconst.ProcsMax]Process
	current *Process
	idle    *Process
}

// Current returns the currently scheduled process, or nil before the first
// process has been created.
func (t *Table) Current() *Process { return t.current }

// SetCurrent is used once at boot to seed current_proc with the idle
// process, mirroring the source's explicit `current_proc = idle_proc;`.
func (t *Table) SetCurrent(p *Process) { t.current = p }

// SetIdle records p as the process yield falls back to when no user
// process is runnable.
func (t *Table) SetIdle(p *Process) { t.idle = p }

// frameWords is the size in words of the initial switch_context frame:
// ra at the lowest address (where the saved SP points) followed by s0-s11,
// the layout switchContext saves and restores (spec.md §4.5 step 2).
const frameWords = 13

// Create implements create_process (spec.md §4.5): it claims the first
// UNUSED slot, builds the process's initial context-switch frame, its root
// page table (kernel identity map + virtio MMIO page, both supervisor-only),
// and maps image page by page at USER_BASE with U|R|W|X. image may be nil
// (the idle process has no user pages, per the explicit note in §4.5).
//
// Create always assigns pid = slot index + 1, exactly as the source does;
// callers creating the idle process must then override the field, since
// the idle process's pid must read as 0 (see kernel.Boot).
func (t *Table) Create(mem Memory, image []byte) *Process {
	slot := -1
	for i := range t.procs {
		if t.procs[i].State == kconst.ProcUnused {
			slot = i
			break
		}
	}
	if slot == -1 {
		panic("proc: no free process slots")
	}

	p := &t.procs[slot]
	*p = Process{}

	frameOff := len(p.Stack) - frameWords*4
	frame := (*[frameWords]uint32)(unsafe.Pointer(&p.Stack[frameOff]))
	frame[0] = userEntryAddr() // ra, at the saved SP as switchContext expects
	for i := 1; i < frameWords; i++ {
		frame[i] = 0 // s0..s11
	}

	root := sv32.NewRoot(mem)
	sv32.MapRange(mem, root, kconst.Vaddr(kconst.KernelBase), kconst.Paddr(kconst.KernelBase),
		kconst.KernelIdentitySize, kconst.PteR|kconst.PteW|kconst.PteX)
	sv32.Map(mem, root, kconst.Vaddr(kconst.VirtioBlkPaddr), kconst.Paddr(kconst.VirtioBlkPaddr),
		kconst.PteR|kconst.PteW)

	for off := 0; off < len(image); off += kconst.PageSize {
		page := mem.AllocPages(1)
		remaining := len(image) - off
		copySize := kconst.PageSize
		if remaining < copySize {
			copySize = remaining
		}
		copy(mem.Slice(page, kconst.PageSize), image[off:off+copySize])
		sv32.Map(mem, root, kconst.Vaddr(kconst.UserBase+off), page,
			kconst.PteU|kconst.PteR|kconst.PteW|kconst.PteX)
	}

	p.PID = slot + 1
	p.State = kconst.ProcRunnable
	p.SP = uint32(uintptr(unsafe.Pointer(&p.Stack[frameOff])))
	p.PageTable = root
	return p
}

// pickNext implements yield's selection rule (spec.md §4.5 step 1): among
// the process table, starting at (current.pid + i) % PROCS_MAX for
// i=0..PROCS_MAX-1, the first RUNNABLE slot with pid > 0; idle if none
// found. Because pid = slot+1, i=0 is the slot right after the current
// one, and the last probe is the current slot itself. Factored out of
// yield so the round-robin rule is testable on the host without a real
// switch_context.
func (t *Table) pickNext() *Process {
	next := t.idle
	for i := 0; i < kconst.ProcsMax; i++ {
		p := &t.procs[(t.current.PID+i)%kconst.ProcsMax]
		if p.State == kconst.ProcRunnable && p.PID > 0 {
			next = p
			break
		}
	}
	return next
}

// satpFor computes the SATP value yield writes to install next's address
// space: the Sv32 mode bit plus next.PageTable's page number.
func satpFor(p *Process) uint32 {
	return kconst.SatpSv32 | uint32(p.PageTable)/kconst.PageSize
}

// sscratchFor computes the value yield writes to sscratch: the address one
// past next's kernel stack, so the trap handler finds a fresh stack on the
// next ecall.
func sscratchFor(p *Process) uint32 {
	return uint32(uintptr(unsafe.Pointer(&p.Stack[0]))) + uint32(len(p.Stack))
}

// Yield implements yield() (spec.md §4.5): pick the next runnable process,
// install its address space, reprime sscratch, and switch_context into it.
// A no-op if pickNext selects the already-current process.
func (t *Table) Yield() {
	if t.current == nil {
		panic("proc: Yield called before a current process is set")
	}
	next := t.pickNext()
	if next == t.current {
		return
	}

	installAddrSpace(satpFor(next))
	setScratch(sscratchFor(next))

	prev := t.current
	t.current = next
	switchContext(&prev.SP, &next.SP)
}

// Exit implements the SYS_EXIT behavior of spec.md §4.6: marks the current
// process EXITED and yields. On real hardware this never returns — reaching
// past Yield means every slot including the one just exited was
// unrunnable, which should be impossible while the idle process exists and
// is PANIC-worthy. On the host build, switchContext is a no-op (there is no
// hart to switch on), so Yield returns here normally and entry_sim.go's
// panicIfRescheduled is a no-op.
func (t *Table) Exit() {
	t.current.State = kconst.ProcExited
	t.Yield()
	panicIfRescheduled(t.current.PID)
}
