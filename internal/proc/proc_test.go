package proc

import (
	"testing"

	"github.com/rvsv32/rvkernel/internal/kconst"
	"github.com/rvsv32/rvkernel/internal/pmm"
	"github.com/rvsv32/rvkernel/internal/sv32"
)

func newMem(pages int) *pmm.Allocator {
	return pmm.New(pmm.Region{Base: 0x8020_0000, Mem: make([]byte, pages*kconst.PageSize)})
}

func TestCreateAssignsSlotPlusOneAsPID(t *testing.T) {
	mem := newMem(4096)
	var tbl Table

	p0 := tbl.Create(mem, nil)
	p1 := tbl.Create(mem, []byte("hello"))

	if p0.PID != 1 || p1.PID != 2 {
		t.Fatalf("got pids %d, %d; want 1, 2", p0.PID, p1.PID)
	}
	if p0.State != kconst.ProcRunnable || p1.State != kconst.ProcRunnable {
		t.Fatalf("new processes must start RUNNABLE")
	}
}

func TestCreateMapsKernelIdentityRangeSupervisorOnly(t *testing.T) {
	mem := newMem(4096)
	var tbl Table
	p := tbl.Create(mem, nil)

	pte, ok := sv32.Lookup(mem, p.PageTable, kconst.Vaddr(kconst.KernelBase))
	if !ok {
		t.Fatalf("expected kernel base to be mapped")
	}
	const want = kconst.PteR | kconst.PteW | kconst.PteX | kconst.PteV
	if uint32(pte)&0x1F != want {
		t.Fatalf("kernel identity flags = %#x, want %#x (no U bit)", uint32(pte)&0x1F, want)
	}
}

func TestCreateMapsUserImageWithUBit(t *testing.T) {
	mem := newMem(4096)
	var tbl Table
	image := make([]byte, kconst.PageSize+10)
	p := tbl.Create(mem, image)

	for _, off := range []int{0, kconst.PageSize} {
		pte, ok := sv32.Lookup(mem, p.PageTable, kconst.Vaddr(kconst.UserBase+off))
		if !ok {
			t.Fatalf("expected USER_BASE+%#x to be mapped", off)
		}
		if uint32(pte)&kconst.PteU == 0 {
			t.Fatalf("user page at +%#x missing U bit", off)
		}
	}
}

func TestCreatePanicsWhenTableFull(t *testing.T) {
	mem := newMem(4096)
	var tbl Table
	for i := 0; i < kconst.ProcsMax; i++ {
		tbl.Create(mem, nil)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when process table is full")
		}
	}()
	tbl.Create(mem, nil)
}

// setupScheduler builds an idle process (forced to pid 0, mirroring
// kernel.Boot's override of create_process's slot-derived pid) plus two
// user processes, for exercising yield's round-robin rule (S4).
func setupScheduler(t *testing.T) (*Table, *Process, *Process, *Process) {
	t.Helper()
	mem := newMem(4096)
	tbl := &Table{}

	idle := tbl.Create(mem, nil)
	idle.PID = 0
	tbl.SetIdle(idle)

	a := tbl.Create(mem, []byte("a"))
	b := tbl.Create(mem, []byte("b"))
	tbl.SetCurrent(a)
	return tbl, idle, a, b
}

func TestYieldRoundRobinsBetweenTwoUserProcesses(t *testing.T) {
	tbl, _, a, b := setupScheduler(t)

	tbl.Yield()
	if tbl.Current() != b {
		t.Fatalf("expected yield from A to select B")
	}

	tbl.Yield()
	if tbl.Current() != a {
		t.Fatalf("expected yield from B to select A")
	}
}

func TestYieldNeverSelectsIdleWhileAUserProcessIsRunnable(t *testing.T) {
	tbl, idle, a, b := setupScheduler(t)
	b.State = kconst.ProcExited

	tbl.SetCurrent(a)
	tbl.Yield()
	if tbl.Current() == idle {
		t.Fatalf("yield selected idle while a user process was still runnable")
	}
	if tbl.Current() != a {
		t.Fatalf("with only A runnable, yield should be a no-op back to A")
	}
}

func TestYieldFallsBackToIdleWhenNoUserProcessRunnable(t *testing.T) {
	tbl, idle, a, b := setupScheduler(t)
	a.State = kconst.ProcExited
	b.State = kconst.ProcExited

	tbl.SetCurrent(a)
	tbl.Yield()
	if tbl.Current() != idle {
		t.Fatalf("expected fallback to idle when nothing else is runnable")
	}
}

func TestExitMarksCurrentExitedAndYields(t *testing.T) {
	tbl, _, a, b := setupScheduler(t)
	tbl.SetCurrent(a)

	tbl.Exit()

	if a.State != kconst.ProcExited {
		t.Fatalf("expected A to be marked EXITED")
	}
	if tbl.Current() != b {
		t.Fatalf("expected Exit to yield to B")
	}
}
