// Package trap implements the trap entry/exit path and syscall dispatch
// (C6): kernelEntry (assembly) builds a 31-word register frame on the
// current process's kernel stack via an sscratch swap, then calls
// Dispatch with the frame and the three trap CSRs.
//
// Grounded on the teacher's defs.TrapFrame (in defs/defs.go), which also
// gives the raw pushed-register block a typed Go view instead of manual
// offset arithmetic at every call site.
package trap

// Frame mirrors the 31 words kernelEntry pushes, in push order: ra, gp, tp,
// t0-t6, a0-a7, s0-s11, then the saved user sp (originally in sscratch).
// x0 (always zero) and x2 (sp, handled specially) are not part of the
// frame, per spec.md §4.6 step 2.
type Frame struct {
	RA, GP, TP                                       uint32
	T0, T1, T2, T3, T4, T5, T6                       uint32
	A0, A1, A2, A3, A4, A5, A6, A7                    uint32
	S0, S1, S2, S3, S4, S5, S6, S7, S8, S9, S10, S11  uint32
	UserSP                                            uint32
}
