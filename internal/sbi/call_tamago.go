//go:build tamago

package sbi

// call issues the ecall per the SBI calling convention and returns
// {error, value} from a0, a1. Implemented in call_tamago.s.
func call(arg0, arg1, arg2, arg3, arg4, arg5, fid, eid uint32) (int32, int32)
