package diag

import (
	"strings"
	"testing"
)

func TestStringIncludesAllFields(t *testing.T) {
	r := FaultReport{Scause: 0x7, Stval: 0x1000, Sepc: 0x80201000, Instruction: "ADD"}
	s := r.String()
	for _, want := range []string{"0x7", "0x1000", "0x80201000", `"ADD"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() = %q, missing %q", s, want)
		}
	}
}

func TestDecodeFallsBackOnUndecodableBytes(t *testing.T) {
	// All-zero bytes are not a valid RISC-V encoding; Decode must not panic
	// and must surface a placeholder instead.
	r := Decode(0x7, 0, 0x1000, []byte{0, 0, 0, 0})
	if r.Instruction == "" {
		t.Fatalf("expected a non-empty Instruction even when decode fails")
	}
}
