package riscv

import "fmt"

// FatalError is returned from Execute when the core hits an
// unrecoverable condition — currently only fetch-out-of-range (spec
// section 7). It carries the PC at the point of failure and the call
// trace at that moment, mirroring original_source/cpu.c's combined
// "print PC, dump trace, exit" fatal path, generalized into a value
// the host decides how to report rather than a hardcoded exit.
type FatalError struct {
	PC    uint32
	Trace string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("riscv: fatal fetch out of range at PC=0x%08X\n%s", e.PC, e.Trace)
}
