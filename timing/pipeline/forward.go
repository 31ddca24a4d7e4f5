package pipeline

import (
	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/regs"
)

// forwardSources copies any value waiting in the EX/MEM (MemoryUnit) or
// MEM/WB (WriteBack) forwarding paths into the register file for each
// already-renamed source of inst, immediately ahead of a functional unit
// reading those sources to compute. This is what "ForwardResults" buys a
// consumer: without it, a source whose producer has not yet retired reads
// the stale value still sitting in the register file.
func forwardSources(inst *insts.Instruction, rf *regs.RegisterFile, mem *MemoryUnit, wb *WriteBack) {
	for _, src := range inst.Sources() {
		if !src.Renamed {
			continue
		}
		p := src.Phys()
		if v, ok := mem.ForwardResult(p); ok {
			rf.Write(p, v)
			continue
		}
		if v, ok := wb.ForwardResult(p); ok {
			rf.Write(p, v)
		}
	}
}
