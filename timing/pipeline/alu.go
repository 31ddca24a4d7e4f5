package pipeline

import (
	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/regs"
	"github.com/sarchlab/rrsim/timing/config"
)

// ALUUnit is the ALU (1-cycle logic/arith, 10-cycle mul/div) functional
// unit of §4.5. It forwards its result through the Memory unit
// to WriteBack rather than writing the register file directly.
type ALUUnit struct {
	regFile *regs.RegisterFile
	memUnit *MemoryUnit
	wb      *WriteBack
	clock   *Clock
	cfg     *config.Config

	current  *insts.Instruction
	finishAt *uint64
}

// NewALUUnit creates an ALU unit over the given peers.
func NewALUUnit(regFile *regs.RegisterFile, memUnit *MemoryUnit, wb *WriteBack, clock *Clock, cfg *config.Config) *ALUUnit {
	return &ALUUnit{regFile: regFile, memUnit: memUnit, wb: wb, clock: clock, cfg: cfg}
}

// GiveInstruction latches an ALU instruction. Callers must check
// IsAvailable first.
func (u *ALUUnit) GiveInstruction(inst *insts.Instruction) {
	u.current = inst
}

// Instruction returns the currently latched instruction, or nil.
func (u *ALUUnit) Instruction() *insts.Instruction {
	return u.current
}

// IsAvailable reports whether the unit holds no instruction.
func (u *ALUUnit) IsAvailable() bool {
	return u.current == nil
}

// Execute advances the latched instruction by one cycle. On the first call
// it starts the latency timer; once the timer has elapsed it computes the
// result and attempts to forward it to Memory. If Memory is busy, the
// result is dropped and the instruction stays latched; the retry next cycle
// computes it again.
func (u *ALUUnit) Execute() bool {
	if u.current == nil {
		return false
	}

	if u.finishAt == nil {
		finish := u.clock.Now() + latencyFor(u.cfg, u.current)
		u.finishAt = &finish
	}

	if u.clock.Now()+1 < *u.finishAt {
		return false
	}

	if u.cfg.ForwardResults {
		forwardSources(u.current, u.regFile, u.memUnit, u.wb)
	}

	result := u.current.Compute(u.regFile)

	if u.memUnit.IsMemBusy() {
		return false
	}

	u.memUnit.PassToWB(WriteBackAction{Reg: u.current.Dest.Phys(), Data: result})
	u.current = nil
	u.finishAt = nil
	return true
}
