package pipeline

import (
	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/regs"
	"github.com/sarchlab/rrsim/timing/config"
)

// Control is the front end of the pipeline: it owns the program counter and
// the IF/ID latch, runs Fetch and Decode, and doubles as the functional unit
// that executes the four control-transfer mnemonics (JMP, JMPAI, BRAT,
// BRATI) plus HALT and NOP.
//
// Branch prediction is always-not-taken: Fetch keeps advancing sequentially
// through a conditional branch instead of stalling for its outcome. Decode
// enforces the other half of that bet itself — while a branch or jump sits
// unresolved in Control's own latch, Decode will not dispatch whatever
// Fetch brings in behind it, so at most one instruction is ever fetched
// down the wrong path. A misprediction discards that one instruction and
// redirects the PC; predicting correctly costs nothing beyond the stall.
//
// Unconditional jumps carry no uncertainty, so Decode resolves them on the
// spot rather than waiting a cycle in Control's latch.
type Control struct {
	memUnit *MemoryUnit
	aluUnit *ALUUnit
	regFile *regs.RegisterFile
	wb      *WriteBack
	cfg     *config.Config

	pc   int64
	ifid *insts.Instruction

	current     *insts.Instruction
	predictedPC int64

	Halted bool

	Branches    uint64
	Mispredicts uint64
}

// NewControl creates a Control unit that begins fetching at startPC.
func NewControl(memUnit *MemoryUnit, aluUnit *ALUUnit, regFile *regs.RegisterFile, wb *WriteBack, cfg *config.Config, startPC int64) *Control {
	return &Control{memUnit: memUnit, aluUnit: aluUnit, regFile: regFile, wb: wb, cfg: cfg, pc: startPC}
}

// PC returns the next address Fetch will read from.
func (c *Control) PC() int64 {
	return c.pc
}

// IsIdle reports whether the front end holds no fetched or latched
// instruction, used by the driver's post-HALT drain check.
func (c *Control) IsIdle() bool {
	return c.ifid == nil && c.current == nil
}

// Fetch reads the instruction at PC into the IF/ID latch and advances PC.
// It is a no-op if the latch is already occupied (Decode hasn't consumed
// the previous fetch yet) or the processor has halted. A cell that holds no
// instruction is an AddressingError, except while a control instruction is
// latched in Control: that instruction may halt or redirect, so Fetch
// leaves the latch empty and PC unchanged and tries again next cycle.
func (c *Control) Fetch() error {
	if c.Halted || c.ifid != nil {
		return nil
	}
	inst, err := c.memUnit.Memory().GetInstruction(c.pc)
	if err != nil {
		if c.current != nil {
			return nil
		}
		return err
	}
	c.ifid = inst.Clone()
	c.pc++
	return nil
}

// writeInFlight reports whether ALU's, Memory's, or Control's own latched
// instruction will write physical register p. This is the first of §4.6
// Phase 1 step 3's three stall conditions, and it is unconditional: it
// applies regardless of ForwardResults, since no forwarding path exists
// before a unit has even computed a result to forward.
func (c *Control) writeInFlight(p regs.Phys) bool {
	if alu := c.aluUnit.Instruction(); alu != nil && alu.HasDest && alu.Dest.Phys() == p {
		return true
	}
	if m := c.memUnit.Instruction(); m != nil && m.HasDest && m.Dest.Phys() == p {
		return true
	}
	if c.current != nil && c.current.HasDest && c.current.Dest.Phys() == p {
		return true
	}
	return false
}

// forwardPending reports whether a value for p is sitting in Memory's
// EX/MEM forwarding slot or WriteBack's retirement queue. This is the third
// of §4.6 Phase 1 step 3's stall conditions, and it is the only one of the
// three gated by ForwardResults: with forwarding enabled, that pending
// value is itself a valid substitute for the read, so it is not a hazard.
func (c *Control) forwardPending(p regs.Phys) bool {
	if _, ok := c.memUnit.ForwardResult(p); ok {
		return true
	}
	if _, ok := c.wb.ForwardResult(p); ok {
		return true
	}
	return false
}

// CheckHazards reports whether dispatching inst this cycle must wait. Per
// §4.6 Phase 1 step 3, for each source (plus the destination too, when
// renaming is disabled): a unit already writing it, or a queued Memory
// action about to write it, stalls unconditionally; a value merely
// forwarded-but-not-yet-retired stalls only when ForwardResults is off.
func (c *Control) CheckHazards(inst *insts.Instruction) bool {
	rat := c.regFile.RAT()

	sources := inst.Sources()
	if inst.HasDest && !c.cfg.RenameRegisters {
		sources = append(sources, inst.Dest)
	}

	for _, src := range sources {
		p := rat[src.Arch()]

		if c.writeInFlight(p) || c.memUnit.WillChangeReg(p) {
			return true
		}
		if !c.cfg.ForwardResults && c.forwardPending(p) {
			return true
		}
	}

	return false
}

// IsAvailable reports whether Control's own execute-stage latch is free —
// one of the three units §4.6 Phase 2 step 2's occupancy count considers.
func (c *Control) IsAvailable() bool {
	return c.current == nil
}

// Decode inspects the IF/ID latch and, if the instruction is hazard-free,
// either resolves it on the spot (an unconditional jump, which touches no
// functional unit and so is never subject to the occupancy gate below) or,
// once all three EX-stage units are free, renames its operands and
// dispatches it. It stalls silently otherwise, leaving the latch intact for
// a retry next cycle.
//
// jumpResolved reports whether this call redirected PC via an unconditional
// jump; the driver must skip Fetch the same cycle (§4.7 step 6; §8's
// testable property that a jump's new PC is never observed by Fetch until
// the following cycle).
func (c *Control) Decode() (retired bool, jumpResolved bool) {
	if c.ifid == nil {
		return false, false
	}
	inst := c.ifid

	if c.CheckHazards(inst) {
		return false, false
	}

	if inst.Op.Category() == insts.CategoryControl && inst.Op.IsJump() {
		inst.RewriteSources(c.regFile.RAT())
		newPC, _ := inst.Eval(c.regFile, c.pc)
		if newPC != nil {
			c.pc = *newPC
		}
		c.ifid = nil
		return true, true
	}

	occupied := 0
	if !c.IsAvailable() {
		occupied++
	}
	if !c.memUnit.IsAvailable() {
		occupied++
	}
	if !c.aluUnit.IsAvailable() {
		occupied++
	}
	if occupied != 0 {
		return false, false
	}

	inst.RewriteSources(c.regFile.RAT())

	if inst.HasDest {
		if c.cfg.RenameRegisters {
			p, err := c.regFile.Alias(inst.Dest.Arch())
			if err != nil {
				return false, false
			}
			inst.RewriteDest(p)
		} else {
			inst.RewriteDest(c.regFile.RAT()[inst.Dest.Arch()])
		}
	}

	c.ifid = nil

	switch inst.Op.Category() {
	case insts.CategoryALU:
		c.aluUnit.GiveInstruction(inst)
	case insts.CategoryMemory:
		c.memUnit.GiveInstruction(inst)
	case insts.CategoryControl:
		c.current = inst
		c.predictedPC = c.pc
	}

	return false, false
}

// Execute resolves whatever control instruction is latched: HALT stops the
// processor, NOP retires doing nothing, and a branch compares its outcome
// against the always-not-taken prediction, flushing the IF/ID latch and
// redirecting PC on a misprediction. Per §4.6 Execute(control) and §9's
// open question preserving this quirk deliberately, evaluation waits for
// ¬Memory.is_mem_busy() — the in-order commit discipline ALU's Execute
// enforces on its own half of this same rule.
//
// pcChanged reports whether this call redirected PC (a taken-branch
// misprediction); the driver must skip Fetch the same cycle, just as it
// does for jumpResolved from Decode.
func (c *Control) Execute() (retired bool, pcChanged bool) {
	if c.current == nil {
		return false, false
	}
	if c.memUnit.IsMemBusy() {
		return false, false
	}
	inst := c.current

	switch inst.Op {
	case insts.OpHalt:
		c.Halted = true
		c.current = nil
		return true, false

	case insts.OpNoOp:
		c.current = nil
		return true, false

	case insts.OpBranchTrue, insts.OpBranchTrueImm:
		if c.cfg.ForwardResults {
			forwardSources(inst, c.regFile, c.memUnit, c.wb)
		}
		c.Branches++
		newPC, _ := inst.Eval(c.regFile, c.pc)
		c.current = nil
		if newPC != nil && *newPC != c.predictedPC {
			c.Mispredicts++
			c.pc = *newPC
			c.ifid = nil
			return true, true
		}
		return true, false
	}
	return false, false
}
