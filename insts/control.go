package insts

import "github.com/sarchlab/rrsim/regs"

// NewJumpAbsolute builds `PC = REG[reg]`.
func NewJumpAbsolute(reg regs.Arch) *Instruction {
	return &Instruction{Op: OpJump, NumSrcRegs: 1, Src1: regs.ArchRef(reg)}
}

// NewJumpAbsoluteImm builds `PC = #addr`.
func NewJumpAbsoluteImm(addr int64) *Instruction {
	return &Instruction{Op: OpJumpImm, HasImm: true, Imm: addr}
}

// NewBranchAbsoluteTrue builds `if REG[cond] != 0 { PC = REG[loc] }`.
func NewBranchAbsoluteTrue(cond, loc regs.Arch) *Instruction {
	return &Instruction{
		Op:         OpBranchTrue,
		NumSrcRegs: 2, Src1: regs.ArchRef(loc), Src2: regs.ArchRef(cond),
	}
}

// NewBranchAbsoluteTrueImm builds `if REG[cond] != 0 { PC = #addr }`.
func NewBranchAbsoluteTrueImm(cond regs.Arch, addr int64) *Instruction {
	return &Instruction{
		Op:         OpBranchTrueImm,
		NumSrcRegs: 1, Src1: regs.ArchRef(cond),
		HasImm: true, Imm: addr,
	}
}

// NewHalt builds the HALT instruction.
func NewHalt() *Instruction { return &Instruction{Op: OpHalt} }

// NewNoOp builds the NOP instruction.
func NewNoOp() *Instruction { return &Instruction{Op: OpNoOp} }

// Eval evaluates a control instruction against the current PC, returning
// the new PC (nil if unchanged) and whether HALT was encountered. Branch
// conditions and jump targets are read from the already-renamed source
// registers.
func (i *Instruction) Eval(rf *regs.RegisterFile, pc int64) (newPC *int64, halted bool) {
	switch i.Op {
	case OpJump:
		target := rf.Read(i.Src1)
		return &target, false

	case OpJumpImm:
		return &i.Imm, false

	case OpBranchTrue:
		cond := rf.Read(i.Src2)
		if cond != 0 {
			target := rf.Read(i.Src1)
			return &target, false
		}
		return nil, false

	case OpBranchTrueImm:
		cond := rf.Read(i.Src1)
		if cond != 0 {
			return &i.Imm, false
		}
		return nil, false

	case OpHalt:
		return nil, true

	case OpNoOp:
		return nil, false

	default:
		panic("insts: Eval called on a non-control instruction")
	}
}
