package insts

import "github.com/sarchlab/rrsim/regs"

// NewBinaryALU builds a two-register-source ALU instruction (AND, OR, XOR,
// ADD, SUB, MUL, DIV, LT, GT, EQ, LSHIFT, RSHIFT).
func NewBinaryALU(op Op, dest, op1, op2 regs.Arch) *Instruction {
	return &Instruction{
		Op: op, HasDest: true, Dest: regs.ArchRef(dest),
		NumSrcRegs: 2, Src1: regs.ArchRef(op1), Src2: regs.ArchRef(op2),
	}
}

// NewUnaryALU builds a one-register-source ALU instruction (NOT, LNOT).
func NewUnaryALU(op Op, dest, src regs.Arch) *Instruction {
	return &Instruction{
		Op: op, HasDest: true, Dest: regs.ArchRef(dest),
		NumSrcRegs: 1, Src1: regs.ArchRef(src),
	}
}

// NewImmediateALU builds an immediate-form ALU instruction (ADDI, SUBI,
// MULI, LSHIFTI, RSHIFTI): dest = op(op1, imm).
func NewImmediateALU(op Op, dest, op1 regs.Arch, imm int64) *Instruction {
	return &Instruction{
		Op: op, HasDest: true, Dest: regs.ArchRef(dest),
		NumSrcRegs: 1, Src1: regs.ArchRef(op1),
		HasImm: true, Imm: imm,
	}
}

// Compute evaluates the instruction's arithmetic/logic result. It is a pure
// function of the (already renamed) source register values and any
// immediate: the ALU unit reads the operands, calls Compute, and deposits
// the result as a pending write.
func (i *Instruction) Compute(rf *regs.RegisterFile) int64 {
	a := rf.Read(i.Src1)
	var b int64
	if i.HasImm {
		b = i.Imm
	} else if i.NumSrcRegs >= 2 {
		b = rf.Read(i.Src2)
	}

	switch i.Op {
	case OpAnd:
		return a & b
	case OpOr:
		return a | b
	case OpXor:
		return a ^ b
	case OpNot:
		return ^a
	case OpLogicalNot:
		return boolToInt(a == 0)
	case OpAdd, OpAddI:
		return a + b
	case OpSub, OpSubI:
		return a - b
	case OpMul, OpMulI:
		return a * b
	case OpDiv:
		return floorDiv(a, b)
	case OpLt:
		return boolToInt(a < b)
	case OpGt:
		return boolToInt(a > b)
	case OpEq:
		return boolToInt(a == b)
	case OpLsh, OpLshI:
		return a << uint64(b)
	case OpRsh, OpRshI:
		return a >> uint64(b)
	default:
		panic("insts: Compute called on a non-ALU instruction")
	}
}

// floorDiv implements division that floors toward negative infinity,
// matching the arbitrary-precision floor-divide semantics of the
// reference's Python // operator.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
