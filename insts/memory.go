package insts

import "github.com/sarchlab/rrsim/regs"

// MemAction is the pure result of a Memory instruction's compute-address
// step. Exactly one of Data or Register is set: a store carries the value
// to write, a load carries the destination register to receive the value
// once the access completes.
type MemAction struct {
	Address  int64
	Data     *int64
	Register *regs.Phys
}

// NewLoadWord builds `dst = MEM[base + offset]` (register + register).
func NewLoadWord(dst, base, offset regs.Arch) *Instruction {
	return &Instruction{
		Op: OpLoadWord, HasDest: true, Dest: regs.ArchRef(dst),
		NumSrcRegs: 2, Src1: regs.ArchRef(base), Src2: regs.ArchRef(offset),
	}
}

// NewLoadWordImm builds `dst = MEM[base + #imm]`.
func NewLoadWordImm(dst, base regs.Arch, imm int64) *Instruction {
	return &Instruction{
		Op: OpLoadWordImm, HasDest: true, Dest: regs.ArchRef(dst),
		NumSrcRegs: 1, Src1: regs.ArchRef(base),
		HasImm: true, Imm: imm,
	}
}

// NewLoadWordConst builds `dst = MEM[addrReg]`.
func NewLoadWordConst(dst, addrReg regs.Arch) *Instruction {
	return &Instruction{
		Op: OpLoadWordConst, HasDest: true, Dest: regs.ArchRef(dst),
		NumSrcRegs: 1, Src1: regs.ArchRef(addrReg),
	}
}

// NewLoadWordConstImm builds `dst = MEM[#addr]`.
func NewLoadWordConstImm(dst regs.Arch, addr int64) *Instruction {
	return &Instruction{
		Op: OpLoadWordConstImm, HasDest: true, Dest: regs.ArchRef(dst),
		HasImm: true, Imm: addr,
	}
}

// NewStoreWord builds `MEM[addrReg] = srcReg`.
func NewStoreWord(addrReg, src regs.Arch) *Instruction {
	return &Instruction{
		Op:         OpStoreWord,
		NumSrcRegs: 2, Src1: regs.ArchRef(addrReg), Src2: regs.ArchRef(src),
	}
}

// NewStoreWordImm builds `MEM[addrReg] = #data`.
func NewStoreWordImm(addrReg regs.Arch, data int64) *Instruction {
	return &Instruction{
		Op:         OpStoreWordImm,
		NumSrcRegs: 1, Src1: regs.ArchRef(addrReg),
		HasImm: true, Imm: data,
	}
}

// Action computes the memory address and, for stores, the data word, from
// the (already renamed) operand register values. It never touches memory
// itself: the Memory unit enqueues the result and drains it over multiple
// cycles.
func (i *Instruction) Action(rf *regs.RegisterFile) MemAction {
	switch i.Op {
	case OpLoadWord:
		addr := rf.Read(i.Src1) + rf.Read(i.Src2)
		p := i.Dest.Phys()
		return MemAction{Address: addr, Register: &p}

	case OpLoadWordImm:
		addr := rf.Read(i.Src1) + i.Imm
		p := i.Dest.Phys()
		return MemAction{Address: addr, Register: &p}

	case OpLoadWordConst:
		addr := rf.Read(i.Src1)
		p := i.Dest.Phys()
		return MemAction{Address: addr, Register: &p}

	case OpLoadWordConstImm:
		p := i.Dest.Phys()
		return MemAction{Address: i.Imm, Register: &p}

	case OpStoreWord:
		addr := rf.Read(i.Src1)
		data := rf.Read(i.Src2)
		return MemAction{Address: addr, Data: &data}

	case OpStoreWordImm:
		addr := rf.Read(i.Src1)
		data := i.Imm
		return MemAction{Address: addr, Data: &data}

	default:
		panic("insts: Action called on a non-memory instruction")
	}
}

// IsLoad reports whether op reads memory into a register (as opposed to
// writing a register's or immediate's value to memory).
func (op Op) IsLoad() bool {
	switch op {
	case OpLoadWord, OpLoadWordImm, OpLoadWordConst, OpLoadWordConstImm:
		return true
	default:
		return false
	}
}
