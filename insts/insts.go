// Package insts defines the instruction taxonomy executed by the pipeline:
// a single tagged Instruction value plus the three functional-unit
// categories (ALU, Memory, Control) it can belong to.
//
// The instruction model favors a sum type over a deep interface hierarchy:
// one Op enum dispatched with a switch in each stage, rather than a
// polymorphic class per mnemonic. This keeps renaming, hazard detection and
// dispatch — which all need to inspect "does this instruction have a
// destination/source register" generically — as plain field reads instead
// of interface assertions.
package insts

import (
	"fmt"

	"github.com/sarchlab/rrsim/regs"
)

// Op names every mnemonic the simulator understands.
type Op uint8

// ALU, Memory and Control opcodes. Mnemonics map 1:1 onto §3's taxonomy.
const (
	OpAnd Op = iota
	OpOr
	OpXor
	OpNot
	OpLogicalNot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLt
	OpGt
	OpEq
	OpLsh
	OpRsh
	OpAddI
	OpSubI
	OpMulI
	OpLshI
	OpRshI

	OpLoadWord
	OpLoadWordImm
	OpLoadWordConst
	OpLoadWordConstImm
	OpStoreWord
	OpStoreWordImm

	OpJump
	OpJumpImm
	OpBranchTrue
	OpBranchTrueImm
	OpHalt
	OpNoOp
)

// Category identifies which functional unit executes an Op.
type Category uint8

// The three functional-unit categories.
const (
	CategoryALU Category = iota
	CategoryMemory
	CategoryControl
)

var categories = map[Op]Category{
	OpAnd: CategoryALU, OpOr: CategoryALU, OpXor: CategoryALU, OpNot: CategoryALU,
	OpLogicalNot: CategoryALU, OpAdd: CategoryALU, OpSub: CategoryALU,
	OpMul: CategoryALU, OpDiv: CategoryALU, OpLt: CategoryALU, OpGt: CategoryALU,
	OpEq: CategoryALU, OpLsh: CategoryALU, OpRsh: CategoryALU, OpAddI: CategoryALU,
	OpSubI: CategoryALU, OpMulI: CategoryALU, OpLshI: CategoryALU, OpRshI: CategoryALU,

	OpLoadWord: CategoryMemory, OpLoadWordImm: CategoryMemory,
	OpLoadWordConst: CategoryMemory, OpLoadWordConstImm: CategoryMemory,
	OpStoreWord: CategoryMemory, OpStoreWordImm: CategoryMemory,

	OpJump: CategoryControl, OpJumpImm: CategoryControl,
	OpBranchTrue: CategoryControl, OpBranchTrueImm: CategoryControl,
	OpHalt: CategoryControl, OpNoOp: CategoryControl,
}

var mnemonics = map[Op]string{
	OpAnd: "AND", OpOr: "OR", OpXor: "XOR", OpNot: "NOT", OpLogicalNot: "LNOT",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpDiv: "DIV", OpLt: "LT", OpGt: "GT",
	OpEq: "EQ", OpLsh: "LSHIFT", OpRsh: "RSHIFT", OpAddI: "ADDI", OpSubI: "SUBI",
	OpMulI: "MULI", OpLshI: "LSHIFTI", OpRshI: "RSHIFTI",
	OpLoadWord: "LDW", OpLoadWordImm: "LDWI", OpLoadWordConst: "LDWC",
	OpLoadWordConstImm: "LDWIC", OpStoreWord: "STW", OpStoreWordImm: "STWI",
	OpJump: "JMP", OpJumpImm: "JMPAI", OpBranchTrue: "BRAT",
	OpBranchTrueImm: "BRATI", OpHalt: "HALT", OpNoOp: "NOP",
}

// Category reports which functional unit executes op.
func (op Op) Category() Category { return categories[op] }

// String returns the assembly mnemonic for op.
func (op Op) String() string { return mnemonics[op] }

// Instruction is a single decoded instruction. Register operands begin
// life as Arch Refs and are rewritten to Phys Refs in place by Decode.
type Instruction struct {
	Op Op

	HasDest bool
	Dest    regs.Ref

	// Register-valued sources, in operand order. Not all slots are used by
	// every Op; NumSrcRegs reports how many of Src1/Src2 are live.
	NumSrcRegs int
	Src1       regs.Ref
	Src2       regs.Ref

	// Imm holds an immediate operand for *I variants, stores, and the
	// absolute-address forms. HasImm distinguishes "no immediate" from a
	// legitimate zero immediate.
	HasImm bool
	Imm    int64
}

// Clone returns a deep (field-wise) copy suitable for in-place renaming
// without mutating the instruction still latched in IR.
func (i *Instruction) Clone() *Instruction {
	cp := *i
	return &cp
}

// Sources returns the register operands (never immediates) that hazard
// detection and renaming must consider.
func (i *Instruction) Sources() []regs.Ref {
	out := make([]regs.Ref, 0, 2)
	if i.NumSrcRegs >= 1 {
		out = append(out, i.Src1)
	}
	if i.NumSrcRegs >= 2 {
		out = append(out, i.Src2)
	}
	return out
}

// RewriteSources rewrites every unrenamed source Ref to the Phys id the RAT
// currently maps its Arch register to.
func (i *Instruction) RewriteSources(rat [regs.NumArch]regs.Phys) {
	if i.NumSrcRegs >= 1 && !i.Src1.Renamed {
		i.Src1.Rename(rat[i.Src1.Arch()])
	}
	if i.NumSrcRegs >= 2 && !i.Src2.Renamed {
		i.Src2.Rename(rat[i.Src2.Arch()])
	}
}

// RewriteDest rewrites the destination Ref to name the freshly aliased
// physical register p.
func (i *Instruction) RewriteDest(p regs.Phys) {
	i.Dest.Rename(p)
}

// Latency returns the number of cycles a functional unit must hold this
// instruction before its result commits: 1 for simple ALU ops, 10 for
// multiply/divide, 100 for memory ops, 1 for control ops.
func (i *Instruction) Latency() int {
	switch i.Op {
	case OpMul, OpMulI, OpDiv:
		return 10
	case OpLoadWord, OpLoadWordImm, OpLoadWordConst, OpLoadWordConstImm,
		OpStoreWord, OpStoreWordImm:
		return 100
	default:
		return 1
	}
}

// IsBranchOrJump reports whether op is one of the four control-transfer
// mnemonics the always-not-taken predictor and early-jump-resolution logic
// care about.
func (op Op) IsBranchOrJump() bool {
	switch op {
	case OpJump, OpJumpImm, OpBranchTrue, OpBranchTrueImm:
		return true
	default:
		return false
	}
}

// IsJump reports whether op is an unconditional jump, resolved early at
// Decode rather than at Execute.
func (op Op) IsJump() bool {
	return op == OpJump || op == OpJumpImm
}

func (i *Instruction) String() string {
	return fmt.Sprintf("%s dest=%v src1=%v src2=%v imm=%v", i.Op, i.Dest, i.Src1, i.Src2, i.Imm)
}
