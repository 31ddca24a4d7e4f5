package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/regs"
)

// parseLine decodes one source line into either an Instruction (isInst
// true) or a bare data word (isInst false, e.g. a line that is just a hex
// literal used to preload a memory cell).
func parseLine(line string, idx int) (inst *insts.Instruction, word int64, isInst bool, err error) {
	segments := strings.Fields(strings.ToUpper(line))
	mnemonic := segments[0]
	args := segments[1:]

	switch mnemonic {
	case "AND":
		inst, err = binaryALU(insts.OpAnd, args, line, idx)
	case "OR":
		inst, err = binaryALU(insts.OpOr, args, line, idx)
	case "XOR":
		inst, err = binaryALU(insts.OpXor, args, line, idx)
	case "NOT":
		inst, err = unaryALU(insts.OpNot, args, line, idx)
	case "LNOT":
		inst, err = unaryALU(insts.OpLogicalNot, args, line, idx)
	case "ADD":
		inst, err = binaryALU(insts.OpAdd, args, line, idx)
	case "ADDI":
		inst, err = immediateALU(insts.OpAddI, args, line, idx)
	case "SUB":
		inst, err = binaryALU(insts.OpSub, args, line, idx)
	case "SUBI":
		inst, err = immediateALU(insts.OpSubI, args, line, idx)
	case "MUL":
		inst, err = binaryALU(insts.OpMul, args, line, idx)
	case "MULI":
		inst, err = immediateALU(insts.OpMulI, args, line, idx)
	case "DIV":
		inst, err = binaryALU(insts.OpDiv, args, line, idx)
	case "LT":
		inst, err = binaryALU(insts.OpLt, args, line, idx)
	case "GT":
		inst, err = binaryALU(insts.OpGt, args, line, idx)
	case "EQ":
		inst, err = binaryALU(insts.OpEq, args, line, idx)
	case "LSHIFT":
		inst, err = binaryALU(insts.OpLsh, args, line, idx)
	case "LSHIFTI":
		inst, err = immediateALU(insts.OpLshI, args, line, idx)
	case "RSHIFT":
		inst, err = binaryALU(insts.OpRsh, args, line, idx)
	case "RSHIFTI":
		inst, err = immediateALU(insts.OpRshI, args, line, idx)

	case "LDW":
		inst, err = loadWord(args, line, idx)
	case "LDWI":
		inst, err = loadWordImm(args, line, idx)
	case "LDWC":
		inst, err = loadWordConst(args, line, idx)
	case "LDWIC":
		inst, err = loadWordConstImm(args, line, idx)
	case "STW":
		inst, err = storeWord(args, line, idx)
	case "STWI":
		inst, err = storeWordImm(args, line, idx)

	case "JMP":
		inst, err = jump(args, line, idx)
	case "JMPAI":
		inst, err = jumpImm(args, line, idx)
	case "BRAT":
		inst, err = branch(args, line, idx)
	case "BRATI":
		inst, err = branchImm(args, line, idx)
	case "HALT":
		if err = wantOperands("HALT", args, line, idx, 0); err == nil {
			inst = insts.NewHalt()
		}
	case "NOP":
		if err = wantOperands("NOP", args, line, idx, 0); err == nil {
			inst = insts.NewNoOp()
		}

	default:
		word, err = strconv.ParseInt(strings.TrimPrefix(strings.ToLower(mnemonic), "0x"), 16, 64)
		if err != nil {
			return nil, 0, false, &ParseError{Line: idx, Text: line, Msg: fmt.Sprintf("unrecognised instruction %q", mnemonic)}
		}
		return nil, word, false, nil
	}

	if err != nil {
		return nil, 0, false, err
	}
	return inst, 0, true, nil
}

func wantOperands(mnemonic string, args []string, line string, idx int, n int) error {
	if len(args) != n {
		return &ParseError{
			Line: idx, Text: line,
			Msg: fmt.Sprintf("%s expects %d operand(s), got %d", mnemonic, n, len(args)),
		}
	}
	return nil
}

func parseReg(s string, line string, idx int) (regs.Arch, error) {
	if len(s) < 2 || s[0] != 'R' {
		return 0, &ParseError{Line: idx, Text: line, Msg: "unrecognised register " + s}
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n >= regs.NumArch {
		return 0, &ParseError{Line: idx, Text: line, Msg: "unrecognised register " + s}
	}
	return regs.Arch(n), nil
}

func parseImmArg(s string, line string, idx int) (int64, error) {
	v, err := parseImm(s)
	if err != nil {
		return 0, &ParseError{Line: idx, Text: line, Msg: "error interpreting immediate value " + s}
	}
	return v, nil
}

func binaryALU(op insts.Op, args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands(op.String(), args, line, idx, 3); err != nil {
		return nil, err
	}
	dest, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	op1, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	op2, err := parseReg(args[2], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewBinaryALU(op, dest, op1, op2), nil
}

func unaryALU(op insts.Op, args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands(op.String(), args, line, idx, 2); err != nil {
		return nil, err
	}
	dest, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	src, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewUnaryALU(op, dest, src), nil
}

func immediateALU(op insts.Op, args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands(op.String(), args, line, idx, 3); err != nil {
		return nil, err
	}
	dest, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	op1, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	imm, err := parseImmArg(args[2], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewImmediateALU(op, dest, op1, imm), nil
}

func loadWord(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("LDW", args, line, idx, 3); err != nil {
		return nil, err
	}
	dst, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	base, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	offset, err := parseReg(args[2], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewLoadWord(dst, base, offset), nil
}

func loadWordImm(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("LDWI", args, line, idx, 3); err != nil {
		return nil, err
	}
	dst, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	base, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	imm, err := parseImmArg(args[2], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewLoadWordImm(dst, base, imm), nil
}

func loadWordConst(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("LDWC", args, line, idx, 2); err != nil {
		return nil, err
	}
	dst, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	addrReg, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewLoadWordConst(dst, addrReg), nil
}

func loadWordConstImm(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("LDWIC", args, line, idx, 2); err != nil {
		return nil, err
	}
	dst, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	addr, err := parseImmArg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewLoadWordConstImm(dst, addr), nil
}

func storeWord(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("STW", args, line, idx, 2); err != nil {
		return nil, err
	}
	addrReg, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	src, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewStoreWord(addrReg, src), nil
}

func storeWordImm(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("STWI", args, line, idx, 2); err != nil {
		return nil, err
	}
	addrReg, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	data, err := parseImmArg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewStoreWordImm(addrReg, data), nil
}

func jump(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("JMP", args, line, idx, 1); err != nil {
		return nil, err
	}
	reg, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewJumpAbsolute(reg), nil
}

func jumpImm(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("JMPAI", args, line, idx, 1); err != nil {
		return nil, err
	}
	addr, err := parseImmArg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewJumpAbsoluteImm(addr), nil
}

func branch(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("BRAT", args, line, idx, 2); err != nil {
		return nil, err
	}
	cond, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	loc, err := parseReg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewBranchAbsoluteTrue(cond, loc), nil
}

func branchImm(args []string, line string, idx int) (*insts.Instruction, error) {
	if err := wantOperands("BRATI", args, line, idx, 2); err != nil {
		return nil, err
	}
	cond, err := parseReg(args[0], line, idx)
	if err != nil {
		return nil, err
	}
	addr, err := parseImmArg(args[1], line, idx)
	if err != nil {
		return nil, err
	}
	return insts.NewBranchAbsoluteTrueImm(cond, addr), nil
}
