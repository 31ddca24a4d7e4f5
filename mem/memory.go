// Package mem provides the flat 32 000-word address space shared by
// program and data: the same array the loader writes the assembled image
// into and the Memory functional unit reads instructions and data from.
package mem

import (
	"fmt"

	"github.com/sarchlab/rrsim/insts"
)

// Size is the number of addressable cells.
const Size = 32000

// Cell is the untimed contents of one memory address: either empty, a data
// word, or a decoded instruction. Exactly one of the three is meaningful at
// a time (Empty implies Word and Inst are both zero-valued).
type Cell struct {
	Empty bool
	Word  int64
	Inst  *insts.Instruction
}

// AddressingError is returned by GetInstruction when the address holds a
// plain data word or nothing instead of an instruction.
type AddressingError struct {
	Address int
	Want    string
	Got     string
}

func (e *AddressingError) Error() string {
	return fmt.Sprintf("address %d: expected %s, found %s", e.Address, e.Want, e.Got)
}

// Memory is the flat, untimed backing store. Timed access (the 100-cycle
// load/store engine) lives in the Memory functional unit in
// timing/pipeline; this type only models storage.
type Memory struct {
	cells [Size]Cell
}

// New creates an empty Memory.
func New() *Memory {
	m := &Memory{}
	for i := range m.cells {
		m.cells[i] = Cell{Empty: true}
	}
	return m
}

// Get returns the cell at address, untimed.
func (m *Memory) Get(address int64) Cell {
	return m.cells[address]
}

// Set writes a data word at address, untimed.
func (m *Memory) Set(address int64, v int64) {
	m.cells[address] = Cell{Word: v}
}

// SetInstruction writes a decoded instruction at address, untimed. Used by
// the loader when assembling the initial image.
func (m *Memory) SetInstruction(address int64, inst *insts.Instruction) {
	m.cells[address] = Cell{Inst: inst}
}

// GetInstruction returns the instruction at address, or an AddressingError
// if the cell holds data (or nothing) instead.
func (m *Memory) GetInstruction(address int64) (*insts.Instruction, error) {
	c := m.cells[address]
	if c.Inst == nil {
		got := "data"
		if c.Empty {
			got = "empty"
		}
		return nil, &AddressingError{Address: int(address), Want: "instruction", Got: got}
	}
	return c.Inst, nil
}
