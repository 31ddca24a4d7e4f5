package pipeline

import (
	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/mem"
	"github.com/sarchlab/rrsim/regs"
	"github.com/sarchlab/rrsim/timing/config"
)

// MemoryUnit is the Memory functional unit of §4.4: a 32 000-cell store, a
// single in-flight instruction latch, a FIFO of pending MemoryActions, and
// one EX-to-WB forwarding slot the ALU uses to pass a result through
// Memory without disturbing memory contents.
type MemoryUnit struct {
	memory  *mem.Memory
	regFile *regs.RegisterFile
	wb      *WriteBack
	clock   *Clock
	cfg     *config.Config

	current *insts.Instruction

	actions   []insts.MemAction
	forwardWB *WriteBackAction
	finishAt  *uint64
}

// NewMemoryUnit creates a Memory unit over the given storage and peers.
func NewMemoryUnit(memory *mem.Memory, regFile *regs.RegisterFile, wb *WriteBack, clock *Clock, cfg *config.Config) *MemoryUnit {
	return &MemoryUnit{memory: memory, regFile: regFile, wb: wb, clock: clock, cfg: cfg}
}

// Memory exposes the untimed backing store for fetch and for the loader.
func (m *MemoryUnit) Memory() *mem.Memory { return m.memory }

// GiveInstruction latches a memory instruction for execution. Callers must
// check IsAvailable first.
func (m *MemoryUnit) GiveInstruction(inst *insts.Instruction) {
	m.current = inst
}

// Instruction returns the currently latched instruction, or nil.
func (m *MemoryUnit) Instruction() *insts.Instruction {
	return m.current
}

// IsAvailable reports whether the unit holds no instruction.
func (m *MemoryUnit) IsAvailable() bool {
	return m.current == nil
}

// IsMemBusy reports whether the action FIFO is non-empty or the forwarding
// slot is occupied: a structural hazard blocking new memory activity.
func (m *MemoryUnit) IsMemBusy() bool {
	return len(m.actions) > 0 || m.forwardWB != nil
}

// Execute runs the compute-address step: if an instruction is latched and
// the unit is not busy, it computes one MemAction, enqueues it, and clears
// the latch. Returns whether it fired.
func (m *MemoryUnit) Execute() bool {
	if m.current == nil || m.IsMemBusy() {
		return false
	}
	if m.cfg.ForwardResults {
		forwardSources(m.current, m.regFile, m, m.wb)
	}
	action := m.current.Action(m.regFile)
	m.actions = append(m.actions, action)
	m.current = nil
	return true
}

// PassToWB lets the ALU deposit a forwarding write into the slot Memory
// will hand to WriteBack on the next exec_memory_actions call.
func (m *MemoryUnit) PassToWB(a WriteBackAction) {
	m.forwardWB = &a
}

// ExecMemoryActions is the MEM-stage body: it either forwards a
// just-deposited ALU result to WriteBack, starts the 100-cycle timer on a
// freshly enqueued action, or — once that timer has elapsed and WriteBack
// is free — commits the action (a store writes memory directly; a load
// hands its value to WriteBack).
func (m *MemoryUnit) ExecMemoryActions() bool {
	if m.forwardWB != nil {
		m.wb.PrepareWrite(*m.forwardWB)
		m.forwardWB = nil
		return false
	}

	if len(m.actions) == 0 {
		return false
	}

	if m.finishAt == nil {
		finish := m.clock.Now() + m.cfg.MemoryLatency
		m.finishAt = &finish
		return false
	}

	if m.clock.Now()+1 >= *m.finishAt && m.wb.IsAvailable() {
		action := m.actions[0]
		m.actions = m.actions[1:]
		if action.Register != nil {
			m.wb.PrepareWrite(WriteBackAction{Reg: *action.Register, Data: m.memory.Get(action.Address).Word})
		} else {
			m.memory.Set(action.Address, *action.Data)
		}
		m.finishAt = nil
		return true
	}
	return false
}

// WillChangeReg reports whether any queued action will write p once it
// commits.
func (m *MemoryUnit) WillChangeReg(p regs.Phys) bool {
	for _, a := range m.actions {
		if a.Register != nil && *a.Register == p {
			return true
		}
	}
	return false
}

// ForwardResult returns the value in the EX-to-WB forwarding slot if it
// targets p.
func (m *MemoryUnit) ForwardResult(p regs.Phys) (int64, bool) {
	if m.forwardWB != nil && m.forwardWB.Reg == p {
		return m.forwardWB.Data, true
	}
	return 0, false
}
