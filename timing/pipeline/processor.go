package pipeline

import (
	"fmt"
	"io"

	"github.com/sarchlab/rrsim/mem"
	"github.com/sarchlab/rrsim/regs"
	"github.com/sarchlab/rrsim/timing/config"
)

// Stats summarizes one run of the processor.
type Stats struct {
	Cycles      uint64
	Retired     uint64
	Branches    uint64
	Mispredicts uint64
}

// CPI returns cycles per retired instruction, or 0 if nothing retired.
func (s Stats) CPI() float64 {
	if s.Retired == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Retired)
}

// MispredictRate returns the fraction of resolved branches that were
// mispredicted, or 0 if no branch resolved.
func (s Stats) MispredictRate() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Mispredicts) / float64(s.Branches)
}

// Processor wires the Clock, register file, functional units and Control
// front end into the renaming five-stage pipeline, and drives it one cycle
// at a time per the reverse-stage-order discipline: each cycle retires
// (WriteBack), executes (Memory's timed engine, then Control's branch/halt
// resolution, the ALU, and Memory's address step), then dispatches
// (Decode) and fetches — later
// stages first, so a stage that frees a resource this cycle is visible to
// an earlier stage still running in the same cycle.
type Processor struct {
	clock   *Clock
	regFile *regs.RegisterFile
	memory  *mem.Memory

	wb      *WriteBack
	aluUnit *ALUUnit
	memUnit *MemoryUnit
	control *Control

	cfg     *config.Config
	retired uint64

	trace io.Writer
}

// NewProcessor assembles a Processor over memory, starting Fetch at startPC,
// configured by cfg.
func NewProcessor(memory *mem.Memory, cfg *config.Config, startPC int64) *Processor {
	regFile := regs.New()
	clock := NewClock(cfg.Speed)
	wb := NewWriteBack(regFile)
	memUnit := NewMemoryUnit(memory, regFile, wb, clock, cfg)
	aluUnit := NewALUUnit(regFile, memUnit, wb, clock, cfg)
	control := NewControl(memUnit, aluUnit, regFile, wb, cfg, startPC)

	return &Processor{
		clock:   clock,
		regFile: regFile,
		memory:  memory,
		wb:      wb,
		aluUnit: aluUnit,
		memUnit: memUnit,
		control: control,
		cfg:     cfg,
	}
}

// RegisterFile exposes the architectural state for inspection after a run.
func (p *Processor) RegisterFile() *regs.RegisterFile { return p.regFile }

// Memory exposes the backing store for inspection after a run.
func (p *Processor) Memory() *mem.Memory { return p.memory }

// SetTrace turns on a line of per-cycle diagnostics written to w after every
// cycle Run completes — the PC Fetch will read next, whether Control has
// halted, and the running retired-instruction count. A nil w (the default)
// disables tracing entirely, with no cost to the hot loop beyond one nil
// check per cycle.
func (p *Processor) SetTrace(w io.Writer) {
	p.trace = w
}

// Run drives the pipeline to completion: HALT reaching Control's Execute
// stops fetching and dispatching, and the loop keeps ticking until every
// in-flight instruction has drained out through WriteBack. It returns once
// the machine is fully quiesced, along with run statistics. An
// AddressingError surfacing from Fetch (the program ran off the end of its
// text without ever executing HALT) aborts the run and is returned as-is.
//
// Within one cycle's EX group the call order is fixed at CU, ALU, Memory
// (§4.7 step 4 / §5): Control's Execute reads Memory's is_mem_busy state
// from the end of the *previous* cycle, so it must run before this cycle's
// ALU.Execute can possibly change it by depositing a new forwarding action.
func (p *Processor) Run() (Stats, error) {
	for {
		p.wb.Write()
		p.tickUnlessPipelined()

		memCommitted := p.memUnit.ExecMemoryActions()
		p.tickUnlessPipelined()

		controlRetired, pcChanged := p.control.Execute()
		p.tickUnlessPipelined()

		aluRetired := p.aluUnit.Execute()
		p.tickUnlessPipelined()

		p.memUnit.Execute()
		p.tickUnlessPipelined()

		jumpRetired, jumpResolved := p.control.Decode()
		p.tickUnlessPipelined()

		// A redirect this cycle (an early-resolved jump at Decode, or a
		// branch misprediction caught above at Execute) must not be
		// observed by Fetch until the next cycle (§4.7 steps 5-6; §8).
		if !pcChanged && !jumpResolved {
			if err := p.control.Fetch(); err != nil {
				return p.stats(), err
			}
		}

		for _, fired := range []bool{aluRetired, memCommitted, controlRetired, jumpRetired} {
			if fired {
				p.retired++
			}
		}

		p.clock.Tick()

		if p.trace != nil {
			fmt.Fprintf(p.trace, "cycle %d: pc=%d halted=%t retired=%d\n",
				p.clock.Now(), p.control.PC(), p.control.Halted, p.retired)
		}

		if p.quiesced() {
			break
		}
	}

	return p.stats(), nil
}

// tickUnlessPipelined implements §6's Pipeline flag: when true (the
// default), the six stage calls above share one cycle and only the
// unconditional Tick at the end of the loop body advances the clock. When
// false, every stage call gets its own tick here, so a cycle's worth of
// work that normally overlaps instead spends one full cycle per stage —
// the "tick once after every stage" unpipelined baseline §6 asks for, used
// to compare cycle counts against the pipelined run of the same program.
func (p *Processor) tickUnlessPipelined() {
	if !p.cfg.Pipeline {
		p.clock.Tick()
	}
}

// quiesced reports whether the machine has halted and every functional
// unit, the Memory unit's action queue, and WriteBack's retirement queue
// have fully drained.
func (p *Processor) quiesced() bool {
	return p.control.Halted &&
		p.control.IsIdle() &&
		p.aluUnit.IsAvailable() &&
		p.memUnit.IsAvailable() &&
		!p.memUnit.IsMemBusy() &&
		p.wb.Len() == 0
}

func (p *Processor) stats() Stats {
	return Stats{
		Cycles:      p.clock.Now(),
		Retired:     p.retired,
		Branches:    p.control.Branches,
		Mispredicts: p.control.Mispredicts,
	}
}
