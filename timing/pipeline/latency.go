package pipeline

import (
	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/timing/config"
)

// latencyFor resolves the configured cycle count for inst, honoring cfg's
// overrides of the §4.4/§4.5 defaults instead of the hardcoded constants on
// insts.Instruction.Latency.
func latencyFor(cfg *config.Config, inst *insts.Instruction) uint64 {
	switch inst.Op.Category() {
	case insts.CategoryMemory:
		return cfg.MemoryLatency
	case insts.CategoryALU:
		if inst.Op == insts.OpMul || inst.Op == insts.OpMulI || inst.Op == insts.OpDiv {
			return cfg.MulDivLatency
		}
		return cfg.ALULatency
	default:
		return 1
	}
}
