package pipeline_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/mem"
	"github.com/sarchlab/rrsim/regs"
	"github.com/sarchlab/rrsim/timing/config"
	"github.com/sarchlab/rrsim/timing/pipeline"
)

// finalValue reads an architectural register's committed value through
// whatever physical register the RAT currently aliases it to, since a
// renamed register's value never lands back at its original Phys slot.
func finalValue(rf *regs.RegisterFile, a regs.Arch) int64 {
	rat := rf.RAT()
	return rf.ReadPhys(rat[a])
}

var _ = Describe("Processor", func() {
	It("runs a straight-line ALU chain to HALT", func() {
		m := mem.New()
		m.SetInstruction(0, insts.NewImmediateALU(insts.OpAddI, 1, 0, 2))
		m.SetInstruction(1, insts.NewImmediateALU(insts.OpAddI, 2, 0, 3))
		m.SetInstruction(2, insts.NewBinaryALU(insts.OpAdd, 3, 1, 2))
		m.SetInstruction(3, insts.NewHalt())

		cfg := config.Default()
		proc := pipeline.NewProcessor(m, cfg, 0)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(finalValue(proc.RegisterFile(), 3)).To(Equal(int64(5)))
		Expect(stats.Retired).To(BeNumerically(">=", 4))
		Expect(stats.Cycles).To(BeNumerically(">", 0))
		Expect(stats.CPI()).To(BeNumerically(">", 0))
	})

	It("stalls Decode on a RAW hazard when forwarding is disabled", func() {
		m := mem.New()
		m.SetInstruction(0, insts.NewImmediateALU(insts.OpAddI, 1, 0, 10))
		m.SetInstruction(1, insts.NewBinaryALU(insts.OpMul, 2, 1, 1))
		m.SetInstruction(2, insts.NewHalt())

		cfg := config.Default()
		cfg.ForwardResults = false
		cfg.RenameRegisters = false
		proc := pipeline.NewProcessor(m, cfg, 0)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(finalValue(proc.RegisterFile(), 2)).To(Equal(int64(100)))
		Expect(stats.Retired).To(BeNumerically(">=", 3))
	})

	It("carries a load's value through Memory's latency to a dependent use", func() {
		m := mem.New()
		m.Set(500, 123)
		m.SetInstruction(0, insts.NewImmediateALU(insts.OpAddI, 1, 0, 500))
		m.SetInstruction(1, insts.NewLoadWordConst(2, 1))
		m.SetInstruction(2, insts.NewImmediateALU(insts.OpAddI, 3, 2, 1))
		m.SetInstruction(3, insts.NewHalt())

		cfg := config.Default()
		proc := pipeline.NewProcessor(m, cfg, 0)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(finalValue(proc.RegisterFile(), 2)).To(Equal(int64(123)))
		Expect(finalValue(proc.RegisterFile(), 3)).To(Equal(int64(124)))
		Expect(stats.Cycles).To(BeNumerically(">=", uint64(cfg.MemoryLatency)))
	})

	It("counts a mispredict when a branch is taken", func() {
		m := mem.New()
		m.SetInstruction(0, insts.NewImmediateALU(insts.OpAddI, 0, 0, 1))
		m.SetInstruction(1, insts.NewBranchAbsoluteTrueImm(0, 4))
		m.SetInstruction(2, insts.NewImmediateALU(insts.OpAddI, 5, 0, 999))
		m.SetInstruction(4, insts.NewImmediateALU(insts.OpAddI, 6, 0, 1))
		m.SetInstruction(5, insts.NewHalt())

		cfg := config.Default()
		proc := pipeline.NewProcessor(m, cfg, 0)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Branches).To(Equal(uint64(1)))
		Expect(stats.Mispredicts).To(Equal(uint64(1)))
		Expect(stats.MispredictRate()).To(Equal(1.0))
		Expect(finalValue(proc.RegisterFile(), 5)).To(Equal(int64(0)))
		Expect(finalValue(proc.RegisterFile(), 6)).To(Equal(int64(1)))
	})

	It("takes no mispredict when a branch is not taken", func() {
		m := mem.New()
		m.SetInstruction(0, insts.NewBranchAbsoluteTrueImm(0, 99))
		m.SetInstruction(1, insts.NewImmediateALU(insts.OpAddI, 5, 0, 7))
		m.SetInstruction(2, insts.NewHalt())

		cfg := config.Default()
		proc := pipeline.NewProcessor(m, cfg, 0)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Branches).To(Equal(uint64(1)))
		Expect(stats.Mispredicts).To(Equal(uint64(0)))
		Expect(finalValue(proc.RegisterFile(), 5)).To(Equal(int64(7)))
	})

	It("drains every in-flight instruction after HALT before reporting stats", func() {
		m := mem.New()
		m.SetInstruction(0, insts.NewBinaryALU(insts.OpMul, 1, 2, 2))
		m.SetInstruction(1, insts.NewHalt())

		cfg := config.Default()
		proc := pipeline.NewProcessor(m, cfg, 0)
		rf := proc.RegisterFile()
		rf.Write(2, 6)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Cycles).To(BeNumerically(">=", uint64(cfg.MulDivLatency)))
	})

	It("takes far more cycles in unpipelined mode than pipelined for the same program", func() {
		newProgram := func() *mem.Memory {
			m := mem.New()
			m.SetInstruction(0, insts.NewImmediateALU(insts.OpAddI, 1, 0, 2))
			m.SetInstruction(1, insts.NewImmediateALU(insts.OpAddI, 2, 0, 3))
			m.SetInstruction(2, insts.NewBinaryALU(insts.OpAdd, 3, 1, 2))
			m.SetInstruction(3, insts.NewHalt())
			return m
		}

		pipelinedCfg := config.Default()
		pipelined := pipeline.NewProcessor(newProgram(), pipelinedCfg, 0)
		pipelinedStats, err := pipelined.Run()
		Expect(err).NotTo(HaveOccurred())

		unpipelinedCfg := config.Default()
		unpipelinedCfg.Pipeline = false
		unpipelined := pipeline.NewProcessor(newProgram(), unpipelinedCfg, 0)
		unpipelinedStats, err := unpipelined.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(finalValue(unpipelined.RegisterFile(), 3)).To(Equal(int64(5)))
		Expect(unpipelinedStats.Cycles).To(BeNumerically(">", pipelinedStats.Cycles))
	})

	It("writes one trace line per cycle when tracing is enabled", func() {
		m := mem.New()
		m.SetInstruction(0, insts.NewImmediateALU(insts.OpAddI, 1, 0, 2))
		m.SetInstruction(1, insts.NewHalt())

		cfg := config.Default()
		proc := pipeline.NewProcessor(m, cfg, 0)

		var trace bytes.Buffer
		proc.SetTrace(&trace)

		stats, err := proc.Run()
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(trace.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(int(stats.Cycles)))
		Expect(lines[0]).To(ContainSubstring("cycle 1:"))
	})
})
