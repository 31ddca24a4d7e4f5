package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rrsim/insts"
	"github.com/sarchlab/rrsim/mem"
	"github.com/sarchlab/rrsim/regs"
	"github.com/sarchlab/rrsim/timing/config"
	"github.com/sarchlab/rrsim/timing/pipeline"
)

var _ = Describe("MemoryUnit", func() {
	var (
		rf      *regs.RegisterFile
		m       *mem.Memory
		clock   *pipeline.Clock
		wb      *pipeline.WriteBack
		memUnit *pipeline.MemoryUnit
		cfg     *config.Config
	)

	BeforeEach(func() {
		rf = regs.New()
		m = mem.New()
		cfg = config.Default()
		cfg.MemoryLatency = 3
		clock = pipeline.NewClock(0)
		wb = pipeline.NewWriteBack(rf)
		memUnit = pipeline.NewMemoryUnit(m, rf, wb, clock, cfg)
	})

	It("runs a store through to memory after its latency elapses", func() {
		inst := insts.NewStoreWord(1, 2)
		inst.Src1 = regs.PhysRef(1)
		inst.Src2 = regs.PhysRef(2)
		rf.Write(1, 500)
		rf.Write(2, 123)

		memUnit.GiveInstruction(inst)
		Expect(memUnit.Execute()).To(BeTrue())
		Expect(memUnit.IsMemBusy()).To(BeTrue())

		for !memUnit.ExecMemoryActions() {
			clock.Tick()
		}

		Expect(m.Get(500).Word).To(Equal(int64(123)))
		Expect(memUnit.IsMemBusy()).To(BeFalse())
	})

	It("hands a load's value to WriteBack once it completes", func() {
		m.Set(10, 77)
		inst := insts.NewLoadWordConst(0, 1)
		inst.Src1 = regs.PhysRef(1)
		inst.Dest = regs.PhysRef(5)
		rf.Write(1, 10)

		memUnit.GiveInstruction(inst)
		memUnit.Execute()

		for i := uint64(0); i < cfg.MemoryLatency; i++ {
			memUnit.ExecMemoryActions()
			clock.Tick()
		}
		memUnit.ExecMemoryActions()

		Expect(wb.IsAvailable()).To(BeFalse())
		v, ok := wb.ForwardResult(regs.Phys(5))
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(int64(77)))
	})

	It("reports WillChangeReg for a queued load's destination", func() {
		inst := insts.NewLoadWordConst(0, 1)
		inst.Src1 = regs.PhysRef(1)
		inst.Dest = regs.PhysRef(9)
		rf.Write(1, 0)

		memUnit.GiveInstruction(inst)
		memUnit.Execute()

		Expect(memUnit.WillChangeReg(regs.Phys(9))).To(BeTrue())
		Expect(memUnit.WillChangeReg(regs.Phys(10))).To(BeFalse())
	})

	It("forwards an ALU result passed through it before Memory's own instruction runs", func() {
		memUnit.PassToWB(pipeline.WriteBackAction{Reg: regs.Phys(3), Data: 55})
		v, ok := memUnit.ForwardResult(regs.Phys(3))
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(int64(55)))

		memUnit.ExecMemoryActions()
		Expect(wb.IsAvailable()).To(BeFalse())
	})
})
