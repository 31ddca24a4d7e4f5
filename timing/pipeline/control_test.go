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

var _ = Describe("Control", func() {
	var (
		rf      *regs.RegisterFile
		m       *mem.Memory
		clock   *pipeline.Clock
		wb      *pipeline.WriteBack
		memUnit *pipeline.MemoryUnit
		aluUnit *pipeline.ALUUnit
		control *pipeline.Control
		cfg     *config.Config
	)

	BeforeEach(func() {
		rf = regs.New()
		m = mem.New()
		cfg = config.Default()
		clock = pipeline.NewClock(0)
		wb = pipeline.NewWriteBack(rf)
		memUnit = pipeline.NewMemoryUnit(m, rf, wb, clock, cfg)
		aluUnit = pipeline.NewALUUnit(rf, memUnit, wb, clock, cfg)
		control = pipeline.NewControl(memUnit, aluUnit, rf, wb, cfg, 0)
	})

	It("fetches the instruction at PC and advances it", func() {
		m.SetInstruction(0, insts.NewNoOp())
		Expect(control.Fetch()).To(Succeed())
		Expect(control.PC()).To(Equal(int64(1)))
		Expect(control.IsIdle()).To(BeFalse())
	})

	It("does not fetch again while the IF/ID latch is still occupied", func() {
		m.SetInstruction(0, insts.NewNoOp())
		m.SetInstruction(1, insts.NewHalt())
		Expect(control.Fetch()).To(Succeed())
		Expect(control.Fetch()).To(Succeed())
		Expect(control.PC()).To(Equal(int64(1)))
	})

	It("dispatches an ALU instruction to the ALU unit", func() {
		inst := insts.NewBinaryALU(insts.OpAdd, 3, 1, 2)
		m.SetInstruction(0, inst)
		rf.Write(1, 2)
		rf.Write(2, 5)

		Expect(control.Fetch()).To(Succeed())
		retired, jumped := control.Decode()
		Expect(retired).To(BeFalse())
		Expect(jumped).To(BeFalse())
		Expect(control.IsIdle()).To(BeTrue())
		Expect(aluUnit.IsAvailable()).To(BeFalse())
	})

	It("resolves an unconditional jump immediately at Decode", func() {
		inst := insts.NewJumpAbsoluteImm(42)
		m.SetInstruction(0, inst)

		Expect(control.Fetch()).To(Succeed())
		retired, jumped := control.Decode()
		Expect(retired).To(BeTrue())
		Expect(jumped).To(BeTrue())
		Expect(control.PC()).To(Equal(int64(42)))
	})

	It("stalls Decode while a branch is unresolved in its own latch", func() {
		branch := insts.NewBranchAbsoluteTrueImm(0, 99)
		nop := insts.NewNoOp()
		m.SetInstruction(0, branch)
		m.SetInstruction(1, nop)
		rf.Write(0, 1)

		Expect(control.Fetch()).To(Succeed())
		retired, _ := control.Decode()
		Expect(retired).To(BeFalse())

		Expect(control.Fetch()).To(Succeed())
		retired, _ = control.Decode()
		Expect(retired).To(BeFalse())
		Expect(control.IsIdle()).To(BeFalse())
	})

	It("does not dispatch an ALU instruction while a branch occupies Control's latch", func() {
		branch := insts.NewBranchAbsoluteTrueImm(0, 99)
		add := insts.NewBinaryALU(insts.OpAdd, 3, 1, 2)
		m.SetInstruction(0, branch)
		m.SetInstruction(1, add)
		rf.Write(0, 1)

		Expect(control.Fetch()).To(Succeed())
		retired, _ := control.Decode()
		Expect(retired).To(BeFalse())
		Expect(control.IsAvailable()).To(BeFalse())

		Expect(control.Fetch()).To(Succeed())
		retired, _ = control.Decode()
		Expect(retired).To(BeFalse())
		Expect(control.IsIdle()).To(BeFalse())
		Expect(aluUnit.IsAvailable()).To(BeTrue())
	})

	It("does not flush on a correctly predicted not-taken branch", func() {
		branch := insts.NewBranchAbsoluteTrueImm(0, 99)
		m.SetInstruction(0, branch)
		rf.Write(0, 0)

		Expect(control.Fetch()).To(Succeed())
		retired, _ := control.Decode()
		Expect(retired).To(BeFalse())
		predictedPC := control.PC()

		fired, pcChanged := control.Execute()
		Expect(fired).To(BeTrue())
		Expect(pcChanged).To(BeFalse())
		Expect(control.Mispredicts).To(Equal(uint64(0)))
		Expect(control.Branches).To(Equal(uint64(1)))
		Expect(control.PC()).To(Equal(predictedPC))
	})

	It("flushes the IF/ID latch and redirects PC on a taken-branch misprediction", func() {
		branch := insts.NewBranchAbsoluteTrueImm(0, 99)
		wrongPath := insts.NewNoOp()
		m.SetInstruction(0, branch)
		m.SetInstruction(1, wrongPath)
		rf.Write(0, 1)

		Expect(control.Fetch()).To(Succeed())
		retired, _ := control.Decode()
		Expect(retired).To(BeFalse())

		Expect(control.Fetch()).To(Succeed())
		Expect(control.IsIdle()).To(BeFalse())

		fired, pcChanged := control.Execute()
		Expect(fired).To(BeTrue())
		Expect(pcChanged).To(BeTrue())
		Expect(control.Mispredicts).To(Equal(uint64(1)))
		Expect(control.PC()).To(Equal(int64(99)))
		Expect(control.IsIdle()).To(BeTrue())
	})

	It("stalls a branch's Execute while Memory is busy", func() {
		branch := insts.NewBranchAbsoluteTrueImm(0, 99)
		m.SetInstruction(0, branch)
		rf.Write(0, 1)

		load := insts.NewLoadWordConst(5, 6)
		memUnit.GiveInstruction(load)
		Expect(memUnit.Execute()).To(BeTrue())

		Expect(control.Fetch()).To(Succeed())
		retired, _ := control.Decode()
		Expect(retired).To(BeFalse())

		fired, pcChanged := control.Execute()
		Expect(fired).To(BeFalse())
		Expect(pcChanged).To(BeFalse())
		Expect(control.Branches).To(Equal(uint64(0)))
	})

	It("sets Halted on HALT", func() {
		m.SetInstruction(0, insts.NewHalt())
		Expect(control.Fetch()).To(Succeed())
		retired, _ := control.Decode()
		Expect(retired).To(BeFalse())
		fired, pcChanged := control.Execute()
		Expect(fired).To(BeTrue())
		Expect(pcChanged).To(BeFalse())
		Expect(control.Halted).To(BeTrue())

		Expect(control.Fetch()).To(Succeed())
		Expect(control.IsIdle()).To(BeTrue())
	})
})
