package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rrsim/timing/pipeline"
)

var _ = Describe("Clock", func() {
	It("starts at cycle 0", func() {
		c := pipeline.NewClock(0)
		Expect(c.Now()).To(Equal(uint64(0)))
	})

	It("advances by one per Tick with no throttle", func() {
		c := pipeline.NewClock(0)
		c.Tick()
		c.Tick()
		Expect(c.Now()).To(Equal(uint64(2)))
	})
})
