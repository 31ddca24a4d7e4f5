// Package pipeline implements the renaming five-stage pipeline: the Clock,
// the ALU/Memory/Control functional units, the WriteBack retirement queue,
// and the Processor driver that orchestrates them one cycle at a time.
package pipeline

import (
	"github.com/sarchlab/rrsim/regs"
)

// WriteBackAction is a pending commit to the physical register file.
type WriteBackAction struct {
	Reg  regs.Phys
	Data int64
}

// WriteBack is the retirement unit: a FIFO of pending writes that also
// serves as a forwarding source for Decode's hazard check (§4.3).
type WriteBack struct {
	regFile *regs.RegisterFile
	queue   []WriteBackAction
}

// NewWriteBack creates a WriteBack unit committing into regFile.
func NewWriteBack(regFile *regs.RegisterFile) *WriteBack {
	return &WriteBack{regFile: regFile}
}

// PrepareWrite enqueues a pending write.
func (w *WriteBack) PrepareWrite(a WriteBackAction) {
	w.queue = append(w.queue, a)
}

// IsAvailable reports whether the retirement queue is empty.
func (w *WriteBack) IsAvailable() bool {
	return len(w.queue) == 0
}

// ForwardResult scans the queue for the oldest pending write to p. Per the
// reference (and the open question in §9), this is the *oldest* match, not
// the newest: a later write to the same Phys in the same queue would be
// shadowed. That can only happen if two in-flight instructions were renamed
// to the same Phys, which the rename discipline in §9 relies on the serial
// issue order to avoid.
func (w *WriteBack) ForwardResult(p regs.Phys) (int64, bool) {
	for _, a := range w.queue {
		if a.Reg == p {
			return a.Data, true
		}
	}
	return 0, false
}

// Write retires at most one pending action per cycle, committing it to the
// register file.
func (w *WriteBack) Write() {
	if len(w.queue) == 0 {
		return
	}
	a := w.queue[0]
	w.queue = w.queue[1:]
	w.regFile.Write(a.Reg, a.Data)
}

// Len reports how many writes are currently pending, used by the driver's
// post-HALT drain condition.
func (w *WriteBack) Len() int {
	return len(w.queue)
}
