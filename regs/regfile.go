package regs

import "fmt"

// RenameStall is returned by RegisterFile.Alias when the free list has been
// exhausted. The reference model has no equivalent recovery path (it would
// crash popping from an empty deque); a port is expected to treat this as a
// structural hazard and stall Decode until a Phys is reclaimed.
type RenameStall struct {
	Arch Arch
}

func (e *RenameStall) Error() string {
	return fmt.Sprintf("rename stall: no free physical register to back %s", e.Arch)
}

// RegisterFile holds the 57-entry physical value array, the 14-entry
// Register Alias Table, and the free list of unmapped physical registers.
//
// Invariants: every Arch maps to exactly one Phys; every Phys appears in
// the RAT or the free list exactly once; len(rat)+len(free) == NumPhys.
type RegisterFile struct {
	vals [NumPhys]int64
	rat  [NumArch]Phys
	free []Phys
}

// New creates a RegisterFile with RAT[i] = Pi and the free list seeded with
// P14..P56 in ascending order, per the data model in §3.
func New() *RegisterFile {
	rf := &RegisterFile{}
	for a := 0; a < NumArch; a++ {
		rf.rat[a] = Phys(a)
	}
	for p := NumArch; p < NumPhys; p++ {
		rf.free = append(rf.free, Phys(p))
	}
	return rf
}

// Read returns vals[r] directly. Arch register ids are NOT translated
// through the RAT here: by the time an instruction reaches a functional
// unit's execute step, its operands must already carry renamed Phys ids.
func (rf *RegisterFile) Read(r Ref) int64 {
	return rf.vals[r.ID]
}

// ReadPhys reads a physical register by id directly.
func (rf *RegisterFile) ReadPhys(p Phys) int64 {
	return rf.vals[p]
}

// Write stores v into the physical register p.
func (rf *RegisterFile) Write(p Phys, v int64) {
	rf.vals[p] = v
}

// Alias renames architectural register a to a freshly allocated physical
// register: the previous mapping is pushed onto the free list and a new one
// is popped in its place. Returns RenameStall if the free list is empty.
func (rf *RegisterFile) Alias(a Arch) (Phys, error) {
	if len(rf.free) == 0 {
		return 0, &RenameStall{Arch: a}
	}
	old := rf.rat[a]
	next := rf.free[0]
	rf.free = rf.free[1:]
	rf.free = append(rf.free, old)
	rf.rat[a] = next
	return next, nil
}

// RAT returns a snapshot of the 14-entry architectural-to-physical mapping.
func (rf *RegisterFile) RAT() [NumArch]Phys {
	return rf.rat
}

// FreeCount reports how many physical registers are currently unmapped,
// useful for the §8 invariant len(free)+in-flight == NumPhys-NumArch.
func (rf *RegisterFile) FreeCount() int {
	return len(rf.free)
}

// Print writes the architectural register file in "Ra (Ppp) = v" form to w,
// optionally tagged with the current cycle time.
func (rf *RegisterFile) Print(w interface{ Write([]byte) (int, error) }, time *uint64) {
	if time != nil {
		fmt.Fprintf(w, "Register file at t=%d\n", *time)
	} else {
		fmt.Fprintln(w, "Register File")
	}
	for a := 0; a < NumArch; a++ {
		p := rf.rat[a]
		fmt.Fprintf(w, "%s (%s) = %d\n", Arch(a), p, rf.vals[p])
	}
}
