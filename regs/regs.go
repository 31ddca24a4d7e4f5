// Package regs provides the architectural and physical register name
// spaces and the renaming register file that backs them.
package regs

import "fmt"

// NumArch is the number of architectural registers (R0..R13).
const NumArch = 14

// NumPhys is the number of physical registers (P0..P56).
const NumPhys = 57

// Arch identifies an architectural register visible in assembly.
type Arch int

// String returns the assembly name of the architectural register, e.g. "R3".
func (a Arch) String() string {
	return fmt.Sprintf("R%d", int(a))
}

// Phys identifies a physical register backing an Arch register via the RAT.
type Phys int

// String returns the internal name of the physical register, e.g. "P42".
func (p Phys) String() string {
	return fmt.Sprintf("P%d", int(p))
}

// Ref is a register operand that starts life naming an Arch register and is
// rewritten in place to name a Phys register once Decode renames it.
//
// Reading Ref.ID before Renamed is true is a bug in the caller: per the
// pipeline's invariant, every register reference reaching a functional
// unit's execute step must already have been renamed.
type Ref struct {
	ID      int
	Renamed bool
}

// ArchRef builds an unrenamed Ref naming an architectural register.
func ArchRef(a Arch) Ref { return Ref{ID: int(a)} }

// PhysRef builds a renamed Ref naming a physical register directly. Used for
// registers the assembler never sees renamed, and in tests.
func PhysRef(p Phys) Ref { return Ref{ID: int(p), Renamed: true} }

// Arch returns the Ref as an architectural register. Valid only when
// !Renamed.
func (r Ref) Arch() Arch { return Arch(r.ID) }

// Phys returns the Ref as a physical register. Valid only when Renamed.
func (r Ref) Phys() Phys { return Phys(r.ID) }

// Rename rewrites the Ref in place to name the given physical register.
func (r *Ref) Rename(p Phys) {
	r.ID = int(p)
	r.Renamed = true
}

func (r Ref) String() string {
	if r.Renamed {
		return Phys(r.ID).String()
	}
	return Arch(r.ID).String()
}
