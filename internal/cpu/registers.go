package cpu

import "fmt"

// ErrRegisterIndexOutOfRange is returned when an opcode handler is
// asked for a register index outside {0..7}. Per spec §3/§7 this can
// only happen if the decoder itself is buggy, since every register
// field in every opcode is exactly 3 bits wide; Registers still
// checks it explicitly rather than trusting that invariant silently.
type ErrRegisterIndexOutOfRange struct {
	Index uint16
}

func (e *ErrRegisterIndexOutOfRange) Error() string {
	return fmt.Sprintf("cpu: register index out of range: %d", e.Index)
}

// Flags holds the three condition codes N/Z/P. Exactly one is true at
// any moment after Update runs.
//
// https://www.nesdev.org/wiki/Status_flags#Flags documents the 6502
// analogue the teacher models as a struct of bools; LC-3 has a
// simpler three-way mutually exclusive set instead of a packed status
// byte.
type Flags struct {
	Negative bool // N: set when the high bit of the last result is 1
	Zero     bool // Z: set when the last result was 0
	Positive bool // P: set otherwise
}

// Update recomputes N/Z/P from v, a 16-bit value interpreted as
// two's-complement.
func (f *Flags) Update(v uint16) {
	f.Zero = v == 0
	f.Negative = v&0x8000 != 0
	f.Positive = !f.Zero && !f.Negative
}

// Registers is the LC-3 register file: eight general-purpose slots,
// the program counter, and the condition flags.
type Registers struct {
	r     [8]uint16
	PC    uint16
	Flags Flags
}

// Get returns the contents of register idx (0..7).
func (r *Registers) Get(idx uint16) (uint16, error) {
	if idx > 7 {
		return 0, &ErrRegisterIndexOutOfRange{Index: idx}
	}
	return r.r[idx], nil
}

// Set stores v into register idx (0..7).
func (r *Registers) Set(idx uint16, v uint16) error {
	if idx > 7 {
		return &ErrRegisterIndexOutOfRange{Index: idx}
	}
	r.r[idx] = v
	return nil
}
