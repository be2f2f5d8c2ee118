// Package cpu implements the LC-3 central processing unit: the
// register file, the fetch-decode-execute tick, the 16 opcode
// semantics, and the trap-service subsystem that talks to the outside
// world over an event channel.
package cpu

import (
	"fmt"

	"lc3/internal/events"
	"lc3/internal/mem"
)

// ErrUnimplementedInstruction is returned when a tick decodes an
// opcode with no handler: RTI, RES, or (impossible, since the nibble
// space is exhaustive) an undecodable nibble.
type ErrUnimplementedInstruction struct {
	Op Opcode
}

func (e *ErrUnimplementedInstruction) Error() string {
	return fmt.Sprintf("cpu: unimplemented instruction: %s", e.Op)
}

// CPU owns the register file and executes one instruction per Tick
// against a Memory and an event Endpoint. Unlike the teacher's 6502
// Cpu, which carries a reference to its Bus, the LC-3 CPU is given
// memory and the event endpoint per call -- it has no memory of its
// own beyond the registers.
type CPU struct {
	Registers Registers
}

// New creates a CPU with PC set to origin, per spec §3 ("the PC is
// set at construction to the ROM's origin address").
func New(origin uint16) *CPU {
	c := &CPU{}
	c.Registers.PC = origin
	return c
}

// handler executes one decoded opcode. mem and events are only ever
// used by the handlers that need them (loads/stores, TRAP); the
// control-transfer and arithmetic handlers ignore both.
type handler func(c *CPU, m *mem.Memory, ev *events.Endpoint, instr uint16) error

// dispatch maps each implemented Opcode to its handler. RTI and RES
// are deliberately absent: spec §1/§4.4 refuses them outright, rather
// than treating them as a no-op, per the LC-3 ISA's reserved-opcode
// semantics.
var dispatch = map[Opcode]handler{
	OpBR:   execBR,
	OpADD:  execADD,
	OpLD:   execLD,
	OpST:   execST,
	OpJSR:  execJSR,
	OpAND:  execAND,
	OpLDR:  execLDR,
	OpSTR:  execSTR,
	OpNOT:  execNOT,
	OpLDI:  execLDI,
	OpSTI:  execSTI,
	OpJMP:  execJMP,
	OpLEA:  execLEA,
	OpTRAP: execTRAP,
}

// Tick runs one fetch-decode-execute cycle: fetch the word at PC,
// advance PC (16-bit wrapping), decode the top 4 bits, and dispatch to
// the opcode handler.
func (c *CPU) Tick(m *mem.Memory, ev *events.Endpoint) error {
	instr := m.Read(c.Registers.PC)
	c.Registers.PC++ // uint16 overflow wraps per Go's integer semantics

	op := DecodeOpcode(instr)
	h, ok := dispatch[op]
	if !ok {
		return &ErrUnimplementedInstruction{Op: op}
	}
	return h(c, m, ev, instr)
}
