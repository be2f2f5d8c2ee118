package cpu

// Opcode identifies one of the 16 LC-3 instructions, keyed by the top
// 4 bits of an instruction word. The tag's numeric value is exactly
// the opcode nibble, per spec §4.3.
type Opcode uint16

const (
	OpBR Opcode = iota
	OpADD
	OpLD
	OpST
	OpJSR
	OpAND
	OpLDR
	OpSTR
	OpRTI
	OpNOT
	OpLDI
	OpSTI
	OpJMP
	OpRES
	OpLEA
	OpTRAP
)

func (op Opcode) String() string {
	names := [16]string{
		"BR", "ADD", "LD", "ST", "JSR", "AND", "LDR", "STR",
		"RTI", "NOT", "LDI", "STI", "JMP", "RES", "LEA", "TRAP",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// DecodeOpcode maps the top 4 bits of a 16-bit instruction word to its
// Opcode tag. The nibble space is exhaustive (all 16 values are
// assigned a tag), so this never fails to produce a tag -- whether
// that tag is implemented is a separate question, handled by the CPU's
// dispatch (RTI/RES are decoded here but refused by the CPU).
func DecodeOpcode(instr uint16) Opcode {
	return Opcode(instr >> 12)
}

// ServiceCall identifies one of the six LC-3 trap routines, keyed by
// the low 8 bits of a TRAP instruction.
type ServiceCall uint16

const (
	TrapGETC  ServiceCall = 0x20
	TrapOUT   ServiceCall = 0x21
	TrapPUTS  ServiceCall = 0x22
	TrapIN    ServiceCall = 0x23
	TrapPUTSP ServiceCall = 0x24
	TrapHALT  ServiceCall = 0x25
)

// DecodeTrap extracts bits [7:0] of a TRAP instruction and reports
// whether they name one of the six defined service calls. Unknown
// vectors report ok=false; the caller (§4.5) silently ignores them.
func DecodeTrap(instr uint16) (call ServiceCall, ok bool) {
	vec := ServiceCall(instr & 0xFF)
	switch vec {
	case TrapGETC, TrapOUT, TrapPUTS, TrapIN, TrapPUTSP, TrapHALT:
		return vec, true
	default:
		return 0, false
	}
}
