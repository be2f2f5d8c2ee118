// Package emulator ties Memory and CPU together: it parses a ROM
// image, seeds the device registers, and drives the fetch-decode-
// execute loop until the program halts or its PC runs out of bounds.
package emulator

import (
	"encoding/binary"
	"fmt"

	"lc3/internal/cpu"
	"lc3/internal/events"
	"lc3/internal/mem"
)

// ErrRomParse reports a ROM image that could not be loaded: per spec
// §7 this is surfaced at startup, before the execution loop ever runs.
type ErrRomParse struct {
	Reason string
}

func (e *ErrRomParse) Error() string {
	return fmt.Sprintf("emulator: malformed ROM: %s", e.Reason)
}

// ErrOutOfBounds reports the CPU's PC escaping the valid address
// range. Unreachable in practice -- PC is a uint16 and wraps rather
// than overflows -- but the loop still checks it explicitly, mirroring
// the original implementation's own defensive check.
type ErrOutOfBounds struct {
	PC uint16
}

func (e *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("emulator: program counter out of bounds: %#04x", e.PC)
}

// Emulator owns the Memory and CPU for one run.
type Emulator struct {
	mem *mem.Memory
	cpu *cpu.CPU
}

// New parses rom per spec §6 (a sequence of big-endian 16-bit words;
// the first word is the load origin and initial PC; an odd trailing
// byte is ignored) and seeds MachineControl and DisplayStatus ready,
// per spec §4.8.
func New(rom []byte) (*Emulator, error) {
	if len(rom) < 2 {
		return nil, &ErrRomParse{Reason: "file shorter than 2 bytes"}
	}

	origin := binary.BigEndian.Uint16(rom)

	m := mem.New()
	addr := origin
	for i := 2; i+1 < len(rom); i += 2 {
		m.Write(addr, binary.BigEndian.Uint16(rom[i:i+2]))
		addr++
	}

	m.Write(events.MachineControl.Addr(), 1<<15)
	m.Write(events.DisplayStatus.Addr(), 1<<15)

	return &Emulator{mem: m, cpu: cpu.New(origin)}, nil
}

// Run drives the execution loop against ev until MachineControl goes
// to zero (HALT) or the CPU's PC escapes the valid address range,
// then sends a final shutdown notification to the outside world. The
// notification is also sent when Run returns an error.
func (e *Emulator) Run(ev *events.Endpoint) error {
	defer ev.Send(events.MachineControl, 1<<15)

	for {
		if err := e.cpu.Tick(e.mem, ev); err != nil {
			return err
		}

		if pc := e.cpu.Registers.PC; int(pc) >= 0x10000 {
			return &ErrOutOfBounds{PC: pc}
		}

		if e.mem.Read(events.MachineControl.Addr()) == 0 {
			break
		}

		if ev, ok := ev.ReceiveTimeout(); ok {
			e.deliver(ev)
		}
	}

	return nil
}

// deliver applies one inbound event to memory outside of a trap's
// busy-wait, per spec §4.7.
func (e *Emulator) deliver(ev events.Event) {
	switch ev.Tag {
	case events.DisplayStatus:
		e.mem.Write(events.DisplayStatus.Addr(), 1<<15)
	case events.KeyboardData:
		e.mem.Write(events.KeyboardData.Addr(), ev.Value)
		e.mem.Write(events.KeyboardStatus.Addr(), 1<<15)
	}
}

// Debug starts the interactive single-step TUI over this emulator's
// CPU and memory, per spec §5's supplemented debugger.
func (e *Emulator) Debug(ev *events.Endpoint, offset uint16) {
	e.cpu.Debug(e.mem, ev, offset)
}
