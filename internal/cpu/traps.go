package cpu

import (
	"lc3/internal/events"
	"lc3/internal/mask"
	"lc3/internal/mem"
)

const readyBit uint16 = 1 << 15

// execTRAP decodes the trap vector in instr and invokes the named
// service call. Unknown vectors are silently ignored (no PC change,
// no error), per spec §4.5. Does not set flags.
func execTRAP(c *CPU, m *mem.Memory, ev *events.Endpoint, instr uint16) error {
	call, ok := DecodeTrap(instr)
	if !ok {
		return nil
	}

	switch call {
	case TrapGETC:
		return trapGETC(c, m, ev)
	case TrapOUT:
		return trapOUT(c, m, ev)
	case TrapPUTS:
		return trapPUTS(c, m, ev)
	case TrapIN:
		return trapIN(c, m, ev)
	case TrapPUTSP:
		return trapPUTSP(c, m, ev)
	case TrapHALT:
		return trapHALT(m)
	}
	return nil
}

// drainInbound services one inbound event while a trap busy-waits on a
// device-ready bit, per spec §4.7. Apart from the emulator's own
// handling of events between instructions and its start-up seeding of
// DisplayStatus, this is where device-ready bits are set to 1; the CPU
// clears them itself when it consumes the data.
func drainInbound(m *mem.Memory, ev *events.Endpoint) {
	e := ev.Receive()
	switch e.Tag {
	case events.DisplayStatus:
		m.Write(events.DisplayStatus.Addr(), readyBit)
	case events.KeyboardData:
		m.Write(events.KeyboardData.Addr(), e.Value)
		m.Write(events.KeyboardStatus.Addr(), readyBit)
	default:
		// any other tag is ignored
	}
}

// putChar busy-waits for the display to be ready, draining inbound
// events in the meantime, then writes one character and notifies the
// outside world. Because each call waits for the previous character's
// acknowledgment before writing the next, bytes reach the display in
// program order (spec §5).
func putChar(m *mem.Memory, ev *events.Endpoint, ch uint16) {
	for m.Read(events.DisplayStatus.Addr())&readyBit == 0 {
		drainInbound(m, ev)
	}
	m.Write(events.DisplayData.Addr(), ch)
	m.Write(events.DisplayStatus.Addr(), 0)
	ev.Send(events.DisplayData, ch)
}

// getChar raises a keyboard request and busy-waits for a key to
// arrive, draining inbound events in the meantime, then clears the
// keyboard ready bit and returns the value read. drainInbound stores
// the keyboard event's value as received, so the high byte is zero
// whenever the outside world sends a single byte, as the terminal host
// does.
func getChar(m *mem.Memory, ev *events.Endpoint) uint16 {
	ev.Send(events.KeyboardStatus, 0)
	for m.Read(events.KeyboardStatus.Addr())&readyBit == 0 {
		drainInbound(m, ev)
	}
	m.Write(events.KeyboardStatus.Addr(), 0)
	return m.Read(events.KeyboardData.Addr())
}

// GETC (0x20) - read one character from the keyboard into R0, not
// echoed.
func trapGETC(c *CPU, m *mem.Memory, ev *events.Endpoint) error {
	return c.Registers.Set(0, getChar(m, ev))
}

// OUT (0x21) - write the low byte of R0 to the display.
func trapOUT(c *CPU, m *mem.Memory, ev *events.Endpoint) error {
	r0, err := c.Registers.Get(0)
	if err != nil {
		return err
	}
	putChar(m, ev, r0&0xFF)
	return nil
}

// PUTS (0x22) - starting at R0, write one character per cell until a
// zero cell is reached.
func trapPUTS(c *CPU, m *mem.Memory, ev *events.Endpoint) error {
	addr, err := c.Registers.Get(0)
	if err != nil {
		return err
	}
	for {
		cell := m.Read(addr)
		if cell == 0 {
			break
		}
		putChar(m, ev, cell&0xFF)
		addr++
	}
	return nil
}

// IN (0x23) - like GETC, but the character read is echoed to the
// display.
func trapIN(c *CPU, m *mem.Memory, ev *events.Endpoint) error {
	ch := getChar(m, ev)
	if err := c.Registers.Set(0, ch); err != nil {
		return err
	}
	putChar(m, ev, ch)
	return nil
}

// PUTSP (0x24) - starting at R0, write two packed characters per cell
// (low byte, then high byte if non-zero) until a zero cell is
// reached. The low/high split is the one place this trap subsystem
// reaches for the byte-level mask helpers instead of the word-level
// ones: each half of the cell is a plain 8-bit character.
func trapPUTSP(c *CPU, m *mem.Memory, ev *events.Endpoint) error {
	addr, err := c.Registers.Get(0)
	if err != nil {
		return err
	}
	for {
		cell := m.Read(addr)
		if cell == 0 {
			break
		}
		lo := mask.Last(byte(cell), mask.I8)
		putChar(m, ev, uint16(lo))
		if hi := mask.First(byte(cell>>8), mask.I8); hi != 0 {
			putChar(m, ev, uint16(hi))
		}
		addr++
	}
	return nil
}

// HALT (0x25) - stop the machine. The execution loop observes
// MachineControl going to 0 on its next iteration and exits.
func trapHALT(m *mem.Memory) error {
	m.Write(events.MachineControl.Addr(), 0)
	return nil
}
