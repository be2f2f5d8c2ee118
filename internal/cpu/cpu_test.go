package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lc3/internal/events"
	"lc3/internal/mem"
)

// TestADDImmediate is spec §8 scenario 1: ADD R0, R1, #2 with R1=5
// preset should leave R0=7, PC advanced by one, flags P.
func TestADDImmediate(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0x1062) // ADD R0, R1, #2
	assert.NoError(t, c.Registers.Set(1, 5))

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	assert.Equal(t, uint16(0x3001), c.Registers.PC)
	r0, _ := c.Registers.Get(0)
	assert.Equal(t, uint16(7), r0)
	assert.True(t, c.Registers.Flags.Positive)
	assert.False(t, c.Registers.Flags.Zero)
	assert.False(t, c.Registers.Flags.Negative)
}

// TestADDWrap is spec §8 scenario 2: R1=0xFFFF, ADD R0, R1, #1 wraps
// to R0=0, flags Z.
func TestADDWrap(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0x1061) // ADD R0, R1, #1
	assert.NoError(t, c.Registers.Set(1, 0xFFFF))

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	r0, _ := c.Registers.Get(0)
	assert.Equal(t, uint16(0), r0)
	assert.True(t, c.Registers.Flags.Zero)
}

// TestBRTaken is spec §8 scenario 3: with Z set, BRz +3 at 0x3000
// should land PC at 0x3001+3.
func TestBRTaken(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0x0403) // BRz #3
	c.Registers.Flags.Update(0)

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	assert.Equal(t, uint16(0x3004), c.Registers.PC)
}

// TestBRNotTaken checks the complementary case: when none of the
// tested condition codes are set, PC only advances by one.
func TestBRNotTaken(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0x0403) // BRz #3
	c.Registers.Flags.Update(1)

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	assert.Equal(t, uint16(0x3001), c.Registers.PC)
}

// TestLDIChain is spec §8 scenario 4.
func TestLDIChain(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0xA001) // LDI R0, #1
	m.Write(0x3002, 0x4000)
	m.Write(0x4000, 0x1234)

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	r0, _ := c.Registers.Get(0)
	assert.Equal(t, uint16(0x1234), r0)
	assert.Equal(t, uint16(0x3001), c.Registers.PC)
	assert.True(t, c.Registers.Flags.Positive)
}

// TestJMPUsesRegisterContents guards against the source ambiguity
// noted in spec §9(c): JMP must use the contents of BaseR, not the
// register index itself.
func TestJMPUsesRegisterContents(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0xC1C0) // JMP R7
	assert.NoError(t, c.Registers.Set(7, 0x5000))

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	assert.Equal(t, uint16(0x5000), c.Registers.PC)
}

// TestJSRSavesReturnAddress checks R7 = PC (post-increment) and that
// the 11-bit offset form jumps PC-relative.
func TestJSRSavesReturnAddress(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0x4801) // JSR #1 (bit 11 set, off11=1)

	assert.NoError(t, c.Tick(m, ch.CPUSide()))

	r7, _ := c.Registers.Get(7)
	assert.Equal(t, uint16(0x3001), r7)
	assert.Equal(t, uint16(0x3002), c.Registers.PC)
}

// TestUnimplementedInstruction checks that RTI fails fatally rather
// than silently no-op, per spec §4.4/§7.
func TestUnimplementedInstruction(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(0x3000, 0x8000) // RTI
	err := c.Tick(m, ch.CPUSide())
	assert.Error(t, err)
	var unimpl *ErrUnimplementedInstruction
	assert.ErrorAs(t, err, &unimpl)
	assert.Equal(t, OpRTI, unimpl.Op)
}

// TestTrapHALT is spec §8 scenario 6.
func TestTrapHALT(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()

	m.Write(events.MachineControl.Addr(), 1<<15)
	m.Write(0x3000, 0xF025) // TRAP HALT

	assert.NoError(t, c.Tick(m, ch.CPUSide()))
	assert.Equal(t, uint16(0), m.Read(events.MachineControl.Addr()))
}

// TestTrapPUTS is spec §8 scenario 5: PUTS writes each character of a
// NUL-terminated string to the display, one outbound DisplayData event
// per character, in order.
func TestTrapPUTS(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()
	cpuSide := ch.CPUSide()
	worldSide := ch.WorldSide()

	m.Write(events.DisplayStatus.Addr(), 1<<15) // seeded ready, per emulator construction
	assert.NoError(t, c.Registers.Set(0, 0x4000))
	m.Write(0x4000, 'H')
	m.Write(0x4001, 'i')
	m.Write(0x4002, 0)
	m.Write(0x3000, 0xF022) // TRAP PUTS

	done := make(chan error, 1)
	go func() { done <- c.Tick(m, cpuSide) }()

	var received []events.Event
	for range 2 {
		ev := worldSide.Receive()
		received = append(received, ev)
		worldSide.Send(events.DisplayStatus, 0)
	}

	assert.NoError(t, <-done)
	assert.Equal(t, []events.Event{
		{Tag: events.DisplayData, Value: 'H'},
		{Tag: events.DisplayData, Value: 'i'},
	}, received)
}

// TestTrapGETC exercises the keyboard busy-wait/drain handshake.
func TestTrapGETC(t *testing.T) {
	m := mem.New()
	c := New(0x3000)
	ch := events.NewChannel()
	cpuSide := ch.CPUSide()
	worldSide := ch.WorldSide()

	m.Write(0x3000, 0xF020) // TRAP GETC

	done := make(chan error, 1)
	go func() { done <- c.Tick(m, cpuSide) }()

	req := worldSide.Receive()
	assert.Equal(t, events.KeyboardStatus, req.Tag)
	worldSide.Send(events.KeyboardData, 'Q')

	assert.NoError(t, <-done)
	r0, _ := c.Registers.Get(0)
	assert.Equal(t, uint16('Q'), r0)
}
