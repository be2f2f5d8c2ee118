package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lc3/internal/events"
)

// TestRunAnswersKeyboardRequest exercises Run's event dispatch without
// touching a real tty: Start (raw mode) is never called, and the
// background reader is faked by pushing directly onto h.keys.
func TestRunAnswersKeyboardRequest(t *testing.T) {
	ch := events.NewChannel()
	worldSide := ch.WorldSide()
	cpuSide := ch.CPUSide()

	h := NewHost(worldSide)
	h.keys <- 'Q'

	go h.Run()

	cpuSide.Send(events.KeyboardStatus, 0)
	reply := cpuSide.Receive()
	assert.Equal(t, events.KeyboardData, reply.Tag)
	assert.Equal(t, uint16('Q'), reply.Value)

	cpuSide.Send(events.MachineControl, 1<<15)
}

// TestRunAcknowledgesDisplayData checks that a DisplayData event gets
// a DisplayStatus reply (stdout content itself isn't asserted here).
func TestRunAcknowledgesDisplayData(t *testing.T) {
	ch := events.NewChannel()
	worldSide := ch.WorldSide()
	cpuSide := ch.CPUSide()

	h := NewHost(worldSide)
	go h.Run()

	cpuSide.Send(events.DisplayData, 'H')
	reply := cpuSide.Receive()
	assert.Equal(t, events.DisplayStatus, reply.Tag)
	assert.Equal(t, uint16(1<<15), reply.Value)

	cpuSide.Send(events.MachineControl, 1<<15)
}
