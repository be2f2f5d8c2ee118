// Package events implements the bidirectional message channel between
// the CPU and the outside world (the terminal), carrying
// (DeviceRegisterTag, value) pairs across memory-mapped I/O traps.
package events

import "time"

// DeviceRegisterTag identifies one of the five memory-mapped device
// registers the CPU and the outside world hand values back and forth
// over.
type DeviceRegisterTag int

const (
	KeyboardStatus DeviceRegisterTag = iota
	KeyboardData
	DisplayStatus
	DisplayData
	MachineControl
)

// Addr returns the fixed memory address this device register is
// mapped to.
func (t DeviceRegisterTag) Addr() uint16 {
	switch t {
	case KeyboardStatus:
		return 0xFE00
	case KeyboardData:
		return 0xFE02
	case DisplayStatus:
		return 0xFE04
	case DisplayData:
		return 0xFE06
	case MachineControl:
		return 0xFFFE
	default:
		panic("events: unknown device register tag")
	}
}

func (t DeviceRegisterTag) String() string {
	switch t {
	case KeyboardStatus:
		return "KeyboardStatus"
	case KeyboardData:
		return "KeyboardData"
	case DisplayStatus:
		return "DisplayStatus"
	case DisplayData:
		return "DisplayData"
	case MachineControl:
		return "MachineControl"
	default:
		return "Unknown"
	}
}

// Event is a single (tag, value) message. Constructed by the sender,
// consumed by the receiver; never shared.
type Event struct {
	Tag   DeviceRegisterTag
	Value uint16
}

// pollInterval bounds how long ReceiveTimeout will block when the
// inbound queue is empty, per spec §4.6/§4.7.
const pollInterval = 10 * time.Millisecond

// Channel is a full-duplex pipe between the CPU (emulator side) and
// the outside world (terminal side). Each side owns one end
// exclusively; ownership is established here, at construction, and
// never transferred.
//
// Two independent queues carry messages in each direction; within a
// direction, delivery is FIFO (guaranteed by the underlying Go
// channel), but there is no ordering defined across directions.
type Channel struct {
	toWorld chan Event
	toCPU   chan Event
}

// NewChannel creates a channel pair. The buffer size is generous but
// not unbounded: Send is documented as non-blocking from the CPU's
// point of view, which a sufficiently large buffer approximates
// without risking an unbounded goroutine leak.
func NewChannel() *Channel {
	return &Channel{
		toWorld: make(chan Event, 64),
		toCPU:   make(chan Event, 64),
	}
}

// CPUSide returns the endpoint the CPU/emulator uses: Send enqueues
// outbound events (to the world), Receive/ReceiveTimeout dequeue
// inbound ones (from the world).
func (c *Channel) CPUSide() *Endpoint {
	return &Endpoint{out: c.toWorld, in: c.toCPU}
}

// WorldSide returns the endpoint the terminal/outside world uses: the
// directions are reversed relative to CPUSide.
func (c *Channel) WorldSide() *Endpoint {
	return &Endpoint{out: c.toCPU, in: c.toWorld}
}

// Endpoint is one side of a Channel.
type Endpoint struct {
	out chan<- Event
	in  <-chan Event
}

// Send enqueues an event onto the outbound queue. It does not block
// under normal operation (the buffer absorbs bursts); if the peer has
// stopped draining entirely and the buffer is full, Send blocks,
// mirroring the channel-closed/stuck-peer failure mode spec §7 calls
// ChannelClosed-adjacent.
func (e *Endpoint) Send(tag DeviceRegisterTag, value uint16) {
	e.out <- Event{Tag: tag, Value: value}
}

// Receive blocks until an inbound event arrives.
func (e *Endpoint) Receive() Event {
	return <-e.in
}

// ReceiveTimeout blocks for up to 10ms for an inbound event, returning
// ok=false if none arrived in time.
func (e *Endpoint) ReceiveTimeout() (ev Event, ok bool) {
	select {
	case ev = <-e.in:
		return ev, true
	case <-time.After(pollInterval):
		return Event{}, false
	}
}
