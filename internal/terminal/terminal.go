// Package terminal is the outside-world side of the emulator: it owns
// stdin/stdout, translates device-register events into real terminal
// I/O, and is the only code in this module allowed to touch the
// terminal directly (spec §6 "Terminal interaction").
package terminal

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"

	"lc3/internal/events"
)

// Host bridges a raw-mode terminal to an events.Endpoint. It owns
// stdin/stdout exclusively while running, mirroring IntuitionEngine's
// TerminalHost -- raw mode is entered in Start and restored in Stop,
// and a dedicated goroutine does the blocking stdin reads so the event
// loop never stalls waiting on a key that hasn't been requested yet.
type Host struct {
	ep *events.Endpoint

	fd           int
	oldTermState *term.State

	keys    chan byte
	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once

	out *bufio.Writer
}

// NewHost creates a terminal host bound to the world side of an event
// channel.
func NewHost(ep *events.Endpoint) *Host {
	return &Host{
		ep:     ep,
		keys:   make(chan byte, 1),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		out:    bufio.NewWriter(os.Stdout),
	}
}

// Start puts stdin into raw mode (no echo, no line buffering) and
// begins reading bytes into an internal queue in the background. Run
// must be called afterward to actually service events; Start only
// sets up the stdin side.
func (h *Host) Start() error {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("terminal: failed to set raw mode: %w", err)
	}
	h.oldTermState = oldState

	go h.readStdin()
	return nil
}

// readStdin blocks on stdin one byte at a time and forwards each byte
// read to keys. It exits when stdin closes or stopCh fires.
func (h *Host) readStdin() {
	defer close(h.done)
	buf := make([]byte, 1)
	r := os.Stdin
	for {
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case h.keys <- buf[0]:
			case <-h.stopCh:
				return
			}
		}
		if err != nil {
			return
		}
		select {
		case <-h.stopCh:
			return
		default:
		}
	}
}

// Stop terminates the stdin reader and restores the terminal to its
// original mode. Safe to call once Run has returned.
func (h *Host) Stop() {
	h.stopped.Do(func() { close(h.stopCh) })
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}

// Run services events from the CPU until a MachineControl event
// arrives, per spec §6: DisplayData writes a byte to stdout and
// acknowledges with DisplayStatus; KeyboardStatus blocks for one key
// from the background reader and answers with KeyboardData; all other
// tags are ignored.
func (h *Host) Run() {
	defer h.out.Flush()
	for {
		ev := h.ep.Receive()
		switch ev.Tag {
		case events.DisplayData:
			h.out.WriteByte(byte(ev.Value & 0xFF))
			h.out.Flush()
			h.ep.Send(events.DisplayStatus, 1<<15)

		case events.KeyboardStatus:
			b := <-h.keys
			h.ep.Send(events.KeyboardData, uint16(b))

		case events.MachineControl:
			return

		default:
			// ignored, per spec §6
		}
	}
}
