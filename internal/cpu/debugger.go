package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"lc3/internal/events"
	"lc3/internal/mem"
)

// model is the bubbletea model backing Debug, a single-step interactive
// TUI over a live CPU. Unlike the teacher's 6502 model, which owns its
// Cpu and a Bus by value, this model holds the Memory and event
// Endpoint separately, matching Tick's signature.
type model struct {
	cpu *CPU
	mem *mem.Memory
	ev  *events.Endpoint

	offset uint16 // start address of the extra row pageTable renders
	prevPC uint16
	error  error
}

// wordsPerRow is how many memory cells renderPage packs onto one line.
const wordsPerRow = 8

func (m model) Init() tea.Cmd {
	return nil
}

// Update steps the CPU by one Tick on space or "j", matching the
// teacher's single-step binding. "q" quits.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.cpu.Registers.PC
			if err := m.cpu.Tick(m.mem, m.ev); err != nil {
				m.error = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// renderPage renders one row of wordsPerRow consecutive memory cells.
// The cell the PC points at is bracketed.
func (m model) renderPage(start uint16) string {
	if start%wordsPerRow != 0 {
		panic("start must be a multiple of wordsPerRow")
	}
	s := fmt.Sprintf("%04x | ", start)
	for i := range uint16(wordsPerRow) {
		addr := start + i
		cell := m.mem.Read(addr)
		if addr == m.cpu.Registers.PC {
			s += fmt.Sprintf("[%04x] ", cell)
		} else {
			s += fmt.Sprintf(" %04x  ", cell)
		}
	}
	return s
}

// status renders the register file, PC (current and previous), and
// the N/Z/P flags.
func (m model) status() string {
	var flags string
	for _, flag := range []bool{
		m.cpu.Registers.Flags.Negative,
		m.cpu.Registers.Flags.Zero,
		m.cpu.Registers.Flags.Positive,
	} {
		if flag {
			flags += "/ "
		} else {
			flags += "  "
		}
	}

	var regs strings.Builder
	for i := range uint16(8) {
		v, _ := m.cpu.Registers.Get(i)
		fmt.Fprintf(&regs, "R%d: %04x\n", i, v)
	}

	return fmt.Sprintf("PC: %04x (%04x)\n%sN Z P\n%s",
		m.cpu.Registers.PC, m.prevPC, regs.String(), flags)
}

// pageTable renders the page around the PC plus a handful of fixed
// reference pages, mirroring the teacher's layout.
func (m model) pageTable() string {
	header := "addr | "
	for b := range wordsPerRow {
		header += fmt.Sprintf(" %03x  ", b)
	}

	rows := []string{header}

	pc := m.cpu.Registers.PC
	pcPage := pc - (pc % wordsPerRow)
	offsets := []uint16{
		0, m.offset, pcPage,
		events.KeyboardStatus.Addr() - (events.KeyboardStatus.Addr() % wordsPerRow),
		events.MachineControl.Addr() - (events.MachineControl.Addr() % wordsPerRow),
	}
	for _, addr := range offsets {
		rows = append(rows, m.renderPage(addr))
	}
	return strings.Join(rows, "\n")
}

// View renders the page table, the register/flag status, and the
// opcode and raw word of the instruction about to run.
func (m model) View() string {
	instr := m.mem.Read(m.cpu.Registers.PC)
	op := DecodeOpcode(instr)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sprintf("next opcode: %v (raw %#04x)", op, instr),
	)
}

// Debug starts an interactive single-step TUI over a CPU already loaded
// with a program, against the given memory and event endpoint.
func (c *CPU) Debug(m *mem.Memory, ev *events.Endpoint, offset uint16) {
	result, err := tea.NewProgram(model{
		cpu:    c,
		mem:    m,
		ev:     ev,
		offset: offset,
	}).Run()
	if err != nil {
		panic(err)
	}
	x := result.(model)
	if x.error != nil {
		fmt.Println("Error:", x.error)
	}
}
