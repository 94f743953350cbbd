package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/HershLalwani/qstaq/circuit"
	"github.com/HershLalwani/qstaq/superstaq"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusEditor focus = iota
	focusGrid
	focusMenu
	focusInputParam
)

const defaultQASM = `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
creg c[2];

h q[0];
cx q[0], q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

// model is the editor state. The QASM text is the source of truth; the circuit
// is re-parsed from it on every edit.
type model struct {
	editor    textarea.Model
	spinner   spinner.Model
	circuit   *circuit.Circuit
	parseErr  error
	lastQASM  string
	path      string
	width     int
	height    int
	focus     focus
	statusMsg string

	menuCat    int
	menuItem   int
	paramInput string
	fromGrid   bool // menu opened from the grid inserts at the cursor

	cursorStep  int
	cursorQubit int

	ctx     context.Context
	logger  *zap.Logger
	backend *superstaq.Backend // nil when no API key is configured
	shots   int
	running bool
	counts  map[string]int
}

type jobDoneMsg struct {
	jobID  string
	counts map[string]int
	err    error
}

func newModel(ctx context.Context, path, qasm string, backend *superstaq.Backend, shots int, logger *zap.Logger) model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = activeStyle

	m := model{
		editor:  ta,
		spinner: sp,
		path:    path,
		ctx:     ctx,
		logger:  logger,
		backend: backend,
		shots:   shots,
	}
	m.editor.SetValue(qasm)
	m.reparse()
	return m
}

// reparse rebuilds the circuit from the editor text if it changed. A parse error
// keeps the last good circuit on screen.
func (m *model) reparse() {
	qasm := m.editor.Value()
	if qasm == m.lastQASM && m.circuit != nil {
		return
	}
	m.lastQASM = qasm
	c, err := circuit.ParseQASM(qasm)
	m.parseErr = err
	if err == nil {
		m.circuit = c
		m.counts = nil
	}
	if m.circuit == nil {
		m.circuit = circuit.New(1, 0)
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(msg.Width/3-6, 20))
		m.editor.SetHeight(max(msg.Height-controlsHeight-8, 4))

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case jobDoneMsg:
		m.running = false
		if msg.err != nil {
			m.statusMsg = "Run failed: " + msg.err.Error()
			break
		}
		m.counts = msg.counts
		m.statusMsg = "Job " + msg.jobID + " done"

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusEditor:
			switch key {
			case "esc":
				return m, tea.Quit
			case "ctrl+s":
				m.save()
			case "ctrl+a":
				m.openMenu(false)
			case "ctrl+g":
				m.focus = focusGrid
				m.clampCursor()
			case "ctrl+r":
				cmds = append(cmds, m.run())
			default:
				m.statusMsg = ""
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
				m.reparse()
			}

		case focusGrid:
			switch key {
			case "esc", "ctrl+g":
				m.focus = focusEditor
			case "left", "h":
				m.cursorStep--
			case "right", "l":
				m.cursorStep++
			case "up", "k":
				m.cursorQubit--
			case "down", "j":
				m.cursorQubit++
			case "enter", "a", "ctrl+a":
				m.openMenu(true)
			case "d", "delete", "backspace":
				m.removeAtCursor()
			case "ctrl+s":
				m.save()
			case "ctrl+r":
				cmds = append(cmds, m.run())
			}
			m.clampCursor()

		case focusMenu:
			switch key {
			case "esc":
				m.focus = m.returnFocus()
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				if item.params > 0 {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				m.insert(item, "")
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = m.returnFocus()
				m.paramInput = ""
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				m.insert(gateMenu[m.menuCat].items[m.menuItem], m.paramInput)
			default:
				if len(key) == 1 && strings.ContainsAny(key, "0123456789.,-+eEpi*/ ") {
					m.paramInput += key
				}
			}
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) openMenu(fromGrid bool) {
	m.focus = focusMenu
	m.fromGrid = fromGrid
	m.menuCat = 0
	m.menuItem = 0
}

func (m *model) returnFocus() focus {
	if m.fromGrid {
		return focusGrid
	}
	return focusEditor
}

func (m model) editingGrid() bool {
	return m.focus == focusGrid || (m.focus != focusEditor && m.fromGrid)
}

// clampCursor keeps the grid cursor on a qubit and at most one step past the last column.
func (m *model) clampCursor() {
	m.cursorQubit = max(min(m.cursorQubit, m.circuit.NumQubits-1), 0)
	m.cursorStep = max(min(m.cursorStep, len(m.circuit.Columns())), 0)
}

// place inserts item on consecutive qubits starting at the grid cursor. Measurements write to the
// clbit of the same index, growing the classical register if needed.
func (m *model) place(item menuItem, params string) {
	op, err := item.operation(params)
	if err != nil {
		m.statusMsg = "Invalid parameter: " + err.Error()
		return
	}
	c := m.circuit.Copy()
	bits := make([]int, 0, item.arity+1)
	for q := range item.arity {
		bits = append(bits, m.cursorQubit+q)
	}
	if op.NumClbits() > 0 {
		bits = append(bits, m.cursorQubit)
		c.NumClbits = max(c.NumClbits, m.cursorQubit+1)
	}
	m.paramInput = ""
	m.focus = focusGrid
	if err := c.InsertAt(m.cursorStep, op, bits...); err != nil {
		m.statusMsg = "Cannot place gate: " + err.Error()
		return
	}
	m.setCircuit(c)
}

func (m *model) removeAtCursor() {
	c := m.circuit.Copy()
	if !c.RemoveAt(m.cursorStep, m.cursorQubit) {
		m.statusMsg = "Nothing to delete"
		return
	}
	m.setCircuit(c)
}

// setCircuit replaces the editor text with c's QASM. Comments and register names are not kept.
func (m *model) setCircuit(c *circuit.Circuit) {
	if m.parseErr != nil {
		m.statusMsg = "Fix the QASM before editing the grid"
		return
	}
	m.editor.SetValue(c.ToQASM())
	m.reparse()
}

// insert adds the item's statement on a new line at the cursor and returns to the editor.
// From the grid it places the gate at the grid cursor instead.
func (m *model) insert(item menuItem, params string) {
	if m.fromGrid {
		m.place(item, params)
		return
	}
	stmt, err := item.statement(params)
	if err != nil {
		m.statusMsg = "Invalid parameter: " + err.Error()
		return
	}
	m.editor.CursorEnd()
	m.editor.InsertString("\n" + stmt)
	m.paramInput = ""
	m.focus = focusEditor
	m.reparse()
}

func (m *model) save() {
	path := m.path
	if path == "" {
		path = "circuit.qasm"
	}
	if err := os.WriteFile(path, []byte(m.editor.Value()), 0o644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.path = path
	m.statusMsg = "Saved " + path
}

// run submits the current circuit and waits for its counts in the background.
func (m *model) run() tea.Cmd {
	switch {
	case m.backend == nil:
		m.statusMsg = "No backend: set SUPERSTAQ_API_KEY and --target to run"
		return nil
	case m.parseErr != nil:
		m.statusMsg = "Fix the QASM before running"
		return nil
	case m.running:
		return nil
	}
	m.running = true
	m.statusMsg = "Running on " + m.backend.Name()

	c, backend, shots, ctx, logger := m.circuit.Copy(), m.backend, m.shots, m.ctx, m.logger
	wait := func() tea.Msg {
		job, err := backend.Run(ctx, []*circuit.Circuit{c}, superstaq.RunOptions{Shots: shots})
		if err != nil {
			return jobDoneMsg{err: err}
		}
		logger.Info("job submitted", zap.String("job_id", job.ID()))
		res, err := job.Result(ctx)
		if err != nil {
			return jobDoneMsg{jobID: job.ID(), err: err}
		}
		counts, err := res.Counts(0)
		return jobDoneMsg{jobID: job.ID(), counts: counts, err: err}
	}
	return tea.Batch(m.spinner.Tick, wait)
}
