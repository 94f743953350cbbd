package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	controlsHeight = 6
	histogramWidth = 30
)

// View renders the UI.
func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	circuitHeight := max(m.height-controlsHeight-2, 6)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCircuitPanel(circuitWidth, circuitHeight),
		m.renderQASMPanel(qasmWidth, circuitHeight),
	)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, m.renderControlsPanel(m.width-4, controlsHeight-2))

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}
	return frame
}

func (m model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	title := "Quantum Circuit"
	if m.circuit != nil && len(m.circuit.Instructions) > 0 {
		title += fmt.Sprintf("  %d qubits, depth %d", m.circuit.NumQubits, m.circuit.Depth())
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	inner := max(width-4, 10)
	sb.WriteString(m.renderDiagram(inner))

	if m.counts != nil {
		sb.WriteString("\n")
		sb.WriteString(renderHistogram(m.counts, histogramWidth))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderDiagram draws the circuit truncated to width. In grid mode the cursor qubit's wire is
// marked and a label beneath names the cursor step and the gate under it.
func (m model) renderDiagram(width int) string {
	grid := m.editingGrid()
	lines := strings.Split(strings.TrimSuffix(m.circuit.DrawWith(func(s string) string {
		return gateStyle.Render(s)
	}), "\n"), "\n")

	var sb strings.Builder
	for i, line := range lines {
		if grid {
			marker := "  "
			if i == 3*m.cursorQubit+1 {
				marker = activeStyle.Render("▸ ")
			}
			line = marker + line
		}
		sb.WriteString(ansi.Truncate(line, width, "…"))
		sb.WriteString("\n")
	}
	if grid {
		label := fmt.Sprintf("step %d, q[%d]", m.cursorStep, m.cursorQubit)
		if i := m.circuit.InstructionAt(m.cursorStep, m.cursorQubit); i >= 0 {
			label += "  " + m.circuit.Instructions[i].Op.Name()
		}
		sb.WriteString(activeStyle.Render(label))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) renderQASMPanel(width, height int) string {
	var sb strings.Builder
	title := "QASM Editor"
	if m.path != "" {
		title += "  " + m.path
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())
	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

func (m model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Keys: "))
	if m.focus == focusGrid {
		sb.WriteString("←→ step  ↑↓ qubit  a Add  d Delete  Esc Editor  ^S Save  ^R Run")
	} else {
		sb.WriteString("^A Add gate  ^G Grid  ^S Save  ^R Run")
	}
	if m.backend != nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s, %d shots)", m.backend.Name(), m.shots)))
	}
	sb.WriteString("  ^C Quit\n")

	switch {
	case m.running:
		sb.WriteString(m.spinner.View() + " " + m.statusMsg)
	case m.parseErr != nil:
		sb.WriteString(errorStyle.Render(m.parseErr.Error()))
	case m.statusMsg != "":
		sb.WriteString(activeStyle.Render(m.statusMsg))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

func (m model) renderParamInput() string {
	item := gateMenu[m.menuCat].items[m.menuItem]
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Parameters for " + item.name))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Value: %s_", m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Example: " + item.hint))
	return menuBorderStyle.Render(sb.String())
}

// renderHistogram draws one bar per measured bitstring, sorted by bitstring,
// scaled so the most frequent outcome spans width cells.
func renderHistogram(counts map[string]int, width int) string {
	if len(counts) == 0 {
		return dimStyle.Render("no counts")
	}
	keys := make([]string, 0, len(counts))
	peak, total, keyW := 0, 0, 0
	for k, v := range counts {
		keys = append(keys, k)
		peak = max(peak, v)
		total += v
		keyW = max(keyW, len(k))
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := counts[k]
		n := 0
		if peak > 0 {
			n = v * width / peak
		}
		fmt.Fprintf(&sb, "%-*s │%s %d (%.1f%%)\n", keyW, k,
			barStyle.Render(strings.Repeat("█", n)), v, 100*float64(v)/float64(total))
	}
	return sb.String()
}

// overlayAt composites the overlay string on top of the background at column x, row y.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bgLines[row] = spliceLineAt(bgLines[row], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns starting at x with overlay, keeping
// the background's escape sequences intact on both sides.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if pad := x - ansi.StringWidth(prefix); pad > 0 {
		prefix += strings.Repeat(" ", pad)
	}
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
