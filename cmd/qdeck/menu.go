package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/gate"
)

// menuItem is a single gate choice in the picker. Picking it inserts a QASM
// statement acting on qubits 0..arity-1, which the user then edits in place.
type menuItem struct {
	name   string
	gate   string
	symbol string
	arity  int
	params int
	hint   string
}

type menuCategory struct {
	name  string
	items []menuItem
}

var gateMenu = []menuCategory{
	{
		name: "Single Qubit",
		items: []menuItem{
			{name: "Hadamard", gate: "h", symbol: "H", arity: 1},
			{name: "Pauli-X (NOT)", gate: "x", symbol: "X", arity: 1},
			{name: "Pauli-Y", gate: "y", symbol: "Y", arity: 1},
			{name: "Pauli-Z", gate: "z", symbol: "Z", arity: 1},
			{name: "Phase (S)", gate: "s", symbol: "S", arity: 1},
			{name: "Phase Dagger (S†)", gate: "sdg", symbol: "S†", arity: 1},
			{name: "T Gate", gate: "t", symbol: "T", arity: 1},
			{name: "T Dagger (T†)", gate: "tdg", symbol: "T†", arity: 1},
			{name: "√X (SX)", gate: "sx", symbol: "√X", arity: 1},
		},
	},
	{
		name: "Rotation",
		items: []menuItem{
			{name: "Rotate X", gate: "rx", symbol: "RX", arity: 1, params: 1, hint: "pi/2"},
			{name: "Rotate Y", gate: "ry", symbol: "RY", arity: 1, params: 1, hint: "pi/2"},
			{name: "Rotate Z", gate: "rz", symbol: "RZ", arity: 1, params: 1, hint: "pi/2"},
			{name: "Phase Shift", gate: "p", symbol: "P", arity: 1, params: 1, hint: "pi/4"},
			{name: "Universal U", gate: "u", symbol: "U", arity: 1, params: 3, hint: "theta,phi,lambda"},
		},
	},
	{
		name: "Multi Qubit",
		items: []menuItem{
			{name: "CNOT", gate: "cx", symbol: "●─⊕", arity: 2},
			{name: "Controlled-Z", gate: "cz", symbol: "●─●", arity: 2},
			{name: "C-Phase", gate: "cp", symbol: "●─P", arity: 2, params: 1, hint: "pi/2"},
			{name: "SWAP", gate: "swap", symbol: "×─×", arity: 2},
			{name: "Toffoli (CCX)", gate: "ccx", symbol: "●─●─⊕", arity: 3},
			{name: "RZX", gate: "rzx", symbol: "RZX", arity: 2, params: 1, hint: "pi/4"},
		},
	},
	{
		name: "Native",
		items: []menuItem{
			{name: "AceCR +-", gate: "acecr_pm", symbol: "AceCR", arity: 2},
			{name: "AceCR -+", gate: "acecr_mp", symbol: "AceCR", arity: 2},
			{name: "AceCR +- with Rx", gate: "acecr_pm_rx", symbol: "AceCR", arity: 2, params: 1, hint: "pi/2"},
			{name: "ZZ-SWAP", gate: "zzswap", symbol: "ZZSwap", arity: 2, params: 1, hint: "pi/4"},
			{name: "iCCX", gate: "iccx", symbol: "iCCX", arity: 3},
			{name: "iCCX†", gate: "iccx_dg", symbol: "iCCX†", arity: 3},
			{name: "AQT iCCX", gate: "iccx_o0", symbol: "iCCX", arity: 3},
		},
	},
	{
		name: "Special",
		items: []menuItem{
			{name: "Measure", gate: "measure", symbol: "M", arity: 1},
			{name: "Reset", gate: "reset", symbol: "|0⟩", arity: 1},
			{name: "Barrier", gate: "barrier", symbol: "░", arity: 1},
		},
	},
}

// values parses the raw parameter text the user typed. It must hold exactly item.params values.
func (item menuItem) values(raw string) ([]float64, error) {
	if item.params == 0 {
		return nil, nil
	}
	vals, err := gate.ParseParams(raw)
	if err != nil {
		return nil, err
	}
	if len(vals) != item.params {
		return nil, errors.Errorf("%s takes %d parameter(s), got %d", item.gate, item.params, len(vals))
	}
	return vals, nil
}

// operation builds the gate the item stands for.
func (item menuItem) operation(raw string) (gate.Operation, error) {
	vals, err := item.values(raw)
	if err != nil {
		return nil, err
	}
	return gate.Lookup(item.gate, item.arity, vals)
}

// statement renders the QASM line the item inserts, acting on qubits 0..arity-1.
func (item menuItem) statement(raw string) (string, error) {
	vals, err := item.values(raw)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(item.gate)
	if len(vals) > 0 {
		formatted := make([]string, len(vals))
		for i, v := range vals {
			formatted[i] = gate.FormatParam(v)
		}
		fmt.Fprintf(&sb, "(%s)", strings.Join(formatted, ", "))
	}
	if item.gate == "measure" {
		sb.WriteString(" q[0] -> c[0];")
		return sb.String(), nil
	}
	for q := range item.arity {
		sep := ", "
		if q == 0 {
			sep = " "
		}
		fmt.Fprintf(&sb, "%sq[%d]", sep, q)
	}
	sb.WriteString(";")
	return sb.String(), nil
}

// renderMenu draws the gate picker: a tab row of categories, then the items of the
// selected one with their QASM name and, for parameterized gates, an example value.
func (m model) renderMenu() string {
	tabs := make([]string, 0, 2*len(gateMenu))
	for i, cat := range gateMenu {
		style := dimStyle
		if i == m.menuCat {
			style = activeStyle.Underline(true)
		}
		if i > 0 {
			tabs = append(tabs, dimStyle.Render(" · "))
		}
		tabs = append(tabs, style.Render(cat.name))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	rows := make([]string, 0, len(gateMenu[m.menuCat].items))
	for i, item := range gateMenu[m.menuCat].items {
		cursor, label, symbol := "  ", menuNormalStyle, dimStyle
		if i == m.menuItem {
			cursor, label, symbol = "▸ ", menuSelectedStyle, gateStyle
		}
		row := label.Render(cursor+padRight(item.name, 20)) + symbol.Render(padRight(item.symbol, 9))
		if item.params > 0 {
			row += dimStyle.Render(item.gate + "(" + item.hint + ")")
		}
		rows = append(rows, row)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Insert gate"),
		header,
		dimStyle.Render(strings.Repeat("─", max(lipgloss.Width(header), 40))),
		strings.Join(rows, "\n"),
		"",
		dimStyle.Render("↑↓ item  ←→ category  enter insert  esc close"),
	)
	return menuBorderStyle.Render(body)
}

func padRight(s string, w int) string {
	return s + strings.Repeat(" ", max(w-ansi.StringWidth(s), 1))
}
