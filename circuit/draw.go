package circuit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/HershLalwani/qstaq/gate"
)

// cell is what one wire shows during one step: three rows per qubit, only mid for a clbit.
type cell struct {
	top, mid, bot string
}

// glyphs used for controlled and swap gates, per argument position.
var glyphs = map[string][]string{
	"cx":   {"●", "⊕"},
	"cz":   {"●", "●"},
	"ccx":  {"●", "●", "⊕"},
	"swap": {"×", "×"},
}

// Draw renders the circuit as a text diagram.
func (c *Circuit) Draw() string {
	return c.DrawWith(nil)
}

// DrawWith is Draw with style applied to every gate glyph, e.g. a lipgloss Render.
func (c *Circuit) DrawWith(style func(string) string) string {
	if style == nil {
		style = func(s string) string { return s }
	}
	d := drawer{style: style}

	qrows := make([][3]strings.Builder, c.NumQubits)
	crows := make([]strings.Builder, c.NumClbits)
	labelW := len(fmt.Sprintf("q%d", max(c.NumQubits, c.NumClbits)-1))
	for q := range qrows {
		qrows[q][0].WriteString(strings.Repeat(" ", labelW+2))
		fmt.Fprintf(&qrows[q][1], "%-*s: ─", labelW, "q"+strconv.Itoa(q))
		qrows[q][2].WriteString(strings.Repeat(" ", labelW+2))
	}
	for b := range crows {
		fmt.Fprintf(&crows[b], "%-*s: ═", labelW, "c"+strconv.Itoa(b))
	}
	for q := range qrows {
		qrows[q][0].WriteString(" ")
		qrows[q][2].WriteString(" ")
	}

	for _, layer := range c.layout(true) {
		w := 3
		for _, i := range layer {
			w = max(w, cellWidth(c.Instructions[i].Op))
		}
		w += 2
		d.w = w

		qcells := make([]cell, c.NumQubits)
		for q := range qcells {
			qcells[q] = d.wire()
		}
		ccells := make([]string, c.NumClbits)
		for b := range ccells {
			ccells[b] = center(w, "═", "═")
		}
		for _, i := range layer {
			d.place(c.Instructions[i], qcells, ccells)
		}
		for q, cl := range qcells {
			qrows[q][0].WriteString(cl.top)
			qrows[q][1].WriteString(cl.mid)
			qrows[q][2].WriteString(cl.bot)
		}
		for b, s := range ccells {
			crows[b].WriteString(s)
		}
	}

	var sb strings.Builder
	for q := range qrows {
		for r := range 3 {
			line := qrows[q][r].String()
			if r == 1 {
				line += "─"
			}
			sb.WriteString(strings.TrimRight(line, " "))
			sb.WriteString("\n")
		}
	}
	for b := range crows {
		sb.WriteString(crows[b].String())
		sb.WriteString("═\n")
	}
	return sb.String()
}

// cellWidth is the width of the widest box the operation draws.
func cellWidth(op gate.Operation) int {
	if _, ok := glyphs[op.Name()]; ok {
		return 1
	}
	return utf8.RuneCountInString(boxLabel(op)) + 2
}

func boxLabel(op gate.Operation) string {
	switch op.Name() {
	case "measure":
		return "M"
	case "reset":
		return "|0>"
	case "barrier":
		return "░"
	}
	if l, ok := op.(gate.Labeled); ok && l.Label() != "" {
		return l.Label()
	}
	return gate.Tag(op)
}

type drawer struct {
	w     int
	style func(string) string
}

func (d drawer) wire() cell {
	blank := strings.Repeat(" ", d.w)
	return cell{blank, strings.Repeat("─", d.w), blank}
}

func (d drawer) vert(s string) string {
	return center(d.w, " ", s)
}

// glyph draws a single-character symbol on the wire with optional connectors above and below.
func (d drawer) glyph(sym string, up, down bool) cell {
	cl := d.wire()
	cl.mid = center(d.w, "─", d.style(sym))
	if up {
		cl.top = d.vert("│")
	}
	if down {
		cl.bot = d.vert("│")
	}
	return cl
}

// box draws label in a frame, opening the frame where a connector leaves it.
func (d drawer) box(label string, up, down, measured bool) cell {
	inner := utf8.RuneCountInString(label)
	boxW := inner + 2
	margin := (d.w - boxW) / 2
	right := d.w - margin - boxW
	conn := min(max((d.w-1)/2-margin, 1), boxW-2)

	border := func(l, r, joint string, open bool) string {
		runes := []rune(l + strings.Repeat("─", inner) + r)
		if open {
			runes[conn] = []rune(joint)[0]
		}
		return strings.Repeat(" ", margin) + d.style(string(runes)) + strings.Repeat(" ", right)
	}
	bottomJoint := "┬"
	if measured {
		bottomJoint = "╥"
	}
	return cell{
		top: border("┌", "┐", "┴", up),
		mid: strings.Repeat("─", margin) + d.style("┤"+label+"├") + strings.Repeat("─", right),
		bot: border("└", "┘", bottomJoint, down || measured),
	}
}

func (d drawer) place(inst Instruction, qcells []cell, ccells []string) {
	op := inst.Op
	switch op.Name() {
	case "barrier":
		for _, q := range inst.Qubits {
			qcells[q] = cell{d.vert("░"), center(d.w, "─", d.style("░")), d.vert("░")}
		}
		return
	case "measure":
		q, b := inst.Qubits[0], inst.Clbits[0]
		qcells[q] = d.box("M", false, false, true)
		for below := q + 1; below < len(qcells); below++ {
			qcells[below] = cell{d.vert("║"), center(d.w, "─", "╫"), d.vert("║")}
		}
		for above := range b {
			ccells[above] = center(d.w, "═", "╬")
		}
		ccells[b] = center(d.w, "═", "╩")
		return
	}

	lo, hi := inst.Qubits[0], inst.Qubits[0]
	for _, q := range inst.Qubits {
		lo, hi = min(lo, q), max(hi, q)
	}
	for q := lo + 1; q < hi; q++ {
		qcells[q] = cell{d.vert("│"), center(d.w, "─", "┼"), d.vert("│")}
	}
	syms, isGlyph := glyphs[op.Name()]
	for k, q := range inst.Qubits {
		up, down := q > lo, q < hi
		switch {
		case isGlyph:
			qcells[q] = d.glyph(syms[k], up, down)
		case k == 0:
			qcells[q] = d.box(boxLabel(op), up, down, false)
		default:
			qcells[q] = d.box(strconv.Itoa(k), up, down, false)
		}
	}
}

// center pads s to width w with fill, biased left like the connectors.
func center(w int, fill, s string) string {
	n := visibleLen(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, w-n-left)
}

// visibleLen counts runes outside ANSI escape sequences.
func visibleLen(s string) int {
	n, inEsc := 0, false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			n++
		}
	}
	return n
}
