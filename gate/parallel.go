package gate

import (
	"strings"

	"github.com/pkg/errors"
)

// ParallelGates applies independent component gates side by side. The first component takes the
// first block of qubits equal to its arity, the next component the following block, and so on.
type ParallelGates struct {
	components []Gate
	label      string
}

// NewParallelGates combines components into one gate. Nested ParallelGates are flattened and
// every component must be unitary.
func NewParallelGates(components []Operation, opts ...Option) (*ParallelGates, error) {
	if len(components) == 0 {
		return nil, errors.Wrap(ErrValidation, "parallel gates need at least one component")
	}
	pg := &ParallelGates{label: collect(opts).label}
	for _, c := range components {
		switch c := c.(type) {
		case *ParallelGates:
			pg.components = append(pg.components, c.components...)
		case Gate:
			pg.components = append(pg.components, c)
		default:
			return nil, errors.Wrapf(ErrValidation, "component gates must be unitary, got %s", c.Name())
		}
	}
	return pg, nil
}

// Components returns the flattened component gates in qubit order.
func (g *ParallelGates) Components() []Gate {
	return append([]Gate(nil), g.components...)
}

// QubitBlocks returns the qubit indices claimed by each component.
func (g *ParallelGates) QubitBlocks() [][]int {
	blocks := make([][]int, len(g.components))
	offset := 0
	for i, c := range g.components {
		for q := range c.NumQubits() {
			blocks[i] = append(blocks[i], offset+q)
		}
		offset += c.NumQubits()
	}
	return blocks
}

func (g *ParallelGates) Label() string  { return g.label }
func (g *ParallelGates) Name() string   { return "parallel_gates" }
func (g *ParallelGates) NumClbits() int { return 0 }

func (g *ParallelGates) NumQubits() int {
	n := 0
	for _, c := range g.components {
		n += c.NumQubits()
	}
	return n
}

func (g *ParallelGates) Params() []float64 {
	var params []float64
	for _, c := range g.components {
		params = append(params, c.Params()...)
	}
	return params
}

func (g *ParallelGates) Definition() *Definition {
	d := newDefinition(g.NumQubits())
	for i, block := range g.QubitBlocks() {
		d.add(g.components[i], block...)
	}
	return d
}

func (g *ParallelGates) Matrix() Matrix {
	m := Identity(1)
	for _, c := range g.components {
		m = Kron(c.Matrix(), m)
	}
	return m
}

func (g *ParallelGates) Inverse() Gate {
	inv := &ParallelGates{label: g.label, components: make([]Gate, len(g.components))}
	for i, c := range g.components {
		inv.components[i] = c.Inverse()
	}
	return inv
}

func (g *ParallelGates) equal(o Operation) bool {
	other := o.(*ParallelGates)
	if len(g.components) != len(other.components) {
		return false
	}
	for i, c := range g.components {
		if !Equal(c, other.components[i]) {
			return false
		}
	}
	return true
}

func (g *ParallelGates) String() string {
	tags := make([]string, len(g.components))
	for i, c := range g.components {
		tags[i] = Tag(c)
	}
	return "ParallelGates(" + strings.Join(tags, ", ") + ")"
}
