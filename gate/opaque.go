package gate

import (
	"github.com/pkg/errors"
)

// Opaque is a gate known only through its name, parameters and decomposition, typically
// decoded from wire data. Resolve turns recognizable ones back into native custom gates.
type Opaque struct {
	name   string
	params []float64
	def    *Definition
	label  string
}

// NewOpaque wraps a decomposition as a gate.
func NewOpaque(name string, params []float64, def *Definition, opts ...Option) (*Opaque, error) {
	if def == nil {
		return nil, errors.Wrapf(ErrValidation, "gate %s has no definition", name)
	}
	for _, s := range def.Steps {
		if len(s.Qubits) != s.Op.NumQubits() {
			return nil, errors.Wrapf(ErrValidation, "gate %s: step %s spans %d qubits, needs %d",
				name, s.Op.Name(), len(s.Qubits), s.Op.NumQubits())
		}
		for _, q := range s.Qubits {
			if q < 0 || q >= def.NumQubits {
				return nil, errors.Wrapf(ErrValidation, "gate %s: qubit %d out of range", name, q)
			}
		}
	}
	return &Opaque{
		name:   name,
		params: append([]float64(nil), params...),
		def:    def,
		label:  collect(opts).label,
	}, nil
}

func (g *Opaque) Name() string            { return g.name }
func (g *Opaque) Label() string           { return g.label }
func (g *Opaque) NumQubits() int          { return g.def.NumQubits }
func (g *Opaque) NumClbits() int          { return 0 }
func (g *Opaque) Params() []float64       { return append([]float64(nil), g.params...) }
func (g *Opaque) Definition() *Definition { return g.def }
func (g *Opaque) Matrix() Matrix          { return g.def.Unitary() }
func (g *Opaque) String() string          { return Tag(g) }

func (g *Opaque) Inverse() Gate {
	return &Opaque{name: g.name + "_dg", params: g.Params(), def: g.def.Inverse(), label: g.label}
}

func (g *Opaque) equal(o Operation) bool {
	return g.def.Equal(o.(*Opaque).def)
}
