// Package circuit holds an ordered list of operations on a fixed register of
// qubits and classical bits, together with its QASM and text renderings.
package circuit

import (
	"fmt"
	"math/cmplx"
	"slices"

	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/gate"
)

// ErrInvalidInstruction is returned (wrapped) when an operation does not fit the circuit.
var ErrInvalidInstruction = errors.New("invalid instruction")

// Instruction places one operation on specific qubits and classical bits.
type Instruction struct {
	Op     gate.Operation
	Qubits []int
	Clbits []int
}

// Circuit is an ordered list of instructions.
type Circuit struct {
	Name         string
	NumQubits    int
	NumClbits    int
	Instructions []Instruction
	GlobalPhase  float64
}

// New creates an empty circuit.
func New(numQubits, numClbits int) *Circuit {
	return &Circuit{NumQubits: numQubits, NumClbits: numClbits}
}

// Append places op on the given qubits, followed by its classical bits if it has any.
func (c *Circuit) Append(op gate.Operation, bits ...int) error {
	nq, nc := op.NumQubits(), op.NumClbits()
	if len(bits) != nq+nc {
		return errors.Wrapf(ErrInvalidInstruction, "%s expects %d qubits and %d clbits, got %d arguments",
			op.Name(), nq, nc, len(bits))
	}
	qubits := append([]int(nil), bits[:nq]...)
	clbits := append([]int(nil), bits[nq:]...)
	for i, q := range qubits {
		if q < 0 || q >= c.NumQubits {
			return errors.Wrapf(ErrInvalidInstruction, "%s: qubit %d out of range [0, %d)", op.Name(), q, c.NumQubits)
		}
		if slices.Contains(qubits[:i], q) {
			return errors.Wrapf(ErrInvalidInstruction, "%s: duplicate qubit %d", op.Name(), q)
		}
	}
	for _, b := range clbits {
		if b < 0 || b >= c.NumClbits {
			return errors.Wrapf(ErrInvalidInstruction, "%s: clbit %d out of range [0, %d)", op.Name(), b, c.NumClbits)
		}
	}
	c.Instructions = append(c.Instructions, Instruction{Op: op, Qubits: qubits, Clbits: clbits})
	return nil
}

// MustAppend is Append for statically known circuits; it panics on error.
func (c *Circuit) MustAppend(op gate.Operation, bits ...int) *Circuit {
	if err := c.Append(op, bits...); err != nil {
		panic(err)
	}
	return c
}

func (c *Circuit) H(q int) *Circuit                 { return c.MustAppend(gate.H(), q) }
func (c *Circuit) X(q int) *Circuit                 { return c.MustAppend(gate.X(), q) }
func (c *Circuit) Z(q int) *Circuit                 { return c.MustAppend(gate.Z(), q) }
func (c *Circuit) RX(theta float64, q int) *Circuit { return c.MustAppend(gate.RX(theta), q) }
func (c *Circuit) RZ(theta float64, q int) *Circuit { return c.MustAppend(gate.RZ(theta), q) }
func (c *Circuit) CX(control, target int) *Circuit  { return c.MustAppend(gate.CX(), control, target) }
func (c *Circuit) CZ(a, b int) *Circuit             { return c.MustAppend(gate.CZ(), a, b) }
func (c *Circuit) Swap(a, b int) *Circuit           { return c.MustAppend(gate.Swap(), a, b) }
func (c *Circuit) Reset(q int) *Circuit             { return c.MustAppend(gate.Reset(), q) }

// Measure records qubit into clbit.
func (c *Circuit) Measure(qubit, clbit int) *Circuit {
	return c.MustAppend(gate.Measure(), qubit, clbit)
}

// Barrier spans the given qubits, or the whole register when none are given.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	if len(qubits) == 0 {
		for q := range c.NumQubits {
			qubits = append(qubits, q)
		}
	}
	return c.MustAppend(gate.Barrier(len(qubits)), qubits...)
}

// MeasureAll measures qubit i into clbit i, growing the classical register if needed.
func (c *Circuit) MeasureAll() *Circuit {
	c.NumClbits = max(c.NumClbits, c.NumQubits)
	for q := range c.NumQubits {
		c.Measure(q, q)
	}
	return c
}

// Copy returns a deep copy. Operations are shared since they are immutable.
func (c *Circuit) Copy() *Circuit {
	out := *c
	out.Instructions = make([]Instruction, len(c.Instructions))
	for i, inst := range c.Instructions {
		out.Instructions[i] = Instruction{
			Op:     inst.Op,
			Qubits: append([]int(nil), inst.Qubits...),
			Clbits: append([]int(nil), inst.Clbits...),
		}
	}
	return &out
}

// Equal compares two circuits by value. Names and labels are ignored.
func (c *Circuit) Equal(o *Circuit) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.NumQubits != o.NumQubits || c.NumClbits != o.NumClbits || len(c.Instructions) != len(o.Instructions) {
		return false
	}
	if d := c.GlobalPhase - o.GlobalPhase; d > 1e-12 || d < -1e-12 {
		return false
	}
	for i, inst := range c.Instructions {
		other := o.Instructions[i]
		if !slices.Equal(inst.Qubits, other.Qubits) || !slices.Equal(inst.Clbits, other.Clbits) {
			return false
		}
		if !gate.Equal(inst.Op, other.Op) {
			return false
		}
	}
	return true
}

// Unitary multiplies out a circuit made only of gates. Barriers are skipped.
func (c *Circuit) Unitary() (gate.Matrix, error) {
	u := gate.Identity(1 << c.NumQubits).Scale(cmplx.Exp(complex(0, c.GlobalPhase)))
	for _, inst := range c.Instructions {
		if inst.Op.Name() == "barrier" {
			continue
		}
		g, ok := inst.Op.(gate.Gate)
		if !ok {
			return gate.Matrix{}, errors.Wrapf(ErrInvalidInstruction, "%s is not unitary", inst.Op.Name())
		}
		u = gate.Embed(g.Matrix(), inst.Qubits, c.NumQubits).Mul(u)
	}
	return u, nil
}

// CountOps tallies instructions by operation name.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, inst := range c.Instructions {
		counts[inst.Op.Name()]++
	}
	return counts
}

// Depth is the number of layers in the circuit.
func (c *Circuit) Depth() int {
	return len(c.Layers())
}

func (c *Circuit) String() string {
	name := c.Name
	if name == "" {
		name = "circuit"
	}
	return fmt.Sprintf("%s(qubits=%d, clbits=%d, instructions=%d)", name, c.NumQubits, c.NumClbits, len(c.Instructions))
}
