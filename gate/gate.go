// Package gate defines the operations that can be placed on a circuit: the
// standard gate set understood by the remote compiler, a handful of custom
// gates with their decompositions, and a resolver that recognizes custom gates
// arriving through a generic wire format.
package gate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// ErrValidation is returned (wrapped) when a gate is constructed from invalid arguments.
var ErrValidation = errors.New("invalid gate")

// ErrUnknownGate is returned by Lookup for names it cannot build.
var ErrUnknownGate = errors.New("unknown gate")

// Operation is anything that can be placed on a circuit.
type Operation interface {
	Name() string
	NumQubits() int
	NumClbits() int
	Params() []float64
}

// Gate is a unitary Operation.
type Gate interface {
	Operation
	Matrix() Matrix
	Inverse() Gate
}

// Definer is implemented by gates that decompose into more primitive gates.
type Definer interface {
	Definition() *Definition
}

// Labeled is implemented by gates carrying a display label.
type Labeled interface {
	Label() string
}

// Step places one operation on a subset of the enclosing gate's qubits.
type Step struct {
	Op     Gate
	Qubits []int
}

// Definition is a decomposition of a gate into an ordered list of steps.
type Definition struct {
	NumQubits   int
	Steps       []Step
	GlobalPhase float64
}

func newDefinition(numQubits int) *Definition {
	return &Definition{NumQubits: numQubits}
}

func (d *Definition) add(op Gate, qubits ...int) *Definition {
	d.Steps = append(d.Steps, Step{Op: op, Qubits: qubits})
	return d
}

// Unitary multiplies out the decomposition over the full register.
func (d *Definition) Unitary() Matrix {
	u := Identity(1 << d.NumQubits).Scale(phase(d.GlobalPhase))
	for _, s := range d.Steps {
		u = Embed(s.Op.Matrix(), s.Qubits, d.NumQubits).Mul(u)
	}
	return u
}

// Inverse reverses the steps and inverts each of them.
func (d *Definition) Inverse() *Definition {
	inv := &Definition{NumQubits: d.NumQubits, GlobalPhase: -d.GlobalPhase}
	for i := len(d.Steps) - 1; i >= 0; i-- {
		s := d.Steps[i]
		inv.Steps = append(inv.Steps, Step{Op: s.Op.Inverse(), Qubits: append([]int(nil), s.Qubits...)})
	}
	return inv
}

// Equal compares two definitions step by step.
func (d *Definition) Equal(o *Definition) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.NumQubits != o.NumQubits || len(d.Steps) != len(o.Steps) {
		return false
	}
	if !floatEqual(d.GlobalPhase, o.GlobalPhase) {
		return false
	}
	for i, s := range d.Steps {
		t := o.Steps[i]
		if !intsEqual(s.Qubits, t.Qubits) || !Equal(s.Op, t.Op) {
			return false
		}
	}
	return true
}

// Embed lifts a k-qubit matrix acting on the given qubits into an n-qubit operator.
// Qubit qubits[k] of the register corresponds to bit k of m's basis index.
func Embed(m Matrix, qubits []int, n int) Matrix {
	mask := 0
	for _, q := range qubits {
		mask |= 1 << q
	}
	dim := 1 << n
	out := Zeros(dim)
	for i := range dim {
		si := gather(i, qubits)
		rest := i &^ mask
		for sj := range m.Dim() {
			v := m.At(si, sj)
			if v == 0 {
				continue
			}
			out.set(i, rest|scatter(sj, qubits), v)
		}
	}
	return out
}

func gather(i int, qubits []int) int {
	s := 0
	for k, q := range qubits {
		if i&(1<<q) != 0 {
			s |= 1 << k
		}
	}
	return s
}

func scatter(s int, qubits []int) int {
	i := 0
	for k, q := range qubits {
		if s&(1<<k) != 0 {
			i |= 1 << q
		}
	}
	return i
}

// IsUnitary reports whether op is a Gate.
func IsUnitary(op Operation) bool {
	_, ok := op.(Gate)
	return ok
}

// Equal compares two operations by value. Labels are ignored.
func Equal(a, b Operation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if a.Name() != b.Name() || a.NumQubits() != b.NumQubits() || a.NumClbits() != b.NumClbits() {
		return false
	}
	if !floatsEqual(a.Params(), b.Params()) {
		return false
	}
	if e, ok := a.(interface{ equal(Operation) bool }); ok {
		return e.equal(b)
	}
	return true
}

// Tag renders an operation the way it appears in a program listing, e.g. "rx(pi/2)".
func Tag(op Operation) string {
	params := op.Params()
	if len(params) == 0 {
		return op.Name()
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = FormatParam(p)
	}
	return fmt.Sprintf("%s(%s)", op.Name(), strings.Join(parts, ","))
}

func floatEqual(a, b float64) bool {
	return a == b || (a-b < 1e-12 && b-a < 1e-12)
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !floatEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func labelRepr(label string) string {
	if label == "" {
		return "None"
	}
	return "'" + label + "'"
}
