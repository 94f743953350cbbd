package gate

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// standardSpec describes one member of the native gate set.
type standardSpec struct {
	qubits  int
	params  int
	matrix  func(p []float64) Matrix
	inverse func(p []float64) (string, []float64)
}

func selfInverse(name string) func([]float64) (string, []float64) {
	return func(p []float64) (string, []float64) { return name, p }
}

func pairedInverse(name string) func([]float64) (string, []float64) {
	return func([]float64) (string, []float64) { return name, nil }
}

func negatedInverse(name string) func([]float64) (string, []float64) {
	return func(p []float64) (string, []float64) {
		out := make([]float64, len(p))
		for i, v := range p {
			out[i] = -v
		}
		return name, out
	}
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

var standards = map[string]standardSpec{
	"id": {1, 0, func([]float64) Matrix { return Identity(2) }, selfInverse("id")},
	"x": {1, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{{0, 1}, {1, 0}})
	}, selfInverse("x")},
	"y": {1, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{{0, -1i}, {1i, 0}})
	}, selfInverse("y")},
	"z": {1, 0, func([]float64) Matrix { return Diag(1, -1) }, selfInverse("z")},
	"h": {1, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}})
	}, selfInverse("h")},
	"s":   {1, 0, func([]float64) Matrix { return Diag(1, 1i) }, pairedInverse("sdg")},
	"sdg": {1, 0, func([]float64) Matrix { return Diag(1, -1i) }, pairedInverse("s")},
	"t":   {1, 0, func([]float64) Matrix { return Diag(1, phase(math.Pi/4)) }, pairedInverse("tdg")},
	"tdg": {1, 0, func([]float64) Matrix { return Diag(1, phase(-math.Pi/4)) }, pairedInverse("t")},
	"sx": {1, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{{(1 + 1i) / 2, (1 - 1i) / 2}, {(1 - 1i) / 2, (1 + 1i) / 2}})
	}, pairedInverse("sxdg")},
	"sxdg": {1, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{{(1 - 1i) / 2, (1 + 1i) / 2}, {(1 + 1i) / 2, (1 - 1i) / 2}})
	}, pairedInverse("sx")},
	"rx": {1, 1, func(p []float64) Matrix {
		c, s := cosSin(p[0])
		return NewMatrix([][]complex128{{c, -1i * s}, {-1i * s, c}})
	}, negatedInverse("rx")},
	"ry": {1, 1, func(p []float64) Matrix {
		c, s := cosSin(p[0])
		return NewMatrix([][]complex128{{c, -s}, {s, c}})
	}, negatedInverse("ry")},
	"rz": {1, 1, func(p []float64) Matrix {
		return Diag(phase(-p[0]/2), phase(p[0]/2))
	}, negatedInverse("rz")},
	"p": {1, 1, func(p []float64) Matrix { return Diag(1, phase(p[0])) }, negatedInverse("p")},
	"u": {1, 3, func(p []float64) Matrix {
		c, s := cosSin(p[0])
		return NewMatrix([][]complex128{
			{c, -phase(p[2]) * s},
			{phase(p[1]) * s, phase(p[1]+p[2]) * c},
		})
	}, func(p []float64) (string, []float64) { return "u", []float64{-p[0], -p[2], -p[1]} }},
	"cx": {2, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{
			{1, 0, 0, 0},
			{0, 0, 0, 1},
			{0, 0, 1, 0},
			{0, 1, 0, 0},
		})
	}, selfInverse("cx")},
	"cz": {2, 0, func([]float64) Matrix { return Diag(1, 1, 1, -1) }, selfInverse("cz")},
	"cp": {2, 1, func(p []float64) Matrix { return Diag(1, 1, 1, phase(p[0])) }, negatedInverse("cp")},
	"swap": {2, 0, func([]float64) Matrix {
		return NewMatrix([][]complex128{
			{1, 0, 0, 0},
			{0, 0, 1, 0},
			{0, 1, 0, 0},
			{0, 0, 0, 1},
		})
	}, selfInverse("swap")},
	"rxx": {2, 1, func(p []float64) Matrix {
		c, s := cosSin(p[0])
		is := -1i * s
		return NewMatrix([][]complex128{
			{c, 0, 0, is},
			{0, c, is, 0},
			{0, is, c, 0},
			{is, 0, 0, c},
		})
	}, negatedInverse("rxx")},
	"rzz": {2, 1, func(p []float64) Matrix {
		a, b := phase(-p[0]/2), phase(p[0]/2)
		return Diag(a, b, b, a)
	}, negatedInverse("rzz")},
	// Z on the first qubit, X on the second.
	"rzx": {2, 1, func(p []float64) Matrix {
		c, s := cosSin(p[0])
		is := 1i * s
		return NewMatrix([][]complex128{
			{c, 0, -is, 0},
			{0, c, 0, is},
			{-is, 0, c, 0},
			{0, is, 0, c},
		})
	}, negatedInverse("rzx")},
	"ccx": {3, 0, func([]float64) Matrix {
		m := Identity(8)
		m.set(3, 3, 0)
		m.set(7, 7, 0)
		m.set(3, 7, 1)
		m.set(7, 3, 1)
		return m
	}, selfInverse("ccx")},
}

// Standard is a gate from the native gate set. Its wire representation is its name and parameters.
type Standard struct {
	name   string
	params []float64
	spec   standardSpec
}

// NewStandard builds a native gate by name.
func NewStandard(name string, params ...float64) (*Standard, error) {
	spec, ok := standards[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownGate, "%q is not a standard gate", name)
	}
	if len(params) != spec.params {
		return nil, errors.Wrapf(ErrValidation, "%s takes %d parameters, got %d", name, spec.params, len(params))
	}
	return &Standard{name: name, params: append([]float64(nil), params...), spec: spec}, nil
}

func mustStandard(name string, params ...float64) *Standard {
	g, err := NewStandard(name, params...)
	if err != nil {
		panic(err)
	}
	return g
}

// IsStandardName reports whether name belongs to the native gate set.
func IsStandardName(name string) bool {
	_, ok := standards[name]
	return ok
}

// StandardNames lists the native gate set in sorted order.
func StandardNames() []string {
	names := make([]string, 0, len(standards))
	for n := range standards {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (g *Standard) Name() string      { return g.name }
func (g *Standard) NumQubits() int    { return g.spec.qubits }
func (g *Standard) NumClbits() int    { return 0 }
func (g *Standard) Params() []float64 { return append([]float64(nil), g.params...) }
func (g *Standard) Matrix() Matrix    { return g.spec.matrix(g.params) }
func (g *Standard) String() string    { return Tag(g) }

func (g *Standard) Inverse() Gate {
	name, params := g.spec.inverse(g.params)
	return mustStandard(name, params...)
}

func I() *Standard                           { return mustStandard("id") }
func X() *Standard                           { return mustStandard("x") }
func Y() *Standard                           { return mustStandard("y") }
func Z() *Standard                           { return mustStandard("z") }
func H() *Standard                           { return mustStandard("h") }
func S() *Standard                           { return mustStandard("s") }
func Sdg() *Standard                         { return mustStandard("sdg") }
func T() *Standard                           { return mustStandard("t") }
func Tdg() *Standard                         { return mustStandard("tdg") }
func SX() *Standard                          { return mustStandard("sx") }
func RX(theta float64) *Standard             { return mustStandard("rx", theta) }
func RY(theta float64) *Standard             { return mustStandard("ry", theta) }
func RZ(theta float64) *Standard             { return mustStandard("rz", theta) }
func P(lambda float64) *Standard             { return mustStandard("p", lambda) }
func U(theta, phi, lambda float64) *Standard { return mustStandard("u", theta, phi, lambda) }
func CX() *Standard                          { return mustStandard("cx") }
func CZ() *Standard                          { return mustStandard("cz") }
func CP(lambda float64) *Standard            { return mustStandard("cp", lambda) }
func Swap() *Standard                        { return mustStandard("swap") }
func RXX(theta float64) *Standard            { return mustStandard("rxx", theta) }
func RZZ(theta float64) *Standard            { return mustStandard("rzz", theta) }
func RZX(theta float64) *Standard            { return mustStandard("rzx", theta) }
func CCX() *Standard                         { return mustStandard("ccx") }

// Directive is a non-unitary operation: measurement, reset or barrier.
type Directive struct {
	name   string
	qubits int
	clbits int
}

// Measure reads one qubit into one classical bit.
func Measure() *Directive { return &Directive{name: "measure", qubits: 1, clbits: 1} }

// Reset returns one qubit to |0⟩.
func Reset() *Directive { return &Directive{name: "reset", qubits: 1} }

// Barrier blocks reordering across the given number of qubits.
func Barrier(numQubits int) *Directive { return &Directive{name: "barrier", qubits: numQubits} }

func (d *Directive) Name() string      { return d.name }
func (d *Directive) NumQubits() int    { return d.qubits }
func (d *Directive) NumClbits() int    { return d.clbits }
func (d *Directive) Params() []float64 { return nil }
func (d *Directive) String() string    { return d.name }
