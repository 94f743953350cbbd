package gate

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-10

// checkGateDefinition checks the decomposition, the matrix and the inverse against one another.
func checkGateDefinition(t *testing.T, g Gate) {
	t.Helper()

	m := g.Matrix()
	require.True(t, m.IsUnitary(tol), "%v: matrix is not unitary", g)

	definer, ok := g.(Definer)
	require.True(t, ok, "%v has no definition", g)
	defined := definer.Definition().Unitary()
	assert.True(t, defined.IsUnitary(tol), "%v: definition is not unitary", g)
	assert.True(t, defined.AllClose(m, tol), "%v: definition does not match matrix", g)

	inv := g.Inverse()
	invDefined := inv.(Definer).Definition().Unitary()
	assert.True(t, invDefined.IsUnitary(tol), "%v: inverse definition is not unitary", g)
	assert.True(t, invDefined.AllClose(inv.Matrix(), tol), "%v: inverse definition does not match inverse matrix", g)
	assert.True(t, inv.Matrix().AllClose(m.Dagger(), tol), "%v: inverse is not the conjugate transpose", g)
}

func TestAceCR(t *testing.T) {
	g, err := NewAceCR("+-")
	require.NoError(t, err)
	checkGateDefinition(t, g)
	assert.Equal(t, "AceCR+-", g.String())
	assert.Equal(t, "acecr_pm", Tag(g))

	g, err = NewAceCR("-+", WithLabel("label"))
	require.NoError(t, err)
	checkGateDefinition(t, g)
	assert.Equal(t, "AceCR-+", g.String())
	assert.Equal(t, "acecr_mp", Tag(g))
	assert.Equal(t, "label", g.Label())

	g, err = NewAceCR("-+", WithSandwichRx(math.Pi/2))
	require.NoError(t, err)
	checkGateDefinition(t, g)
	assert.Equal(t, "AceCR-+|RXGate(pi/2)|", g.String())
	assert.Equal(t, "acecr_mp_rx(pi/2)", Tag(g))

	g, err = NewAceCR("+-", WithSandwichRx(1.23), WithLabel("label"))
	require.NoError(t, err)
	checkGateDefinition(t, g)
	assert.Equal(t, "acecr_pm_rx(1.23)", Tag(g))

	_, err = NewAceCR("++")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "polarity must be")
}

func TestAceCRMatrix(t *testing.T) {
	g, err := NewAceCR("+-")
	require.NoError(t, err)
	want := NewMatrix([][]complex128{
		{0, 1, 0, 1i},
		{1, 0, -1i, 0},
		{0, 1i, 0, 1},
		{-1i, 0, 1, 0},
	}).Scale(complex(1/math.Sqrt2, 0))
	assert.True(t, g.Matrix().AllClose(want, tol))

	// Without a sandwiched rotation the gate is its own inverse.
	assert.True(t, g.Matrix().Mul(g.Matrix()).AllClose(Identity(4), tol))
}

func TestZZSwap(t *testing.T) {
	g := NewZZSwap(1.23)
	checkGateDefinition(t, g)
	assert.Equal(t, "ZZSwapGate(1.23)", g.String())
	assert.Equal(t, "zzswap(1.23)", Tag(g))

	g = NewZZSwap(4.56, WithLabel("label"))
	checkGateDefinition(t, g)
	assert.Equal(t, "ZZSwapGate(4.56)", g.String())

	// Periodic in the angle.
	assert.True(t, NewZZSwap(0.5).Matrix().AllClose(NewZZSwap(0.5+2*math.Pi).Matrix(), tol))
	assert.True(t, Equal(NewZZSwap(-0.5), NewZZSwap(0.5).Inverse()))

	// ZZSwap(0) is a plain swap.
	assert.True(t, NewZZSwap(0).Matrix().AllClose(Swap().Matrix(), tol))
}

func TestParallelGates(t *testing.T) {
	acecr, err := NewAceCR("+-")
	require.NoError(t, err)

	g, err := NewParallelGates([]Operation{acecr, RX(1.23)})
	require.NoError(t, err)
	assert.Equal(t, "ParallelGates(acecr_pm, rx(1.23))", g.String())
	assert.Equal(t, 3, g.NumQubits())
	checkGateDefinition(t, g)
	assertDisjointBlocks(t, g)

	// Applying the gate on [0, 2, 1] puts the AceCR on [0, 2] and the RX on 1.
	placed := Embed(g.Matrix(), []int{0, 2, 1}, 3)
	separate := Embed(acecr.Matrix(), []int{0, 2}, 3).Mul(Embed(RX(1.23).Matrix(), []int{1}, 3))
	assert.True(t, placed.AllClose(separate, 1e-14))

	g, err = NewParallelGates([]Operation{X(), NewZZSwap(1.23), Z()}, WithLabel("label"))
	require.NoError(t, err)
	assert.Equal(t, "ParallelGates(x, zzswap(1.23), z)", g.String())
	checkGateDefinition(t, g)
	assertDisjointBlocks(t, g)

	_, err = NewParallelGates([]Operation{Measure()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "component gates must be unitary")

	_, err = NewParallelGates(nil)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParallelGatesFlattens(t *testing.T) {
	inner, err := NewParallelGates([]Operation{X(), Y()})
	require.NoError(t, err)
	outer, err := NewParallelGates([]Operation{inner, Z()})
	require.NoError(t, err)
	assert.Len(t, outer.Components(), 3)
	assert.Equal(t, "ParallelGates(x, y, z)", outer.String())
}

func assertDisjointBlocks(t *testing.T, g *ParallelGates) {
	t.Helper()
	seen := map[int]bool{}
	for _, step := range g.Definition().Steps {
		for _, q := range step.Qubits {
			assert.False(t, seen[q], "qubit %d claimed twice", q)
			seen[q] = true
		}
	}
	assert.Len(t, seen, g.NumQubits())
}

func TestAQTICCX(t *testing.T) {
	g := AQTICCX()
	checkGateDefinition(t, g)
	assert.Equal(t, "ICCXGate(label=None, ctrl_state=0)", g.String())
	assert.Equal(t, "iccx_o0", g.Name())

	want := NewMatrix([][]complex128{
		{0, 0, 0, 0, 1i, 0, 0, 0},
		{0, 1, 0, 0, 0, 0, 0, 0},
		{0, 0, 1, 0, 0, 0, 0, 0},
		{0, 0, 0, 1, 0, 0, 0, 0},
		{1i, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0, 0, 1, 0},
		{0, 0, 0, 0, 0, 0, 0, 1},
	})
	assert.True(t, g.Matrix().AllClose(want, tol))
	assert.True(t, g.Definition().Unitary().AllClose(want, tol))
}

func TestICCX(t *testing.T) {
	for ctrlState := range 4 {
		g, err := NewICCX(ctrlState)
		require.NoError(t, err)
		checkGateDefinition(t, g)

		dg, err := NewICCXdg(ctrlState)
		require.NoError(t, err)
		checkGateDefinition(t, dg)
		assert.True(t, Equal(dg, g.Inverse()))
	}

	dg, err := NewICCXdg(3)
	require.NoError(t, err)
	assert.Equal(t, "ICCXdgGate(label=None, ctrl_state=3)", dg.String())
	assert.Equal(t, "iccx_dg", dg.Name())

	g, err := NewICCX(3, WithLabel("x"))
	require.NoError(t, err)
	assert.Equal(t, "ICCXGate(label='x', ctrl_state=3)", g.String())

	_, err = NewICCX(4)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestStandardInverses(t *testing.T) {
	for _, name := range StandardNames() {
		spec := standards[name]
		params := make([]float64, spec.params)
		for i := range params {
			params[i] = 0.3 * float64(i+1)
		}
		g, err := NewStandard(name, params...)
		require.NoError(t, err)
		m := g.Matrix()
		assert.True(t, m.IsUnitary(tol), "%s is not unitary", name)
		assert.True(t, g.Inverse().Matrix().AllClose(m.Dagger(), tol), "%s inverse", name)
	}
}

func TestOpaque(t *testing.T) {
	def := NewZZSwap(0.7).Definition()
	g, err := NewOpaque("mystery", []float64{0.7}, def)
	require.NoError(t, err)
	assert.True(t, g.Matrix().AllClose(NewZZSwap(0.7).Matrix(), tol))
	assert.True(t, g.Inverse().Matrix().AllClose(g.Matrix().Dagger(), tol))

	_, err = NewOpaque("empty", nil, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	bad := newDefinition(2).add(CX(), 0, 2)
	_, err = NewOpaque("bad", nil, bad)
	assert.True(t, errors.Is(err, ErrValidation))
}
