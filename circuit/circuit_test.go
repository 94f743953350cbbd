package circuit

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HershLalwani/qstaq/gate"
)

func bell() *Circuit {
	return New(2, 2).H(0).CX(0, 1).Measure(0, 0).Measure(1, 1)
}

func TestAppendValidation(t *testing.T) {
	c := New(2, 1)
	require.NoError(t, c.Append(gate.CX(), 0, 1))

	err := c.Append(gate.CX(), 0, 2)
	assert.True(t, errors.Is(err, ErrInvalidInstruction))
	err = c.Append(gate.CX(), 1, 1)
	assert.True(t, errors.Is(err, ErrInvalidInstruction))
	err = c.Append(gate.CX(), 0)
	assert.True(t, errors.Is(err, ErrInvalidInstruction))
	err = c.Append(gate.Measure(), 0, 1)
	assert.True(t, errors.Is(err, ErrInvalidInstruction))
	assert.Len(t, c.Instructions, 1)

	assert.Panics(t, func() { c.H(5) })
}

func TestEqualAndCopy(t *testing.T) {
	a := bell()
	b := a.Copy()
	assert.True(t, a.Equal(b))

	b.Instructions[1].Qubits[0] = 1
	b.Instructions[1].Qubits[1] = 0
	assert.False(t, a.Equal(b))
	assert.Equal(t, []int{0, 1}, a.Instructions[1].Qubits)

	labelled, err := gate.NewAceCR("+-", gate.WithLabel("x"))
	require.NoError(t, err)
	plain, err := gate.NewAceCR("+-")
	require.NoError(t, err)
	assert.True(t, New(2, 0).MustAppend(labelled, 0, 1).Equal(New(2, 0).MustAppend(plain, 0, 1)))
}

func TestParallelGatesQubitOrder(t *testing.T) {
	acecr, err := gate.NewAceCR("+-")
	require.NoError(t, err)
	pg, err := gate.NewParallelGates([]gate.Operation{acecr, gate.RX(1.23)})
	require.NoError(t, err)

	combined := New(3, 0).MustAppend(pg, 0, 2, 1)
	separate := New(3, 0).RX(1.23, 1).MustAppend(acecr, 0, 2)

	u1, err := combined.Unitary()
	require.NoError(t, err)
	u2, err := separate.Unitary()
	require.NoError(t, err)
	assert.True(t, u1.AllClose(u2, 1e-14))
}

func TestUnitary(t *testing.T) {
	c := New(2, 0).H(0).CX(0, 1)
	u, err := c.Unitary()
	require.NoError(t, err)
	s := complex(1/math.Sqrt2, 0)
	want := gate.NewMatrix([][]complex128{
		{s, s, 0, 0},
		{0, 0, s, -s},
		{0, 0, s, s},
		{s, -s, 0, 0},
	})
	assert.True(t, u.AllClose(want, 1e-12))

	_, err = bell().Unitary()
	assert.True(t, errors.Is(err, ErrInvalidInstruction))

	c.GlobalPhase = math.Pi
	u, err = c.Unitary()
	require.NoError(t, err)
	assert.True(t, u.AllClose(want.Scale(-1), 1e-12))
}

func TestLayers(t *testing.T) {
	c := New(3, 0).H(0).H(1).CX(0, 1).X(2).CX(1, 2)
	assert.Equal(t, [][]int{{0, 1, 3}, {2}, {4}}, c.Layers())
	assert.Equal(t, 3, c.Depth())
	assert.Equal(t, map[string]int{"h": 2, "cx": 2, "x": 1}, c.CountOps())
}

func TestDraw(t *testing.T) {
	out := bell().Draw()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2*3+2)
	assert.Contains(t, out, "┤h├")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "⊕")
	assert.Contains(t, out, "╩")
	assert.True(t, strings.HasPrefix(lines[1], "q0: "))
	assert.True(t, strings.HasPrefix(lines[6], "c0: "))

	acecr, err := gate.NewAceCR("-+")
	require.NoError(t, err)
	out = New(3, 0).MustAppend(acecr, 0, 2).DrawWith(func(s string) string { return "<" + s + ">" })
	assert.Contains(t, out, "<┤acecr_mp├>")
	assert.Contains(t, out, "<┤1├>")
	assert.Contains(t, out, "┼")
}

func TestColumnEditing(t *testing.T) {
	c := New(2, 0).H(0).CX(0, 1)
	assert.Equal(t, 0, c.InstructionAt(0, 0))
	assert.Equal(t, -1, c.InstructionAt(0, 1))
	assert.Equal(t, 1, c.InstructionAt(1, 1))
	assert.Equal(t, -1, c.InstructionAt(5, 0))

	require.NoError(t, c.InsertAt(1, gate.X(), 0))
	require.Len(t, c.Instructions, 3)
	assert.Equal(t, "x", c.Instructions[1].Op.Name())
	assert.Equal(t, [][]int{{0}, {1}, {2}}, c.Columns())

	require.NoError(t, c.InsertAt(0, gate.Z(), 1))
	assert.Equal(t, "z", c.Instructions[0].Op.Name())
	assert.Equal(t, 0, c.InstructionAt(0, 1))

	// Past the last column appends.
	require.NoError(t, c.InsertAt(10, gate.H(), 1))
	assert.Equal(t, "h", c.Instructions[len(c.Instructions)-1].Op.Name())

	before := c.Copy()
	err := c.InsertAt(0, gate.CX(), 0, 2)
	assert.True(t, errors.Is(err, ErrInvalidInstruction))
	assert.True(t, before.Equal(c))

	assert.True(t, c.RemoveAt(2, 1), "cx spans both qubits")
	assert.False(t, c.RemoveAt(2, 1))
	assert.Equal(t, []string{"z", "h", "x", "h"}, opNames(c))
}

func opNames(c *Circuit) []string {
	out := make([]string, len(c.Instructions))
	for i, inst := range c.Instructions {
		out[i] = inst.Op.Name()
	}
	return out
}
