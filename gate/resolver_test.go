package gate

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opaqueCopy strips a gate down to its name, parameters and decomposition, the way it looks
// after a trip through the wire format.
func opaqueCopy(t *testing.T, g Gate) *Opaque {
	t.Helper()
	var opts []Option
	if l, ok := g.(Labeled); ok && l.Label() != "" {
		opts = append(opts, WithLabel(l.Label()))
	}
	o, err := NewOpaque(g.Name(), g.Params(), g.(Definer).Definition(), opts...)
	require.NoError(t, err)
	return o
}

func mustAceCR(t *testing.T, polarity string, opts ...Option) *AceCR {
	t.Helper()
	g, err := NewAceCR(polarity, opts...)
	require.NoError(t, err)
	return g
}

func mustICCXdg(t *testing.T, ctrlState int) *ICCX {
	t.Helper()
	g, err := NewICCXdg(ctrlState)
	require.NoError(t, err)
	return g
}

func TestResolveCustomGates(t *testing.T) {
	iccx, err := NewICCX(2)
	require.NoError(t, err)
	iccxdg, err := NewICCXdg(1, WithLabel("dg"))
	require.NoError(t, err)
	parallel, err := NewParallelGates([]Operation{mustAceCR(t, "-+"), RX(1.23), NewZZSwap(0.5)})
	require.NoError(t, err)

	gates := []Gate{
		mustAceCR(t, "+-"),
		mustAceCR(t, "-+"),
		mustAceCR(t, "+-", WithSandwichRx(1.23), WithLabel("label")),
		mustAceCR(t, "-+", WithSandwichRx(-math.Pi/2)),
		NewZZSwap(1.23),
		NewZZSwap(-4.56, WithLabel("zz")),
		AQTICCX(),
		iccx,
		iccxdg,
		parallel,
	}
	for _, g := range gates {
		t.Run(Tag(g), func(t *testing.T) {
			resolved := Resolve(g)
			require.NotNil(t, resolved)
			assert.NotSame(t, g, resolved)
			assert.True(t, Equal(g, resolved))

			fromOpaque := Resolve(opaqueCopy(t, g))
			require.NotNil(t, fromOpaque)
			assert.IsType(t, g, fromOpaque)
			assert.True(t, Equal(g, fromOpaque))
			if l, ok := g.(Labeled); ok {
				assert.Equal(t, l.Label(), fromOpaque.(Labeled).Label())
			}
		})
	}
}

func TestResolveParallelComponents(t *testing.T) {
	parallel, err := NewParallelGates([]Operation{AQTICCX(), NewZZSwap(0.25)})
	require.NoError(t, err)

	def := newDefinition(5).
		add(opaqueCopy(t, AQTICCX()), 0, 1, 2).
		add(opaqueCopy(t, NewZZSwap(0.25)), 3, 4)
	op, err := NewOpaque("parallel_gates", parallel.Params(), def)
	require.NoError(t, err)

	resolved := Resolve(op)
	require.NotNil(t, resolved)
	assert.True(t, Equal(parallel, resolved))
	components := resolved.(*ParallelGates).Components()
	assert.IsType(t, &ICCX{}, components[0])
	assert.IsType(t, &ZZSwap{}, components[1])
}

func TestResolveMisses(t *testing.T) {
	assert.Nil(t, Resolve(CX()))
	assert.Nil(t, Resolve(RX(2)))
	assert.Nil(t, Resolve(Measure()))

	// A product of gates on consecutive blocks is not a parallel gate unless it says so.
	def := newDefinition(2).add(X(), 0).add(Y(), 1)
	op, err := NewOpaque("xy", nil, def)
	require.NoError(t, err)
	assert.Nil(t, Resolve(op))

	// Right name, wrong decomposition.
	def = newDefinition(2).add(CX(), 0, 1).add(RZ(0.5), 1).add(CX(), 0, 1)
	op, err = NewOpaque("zzswap", []float64{0.5}, def)
	require.NoError(t, err)
	assert.Nil(t, Resolve(op))
}

func TestLookup(t *testing.T) {
	for _, tc := range []struct {
		name   string
		qubits int
		params []float64
		want   Operation
	}{
		{"rx", 1, []float64{0.5}, RX(0.5)},
		{"measure", 1, nil, Measure()},
		{"barrier", 3, nil, Barrier(3)},
		{"zzswap", 2, []float64{1.5}, NewZZSwap(1.5)},
		{"acecr_pm", 2, nil, mustAceCR(t, "+-")},
		{"acecr_mp_rx", 2, []float64{0.7}, mustAceCR(t, "-+", WithSandwichRx(0.7))},
		{"iccx_o0", 3, nil, AQTICCX()},
		{"iccx_dg", 3, nil, mustICCXdg(t, 3)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Lookup(tc.name, tc.qubits, tc.params)
			require.NoError(t, err)
			assert.True(t, Equal(tc.want, got), "got %v", got)
		})
	}

	_, err := Lookup("frobnicate", 1, nil)
	assert.True(t, errors.Is(err, ErrUnknownGate))

	_, err = Lookup("rx", 1, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = Lookup("acecr_pm_rx", 2, nil)
	assert.True(t, errors.Is(err, ErrValidation))
}
