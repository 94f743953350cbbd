package gate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParam(t *testing.T) {
	for in, want := range map[string]float64{
		"1.5707":  1.5707,
		"-0.5":    -0.5,
		"3.14e-2": 0.0314,
		"pi":      math.Pi,
		"pi/2":    math.Pi / 2,
		"2pi":     2 * math.Pi,
		"3*pi/4":  3 * math.Pi / 4,
		"-pi/2":   -math.Pi / 2,
		" PI ":    math.Pi,
	} {
		got, err := ParseParam(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}

	for _, in := range []string{"", "tau", "pi/0", "1..2", "NaN", "pi*2"} {
		_, err := ParseParam(in)
		assert.Error(t, err, in)
	}
}

func TestParseParams(t *testing.T) {
	got, err := ParseParams("pi/2, 0.25,-pi")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Pi / 2, 0.25, -math.Pi}, got, 1e-12)

	_, err = ParseParams("pi, nope")
	assert.Error(t, err)
}

func TestFormatParam(t *testing.T) {
	assert.Equal(t, "pi/2", FormatParam(math.Pi/2))
	assert.Equal(t, "-3*pi/4", FormatParam(-3*math.Pi/4))
	assert.Equal(t, "1.23", FormatParam(1.23))
	assert.Equal(t, "0", FormatParam(0))
	assert.Equal(t, "5*pi/6", FormatParam(5*math.Pi/6))
	assert.Equal(t, "2*pi", FormatParam(2*math.Pi))

	for _, v := range []float64{math.Pi / 3, -math.Pi / 8, 0.1, 2.5e-7} {
		back, err := ParseParam(FormatParam(v))
		require.NoError(t, err)
		assert.InDelta(t, v, back, 1e-12)
	}
}
