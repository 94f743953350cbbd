package gate

import (
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// resolverFunc tries to rebuild one custom gate family from an operation and its decomposition.
type resolverFunc func(op Operation, def *Definition) Gate

// resolvers are tried in order; the first match wins. Filled in init because
// resolveParallelGates recurses through Resolve.
var resolvers []resolverFunc

func init() {
	resolvers = []resolverFunc{
		resolveParallelGates,
		resolveAceCR,
		resolveZZSwap,
		resolveICCX,
	}
}

// Resolve maps an arbitrary operation to the matching custom gate by comparing decompositions,
// or returns nil when nothing matches. Standard gates have a native wire form and are never
// resolved. The returned gate is always a new value.
func Resolve(op Operation) Gate {
	definer, ok := op.(Definer)
	if !ok {
		return nil
	}
	def := definer.Definition()
	if def == nil || def.NumQubits != op.NumQubits() {
		return nil
	}
	for _, r := range resolvers {
		if g := r(op, def); g != nil {
			return g
		}
	}
	return nil
}

func labelOpts(op Operation) []Option {
	if l, ok := op.(Labeled); ok && l.Label() != "" {
		return []Option{WithLabel(l.Label())}
	}
	return nil
}

func resolveAceCR(op Operation, def *Definition) Gate {
	params := op.Params()
	if op.NumQubits() != 2 || len(params) > 1 {
		return nil
	}
	opts := labelOpts(op)
	if len(params) == 1 {
		opts = append(opts, WithSandwichRx(params[0]))
	}
	for _, polarity := range []string{"+-", "-+"} {
		g, err := NewAceCR(polarity, opts...)
		if err == nil && g.Definition().Equal(def) {
			return g
		}
	}
	return nil
}

func resolveZZSwap(op Operation, def *Definition) Gate {
	params := op.Params()
	if op.NumQubits() != 2 || len(params) != 1 {
		return nil
	}
	g := NewZZSwap(params[0], labelOpts(op)...)
	if g.Definition().Equal(def) {
		return g
	}
	return nil
}

func resolveICCX(op Operation, def *Definition) Gate {
	if op.NumQubits() != 3 || len(op.Params()) != 0 {
		return nil
	}
	for ctrlState := range 4 {
		for _, dagger := range []bool{false, true} {
			g, err := newICCX(ctrlState, dagger, labelOpts(op))
			if err == nil && g.Definition().Equal(def) {
				return g
			}
		}
	}
	return nil
}

// resolveParallelGates requires the parallel_gates name since any product of gates on
// consecutive blocks would otherwise match.
func resolveParallelGates(op Operation, def *Definition) Gate {
	if op.Name() != "parallel_gates" || def.GlobalPhase != 0 {
		return nil
	}
	components := make([]Operation, 0, len(def.Steps))
	offset := 0
	for _, s := range def.Steps {
		for k, q := range s.Qubits {
			if q != offset+k {
				return nil
			}
		}
		offset += len(s.Qubits)
		if g := Resolve(s.Op); g != nil {
			components = append(components, g)
		} else {
			components = append(components, s.Op)
		}
	}
	if offset != def.NumQubits {
		return nil
	}
	g, err := NewParallelGates(components, labelOpts(op)...)
	if err != nil {
		return nil
	}
	return g
}

var (
	acecrName = regexp.MustCompile(`^acecr_(pm|mp)(_rx)?$`)
	iccxName  = regexp.MustCompile(`^iccx(_dg)?(?:_o([0-3]))?$`)
)

// Lookup builds an operation from its wire name and parameters. It knows the standard gate set,
// the non-unitary directives and the custom gates that can be named without a decomposition.
func Lookup(name string, numQubits int, params []float64) (Operation, error) {
	switch name {
	case "measure":
		return Measure(), nil
	case "reset":
		return Reset(), nil
	case "barrier":
		return Barrier(numQubits), nil
	case "zzswap":
		if len(params) != 1 {
			return nil, errValidationf("zzswap takes 1 parameter, got %d", len(params))
		}
		return NewZZSwap(params[0]), nil
	}
	if IsStandardName(name) {
		g, err := NewStandard(name, params...)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	if m := acecrName.FindStringSubmatch(name); m != nil {
		polarity := "+-"
		if m[1] == "mp" {
			polarity = "-+"
		}
		want := 0
		if m[2] != "" {
			want = 1
		}
		if len(params) != want {
			return nil, errValidationf("%s takes %d parameters, got %d", name, want, len(params))
		}
		var opts []Option
		if want == 1 {
			opts = append(opts, WithSandwichRx(params[0]))
		}
		g, err := NewAceCR(polarity, opts...)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	if m := iccxName.FindStringSubmatch(name); m != nil {
		ctrlState := defaultCtrlState
		if m[2] != "" {
			ctrlState, _ = strconv.Atoi(m[2])
		}
		g, err := newICCX(ctrlState, m[1] != "", nil)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, errors.Wrapf(ErrUnknownGate, "%q", name)
}

func errValidationf(format string, args ...any) error {
	return errors.Wrapf(ErrValidation, format, args...)
}
