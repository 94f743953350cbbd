package gate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Option configures a custom gate at construction.
type Option func(*options)

type options struct {
	label      string
	sandwichRx float64
}

// WithLabel sets a display label. Labels never take part in equality.
func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

// WithSandwichRx embeds an RX rotation (radians) on the target between the two halves of an AceCR.
func WithSandwichRx(rads float64) Option {
	return func(o *options) { o.sandwichRx = rads }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AceCR is an echoed cross-resonance gate: two RZX(±pi/4) halves separated by an X on the
// control, optionally with an RX rotation on the target in between.
type AceCR struct {
	polarity   string
	sandwichRx float64
	label      string
}

// NewAceCR builds an AceCR. Polarity must be "+-" or "-+".
func NewAceCR(polarity string, opts ...Option) (*AceCR, error) {
	if polarity != "+-" && polarity != "-+" {
		return nil, errors.Wrapf(ErrValidation, "polarity must be either '+-' or '-+', got %q", polarity)
	}
	o := collect(opts)
	return &AceCR{polarity: polarity, sandwichRx: o.sandwichRx, label: o.label}, nil
}

func (g *AceCR) Polarity() string    { return g.polarity }
func (g *AceCR) SandwichRx() float64 { return g.sandwichRx }
func (g *AceCR) Label() string       { return g.label }
func (g *AceCR) NumQubits() int      { return 2 }
func (g *AceCR) NumClbits() int      { return 0 }

func (g *AceCR) Name() string {
	name := "acecr_" + strings.NewReplacer("+", "p", "-", "m").Replace(g.polarity)
	if g.sandwichRx != 0 {
		name += "_rx"
	}
	return name
}

func (g *AceCR) Params() []float64 {
	if g.sandwichRx == 0 {
		return nil
	}
	return []float64{g.sandwichRx}
}

func (g *AceCR) sign() float64 {
	if g.polarity == "+-" {
		return 1
	}
	return -1
}

func (g *AceCR) Definition() *Definition {
	d := newDefinition(2).
		add(RZX(g.sign()*math.Pi/4), 0, 1).
		add(X(), 0)
	if g.sandwichRx != 0 {
		d.add(RX(g.sandwichRx), 1)
	}
	return d.add(RZX(-g.sign()*math.Pi/4), 0, 1)
}

// Matrix is X₀·RZX(±pi/2)·RX₁(θ) in closed form.
func (g *AceCR) Matrix() Matrix {
	s := complex(g.sign(), 0)
	base := NewMatrix([][]complex128{
		{0, 1, 0, 1i * s},
		{1, 0, -1i * s, 0},
		{0, 1i * s, 0, 1},
		{-1i * s, 0, 1, 0},
	}).Scale(invSqrt2)
	if g.sandwichRx == 0 {
		return base
	}
	return base.Mul(Kron(RX(g.sandwichRx).Matrix(), Identity(2)))
}

// Inverse keeps the polarity: reading the reversed steps back, the X conjugation flips both
// RZX halves so only the sandwiched rotation changes sign.
func (g *AceCR) Inverse() Gate {
	return &AceCR{polarity: g.polarity, sandwichRx: -g.sandwichRx, label: g.label}
}

func (g *AceCR) String() string {
	if g.sandwichRx == 0 {
		return "AceCR" + g.polarity
	}
	return fmt.Sprintf("AceCR%s|RXGate(%s)|", g.polarity, FormatParam(g.sandwichRx))
}

// ZZSwap applies exp(iθ) to |01⟩ and |10⟩ while swapping them.
type ZZSwap struct {
	theta float64
	label string
}

// NewZZSwap builds a ZZSwap with angle theta in radians.
func NewZZSwap(theta float64, opts ...Option) *ZZSwap {
	return &ZZSwap{theta: theta, label: collect(opts).label}
}

func (g *ZZSwap) Theta() float64    { return g.theta }
func (g *ZZSwap) Label() string     { return g.label }
func (g *ZZSwap) Name() string      { return "zzswap" }
func (g *ZZSwap) NumQubits() int    { return 2 }
func (g *ZZSwap) NumClbits() int    { return 0 }
func (g *ZZSwap) Params() []float64 { return []float64{g.theta} }

func (g *ZZSwap) Definition() *Definition {
	d := newDefinition(2).
		add(CX(), 0, 1).
		add(RZ(g.theta), 1).
		add(CX(), 1, 0).
		add(CX(), 0, 1)
	d.GlobalPhase = g.theta / 2
	return d
}

func (g *ZZSwap) Matrix() Matrix {
	e := phase(g.theta)
	return NewMatrix([][]complex128{
		{1, 0, 0, 0},
		{0, 0, e, 0},
		{0, e, 0, 0},
		{0, 0, 0, 1},
	})
}

func (g *ZZSwap) Inverse() Gate { return &ZZSwap{theta: -g.theta, label: g.label} }

func (g *ZZSwap) String() string {
	return "ZZSwapGate(" + strconv.FormatFloat(g.theta, 'g', -1, 64) + ")"
}

// defaultCtrlState requires both controls to be |1⟩.
const defaultCtrlState = 3

// ICCX is a doubly controlled iX. Bit k of the control state is the value control qubit k must
// hold for the iX to fire on the target (qubit 2).
type ICCX struct {
	ctrlState int
	dagger    bool
	label     string
}

// NewICCX builds a controlled iX. ctrlState must be in [0, 3].
func NewICCX(ctrlState int, opts ...Option) (*ICCX, error) {
	return newICCX(ctrlState, false, opts)
}

// NewICCXdg builds a controlled -iX, the inverse of ICCX with the same control state.
func NewICCXdg(ctrlState int, opts ...Option) (*ICCX, error) {
	return newICCX(ctrlState, true, opts)
}

// AQTICCX is the anti-controlled iX native to the AQT device: it fires when both controls are |0⟩.
func AQTICCX(opts ...Option) *ICCX {
	g, _ := newICCX(0, false, opts)
	return g
}

func newICCX(ctrlState int, dagger bool, opts []Option) (*ICCX, error) {
	if ctrlState < 0 || ctrlState > 3 {
		return nil, errors.Wrapf(ErrValidation, "ctrl_state must be in [0, 3], got %d", ctrlState)
	}
	return &ICCX{ctrlState: ctrlState, dagger: dagger, label: collect(opts).label}, nil
}

func (g *ICCX) CtrlState() int    { return g.ctrlState }
func (g *ICCX) Dagger() bool      { return g.dagger }
func (g *ICCX) Label() string     { return g.label }
func (g *ICCX) NumQubits() int    { return 3 }
func (g *ICCX) NumClbits() int    { return 0 }
func (g *ICCX) Params() []float64 { return nil }

func (g *ICCX) Name() string {
	name := "iccx"
	if g.dagger {
		name += "_dg"
	}
	if g.ctrlState != defaultCtrlState {
		name += "_o" + strconv.Itoa(g.ctrlState)
	}
	return name
}

func (g *ICCX) phaseAngle() float64 {
	if g.dagger {
		return -math.Pi / 2
	}
	return math.Pi / 2
}

func (g *ICCX) Definition() *Definition {
	d := newDefinition(3)
	var flipped []int
	for k := range 2 {
		if g.ctrlState&(1<<k) == 0 {
			flipped = append(flipped, k)
		}
	}
	for _, q := range flipped {
		d.add(X(), q)
	}
	d.add(CCX(), 0, 1, 2).add(CP(g.phaseAngle()), 0, 1)
	for _, q := range flipped {
		d.add(X(), q)
	}
	return d
}

func (g *ICCX) Matrix() Matrix {
	v := complex128(1i)
	if g.dagger {
		v = -1i
	}
	m := Identity(8)
	a, b := g.ctrlState, g.ctrlState|4
	m.set(a, a, 0)
	m.set(b, b, 0)
	m.set(a, b, v)
	m.set(b, a, v)
	return m
}

func (g *ICCX) Inverse() Gate {
	return &ICCX{ctrlState: g.ctrlState, dagger: !g.dagger, label: g.label}
}

func (g *ICCX) String() string {
	kind := "ICCXGate"
	if g.dagger {
		kind = "ICCXdgGate"
	}
	return fmt.Sprintf("%s(label=%s, ctrl_state=%d)", kind, labelRepr(g.label), g.ctrlState)
}
