// Package serialization converts circuits to and from the text transport format
// exchanged with the compile and job endpoints: a JSON document, base64 encoded.
//
// Custom gates travel as a definition table keyed by instruction name. On the way
// back every definition is rebuilt as a gate.Opaque and passed through
// gate.Resolve, so AceCR, ZZSwap, ICCX and ParallelGates come back as their
// native types.
package serialization

import (
	"encoding/base64"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/circuit"
	"github.com/HershLalwani/qstaq/gate"
)

// FormatVersion is written into every document. Readers accept any version.
const FormatVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformed is returned (wrapped) when a transport string cannot be decoded.
var ErrMalformed = errors.New("malformed circuit data")

type instruction struct {
	Name   string    `json:"name"`
	Qubits []int     `json:"qubits"`
	Clbits []int     `json:"clbits,omitempty"`
	Params []float64 `json:"params,omitempty"`
}

type circuitDoc struct {
	Name         string        `json:"name,omitempty"`
	NumQubits    int           `json:"num_qubits"`
	NumClbits    int           `json:"num_clbits"`
	GlobalPhase  float64       `json:"global_phase,omitempty"`
	Instructions []instruction `json:"instructions"`
}

// definition describes one custom gate. Its steps may name other definitions.
type definition struct {
	Name        string        `json:"name"`
	NumQubits   int           `json:"num_qubits"`
	Params      []float64     `json:"params,omitempty"`
	Label       string        `json:"label,omitempty"`
	GlobalPhase float64       `json:"global_phase,omitempty"`
	Steps       []instruction `json:"steps"`
}

type document struct {
	Version     int                   `json:"version"`
	Definitions map[string]definition `json:"definitions,omitempty"`
	Circuits    []circuitDoc          `json:"circuits"`
}

// SerializeCircuits encodes circuits into a single transport string.
func SerializeCircuits(circuits ...*circuit.Circuit) (string, error) {
	enc := newEncoder()
	doc := document{Version: FormatVersion, Circuits: make([]circuitDoc, 0, len(circuits))}
	for _, c := range circuits {
		cd := circuitDoc{
			Name:         c.Name,
			NumQubits:    c.NumQubits,
			NumClbits:    c.NumClbits,
			GlobalPhase:  c.GlobalPhase,
			Instructions: make([]instruction, 0, len(c.Instructions)),
		}
		for _, inst := range c.Instructions {
			name, err := enc.name(inst.Op)
			if err != nil {
				return "", err
			}
			cd.Instructions = append(cd.Instructions, instruction{
				Name:   name,
				Qubits: inst.Qubits,
				Clbits: inst.Clbits,
				Params: inst.Op.Params(),
			})
		}
		doc.Circuits = append(doc.Circuits, cd)
	}
	if len(enc.defs) > 0 {
		doc.Definitions = enc.defs
	}
	return Serialize(doc)
}

// DeserializeCircuits decodes a transport string produced by SerializeCircuits.
func DeserializeCircuits(data string) ([]*circuit.Circuit, error) {
	var doc document
	if err := Deserialize(data, &doc); err != nil {
		return nil, err
	}
	dec := &decoder{defs: doc.Definitions, built: map[string]gate.Gate{}}
	out := make([]*circuit.Circuit, 0, len(doc.Circuits))
	for i, cd := range doc.Circuits {
		c := circuit.New(cd.NumQubits, cd.NumClbits)
		c.Name = cd.Name
		c.GlobalPhase = cd.GlobalPhase
		for _, inst := range cd.Instructions {
			op, err := dec.operation(inst)
			if err != nil {
				return nil, errors.Wrapf(err, "circuit %d", i)
			}
			bits := append(append([]int(nil), inst.Qubits...), inst.Clbits...)
			if err := c.Append(op, bits...); err != nil {
				return nil, errors.Wrapf(err, "circuit %d", i)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Serialize encodes any JSON-representable value as a base64 transport string.
func Serialize(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "encode")
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Deserialize decodes a transport string produced by Serialize into v.
func Deserialize(data string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}
	return nil
}

// encoder assigns every distinct custom gate a unique instruction name: the gate's own name for
// the first one seen, then name_1, name_2 and so on for gates that share a name but differ in value
// or label.
type encoder struct {
	defs  map[string]definition
	taken map[string][]named
}

type named struct {
	key string
	op  gate.Operation
}

func newEncoder() *encoder {
	return &encoder{defs: map[string]definition{}, taken: map[string][]named{}}
}

func (e *encoder) name(op gate.Operation) (string, error) {
	if _, ok := op.(*gate.Standard); ok {
		return op.Name(), nil
	}
	if _, ok := op.(*gate.Directive); ok {
		return op.Name(), nil
	}
	for _, n := range e.taken[op.Name()] {
		if gate.Equal(n.op, op) && labelOf(n.op) == labelOf(op) {
			return n.key, nil
		}
	}
	definer, ok := op.(gate.Definer)
	if !ok {
		return "", errors.Errorf("gate %s has no definition and cannot be serialized", op.Name())
	}

	key := op.Name()
	if k := len(e.taken[op.Name()]); k > 0 {
		key += "_" + strconv.Itoa(k)
	}
	e.taken[op.Name()] = append(e.taken[op.Name()], named{key, op})

	def := definer.Definition()
	d := definition{
		Name:        op.Name(),
		NumQubits:   op.NumQubits(),
		Params:      op.Params(),
		GlobalPhase: def.GlobalPhase,
		Steps:       make([]instruction, 0, len(def.Steps)),
	}
	d.Label = labelOf(op)
	for _, s := range def.Steps {
		name, err := e.name(s.Op)
		if err != nil {
			return "", err
		}
		d.Steps = append(d.Steps, instruction{Name: name, Qubits: s.Qubits, Params: s.Op.Params()})
	}
	e.defs[key] = d
	return key, nil
}

func labelOf(op gate.Operation) string {
	if l, ok := op.(gate.Labeled); ok {
		return l.Label()
	}
	return ""
}

type decoder struct {
	defs  map[string]definition
	built map[string]gate.Gate
	depth int
}

func (d *decoder) operation(inst instruction) (gate.Operation, error) {
	if _, ok := d.defs[inst.Name]; ok {
		g, err := d.custom(inst.Name)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	op, err := gate.Lookup(inst.Name, len(inst.Qubits), inst.Params)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return op, nil
}

// maxNesting bounds definition recursion so a cyclic table cannot loop forever.
const maxNesting = 32

func (d *decoder) custom(key string) (gate.Gate, error) {
	if g, ok := d.built[key]; ok {
		return g, nil
	}
	if d.depth > maxNesting {
		return nil, errors.Wrapf(ErrMalformed, "definition %s nests too deeply", key)
	}
	d.depth++
	defer func() { d.depth-- }()

	wd := d.defs[key]
	def := &gate.Definition{NumQubits: wd.NumQubits, GlobalPhase: wd.GlobalPhase}
	for _, s := range wd.Steps {
		op, err := d.operation(s)
		if err != nil {
			return nil, errors.Wrapf(err, "definition %s", key)
		}
		g, ok := op.(gate.Gate)
		if !ok {
			return nil, errors.Wrapf(ErrMalformed, "definition %s: %s is not unitary", key, op.Name())
		}
		def.Steps = append(def.Steps, gate.Step{Op: g, Qubits: s.Qubits})
	}

	var opts []gate.Option
	if wd.Label != "" {
		opts = append(opts, gate.WithLabel(wd.Label))
	}
	opaque, err := gate.NewOpaque(wd.Name, wd.Params, def, opts...)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	var g gate.Gate = opaque
	if resolved := gate.Resolve(opaque); resolved != nil {
		g = resolved
	}
	d.built[key] = g
	return g, nil
}
