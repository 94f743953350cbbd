package superstaq

import (
	"context"

	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/circuit"
	"github.com/HershLalwani/qstaq/serialization"
)

// Default targets per compiler family, used when the caller passes an empty target.
const (
	DefaultAQTTarget         = "keysight"
	DefaultIBMQTarget        = "ibmq_qasm_simulator"
	DefaultQSCOUTTarget      = "qscout"
	DefaultCQTarget          = "cq"
	DefaultNeutralAtomTarget = "neutral_atom_qpu"
)

var errNoCircuits = errors.New("no circuits to compile")

type compileRequest struct {
	Circuits       string `json:"qiskit_circuits"`
	Backend        string `json:"backend"`
	NumECACircuits int    `json:"num_eca_circuits,omitempty"`
	RandomSeed     *int64 `json:"random_seed,omitempty"`
}

type compileResponse struct {
	Circuits      string   `json:"qiskit_circuits"`
	StateJP       string   `json:"state_jp"`
	PulseListsJP  string   `json:"pulse_lists_jp"`
	Pulses        string   `json:"pulses"`
	JaqalPrograms []string `json:"jaqal_programs"`
}

func (p *Provider) compile(ctx context.Context, endpoint string, req compileRequest, circuits []*circuit.Circuit, target string) (*compileResponse, error) {
	if len(circuits) == 0 {
		return nil, errors.Wrap(errNoCircuits, endpoint)
	}
	data, err := serialization.SerializeCircuits(circuits...)
	if err != nil {
		return nil, errors.Wrap(err, endpoint)
	}
	req.Circuits = data
	req.Backend = target
	var resp compileResponse
	if err := p.client.post(ctx, endpoint, req, &resp); err != nil {
		return nil, errors.Wrap(err, endpoint)
	}
	return &resp, nil
}

func (r *compileResponse) circuits() ([]*circuit.Circuit, error) {
	cs, err := serialization.DeserializeCircuits(r.Circuits)
	if err != nil {
		return nil, errors.Wrap(err, "compiled circuits")
	}
	return cs, nil
}

func orDefault(target, def string) string {
	if target == "" {
		return def
	}
	return target
}

// AQTCompile compiles one circuit for an AQT device. Seq and PulseList are set
// only when a qtrl decoder is registered.
func (p *Provider) AQTCompile(ctx context.Context, c *circuit.Circuit, target string) (*CompilerOutput, error) {
	resp, err := p.compile(ctx, "aqt_compile", compileRequest{}, []*circuit.Circuit{c}, orDefault(target, DefaultAQTTarget))
	if err != nil {
		return nil, err
	}
	return p.readAQT(resp, false)
}

// AQTCompileBatch compiles several circuits for an AQT device in one request.
func (p *Provider) AQTCompileBatch(ctx context.Context, cs []*circuit.Circuit, target string) (*CompilerOutput, error) {
	resp, err := p.compile(ctx, "aqt_compile", compileRequest{}, cs, orDefault(target, DefaultAQTTarget))
	if err != nil {
		return nil, err
	}
	return p.readAQT(resp, true)
}

// AQTCompileECA compiles a circuit with equivalent circuit averaging: the service returns
// numEquivalent logically equivalent randomized circuits. seed may be nil.
func (p *Provider) AQTCompileECA(ctx context.Context, c *circuit.Circuit, numEquivalent int, seed *int64, target string) (*CompilerOutput, error) {
	if numEquivalent < 1 {
		return nil, errors.Errorf("aqt_compile: number of equivalent circuits must be positive, got %d", numEquivalent)
	}
	req := compileRequest{NumECACircuits: numEquivalent, RandomSeed: seed}
	resp, err := p.compile(ctx, "aqt_compile", req, []*circuit.Circuit{c}, orDefault(target, DefaultAQTTarget))
	if err != nil {
		return nil, err
	}
	return p.readAQT(resp, true)
}

func (p *Provider) readAQT(resp *compileResponse, batch bool) (*CompilerOutput, error) {
	cs, err := resp.circuits()
	if err != nil {
		return nil, err
	}

	var (
		seq        any
		pulseLists []any
	)
	if dec, ok := p.modules.lookup(ModuleQtrl); ok {
		if seq, err = decodeOne(resp.StateJP, dec); err != nil {
			return nil, errors.Wrap(err, "aqt sequence")
		}
		if pulseLists, err = decodeEach(resp.PulseListsJP, genericDecoder); err != nil {
			return nil, errors.Wrap(err, "aqt pulse lists")
		}
	}

	if batch {
		return &CompilerOutput{Circuits: cs, PulseLists: pulseLists, Seq: seq}, nil
	}
	if len(cs) == 0 {
		return nil, errors.Wrap(serialization.ErrMalformed, "aqt_compile returned no circuits")
	}
	out := &CompilerOutput{Circuit: cs[0], Seq: seq}
	if len(pulseLists) > 0 {
		out.PulseList = pulseLists[0]
	}
	return out, nil
}

// IBMQCompile compiles one circuit for an IBM Quantum device, returning the
// circuit and its pulse schedule.
func (p *Provider) IBMQCompile(ctx context.Context, c *circuit.Circuit, target string) (*CompilerOutput, error) {
	cs, pulses, err := p.ibmqCompile(ctx, []*circuit.Circuit{c}, target)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 || len(pulses) == 0 {
		return nil, errors.Wrap(serialization.ErrMalformed, "ibmq_compile returned no circuits")
	}
	return &CompilerOutput{Circuit: cs[0], PulseSequence: pulses[0]}, nil
}

func (p *Provider) IBMQCompileBatch(ctx context.Context, cs []*circuit.Circuit, target string) (*CompilerOutput, error) {
	compiled, pulses, err := p.ibmqCompile(ctx, cs, target)
	if err != nil {
		return nil, err
	}
	return &CompilerOutput{Circuits: compiled, PulseSequences: pulses}, nil
}

func (p *Provider) ibmqCompile(ctx context.Context, cs []*circuit.Circuit, target string) ([]*circuit.Circuit, []any, error) {
	resp, err := p.compile(ctx, "ibmq_compile", compileRequest{}, cs, orDefault(target, DefaultIBMQTarget))
	if err != nil {
		return nil, nil, err
	}
	compiled, err := resp.circuits()
	if err != nil {
		return nil, nil, err
	}
	pulses, err := decodeEach(resp.Pulses, genericDecoder)
	if err != nil {
		return nil, nil, errors.Wrap(err, "ibmq pulse schedules")
	}
	return compiled, pulses, nil
}

// QSCOUTCompile compiles one circuit for the QSCOUT trapped-ion device, returning
// the circuit and its Jaqal program.
func (p *Provider) QSCOUTCompile(ctx context.Context, c *circuit.Circuit, target string) (*CompilerOutput, error) {
	resp, err := p.compile(ctx, "qscout_compile", compileRequest{}, []*circuit.Circuit{c}, orDefault(target, DefaultQSCOUTTarget))
	if err != nil {
		return nil, err
	}
	cs, err := resp.circuits()
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 || len(resp.JaqalPrograms) == 0 {
		return nil, errors.Wrap(serialization.ErrMalformed, "qscout_compile returned no circuits")
	}
	return &CompilerOutput{Circuit: cs[0], JaqalProgram: resp.JaqalPrograms[0]}, nil
}

func (p *Provider) QSCOUTCompileBatch(ctx context.Context, cs []*circuit.Circuit, target string) (*CompilerOutput, error) {
	resp, err := p.compile(ctx, "qscout_compile", compileRequest{}, cs, orDefault(target, DefaultQSCOUTTarget))
	if err != nil {
		return nil, err
	}
	compiled, err := resp.circuits()
	if err != nil {
		return nil, err
	}
	programs := resp.JaqalPrograms
	if programs == nil {
		programs = []string{}
	}
	return &CompilerOutput{Circuits: compiled, JaqalPrograms: programs}, nil
}

// CQCompile compiles one circuit for a ColdQuanta device. Only circuits come back.
func (p *Provider) CQCompile(ctx context.Context, c *circuit.Circuit, target string) (*CompilerOutput, error) {
	resp, err := p.compile(ctx, "cq_compile", compileRequest{}, []*circuit.Circuit{c}, orDefault(target, DefaultCQTarget))
	if err != nil {
		return nil, err
	}
	cs, err := resp.circuits()
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return nil, errors.Wrap(serialization.ErrMalformed, "cq_compile returned no circuits")
	}
	return &CompilerOutput{Circuit: cs[0]}, nil
}

func (p *Provider) CQCompileBatch(ctx context.Context, cs []*circuit.Circuit, target string) (*CompilerOutput, error) {
	resp, err := p.compile(ctx, "cq_compile", compileRequest{}, cs, orDefault(target, DefaultCQTarget))
	if err != nil {
		return nil, err
	}
	compiled, err := resp.circuits()
	if err != nil {
		return nil, err
	}
	return &CompilerOutput{Circuits: compiled}, nil
}

// NeutralAtomCompile compiles one circuit to a neutral atom pulse schedule. The
// schedule is decoded by the registered pulser module; without one it fails with
// *ModuleNotFoundError.
func (p *Provider) NeutralAtomCompile(ctx context.Context, c *circuit.Circuit, target string) (any, error) {
	pulses, err := p.NeutralAtomCompileBatch(ctx, []*circuit.Circuit{c}, target)
	if err != nil {
		return nil, err
	}
	if len(pulses) == 0 {
		return nil, errors.Wrap(serialization.ErrMalformed, "neutral_atom_compile returned no schedules")
	}
	return pulses[0], nil
}

func (p *Provider) NeutralAtomCompileBatch(ctx context.Context, cs []*circuit.Circuit, target string) ([]any, error) {
	resp, err := p.compile(ctx, "neutral_atom_compile", compileRequest{}, cs, orDefault(target, DefaultNeutralAtomTarget))
	if err != nil {
		return nil, err
	}
	dec, ok := p.modules.lookup(ModulePulser)
	if !ok {
		return nil, &ModuleNotFoundError{Name: ModulePulser, Context: "neutral_atom_compile"}
	}
	pulses, err := decodeEach(resp.Pulses, dec)
	if err != nil {
		return nil, errors.Wrap(err, "neutral atom schedules")
	}
	return pulses, nil
}
