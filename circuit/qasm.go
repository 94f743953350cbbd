package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/gate"
)

// ErrQASM is returned (wrapped, with the line number) for programs ParseQASM cannot read.
var ErrQASM = errors.New("invalid qasm")

var (
	regRegex     = regexp.MustCompile(`^(qreg|creg)\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	measureRegex = regexp.MustCompile(`^measure\s+(\w+)\s*\[\s*(\d+)\s*\]\s*->\s*(\w+)\s*\[\s*(\d+)\s*\]$`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	argRegex     = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

// ToQASM renders the circuit as an OpenQASM 2.0 program. Gates outside qelib1.inc are declared
// opaque by name; parallel gates are written out as their components.
func (c *Circuit) ToQASM() string {
	var body strings.Builder
	declared := map[string]bool{}
	var decls []string

	var write func(op gate.Operation, qubits, clbits []int)
	write = func(op gate.Operation, qubits, clbits []int) {
		switch op := op.(type) {
		case *gate.ParallelGates:
			for i, block := range op.QubitBlocks() {
				mapped := make([]int, len(block))
				for k, q := range block {
					mapped[k] = qubits[q]
				}
				write(op.Components()[i], mapped, nil)
			}
			return
		case *gate.Directive:
			switch op.Name() {
			case "measure":
				fmt.Fprintf(&body, "measure q[%d] -> c[%d];\n", qubits[0], clbits[0])
			default:
				fmt.Fprintf(&body, "%s %s;\n", op.Name(), qasmArgs(qubits))
			}
			return
		}
		name := op.Name()
		if !gate.IsStandardName(name) && !declared[name] {
			declared[name] = true
			decls = append(decls, opaqueDecl(op))
		}
		fmt.Fprintf(&body, "%s %s;\n", qasmOp(op), qasmArgs(qubits))
	}
	for _, inst := range c.Instructions {
		write(inst.Op, inst.Qubits, inst.Clbits)
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	for _, d := range decls {
		sb.WriteString(d)
	}
	fmt.Fprintf(&sb, "\nqreg q[%d];\n", c.NumQubits)
	if c.NumClbits > 0 {
		fmt.Fprintf(&sb, "creg c[%d];\n", c.NumClbits)
	}
	sb.WriteString("\n")
	sb.WriteString(body.String())
	return sb.String()
}

func qasmOp(op gate.Operation) string {
	params := op.Params()
	if len(params) == 0 {
		return op.Name()
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = gate.FormatParam(p)
	}
	return op.Name() + "(" + strings.Join(parts, ", ") + ")"
}

func qasmArgs(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = fmt.Sprintf("q[%d]", q)
	}
	return strings.Join(parts, ", ")
}

func opaqueDecl(op gate.Operation) string {
	var sb strings.Builder
	sb.WriteString("opaque ")
	sb.WriteString(op.Name())
	if n := len(op.Params()); n > 0 {
		params := make([]string, n)
		for i := range n {
			params[i] = "p" + strconv.Itoa(i)
		}
		sb.WriteString("(" + strings.Join(params, ", ") + ")")
	}
	args := make([]string, op.NumQubits())
	for i := range args {
		args[i] = "a" + strconv.Itoa(i)
	}
	sb.WriteString(" " + strings.Join(args, ", ") + ";\n")
	return sb.String()
}

// register maps a named register onto a slice of the flat bit index space.
type register struct {
	offset, size int
}

type qasmParser struct {
	qregs, cregs map[string]register
	nq, nc       int
	circuit      *Circuit
}

// ParseQASM reads an OpenQASM 2.0 program. Registers are laid out in declaration order; every
// gate name is resolved through gate.Lookup, so custom gates written by ToQASM come back intact.
func ParseQASM(src string) (*Circuit, error) {
	p := &qasmParser{qregs: map[string]register{}, cregs: map[string]register{}, circuit: New(0, 0)}
	for n, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt); err != nil {
				return nil, errors.Wrapf(err, "line %d", n+1)
			}
		}
	}
	return p.circuit, nil
}

func (p *qasmParser) statement(stmt string) error {
	switch {
	case strings.HasPrefix(stmt, "OPENQASM"), strings.HasPrefix(stmt, "include"), strings.HasPrefix(stmt, "opaque "):
		return nil
	case strings.HasPrefix(stmt, "gate "), strings.HasPrefix(stmt, "if"):
		return errors.Wrapf(ErrQASM, "unsupported statement %q", stmt)
	}

	if m := regRegex.FindStringSubmatch(stmt); m != nil {
		size, _ := strconv.Atoi(m[3])
		if m[1] == "qreg" {
			p.qregs[m[2]] = register{p.nq, size}
			p.nq += size
			p.circuit.NumQubits = p.nq
		} else {
			p.cregs[m[2]] = register{p.nc, size}
			p.nc += size
			p.circuit.NumClbits = p.nc
		}
		return nil
	}

	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		q, err := p.bit(p.qregs, m[1], m[2])
		if err != nil {
			return err
		}
		b, err := p.bit(p.cregs, m[3], m[4])
		if err != nil {
			return err
		}
		return p.circuit.Append(gate.Measure(), q, b)
	}

	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return errors.Wrapf(ErrQASM, "cannot parse %q", stmt)
	}
	name := m[1]
	params, err := gate.ParseParams(m[2])
	if err != nil {
		return err
	}
	var qubits []int
	for _, arg := range strings.Split(m[3], ",") {
		am := argRegex.FindStringSubmatch(strings.TrimSpace(arg))
		if am == nil {
			return errors.Wrapf(ErrQASM, "bad argument %q", arg)
		}
		q, err := p.bit(p.qregs, am[1], am[2])
		if err != nil {
			return err
		}
		qubits = append(qubits, q)
	}
	op, err := gate.Lookup(name, len(qubits), params)
	if err != nil {
		return err
	}
	return p.circuit.Append(op, qubits...)
}

func (p *qasmParser) bit(regs map[string]register, name, index string) (int, error) {
	reg, ok := regs[name]
	if !ok {
		return 0, errors.Wrapf(ErrQASM, "undeclared register %q", name)
	}
	i, _ := strconv.Atoi(index)
	if i >= reg.size {
		return 0, errors.Wrapf(ErrQASM, "%s[%d] out of range", name, i)
	}
	return reg.offset + i, nil
}
