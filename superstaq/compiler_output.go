package superstaq

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/HershLalwani/qstaq/circuit"
)

// CompilerOutput is what the compile endpoints return. A single-circuit compile fills
// the singular fields; a batch compile fills the plural ones. Seq is shared by both
// and only set for AQT targets when a qtrl decoder is registered.
type CompilerOutput struct {
	Circuit       *circuit.Circuit
	PulseSequence any
	PulseList     any
	JaqalProgram  string

	Circuits       []*circuit.Circuit
	PulseSequences []any
	PulseLists     []any
	JaqalPrograms  []string

	Seq any
}

// HasMultipleCircuits reports whether the output came from a batch compile.
func (o *CompilerOutput) HasMultipleCircuits() bool {
	return o.Circuits != nil
}

// Equal compares circuits structurally and every other field deeply.
func (o *CompilerOutput) Equal(other *CompilerOutput) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.HasMultipleCircuits() != other.HasMultipleCircuits() {
		return false
	}
	if !reflect.DeepEqual(o.Seq, other.Seq) {
		return false
	}
	if o.HasMultipleCircuits() {
		if len(o.Circuits) != len(other.Circuits) {
			return false
		}
		for i := range o.Circuits {
			if !o.Circuits[i].Equal(other.Circuits[i]) {
				return false
			}
		}
		return reflect.DeepEqual(o.PulseSequences, other.PulseSequences) &&
			reflect.DeepEqual(o.PulseLists, other.PulseLists) &&
			reflect.DeepEqual(o.JaqalPrograms, other.JaqalPrograms)
	}
	if (o.Circuit == nil) != (other.Circuit == nil) {
		return false
	}
	if o.Circuit != nil && !o.Circuit.Equal(other.Circuit) {
		return false
	}
	return reflect.DeepEqual(o.PulseSequence, other.PulseSequence) &&
		reflect.DeepEqual(o.PulseList, other.PulseList) &&
		o.JaqalProgram == other.JaqalProgram
}

func (o *CompilerOutput) String() string {
	if o.HasMultipleCircuits() {
		names := make([]string, len(o.Circuits))
		for i, c := range o.Circuits {
			names[i] = circuitSummary(c)
		}
		return fmt.Sprintf("CompilerOutput([%s], %v, %q, %v)",
			strings.Join(names, ", "), o.Seq, o.JaqalPrograms, o.PulseLists)
	}
	return fmt.Sprintf("CompilerOutput(%s, %v, %q, %v)",
		circuitSummary(o.Circuit), o.Seq, o.JaqalProgram, o.PulseList)
}

func circuitSummary(c *circuit.Circuit) string {
	if c == nil {
		return "<nil>"
	}
	name := c.Name
	if name == "" {
		name = "circuit"
	}
	return fmt.Sprintf("%s(qubits=%d, ops=%d)", name, c.NumQubits, len(c.Instructions))
}
