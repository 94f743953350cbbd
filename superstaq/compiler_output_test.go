package superstaq

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/HershLalwani/qstaq/circuit"
)

func TestCompilerOutputEqual(t *testing.T) {
	c1 := circuit.New(1, 0).H(0)
	c2 := circuit.New(1, 0).X(0)

	single := &CompilerOutput{Circuit: c1, JaqalProgram: "prog"}
	assert.False(t, single.HasMultipleCircuits())
	assert.True(t, single.Equal(&CompilerOutput{Circuit: c1.Copy(), JaqalProgram: "prog"}))
	assert.False(t, single.Equal(&CompilerOutput{Circuit: c2, JaqalProgram: "prog"}))
	assert.False(t, single.Equal(&CompilerOutput{Circuit: c1, JaqalProgram: "other"}))
	assert.False(t, single.Equal(&CompilerOutput{Circuit: c1, JaqalProgram: "prog", Seq: "seq"}))

	batch := &CompilerOutput{Circuits: []*circuit.Circuit{c1, c2}, PulseLists: []any{[]any{}, []any{}}}
	assert.True(t, batch.HasMultipleCircuits())
	assert.True(t, batch.Equal(&CompilerOutput{Circuits: []*circuit.Circuit{c1, c2}, PulseLists: []any{[]any{}, []any{}}}))
	assert.False(t, batch.Equal(&CompilerOutput{Circuits: []*circuit.Circuit{c2, c1}, PulseLists: []any{[]any{}, []any{}}}))
	assert.False(t, batch.Equal(single), "single and batch outputs never compare equal")
	assert.False(t, batch.Equal(nil))
}

func TestCompilerOutputString(t *testing.T) {
	c := circuit.New(2, 0).CX(0, 1)
	c.Name = "bell"

	single := &CompilerOutput{Circuit: c, JaqalProgram: "prog"}
	assert.Equal(t, `CompilerOutput(bell(qubits=2, ops=1), <nil>, "prog", <nil>)`, single.String())

	batch := &CompilerOutput{Circuits: []*circuit.Circuit{c, circuit.New(1, 0)}}
	assert.Equal(t, `CompilerOutput([bell(qubits=2, ops=1), circuit(qubits=1, ops=0)], <nil>, [], [])`, batch.String())
}
