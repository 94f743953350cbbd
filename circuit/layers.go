package circuit

import (
	"slices"

	"github.com/HershLalwani/qstaq/gate"
)

// Layers groups instruction indices into time steps. An instruction lands in the first step after
// every earlier instruction sharing one of its qubits or classical bits.
func (c *Circuit) Layers() [][]int {
	return c.layout(false)
}

// Columns is the layout Draw uses: an instruction also occupies every wire its connectors cross,
// so each entry is one column of the diagram.
func (c *Circuit) Columns() [][]int {
	return c.layout(true)
}

// InstructionAt returns the index of the instruction acting on qubit in the given column, or -1.
func (c *Circuit) InstructionAt(column, qubit int) int {
	cols := c.Columns()
	if column < 0 || column >= len(cols) {
		return -1
	}
	for _, i := range cols[column] {
		if slices.Contains(c.Instructions[i].Qubits, qubit) {
			return i
		}
	}
	return -1
}

// RemoveAt deletes the instruction acting on qubit in the given column and reports whether there
// was one.
func (c *Circuit) RemoveAt(column, qubit int) bool {
	i := c.InstructionAt(column, qubit)
	if i < 0 {
		return false
	}
	c.Instructions = slices.Delete(c.Instructions, i, i+1)
	return true
}

// InsertAt places op so that it is drawn no later than column: instructions in earlier columns stay
// before it and instructions from column on follow it. Instructions on disjoint wires may change
// relative order. On error the circuit is left untouched.
func (c *Circuit) InsertAt(column int, op gate.Operation, bits ...int) error {
	placed := New(c.NumQubits, c.NumClbits)
	if err := placed.Append(op, bits...); err != nil {
		return err
	}
	var before, after []Instruction
	for k, col := range c.Columns() {
		for _, i := range col {
			if k < column {
				before = append(before, c.Instructions[i])
			} else {
				after = append(after, c.Instructions[i])
			}
		}
	}
	c.Instructions = slices.Concat(before, placed.Instructions, after)
	return nil
}

// layout assigns steps as Layers does. With span set, an instruction also claims every wire its
// drawn connectors cross.
func (c *Circuit) layout(span bool) [][]int {
	nextQubit := make([]int, c.NumQubits)
	nextClbit := make([]int, c.NumClbits)
	var layers [][]int

	for i, inst := range c.Instructions {
		wires, clbits := inst.Qubits, inst.Clbits
		if span && len(inst.Clbits) > 0 {
			// The classical connector runs down past every later wire.
			wires = spanOf(append(slices.Clone(inst.Qubits), c.NumQubits-1))
			clbits = spanOf(append(slices.Clone(inst.Clbits), 0))
		} else if span && len(inst.Qubits) > 1 {
			wires = spanOf(inst.Qubits)
		}
		step := 0
		for _, q := range wires {
			step = max(step, nextQubit[q])
		}
		for _, b := range clbits {
			step = max(step, nextClbit[b])
		}
		for _, q := range wires {
			nextQubit[q] = step + 1
		}
		for _, b := range clbits {
			nextClbit[b] = step + 1
		}
		for len(layers) <= step {
			layers = append(layers, nil)
		}
		layers[step] = append(layers[step], i)
	}
	return layers
}

func spanOf(qubits []int) []int {
	lo, hi := slices.Min(qubits), slices.Max(qubits)
	out := make([]int, 0, hi-lo+1)
	for q := lo; q <= hi; q++ {
		out = append(out, q)
	}
	return out
}
