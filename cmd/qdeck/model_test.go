package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HershLalwani/qstaq/superstaq"
)

func offlineModel() model {
	return newModel(context.Background(), "", defaultQASM, nil, 100, zap.NewNop())
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) model {
	t.Helper()
	for _, k := range keys {
		updated, _ := m.Update(k)
		var ok bool
		m, ok = updated.(model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) []tea.KeyMsg {
	out := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		out = append(out, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return out
}

var (
	keyCtrlA = tea.KeyMsg{Type: tea.KeyCtrlA}
	keyCtrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyCtrlG = tea.KeyMsg{Type: tea.KeyCtrlG}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestModelParsesInitialQASM(t *testing.T) {
	m := offlineModel()
	require.NoError(t, m.parseErr)
	assert.Equal(t, 2, m.circuit.NumQubits)
	assert.Len(t, m.circuit.Instructions, 4)
}

func TestModelKeepsLastGoodCircuit(t *testing.T) {
	m := offlineModel()
	m.editor.SetValue("qreg q[1];\nfrobnicate q[0];")
	m.reparse()

	assert.Error(t, m.parseErr)
	assert.Len(t, m.circuit.Instructions, 4)
}

func TestMenuInsertsNativeGate(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlA)
	assert.Equal(t, focusMenu, m.focus)

	m = press(t, m, keyRight, keyRight, keyRight, keyEnter)
	assert.Equal(t, focusEditor, m.focus)
	require.NoError(t, m.parseErr)
	require.Len(t, m.circuit.Instructions, 5)
	assert.Equal(t, "acecr_pm", m.circuit.Instructions[4].Op.Name())
}

func TestMenuParameterPrompt(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlA, keyRight, keyEnter)
	require.Equal(t, focusInputParam, m.focus)

	m = press(t, m, runes("pi/2")...)
	assert.Equal(t, "pi/2", m.paramInput)

	m = press(t, m, keyEnter)
	assert.Equal(t, focusEditor, m.focus)
	require.Len(t, m.circuit.Instructions, 5)
	last := m.circuit.Instructions[4]
	assert.Equal(t, "rx", last.Op.Name())
	assert.InDelta(t, 1.5707963267948966, last.Op.Params()[0], 1e-12)
}

func TestMenuEscapeLeavesCircuitAlone(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlA, keyEsc)
	assert.Equal(t, focusEditor, m.focus)
	assert.Len(t, m.circuit.Instructions, 4)
}

func opNames(m model) []string {
	out := make([]string, len(m.circuit.Instructions))
	for i, inst := range m.circuit.Instructions {
		out[i] = inst.Op.Name()
	}
	return out
}

func TestGridInsertAndDelete(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlG)
	require.Equal(t, focusGrid, m.focus)

	// Hadamard on q1 in the column of the cx.
	m = press(t, m, keyRight, keyDown)
	assert.Equal(t, 1, m.cursorStep)
	assert.Equal(t, 1, m.cursorQubit)
	m = press(t, m, runes("a")...)
	require.Equal(t, focusMenu, m.focus)
	m = press(t, m, keyEnter)

	assert.Equal(t, focusGrid, m.focus)
	require.NoError(t, m.parseErr)
	assert.Equal(t, []string{"h", "h", "cx", "measure", "measure"}, opNames(m))
	assert.Equal(t, []int{1}, m.circuit.Instructions[1].Qubits)
	assert.Contains(t, m.editor.Value(), "h q[1];")

	// The cx now sits in column 1 and covers q1.
	m = press(t, m, runes("d")...)
	assert.Equal(t, []string{"h", "h", "measure", "measure"}, opNames(m))

	m = press(t, m, keyEsc)
	assert.Equal(t, focusEditor, m.focus)
}

func TestGridRejectsGateOffTheRegister(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlG, keyDown, keyEnter, keyRight, keyRight, keyEnter)
	assert.Equal(t, focusGrid, m.focus)
	assert.Contains(t, m.statusMsg, "Cannot place gate")
	assert.Len(t, m.circuit.Instructions, 4)
}

func TestGridCursorStaysOnCircuit(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlG, keyDown, keyDown, keyDown)
	assert.Equal(t, 1, m.cursorQubit)
	for range 10 {
		m = press(t, m, keyRight)
	}
	assert.Equal(t, len(m.circuit.Columns()), m.cursorStep)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, len(m.circuit.Columns())-1, m.cursorStep)
}

func TestRunWithoutBackend(t *testing.T) {
	m := press(t, offlineModel(), keyCtrlR)
	assert.False(t, m.running)
	assert.Contains(t, m.statusMsg, "No backend")
}

// drain runs cmd and any batched commands it produces, returning every message.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, drain(c)...)
	}
	return out
}

func TestRunShowsCounts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+superstaq.APIVersion+"/jobs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"job_ids":["j1"]}`))
	})
	mux.HandleFunc("/"+superstaq.APIVersion+"/job/j1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"Done","samples":{"00":60,"11":40},"shots":100}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p, err := superstaq.NewProvider(
		superstaq.WithAPIKey("k"),
		superstaq.WithRemoteHost(srv.URL),
		superstaq.WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)
	m := newModel(context.Background(), "", defaultQASM, p.GetBackend("ss_sim"), 100, zap.NewNop())

	cmd := m.run()
	require.NotNil(t, cmd)
	assert.True(t, m.running)

	var done *jobDoneMsg
	for _, msg := range drain(cmd) {
		if d, ok := msg.(jobDoneMsg); ok {
			done = &d
		}
	}
	require.NotNil(t, done)
	require.NoError(t, done.err)

	updated, _ := m.Update(*done)
	m = updated.(model)
	assert.False(t, m.running)
	assert.Equal(t, map[string]int{"00": 60, "11": 40}, m.counts)
	assert.Equal(t, "Job j1 done", m.statusMsg)
}
