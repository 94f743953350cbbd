package superstaq

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.Handler, opts ...Option) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := []Option{WithAPIKey("MY_TOKEN"), WithRemoteHost(srv.URL), WithPollInterval(time.Millisecond)}
	p, err := NewProvider(append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func route(path string) string { return "/" + APIVersion + "/" + path }

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func readJSON(t *testing.T, r *http.Request, v any) {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestNewProviderMissingAPIKey(t *testing.T) {
	t.Setenv(envAPIKey, "")

	p, err := NewProvider()
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Contains(t, err.Error(), "api_key was not specified")
	assert.Contains(t, err.Error(), "SUPERSTAQ_API_KEY")
}

func TestNewProviderFromEnvironment(t *testing.T) {
	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envRemoteHost, "")

	p, err := NewProvider()
	require.NoError(t, err)
	assert.Equal(t, "env-key", p.Config().APIKey)
	assert.Equal(t, DefaultRemoteHost, p.Config().RemoteHost)
	assert.Equal(t, APIVersion, p.Config().APIVersion)

	p, err = NewProvider(WithAPIKey("explicit"))
	require.NoError(t, err)
	assert.Equal(t, "explicit", p.Config().APIKey)
}

func TestProviderStrings(t *testing.T) {
	p, err := NewProvider(WithAPIKey("MY_TOKEN"))
	require.NoError(t, err)
	assert.Equal(t, "<SuperstaQProvider(name=superstaq_provider)>", p.String())
	assert.Equal(t, "<SuperstaQProvider(name=superstaq_provider, api_key=MY_TOKEN)>", p.GoString())
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(t, w, map[string]float64{"balance": 1})
	}))

	_, err := p.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MY_TOKEN", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, clientName, got.Get("X-Client-Name"))
	assert.Equal(t, clientVersion, got.Get("X-Client-Version"))
}

func TestBackends(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(route("get_backends"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(t, w, map[string]any{
			"superstaq_backends": map[string]any{
				"compile-and-run": []string{"ibmq_qasm_simulator", "aqt_keysight_qpu"},
				"compile-only":    []string{"aqt_zurich_qpu"},
			},
		})
	})
	p := newTestProvider(t, mux)

	backends, err := p.Backends(context.Background())
	require.NoError(t, err)
	require.Len(t, backends, 2)
	assert.True(t, backends[0].Equal(p.GetBackend("ibmq_qasm_simulator")))
	assert.True(t, backends[1].Equal(p.GetBackend("aqt_keysight_qpu")))
	assert.False(t, backends[0].Equal(backends[1]))
}

func TestBalance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(route("balance"), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]float64{"balance": 12345.6789})
	})
	p := newTestProvider(t, mux)

	b, err := p.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12345.6789, b)

	s, err := p.FormattedBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "$12,345.68", s)
}

func TestServiceErrorIsTyped(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "IBMQ token is invalid.", http.StatusBadRequest)
	}))

	_, err := p.IBMQSetToken(context.Background(), "INVALID_TOKEN")
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	assert.Equal(t, "IBMQ token is invalid.", svcErr.Message)
}

func TestIBMQSetToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(route("ibmq_token"), func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		readJSON(t, r, &body)
		assert.Equal(t, "ibmq-secret", body["ibmq_token"])
		writeJSON(t, w, "Your IBMQ account token has been updated")
	})
	p := newTestProvider(t, mux)

	reply, err := p.IBMQSetToken(context.Background(), "ibmq-secret")
	require.NoError(t, err)
	assert.Equal(t, "Your IBMQ account token has been updated", reply)
}

func TestAQTConfigs(t *testing.T) {
	var uploads int
	mux := http.NewServeMux()
	mux.HandleFunc(route("aqt_configs"), func(w http.ResponseWriter, r *http.Request) {
		uploads++
		var body AQTConfigs
		readJSON(t, r, &body)
		assert.Equal(t, "rx:\n  amp: 0.5\n", body.Pulses)
		assert.Equal(t, "qubits: 8\n", body.Variables)
		writeJSON(t, w, "Your AQT configuration has been updated")
	})
	mux.HandleFunc(route("get_aqt_configs"), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, AQTConfigs{Pulses: "rx: {}\n", Variables: "qubits: 8\n"})
	})
	p := newTestProvider(t, mux)
	ctx := context.Background()

	_, err := p.AQTUploadConfigs(ctx, []byte("rx: [unterminated"), []byte("qubits: 8\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Zero(t, uploads, "malformed yaml must not be uploaded")

	reply, err := p.AQTUploadConfigs(ctx, []byte("rx:\n  amp: 0.5\n"), []byte("qubits: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, "Your AQT configuration has been updated", reply)
	assert.Equal(t, 1, uploads)

	cfgs, err := p.AQTGetConfigs(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rx: {}\n", cfgs.Pulses)
	assert.Equal(t, "qubits: 8\n", cfgs.Variables)
}
