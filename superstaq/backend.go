package superstaq

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/circuit"
	"github.com/HershLalwani/qstaq/serialization"
)

// BackendConfiguration describes a backend. The service does not publish device
// properties, so everything except the name is a fixed placeholder.
type BackendConfiguration struct {
	BackendName    string
	BackendVersion string
	NumQubits      int
	Local          bool
	Simulator      bool
	Conditional    bool
	OpenPulse      bool
	Memory         bool
	MaxShots       int
}

// RunOptions are the per-run settings a backend accepts.
type RunOptions struct {
	Shots     int
	IBMQPulse *bool
}

// Backend is a named compile-and-run target on the service.
type Backend struct {
	provider *Provider
	name     string
}

func (b *Backend) Name() string        { return b.name }
func (b *Backend) String() string      { return b.name }
func (b *Backend) Provider() *Provider { return b.provider }

func (b *Backend) Configuration() BackendConfiguration {
	return BackendConfiguration{
		BackendName:    b.name,
		BackendVersion: "n/a",
		NumQubits:      -1,
		MaxShots:       -1,
	}
}

// DefaultOptions returns the options used when the caller has no preference.
func (b *Backend) DefaultOptions() RunOptions {
	return RunOptions{Shots: 1000}
}

// Equal reports whether both backends share a provider and a configuration.
func (b *Backend) Equal(o *Backend) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.provider == o.provider && b.Configuration() == o.Configuration()
}

// Run submits circuits for execution. The returned Job tracks every per-circuit
// job the service created; its id is their ids joined with commas.
func (b *Backend) Run(ctx context.Context, circuits []*circuit.Circuit, opts RunOptions) (*Job, error) {
	if len(circuits) == 0 {
		return nil, errors.New("run: no circuits")
	}
	if opts.Shots <= 0 {
		return nil, errors.Errorf("run: shots must be positive, got %d", opts.Shots)
	}
	data, err := serialization.SerializeCircuits(circuits...)
	if err != nil {
		return nil, errors.Wrap(err, "run")
	}
	ids, err := b.provider.CreateJob(ctx, JobRequest{
		Circuits:  data,
		Backend:   b.name,
		Shots:     opts.Shots,
		IBMQPulse: opts.IBMQPulse,
	})
	if err != nil {
		return nil, err
	}
	if len(ids) != len(circuits) {
		return nil, errors.Errorf("run: service returned %d job ids for %d circuits", len(ids), len(circuits))
	}
	return NewJob(b, strings.Join(ids, ",")), nil
}
