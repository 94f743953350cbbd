// Package superstaq is a client for the SuperstaQ compilation and execution service.
//
// A Provider holds the credentials and talks to the service. Backends obtained from it
// run circuits as Jobs. The compile endpoints turn circuits into device-specific
// circuits plus whatever control data the target produces (pulse schedules, Jaqal
// programs, AQT sequences).
package superstaq

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v2"
)

const providerName = "superstaq_provider"

// BackendCatalog lists and builds backends.
type BackendCatalog interface {
	Backends(ctx context.Context) ([]*Backend, error)
	GetBackend(name string) *Backend
}

// JobSubmitter creates jobs and reads their raw state.
type JobSubmitter interface {
	CreateJob(ctx context.Context, req JobRequest) ([]string, error)
	JobStatus(ctx context.Context, id string) (*JobInfo, error)
}

// AccountManager covers billing and per-user device configuration.
type AccountManager interface {
	Balance(ctx context.Context) (float64, error)
	FormattedBalance(ctx context.Context) (string, error)
	IBMQSetToken(ctx context.Context, token string) (string, error)
	AQTUploadConfigs(ctx context.Context, pulses, variables []byte) (string, error)
	AQTGetConfigs(ctx context.Context) (*AQTConfigs, error)
}

var (
	_ BackendCatalog = (*Provider)(nil)
	_ JobSubmitter   = (*Provider)(nil)
	_ AccountManager = (*Provider)(nil)
)

// Provider is the entry point to the service. It is safe for concurrent use.
type Provider struct {
	cfg     Config
	client  *client
	logger  *zap.Logger
	modules modules
}

type options struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	modules    modules
}

// Option configures a Provider.
type Option func(*options)

// WithConfig replaces the whole configuration. Later options still apply on top of it.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithAPIKey sets the key sent in the Authorization header.
func WithAPIKey(key string) Option {
	return func(o *options) { o.cfg.APIKey = key }
}

// WithRemoteHost points the provider at another deployment of the service.
func WithRemoteHost(host string) Option {
	return func(o *options) { o.cfg.RemoteHost = host }
}

func WithAPIVersion(version string) Option {
	return func(o *options) { o.cfg.APIVersion = version }
}

// WithPollInterval sets how often Job.Result asks for job status.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.cfg.PollInterval = d }
}

// WithHTTPClient replaces the default client, which only sets the configured timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithModule registers a decoder for device payloads, see ModuleQtrl and ModulePulser.
func WithModule(name string, dec Decoder) Option {
	return func(o *options) {
		if o.modules == nil {
			o.modules = modules{}
		}
		o.modules[name] = dec
	}
}

// NewProvider builds a Provider. It fails with ErrMissingAPIKey when neither an
// option nor SUPERSTAQ_API_KEY supplies a key.
func NewProvider(opts ...Option) (*Provider, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := o.cfg.WithDefaults()
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("remote_host", cfg.RemoteHost))
	return &Provider{
		cfg:     cfg,
		client:  newClient(cfg, o.httpClient, logger),
		logger:  logger,
		modules: o.modules,
	}, nil
}

// Config returns the effective configuration, defaults applied.
func (p *Provider) Config() Config { return p.cfg }

func (p *Provider) String() string {
	return fmt.Sprintf("<SuperstaQProvider(name=%s)>", providerName)
}

// GoString includes the API key; use it for debugging only.
func (p *Provider) GoString() string {
	return fmt.Sprintf("<SuperstaQProvider(name=%s, api_key=%s)>", providerName, p.cfg.APIKey)
}

// GetBackend returns a handle for the named backend without contacting the service.
func (p *Provider) GetBackend(name string) *Backend {
	return &Backend{provider: p, name: name}
}

type backendsResponse struct {
	Backends struct {
		CompileAndRun []string `json:"compile-and-run"`
		CompileOnly   []string `json:"compile-only"`
	} `json:"superstaq_backends"`
}

// Backends lists the backends that can both compile and run circuits.
func (p *Provider) Backends(ctx context.Context) ([]*Backend, error) {
	var resp backendsResponse
	if err := p.client.get(ctx, "get_backends", &resp); err != nil {
		return nil, errors.Wrap(err, "get backends")
	}
	out := make([]*Backend, 0, len(resp.Backends.CompileAndRun))
	for _, name := range resp.Backends.CompileAndRun {
		out = append(out, p.GetBackend(name))
	}
	return out, nil
}

// JobRequest is the body of a job submission.
type JobRequest struct {
	Circuits  string `json:"qiskit_circuits"`
	Backend   string `json:"backend"`
	Shots     int    `json:"shots"`
	IBMQPulse *bool  `json:"ibmq_pulse,omitempty"`
}

// CreateJob submits serialized circuits and returns one job id per circuit.
func (p *Provider) CreateJob(ctx context.Context, req JobRequest) ([]string, error) {
	var resp struct {
		JobIDs []string `json:"job_ids"`
	}
	if err := p.client.post(ctx, "jobs", req, &resp); err != nil {
		return nil, errors.Wrap(err, "create job")
	}
	if len(resp.JobIDs) == 0 {
		return nil, errors.New("create job: service returned no job ids")
	}
	p.logger.Info("job created", zap.String("backend", req.Backend), zap.Strings("job_ids", resp.JobIDs))
	return resp.JobIDs, nil
}

// JobInfo is the service's view of one job.
type JobInfo struct {
	Status  string         `json:"status"`
	Samples map[string]int `json:"samples"`
	Shots   int            `json:"shots"`
}

// JobStatus fetches the state of a single job id.
func (p *Provider) JobStatus(ctx context.Context, id string) (*JobInfo, error) {
	var info JobInfo
	if err := p.client.get(ctx, "job/"+id, &info); err != nil {
		return nil, errors.Wrapf(err, "get job %s", id)
	}
	return &info, nil
}

// Balance returns the account balance in dollars.
func (p *Provider) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if err := p.client.get(ctx, "balance", &resp); err != nil {
		return 0, errors.Wrap(err, "get balance")
	}
	return resp.Balance, nil
}

// FormattedBalance returns the balance as dollars with thousands separators, e.g. "$12,345.68".
func (p *Provider) FormattedBalance(ctx context.Context) (string, error) {
	b, err := p.Balance(ctx)
	if err != nil {
		return "", err
	}
	return formatBalance(b), nil
}

var balancePrinter = message.NewPrinter(language.English)

func formatBalance(b float64) string {
	return balancePrinter.Sprintf("$%.2f", b)
}

// IBMQSetToken stores an IBM Quantum token with the account and returns the service's reply.
func (p *Provider) IBMQSetToken(ctx context.Context, token string) (string, error) {
	var reply string
	if err := p.client.post(ctx, "ibmq_token", map[string]string{"ibmq_token": token}, &reply); err != nil {
		return "", errors.Wrap(err, "set ibmq token")
	}
	return reply, nil
}

// AQTConfigs holds the two YAML documents that configure the AQT device for this account.
type AQTConfigs struct {
	Pulses    string `json:"pulses"`
	Variables string `json:"variables"`
}

// AQTUploadConfigs uploads the pulses and variables YAML documents. Both are parsed
// locally first so a malformed file never reaches the service.
func (p *Provider) AQTUploadConfigs(ctx context.Context, pulses, variables []byte) (string, error) {
	for name, doc := range map[string][]byte{"pulses": pulses, "variables": variables} {
		var parsed yaml.MapSlice
		if err := yaml.Unmarshal(doc, &parsed); err != nil {
			return "", errors.Wrapf(ErrInvalidConfig, "%s: %v", name, err)
		}
	}
	body := AQTConfigs{Pulses: string(pulses), Variables: string(variables)}
	var reply string
	if err := p.client.post(ctx, "aqt_configs", body, &reply); err != nil {
		return "", errors.Wrap(err, "upload aqt configs")
	}
	return reply, nil
}

// AQTGetConfigs downloads the account's AQT configuration.
func (p *Provider) AQTGetConfigs(ctx context.Context) (*AQTConfigs, error) {
	var cfgs AQTConfigs
	if err := p.client.get(ctx, "get_aqt_configs", &cfgs); err != nil {
		return nil, errors.Wrap(err, "get aqt configs")
	}
	return &cfgs, nil
}
