package superstaq

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	clientName    = "qstaq"
	clientVersion = "0.3.0"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// client speaks the raw HTTP+JSON protocol. Provider builds the typed API on top of it.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func newClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		baseURL: strings.TrimRight(cfg.RemoteHost, "/") + "/" + cfg.APIVersion,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger,
	}
}

func (c *client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

// do sends one request and decodes a JSON response into out (which may be nil).
// Non-2xx responses come back as *Error carrying the body text.
func (c *client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode %s request", endpoint)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reader)
	if err != nil {
		return errors.Wrapf(err, "build %s request", endpoint)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-Name", clientName)
	req.Header.Set("X-Client-Version", clientVersion)

	metric := metricEndpoint(endpoint)
	start := time.Now()
	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(metric).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(metric, "error").Inc()
		return errors.Wrapf(err, "%s %s", method, endpoint)
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(metric, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s response", endpoint)
	}
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s response", endpoint)
	}
	return nil
}

// metricEndpoint drops path parameters so job ids do not become label values.
func metricEndpoint(endpoint string) string {
	if i := strings.IndexByte(endpoint, '/'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}
