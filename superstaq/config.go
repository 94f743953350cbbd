package superstaq

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultRemoteHost is used when neither the config nor SUPERSTAQ_REMOTE_HOST name a host.
	DefaultRemoteHost = "https://superstaq.super.tech"
	// APIVersion is the service API version this client speaks.
	APIVersion = "v0.1.0"

	defaultTimeout      = 60 * time.Second
	defaultPollInterval = 5 * time.Second

	envAPIKey     = "SUPERSTAQ_API_KEY"
	envRemoteHost = "SUPERSTAQ_REMOTE_HOST"
)

// Config holds the provider settings that can live in a file.
type Config struct {
	APIKey        string        `yaml:"apiKey"`
	RemoteHost    string        `yaml:"remoteHost"`
	APIVersion    string        `yaml:"apiVersion"`
	DefaultTarget string        `yaml:"defaultTarget"`
	Timeout       time.Duration `yaml:"timeout"`
	PollInterval  time.Duration `yaml:"pollInterval"`
}

// WithDefaults returns a copy of the Config with any missing fields set to
// their default values. Environment variables fill the key and host before
// the built-in defaults do. Non-positive durations count as missing.
func (c Config) WithDefaults() Config {
	cpy := c
	if cpy.APIKey == "" {
		cpy.APIKey = os.Getenv(envAPIKey)
	}
	if cpy.RemoteHost == "" {
		cpy.RemoteHost = os.Getenv(envRemoteHost)
	}
	if cpy.RemoteHost == "" {
		cpy.RemoteHost = DefaultRemoteHost
	}
	if cpy.APIVersion == "" {
		cpy.APIVersion = APIVersion
	}
	if cpy.Timeout <= 0 {
		cpy.Timeout = defaultTimeout
	}
	if cpy.PollInterval <= 0 {
		cpy.PollInterval = defaultPollInterval
	}
	return cpy
}

// LoadConfig reads a YAML config file. Missing fields are left empty; apply WithDefaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrap(err, "load config")
	}
	if err := yaml.UnmarshalStrict(raw, &c); err != nil {
		return c, errors.Wrapf(ErrInvalidConfig, "%s: %v", path, err)
	}
	return c, nil
}
