package superstaq

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingAPIKey is returned by NewProvider when no API key is configured.
	ErrMissingAPIKey = errors.New("api_key was not specified and the environment variable SUPERSTAQ_API_KEY was also not set")

	// ErrJobFailed is returned by Job.Result when the service reports an error status.
	ErrJobFailed = errors.New("API returned error")

	// ErrJobCancelled is returned by Job.Result when any part of the job was cancelled.
	ErrJobCancelled = errors.New("job was cancelled")

	// ErrSubmitUnsupported is returned by Job.Submit; jobs are created through Backend.Run.
	ErrSubmitUnsupported = errors.New("submit through Backend.Run")

	// ErrInvalidConfig is returned (wrapped) for unreadable configuration or payloads.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Error is a non-2xx response from the service. Message is the server's text, verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("superstaq: status %d: %s", e.StatusCode, e.Message)
}

// ModuleNotFoundError reports that decoding a result needs a module that was not registered
// with WithModule.
type ModuleNotFoundError struct {
	Name    string
	Context string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("'%s' requires module '%s'", e.Context, e.Name)
}
