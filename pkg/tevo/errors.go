package tevo

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrTokenRequired         = errors.New("API token is required")
	ErrSecretRequired        = errors.New("API secret is required")
	ErrTransportRequired     = errors.New("transport is required")
	ErrOptionsRequired       = errors.New("endpoint options are required")
	ErrParentRequired        = errors.New("endpoint parent is required")
	ErrResourceRequired      = errors.New("endpoint resource name is required")
	ErrNoConnection          = errors.New("parent chain does not terminate at a connection")
	ErrNoSingularCounterpart = errors.New("no singular counterpart registered")
	ErrRedirectWithoutTarget = errors.New("redirect response carries no target url")
	ErrUnsupportedMethod     = errors.New("unsupported HTTP method")
	ErrUnexpectedPayload     = errors.New("unexpected response payload")
	ErrUnexpectedStatus      = errors.New("unexpected response status")
	ErrInvalidParam          = errors.New("invalid parameter")
)

// EndpointConfigurationError reports a problem with how an endpoint was built or
// called. It is always raised before any network I/O.
type EndpointConfigurationError struct {
	Type   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *EndpointConfigurationError) Error() string {
	if e.Type == "" {
		return "endpoint configuration error: " + e.Reason
	}

	return fmt.Sprintf("endpoint configuration error in %s: %s", e.Type, e.Reason)
}

// Unwrap returns the underlying sentinel, if any.
func (e *EndpointConfigurationError) Unwrap() error {
	return e.Err
}

func configError(typ, reason string, cause error) *EndpointConfigurationError {
	return &EndpointConfigurationError{Type: typ, Reason: reason, Err: cause}
}

// APIError is the value returned when the server answers with a status the
// taxonomy classifies as an application error.
type APIError struct {
	StatusCode int      `json:"status_code" yaml:"status_code"`
	Message    string   `json:"message"     yaml:"message"`
	Detail     string   `json:"detail"      yaml:"detail"`
	Errors     []string `json:"errors"      yaml:"errors"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
	}

	return fmt.Sprintf("%s: %s (status: %d)", e.Message, e.Detail, e.StatusCode)
}

// Unwrap maps well-known statuses onto standard library errors so callers can
// use errors.Is(err, fs.ErrNotExist) and friends.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return fs.ErrNotExist
	case http.StatusUnauthorized, http.StatusForbidden:
		return os.ErrPermission
	default:
		return nil
	}
}

// newAPIError builds an APIError from a normalized envelope, pulling any detail
// the server put in the body.
func newAPIError(env *Envelope) *APIError {
	apiErr := &APIError{
		StatusCode: env.StatusCode,
		Message:    env.ServerMessage,
	}

	for _, key := range []string{"error", "message"} {
		if detail, ok := env.Body[key].(string); ok && detail != "" {
			apiErr.Detail = detail

			break
		}
	}

	switch list := env.Body["errors"].(type) {
	case []interface{}:
		for _, item := range list {
			apiErr.Errors = append(apiErr.Errors, fmt.Sprint(item))
		}
	case map[string]interface{}:
		for field, item := range list {
			apiErr.Errors = append(apiErr.Errors, fmt.Sprintf("%s %v", field, item))
		}
	}

	if apiErr.Detail == "" && len(apiErr.Errors) > 0 {
		apiErr.Detail = strings.Join(apiErr.Errors, "; ")
	}

	return apiErr
}

// RedirectLoopError is returned when a request follows more redirects than the
// connection allows.
type RedirectLoopError struct {
	Hops int
	Path string
}

// Error implements the error interface.
func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect limit of %d hops exceeded (last target %q)", e.Hops, e.Path)
}

// DecodeError is returned when a response body cannot be decoded into a
// key/value mapping.
type DecodeError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response body (status: %d): %v", e.StatusCode, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a not found API error.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an authorization failure.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsValidation checks if the error is a validation failure.
func IsValidation(err error) bool {
	return hasStatus(err, http.StatusUnprocessableEntity)
}

// IsConfigurationError checks if the error was raised before any request was issued.
func IsConfigurationError(err error) bool {
	var cfgErr *EndpointConfigurationError

	return errors.As(err, &cfgErr)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}

	return false
}
