// Package tevoclient provides the main entry point for creating Ticket
// Evolution API connections.
package tevoclient

import (
	"fmt"

	"github.com/fivetwenty-io/tevo/internal/auth"
	"github.com/fivetwenty-io/tevo/internal/constants"
	internalhttp "github.com/fivetwenty-io/tevo/internal/http"
	"github.com/fivetwenty-io/tevo/pkg/tevo"
)

// New creates a Connection backed by the signing, retrying HTTP transport.
func New(config *tevo.Config) (*tevo.Connection, error) {
	if config == nil {
		return nil, tevo.ErrConfigRequired
	}

	signer, err := auth.NewSigner(config.Token, config.Secret)
	if err != nil {
		return nil, fmt.Errorf("creating request signer: %w", err)
	}

	opts, err := transportOptions(config)
	if err != nil {
		return nil, err
	}

	transport, err := internalhttp.NewClient(config.BaseURL(), signer, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating transport: %w", err)
	}

	conn, err := tevo.NewConnection(config, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create new connection: %w", err)
	}

	if config.Debug && config.Logger != nil {
		config.Logger.Debug("Connection ready", map[string]interface{}{
			"url":   conn.BaseURL(),
			"cache": conn.CacheStats() != nil,
		})
	}

	return conn, nil
}

func transportOptions(config *tevo.Config) ([]internalhttp.Option, error) {
	opts := []internalhttp.Option{
		internalhttp.WithDebug(config.Debug),
		internalhttp.WithUserAgent(config.UserAgent),
		internalhttp.WithTimeout(config.HTTPTimeout),
		internalhttp.WithRateLimit(config.RateLimit),
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.RetryMax > 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		waitMin := config.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(retryMax, waitMin, waitMax))
	}

	if config.Metrics != nil {
		metrics, err := internalhttp.NewMetrics(config.Metrics)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}

		opts = append(opts, internalhttp.WithMetrics(metrics))
	}

	return opts, nil
}

// NewWithCredentials creates a production Connection from a token and secret.
func NewWithCredentials(token, secret string) (*tevo.Connection, error) {
	return New(&tevo.Config{
		Token:  token,
		Secret: secret,
	})
}

// NewSandbox creates a Connection against the sandbox environment.
func NewSandbox(token, secret string) (*tevo.Connection, error) {
	return New(&tevo.Config{
		Token:       token,
		Secret:      secret,
		Environment: constants.EnvironmentSandbox,
	})
}
