package tevo

import (
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// NoopLogger discards everything.
type NoopLogger struct{}

func (NoopLogger) Debug(string, map[string]interface{}) {}
func (NoopLogger) Info(string, map[string]interface{})  {}
func (NoopLogger) Warn(string, map[string]interface{})  {}
func (NoopLogger) Error(string, map[string]interface{}) {}

// Config represents client configuration for building a Connection.
//
// # Credentials
//
// Token and Secret are the API credential pair. The token is sent with every
// request and the secret signs it; both are required and neither can change
// after the Connection is built.
//
// # Hosts
//
// Environment selects the production or sandbox host. APIURL overrides both and
// is mostly useful against a local fake server; when it is set the API version
// is still appended unless the URL already ends with it.
//
// # Redirects
//
// Redirects are followed by the Endpoint, never by the HTTP layer. MaxRedirects
// caps the number of hops per request (default 10); exceeding it fails the call
// with a RedirectLoopError.
type Config struct {
	// Token: API token sent in the X-Token header.
	Token string
	// Secret: API secret used to sign requests.
	Secret string

	// Environment: "production" (default) or "sandbox".
	Environment string
	// APIURL: optional full base URL overriding Environment (e.g. "http://127.0.0.1:8080").
	APIURL string
	// APIVersion: API version path prefix; 0 means the default (9).
	APIVersion int

	// HTTPTimeout: per-attempt timeout of the HTTP client.
	HTTPTimeout time.Duration
	// RetryMax: maximum retries for transient failures (connection errors, 429, 5xx).
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// RateLimit: client-side requests per second; 0 disables limiting.
	RateLimit float64

	// MaxRedirects: redirect hop cap per request; 0 means the default.
	MaxRedirects int

	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Metrics: registry for request metrics; nil disables them.
	Metrics prometheus.Registerer

	// Cache: optional cache backend configuration; nil disables caching.
	Cache *CacheConfig
	// CacheTTL: lifetime of cached GET envelopes; 0 means the default.
	CacheTTL time.Duration
}

// BaseURL returns the fully qualified base URL including the version segment.
func (c *Config) BaseURL() string {
	version := c.APIVersion
	if version == 0 {
		version = constants.DefaultAPIVersion
	}

	suffix := fmt.Sprintf("/v%d", version)

	if c.APIURL != "" {
		base := strings.TrimSuffix(c.APIURL, "/")
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			base = "https://" + base
		}

		if strings.HasSuffix(base, suffix) {
			return base
		}

		return base + suffix
	}

	host := constants.ProductionHost
	if c.Environment == constants.EnvironmentSandbox {
		host = constants.SandboxHost
	}

	return "https://" + host + suffix
}

func (c *Config) maxRedirects() int {
	if c.MaxRedirects > 0 {
		return c.MaxRedirects
	}

	return constants.DefaultMaxRedirects
}

func (c *Config) cacheTTL() time.Duration {
	if c.CacheTTL > 0 {
		return c.CacheTTL
	}

	return constants.DefaultCacheTTL
}
