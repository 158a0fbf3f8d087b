package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API hosts and versioning.
const (
	// ProductionHost is the Ticket Evolution production API host.
	ProductionHost = "api.ticketevolution.com"

	// SandboxHost is the Ticket Evolution sandbox API host.
	SandboxHost = "api.sandbox.ticketevolution.com"

	// DefaultAPIVersion is the API version prefixed to every path.
	DefaultAPIVersion = 9

	// EnvironmentProduction selects the production host.
	EnvironmentProduction = "production"

	// EnvironmentSandbox selects the sandbox host.
	EnvironmentSandbox = "sandbox"

	// AcceptHeader is sent with every request.
	AcceptHeader = "application/vnd.ticketevolution.api+json; version=9"

	// DefaultUserAgent identifies the client library.
	DefaultUserAgent = "tevo-go/1.0"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Redirect handling.
const (
	// DefaultMaxRedirects caps the number of redirect hops a single request follows.
	DefaultMaxRedirects = 10
)

// Cache defaults.
const (
	// DefaultCacheSize is the default number of entries kept by the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is how long a cached GET envelope stays valid.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultNATSBucket is the key/value bucket used by the NATS cache.
	DefaultNATSBucket = "tevo-cache"

	// DefaultRedisPrefix namespaces keys written by the Redis cache.
	DefaultRedisPrefix = "tevo:cache:"
)

// Pagination limits.
const (
	// StandardPageSize is the common page size for list requests.
	StandardPageSize = 100

	// MaxConcurrentPages bounds concurrent page fetches in the CLI.
	MaxConcurrentPages = 4
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// CLI argument counts.
const (
	// MinimumArgumentCount is used by commands that take a key and a value.
	MinimumArgumentCount = 2

	// KeyValueParts is the number of parts in a key=value argument.
	KeyValueParts = 2
)

// Keyring settings.
const (
	// KeyringService is the service name under which secrets are stored.
	KeyringService = "tevo-cli"

	// DefaultProfile is used when no profile is selected.
	DefaultProfile = "default"
)
