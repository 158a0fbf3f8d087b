package tevo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fivetwenty-io/tevo/internal/constants"
)

// Transport builds request handles. It is the only component that touches the
// network; it must not follow redirects on its own.
type Transport interface {
	Build(method Method, path string, params Params) RequestHandle
}

// RequestHandle is an opaque prepared request. Exactly one verb method is
// called on it, matching the method it was built with.
type RequestHandle interface {
	Get(ctx context.Context) (*RawResponse, error)
	Post(ctx context.Context) (*RawResponse, error)
	Put(ctx context.Context) (*RawResponse, error)
	Delete(ctx context.Context) (*RawResponse, error)
}

// Parent is anything an endpoint can hang off: a Connection, or another
// endpoint whose chain reaches one.
type Parent interface {
	Connection() (*Connection, error)
}

// Connection is the root of every parent chain. It holds the credential pair
// and hands request building to its Transport. A Connection is immutable and
// safe to share between goroutines.
type Connection struct {
	baseURL      string
	apiVersion   int
	token        string
	secret       string
	transport    Transport
	logger       Logger
	debug        bool
	maxRedirects int
	cache        *CacheManager
	cacheTTL     time.Duration
}

// NewConnection validates cfg and creates a Connection over transport.
func NewConnection(cfg *Config, transport Transport) (*Connection, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	if cfg.Token == "" {
		return nil, ErrTokenRequired
	}

	if cfg.Secret == "" {
		return nil, ErrSecretRequired
	}

	if transport == nil {
		return nil, ErrTransportRequired
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NoopLogger{}
	}

	version := cfg.APIVersion
	if version == 0 {
		version = constants.DefaultAPIVersion
	}

	conn := &Connection{
		baseURL:      cfg.BaseURL(),
		apiVersion:   version,
		token:        cfg.Token,
		secret:       cfg.Secret,
		transport:    transport,
		logger:       logger,
		debug:        cfg.Debug,
		maxRedirects: cfg.maxRedirects(),
		cacheTTL:     cfg.cacheTTL(),
	}

	if cfg.Cache != nil && cfg.Cache.Type != CacheTypeNone {
		backend, err := NewCacheFromConfig(cfg.Cache)
		if err != nil {
			return nil, errors.Wrap(err, "creating response cache")
		}

		options := DefaultCacheOptions()
		if cfg.Cache.Options != nil {
			copied := *cfg.Cache.Options
			options = &copied
		}

		options.KeyPrefix += connectionScope(conn.baseURL, conn.token)
		conn.cache = NewCacheManager(backend, options)
	}

	return conn, nil
}

// Connection returns c itself; it terminates every parent chain.
func (c *Connection) Connection() (*Connection, error) {
	if c == nil {
		return nil, ErrNoConnection
	}

	return c, nil
}

// BaseURL returns the versioned API root.
func (c *Connection) BaseURL() string {
	return c.baseURL
}

// APIVersion returns the API version the connection talks.
func (c *Connection) APIVersion() int {
	return c.apiVersion
}

// Token returns the API token. The secret is never exposed.
func (c *Connection) Token() string {
	return c.token
}

// BuildRequest hands the request to the transport. No I/O happens here.
func (c *Connection) BuildRequest(method Method, path string, params Params) RequestHandle {
	return c.transport.Build(method, path, params)
}

// CacheStats returns response cache statistics, or nil when caching is off.
func (c *Connection) CacheStats() *CacheStats {
	if c.cache == nil {
		return nil
	}

	return c.cache.GetStats()
}

// PurgeCache drops every cached response.
func (c *Connection) PurgeCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}

	return c.cache.Clear(ctx)
}

// Close releases the response cache backend. The Connection must not be used
// afterwards.
func (c *Connection) Close() error {
	if c.cache == nil {
		return nil
	}

	return c.cache.Close()
}

// invalidate drops cached reads made stale by a successful write.
func (c *Connection) invalidate(ctx context.Context, paths ...string) {
	seen := make(map[string]bool, len(paths))

	for _, path := range paths {
		if seen[path] {
			continue
		}

		seen[path] = true

		err := c.cache.InvalidatePath(ctx, path)
		if err != nil {
			c.logger.Warn("Failed to invalidate cached responses", map[string]interface{}{"path": path, "error": err.Error()})
		}
	}
}

// MarshalJSON emits only the public identity of the connection.
func (c *Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		URL        string `json:"url"`
		APIVersion int    `json:"api_version"`
	}{
		URL:        c.baseURL,
		APIVersion: c.apiVersion,
	})
}

func (c *Connection) logDebug(msg string, fields map[string]interface{}) {
	if c.debug {
		c.logger.Debug(msg, fields)
	}
}
