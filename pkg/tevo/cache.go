package tevo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fivetwenty-io/tevo/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrEntryExpired = errors.New("entry expired")
)

// Cache is a response cache backend.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is one cached payload.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
	ETag      string    `json:"etag,omitempty"`
}

// Expired reports whether the entry is past its expiry.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// CacheOptions apply to every backend.
type CacheOptions struct {
	// DefaultTTL is used when Set is called with a zero ttl.
	DefaultTTL time.Duration
	// KeyPrefix is prepended to every key.
	KeyPrefix string
}

// DefaultCacheOptions returns default cache options.
func DefaultCacheOptions() *CacheOptions {
	return &CacheOptions{
		DefaultTTL: constants.DefaultCacheTTL,
	}
}

// CacheStats counts cache traffic.
type CacheStats struct {
	Hits   int64 `json:"hits"   yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
	Sets   int64 `json:"sets"   yaml:"sets"`
	Errors int64 `json:"errors" yaml:"errors"`
}

// GetHitRate returns hits over lookups, or 0 before the first lookup.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheManager wraps a backend with key derivation, ttl defaults and stats.
type CacheManager struct {
	cache   Cache
	options *CacheOptions

	mu    sync.Mutex
	stats CacheStats
}

// NewCacheManager creates a manager over cache. A nil cache disables caching.
func NewCacheManager(cache Cache, options *CacheOptions) *CacheManager {
	if cache == nil {
		cache = NewNoOpCache()
	}

	if options == nil {
		options = DefaultCacheOptions()
	}

	return &CacheManager{
		cache:   cache,
		options: options,
	}
}

// connectionScope namespaces cache keys by API root and account. The token is
// hashed so that it never appears in a shared backend.
func connectionScope(baseURL, token string) string {
	sum := sha256.Sum256([]byte(token))

	return baseURL + "|" + hex.EncodeToString(sum[:8]) + ":"
}

// GetCacheKey derives a key from method, path and the params. Parameter names
// are sorted; the values of a repeated parameter keep their order.
func (m *CacheManager) GetCacheKey(method, path string, params Params) string {
	key := m.options.KeyPrefix + method + ":" + path
	if len(params) == 0 {
		return key
	}

	encoded := params.Values()

	parts := make([]string, 0, len(params))
	for _, name := range params.Keys() {
		parts = append(parts, name+"="+strings.Join(encoded[name], ","))
	}

	return key + ":" + strings.Join(parts, "&")
}

// InvalidatePath drops the cached GETs of path and everything below it, and
// the entries of every ancestor collection or record.
func (m *CacheManager) InvalidatePath(ctx context.Context, path string) error {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	path = strings.TrimSuffix(path, "/")
	base := m.options.KeyPrefix + string(MethodGet) + ":"

	var first error

	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	keep(m.cache.DeletePrefix(ctx, base+path+"/"))

	for current := path; current != ""; current = parentPath(current) {
		keep(m.cache.Delete(ctx, base+current))
		keep(m.cache.DeletePrefix(ctx, base+current+":"))
		keep(m.cache.DeletePrefix(ctx, base+current+"?"))
	}

	if first != nil {
		return errors.Wrapf(first, "invalidating %s", path)
	}

	return nil
}

func parentPath(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return ""
	}

	return path[:i]
}

// Get returns the cached payload for key.
func (m *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := m.cache.Get(ctx, key)
	if err != nil {
		m.count(func(s *CacheStats) { s.Misses++ })

		return nil, err
	}

	m.count(func(s *CacheStats) { s.Hits++ })

	return entry.Data, nil
}

// Set stores data under key for ttl, or the default ttl when ttl is zero.
func (m *CacheManager) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return m.SetWithETag(ctx, key, data, "", ttl)
}

// SetWithETag stores data together with its entity tag.
func (m *CacheManager) SetWithETag(ctx context.Context, key string, data []byte, etag string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.options.DefaultTTL
	}

	err := m.cache.Set(ctx, key, &CacheEntry{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
		ETag:      etag,
	})
	if err != nil {
		m.count(func(s *CacheStats) { s.Errors++ })

		return errors.Wrapf(err, "caching %s", key)
	}

	m.count(func(s *CacheStats) { s.Sets++ })

	return nil
}

// Delete removes key.
func (m *CacheManager) Delete(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}

// Clear removes everything.
func (m *CacheManager) Clear(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

// Close releases the backend when it holds network resources.
func (m *CacheManager) Close() error {
	closer, ok := m.cache.(io.Closer)
	if !ok {
		return nil
	}

	return closer.Close()
}

// GetStats returns a snapshot of the counters.
func (m *CacheManager) GetStats() *CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.stats

	return &snapshot
}

func (m *CacheManager) count(update func(*CacheStats)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	update(&m.stats)
}

// cachedEnvelope loads an envelope and re-attaches the connection.
func (c *Connection) cachedEnvelope(ctx context.Context, key string) (*Envelope, bool) {
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var env Envelope

	err = json.Unmarshal(data, &env)
	if err != nil {
		c.logger.Warn("Discarding unreadable cache entry", map[string]interface{}{"key": key, "error": err.Error()})
		_ = c.cache.Delete(ctx, key)

		return nil, false
	}

	if env.Body == nil {
		env.Body = map[string]interface{}{}
	}

	env.Connection = c

	return &env, true
}

// storeEnvelope caches a successful envelope. Failures only cost a future miss.
func (c *Connection) storeEnvelope(ctx context.Context, key string, env *Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn("Failed to encode envelope for cache", map[string]interface{}{"key": key, "error": err.Error()})

		return
	}

	err = c.cache.SetWithETag(ctx, key, data, env.Headers.Get("ETag"), c.cacheTTL)
	if err != nil {
		c.logger.Warn("Failed to cache response", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// MemoryCache is an in-process cache bounded by entry count.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*CacheEntry),
		maxSize: maxSize,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrKeyNotFound, "%s", key)
	}

	if entry.Expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, errors.Wrapf(ErrEntryExpired, "%s", key)
	}

	return entry, nil
}

// Set implements Cache. When full, the entry closest to expiry is evicted.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = entry

	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// DeletePrefix implements Cache.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}

	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)

	return nil
}

// Has implements Cache.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
		}
	}
}

func (c *MemoryCache) evictLocked() {
	var (
		victim string
		oldest time.Time
	)

	for key, entry := range c.entries {
		if victim == "" || entry.ExpiresAt.Before(oldest) {
			victim = key
			oldest = entry.ExpiresAt
		}
	}

	delete(c.entries, victim)
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(context.Context, string, *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(context.Context, string) error {
	return nil
}

// DeletePrefix does nothing.
func (c *NoOpCache) DeletePrefix(context.Context, string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(context.Context, string) bool {
	return false
}
