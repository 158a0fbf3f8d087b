package tevo

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/redis/go-redis/v9"
)

const redisScanBatch = 100

// RedisCacheConfig configures the Redis cache.
type RedisCacheConfig struct {
	// Addr is host:port of the server; ignored when Client is set.
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key; defaults to "tevo:cache:".
	Prefix string
	// Client reuses an existing client. The cache never closes it.
	Client redis.UniversalClient
}

// RedisCache stores entries as Redis strings with a native expiry.
type RedisCache struct {
	client redis.UniversalClient
	owned  bool
	prefix string
}

var redisGlob = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// NewRedisCache creates a Redis-backed cache. The connection is established
// lazily by the client.
func NewRedisCache(config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil {
		return nil, ErrRedisConfigRequired
	}

	client := config.Client
	owned := false

	if client == nil {
		if config.Addr == "" {
			return nil, errors.Wrap(ErrRedisConfigRequired, "address is empty")
		}

		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
		owned = true
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = constants.DefaultRedisPrefix
	}

	return &RedisCache{client: client, owned: owned, prefix: prefix}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.Wrapf(ErrKeyNotFound, "%s", key)
		}

		return nil, errors.Wrapf(err, "reading %s from redis", key)
	}

	var entry CacheEntry

	err = json.Unmarshal(data, &entry)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding cache entry %s", key)
	}

	if entry.Expired(time.Now()) {
		return nil, errors.Wrapf(ErrEntryExpired, "%s", key)
	}

	return &entry, nil
}

// Set implements Cache. The Redis expiry mirrors the entry's.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrapf(err, "encoding cache entry %s", key)
	}

	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = time.Until(entry.ExpiresAt)
		if ttl <= 0 {
			return c.Delete(ctx, key)
		}
	}

	err = c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	if err != nil {
		return errors.Wrapf(err, "writing %s to redis", key)
	}

	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	if err != nil {
		return errors.Wrapf(err, "deleting %s from redis", key)
	}

	return nil
}

// DeletePrefix implements Cache.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	return c.deleteMatching(ctx, redisGlob.Replace(c.prefix+prefix)+"*")
}

// Clear removes every key under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	return c.deleteMatching(ctx, redisGlob.Replace(c.prefix)+"*")
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, redisScanBatch).Result()
		if err != nil {
			return errors.Wrap(err, "scanning redis keys")
		}

		if len(keys) > 0 {
			err = c.client.Del(ctx, keys...).Err()
			if err != nil {
				return errors.Wrap(err, "deleting redis keys")
			}
		}

		if next == 0 {
			return nil
		}

		cursor = next
	}
}

// Has implements Cache.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, c.prefix+key).Result()

	return err == nil && n > 0
}

// Close closes the client if the cache created it.
func (c *RedisCache) Close() error {
	if !c.owned {
		return nil
	}

	return c.client.Close()
}
