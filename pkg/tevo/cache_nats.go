package tevo

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fivetwenty-io/tevo/internal/constants"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSKVConfig configures the NATS key/value cache.
type NATSKVConfig struct {
	// URL of the NATS server; ignored when Conn is set.
	URL string
	// Bucket name; defaults to "tevo-cache".
	Bucket string
	// TTL applied by the bucket itself; entries also carry their own expiry.
	TTL time.Duration
	// Conn reuses an existing connection.
	Conn *nats.Conn
}

// NATSKVCache stores entries in a JetStream key/value bucket. KV keys cannot
// carry the ':' and '|' characters cache keys use, so keys are hex encoded;
// the encoding of a prefix is a prefix of the encoding.
type NATSKVCache struct {
	conn   *nats.Conn
	owned  bool
	bucket jetstream.KeyValue
}

// NewNATSKVCache connects and creates the bucket if needed.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	owned := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, nats.Name("tevo-cache"))
		if err != nil {
			return nil, errors.Wrap(err, "connecting to NATS")
		}

		owned = true
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeIfOwned(conn, owned)

		return nil, errors.Wrap(err, "creating JetStream context")
	}

	bucketName := config.Bucket
	if bucketName == "" {
		bucketName = constants.DefaultNATSBucket
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShortHTTPTimeout)
	defer cancel()

	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: bucketName,
		TTL:    config.TTL,
	})
	if err != nil {
		closeIfOwned(conn, owned)

		return nil, errors.Wrapf(err, "creating KV bucket %s", bucketName)
	}

	return &NATSKVCache{conn: conn, owned: owned, bucket: bucket}, nil
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned {
		conn.Close()
	}
}

func natsKey(key string) string {
	return hex.EncodeToString([]byte(key))
}

// Get implements Cache.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kve, err := c.bucket.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errors.Wrapf(ErrKeyNotFound, "%s", key)
		}

		return nil, errors.Wrapf(err, "reading %s from NATS", key)
	}

	var entry CacheEntry

	err = json.Unmarshal(kve.Value(), &entry)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding cache entry %s", key)
	}

	if entry.Expired(time.Now()) {
		_ = c.Delete(ctx, key)

		return nil, errors.Wrapf(ErrEntryExpired, "%s", key)
	}

	return &entry, nil
}

// Set implements Cache.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrapf(err, "encoding cache entry %s", key)
	}

	_, err = c.bucket.Put(ctx, natsKey(key), data)
	if err != nil {
		return errors.Wrapf(err, "writing %s to NATS", key)
	}

	return nil
}

// Delete implements Cache.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.bucket.Delete(ctx, natsKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return errors.Wrapf(err, "deleting %s from NATS", key)
	}

	return nil
}

// DeletePrefix implements Cache.
func (c *NATSKVCache) DeletePrefix(ctx context.Context, prefix string) error {
	return c.purgeMatching(ctx, natsKey(prefix))
}

// Clear implements Cache.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	return c.purgeMatching(ctx, "")
}

func (c *NATSKVCache) purgeMatching(ctx context.Context, encodedPrefix string) error {
	lister, err := c.bucket.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}

		return errors.Wrap(err, "listing NATS keys")
	}

	defer func() { _ = lister.Stop() }()

	for key := range lister.Keys() {
		if !strings.HasPrefix(key, encodedPrefix) {
			continue
		}

		err = c.bucket.Purge(ctx, key)
		if err != nil {
			return errors.Wrapf(err, "purging NATS key %s", key)
		}
	}

	return nil
}

// Has implements Cache.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the NATS connection if the cache opened it.
func (c *NATSKVCache) Close() error {
	closeIfOwned(c.conn, c.owned)

	return nil
}
