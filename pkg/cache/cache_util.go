package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the shared expiring key-value store handle. It is constructed
// once at the composition root and passed by reference to everything that
// needs it; there is no package-level client.
type Cache struct {
	client redis.UniversalClient // works with both single and cluster
}

func NewCache(addrs []string, password string, useCluster bool) *Cache {
	var rdb redis.UniversalClient

	if useCluster && len(addrs) > 1 {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: password,
			DB:       0,
		})
	}

	return &Cache{client: rdb}
}

// NewCacheWithClient wraps an existing client; used by tests.
func NewCacheWithClient(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

func Key(namespace, key string) string {
	return namespace + ":" + key
}

func (c *Cache) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error {
	return c.client.Set(ctx, Key(namespace, key), value, ttl).Err()
}

// Get returns redis.Nil when the key is absent or already expired.
func (c *Cache) Get(ctx context.Context, namespace, key string) (string, error) {
	return c.client.Get(ctx, Key(namespace, key)).Result()
}

func (c *Cache) Delete(ctx context.Context, namespace, key string) error {
	return c.client.Del(ctx, Key(namespace, key)).Err()
}

func (c *Cache) Exists(ctx context.Context, namespace, key string) (bool, error) {
	n, err := c.client.Exists(ctx, Key(namespace, key)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *Cache) Incr(ctx context.Context, namespace, key string) (int64, error) {
	return c.client.Incr(ctx, Key(namespace, key)).Result()
}

func (c *Cache) Expire(ctx context.Context, namespace, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, Key(namespace, key), ttl).Err()
}

func (c *Cache) GetTTL(ctx context.Context, namespace, key string) (time.Duration, error) {
	return c.client.TTL(ctx, Key(namespace, key)).Result()
}

// Pipelined runs fn against a MULTI/EXEC pipeline so a batch of writes lands
// as a single atomic unit. Callers build full keys with Key.
func (c *Cache) Pipelined(ctx context.Context, fn func(pipe redis.Pipeliner) error) error {
	_, err := c.client.TxPipelined(ctx, fn)
	return err
}
