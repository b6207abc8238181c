package reports

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/landscape-hq/underwriter/internal/logging"
)

// Cache stores rendered report payloads keyed per project so writes can
// drop everything a project has cached.
type Cache interface {
	Get(ctx context.Context, projectID, key string) ([]byte, bool)
	Set(ctx context.Context, projectID, key string, payload []byte)
	Invalidate(ctx context.Context, projectID string)
}

// NopCache disables report caching.
type NopCache struct{}

func (NopCache) Get(context.Context, string, string) ([]byte, bool) { return nil, false }
func (NopCache) Set(context.Context, string, string, []byte)       {}
func (NopCache) Invalidate(context.Context, string)                {}

// RedisCache caches report payloads in Redis with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logging.Logger
}

// NewRedisCache wraps an existing Redis client. A non-positive TTL falls
// back to five minutes.
func NewRedisCache(client *redis.Client, ttl time.Duration, log *logging.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logging.NewDefault("report-cache")
	}
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func cacheKey(projectID, key string) string {
	return "report:" + projectID + ":" + key
}

func (c *RedisCache) Get(ctx context.Context, projectID, key string) ([]byte, bool) {
	payload, err := c.client.Get(ctx, cacheKey(projectID, key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.WithError(err).Warn("report cache read failed")
		return nil, false
	}
	return payload, true
}

func (c *RedisCache) Set(ctx context.Context, projectID, key string, payload []byte) {
	if err := c.client.Set(ctx, cacheKey(projectID, key), payload, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("report cache write failed")
	}
}

// Invalidate drops every cached report for the project.
func (c *RedisCache) Invalidate(ctx context.Context, projectID string) {
	iter := c.client.Scan(ctx, 0, cacheKey(projectID, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.WithError(err).Warn("report cache scan failed")
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.log.WithError(err).Warn("report cache invalidation failed")
		}
	}
}
