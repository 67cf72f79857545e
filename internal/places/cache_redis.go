package places

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pantryscout-discovery/internal/model"
)

// RedisCache is the alternate places cache backend, grounded on the
// job board discovery service's redis-backed job queue — TTL-keyed
// caching maps onto the same redis.Client.Set-with-expiration call.
type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "places:cache:"}
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (model.CandidateSet, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+fingerprint).Bytes()
	if err == redis.Nil {
		return model.CandidateSet{}, false, nil
	}
	if err != nil {
		return model.CandidateSet{}, false, fmt.Errorf("places cache: redis get %s: %w", fingerprint, err)
	}

	var set model.CandidateSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return model.CandidateSet{}, false, fmt.Errorf("places cache: decode %s: %w", fingerprint, err)
	}
	return set, true, nil
}

func (c *RedisCache) Set(ctx context.Context, set model.CandidateSet, ttl time.Duration) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("places cache: encode %s: %w", set.Fingerprint, err)
	}
	if err := c.client.Set(ctx, c.prefix+set.Fingerprint, raw, ttl).Err(); err != nil {
		return fmt.Errorf("places cache: redis set %s: %w", set.Fingerprint, err)
	}
	return nil
}
