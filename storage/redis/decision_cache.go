// Package redisstore provides Redis-backed caches shared across server
// replicas.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/open-rails/recipemcp/license"
)

// DecisionCache is a Redis-backed license.DecisionCache. The TTL bounds how
// stale a cached entitlement may be, so revocations propagate within it.
type DecisionCache struct {
	rdb   *redis.Client
	keyNS string
	ttl   time.Duration
}

// NewDecisionCache creates a decision cache over rdb.
func NewDecisionCache(rdb *redis.Client, keyPrefix string, ttl time.Duration) *DecisionCache {
	if keyPrefix == "" {
		keyPrefix = "recipemcp:license:decision:"
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DecisionCache{rdb: rdb, keyNS: keyPrefix, ttl: ttl}
}

func (c *DecisionCache) key(k string) string { return c.keyNS + k }

// Put implements license.DecisionCache.
func (c *DecisionCache) Put(ctx context.Context, k string, d license.Decision) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(k), b, c.ttl).Err()
}

// Get implements license.DecisionCache.
func (c *DecisionCache) Get(ctx context.Context, k string) (license.Decision, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(k)).Bytes()
	if err == redis.Nil {
		return license.Decision{}, false, nil
	}
	if err != nil {
		return license.Decision{}, false, err
	}
	var d license.Decision
	if err := json.Unmarshal(val, &d); err != nil {
		return license.Decision{}, false, err
	}
	return d, true, nil
}

// Del implements license.DecisionCache.
func (c *DecisionCache) Del(ctx context.Context, k string) error {
	return c.rdb.Del(ctx, c.key(k)).Err()
}
