package license

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DecisionCache stores entitlement decisions for a bounded TTL. Caching is an
// optimization the validator contract permits as long as revocations
// propagate within the staleness window, which is exactly the cache TTL here.
type DecisionCache interface {
	Get(ctx context.Context, key string) (Decision, bool, error)
	Put(ctx context.Context, key string, d Decision) error
	Del(ctx context.Context, key string) error
}

// CachedValidator wraps a Validator with a DecisionCache. Only deterministic
// per-credential outcomes are cached; absent-credential and infrastructure
// errors pass through. Cache failures degrade to direct validation.
type CachedValidator struct {
	inner Validator
	cache DecisionCache
}

// NewCachedValidator wraps inner with cache.
func NewCachedValidator(inner Validator, cache DecisionCache) *CachedValidator {
	return &CachedValidator{inner: inner, cache: cache}
}

// Validate implements Validator.
func (v *CachedValidator) Validate(ctx context.Context, credential string) (Decision, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Deny(ReasonNoKey), nil
	}
	key := CacheKey(credential)
	if cached, ok, err := v.cache.Get(ctx, key); err == nil && ok {
		return cached, nil
	}
	decision, err := v.inner.Validate(ctx, credential)
	if err != nil {
		return Decision{}, err
	}
	_ = v.cache.Put(ctx, key, decision)
	return decision, nil
}

// CacheKey derives a cache key from a credential without storing the
// credential itself.
func CacheKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

// MemoryDecisionCache is an in-process DecisionCache with TTL eviction.
type MemoryDecisionCache struct {
	mu     sync.Mutex
	ttl    time.Duration
	data   map[string]cachedDecision
	closed chan struct{}
}

type cachedDecision struct {
	d   Decision
	exp time.Time
}

// NewMemoryDecisionCache creates an in-memory cache with the given TTL.
// If ttl <= 0, a default of 1 minute is used. Starts a background goroutine
// to clean up expired entries every minute.
func NewMemoryDecisionCache(ttl time.Duration) *MemoryDecisionCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &MemoryDecisionCache{
		ttl:    ttl,
		data:   make(map[string]cachedDecision),
		closed: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get implements DecisionCache.
func (c *MemoryDecisionCache) Get(_ context.Context, key string) (Decision, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.data[key]
	if !ok {
		return Decision{}, false, nil
	}
	if time.Now().After(it.exp) {
		delete(c.data, key)
		return Decision{}, false, nil
	}
	return it.d, true, nil
}

// Put implements DecisionCache.
func (c *MemoryDecisionCache) Put(_ context.Context, key string, d Decision) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cachedDecision{d: d, exp: time.Now().Add(c.ttl)}
	return nil
}

// Del implements DecisionCache.
func (c *MemoryDecisionCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// cleanupLoop runs in the background and removes expired entries every minute.
func (c *MemoryDecisionCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.closed:
			return
		}
	}
}

func (c *MemoryDecisionCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, v := range c.data {
		if now.After(v.exp) {
			delete(c.data, k)
		}
	}
}

// Close stops the background cleanup goroutine.
func (c *MemoryDecisionCache) Close() error {
	close(c.closed)
	return nil
}
