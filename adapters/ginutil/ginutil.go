// Package ginutil holds shared helpers for the gin HTTP adapters.
package ginutil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Rate limit bucket names, one per operation.
const (
	RLRecipesList   = "recipes.list"
	RLRecipesGet    = "recipes.get"
	RLRecipesSearch = "recipes.search"
)

// RateLimiter matches both the Redis and in-memory limiters.
type RateLimiter interface {
	AllowNamed(bucket, key string) (bool, error)
}

// ClientKeyContextKey is where the bearer middleware stores the rate-limit
// identity (license key prefix when present, client IP otherwise).
const ClientKeyContextKey = "recipemcp.client_key"

// AllowNamed applies the limiter for bucket using the request's client key.
// A limiter error fails open.
func AllowNamed(c *gin.Context, rl RateLimiter, bucket string) bool {
	if rl == nil {
		return true
	}
	key := c.GetString(ClientKeyContextKey)
	if key == "" {
		key = c.ClientIP()
	}
	ok, err := rl.AllowNamed(bucket, key)
	if err != nil {
		return true
	}
	return ok
}

// TooMany writes the throttled response.
func TooMany(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
}

// ServerErr writes a generic service-unavailable response for exhausted-retry
// infrastructure faults.
func ServerErr(c *gin.Context, code string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": code})
}

// BadRequest writes a client-fault response.
func BadRequest(c *gin.Context, code string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": code})
}
