package recipegin

import (
	"crypto/rsa"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/recipemcp/adapters/gin/handlers"
	"github.com/open-rails/recipemcp/adapters/ginutil"
	"github.com/open-rails/recipemcp/service"
)

// Options configures route registration.
type Options struct {
	// RateLimiter throttles per client key; nil disables throttling.
	RateLimiter ginutil.RateLimiter
	// OfflineKeys, when set, are published at /.well-known/jwks.json so
	// tooling can verify offline license tokens.
	OfflineKeys map[string]*rsa.PublicKey
	// MCPHandler, when set, is mounted at /mcp for streamable HTTP clients.
	MCPHandler http.Handler
}

// Register mounts the recipe API onto engine.
func Register(engine *gin.Engine, svc *service.Service, opts Options) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1", BearerMiddleware())
	v1.GET("/recipes", handlers.HandleRecipesListGET(svc, opts.RateLimiter))
	v1.GET("/recipes/search", handlers.HandleRecipesSearchGET(svc, opts.RateLimiter))
	v1.GET("/recipes/:id", handlers.HandleRecipeGET(svc, opts.RateLimiter))

	if len(opts.OfflineKeys) > 0 {
		engine.GET("/.well-known/jwks.json", handlers.HandleJWKSGET(opts.OfflineKeys))
	}
	if opts.MCPHandler != nil {
		engine.Any("/mcp", gin.WrapH(opts.MCPHandler))
	}
}
