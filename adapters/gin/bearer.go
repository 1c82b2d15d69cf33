// Package recipegin mounts the recipe service on a gin engine as a plain
// JSON API alongside the MCP endpoint.
package recipegin

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/recipemcp/adapters/ginutil"
	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/service"
)

// BearerMiddleware extracts the "Authorization: Bearer ..." credential into
// the request context. A missing header is the normal free-tier state and is
// never rejected here; entitlement is decided per recipe by the service.
//
// The middleware also records the rate-limit identity: the license key prefix
// when a key is present (so one buyer shares one budget across machines),
// otherwise the client IP.
func BearerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := bearerCredential(c.GetHeader("Authorization"))
		if cred != "" {
			ctx := license.WithCredential(c.Request.Context(), cred)
			c.Request = c.Request.WithContext(ctx)
			if prefix, _, err := license.SplitKey(cred); err == nil {
				c.Set(ginutil.ClientKeyContextKey, "key:"+prefix)
			}
		}
		ctx := service.WithClientInfo(c.Request.Context(), c.Request.UserAgent())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerCredential(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
