package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/recipemcp/adapters/ginutil"
	"github.com/open-rails/recipemcp/service"
)

// HandleRecipeGET fetches one recipe. The credential (if any) travels in the
// request context, placed there by the bearer middleware. Redaction is a 200:
// the same operation succeeds either way, only the payload differs. Only
// unknown ids produce a 404, and that body is still well-formed JSON.
func HandleRecipeGET(svc *service.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLRecipesGet) {
			ginutil.TooMany(c)
			return
		}
		res, err := svc.Get(c.Request.Context(), c.Param("id"), "")
		if err != nil {
			if service.IsInvalidRequest(err) {
				ginutil.BadRequest(c, "invalid_recipe_id")
				return
			}
			ginutil.ServerErr(c, "failed_to_get_recipe")
			return
		}
		switch res.Kind {
		case service.KindFull:
			c.JSON(http.StatusOK, gin.H{"kind": res.Kind, "recipe": res.Recipe})
		case service.KindRedacted:
			c.JSON(http.StatusOK, gin.H{"kind": res.Kind, "redacted": res.Redacted})
		case service.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"kind": res.Kind, "missing": res.Missing})
		default:
			ginutil.ServerErr(c, "unknown_result_kind")
		}
	}
}
