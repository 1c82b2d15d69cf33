package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/recipemcp/adapters/ginutil"
	"github.com/open-rails/recipemcp/service"
)

// HandleRecipesListGET lists recipe summaries. Summaries never carry body
// content, so no entitlement check applies.
func HandleRecipesListGET(svc *service.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLRecipesList) {
			ginutil.TooMany(c)
			return
		}
		items, err := svc.List(c.Request.Context())
		if err != nil {
			ginutil.ServerErr(c, "failed_to_list_recipes")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}
