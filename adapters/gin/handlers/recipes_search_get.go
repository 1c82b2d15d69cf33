package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/recipemcp/adapters/ginutil"
	"github.com/open-rails/recipemcp/service"
)

// HandleRecipesSearchGET searches recipe summaries by the q query parameter.
func HandleRecipesSearchGET(svc *service.Service, rl ginutil.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ginutil.AllowNamed(c, rl, ginutil.RLRecipesSearch) {
			ginutil.TooMany(c)
			return
		}
		query := c.Query("q")
		items, err := svc.Search(c.Request.Context(), query)
		if err != nil {
			ginutil.ServerErr(c, "failed_to_search_recipes")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items, "query": query})
	}
}
