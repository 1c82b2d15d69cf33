package handlers

import (
	"crypto/rsa"

	"github.com/gin-gonic/gin"

	"github.com/open-rails/recipemcp/license"
)

// HandleJWKSGET serves the offline-license verification keys as a JWKS
// document.
func HandleJWKSGET(keys map[string]*rsa.PublicKey) gin.HandlerFunc {
	ks := license.BuildJWKS(keys)
	return func(c *gin.Context) {
		license.ServeJWKS(c.Writer, c.Request, ks)
	}
}
