package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uni-adm-api/internal/middleware"
	"github.com/noah-isme/uni-adm-api/internal/models"
)

// claimsFromContext returns the JWT claims set by the auth middleware, or
// nil on routes reached without it.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
