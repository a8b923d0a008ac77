package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sacm-project/sacm-api/internal/middleware"
	"github.com/sacm-project/sacm-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
