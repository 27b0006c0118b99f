package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/middleware"
	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

// adminUserID returns the user behind the admitted session.
func adminUserID(c *gin.Context) (string, error) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return "", appErrors.ErrUnauthorized
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims.UserID == "" {
		return "", appErrors.ErrUnauthorized
	}
	return claims.UserID, nil
}
