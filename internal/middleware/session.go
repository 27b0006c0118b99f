package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
	"github.com/noah-isme/campus-admin-console/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// TokenParser validates access tokens.
type TokenParser interface {
	ParseToken(token string) (*models.JWTClaims, error)
}

// SessionAuthorizer decides whether a session id may use the console.
type SessionAuthorizer interface {
	Authorize(sessionID string) bool
}

// AdminSession admits requests whose bearer token belongs to the session the gate
// currently holds. EventSource clients cannot set headers, so an access_token
// query parameter is accepted as well.
func AdminSession(parser TokenParser, gate SessionAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if !gate.Authorize(claims.ID) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "session is not active"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		token := c.Query("access_token")
		return token, token != ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
