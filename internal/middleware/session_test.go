package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

type fakeParser map[string]string

func (f fakeParser) ParseToken(token string) (*models.JWTClaims, error) {
	id, ok := f[token]
	if !ok {
		return nil, appErrors.WrapAs(appErrors.ErrUnauthorized, errors.New("bad signature"), "invalid token")
	}
	return &models.JWTClaims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ID: id}}, nil
}

type fakeGate string

func (g fakeGate) Authorize(sessionID string) bool { return sessionID == string(g) }

func sessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminSession(fakeParser{"good": "s1", "stale": "s0"}, fakeGate("s1")))
	r.GET("/admin", func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		c.String(http.StatusOK, claims.(*models.JWTClaims).ID)
	})
	return r
}

func TestAdminSession(t *testing.T) {
	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{name: "valid bearer", header: "Bearer good", status: http.StatusOK},
		{name: "query token", query: "?access_token=good", status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "malformed", header: "Token good", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer forged", status: http.StatusUnauthorized},
		{name: "session not held", header: "Bearer stale", status: http.StatusUnauthorized},
	}
	r := sessionRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "s1", rec.Body.String())
			}
		})
	}
}
