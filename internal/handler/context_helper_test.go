package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-console/internal/middleware"
	"github.com/noah-isme/campus-admin-console/internal/models"
	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

func TestAdminUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := adminUserID(c)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	c.Set(middleware.ContextUserKey, &models.JWTClaims{})
	_, err = adminUserID(c)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-admin"})
	id, err := adminUserID(c)
	require.NoError(t, err)
	assert.Equal(t, "u-admin", id)
}
