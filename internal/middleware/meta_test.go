package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-admin-console/pkg/errors"
)

func TestResponseMetaCarriesListState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/", func(c *gin.Context) {
		SetCacheHit(c, false)
		SetListError(c, appErrors.WrapAs(appErrors.ErrRead, errors.New("timeout"), "Failed to load students"))
		SetListError(c, nil)
		c.JSON(http.StatusOK, ResponseMeta(c))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, false, meta["cache_hit"])
	assert.Equal(t, "Failed to load students", meta["list_error"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestResponseMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	SetCacheHit(c, true)
	meta := ResponseMeta(c)
	assert.Equal(t, map[string]interface{}{"cache_hit": true}, meta)

	meta["cache_hit"] = false
	assert.Equal(t, true, ResponseMeta(c)["cache_hit"], "callers get a copy")
}
