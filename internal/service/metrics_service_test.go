package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/admin/courses", http.StatusOK, 10*time.Millisecond)
	m.ObserveUpload("gallery", nil)
	m.ObserveUpload("gallery", errors.New("quota"))
	m.ObserveChange("classes")
	m.ObserveDropped("classes")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/api/v1/admin/courses",status="200"} 1`)
	assert.Contains(t, body, `media_uploads_total{bucket="gallery",result="error"} 1`)
	assert.Contains(t, body, `media_uploads_total{bucket="gallery",result="ok"} 1`)
	assert.Contains(t, body, `realtime_notifications_total{table="classes"} 1`)
	assert.Contains(t, body, `realtime_refreshes_dropped_total{table="classes"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveUpload("gallery", nil)
	m.ObserveChange("classes")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, m.Snapshot().CacheHits)
}
