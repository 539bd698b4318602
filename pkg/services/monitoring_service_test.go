package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	service := NewMonitoringService()
	router := gin.New()
	router.Use(service.LoggingMiddleware())
	router.GET("/api/v1/symptoms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(RequestIDKey)})
	})
	router.GET("/api/v1/monitoring/logs", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/symptoms", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	requestID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, requestID)
	assert.Contains(t, w.Body.String(), requestID)

	// 既存のリクエストIDは引き継ぐ
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/symptoms", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	router.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))

	// モニタリングAPI自体は記録しない
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/monitoring/logs", nil)
	router.ServeHTTP(w, req)

	data := service.GetDashboardData(1)
	assert.Equal(t, 2, data.Endpoints["/api/v1/symptoms"])
	assert.NotContains(t, data.Endpoints, "/api/v1/monitoring/logs")
}

func TestGetDashboardData(t *testing.T) {
	service := NewMonitoringService()
	now := time.Now()

	service.LogRequest(LogEntry{Timestamp: now, Path: "/api/v1/diagnose", Method: "POST", StatusCode: 200, ResponseTime: 4 * time.Millisecond})
	service.LogRequest(LogEntry{Timestamp: now, Path: "/api/v1/diagnose", Method: "POST", StatusCode: 400, ResponseTime: 2 * time.Millisecond})
	service.LogRequest(LogEntry{Timestamp: now, Path: "/api/v1/diagnose", Method: "POST", StatusCode: 500, ResponseTime: 6 * time.Millisecond})
	service.LogRequest(LogEntry{Timestamp: now.Add(-48 * time.Hour), Path: "/api/v1/rules", Method: "GET", StatusCode: 200})

	data := service.GetDashboardData(24)

	require.Len(t, data.RequestsOverTime, 24)
	assert.Equal(t, 3, data.RequestsOverTime[23]["requests"])
	assert.Equal(t, map[string]int{"/api/v1/diagnose": 3}, data.Endpoints)
	assert.Equal(t, []map[string]interface{}{
		{"name": "2xx Success", "value": 1},
		{"name": "4xx Client Error", "value": 1},
		{"name": "5xx Server Error", "value": 1},
	}, data.StatusCodes)
	require.Len(t, data.AvgResponseTimes, 1)
	assert.Equal(t, int64(4), data.AvgResponseTimes[0]["responseTime"])
	require.Len(t, data.RecentErrors, 1)
	assert.Equal(t, 500, data.RecentErrors[0].StatusCode)
}

func TestLogRequestKeepsLatestEntries(t *testing.T) {
	service := NewMonitoringService()
	service.maxEntries = 3

	for i := 0; i < 5; i++ {
		service.LogRequest(LogEntry{Timestamp: time.Now(), Path: "/p", StatusCode: 200 + i})
	}

	require.Len(t, service.logs, 3)
	assert.Equal(t, 202, service.logs[0].StatusCode)
	assert.Equal(t, 204, service.logs[2].StatusCode)
}
