package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/seoaudit/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	var logs bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(slog.New(slog.NewJSONHandler(&logs, nil))))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/boom", http.Header{RequestIDHeader: {"req-1"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An unexpected error occurred"}`, w.Body.String())

	var record map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &record))
	assert.Equal(t, "panic recovered", record["msg"])
	assert.Equal(t, "kaboom", record["error"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Contains(t, record["stack"], "runtime/debug.Stack")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	from := func(ip string) http.Header { return http.Header{"X-Forwarded-For": {ip}} }

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.1")).Code)

	limited := serve(r, http.MethodGet, "/", from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.2")).Code, "buckets are per client")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", from("10.0.0.1")).Code, "a token refills each second")

	serve(r, http.MethodGet, "/", from("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodOptions, "/", from("10.0.0.1")).Code,
		"preflight requests are not limited")
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("10.0.0.1")
	now = now.Add(time.Hour)
	rl.limiter("10.0.0.2")

	rl.Cleanup(10 * time.Minute)
	assert.Equal(t, 1, rl.Visitors())
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, 1, NewRateLimiter(5, 1).retryAfter())
	assert.Equal(t, 4, NewRateLimiter(0.25, 1).retryAfter())
	assert.Equal(t, 60, NewRateLimiter(0, 1).retryAfter())
}

func TestCORS(t *testing.T) {
	handler := func(c *gin.Context) { c.Status(http.StatusOK) }

	t.Run("wildcard", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS([]string{"*"}))
		r.GET("/", handler)

		w := serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://any.example"}})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
	})

	t.Run("allow list", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS([]string{"https://app.example"}))
		r.GET("/", handler)

		allowed := serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://app.example"}})
		assert.Equal(t, "https://app.example", allowed.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", allowed.Header().Get("Vary"))

		denied := serve(r, http.MethodGet, "/", http.Header{"Origin": {"https://evil.example"}})
		assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		called := false
		r := gin.New()
		r.Use(CORS([]string{"*"}))
		r.OPTIONS("/api/analyze", func(c *gin.Context) { called = true })

		w := serve(r, http.MethodOptions, "/api/analyze", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, called)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, http.MethodGet, "/", nil)
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	w = serve(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"caller-id"}})
	assert.Equal(t, "caller-id", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/", http.Header{RequestIDHeader: {strings.Repeat("x", 200)}})
	_, err = uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "oversized ids are replaced")
}

func TestStatsTracksAudits(t *testing.T) {
	stats, err := logging.NewStatistics("", false)
	require.NoError(t, err)

	var logs bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Stats(stats, slog.New(slog.NewJSONHandler(&logs, nil))))
	r.POST("/api/analyze", func(c *gin.Context) {
		c.Set(AuditURLKey, "https://example.com/")
		c.Set(AuditScoreKey, 88)
		c.Status(http.StatusOK)
	})
	r.POST("/api/failing", func(c *gin.Context) {
		c.Set(AuditURLKey, "https://down.example/")
		c.Status(http.StatusBadGateway)
	})
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodPost, "/api/analyze", nil)
	serve(r, http.MethodPost, "/api/failing", nil)
	serve(r, http.MethodGet, "/api/health", nil)

	snap := stats.Snapshot()
	assert.Equal(t, 2, snap["totalRequests"])
	assert.InDelta(t, 50.0, snap["errorRate"], 1e-9)
	assert.InDelta(t, 88.0, snap["averageScore"], 1e-9)
	assert.Equal(t, 1, snap["uniqueVisitors24h"])

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 3)
	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
	assert.Equal(t, "request", last["msg"])
	assert.Equal(t, "/api/health", last["path"])
	assert.EqualValues(t, 200, last["status"])
	assert.NotEmpty(t, last["request_id"])

	var failing map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &failing))
	assert.Equal(t, "ERROR", failing["level"])
}
