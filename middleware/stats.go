package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoaudit/logging"
)

// Handlers set these keys so the stats middleware can attribute audits.
const (
	AuditURLKey   = "audit_url"
	AuditScoreKey = "audit_score"
)

const saveEvery = 100

// Stats tracks visitors and audit requests and writes a structured access
// log line per request. Statistics are persisted every saveEvery audits.
func Stats(stats *logging.Statistics, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()

		if target, ok := c.Get(AuditURLKey); ok && c.Request.Method == http.MethodPost {
			url, _ := target.(string)
			score := -1
			if s, ok := c.Get(AuditScoreKey); ok {
				score, _ = s.(int)
			}
			stats.TrackAudit(url, elapsed, score, status >= http.StatusBadRequest)

			if stats.Requests()%saveEvery == 0 {
				go func() {
					if err := stats.Save(); err != nil {
						logger.Warn("statistics save failed", "error", err)
					}
				}()
			}
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", elapsed,
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(RequestIDKey))
	}
}
