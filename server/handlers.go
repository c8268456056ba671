package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/middleware"
	"github.com/seo-optimizer/seoaudit/page"
	"github.com/seo-optimizer/seoaudit/report"
	"github.com/seo-optimizer/seoaudit/stats"
)

type urlRequest struct {
	URL    string          `json:"url" binding:"required,url"`
	Vitals *page.WebVitals `json:"vitals"`
}

type auditRequest struct {
	Extraction *page.Extraction `json:"extraction" binding:"required"`
	Vitals     *page.WebVitals  `json:"vitals"`
}

type compareRequest struct {
	URLs []string `json:"urls" binding:"required,min=2,max=5,dive,required,url"`
}

type reportRequest struct {
	URL    string          `json:"url" binding:"required,url"`
	Format string          `json:"format" binding:"omitempty,oneof=text md markdown json pdf"`
	Vitals *page.WebVitals `json:"vitals"`
}

type cacheSettings struct {
	TTL     string `json:"ttl"`
	MaxSize *int   `json:"maxSize"`
}

type monthView struct {
	Month string `json:"month"`
	stats.MonthlyStats
	AverageScore float64 `json:"averageScore"`
	HitRate      float64 `json:"hitRate"`
}

type ruleView struct {
	audit.Rule
	Weight int `json:"weight"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

// fail maps analyzer errors to HTTP statuses.
func (s *Server) fail(c *gin.Context, target string, err error) {
	status := http.StatusBadGateway
	body := gin.H{"error": "Failed to analyze URL: " + err.Error()}

	var fetchErr *analyzer.FetchError
	switch {
	case errors.Is(err, analyzer.ErrInvalidURL), errors.Is(err, analyzer.ErrCompareCount):
		status = http.StatusBadRequest
	case errors.As(err, &fetchErr):
		body["upstreamStatus"] = fetchErr.StatusCode
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	s.logger.Warn("analysis failed",
		"url", target,
		"status", status,
		"error", err,
		"request_id", c.GetString(middleware.RequestIDKey))
	c.JSON(status, body)
}

func markAudit(c *gin.Context, target string, score int) {
	c.Set(middleware.AuditURLKey, target)
	c.Set(middleware.AuditScoreKey, score)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) rules(c *gin.Context) {
	rules := s.analyzer.Rules()
	views := make([]ruleView, len(rules))
	for i, r := range rules {
		views[i] = ruleView{Rule: r, Weight: audit.Weight(r.Category)}
	}
	c.JSON(http.StatusOK, gin.H{"rules": views, "count": len(views)})
}

func (s *Server) rule(c *gin.Context) {
	r, ok := audit.Lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown rule: " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, ruleView{Rule: r, Weight: audit.Weight(r.Category)})
}

func (s *Server) analyze(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.Set(middleware.AuditURLKey, req.URL)

	analysis, err := s.analyzer.Analyze(c.Request.Context(), req.URL, req.Vitals)
	if err != nil {
		s.fail(c, req.URL, err)
		return
	}
	markAudit(c, req.URL, analysis.Report.Score)
	c.JSON(http.StatusOK, analysis)
}

// audit scores an extraction captured by a browser host.
func (s *Server) audit(c *gin.Context) {
	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Extraction.URL == "" {
		badRequest(c, errors.New("extraction.url is required"))
		return
	}

	r := s.analyzer.AuditExtraction(*req.Extraction, req.Vitals)
	markAudit(c, req.Extraction.URL, r.Score)
	c.JSON(http.StatusOK, r)
}

func (s *Server) extract(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := s.analyzer.Extract(c.Request.Context(), req.URL)
	if err != nil {
		s.fail(c, req.URL, err)
		return
	}
	c.JSON(http.StatusOK, page.Normalize(p))
}

func (s *Server) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entries, err := s.analyzer.Compare(c.Request.Context(), req.URLs)
	if err != nil {
		s.fail(c, "", err)
		return
	}
	for _, e := range entries {
		s.stats.TrackAudit(e.URL, 0, e.Report.Score, false)
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"report":  report.Comparison(entries),
	})
}

func (s *Server) report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	renderer, err := report.ForFormat(req.Format)
	if err != nil {
		badRequest(c, err)
		return
	}
	c.Set(middleware.AuditURLKey, req.URL)

	analysis, err := s.analyzer.Analyze(c.Request.Context(), req.URL, req.Vitals)
	if err != nil {
		s.fail(c, req.URL, err)
		return
	}
	markAudit(c, req.URL, analysis.Report.Score)

	data, err := renderer.Render(analysis.Report, analysis.Extraction)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, renderer.ContentType(), data)
}

func (s *Server) statistics(c *gin.Context) {
	snapshot := s.stats.Snapshot()
	snapshot["activeClients"] = s.limiter.Visitors()
	c.JSON(http.StatusOK, snapshot)
}

// monthlyStatistics lists the persisted monthly counters, newest first.
func (s *Server) monthlyStatistics(c *gin.Context) {
	months := []monthView{}
	if usage := s.analyzer.Usage(); usage != nil {
		for _, month := range usage.GetAllMonths() {
			m, ok := usage.GetMonthlyStats(month)
			if !ok {
				continue
			}
			months = append(months, monthView{
				Month:        month,
				MonthlyStats: m,
				AverageScore: m.AverageScore(),
				HitRate:      m.HitRate(),
			})
		}
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// cacheStats describes the cache. With ?url= it also reports whether a
// vitals-free analysis of that URL is cached.
func (s *Server) cacheStats(c *gin.Context) {
	ctx := c.Request.Context()
	cs := s.analyzer.CacheStats(ctx)
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusOK, cs)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cache":  cs,
		"url":    target,
		"cached": s.analyzer.IsCached(ctx, target),
	})
}

// configureCache changes the cache TTL and, for the memory backend, its
// entry limit.
func (s *Server) configureCache(c *gin.Context) {
	var req cacheSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.TTL == "" && req.MaxSize == nil {
		badRequest(c, errors.New("ttl or maxSize is required"))
		return
	}

	var ttl time.Duration
	if req.TTL != "" {
		d, err := time.ParseDuration(req.TTL)
		if err != nil || d <= 0 {
			badRequest(c, fmt.Errorf("ttl must be a positive duration, got %q", req.TTL))
			return
		}
		ttl = d
	}
	if req.MaxSize != nil {
		if err := s.analyzer.SetCacheMaxSize(*req.MaxSize); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, analyzer.ErrCacheNotResizable) {
				status = http.StatusConflict
			}
			c.JSON(status, gin.H{"error": "Failed to resize cache: " + err.Error()})
			return
		}
	}
	if ttl > 0 {
		s.analyzer.SetCacheTTL(ttl)
	}

	s.logger.Info("cache settings changed",
		"ttl", req.TTL,
		"request_id", c.GetString(middleware.RequestIDKey))
	c.JSON(http.StatusOK, s.analyzer.CacheStats(c.Request.Context()))
}

func (s *Server) clearCache(c *gin.Context) {
	if err := s.analyzer.ClearCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cache: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
