// Package analyzer fetches pages over HTTP, extracts them and runs the
// audit engine, caching vitals-free analyses.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/extract"
	"github.com/seo-optimizer/seoaudit/page"
	"github.com/seo-optimizer/seoaudit/report"
	"github.com/seo-optimizer/seoaudit/stats"
)

const compareConcurrency = 3

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Analyzer performs SEO audits of remote pages and local snapshots.
type Analyzer struct {
	opts      Options
	client    *http.Client
	extractor extract.Extractor
	engine    *audit.Engine
	cache     Cache
	logger    *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New builds an Analyzer. Only an unknown extractor name is an error.
func New(opts Options) (*Analyzer, error) {
	opts = opts.withDefaults()

	ex, err := extract.New(opts.Extractor)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	client := opts.Client
	if client == nil {
		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
		client = &http.Client{Timeout: opts.Timeout, Transport: transport}
	}

	return &Analyzer{
		opts:      opts,
		client:    client,
		extractor: ex,
		engine:    audit.NewEngine(audit.WithWorkers(opts.RuleWorkers), audit.WithClock(opts.Now)),
		cache:     opts.Cache,
		logger:    opts.Logger,
	}, nil
}

// Rules returns the catalog the analyzer audits against.
func (a *Analyzer) Rules() []audit.Rule { return a.engine.Rules() }

func validateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) url", ErrInvalidURL, raw)
	}
	return u, nil
}

// fetch downloads rawURL and decodes the body to UTF-8. The snapshot URL is
// the final one after redirects.
func (a *Analyzer) fetch(ctx context.Context, rawURL string) (extract.Input, error) {
	if _, err := validateURL(rawURL); err != nil {
		return extract.Input{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return extract.Input{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", a.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return extract.Input{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return extract.Input{}, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, a.opts.MaxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return extract.Input{}, fmt.Errorf("failed to decode %s: %w", rawURL, err)
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, body); err != nil {
		return extract.Input{}, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	a.logger.Debug("page fetched",
		"url", rawURL,
		"final_url", final,
		"status", resp.StatusCode,
		"bytes", buf.Len(),
		"duration", time.Since(start))

	return extract.Input{
		HTML:    buf.String(),
		URL:     final,
		Headers: resp.Header,
		Now:     a.opts.Now(),
	}, nil
}

// Extract fetches rawURL and returns its extraction, including the
// robots.txt verdict when probing is enabled.
func (a *Analyzer) Extract(ctx context.Context, rawURL string) (page.Extraction, error) {
	in, err := a.fetch(ctx, rawURL)
	if err != nil {
		if !errors.Is(err, ErrInvalidURL) {
			a.recordFetchError()
		}
		return page.Extraction{}, err
	}

	p, err := a.extractor.Extract(in)
	if err != nil {
		return page.Extraction{}, fmt.Errorf("failed to extract %s: %w", rawURL, err)
	}
	if a.opts.CheckRobots {
		p.RobotsTxt = a.checkRobots(ctx, in.URL)
	}
	return p, nil
}

// Analyze fetches, extracts and audits rawURL. Audits without vitals are
// served from and stored in the cache.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string, vitals *page.WebVitals) (Analysis, error) {
	key := cacheKey(rawURL)
	if vitals == nil {
		cached, ok, err := a.cache.Get(ctx, key)
		if err != nil {
			a.logger.Warn("cache lookup failed", "backend", a.cache.Name(), "error", err)
		}
		if ok {
			a.hits.Add(1)
			if a.opts.Stats != nil {
				a.opts.Stats.RecordCacheHit()
			}
			cached.Cached = true
			return cached, nil
		}
		a.misses.Add(1)
		if a.opts.Stats != nil {
			a.opts.Stats.RecordCacheMiss()
		}
	}

	p, err := a.Extract(ctx, rawURL)
	if err != nil {
		return Analysis{}, err
	}

	analysis := Analysis{Extraction: p, Report: a.AuditExtraction(p, vitals)}
	if vitals == nil {
		if err := a.cache.Set(ctx, key, analysis); err != nil {
			a.logger.Warn("cache store failed", "backend", a.cache.Name(), "error", err)
		}
	}
	return analysis, nil
}

// AuditExtraction audits an extraction produced elsewhere, such as the
// live-DOM host.
func (a *Analyzer) AuditExtraction(p page.Extraction, vitals *page.WebVitals) audit.Report {
	r := a.engine.Run(page.Normalize(p), vitals)
	if a.opts.Stats != nil {
		a.opts.Stats.RecordAudit(r.Score)
	}
	a.logger.Info("page audited", "url", r.URL, "score", r.Score, "critical", r.Count(audit.SeverityCritical))
	return r
}

// AuditHTML extracts and audits a local snapshot without any network access.
func (a *Analyzer) AuditHTML(html, pageURL string, headers http.Header, vitals *page.WebVitals) (Analysis, error) {
	p, err := a.extractor.Extract(extract.Input{
		HTML:    html,
		URL:     pageURL,
		Headers: headers,
		Now:     a.opts.Now(),
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to extract %s: %w", pageURL, err)
	}
	return Analysis{Extraction: p, Report: a.AuditExtraction(p, vitals)}, nil
}

// Compare analyzes between MinCompare and MaxCompare pages concurrently.
// Entries keep the order of urls; the first failure in that order is
// returned.
func (a *Analyzer) Compare(ctx context.Context, urls []string) ([]report.Entry, error) {
	if len(urls) < MinCompare || len(urls) > MaxCompare {
		return nil, fmt.Errorf("%w: got %d", ErrCompareCount, len(urls))
	}

	entries := make([]report.Entry, len(urls))
	errs := make([]error, len(urls))
	semaphore := make(chan struct{}, compareConcurrency)

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			analysis, err := a.Analyze(ctx, u, nil)
			if err != nil {
				errs[i] = err
				return
			}
			entries[i] = report.Entry{URL: u, Extraction: analysis.Extraction, Report: analysis.Report}
		}(i, u)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// CacheStats reports the cache backend state and this process's hit counts.
func (a *Analyzer) CacheStats(ctx context.Context) CacheStats {
	entries, err := a.cache.Len(ctx)
	if err != nil {
		a.logger.Warn("cache size unavailable", "backend", a.cache.Name(), "error", err)
	}
	s := CacheStats{
		Backend: a.cache.Name(),
		Entries: entries,
		TTL:     a.cache.TTL(),
		Hits:    a.hits.Load(),
		Misses:  a.misses.Load(),
	}
	if mc, ok := a.cache.(*MemoryCache); ok {
		s.MaxEntries = mc.MaxSize()
	}
	return s
}

// IsCached reports whether a vitals-free analysis of rawURL is cached.
func (a *Analyzer) IsCached(ctx context.Context, rawURL string) bool {
	_, ok, _ := a.cache.Get(ctx, cacheKey(rawURL))
	return ok
}

func (a *Analyzer) ClearCache(ctx context.Context) error {
	return a.cache.Clear(ctx)
}

func (a *Analyzer) SetCacheTTL(ttl time.Duration) {
	a.cache.SetTTL(ttl)
}

// ErrCacheNotResizable is returned when the cache backend has no entry limit.
var ErrCacheNotResizable = errors.New("cache backend has no entry limit")

// SetCacheMaxSize changes the entry limit of the in-memory cache.
func (a *Analyzer) SetCacheMaxSize(size int) error {
	mc, ok := a.cache.(*MemoryCache)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCacheNotResizable, a.cache.Name())
	}
	if size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", size)
	}
	mc.SetMaxSize(size)
	return nil
}

// Usage returns the persistent monthly counters, or nil when none are kept.
func (a *Analyzer) Usage() *stats.Storage { return a.opts.Stats }

func (a *Analyzer) recordFetchError() {
	if a.opts.Stats != nil {
		a.opts.Stats.RecordFetchError()
	}
}

// Shutdown releases the cache and flushes statistics.
func (a *Analyzer) Shutdown() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("cache close failed", "backend", a.cache.Name(), "error", err)
	}
	if a.opts.Stats != nil {
		a.opts.Stats.Shutdown()
	}
	a.client.CloseIdleConnections()
}
