package analyzer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/seo-optimizer/seoaudit/audit"
	"github.com/seo-optimizer/seoaudit/page"
	"github.com/seo-optimizer/seoaudit/stats"
)

const (
	DefaultTimeout      = 15 * time.Second
	DefaultMaxPageBytes = 5 << 20
	DefaultUserAgent    = "Mozilla/5.0 (compatible; SEOAnalyzer/1.0)"
	DefaultRobotsAgent  = "SEOAnalyzer"

	MinCompare = 2
	MaxCompare = 5
)

// Analysis is one fetched page and its audit.
type Analysis struct {
	Extraction page.Extraction `json:"extraction"`
	Report     audit.Report    `json:"audit"`
	Cached     bool            `json:"cached"`
}

// Options configures an Analyzer. Zero values fall back to the defaults.
type Options struct {
	Timeout      time.Duration
	MaxPageBytes int64
	UserAgent    string
	// RobotsAgent is the product token matched against robots.txt groups.
	RobotsAgent string
	// Extractor names the extract host; empty selects the document host.
	Extractor   string
	CheckRobots bool
	RuleWorkers int

	// Cache defaults to a MemoryCache with the default TTL and size.
	Cache  Cache
	Stats  *stats.Storage
	Logger *slog.Logger
	// Client replaces the pooled HTTP client.
	Client *http.Client
	// Now stamps extractions and reports; nil means time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxPageBytes <= 0 {
		o.MaxPageBytes = DefaultMaxPageBytes
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.RobotsAgent == "" {
		o.RobotsAgent = DefaultRobotsAgent
	}
	if o.Cache == nil {
		o.Cache = NewMemoryCache(DefaultCacheTTL, DefaultMaxCacheSize)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
