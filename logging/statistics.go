package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const visitorWindow = 24 * time.Hour

// Statistics collects request-level service statistics.
type Statistics struct {
	UniqueVisitors map[string]time.Time `json:"uniqueVisitors"` // IP -> last visit
	AuditRequests  int                  `json:"auditRequests"`
	ErrorCount     int                  `json:"errorCount"`
	PopularURLs    map[string]int       `json:"popularUrls"`
	TotalLoadTime  float64              `json:"totalLoadTime"`
	ScoredAudits   int                  `json:"scoredAudits"`
	TotalScore     int                  `json:"totalScore"`
	LastPersisted  time.Time            `json:"lastPersisted"`

	mutex   sync.RWMutex
	path    string
	devMode bool
	now     func() time.Time
}

// NewStatistics loads statistics from path if the file exists. In dev mode
// the snapshot also lists the most audited URLs.
func NewStatistics(path string, devMode bool) (*Statistics, error) {
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		path:           path,
		devMode:        devMode,
		now:            time.Now,
	}
	if err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

// TrackVisitor records a visit from ip.
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UniqueVisitors[ip] = s.now()
}

// cleanURL reduces a target URL to scheme, host and path. Local and API
// URLs are not tracked.
func cleanURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	clean := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		clean += u.Path
	}
	return strings.TrimSuffix(clean, "/")
}

// TrackAudit records one audit request. target may be empty when the
// request carried no URL; score is negative when no audit was produced.
func (s *Statistics) TrackAudit(target string, loadTime time.Duration, score int, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++
	if cleaned := cleanURL(target); cleaned != "" {
		s.PopularURLs[cleaned]++
	}
	if hasError {
		s.ErrorCount++
	}
	if score >= 0 {
		s.ScoredAudits++
		s.TotalScore += score
	}
	s.TotalLoadTime += float64(loadTime) / float64(time.Millisecond)
}

// UniqueVisitorsCount is the number of visitors seen in the last 24 hours.
func (s *Statistics) UniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitors()
}

func (s *Statistics) uniqueVisitors() int {
	cutoff := s.now().Add(-visitorWindow)
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// PopularURL is one tracked URL with its audit count.
type PopularURL struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// PopularURLsTop returns the n most audited URLs, most frequent first and
// alphabetical within a count.
func (s *Statistics) PopularURLsTop(n int) []PopularURL {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.popular(n)
}

func (s *Statistics) popular(n int) []PopularURL {
	out := make([]PopularURL, 0, len(s.PopularURLs))
	for u, c := range s.PopularURLs {
		out = append(out, PopularURL{URL: u, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].URL < out[j].URL
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ErrorRate is the share of failed audit requests as a percentage.
func (s *Statistics) ErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRate()
}

func (s *Statistics) errorRate() float64 {
	if s.AuditRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.AuditRequests) * 100
}

// Requests is the number of audit requests tracked so far.
func (s *Statistics) Requests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.AuditRequests
}

// Snapshot returns the public view of the statistics.
func (s *Statistics) Snapshot() map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	averageLoad, averageScore := 0.0, 0.0
	if s.AuditRequests > 0 {
		averageLoad = s.TotalLoadTime / float64(s.AuditRequests)
	}
	if s.ScoredAudits > 0 {
		averageScore = float64(s.TotalScore) / float64(s.ScoredAudits)
	}

	snapshot := map[string]any{
		"uniqueVisitors24h": s.uniqueVisitors(),
		"totalRequests":     s.AuditRequests,
		"errorRate":         s.errorRate(),
		"averageLoadTime":   averageLoad,
		"averageScore":      averageScore,
	}
	if s.devMode {
		snapshot["popularUrls"] = s.popular(5)
	}
	return snapshot
}

// Save writes the statistics to their file. A Statistics without a path
// is memory-only.
func (s *Statistics) Save() error {
	if s.path == "" {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = s.now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics from their file. A missing file is not an error.
func (s *Statistics) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularURLs == nil {
		s.PopularURLs = make(map[string]int)
	}
	return nil
}
