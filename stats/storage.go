// Package stats keeps monthly audit counters persisted to a JSON file.
package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	monthFormat   = "2006-01"
	fileName      = "stats.json"
	flushInterval = 5 * time.Minute
)

// MonthlyStats are the counters for one calendar month.
type MonthlyStats struct {
	Audits      int       `json:"audits"`
	CacheHits   int       `json:"cache_hits"`
	CacheMisses int       `json:"cache_misses"`
	FetchErrors int       `json:"fetch_errors"`
	ScoreTotal  int       `json:"score_total"`
	LastUpdated time.Time `json:"last_updated"`
}

// AverageScore is the mean overall score of the month's audits.
func (m MonthlyStats) AverageScore() float64 {
	if m.Audits == 0 {
		return 0
	}
	return float64(m.ScoreTotal) / float64(m.Audits)
}

// HitRate is the share of cache lookups that hit, as a percentage.
func (m MonthlyStats) HitRate() float64 {
	total := m.CacheHits + m.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total) * 100
}

// Storage handles persistent storage of statistics.
type Storage struct {
	mutex       sync.RWMutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	now         func() time.Time
	logger      *slog.Logger
}

// NewStorage opens (or creates) the statistics file under dataDir and
// starts the background writer.
func NewStorage(dataDir string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, fileName),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		now:         time.Now,
		logger:      logger,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	s.Cleanup()

	go s.backgroundWriter(s.currentMonth())
	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return json.Unmarshal(data, &s.stats)
}

// save writes the counters to a temporary file and renames it over the
// real one.
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

func (s *Storage) backgroundWriter(month string) {
	defer close(s.stopped)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
			s.flush()
		case <-ticker.C:
			month = s.rollover(month)
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

// rollover drops expired months once the calendar month differs from
// month, and returns the current month.
func (s *Storage) rollover(month string) string {
	current := s.currentMonth()
	if current != month {
		s.Cleanup()
	}
	return current
}

func (s *Storage) flush() {
	if err := s.save(); err != nil {
		s.logger.Error("stats flush failed", "path", s.filePath, "error", err)
	}
}

// requestWrite signals that a write to disk is needed. A pending request
// absorbs later ones.
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
	}
}

func (s *Storage) currentMonth() string {
	return s.now().Format(monthFormat)
}

func (s *Storage) update(apply func(*MonthlyStats)) {
	month := s.currentMonth()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stats, exists := s.stats[month]
	if !exists {
		stats = &MonthlyStats{}
		s.stats[month] = stats
	}
	apply(stats)
	stats.LastUpdated = s.now()

	if s.now().Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = s.now()
	}
}

// RecordAudit counts one completed audit and its overall score.
func (s *Storage) RecordAudit(score int) {
	s.update(func(m *MonthlyStats) {
		m.Audits++
		m.ScoreTotal += score
	})
}

// RecordCacheHit counts an audit served from the cache.
func (s *Storage) RecordCacheHit() {
	s.update(func(m *MonthlyStats) { m.CacheHits++ })
}

// RecordCacheMiss counts an audit that had to fetch the page.
func (s *Storage) RecordCacheMiss() {
	s.update(func(m *MonthlyStats) { m.CacheMisses++ })
}

// RecordFetchError counts a page that could not be fetched.
func (s *Storage) RecordFetchError() {
	s.update(func(m *MonthlyStats) { m.FetchErrors++ })
}

// GetCurrentStats returns statistics for the current month.
func (s *Storage) GetCurrentStats() MonthlyStats {
	stats, _ := s.GetMonthlyStats(s.currentMonth())
	return stats
}

// GetMonthlyStats returns statistics for a "YYYY-MM" month.
func (s *Storage) GetMonthlyStats(yearMonth string) (MonthlyStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if stats, exists := s.stats[yearMonth]; exists {
		return *stats, true
	}
	return MonthlyStats{}, false
}

// GetAllMonths returns every month with statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months
}

// Cleanup drops every month except the current and the previous one and
// returns how many months were removed.
func (s *Storage) Cleanup() int {
	current := s.now()
	keep := map[string]bool{
		current.Format(monthFormat):                   true,
		current.AddDate(0, -1, 0).Format(monthFormat): true,
	}

	removed := 0
	s.mutex.Lock()
	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
			removed++
		}
	}
	s.mutex.Unlock()

	if removed > 0 {
		s.requestWrite()
		s.logger.Info("stats cleanup", "removed_months", removed)
	}
	return removed
}

// Shutdown stops the background writer after a final flush. It is safe to
// call more than once.
func (s *Storage) Shutdown() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
}
