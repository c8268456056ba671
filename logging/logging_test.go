package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "url", "https://example.com/")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "https://example.com/", record["url"])
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "", &buf)
	require.NoError(t, err)

	logger.Debug("fetched", "status", 200)
	assert.Contains(t, buf.String(), "msg=fetched")
	assert.Contains(t, buf.String(), "status=200")

	_, err = New("info", "xml", &buf)
	assert.ErrorContains(t, err, "unknown log format")
}

func TestCleanURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://example.com/", "https://example.com"},
		{"https://example.com/blog/?page=2", "https://example.com/blog"},
		{"http://localhost:8082/page", ""},
		{"http://127.0.0.1/page", ""},
		{"https://example.com/api/analyze", ""},
		{"", ""},
		{"::", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanURL(tt.in), tt.in)
	}
}

func TestStatisticsSnapshot(t *testing.T) {
	s, err := NewStatistics("", false)
	require.NoError(t, err)

	s.TrackVisitor("10.0.0.1")
	s.TrackVisitor("10.0.0.2")
	s.TrackAudit("https://example.com/", 100*time.Millisecond, 80, false)
	s.TrackAudit("https://example.com/", 300*time.Millisecond, 60, false)
	s.TrackAudit("https://broken.example/", 200*time.Millisecond, -1, true)

	snap := s.Snapshot()
	assert.Equal(t, 2, snap["uniqueVisitors24h"])
	assert.Equal(t, 3, snap["totalRequests"])
	assert.InDelta(t, 100.0/3, snap["errorRate"], 1e-9)
	assert.InDelta(t, 200.0, snap["averageLoadTime"], 1e-9)
	assert.InDelta(t, 70.0, snap["averageScore"], 1e-9)
	assert.NotContains(t, snap, "popularUrls")
	assert.Equal(t, 3, s.Requests())
}

func TestStatisticsDevModeListsPopularURLs(t *testing.T) {
	s, err := NewStatistics("", true)
	require.NoError(t, err)

	for range 3 {
		s.TrackAudit("https://b.example/", 0, 50, false)
	}
	s.TrackAudit("https://a.example/", 0, 50, false)
	s.TrackAudit("https://c.example/", 0, 50, false)

	assert.Equal(t, []PopularURL{
		{URL: "https://b.example", Count: 3},
		{URL: "https://a.example", Count: 1},
	}, s.PopularURLsTop(2))
	assert.Len(t, s.Snapshot()["popularUrls"], 3)
}

func TestUniqueVisitorsExpire(t *testing.T) {
	s, err := NewStatistics("", false)
	require.NoError(t, err)

	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	s.TrackVisitor("10.0.0.1")

	now = now.Add(25 * time.Hour)
	s.TrackVisitor("10.0.0.2")
	assert.Equal(t, 1, s.UniqueVisitorsCount())
}

func TestStatisticsPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statistics.json")

	s, err := NewStatistics(path, false)
	require.NoError(t, err)
	s.TrackAudit("https://example.com/", time.Second, 90, false)
	require.NoError(t, s.Save())

	reloaded, err := NewStatistics(path, false)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Requests())
	assert.Equal(t, 1, reloaded.PopularURLs["https://example.com"])
	assert.False(t, reloaded.LastPersisted.IsZero())
}

func TestStatisticsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statistics.json")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	s, err := NewStatistics(path, false)
	assert.ErrorContains(t, err, "could not decode statistics")
	require.NotNil(t, s)
}
