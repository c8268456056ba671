package stats

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStorage(t *testing.T, dir string) *Storage {
	t.Helper()
	s, err := NewStorage(dir, quietLogger())
	require.NoError(t, err)
	t.Cleanup(s.Shutdown)
	return s
}

func TestStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage := newStorage(t, tempDir)

	t.Run("RecordAudit", func(t *testing.T) {
		storage.RecordAudit(80)
		storage.RecordAudit(60)
		storage.RecordCacheHit()
		storage.RecordCacheMiss()
		storage.RecordCacheMiss()
		storage.RecordFetchError()

		stats := storage.GetCurrentStats()
		assert.Equal(t, 2, stats.Audits)
		assert.Equal(t, 140, stats.ScoreTotal)
		assert.InDelta(t, 70.0, stats.AverageScore(), 1e-9)
		assert.Equal(t, 1, stats.CacheHits)
		assert.Equal(t, 2, stats.CacheMisses)
		assert.InDelta(t, 100.0/3, stats.HitRate(), 1e-9)
		assert.Equal(t, 1, stats.FetchErrors)
		assert.False(t, stats.LastUpdated.IsZero())
	})

	t.Run("Persistence", func(t *testing.T) {
		storage.Shutdown()

		_, err := os.Stat(filepath.Join(tempDir, fileName))
		require.NoError(t, err)

		reloaded := newStorage(t, tempDir)
		assert.Equal(t, 2, reloaded.GetCurrentStats().Audits)
	})
}

func TestGetAllMonthsNewestFirst(t *testing.T) {
	storage := newStorage(t, t.TempDir())

	for _, month := range []string{"2024-01", "2024-03", "2024-02"} {
		at, err := time.Parse(monthFormat, month)
		require.NoError(t, err)
		storage.now = func() time.Time { return at }
		storage.RecordAudit(50)
	}

	assert.Equal(t, []string{"2024-03", "2024-02", "2024-01"}, storage.GetAllMonths())

	stats, ok := storage.GetMonthlyStats("2024-02")
	require.True(t, ok)
	assert.Equal(t, 1, stats.Audits)

	_, ok = storage.GetMonthlyStats("1999-12")
	assert.False(t, ok)
}

func TestCleanupKeepsCurrentAndPreviousMonth(t *testing.T) {
	storage := newStorage(t, t.TempDir())

	for _, month := range []string{"2024-01", "2024-02", "2024-03"} {
		at, err := time.Parse(monthFormat, month)
		require.NoError(t, err)
		storage.now = func() time.Time { return at }
		storage.RecordCacheHit()
	}

	assert.Equal(t, 1, storage.Cleanup())
	assert.Equal(t, []string{"2024-03", "2024-02"}, storage.GetAllMonths())
	assert.Zero(t, storage.Cleanup())
}

func TestNewStorageDropsExpiredMonths(t *testing.T) {
	dir := t.TempDir()
	current := time.Now().Format(monthFormat)
	data := `{"2019-05":{"audits":4},"` + current + `":{"audits":2}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(data), 0o644))

	storage := newStorage(t, dir)
	assert.Equal(t, []string{current}, storage.GetAllMonths())
	assert.Equal(t, 2, storage.GetCurrentStats().Audits)

	storage.Shutdown()
	saved, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	assert.NotContains(t, string(saved), "2019-05")
}

func TestRolloverCleansUpOnNewMonth(t *testing.T) {
	storage := newStorage(t, t.TempDir())

	for _, month := range []string{"2024-01", "2024-02"} {
		at, err := time.Parse(monthFormat, month)
		require.NoError(t, err)
		storage.now = func() time.Time { return at }
		storage.RecordAudit(70)
	}

	assert.Equal(t, "2024-02", storage.rollover("2024-02"))
	assert.Len(t, storage.GetAllMonths(), 2, "same month keeps everything")

	april, err := time.Parse(monthFormat, "2024-04")
	require.NoError(t, err)
	storage.now = func() time.Time { return april }

	assert.Equal(t, "2024-04", storage.rollover("2024-02"))
	assert.Empty(t, storage.GetAllMonths())
}

func TestEmptyMonthAverages(t *testing.T) {
	var m MonthlyStats
	assert.Zero(t, m.AverageScore())
	assert.Zero(t, m.HitRate())
}

func TestShutdownIsIdempotent(t *testing.T) {
	storage := newStorage(t, t.TempDir())
	storage.Shutdown()
	assert.NotPanics(t, storage.Shutdown)
}

func TestNewStorageRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0o644))

	_, err := NewStorage(dir, quietLogger())
	assert.ErrorContains(t, err, "failed to load stats")
}
