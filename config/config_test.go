package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8082", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "document", cfg.Fetch.Extractor)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "seoaudit.yaml", `
server:
  port: "9090"
  dev_mode: true
  allowed_origins: ["https://app.example.com"]
fetch:
  timeout: 5s
  check_robots: true
  extractor: node
cache:
  ttl: 10m
  redis_url: redis://localhost:6379/0
audit:
  rule_workers: 4
`)

	cfg := Default()
	require.NoError(t, cfg.loadFile(path))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Fetch.CheckRobots)
	assert.Equal(t, "node", cfg.Fetch.Extractor)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	assert.Equal(t, 4, cfg.Audit.RuleWorkers)
	// Unset keys keep their defaults.
	assert.Equal(t, 1000, cfg.Cache.MaxSize)
	assert.Equal(t, "release", cfg.Server.GinMode)
}

func TestLoadFileErrors(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.loadFile(filepath.Join(t.TempDir(), "missing.yaml")), "read config")

	unknown := writeFile(t, "bad.yaml", "server:\n  prot: 80\n")
	assert.ErrorContains(t, cfg.loadFile(unknown), "parse config")

	empty := writeFile(t, "empty.yaml", "")
	assert.NoError(t, cfg.loadFile(empty))
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"PORT":            "3000",
		"GIN_MODE":        "debug",
		"DEV_MODE":        "true",
		"LOG_LEVEL":       "debug",
		"LOG_FORMAT":      "json",
		"DATA_DIR":        "/var/lib/seoaudit",
		"FETCH_TIMEOUT":   "20s",
		"MAX_PAGE_BYTES":  "1048576",
		"USER_AGENT":      "TestBot/2.0",
		"CACHE_TTL":       "1h",
		"MAX_CACHE_SIZE":  "50",
		"REDIS_URL":       "redis://cache:6379",
		"RATE_LIMIT":      "0.5",
		"RATE_BURST":      "3",
		"EXTRACTOR":       "node",
		"RULE_WORKERS":    "8",
		"CHECK_ROBOTS":    "1",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example,",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, 0.5, cfg.Server.RateLimit)
	assert.Equal(t, 3, cfg.Server.RateBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/var/lib/seoaudit", cfg.DataDir)
	assert.Equal(t, 20*time.Second, cfg.Fetch.Timeout)
	assert.EqualValues(t, 1<<20, cfg.Fetch.MaxPageBytes)
	assert.Equal(t, "TestBot/2.0", cfg.Fetch.UserAgent)
	assert.True(t, cfg.Fetch.CheckRobots)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Cache.MaxSize)
	assert.Equal(t, "redis://cache:6379", cfg.Cache.RedisURL)
	assert.Equal(t, 8, cfg.Audit.RuleWorkers)
}

func TestApplyEnvReportsEveryBadValue(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(lookupFrom(map[string]string{
		"FETCH_TIMEOUT": "soon",
		"RATE_BURST":    "many",
		"DEV_MODE":      "perhaps",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
	assert.Contains(t, err.Error(), "RATE_BURST")
	assert.Contains(t, err.Error(), "DEV_MODE")
}

func TestApplyEnvIgnoresEmptyValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookupFrom(map[string]string{"PORT": "", "CACHE_TTL": ""})))
	assert.Equal(t, "8082", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port not numeric", func(c *Config) { c.Server.Port = "http" }, "server.port"},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, "server.port"},
		{"gin mode", func(c *Config) { c.Server.GinMode = "prod" }, "server.gin_mode"},
		{"rate limit", func(c *Config) { c.Server.RateLimit = 0 }, "server.rate_limit"},
		{"rate burst", func(c *Config) { c.Server.RateBurst = 0 }, "server.rate_burst"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"timeout", func(c *Config) { c.Fetch.Timeout = 0 }, "fetch.timeout"},
		{"page bytes", func(c *Config) { c.Fetch.MaxPageBytes = -1 }, "fetch.max_page_bytes"},
		{"extractor", func(c *Config) { c.Fetch.Extractor = "chrome" }, "fetch.extractor"},
		{"cache ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"cache size", func(c *Config) { c.Cache.MaxSize = 0 }, "cache.max_size"},
		{"redis url", func(c *Config) { c.Cache.RedisURL = "http://cache:6379" }, "cache.redis_url"},
		{"rule workers", func(c *Config) { c.Audit.RuleWorkers = -2 }, "audit.rule_workers"},
		{"data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "seoaudit.yaml", "server:\n  port: \"9090\"\nlog:\n  level: warn\n")
	t.Setenv("PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, "warn", cfg.Log.Level)

	t.Setenv("CACHE_TTL", "-1m")
	_, err = Load(path)
	assert.ErrorContains(t, err, "cache.ttl")
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	dev := filepath.Join(dir, ".env.development")
	require.NoError(t, os.WriteFile(dev, []byte("SEOAUDIT_TEST_ONLY=from-dev\n"), 0o644))
	t.Setenv("SEOAUDIT_TEST_ONLY", "")
	os.Unsetenv("SEOAUDIT_TEST_ONLY")

	loaded := LoadEnvFiles(filepath.Join(dir, ".env.missing"), dev)
	assert.Equal(t, dev, loaded)
	assert.Equal(t, "from-dev", os.Getenv("SEOAUDIT_TEST_ONLY"))

	assert.Empty(t, LoadEnvFiles(filepath.Join(dir, "nope")))
}
