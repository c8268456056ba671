// Package config loads service settings from .env files, an optional YAML
// file and the environment, in that order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/seoaudit/extract"
	"github.com/seo-optimizer/seoaudit/logging"
)

// Config holds every tunable of the service and the CLI.
type Config struct {
	Server  ServerConfig `yaml:"server"`
	Log     LogConfig    `yaml:"log"`
	Fetch   FetchConfig  `yaml:"fetch"`
	Cache   CacheConfig  `yaml:"cache"`
	Audit   AuditConfig  `yaml:"audit"`
	DataDir string       `yaml:"data_dir"`
}

type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
	// DevMode exposes popular URLs in the statistics endpoint.
	DevMode bool `yaml:"dev_mode"`
	// RateLimit is requests per second per client IP.
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxPageBytes int64         `yaml:"max_page_bytes"`
	UserAgent    string        `yaml:"user_agent"`
	CheckRobots  bool          `yaml:"check_robots"`
	Extractor    string        `yaml:"extractor"`
}

type CacheConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxSize     int           `yaml:"max_size"`
	RedisURL    string        `yaml:"redis_url"`
	RedisPrefix string        `yaml:"redis_prefix"`
}

type AuditConfig struct {
	// RuleWorkers > 1 evaluates rules concurrently.
	RuleWorkers int `yaml:"rule_workers"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8082",
			GinMode:        "release",
			RateLimit:      2,
			RateBurst:      5,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info", Format: logging.FormatText},
		Fetch: FetchConfig{
			Timeout:      15 * time.Second,
			MaxPageBytes: 5 << 20,
			UserAgent:    "Mozilla/5.0 (compatible; SEOAnalyzer/1.0)",
			Extractor:    extract.DocumentName,
		},
		Cache: CacheConfig{
			TTL:         30 * time.Minute,
			MaxSize:     1000,
			RedisPrefix: "seoaudit:analysis:",
		},
		DataDir: "data",
	}
}

// LoadEnvFiles loads the first of files that exists into the process
// environment without overriding variables already set. It returns the
// file loaded, or "" when none was found.
func LoadEnvFiles(files ...string) string {
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			return f
		}
	}
	return ""
}

// Load builds the configuration: defaults, then .env.development or .env,
// then the YAML file at path (if any), then environment overrides.
func Load(path string) (*Config, error) {
	if f := LoadEnvFiles(".env.development", ".env"); f != "" {
		slog.Debug("loaded env file", "file", f)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from the variables lookup knows about.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	parse := func(key string, set func(string) error) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		if err := set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", key, v, err))
		}
	}
	boolean := func(dst *bool) func(string) error {
		return func(v string) (err error) { *dst, err = strconv.ParseBool(v); return }
	}
	integer := func(dst *int) func(string) error {
		return func(v string) (err error) { *dst, err = strconv.Atoi(v); return }
	}
	duration := func(dst *time.Duration) func(string) error {
		return func(v string) (err error) { *dst, err = time.ParseDuration(v); return }
	}

	str("PORT", &c.Server.Port)
	str("GIN_MODE", &c.Server.GinMode)
	parse("DEV_MODE", boolean(&c.Server.DevMode))
	parse("RATE_LIMIT", func(v string) (err error) {
		c.Server.RateLimit, err = strconv.ParseFloat(v, 64)
		return
	})
	parse("RATE_BURST", integer(&c.Server.RateBurst))
	parse("ALLOWED_ORIGINS", func(v string) error {
		c.Server.AllowedOrigins = splitList(v)
		return nil
	})
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("DATA_DIR", &c.DataDir)
	parse("FETCH_TIMEOUT", duration(&c.Fetch.Timeout))
	parse("MAX_PAGE_BYTES", func(v string) (err error) {
		c.Fetch.MaxPageBytes, err = strconv.ParseInt(v, 10, 64)
		return
	})
	str("USER_AGENT", &c.Fetch.UserAgent)
	parse("CHECK_ROBOTS", boolean(&c.Fetch.CheckRobots))
	str("EXTRACTOR", &c.Fetch.Extractor)
	parse("CACHE_TTL", duration(&c.Cache.TTL))
	parse("MAX_CACHE_SIZE", integer(&c.Cache.MaxSize))
	str("REDIS_URL", &c.Cache.RedisURL)
	str("REDIS_PREFIX", &c.Cache.RedisPrefix)
	parse("RULE_WORKERS", integer(&c.Audit.RuleWorkers))

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		fail("server.port %q is not a valid port", c.Server.Port)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		fail("server.gin_mode %q must be debug, release or test", c.Server.GinMode)
	}
	if c.Server.RateLimit <= 0 {
		fail("server.rate_limit must be positive")
	}
	if c.Server.RateBurst < 1 {
		fail("server.rate_burst must be at least 1")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		fail("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatText, logging.FormatJSON:
	default:
		fail("log.format %q must be text or json", c.Log.Format)
	}
	if c.Fetch.Timeout <= 0 {
		fail("fetch.timeout must be positive")
	}
	if c.Fetch.MaxPageBytes <= 0 {
		fail("fetch.max_page_bytes must be positive")
	}
	if _, err := extract.New(c.Fetch.Extractor); err != nil {
		fail("fetch.extractor: %v", err)
	}
	if c.Cache.TTL <= 0 {
		fail("cache.ttl must be positive")
	}
	if c.Cache.MaxSize < 1 {
		fail("cache.max_size must be at least 1")
	}
	if c.Cache.RedisURL != "" {
		u, err := url.Parse(c.Cache.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			fail("cache.redis_url %q must be a redis:// or rediss:// url", c.Cache.RedisURL)
		}
	}
	if c.Audit.RuleWorkers < 0 {
		fail("audit.rule_workers must not be negative")
	}
	if c.DataDir == "" {
		fail("data_dir must be set")
	}
	return errors.Join(errs...)
}
