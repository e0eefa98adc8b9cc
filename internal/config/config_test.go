package config_test

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/seraphim/internal/config"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestWithDefault(t *testing.T) {
	t.Setenv(config.EnvToken, "")

	cfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	listing := cfg.ListingURL()
	if listing.String() != config.DefaultListingURL {
		t.Errorf("expected listing URL %s, got %s", config.DefaultListingURL, listing.String())
	}
	docBase := cfg.DocumentBaseURL()
	if docBase.String() != config.DefaultDocumentBaseURL {
		t.Errorf("expected document base URL %s, got %s", config.DefaultDocumentBaseURL, docBase.String())
	}
	if cfg.Token() != "" {
		t.Errorf("expected empty token, got %q", cfg.Token())
	}
	if !strings.HasPrefix(cfg.UserAgent(), "seraphim/") {
		t.Errorf("expected seraphim user agent, got %q", cfg.UserAgent())
	}
	if cfg.Timeout() != 15*time.Second {
		t.Errorf("expected Timeout 15s, got %v", cfg.Timeout())
	}
	if cfg.MaxAttempt() != 1 {
		t.Errorf("expected MaxAttempt 1, got %d", cfg.MaxAttempt())
	}
	if cfg.BackoffInitialDuration() != 500*time.Millisecond {
		t.Errorf("expected BackoffInitialDuration 500ms, got %v", cfg.BackoffInitialDuration())
	}
	if cfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected BackoffMultiplier 2.0, got %v", cfg.BackoffMultiplier())
	}
	if cfg.BackoffMaxDuration() != 10*time.Second {
		t.Errorf("expected BackoffMaxDuration 10s, got %v", cfg.BackoffMaxDuration())
	}
	if cfg.Concurrency() != 4 {
		t.Errorf("expected Concurrency 4, got %d", cfg.Concurrency())
	}
	if cfg.RandomSeed() == 0 {
		t.Error("expected RandomSeed to be initialized")
	}
	if cfg.DurableBackend() != config.BackendSQLite {
		t.Errorf("expected sqlite backend, got %s", cfg.DurableBackend())
	}
	if cfg.CacheDir() == "" {
		t.Error("expected a default cache dir")
	}
	if cfg.DefaultTTL() != time.Hour {
		t.Errorf("expected DefaultTTL 1h, got %v", cfg.DefaultTTL())
	}
	if cfg.BrandTTL() != 24*time.Hour {
		t.Errorf("expected BrandTTL 24h, got %v", cfg.BrandTTL())
	}
	if cfg.ListTTL() != time.Hour {
		t.Errorf("expected ListTTL 1h, got %v", cfg.ListTTL())
	}
	if cfg.GlobalTTL() != 24*time.Hour {
		t.Errorf("expected GlobalTTL 24h, got %v", cfg.GlobalTTL())
	}
	if cfg.LogLevel() != "info" || cfg.LogFormat() != "text" || cfg.LogDir() != "" {
		t.Errorf("unexpected logging defaults: %q %q %q", cfg.LogLevel(), cfg.LogFormat(), cfg.LogDir())
	}
}

func TestWithDefault_TokenFromEnv(t *testing.T) {
	t.Setenv(config.EnvToken, "secret")

	cfg, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token() != "secret" {
		t.Errorf("expected token from env, got %q", cfg.Token())
	}
}

func TestBuilderChain(t *testing.T) {
	listing := url.URL{Scheme: "http", Host: "localhost:8080", Path: "/brands"}
	docs := url.URL{Scheme: "http", Host: "localhost:8080", Path: "/raw"}

	cfg, err := config.WithDefault().
		WithListingURL(listing).
		WithDocumentBaseURL(docs).
		WithToken("tok").
		WithUserAgent("agent/1").
		WithTimeout(3 * time.Second).
		WithMaxAttempt(5).
		WithBackoffInitialDuration(10 * time.Millisecond).
		WithBackoffMultiplier(1.5).
		WithBackoffMaxDuration(time.Second).
		WithBaseDelay(20 * time.Millisecond).
		WithJitter(5 * time.Millisecond).
		WithRandomSeed(42).
		WithConcurrency(8).
		WithCacheDir("/tmp/seraphim").
		WithDurableBackend(config.BackendFile).
		WithDefaultTTL(2 * time.Minute).
		WithBrandTTL(3 * time.Minute).
		WithListTTL(4 * time.Minute).
		WithGlobalTTL(5 * time.Minute).
		WithLogLevel("debug").
		WithLogFormat("json").
		WithLogDir("/tmp/logs").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListingURL() != listing {
		t.Errorf("expected listing %v, got %v", listing, cfg.ListingURL())
	}
	if cfg.DocumentBaseURL() != docs {
		t.Errorf("expected document base %v, got %v", docs, cfg.DocumentBaseURL())
	}
	if cfg.Token() != "tok" || cfg.UserAgent() != "agent/1" {
		t.Errorf("unexpected token/user agent: %q %q", cfg.Token(), cfg.UserAgent())
	}
	if cfg.Timeout() != 3*time.Second || cfg.MaxAttempt() != 5 {
		t.Errorf("unexpected timeout/attempts: %v %d", cfg.Timeout(), cfg.MaxAttempt())
	}
	if cfg.BackoffInitialDuration() != 10*time.Millisecond || cfg.BackoffMultiplier() != 1.5 || cfg.BackoffMaxDuration() != time.Second {
		t.Errorf("unexpected backoff: %v %v %v", cfg.BackoffInitialDuration(), cfg.BackoffMultiplier(), cfg.BackoffMaxDuration())
	}
	if cfg.BaseDelay() != 20*time.Millisecond || cfg.Jitter() != 5*time.Millisecond || cfg.RandomSeed() != 42 {
		t.Errorf("unexpected pacing: %v %v %d", cfg.BaseDelay(), cfg.Jitter(), cfg.RandomSeed())
	}
	if cfg.Concurrency() != 8 || cfg.CacheDir() != "/tmp/seraphim" || cfg.DurableBackend() != config.BackendFile {
		t.Errorf("unexpected cache settings: %d %s %s", cfg.Concurrency(), cfg.CacheDir(), cfg.DurableBackend())
	}
	if cfg.DefaultTTL() != 2*time.Minute || cfg.BrandTTL() != 3*time.Minute || cfg.ListTTL() != 4*time.Minute || cfg.GlobalTTL() != 5*time.Minute {
		t.Errorf("unexpected ttls: %v %v %v %v", cfg.DefaultTTL(), cfg.BrandTTL(), cfg.ListTTL(), cfg.GlobalTTL())
	}
	if cfg.LogLevel() != "debug" || cfg.LogFormat() != "json" || cfg.LogDir() != "/tmp/logs" {
		t.Errorf("unexpected logging: %q %q %q", cfg.LogLevel(), cfg.LogFormat(), cfg.LogDir())
	}
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config) *config.Config
	}{
		{"non-http listing url", func(c *config.Config) *config.Config {
			return c.WithListingURL(url.URL{Scheme: "ftp", Host: "example.com"})
		}},
		{"listing url without host", func(c *config.Config) *config.Config {
			return c.WithListingURL(url.URL{Scheme: "https", Path: "/brands"})
		}},
		{"relative document base", func(c *config.Config) *config.Config {
			return c.WithDocumentBaseURL(url.URL{Path: "brands/"})
		}},
		{"zero attempts", func(c *config.Config) *config.Config { return c.WithMaxAttempt(0) }},
		{"zero concurrency", func(c *config.Config) *config.Config { return c.WithConcurrency(0) }},
		{"zero timeout", func(c *config.Config) *config.Config { return c.WithTimeout(0) }},
		{"shrinking backoff", func(c *config.Config) *config.Config { return c.WithBackoffMultiplier(0.5) }},
		{"unknown backend", func(c *config.Config) *config.Config { return c.WithDurableBackend("redis") }},
		{"missing cache dir", func(c *config.Config) *config.Config { return c.WithCacheDir("") }},
		{"zero default ttl", func(c *config.Config) *config.Config { return c.WithDefaultTTL(0) }},
		{"unknown log format", func(c *config.Config) *config.Config { return c.WithLogFormat("xml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mutate(config.WithDefault()).Build()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBuild_NoneBackendWithoutCacheDir(t *testing.T) {
	cfg, err := config.WithDefault().
		WithDurableBackend(config.BackendNone).
		WithCacheDir("").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DurableBackend() != config.BackendNone {
		t.Errorf("expected none backend, got %s", cfg.DurableBackend())
	}
}

func TestWithConfigFile_JSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{
		"listingUrl": "http://localhost:9000/brands",
		"documentBaseUrl": "http://localhost:9000/raw/",
		"token": "json-token",
		"timeout": "5s",
		"maxAttempt": 3,
		"backoffInitialDuration": "250ms",
		"concurrency": 2,
		"durableBackend": "FILE",
		"cacheDir": "/var/cache/seraphim",
		"defaultTtl": "30m",
		"brandTtl": "12h",
		"logLevel": "warn",
		"logFormat": "json"
	}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listing := cfg.ListingURL()
	if listing.String() != "http://localhost:9000/brands" {
		t.Errorf("unexpected listing url %s", listing.String())
	}
	docBase := cfg.DocumentBaseURL()
	if docBase.String() != "http://localhost:9000/raw/" {
		t.Errorf("unexpected document base url %s", docBase.String())
	}
	if cfg.Token() != "json-token" {
		t.Errorf("expected json-token, got %q", cfg.Token())
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Timeout())
	}
	if cfg.MaxAttempt() != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.MaxAttempt())
	}
	if cfg.BackoffInitialDuration() != 250*time.Millisecond {
		t.Errorf("expected 250ms backoff, got %v", cfg.BackoffInitialDuration())
	}
	if cfg.Concurrency() != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.Concurrency())
	}
	if cfg.DurableBackend() != config.BackendFile {
		t.Errorf("expected file backend, got %s", cfg.DurableBackend())
	}
	if cfg.CacheDir() != "/var/cache/seraphim" {
		t.Errorf("unexpected cache dir %s", cfg.CacheDir())
	}
	if cfg.DefaultTTL() != 30*time.Minute || cfg.BrandTTL() != 12*time.Hour {
		t.Errorf("unexpected ttls %v %v", cfg.DefaultTTL(), cfg.BrandTTL())
	}
	// Omitted fields keep defaults
	if cfg.ListTTL() != time.Hour {
		t.Errorf("expected default list ttl, got %v", cfg.ListTTL())
	}
	if cfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected default multiplier, got %v", cfg.BackoffMultiplier())
	}
	if cfg.LogLevel() != "warn" || cfg.LogFormat() != "json" {
		t.Errorf("unexpected logging %q %q", cfg.LogLevel(), cfg.LogFormat())
	}
}

func TestWithConfigFile_TOML(t *testing.T) {
	path := writeConfigFile(t, "seraphim.toml", `
listingUrl = "https://mirror.example.com/brands/"
documentBaseUrl = "https://mirror.example.com/raw/brands/"
userAgent = "mirror-bot/2"
baseDelay = "1s"
jitter = "200ms"
randomSeed = 7
durableBackend = "none"
globalTtl = "6h"
`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ListingURL().Host != "mirror.example.com" {
		t.Errorf("unexpected listing host %s", cfg.ListingURL().Host)
	}
	if cfg.UserAgent() != "mirror-bot/2" {
		t.Errorf("unexpected user agent %q", cfg.UserAgent())
	}
	if cfg.BaseDelay() != time.Second || cfg.Jitter() != 200*time.Millisecond {
		t.Errorf("unexpected pacing %v %v", cfg.BaseDelay(), cfg.Jitter())
	}
	if cfg.RandomSeed() != 7 {
		t.Errorf("expected seed 7, got %d", cfg.RandomSeed())
	}
	if cfg.DurableBackend() != config.BackendNone {
		t.Errorf("expected none backend, got %s", cfg.DurableBackend())
	}
	if cfg.GlobalTTL() != 6*time.Hour {
		t.Errorf("expected 6h global ttl, got %v", cfg.GlobalTTL())
	}
}

func TestWithConfigFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "absent.json"))
		if !errors.Is(err, config.ErrFileDoesNotExist) {
			t.Errorf("expected ErrFileDoesNotExist, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeConfigFile(t, "bad.json", `{"maxAttempt": `)
		_, err := config.WithConfigFile(path)
		if !errors.Is(err, config.ErrConfigParsingFail) {
			t.Errorf("expected ErrConfigParsingFail, got %v", err)
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeConfigFile(t, "bad.toml", `maxAttempt = = 3`)
		_, err := config.WithConfigFile(path)
		if !errors.Is(err, config.ErrConfigParsingFail) {
			t.Errorf("expected ErrConfigParsingFail, got %v", err)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeConfigFile(t, "bad-duration.json", `{"timeout": "soon"}`)
		_, err := config.WithConfigFile(path)
		if !errors.Is(err, config.ErrConfigParsingFail) {
			t.Errorf("expected ErrConfigParsingFail, got %v", err)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfigFile(t, "invalid.json", `{"durableBackend": "redis"}`)
		_, err := config.WithConfigFile(path)
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
