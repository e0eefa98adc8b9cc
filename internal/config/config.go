package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rohmanhakim/seraphim/internal/build"
)

// EnvToken is read by WithDefault to seed the upstream auth token.
const EnvToken = "SERAPHIM_TOKEN"

const (
	DefaultListingURL      = "https://api.github.com/repos/KHwang9883/MobileModels/contents/brands"
	DefaultDocumentBaseURL = "https://raw.githubusercontent.com/KHwang9883/MobileModels/master/brands/"
)

// DurableBackend selects the persistent cache tier.
type DurableBackend string

const (
	BackendSQLite DurableBackend = "sqlite"
	BackendFile   DurableBackend = "file"
	BackendNone   DurableBackend = "none"
)

type Config struct {
	//===============
	// Upstream
	//===============
	// Endpoint returning the brands directory listing (JSON or HTML index)
	listingURL url.URL
	// Documents are fetched from documentBaseURL joined with the file name
	documentBaseURL url.URL
	// Sent as a bearer token when non-empty
	token string
	// User agent that will be used in the request header. In raw string
	userAgent string
	// Maximum time of a single fetch request
	timeout time.Duration

	//===============
	// Politeness
	//===============
	// maximum attempt during retry; 1 disables retrying
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration
	// Minimum waiting time between two requests to the same host
	baseDelay time.Duration
	// Randomized variation added on top of the base delay
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// Number of brand documents fetched in parallel by a batch load
	concurrency int

	//===============
	// Cache
	//===============
	cacheDir       string
	durableBackend DurableBackend
	// Applied when a write does not carry its own ttl
	defaultTTL time.Duration
	brandTTL   time.Duration
	listTTL    time.Duration
	globalTTL  time.Duration

	//===============
	// Logging
	//===============
	logLevel  string
	logFormat string
	// Empty means stderr
	logDir string
}

// duration accepts "90s"-style strings in both JSON and TOML files.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

type configDTO struct {
	ListingURL             string   `json:"listingUrl,omitempty" toml:"listingUrl"`
	DocumentBaseURL        string   `json:"documentBaseUrl,omitempty" toml:"documentBaseUrl"`
	Token                  string   `json:"token,omitempty" toml:"token"`
	UserAgent              string   `json:"userAgent,omitempty" toml:"userAgent"`
	Timeout                duration `json:"timeout,omitempty" toml:"timeout"`
	MaxAttempt             int      `json:"maxAttempt,omitempty" toml:"maxAttempt"`
	BackoffInitialDuration duration `json:"backoffInitialDuration,omitempty" toml:"backoffInitialDuration"`
	BackoffMultiplier      float64  `json:"backoffMultiplier,omitempty" toml:"backoffMultiplier"`
	BackoffMaxDuration     duration `json:"backoffMaxDuration,omitempty" toml:"backoffMaxDuration"`
	BaseDelay              duration `json:"baseDelay,omitempty" toml:"baseDelay"`
	Jitter                 duration `json:"jitter,omitempty" toml:"jitter"`
	RandomSeed             int64    `json:"randomSeed,omitempty" toml:"randomSeed"`
	Concurrency            int      `json:"concurrency,omitempty" toml:"concurrency"`

	CacheDir       string   `json:"cacheDir,omitempty" toml:"cacheDir"`
	DurableBackend string   `json:"durableBackend,omitempty" toml:"durableBackend"`
	DefaultTTL     duration `json:"defaultTtl,omitempty" toml:"defaultTtl"`
	BrandTTL       duration `json:"brandTtl,omitempty" toml:"brandTtl"`
	ListTTL        duration `json:"listTtl,omitempty" toml:"listTtl"`
	GlobalTTL      duration `json:"globalTtl,omitempty" toml:"globalTtl"`

	LogLevel  string `json:"logLevel,omitempty" toml:"logLevel"`
	LogFormat string `json:"logFormat,omitempty" toml:"logFormat"`
	LogDir    string `json:"logDir,omitempty" toml:"logDir"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	if dto.ListingURL != "" {
		u, err := url.Parse(dto.ListingURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: listingUrl: %s", ErrInvalidConfig, err.Error())
		}
		cfg.WithListingURL(*u)
	}
	if dto.DocumentBaseURL != "" {
		u, err := url.Parse(dto.DocumentBaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: documentBaseUrl: %s", ErrInvalidConfig, err.Error())
		}
		cfg.WithDocumentBaseURL(*u)
	}
	if dto.Token != "" {
		cfg.token = dto.Token
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}

	// Only override if non-zero value is provided
	if dto.Timeout != 0 {
		cfg.timeout = time.Duration(dto.Timeout)
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = time.Duration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = time.Duration(dto.BackoffMaxDuration)
	}
	if dto.BaseDelay != 0 {
		cfg.baseDelay = time.Duration(dto.BaseDelay)
	}
	if dto.Jitter != 0 {
		cfg.jitter = time.Duration(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}

	if dto.CacheDir != "" {
		cfg.cacheDir = dto.CacheDir
	}
	if dto.DurableBackend != "" {
		cfg.durableBackend = DurableBackend(strings.ToLower(dto.DurableBackend))
	}
	if dto.DefaultTTL != 0 {
		cfg.defaultTTL = time.Duration(dto.DefaultTTL)
	}
	if dto.BrandTTL != 0 {
		cfg.brandTTL = time.Duration(dto.BrandTTL)
	}
	if dto.ListTTL != 0 {
		cfg.listTTL = time.Duration(dto.ListTTL)
	}
	if dto.GlobalTTL != 0 {
		cfg.globalTTL = time.Duration(dto.GlobalTTL)
	}

	if dto.LogLevel != "" {
		cfg.logLevel = dto.LogLevel
	}
	if dto.LogFormat != "" {
		cfg.logFormat = dto.LogFormat
	}
	if dto.LogDir != "" {
		cfg.logDir = dto.LogDir
	}

	return cfg.Build()
}

// WithConfigFile loads a config file. Files ending in .toml are decoded as
// TOML, anything else as JSON. Fields left out keep their default values.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err = toml.Decode(string(configContent), &cfgDTO)
	} else {
		err = json.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config pointing at the public brands repository.
func WithDefault() *Config {
	listingURL, _ := url.Parse(DefaultListingURL)
	documentBaseURL, _ := url.Parse(DefaultDocumentBaseURL)

	return &Config{
		listingURL:             *listingURL,
		documentBaseURL:        *documentBaseURL,
		token:                  os.Getenv(EnvToken),
		userAgent:              build.UserAgent(),
		timeout:                15 * time.Second,
		maxAttempt:             1,
		backoffInitialDuration: 500 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		baseDelay:              100 * time.Millisecond,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		concurrency:            4,
		cacheDir:               defaultCacheDir(),
		durableBackend:         BackendSQLite,
		defaultTTL:             time.Hour,
		brandTTL:               24 * time.Hour,
		listTTL:                time.Hour,
		globalTTL:              24 * time.Hour,
		logLevel:               "info",
		logFormat:              "text",
		logDir:                 "",
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		return ".seraphim-cache"
	}
	return filepath.Join(dir, "seraphim")
}

func (c *Config) WithListingURL(u url.URL) *Config {
	c.listingURL = u
	return c
}

func (c *Config) WithDocumentBaseURL(u url.URL) *Config {
	c.documentBaseURL = u
	return c
}

func (c *Config) WithToken(token string) *Config {
	c.token = token
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithCacheDir(dir string) *Config {
	c.cacheDir = dir
	return c
}

func (c *Config) WithDurableBackend(backend DurableBackend) *Config {
	c.durableBackend = backend
	return c
}

func (c *Config) WithDefaultTTL(ttl time.Duration) *Config {
	c.defaultTTL = ttl
	return c
}

func (c *Config) WithBrandTTL(ttl time.Duration) *Config {
	c.brandTTL = ttl
	return c
}

func (c *Config) WithListTTL(ttl time.Duration) *Config {
	c.listTTL = ttl
	return c
}

func (c *Config) WithGlobalTTL(ttl time.Duration) *Config {
	c.globalTTL = ttl
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = format
	return c
}

func (c *Config) WithLogDir(dir string) *Config {
	c.logDir = dir
	return c
}

func (c *Config) Build() (Config, error) {
	if err := validateEndpoint("listingUrl", c.listingURL); err != nil {
		return Config{}, err
	}
	if err := validateEndpoint("documentBaseUrl", c.documentBaseURL); err != nil {
		return Config{}, err
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1, got %d", ErrInvalidConfig, c.maxAttempt)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.concurrency)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.backoffMultiplier < 1 {
		return Config{}, fmt.Errorf("%w: backoffMultiplier must be >= 1, got %v", ErrInvalidConfig, c.backoffMultiplier)
	}
	switch c.durableBackend {
	case BackendSQLite, BackendFile, BackendNone:
	default:
		return Config{}, fmt.Errorf("%w: unknown durableBackend %q", ErrInvalidConfig, c.durableBackend)
	}
	if c.durableBackend != BackendNone && c.cacheDir == "" {
		return Config{}, fmt.Errorf("%w: cacheDir is required for the %s backend", ErrInvalidConfig, c.durableBackend)
	}
	if c.defaultTTL <= 0 {
		return Config{}, fmt.Errorf("%w: defaultTtl must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.logFormat) {
	case "json", "text":
	default:
		return Config{}, fmt.Errorf("%w: logFormat must be json or text, got %q", ErrInvalidConfig, c.logFormat)
	}

	return *c, nil
}

func validateEndpoint(field string, u url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", ErrInvalidConfig, field, u.String())
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s has no host", ErrInvalidConfig, field)
	}
	return nil
}

func (c Config) ListingURL() url.URL {
	return c.listingURL
}

func (c Config) DocumentBaseURL() url.URL {
	return c.documentBaseURL
}

func (c Config) Token() string {
	return c.token
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) CacheDir() string {
	return c.cacheDir
}

func (c Config) DurableBackend() DurableBackend {
	return c.durableBackend
}

func (c Config) DefaultTTL() time.Duration {
	return c.defaultTTL
}

func (c Config) BrandTTL() time.Duration {
	return c.brandTTL
}

func (c Config) ListTTL() time.Duration {
	return c.listTTL
}

func (c Config) GlobalTTL() time.Duration {
	return c.globalTTL
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFormat() string {
	return c.logFormat
}

func (c Config) LogDir() string {
	return c.logDir
}
