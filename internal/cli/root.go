package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/rohmanhakim/seraphim/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	listingURL      string
	documentBaseURL string
	token           string
	userAgent       string
	timeout         time.Duration
	maxAttempt      int
	baseDelay       time.Duration
	jitter          time.Duration
	randomSeed      int64
	concurrency     int
	cacheDir        string
	durableBackend  string
	defaultTTL      time.Duration
	logLevel        string
	logFormat       string
	logDir          string
	quiet           bool
	forceRefresh    bool
	jsonOutput      bool
	printMetrics    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seraphim",
	Short: "Browse a community-maintained catalog of mobile device models.",
	Long: `seraphim reads the brand documents of a public device model repository,
parses them into structured model records and keeps them in a two-tier cache
so that browsing and searching stay fast and work offline once loaded.

Run "seraphim load" once to fetch every brand, then use "search" and
"models" to explore.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// ExecuteArgs runs the command tree with explicit arguments and writers.
func ExecuteArgs(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config-file", "", "config file path, JSON or TOML (e.g., ~/.config/seraphim.toml)")
	flags.StringVar(&listingURL, "listing-url", "", "endpoint returning the brands directory listing")
	flags.StringVar(&documentBaseURL, "document-base-url", "", "base URL brand documents are fetched from")
	flags.StringVar(&token, "token", "", "bearer token for the upstream API (defaults to $"+config.EnvToken+")")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	flags.DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	flags.IntVar(&maxAttempt, "max-attempt", 0, "attempts per upstream request (1 disables retrying)")
	flags.DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	flags.DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	flags.Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	flags.IntVar(&concurrency, "concurrency", 0, "brand documents fetched in parallel by load")
	flags.StringVar(&cacheDir, "cache-dir", "", "directory holding the durable cache")
	flags.StringVar(&durableBackend, "durable-backend", "", "durable cache tier: sqlite, file or none")
	flags.DurationVar(&defaultTTL, "ttl", 0, "default lifetime of cache entries")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&logDir, "log-dir", "", "write rotated logs to this directory instead of stderr")
	flags.BoolVarP(&quiet, "quiet", "q", false, "discard all log output")
	flags.BoolVar(&forceRefresh, "refresh", false, "ignore cached data and fetch from upstream")
	flags.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	flags.BoolVar(&printMetrics, "print-metrics", false, "print cache counters after the command finishes")

	rootCmd.AddCommand(
		brandsCmd,
		modelsCmd,
		searchCmd,
		loadCmd,
		renderCmd,
		cacheCmd,
		versionCmd,
	)
}

// InitConfigWithError reads in config file or flag overrides, returning any errors.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Start with default config and apply overrides using method chaining
	configBuilder := config.WithDefault()

	if listingURL != "" {
		u, err := parseEndpoint("listing-url", listingURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithListingURL(u)
	}

	if documentBaseURL != "" {
		u, err := parseEndpoint("document-base-url", documentBaseURL)
		if err != nil {
			return config.Config{}, err
		}
		configBuilder = configBuilder.WithDocumentBaseURL(u)
	}

	if token != "" {
		configBuilder = configBuilder.WithToken(token)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}

	if cacheDir != "" {
		configBuilder = configBuilder.WithCacheDir(cacheDir)
	}

	if durableBackend != "" {
		configBuilder = configBuilder.WithDurableBackend(config.DurableBackend(durableBackend))
	}

	if defaultTTL > 0 {
		configBuilder = configBuilder.WithDefaultTTL(defaultTTL)
	}

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	if logFormat != "" {
		configBuilder = configBuilder.WithLogFormat(logFormat)
	}

	if logDir != "" {
		configBuilder = configBuilder.WithLogDir(logDir)
	}

	return configBuilder.Build()
}

func parseEndpoint(flag, raw string) (url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: error parsing --%s %s: %s", config.ErrInvalidConfig, flag, raw, err.Error())
	}
	return *u, nil
}

func ResetFlags() {
	cfgFile = ""
	listingURL = ""
	documentBaseURL = ""
	token = ""
	userAgent = ""
	timeout = 0
	maxAttempt = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	concurrency = 0
	cacheDir = ""
	durableBackend = ""
	defaultTTL = 0
	logLevel = ""
	logFormat = ""
	logDir = ""
	quiet = false
	forceRefresh = false
	jsonOutput = false
	printMetrics = false
	modelsFilter = ""
	renderFormat = ""
	renderOutput = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetListingURLForTest(u string) {
	listingURL = u
}

func SetDocumentBaseURLForTest(u string) {
	documentBaseURL = u
}

func SetTokenForTest(t string) {
	token = t
}

func SetMaxAttemptForTest(attempts int) {
	maxAttempt = attempts
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetCacheDirForTest(dir string) {
	cacheDir = dir
}

func SetDurableBackendForTest(backend string) {
	durableBackend = backend
}

func SetDefaultTTLForTest(ttl time.Duration) {
	defaultTTL = ttl
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}
