package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rohmanhakim/seraphim/internal/cache"
	"github.com/rohmanhakim/seraphim/internal/catalog"
	"github.com/rohmanhakim/seraphim/internal/config"
	"github.com/rohmanhakim/seraphim/internal/logging"
	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/internal/upstream"
	"github.com/rohmanhakim/seraphim/pkg/limiter"
	"github.com/rohmanhakim/seraphim/pkg/retry"
	"github.com/rohmanhakim/seraphim/pkg/timeutil"
)

const (
	sqliteFileName = "cache.db"
	fileStoreDir   = "entries"
)

// app is everything one command invocation needs, built from a Config.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	sink     metadata.MetadataSink
	registry *prometheus.Registry
	tiered   *cache.Tiered
	service  *catalog.Service
	closers  []io.Closer
}

type appOptions struct {
	// strict surfaces cache failures instead of recording and dropping them.
	strict bool
	quiet  bool
}

func newApp(cfg config.Config, opts appOptions) (*app, error) {
	logger, logCloser := logging.New(logging.Config{
		LogDir: cfg.LogDir(),
		Level:  cfg.LogLevel(),
		Format: cfg.LogFormat(),
		Quiet:  opts.quiet,
	})
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		closers:  []io.Closer{logCloser},
	}
	a.sink = metadata.NewRecorder(logging.ForComponent(logger, logging.CompCache))

	durable, err := a.openDurable()
	if err != nil {
		if opts.strict {
			a.close()
			return nil, err
		}
		logger.Warn("durable cache unavailable, continuing in memory only",
			slog.String("backend", string(cfg.DurableBackend())),
			slog.Any("error", err))
	}

	var policy cache.FailurePolicy = cache.NewBestEffort(a.sink)
	if opts.strict {
		policy = cache.NewStrict(a.sink)
	}

	a.tiered = cache.NewTiered(cache.Options{
		Durable:    durable,
		Policy:     policy,
		DefaultTTL: cfg.DefaultTTL(),
		Metrics:    cache.NewMetrics(a.registry),
		Sink:       a.sink,
	})

	upstreamSink := metadata.NewRecorder(logging.ForComponent(logger, logging.CompUpstream))
	client := upstream.NewHTTPClient(clientConfig(cfg), newRateLimiter(cfg), upstreamSink)

	a.service = catalog.NewService(
		client,
		a.tiered,
		catalog.TTLs{Brand: cfg.BrandTTL(), List: cfg.ListTTL(), Global: cfg.GlobalTTL()},
		metadata.NewRecorder(logging.ForComponent(logger, logging.CompCatalog)),
		logging.ForComponent(logger, logging.CompCatalog),
	)
	return a, nil
}

// openDurable returns a nil store for the none backend.
func (a *app) openDurable() (cache.Store, error) {
	switch a.cfg.DurableBackend() {
	case config.BackendSQLite:
		store, err := cache.OpenSQLiteStore(filepath.Join(a.cfg.CacheDir(), sqliteFileName))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	case config.BackendFile:
		store, err := cache.NewFileStore(filepath.Join(a.cfg.CacheDir(), fileStoreDir))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown durable backend %q", config.ErrInvalidConfig, a.cfg.DurableBackend())
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.logger != nil {
			a.logger.Warn("close failed", slog.Any("error", err))
		}
	}
	a.closers = nil
}

func clientConfig(cfg config.Config) upstream.ClientConfig {
	retryParam := retry.NewRetryParam(
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		backoffParam(cfg),
	)
	return upstream.NewClientConfig(
		cfg.ListingURL(),
		cfg.DocumentBaseURL(),
		cfg.Token(),
		cfg.UserAgent(),
		cfg.Timeout(),
		retryParam,
	)
}

func newRateLimiter(cfg config.Config) *limiter.ConcurrentRateLimiter {
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBaseDelay(cfg.BaseDelay())
	rl.SetJitter(cfg.Jitter())
	rl.SetRandomSeed(cfg.RandomSeed())
	rl.SetBackoffParam(backoffParam(cfg))
	return rl
}

func backoffParam(cfg config.Config) timeutil.BackoffParam {
	return timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)
}
