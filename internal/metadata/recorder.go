package metadata

import (
	"context"
	"log/slog"
	"time"
)

/*
Metadata Collected
- Fetch timings and HTTP status codes
- Cache lookups per tier
- Durable tier failures
- Batch load summaries

Metadata is write-only.
No component may read metadata to influence catalog or cache decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		attempts int,
	)

	RecordCacheEvent(key string, outcome CacheOutcome)

	RecordLoadStats(
		totalBrands int,
		loadedBrands int,
		failedBrands int,
		totalModels int,
		duration time.Duration,
	)
}

// Compile-time interface check
var _ MetadataSink = (*Recorder)(nil)

/*
Recorder turns metadata events into structured log records.
It must not:
- perform I/O decisions
- affect control flow
*/
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	args := []any{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("details", details),
	}
	args = append(args, toSlog(attrs)...)
	r.logger.Warn("error recorded", args...)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	attempts int,
) {
	r.logger.Debug("fetch",
		slog.String(string(AttrURL), fetchUrl),
		slog.Int(string(AttrHTTPStatus), httpStatus),
		slog.Duration("duration", duration),
		slog.String("content_type", contentType),
		slog.Int("attempts", attempts),
	)
}

func (r *Recorder) RecordCacheEvent(key string, outcome CacheOutcome) {
	if !r.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	r.logger.Debug("cache",
		slog.String(string(AttrKey), key),
		slog.String("outcome", string(outcome)),
	)
}

/*
RecordLoadStats records a terminal, derived summary of a completed batch load.

Contract:
  - MUST be called once per LoadAll execution, after it finished.
  - Recorded stats MUST NOT influence control flow.
*/
func (r *Recorder) RecordLoadStats(
	totalBrands int,
	loadedBrands int,
	failedBrands int,
	totalModels int,
	duration time.Duration,
) {
	stats := loadStats{
		totalBrands:  totalBrands,
		loadedBrands: loadedBrands,
		failedBrands: failedBrands,
		totalModels:  totalModels,
		duration:     duration,
	}
	r.logger.Info("batch load finished",
		slog.Int("total_brands", stats.totalBrands),
		slog.Int("loaded_brands", stats.loadedBrands),
		slog.Int("failed_brands", stats.failedBrands),
		slog.Int("total_models", stats.totalModels),
		slog.Int64("duration_ms", stats.duration.Milliseconds()),
	)
}

func toSlog(attrs []Attribute) []any {
	out := make([]any, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, slog.String(string(a.Key), a.Value))
	}
	return out
}

// NopSink discards everything. Useful where observability is not wired.
type NopSink struct{}

func (NopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}
func (NopSink) RecordFetch(string, int, time.Duration, string, int)                    {}
func (NopSink) RecordCacheEvent(string, CacheOutcome)                                   {}
func (NopSink) RecordLoadStats(int, int, int, int, time.Duration)                       {}
