package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/seraphim/internal/cache"
	"github.com/rohmanhakim/seraphim/internal/logging"
	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/internal/upstream"
	"github.com/rohmanhakim/seraphim/pkg/failure"
	"github.com/rohmanhakim/seraphim/pkg/timeutil"
	"github.com/stretchr/testify/mock"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) FetchDirectoryListing(ctx context.Context) ([]upstream.RawEntry, failure.ClassifiedError) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]upstream.RawEntry)
	if err, ok := args.Get(1).(failure.ClassifiedError); ok {
		return entries, err
	}
	return entries, nil
}

func (m *mockClient) FetchDocument(ctx context.Context, name string) (string, failure.ClassifiedError) {
	args := m.Called(ctx, name)
	if err, ok := args.Get(1).(failure.ClassifiedError); ok {
		return args.String(0), err
	}
	return args.String(0), nil
}

type mockSink struct {
	mock.Mock
}

func newMockSink() *mockSink {
	s := &mockSink{}
	s.On("RecordError", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	s.On("RecordFetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	s.On("RecordCacheEvent", mock.Anything, mock.Anything).Maybe()
	s.On("RecordLoadStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	return s
}

func (s *mockSink) RecordError(observedAt time.Time, packageName string, action string, cause metadata.ErrorCause, details string, attrs []metadata.Attribute) {
	s.Called(observedAt, packageName, action, cause, details, attrs)
}

func (s *mockSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, attempts int) {
	s.Called(fetchUrl, httpStatus, duration, contentType, attempts)
}

func (s *mockSink) RecordCacheEvent(key string, outcome metadata.CacheOutcome) {
	s.Called(key, outcome)
}

func (s *mockSink) RecordLoadStats(totalBrands int, loadedBrands int, failedBrands int, totalModels int, duration time.Duration) {
	s.Called(totalBrands, loadedBrands, failedBrands, totalModels, duration)
}

var listing = []upstream.RawEntry{
	{Name: "phone_global_en.md", Type: "file"},
	{Name: "acme.md", Type: "file"},
	{Name: "images", Type: "dir"},
	{Name: "README.txt", Type: "file"},
}

const phoneDocument = "## Series A\n" +
	"**[COD1] Phone One:**\n" +
	"`MN-100`: Base Edition\n" +
	"`MN-101`: Pro Edition\n" +
	"**Phone Two:**\n" +
	"`MN-200`: Standard\n"

const acmeDocument = "**Rocket:**\n`R-1`: Boom\n"

type fixture struct {
	service *Service
	client  *mockClient
	sink    *mockSink
	tiered  *cache.Tiered
	clock   *timeutil.ManualClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := timeutil.NewManualClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	sink := newMockSink()
	tiered := cache.NewTiered(cache.Options{
		Durable:    cache.NewMemoryStore(),
		Clock:      clock,
		DefaultTTL: time.Hour,
		Sink:       sink,
	})
	client := &mockClient{}
	ttls := TTLs{Brand: 24 * time.Hour, List: time.Hour, Global: 24 * time.Hour}
	return fixture{
		service: NewService(client, tiered, ttls, sink, logging.Discard()),
		client:  client,
		sink:    sink,
		tiered:  tiered,
		clock:   clock,
	}
}
