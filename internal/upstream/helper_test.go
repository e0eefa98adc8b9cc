package upstream

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/pkg/limiter"
	"github.com/rohmanhakim/seraphim/pkg/retry"
	"github.com/rohmanhakim/seraphim/pkg/timeutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

type testClient struct {
	client  *HTTPClient
	limiter *limiter.ConcurrentRateLimiter
	sink    *mockSink
}

func newTestClient(t *testing.T, srv *httptest.Server, token string, maxAttempts int) testClient {
	t.Helper()

	listing, err := url.Parse(srv.URL + "/contents")
	require.NoError(t, err)
	docs, err := url.Parse(srv.URL + "/raw/main")
	require.NoError(t, err)

	fast := timeutil.NewBackoffParam(time.Millisecond, 1.0, time.Millisecond)
	rl := limiter.NewConcurrentRateLimiter()
	rl.SetBackoffParam(fast)

	sink := newMockSink()
	cfg := NewClientConfig(
		*listing,
		*docs,
		token,
		"seraphim-test/1.0",
		5*time.Second,
		retry.NewRetryParam(0, 1, maxAttempts, fast),
	)
	return testClient{
		client:  NewHTTPClient(cfg, rl, sink),
		limiter: rl,
		sink:    sink,
	}
}
