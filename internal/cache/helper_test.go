package cache

import (
	"time"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/stretchr/testify/mock"
)

type mockSink struct {
	mock.Mock
}

func newMockSink() *mockSink {
	s := &mockSink{}
	s.On("RecordCacheEvent", mock.Anything, mock.Anything).Maybe()
	s.On("RecordFetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
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

// mockStore is a Store whose behaviour is scripted per test.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(key string) (Entry, bool, error) {
	args := m.Called(key)
	return args.Get(0).(Entry), args.Bool(1), args.Error(2)
}

func (m *mockStore) Put(key string, entry Entry) error {
	return m.Called(key, entry).Error(0)
}

func (m *mockStore) Delete(key string) error {
	return m.Called(key).Error(0)
}

func (m *mockStore) Clear() error {
	return m.Called().Error(0)
}

func (m *mockStore) Keys(prefix string) ([]string, error) {
	args := m.Called(prefix)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// newQuotaExceededStore fails every operation the way a full disk would.
func newQuotaExceededStore() *mockStore {
	quota := &StorageError{Message: "disk quota", Cause: ErrCauseQuotaExceeded}
	s := &mockStore{}
	s.On("Get", mock.Anything).Return(Entry{}, false, quota)
	s.On("Put", mock.Anything, mock.Anything).Return(quota)
	s.On("Delete", mock.Anything).Return(quota)
	s.On("Clear").Return(quota)
	s.On("Keys", mock.Anything).Return(nil, quota)
	return s
}

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
