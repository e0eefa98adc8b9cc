package metadata

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferedRecorder(level slog.Level) (*Recorder, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
	return NewRecorder(logger), buf
}

func TestRecorder_RecordError(t *testing.T) {
	rec, buf := newBufferedRecorder(slog.LevelDebug)

	rec.RecordError(
		time.Now(),
		"cache",
		"Tiered.Set",
		CauseStorageFailure,
		"quota exceeded",
		[]Attribute{NewAttr(AttrKey, "brand_apple")},
	)

	out := buf.String()
	assert.Contains(t, out, `"cause":"storage_failure"`)
	assert.Contains(t, out, `"action":"Tiered.Set"`)
	assert.Contains(t, out, `"key":"brand_apple"`)
}

func TestRecorder_RecordCacheEvent_SkippedAboveDebug(t *testing.T) {
	rec, buf := newBufferedRecorder(slog.LevelInfo)

	rec.RecordCacheEvent("brand_apple", CacheHitMemory)

	assert.Empty(t, buf.String())
}

func TestRecorder_RecordLoadStats(t *testing.T) {
	rec, buf := newBufferedRecorder(slog.LevelInfo)

	rec.RecordLoadStats(10, 9, 1, 240, 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, `"failed_brands":1`)
	assert.Contains(t, out, `"duration_ms":1500`)
}

func TestErrorCause_String(t *testing.T) {
	assert.Equal(t, "not_found", CauseNotFound.String())
	assert.Equal(t, "unknown", ErrorCause(99).String())
}
