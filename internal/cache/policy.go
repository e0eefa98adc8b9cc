package cache

import (
	"errors"
	"time"

	"github.com/rohmanhakim/seraphim/internal/metadata"
)

// FailurePolicy decides what a durable tier failure means to the caller.
// The error is always recorded; the policy only chooses whether it escapes.
type FailurePolicy interface {
	Handle(action string, key string, err error) error
}

// BestEffort records durable failures and swallows them, leaving the fast
// tier authoritative for the process lifetime.
type BestEffort struct {
	sink metadata.MetadataSink
}

func NewBestEffort(sink metadata.MetadataSink) BestEffort {
	return BestEffort{sink: sink}
}

func (p BestEffort) Handle(action string, key string, err error) error {
	record(p.sink, action, key, err)
	return nil
}

// Strict records durable failures and returns them. Used by maintenance
// commands that need to know the durable tier really changed.
type Strict struct {
	sink metadata.MetadataSink
}

func NewStrict(sink metadata.MetadataSink) Strict {
	return Strict{sink: sink}
}

func (p Strict) Handle(action string, key string, err error) error {
	record(p.sink, action, key, err)
	return err
}

func record(sink metadata.MetadataSink, action string, key string, err error) {
	if sink == nil || err == nil {
		return
	}
	cause := metadata.CauseStorageFailure
	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		cause = mapStorageErrorToMetadataCause(storageErr)
	}
	sink.RecordError(
		time.Now(),
		"cache",
		action,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrKey, key),
			metadata.NewAttr(metadata.AttrTier, tierDurable),
		},
	)
}
