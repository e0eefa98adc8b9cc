package cache

import (
	"encoding/json"
	"time"
)

// Typed is a view of a Tiered cache for one payload type. Each value is
// stored with typeTag and decoded fresh on every read, so callers always get
// their own copy. A different tag or an undecodable payload is a miss.
type Typed[T any] struct {
	tiered  *Tiered
	typeTag string
}

func NewTyped[T any](tiered *Tiered, typeTag string) Typed[T] {
	return Typed[T]{tiered: tiered, typeTag: typeTag}
}

func (c Typed[T]) Set(key string, value T, ttl time.Duration) error {
	data, err := c.encode(key, value)
	if err != nil {
		return err
	}
	return c.tiered.Set(key, data, c.typeTag, ttl)
}

func (c Typed[T]) ForceSet(key string, value T, ttl time.Duration) error {
	data, err := c.encode(key, value)
	if err != nil {
		return err
	}
	return c.tiered.ForceSet(key, data, c.typeTag, ttl)
}

func (c Typed[T]) Get(key string) (T, bool) {
	entry, ok := c.tiered.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	return c.decode(entry)
}

func (c Typed[T]) GetStale(key string) (T, bool) {
	entry, ok := c.tiered.GetStale(key)
	if !ok {
		var zero T
		return zero, false
	}
	return c.decode(entry)
}

func (c Typed[T]) Delete(key string) error {
	return c.tiered.Delete(key)
}

func (c Typed[T]) Info(key string) Info {
	return c.tiered.Info(key)
}

func (c Typed[T]) encode(key string, value T) (json.RawMessage, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseEncodeFailure,
			Key:     key,
		}
	}
	return data, nil
}

func (c Typed[T]) decode(entry Entry) (T, bool) {
	var v T
	if entry.Type != c.typeTag {
		return v, false
	}
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}
