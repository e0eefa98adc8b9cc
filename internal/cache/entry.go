package cache

import (
	"encoding/json"
	"time"
)

// Namespace prefixes every key written to a durable tier.
const Namespace = "seraphim_cache_"

// Entry is the self-describing stored record. Timestamps are Unix millis so
// the durable form can be inspected without knowing Go types.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt int64           `json:"expiresAt"`
	Type      string          `json:"type,omitempty"`
}

// ExpiredAt reports whether the entry is past its expiry at now.
func (e Entry) ExpiredAt(now time.Time) bool {
	return now.UnixMilli() > e.ExpiresAt
}

func (e Entry) clone() Entry {
	c := e
	if e.Data != nil {
		c.Data = append(json.RawMessage(nil), e.Data...)
	}
	return c
}

// Info describes an entry without touching it.
type Info struct {
	Exists    bool
	Age       time.Duration
	ExpiresIn time.Duration
	Expired   bool
}
