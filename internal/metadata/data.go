package metadata

import (
	"time"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

  - Transport errors, timeouts, 5xx and rate limiting from the upstream repository.

# CauseNotFound

  - The requested listing entry or document does not exist upstream.

# CauseAccessDenied

  - The upstream rejected the request (missing or invalid credentials).

# CauseContentInvalid

  - Content was fetched but could not be decoded (listing format, HTML conversion).

# CauseStorageFailure

  - The durable cache tier failed (quota exceeded, disk full, storage disabled).
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseNotFound
	CauseAccessDenied
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseNotFound:
		return "not_found"
	case CauseAccessDenied:
		return "access_denied"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// CacheOutcome labels what a cache lookup resolved to.
type CacheOutcome string

const (
	CacheHitMemory  CacheOutcome = "hit_memory"
	CacheHitDurable CacheOutcome = "hit_durable"
	CacheMiss       CacheOutcome = "miss"
	CacheExpired    CacheOutcome = "expired"
	CacheStale      CacheOutcome = "stale"
	CacheWrite      CacheOutcome = "write"
	CacheEvict      CacheOutcome = "evict"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrKey        AttributeKey = "key"
	AttrSlug       AttributeKey = "slug"
	AttrDocument   AttributeKey = "document"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrTier       AttributeKey = "tier"
	AttrMessage    AttributeKey = "message"
)

// loadStats is a terminal summary of one batch load.
type loadStats struct {
	totalBrands  int
	loadedBrands int
	failedBrands int
	totalModels  int
	duration     time.Duration
}
