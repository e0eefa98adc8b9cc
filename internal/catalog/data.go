package catalog

import (
	"time"

	"github.com/rohmanhakim/seraphim/internal/namecodec"
)

// TTLs are the per-key lifetimes. Zero falls back to the cache default.
type TTLs struct {
	Brand  time.Duration
	List   time.Duration
	Global time.Duration
}

type FetchOptions struct {
	// ForceRefresh skips the cache read and always goes upstream.
	ForceRefresh bool
}

type LoadOptions struct {
	Concurrency  int
	ForceRefresh bool
}

// BrandSummary is the directory-level view of a brand. Counts stay zero
// until the brand has been loaded once.
type BrandSummary struct {
	Brand        namecodec.BrandIdentity `json:"brand"`
	Document     string                  `json:"document"`
	Loaded       bool                    `json:"loaded"`
	ModelCount   int                     `json:"modelCount"`
	VariantCount int                     `json:"variantCount"`
	LoadedAt     int64                   `json:"loadedAt,omitempty"`
}

type BrandFailure struct {
	Slug string
	Err  error
}

// LoadReport summarises one LoadAll run.
type LoadReport struct {
	Total       int
	Loaded      int
	Failed      int
	TotalModels int
	Failures    []BrandFailure
	Duration    time.Duration
}
