package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rohmanhakim/seraphim/internal/cache"
	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/parser"
	"github.com/rohmanhakim/seraphim/internal/search"
	"github.com/rohmanhakim/seraphim/internal/upstream"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities

- Resolve the brand directory and brand records, cache first
- Batch load every brand with bounded concurrency
- Run global search over whatever is cached

The service never retries. Failures reach the caller as *Error with either
KindNotFound or KindUpstreamUnavailable; cache trouble never does.
*/

const defaultConcurrency = 4

type Service struct {
	client       upstream.Client
	tiered       *cache.Tiered
	ttls         TTLs
	metadataSink metadata.MetadataSink
	logger       *slog.Logger

	brands    cache.Typed[[]namecodec.BrandIdentity]
	summaries cache.Typed[[]BrandSummary]
	records   cache.Typed[[]parser.ModelRecord]
	global    cache.Typed[[]search.BrandModels]

	// summaryMu serializes read-modify-write of KeyAllBrandsMetadata.
	summaryMu sync.Mutex
}

func NewService(
	client upstream.Client,
	tiered *cache.Tiered,
	ttls TTLs,
	metadataSink metadata.MetadataSink,
	logger *slog.Logger,
) *Service {
	return &Service{
		client:       client,
		tiered:       tiered,
		ttls:         ttls,
		metadataSink: metadataSink,
		logger:       logger,
		brands:       cache.NewTyped[[]namecodec.BrandIdentity](tiered, typeBrands),
		summaries:    cache.NewTyped[[]BrandSummary](tiered, typeSummaries),
		records:      cache.NewTyped[[]parser.ModelRecord](tiered, typeRecords),
		global:       cache.NewTyped[[]search.BrandModels](tiered, typeGlobal),
	}
}

// Brands returns the brand directory in listing order.
func (s *Service) Brands(ctx context.Context, opts FetchOptions) ([]namecodec.BrandIdentity, error) {
	if !opts.ForceRefresh {
		if brands, ok := s.brands.Get(KeyBrandsList); ok {
			return brands, nil
		}
	}

	entries, fetchErr := s.client.FetchDirectoryListing(ctx)
	if fetchErr != nil {
		err := fromUpstream("", fetchErr)
		s.recordError("Service.Brands", err)
		return nil, err
	}

	docs := upstream.Documents(entries)
	brands := make([]namecodec.BrandIdentity, 0, len(docs))
	for _, e := range docs {
		brands = append(brands, namecodec.Classify(e.Name))
	}

	s.store("Service.Brands", func() error { return s.brands.Set(KeyBrandsList, brands, s.ttls.List) })
	s.mergeSummaries(brands)

	s.logger.Debug("brand directory refreshed", slog.Int("brands", len(brands)))
	return brands, nil
}

// Models returns the parsed records of one brand. An unknown slug, or a
// listed brand whose document vanished, is KindNotFound.
func (s *Service) Models(ctx context.Context, slug string, opts FetchOptions) ([]parser.ModelRecord, error) {
	if !opts.ForceRefresh {
		if records, ok := s.records.Get(BrandKey(slug)); ok {
			return records, nil
		}
	}

	brands, err := s.Brands(ctx, FetchOptions{})
	if err != nil {
		return nil, err
	}
	if !containsSlug(brands, slug) && opts.ForceRefresh {
		// the cached directory may predate a newly listed brand
		if brands, err = s.Brands(ctx, opts); err != nil {
			return nil, err
		}
	}
	if !containsSlug(brands, slug) {
		err := &Error{
			Kind:    KindNotFound,
			Slug:    slug,
			Message: "brand is not in the directory listing",
		}
		s.recordError("Service.Models", err)
		return nil, err
	}

	text, fetchErr := s.client.FetchDocument(ctx, namecodec.DocumentName(slug))
	if fetchErr != nil {
		err := fromUpstream(slug, fetchErr)
		s.recordError("Service.Models", err)
		return nil, err
	}

	records := parser.Parse(text)
	s.store("Service.Models", func() error { return s.records.Set(BrandKey(slug), records, s.ttls.Brand) })
	s.updateSummary(slug, records)

	s.logger.Debug("brand loaded", slog.String("slug", slug), slog.Int("models", len(records)))
	return records, nil
}

// Peek serves whatever is cached for slug, expired or not, without going
// upstream. The Info tells the caller how old it is.
func (s *Service) Peek(slug string) ([]parser.ModelRecord, cache.Info, bool) {
	key := BrandKey(slug)
	info := s.records.Info(key)
	records, ok := s.records.GetStale(key)
	return records, info, ok
}

// Summaries returns the cached directory summaries, possibly stale.
func (s *Service) Summaries() ([]BrandSummary, bool) {
	return s.summaries.GetStale(KeyAllBrandsMetadata)
}

// LoadAll fetches every brand with at most opts.Concurrency requests in
// flight. Per-brand failures land in the report and do not stop the others;
// a failing directory listing or a cancelled ctx does.
func (s *Service) LoadAll(ctx context.Context, opts LoadOptions) (LoadReport, error) {
	startTime := time.Now()

	brands, err := s.Brands(ctx, FetchOptions{ForceRefresh: opts.ForceRefresh})
	if err != nil {
		return LoadReport{}, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([][]parser.ModelRecord, len(brands))
	failed := make([]error, len(brands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, brand := range brands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := s.Models(gctx, brand.Slug, FetchOptions{ForceRefresh: opts.ForceRefresh})
			if err != nil {
				failed[i] = err
				return nil
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return LoadReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return LoadReport{}, err
	}

	report := LoadReport{Total: len(brands)}
	data := make([]search.BrandModels, 0, len(brands))
	for i, brand := range brands {
		if failed[i] != nil {
			report.Failed++
			report.Failures = append(report.Failures, BrandFailure{Slug: brand.Slug, Err: failed[i]})
			continue
		}
		report.Loaded++
		report.TotalModels += len(results[i])
		data = append(data, search.BrandModels{Brand: brand, Records: results[i]})
	}

	s.store("Service.LoadAll", func() error { return s.global.Set(KeyAllModelsGlobal, data, s.ttls.Global) })

	report.Duration = time.Since(startTime)
	s.metadataSink.RecordLoadStats(report.Total, report.Loaded, report.Failed, report.TotalModels, report.Duration)
	return report, nil
}

// Search runs a global search over cached data only, serving stale entries
// rather than nothing. It goes upstream only when no directory is cached.
func (s *Service) Search(ctx context.Context, query string) (search.GlobalResult, error) {
	directory, ok := s.brands.GetStale(KeyBrandsList)
	if !ok {
		var err error
		directory, err = s.Brands(ctx, FetchOptions{})
		if err != nil {
			return search.GlobalResult{}, err
		}
	}

	data, ok := s.global.GetStale(KeyAllModelsGlobal)
	if !ok {
		data = s.cachedBrandModels(directory)
	}
	return search.Global(data, directory, query), nil
}

// CachedBrands lists the slugs that have records in either cache tier.
func (s *Service) CachedBrands() ([]string, error) {
	return s.tiered.ListKeysWithPrefix(BrandKeyPrefix)
}

// cachedBrandModels assembles search data from individually cached brands,
// in directory order.
func (s *Service) cachedBrandModels(directory []namecodec.BrandIdentity) []search.BrandModels {
	data := []search.BrandModels{}
	for _, brand := range directory {
		if records, ok := s.records.GetStale(BrandKey(brand.Slug)); ok {
			data = append(data, search.BrandModels{Brand: brand, Records: records})
		}
	}
	return data
}

func (s *Service) mergeSummaries(brands []namecodec.BrandIdentity) {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()

	existing, _ := s.summaries.GetStale(KeyAllBrandsMetadata)
	bySlug := make(map[string]BrandSummary, len(existing))
	for _, sum := range existing {
		bySlug[sum.Brand.Slug] = sum
	}

	merged := make([]BrandSummary, 0, len(brands))
	for _, b := range brands {
		sum, ok := bySlug[b.Slug]
		if !ok {
			sum = BrandSummary{Document: namecodec.DocumentName(b.Slug)}
		}
		sum.Brand = b
		merged = append(merged, sum)
	}
	s.store("Service.mergeSummaries", func() error {
		return s.summaries.Set(KeyAllBrandsMetadata, merged, s.ttls.List)
	})
}

func (s *Service) updateSummary(slug string, records []parser.ModelRecord) {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()

	summaries, ok := s.summaries.GetStale(KeyAllBrandsMetadata)
	if !ok {
		return
	}
	variants := 0
	for _, r := range records {
		variants += len(r.Variants)
	}
	for i := range summaries {
		if summaries[i].Brand.Slug != slug {
			continue
		}
		summaries[i].Loaded = true
		summaries[i].ModelCount = len(records)
		summaries[i].VariantCount = variants
		summaries[i].LoadedAt = time.Now().UnixMilli()
	}
	s.store("Service.updateSummary", func() error {
		return s.summaries.Set(KeyAllBrandsMetadata, summaries, s.ttls.List)
	})
}

// store runs a cache write. Under the BestEffort policy it cannot fail; with
// Strict the failure is logged and otherwise ignored, since a served result
// is still correct.
func (s *Service) store(action string, write func() error) {
	if err := write(); err != nil {
		s.logger.Warn("cache write failed", slog.String("action", action), slog.Any("error", err))
	}
}

func (s *Service) recordError(action string, err *Error) {
	attrs := []metadata.Attribute{}
	if err.Slug != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrSlug, err.Slug))
	}
	s.metadataSink.RecordError(
		time.Now(),
		"catalog",
		action,
		mapCatalogErrorToMetadataCause(err),
		err.Error(),
		attrs,
	)
}

func containsSlug(brands []namecodec.BrandIdentity, slug string) bool {
	for _, b := range brands {
		if b.Slug == slug {
			return true
		}
	}
	return false
}
