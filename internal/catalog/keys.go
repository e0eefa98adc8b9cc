package catalog

// Cache keys shared with anything else reading the durable tier. Changing
// them orphans stored data.
const (
	KeyBrandsList        = "brands_list"
	KeyAllBrandsMetadata = "all_brands_metadata"
	KeyAllModelsGlobal   = "all_models_global_data"
	BrandKeyPrefix       = "brand_"
)

// BrandKey is the cache key holding one brand's parsed records.
func BrandKey(slug string) string {
	return BrandKeyPrefix + slug
}

// Type tags stored next to each payload.
const (
	typeBrands    = "catalog.brands.v1"
	typeSummaries = "catalog.summaries.v1"
	typeRecords   = "catalog.records.v1"
	typeGlobal    = "catalog.global.v1"
)
