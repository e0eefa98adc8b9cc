package namecodec

// BrandIdentity is derived once per listing entry. Slug is the filename
// without its document extension and is used both as the cache key suffix
// and to fetch the document again.
type BrandIdentity struct {
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
}

// DocumentExt is the extension of eligible upstream documents.
const DocumentExt = ".md"

type regionSuffix struct {
	suffix    string
	qualifier string
}

// regionSuffixes is ordered longest first; the first match wins.
var regionSuffixes = []regionSuffix{
	{suffix: "_global_en", qualifier: "(Global)"},
	{suffix: "_all", qualifier: ""},
	{suffix: "_cn", qualifier: "(China)"},
	{suffix: "_en", qualifier: "(English)"},
}
