package search

import (
	"strings"

	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/parser"
)

// Filter returns the records matching query, preserving their order.
// A blank query returns records unchanged.
func Filter(records []parser.ModelRecord, query string) []parser.ModelRecord {
	q, ok := normalize(query)
	if !ok {
		return records
	}
	out := []parser.ModelRecord{}
	for _, r := range records {
		if recordMatches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// MatchBrands returns the brands whose display name or slug contains query.
// A blank query returns brands unchanged.
func MatchBrands(brands []namecodec.BrandIdentity, query string) []namecodec.BrandIdentity {
	q, ok := normalize(query)
	if !ok {
		return brands
	}
	out := []namecodec.BrandIdentity{}
	for _, b := range brands {
		if contains(b.DisplayName, q) || contains(b.Slug, q) {
			out = append(out, b)
		}
	}
	return out
}

// Global searches models across all brands first and only falls back to
// brand matches when no model matches. A blank query lists every brand.
func Global(data []BrandModels, directory []namecodec.BrandIdentity, query string) GlobalResult {
	q, ok := normalize(query)
	if !ok {
		return brandsResult(directory)
	}

	hits := []ModelHit{}
	for _, bm := range data {
		for _, r := range bm.Records {
			if recordMatches(r, q) {
				hits = append(hits, ModelHit{Brand: bm.Brand, Record: r})
			}
		}
	}
	if len(hits) > 0 {
		return GlobalResult{Kind: KindModels, Models: hits}
	}

	return brandsResult(MatchBrands(directory, query))
}

func brandsResult(brands []namecodec.BrandIdentity) GlobalResult {
	if len(brands) == 0 {
		return GlobalResult{Kind: KindNone}
	}
	return GlobalResult{Kind: KindBrands, Brands: brands}
}

func recordMatches(r parser.ModelRecord, q string) bool {
	if contains(r.MainModelName, q) {
		return true
	}
	if r.Codename != nil && contains(*r.Codename, q) {
		return true
	}
	for _, v := range r.Variants {
		if contains(v.ModelNumber, q) || contains(v.VariantName, q) {
			return true
		}
	}
	return false
}

// normalize folds query for comparison and reports whether it is non-blank.
// Surrounding whitespace only decides blankness; it stays part of the match.
func normalize(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "", false
	}
	return strings.ToLower(query), true
}

func contains(field, foldedQuery string) bool {
	return strings.Contains(strings.ToLower(field), foldedQuery)
}
