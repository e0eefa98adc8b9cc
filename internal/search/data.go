package search

import (
	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/parser"
)

// BrandModels pairs a brand with its parsed records.
type BrandModels struct {
	Brand   namecodec.BrandIdentity `json:"brand"`
	Records []parser.ModelRecord    `json:"records"`
}

// ModelHit is one matching record together with the brand it came from.
type ModelHit struct {
	Brand  namecodec.BrandIdentity
	Record parser.ModelRecord
}

type ResultKind int

const (
	KindNone ResultKind = iota
	KindModels
	KindBrands
)

func (k ResultKind) String() string {
	switch k {
	case KindModels:
		return "models"
	case KindBrands:
		return "brands"
	default:
		return "none"
	}
}

// GlobalResult holds either model hits or brand hits, never both.
type GlobalResult struct {
	Kind   ResultKind
	Models []ModelHit
	Brands []namecodec.BrandIdentity
}

// Suggestion is a fuzzy brand match ranked by score.
type Suggestion struct {
	Brand namecodec.BrandIdentity
	Score int
}
