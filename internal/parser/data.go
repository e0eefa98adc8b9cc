package parser

// ModelVariant is one SKU of a model. ModelNumber is its stable identity.
type ModelVariant struct {
	ModelNumber string `json:"modelNumber"`
	VariantName string `json:"variantName"`
}

// ModelRecord is a model with at least one variant. Series is nil when the
// model appeared before any section heading.
type ModelRecord struct {
	MainModelName string         `json:"mainModelName"`
	Codename      *string        `json:"codename,omitempty"`
	Series        *string        `json:"series,omitempty"`
	Variants      []ModelVariant `json:"variants"`
}

// SeriesOrDefault returns the series name, or OtherModelsSeries when absent.
func (m ModelRecord) SeriesOrDefault() string {
	if m.Series == nil {
		return OtherModelsSeries
	}
	return *m.Series
}

// OtherModelsSeries labels the presentation bucket for records without a series.
const OtherModelsSeries = "Other Models"

type LineKind int

const (
	LineOther LineKind = iota
	LineSection
	LineModel
	LineVariant
)

func (k LineKind) String() string {
	switch k {
	case LineSection:
		return "section"
	case LineModel:
		return "model"
	case LineVariant:
		return "variant"
	default:
		return "other"
	}
}

// Line is a classified input line. Only the fields relevant to Kind are set.
type Line struct {
	Kind LineKind

	// LineSection
	Series string

	// LineModel
	MainModelName string
	Codename      *string

	// LineVariant
	ModelNumber string
	VariantName string
}

// SeriesGroup is a presentation grouping of records sharing a series.
type SeriesGroup struct {
	Series  string
	Records []ModelRecord
}

type state int

const (
	stateDefault state = iota
	stateInModel
)
