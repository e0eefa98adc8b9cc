package search

import (
	"strings"

	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/sahilm/fuzzy"
)

// brandSource adapts a brand directory to fuzzy.Source, matching on display names.
type brandSource []namecodec.BrandIdentity

func (s brandSource) String(i int) string {
	return s[i].DisplayName
}

func (s brandSource) Len() int {
	return len(s)
}

// Suggest ranks brands that loosely match query, best first. It is only a
// hint for "did you mean" output and has no effect on Filter or Global.
func Suggest(brands []namecodec.BrandIdentity, query string, limit int) []Suggestion {
	q := strings.TrimSpace(query)
	if q == "" || len(brands) == 0 || limit <= 0 {
		return nil
	}

	matches := fuzzy.FindFrom(q, brandSource(brands))
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, Suggestion{Brand: brands[m.Index], Score: m.Score})
	}
	return out
}
