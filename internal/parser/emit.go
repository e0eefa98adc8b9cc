package parser

import (
	"regexp"
	"strings"
)

var trailingHashRun = regexp.MustCompile(`\s#+$`)

// Emit writes records in the canonical document form read back by Parse.
// Records without variants are skipped since Parse would drop them anyway.
//
// Records are written in order and a section heading is emitted each time
// the series changes. A record without a series that follows one with a
// series cannot be expressed and ends up under the preceding heading; Parse
// never produces that ordering.
func Emit(records []ModelRecord) string {
	var b strings.Builder
	var current *string

	for _, r := range records {
		if len(r.Variants) == 0 {
			continue
		}
		if r.Series != nil && (current == nil || *current != *r.Series) {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(sectionLine(*r.Series))
			b.WriteString("\n")
			current = r.Series
		}

		b.WriteString(modelLine(r))
		b.WriteString("\n")
		for _, v := range r.Variants {
			b.WriteString(variantLine(v))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sectionLine(series string) string {
	// A series ending in a hash run would lose it as a closing sequence.
	if trailingHashRun.MatchString(series) {
		return "## " + series + " #"
	}
	return "## " + series
}

func modelLine(r ModelRecord) string {
	if r.Codename != nil {
		return "**[" + *r.Codename + "] " + r.MainModelName + ":**"
	}
	return "**" + r.MainModelName + ":**"
}

func variantLine(v ModelVariant) string {
	if v.VariantName == "" {
		return "`" + v.ModelNumber + "`:"
	}
	return "`" + v.ModelNumber + "`: " + v.VariantName
}
