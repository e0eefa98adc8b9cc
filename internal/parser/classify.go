package parser

import (
	"regexp"
	"strings"
)

var (
	sectionPattern = regexp.MustCompile(`^(#{2,6})\s+(.+?)\s*$`)
	closingHashes  = regexp.MustCompile(`\s+#+$`)

	modelPattern    = regexp.MustCompile(`^(?:[-+*]\s+)?\*\*(.+?)\*\*\s*(:?)\s*$`)
	codenamePattern = regexp.MustCompile(`^[\[(]([^\])]+)[\])]\s*(.*)$`)
	groupPattern    = regexp.MustCompile(`[\[(][^\])]*[\])]`)

	variantPattern = regexp.MustCompile("^(?:[-+*]\\s+)?`([^`]*)`\\s*:\\s*(.*)$")
)

// ClassifyLine tags a single line of a brand document. Anything that is not a
// section heading, a model heading or a variant line is LineOther, including
// the single-hash document title.
func ClassifyLine(raw string) Line {
	line := strings.TrimSpace(raw)
	if line == "" {
		return Line{Kind: LineOther}
	}

	if l, ok := classifySection(line); ok {
		return l
	}
	if l, ok := classifyModel(line); ok {
		return l
	}
	if l, ok := classifyVariant(line); ok {
		return l
	}
	return Line{Kind: LineOther}
}

func classifySection(line string) (Line, bool) {
	m := sectionPattern.FindStringSubmatch(line)
	if m == nil {
		return Line{}, false
	}
	text := strings.TrimSpace(closingHashes.ReplaceAllString(m[2], ""))
	if text == "" {
		return Line{}, false
	}
	return Line{Kind: LineSection, Series: text}, true
}

func classifyModel(line string) (Line, bool) {
	m := modelPattern.FindStringSubmatch(line)
	if m == nil {
		return Line{}, false
	}

	body := strings.TrimSpace(m[1])
	colonAfter := m[2] != ""
	colonInside := strings.HasSuffix(body, ":")
	if !colonAfter && !colonInside {
		return Line{}, false
	}
	if colonInside {
		body = strings.TrimSpace(strings.TrimSuffix(body, ":"))
	}

	var codename *string
	rest := body
	if cm := codenamePattern.FindStringSubmatch(body); cm != nil {
		if c := strings.TrimSpace(cm[1]); c != "" {
			codename = &c
		}
		rest = cm[2]
	}

	name := collapseSpaces(groupPattern.ReplaceAllString(rest, " "))
	if name == "" {
		if codename == nil {
			return Line{}, false
		}
		name = *codename
	}

	return Line{
		Kind:          LineModel,
		MainModelName: name,
		Codename:      codename,
	}, true
}

func classifyVariant(line string) (Line, bool) {
	m := variantPattern.FindStringSubmatch(line)
	if m == nil {
		return Line{}, false
	}
	token := strings.TrimSpace(m[1])
	if token == "" {
		return Line{}, false
	}
	return Line{
		Kind:        LineVariant,
		ModelNumber: token,
		VariantName: strings.TrimSpace(m[2]),
	}, true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
