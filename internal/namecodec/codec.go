package namecodec

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Classify derives the display name and slug of a listing filename.
// It accepts any input, including the empty string.
func Classify(filename string) BrandIdentity {
	slug := StripExt(filename)
	base, qualifier := splitRegion(slug)

	display := strings.TrimSpace(capitalizeWords(base) + " " + qualifier)

	return BrandIdentity{
		DisplayName: display,
		Slug:        slug,
	}
}

// IsDocument reports whether a listing entry name looks like a brand document.
func IsDocument(name string) bool {
	return hasSuffixFold(name, DocumentExt) && len(name) > len(DocumentExt)
}

// DocumentName restores the upstream filename for a slug.
func DocumentName(slug string) string {
	return slug + DocumentExt
}

// StripExt removes a trailing document extension, case-insensitively.
func StripExt(filename string) string {
	if hasSuffixFold(filename, DocumentExt) {
		return filename[:len(filename)-len(DocumentExt)]
	}
	return filename
}

func splitRegion(base string) (string, string) {
	for _, rs := range regionSuffixes {
		if hasSuffixFold(base, rs.suffix) {
			return base[:len(base)-len(rs.suffix)], rs.qualifier
		}
	}
	return base, ""
}

func capitalizeWords(s string) string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, tok := range tokens {
		first, size := utf8.DecodeRuneInString(tok)
		tokens[i] = string(unicode.ToUpper(first)) + strings.ToLower(tok[size:])
	}
	return strings.Join(tokens, " ")
}

// hasSuffixFold is strings.HasSuffix with ASCII/Unicode case folding. The
// suffixes we look for are ASCII, so byte lengths line up.
func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	return strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
