package render

import (
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/parser"
)

// Format selects an export representation.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "md", "markdown" and "html", case-insensitively.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, true
	case "html":
		return FormatHTML, true
	default:
		return "", false
	}
}

// Markdown renders a brand as a document that parses back to records.
func Markdown(brand namecodec.BrandIdentity, records []parser.ModelRecord) string {
	var b strings.Builder
	if brand.DisplayName != "" {
		b.WriteString("# ")
		b.WriteString(brand.DisplayName)
		b.WriteString("\n\n")
	}
	b.WriteString(parser.Emit(records))
	return b.String()
}

// HTML renders the Markdown export as a standalone HTML fragment.
func HTML(brand namecodec.BrandIdentity, records []parser.ModelRecord) string {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return string(markdown.ToHTML([]byte(Markdown(brand, records)), p, renderer))
}

// Render dispatches on format.
func Render(format Format, brand namecodec.BrandIdentity, records []parser.ModelRecord) string {
	if format == FormatHTML {
		return HTML(brand, records)
	}
	return Markdown(brand, records)
}
