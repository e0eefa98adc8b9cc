package render

import (
	"testing"

	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const document = "## Series A\n" +
	"**[COD1] Phone One:**\n" +
	"`MN-100`: Base Edition\n" +
	"**Phone Two:**\n" +
	"`MN-200`: Standard\n"

func TestMarkdown_ParsesBack(t *testing.T) {
	brand := namecodec.Classify("phone_global_en.md")
	records := parser.Parse(document)

	out := Markdown(brand, records)

	assert.Equal(t, "# Phone (Global)\n\n"+document, out)
	assert.Equal(t, records, parser.Parse(out))
}

func TestHTML(t *testing.T) {
	brand := namecodec.Classify("phone_global_en.md")
	records := parser.Parse(document)

	out := HTML(brand, records)

	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "Phone (Global)</h1>")
	assert.Contains(t, out, "Phone One:</strong>")
	assert.Contains(t, out, "COD1")
	assert.Contains(t, out, "<code>MN-100</code>")
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("Markdown")
	require.True(t, ok)
	assert.Equal(t, FormatMarkdown, f)

	f, ok = ParseFormat(" HTML ")
	require.True(t, ok)
	assert.Equal(t, FormatHTML, f)

	_, ok = ParseFormat("pdf")
	assert.False(t, ok)
}

func TestRender_Dispatch(t *testing.T) {
	brand := namecodec.Classify("acme.md")
	records := parser.Parse(document)

	assert.Equal(t, Markdown(brand, records), Render(FormatMarkdown, brand, records))
	assert.Equal(t, HTML(brand, records), Render(FormatHTML, brand, records))
}
