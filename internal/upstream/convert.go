package upstream

import (
	"bytes"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rohmanhakim/seraphim/pkg/failure"
	"golang.org/x/net/html"
)

// HTMLToMarkdown converts a document served as rendered HTML back into
// markdown so the parser sees headings, bold model lines and code spans.
func HTMLToMarkdown(body []byte) (string, failure.ClassifiedError) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversion,
		}
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	markdown, err := conv.ConvertNode(root)
	if err != nil {
		return "", &UpstreamError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversion,
		}
	}
	return string(markdown), nil
}
