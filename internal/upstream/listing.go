package upstream

import (
	"bytes"
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/seraphim/pkg/failure"
	"golang.org/x/net/html"
)

// ParseJSONListing decodes a contents-API style listing: an array of
// objects carrying at least name and type.
func ParseJSONListing(body []byte) ([]RawEntry, failure.ClassifiedError) {
	var entries []RawEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &UpstreamError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseInvalidListing,
		}
	}

	out := make([]RawEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if e.Type == "" {
			e.Type = EntryTypeFile
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseHTMLListing reads an HTML index page. Every relative anchor becomes an
// entry; a trailing slash marks a directory. Parent links, fragments, query
// links and links to other hosts are skipped.
func ParseHTMLListing(body []byte) ([]RawEntry, failure.ClassifiedError) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &UpstreamError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseInvalidListing,
		}
	}

	doc := goquery.NewDocumentFromNode(root)
	seen := map[string]struct{}{}
	entries := []RawEntry{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		entry, ok := entryFromHref(href)
		if !ok {
			return
		}
		if _, dup := seen[entry.Name]; dup {
			return
		}
		seen[entry.Name] = struct{}{}
		entries = append(entries, entry)
	})
	return entries, nil
}

func entryFromHref(href string) (RawEntry, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") {
		return RawEntry{}, false
	}
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() || u.Host != "" {
		return RawEntry{}, false
	}

	p := u.Path
	entryType := EntryTypeFile
	if strings.HasSuffix(p, "/") {
		entryType = EntryTypeDir
		p = strings.TrimRight(p, "/")
	}
	name := path.Base(p)
	if name == "" || name == "." || name == ".." || name == "/" {
		return RawEntry{}, false
	}
	return RawEntry{Name: name, Type: entryType}, true
}
