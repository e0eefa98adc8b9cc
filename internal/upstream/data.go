package upstream

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/seraphim/internal/namecodec"
	"github.com/rohmanhakim/seraphim/pkg/retry"
)

// RawEntry is one item of the upstream directory listing.
type RawEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

const (
	EntryTypeFile = "file"
	EntryTypeDir  = "dir"
)

// IsDocument reports whether the entry is a brand document worth fetching.
func (e RawEntry) IsDocument() bool {
	return e.Type != EntryTypeDir && namecodec.IsDocument(e.Name)
}

// Documents keeps the eligible entries, in listing order.
func Documents(entries []RawEntry) []RawEntry {
	out := make([]RawEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsDocument() {
			out = append(out, e)
		}
	}
	return out
}

type ClientConfig struct {
	listingURL      url.URL
	documentBaseURL url.URL
	token           string
	userAgent       string
	timeout         time.Duration
	retryParam      retry.RetryParam
}

func NewClientConfig(
	listingURL url.URL,
	documentBaseURL url.URL,
	token string,
	userAgent string,
	timeout time.Duration,
	retryParam retry.RetryParam,
) ClientConfig {
	return ClientConfig{
		listingURL:      listingURL,
		documentBaseURL: documentBaseURL,
		token:           token,
		userAgent:       userAgent,
		timeout:         timeout,
		retryParam:      retryParam,
	}
}

func (c ClientConfig) ListingURL() url.URL {
	return c.listingURL
}

func (c ClientConfig) DocumentBaseURL() url.URL {
	return c.documentBaseURL
}

func (c ClientConfig) UserAgent() string {
	return c.userAgent
}

func (c ClientConfig) Timeout() time.Duration {
	return c.timeout
}

func (c ClientConfig) RetryParam() retry.RetryParam {
	return c.retryParam
}

// response is the part of an HTTP response the client keeps.
type response struct {
	status      int
	contentType string
	body        []byte
}
