package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/seraphim/internal/metadata"
	"github.com/rohmanhakim/seraphim/pkg/failure"
	"github.com/rohmanhakim/seraphim/pkg/limiter"
	"github.com/rohmanhakim/seraphim/pkg/retry"
	"github.com/rohmanhakim/seraphim/pkg/urlutil"
)

/*
Responsibilities

- Fetch the directory listing and individual brand documents
- Apply auth, user agent and timeouts
- Pace requests per host and honour Retry-After
- Classify responses into NotFound versus unavailable

The client never parses brand documents; it returns markdown text.
*/

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 16 << 20

type HTTPClient struct {
	cfg          ClientConfig
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
	metadataSink metadata.MetadataSink
}

// Compile-time interface check
var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(
	cfg ClientConfig,
	rateLimiter limiter.RateLimiter,
	metadataSink metadata.MetadataSink,
) *HTTPClient {
	return &HTTPClient{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.timeout},
		rateLimiter:  rateLimiter,
		metadataSink: metadataSink,
	}
}

func (c *HTTPClient) FetchDirectoryListing(ctx context.Context) ([]RawEntry, failure.ClassifiedError) {
	listingURL := urlutil.Canonicalize(c.cfg.listingURL)

	resp, err := c.fetch(ctx, "HTTPClient.FetchDirectoryListing", listingURL, "application/json, text/html;q=0.9")
	if err != nil {
		return nil, err
	}

	var entries []RawEntry
	if isJSON(resp) {
		entries, err = ParseJSONListing(resp.body)
	} else {
		entries, err = ParseHTMLListing(resp.body)
	}
	if err != nil {
		c.recordError("HTTPClient.FetchDirectoryListing", listingURL, err)
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) FetchDocument(ctx context.Context, name string) (string, failure.ClassifiedError) {
	docURL := urlutil.JoinName(urlutil.Canonicalize(c.cfg.documentBaseURL), name)

	resp, err := c.fetch(ctx, "HTTPClient.FetchDocument", docURL, "text/markdown, text/plain, text/html;q=0.5")
	if err != nil {
		return "", err
	}

	if strings.Contains(resp.contentType, "html") {
		markdown, convErr := HTMLToMarkdown(resp.body)
		if convErr != nil {
			c.recordError("HTTPClient.FetchDocument", docURL, convErr)
			return "", convErr
		}
		return markdown, nil
	}
	return string(resp.body), nil
}

func (c *HTTPClient) fetch(ctx context.Context, action string, target url.URL, accept string) (response, failure.ClassifiedError) {
	startTime := time.Now()

	task := func() (response, failure.ClassifiedError) {
		return c.performFetch(ctx, target, accept)
	}
	result := retry.Retry(ctx, c.cfg.retryParam, task)

	resp := result.Value()
	c.metadataSink.RecordFetch(
		target.String(),
		resp.status,
		time.Since(startTime),
		resp.contentType,
		result.Attempts(),
	)

	if result.IsFailure() {
		c.recordError(action, target, result.Err())
		return response{}, result.Err()
	}
	return resp, nil
}

func (c *HTTPClient) performFetch(ctx context.Context, target url.URL, accept string) (response, failure.ClassifiedError) {
	host := target.Host
	if err := c.rateLimiter.Wait(ctx, host); err != nil {
		return response{}, &UpstreamError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseCancelled,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return response{}, &UpstreamError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	req.Header.Set("Accept", accept)
	if c.cfg.userAgent != "" {
		req.Header.Set("User-Agent", c.cfg.userAgent)
	}
	if c.cfg.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, &UpstreamError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseCancelled,
			}
		}
		c.rateLimiter.Backoff(host)
		return response{}, &UpstreamError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if classified := c.classifyStatus(host, resp); classified != nil {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return response{status: resp.StatusCode}, classified
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{status: resp.StatusCode}, &UpstreamError{
			Message:    err.Error(),
			Retryable:  true,
			Cause:      ErrCauseReadBody,
			StatusCode: resp.StatusCode,
		}
	}

	c.rateLimiter.ResetBackoff(host)
	return response{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// classifyStatus returns nil for 2xx responses.
func (c *HTTPClient) classifyStatus(host string, resp *http.Response) *UpstreamError {
	status := resp.StatusCode
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &UpstreamError{
			Message:    "document does not exist",
			Retryable:  false,
			Cause:      ErrCauseNotFound,
			StatusCode: status,
		}
	case status == http.StatusTooManyRequests || isExhaustedQuota(resp):
		if delay, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			c.rateLimiter.SetRetryAfter(host, delay)
		}
		c.rateLimiter.Backoff(host)
		return &UpstreamError{
			Message:    "upstream is rate limiting requests",
			Retryable:  true,
			Cause:      ErrCauseRateLimited,
			StatusCode: status,
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &UpstreamError{
			Message:    "upstream rejected the credentials",
			Retryable:  false,
			Cause:      ErrCauseUnauthorized,
			StatusCode: status,
		}
	case status >= 500:
		c.rateLimiter.Backoff(host)
		return &UpstreamError{
			Message:    http.StatusText(status),
			Retryable:  true,
			Cause:      ErrCauseServerError,
			StatusCode: status,
		}
	default:
		return &UpstreamError{
			Message:    http.StatusText(status),
			Retryable:  false,
			Cause:      ErrCauseUnexpectedStatus,
			StatusCode: status,
		}
	}
}

// isExhaustedQuota detects the 403 GitHub sends when the API quota is used up.
func isExhaustedQuota(resp *http.Response) bool {
	return resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0"
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func isJSON(resp response) bool {
	if strings.Contains(resp.contentType, "json") {
		return true
	}
	if strings.Contains(resp.contentType, "html") {
		return false
	}
	trimmed := strings.TrimSpace(string(resp.body))
	return strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{")
}

func (c *HTTPClient) recordError(action string, target url.URL, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrURL, target.String()),
	}

	var upstreamErr *UpstreamError
	var retryErr *retry.RetryError
	if errors.As(err, &upstreamErr) {
		cause = mapUpstreamErrorToMetadataCause(upstreamErr)
		if upstreamErr.StatusCode != 0 {
			attrs = append(attrs, metadata.NewAttr(metadata.AttrHTTPStatus, strconv.Itoa(upstreamErr.StatusCode)))
		}
	}
	if errors.As(err, &retryErr) {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrMessage, retryErr.Error()))
	}

	c.metadataSink.RecordError(
		time.Now(),
		"upstream",
		action,
		cause,
		err.Error(),
		attrs,
	)
}
