package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// Canonicalize applies a deterministic normalization to an upstream base URL.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Query parameters are kept: listing endpoints use them (e.g. ?ref=main).
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = strings.ToLower(canonical.Scheme)
	canonical.Host = strings.ToLower(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = ""
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""

	return canonical
}

// JoinName appends a single escaped path segment to base, keeping base's query.
func JoinName(base url.URL, name string) url.URL {
	joined := base
	joined.Path = path.Join("/", base.Path, name)
	joined.RawPath = ""
	if strings.HasSuffix(name, "/") {
		joined.Path += "/"
	}
	return joined
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}
