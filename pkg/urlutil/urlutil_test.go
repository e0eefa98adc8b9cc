package urlutil

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases scheme and host", in: "HTTPS://API.GitHub.com/repos/x", want: "https://api.github.com/repos/x"},
		{name: "drops default https port", in: "https://example.com:443/docs", want: "https://example.com/docs"},
		{name: "keeps custom port", in: "http://localhost:8080/docs/", want: "http://localhost:8080/docs"},
		{name: "strips fragment keeps query", in: "https://example.com/list?ref=main#top", want: "https://example.com/list?ref=main"},
		{name: "root path untouched", in: "https://example.com/", want: "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(mustParse(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	once := Canonicalize(mustParse(t, "HTTP://Example.com:80/a/b//?q=1#frag"))
	twice := Canonicalize(once)
	assert.Equal(t, once.String(), twice.String())
}

func TestJoinName(t *testing.T) {
	base := mustParse(t, "https://raw.example.com/owner/repo/main/brands")

	got := JoinName(base, "apple_global_en.md")
	assert.Equal(t, "https://raw.example.com/owner/repo/main/brands/apple_global_en.md", got.String())

	spaced := JoinName(base, "one plus.md")
	assert.Equal(t, "https://raw.example.com/owner/repo/main/brands/one%20plus.md", spaced.String())
}

func TestJoinName_KeepsQuery(t *testing.T) {
	base := mustParse(t, "https://api.example.com/contents?ref=main")

	got := JoinName(base, "xiaomi.md")
	assert.Equal(t, "https://api.example.com/contents/xiaomi.md?ref=main", got.String())
}
