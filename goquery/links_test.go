package goquery_test

import (
	"net/url"
	"testing"

	"github.com/apotheon-labs/siteindex/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractLinks_resolves_relative_links_against_page_URL(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/pricing">Pricing</a>
		<a href="guide">Guide</a>
		<a href="https://example.com/about">About</a>
	</body>`

	links, err := goquery.ExtractLinks(html, "https://example.com/docs/", mustParse(t, "https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/pricing",
		"https://example.com/docs/guide",
		"https://example.com/about",
	}, links)
}

func TestExtractLinks_filters_other_origins(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="https://other.com/page">External</a>
		<a href="https://sub.example.com/page">Subdomain</a>
		<a href="http://example.com/insecure">Scheme mismatch</a>
		<a href="https://example.com:8443/port">Port mismatch</a>
		<a href="/local">Local</a>
	</body>`

	links, err := goquery.ExtractLinks(html, "https://example.com/", mustParse(t, "https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/local"}, links)
}

func TestExtractLinks_ignores_non_http_and_fragment_links(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="tel:+1234567890">Call</a>
		<a href="javascript:void(0)">JS</a>
		<a href="#section">Jump</a>
		<a href="/real">Real</a>
	</body>`

	links, err := goquery.ExtractLinks(html, "https://example.com/", mustParse(t, "https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/real"}, links)
}

func TestExtractLinks_strips_fragments_and_deduplicates(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/page#intro">Intro</a>
		<a href="/page#details">Details</a>
		<a href="/page">Plain</a>
	</body>`

	links, err := goquery.ExtractLinks(html, "https://example.com/", mustParse(t, "https://example.com/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/page"}, links)
}
