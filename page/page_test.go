package page

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"whitespace only", "  \n\t  ", 0},
		{"single word", "hello", 1},
		{"single word padded", "\n  hello \t", 1},
		{"collapsed whitespace", "one  two\n\nthree\tfour", 4},
		{"non-breaking space separates", "one\u00a0two", 2},
		{"byte order mark separates", "one\ufefftwo", 2},
		{"next line does not separate", "one\u0085two", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}

func TestTextLength(t *testing.T) {
	assert.Equal(t, 0, TextLength(""))
	assert.Equal(t, 5, TextLength("hello"))
	assert.Equal(t, 4, TextLength("caf\u00e9"))
	// Astral-plane characters take two UTF-16 units.
	assert.Equal(t, 2, TextLength("\U0001F600"))
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"1200", 1200, true},
		{"  630px", 630, true},
		{"+42", 42, true},
		{"-7", -7, true},
		{"007", 7, true},
		{"", 0, false},
		{"px", 0, false},
		{"-", 0, false},
		{"99999999999999999999", math.MaxInt, true},
		{"123456789012345678901234567890px", math.MaxInt, true},
		{"-99999999999999999999", math.MinInt, true},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIsExternalLink(t *testing.T) {
	const pageURL = "https://example.com/blog/post"
	tests := []struct {
		href string
		want bool
	}{
		{"/about", false},
		{"contact", false},
		{"https://example.com/pricing", false},
		{"HTTPS://EXAMPLE.COM/upper", false},
		{"//cdn.example.org/lib.js", true},
		{"https://other.com/", true},
		{"#section", false},
		{"mailto:team@example.com", true},
		{"http://[::1]:namedport", false},
		{"%zz", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExternalLink(pageURL, tt.href))
		})
	}
}

func TestIsExternalLinkWithMalformedPageURL(t *testing.T) {
	assert.False(t, IsExternalLink("not a url", "/relative"))
	assert.True(t, IsExternalLink("not a url", "https://example.com"))
}

func TestParseJSONLD(t *testing.T) {
	t.Run("single type", func(t *testing.T) {
		block := ParseJSONLD(` {"@context":"https://schema.org","@type":"Article"} `)
		assert.True(t, block.IsValid)
		assert.Equal(t, "Article", block.Type)
		assert.Empty(t, block.Errors)
		assert.Equal(t, `{"@context":"https://schema.org","@type":"Article"}`, block.Raw)
	})

	t.Run("type array", func(t *testing.T) {
		block := ParseJSONLD(`{"@type":["Organization","LocalBusiness"]}`)
		assert.Equal(t, "Organization, LocalBusiness", block.Type)
	})

	t.Run("graph", func(t *testing.T) {
		block := ParseJSONLD(`{"@graph":[{"@type":"WebSite"},{"name":"x"},{"@type":"BreadcrumbList"}]}`)
		assert.Equal(t, "WebSite, BreadcrumbList", block.Type)
	})

	t.Run("invalid", func(t *testing.T) {
		block := ParseJSONLD(`{"@type": "Article",}`)
		assert.False(t, block.IsValid)
		assert.Nil(t, block.Parsed)
		assert.Empty(t, block.Type)
		require.Len(t, block.Errors, 1)
		assert.Contains(t, block.Errors[0], "invalid character")
	})

	t.Run("top-level array has no type", func(t *testing.T) {
		block := ParseJSONLD(`[{"@type":"Article"}]`)
		assert.True(t, block.IsValid)
		assert.Empty(t, block.Type)
	})
}

func TestNormalizeNeverSerialisesNull(t *testing.T) {
	p := Normalize(Extraction{URL: "https://example.com", JSONLD: []JSONLD{{Raw: "{}"}}})

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"headings", "links", "images", "jsonLd"} {
		assert.NotNil(t, decoded[key], key)
	}
	technical := decoded["technical"].(map[string]any)
	assert.NotNil(t, technical["hreflangTags"])
	assert.NotNil(t, technical["alternateLinks"])
	assert.NotNil(t, decoded["jsonLd"].([]any)[0].(map[string]any)["errors"])
	assert.NotContains(t, decoded, "responseHeaders")
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := Extraction{JSONLD: []JSONLD{{Raw: "{}"}}}
	_ = Normalize(in)
	assert.Nil(t, in.JSONLD[0].Errors)
}
