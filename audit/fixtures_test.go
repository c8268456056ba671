package audit

import (
	"strings"

	"github.com/seo-optimizer/seoaudit/page"
)

const fixtureURL = "https://example.com/guides/seo"

func minimalPage() page.Extraction {
	p := page.New("http://example.com/")
	p.Timestamp = "2026-01-01T00:00:00.000Z"
	return p
}

func wellOptimizedPage() page.Extraction {
	title := "A Practical Guide To Technical SEO In Go Code"
	desc := strings.Repeat("Learn how to audit pages. ", 5)[:120]

	p := page.New(fixtureURL)
	p.Meta = page.Meta{
		Title:             title,
		TitleLength:       page.TextLength(title),
		Description:       desc,
		DescriptionLength: page.TextLength(desc),
		Canonical:         fixtureURL,
		Viewport:          "width=device-width, initial-scale=1",
		Charset:           "utf-8",
		Language:          "en",
	}
	p.OG = page.OpenGraph{
		Title:       title,
		Description: desc,
		Image:       "https://example.com/og.png",
		ImageWidth:  "1200",
		ImageHeight: "630",
		URL:         fixtureURL,
		Type:        "article",
	}
	p.Twitter = page.TwitterCard{Card: "summary_large_image"}
	p.JSONLD = []page.JSONLD{page.ParseJSONLD(`{"@context":"https://schema.org","@type":"Article","headline":"Guide"}`)}
	p.Headings = []page.Heading{
		{Tag: "h1", Text: "Technical SEO", Level: 1},
		{Tag: "h2", Text: "Crawling", Level: 2},
		{Tag: "h3", Text: "Robots", Level: 3},
		{Tag: "h2", Text: "Indexing", Level: 2},
	}
	p.Links = []page.Link{
		{Href: "/guides", Text: "All guides"},
		{Href: "/guides/performance", Text: "Performance guide"},
		{Href: "/about", Text: "About the authors"},
		{Href: "https://developers.google.com/search", Text: "Search documentation", IsExternal: true, IsNoopener: true},
	}
	p.Images = []page.Image{
		{Src: "/img/crawl.webp", Alt: "Crawl diagram", Width: page.Int(800), Height: page.Int(400), HasLazyLoading: true, FileExtension: "webp"},
		{Src: "/img/index.avif", Alt: "Index diagram", Width: page.Int(800), Height: page.Int(400), HasLazyLoading: true, FileExtension: "avif"},
	}
	p.Technical.Canonical = fixtureURL
	p.Technical.IsHTTPS = true
	p.WordCount = 800
	p.Timestamp = "2026-01-01T00:00:00.000Z"
	return p
}

func resultByID(t interface{ Fatalf(string, ...any) }, r Report, id string) Result {
	for _, res := range r.Results {
		if res.RuleID == id {
			return res
		}
	}
	t.Fatalf("no result for rule %q", id)
	return Result{}
}
