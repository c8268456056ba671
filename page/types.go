// Package page defines the page model shared by every extraction host and the
// audit engine, plus the few algorithms all hosts must agree on.
package page

// TimestampFormat is the ISO-8601 form browsers produce for capture times.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Extraction is a snapshot of one page's SEO-relevant surface at a point in time.
// Once produced it is treated as immutable: rules and scoring only read it.
type Extraction struct {
	Meta            Meta              `json:"meta"`
	OG              OpenGraph         `json:"og"`
	Twitter         TwitterCard       `json:"twitter"`
	JSONLD          []JSONLD          `json:"jsonLd"`
	Headings        []Heading         `json:"headings"`
	Links           []Link            `json:"links"`
	Images          []Image           `json:"images"`
	Technical       Technical         `json:"technical"`
	WordCount       int               `json:"wordCount"`
	URL             string            `json:"url"`
	Timestamp       string            `json:"timestamp"`
	ResponseHeaders map[string]string `json:"responseHeaders,omitempty"`
	RobotsTxt       *RobotsTxt        `json:"robotsTxt,omitempty"`
}

// Meta holds the document-level meta tags. Lengths are computed once by the
// extraction host and must be trusted by consumers.
type Meta struct {
	Title             string `json:"title"`
	TitleLength       int    `json:"titleLength"`
	Description       string `json:"description"`
	DescriptionLength int    `json:"descriptionLength"`
	Canonical         string `json:"canonical"`
	Robots            string `json:"robots"`
	Viewport          string `json:"viewport"`
	Charset           string `json:"charset"`
	Language          string `json:"language"`
	Author            string `json:"author"`
	Generator         string `json:"generator"`
	ThemeColor        string `json:"themeColor"`
}

// OpenGraph mirrors the og:* namespace. An empty string means the tag is absent.
type OpenGraph struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ImageWidth  string `json:"imageWidth"`
	ImageHeight string `json:"imageHeight"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	SiteName    string `json:"siteName"`
	Locale      string `json:"locale"`
}

// TwitterCard mirrors the twitter:* namespace.
type TwitterCard struct {
	Card        string `json:"card"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Site        string `json:"site"`
	Creator     string `json:"creator"`
}

// JSONLD is one application/ld+json block in document order.
type JSONLD struct {
	Raw     string   `json:"raw"`
	Parsed  any      `json:"parsed"`
	Type    string   `json:"type"`
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

type Heading struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

type Link struct {
	Href       string `json:"href"`
	Text       string `json:"text"`
	IsExternal bool   `json:"isExternal"`
	IsNofollow bool   `json:"isNofollow"`
	IsNoopener bool   `json:"isNoopener"`
}

// Image describes one <img>. Width and Height are only set when the element
// carries an explicit attribute. Natural and display sizes are layout-derived
// and stay zero for hosts that parse static HTML.
type Image struct {
	Src            string `json:"src"`
	Alt            string `json:"alt"`
	Width          *int   `json:"width"`
	Height         *int   `json:"height"`
	HasLazyLoading bool   `json:"hasLazyLoading"`
	NaturalWidth   int    `json:"naturalWidth"`
	NaturalHeight  int    `json:"naturalHeight"`
	DisplayWidth   int    `json:"displayWidth"`
	DisplayHeight  int    `json:"displayHeight"`
	FileExtension  string `json:"fileExtension"`
}

type Hreflang struct {
	Lang string `json:"lang"`
	Href string `json:"href"`
}

type AlternateLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

// Technical groups crawl and indexing signals.
type Technical struct {
	Canonical      string          `json:"canonical"`
	RobotsMeta     string          `json:"robotsMeta"`
	HreflangTags   []Hreflang      `json:"hreflangTags"`
	AlternateLinks []AlternateLink `json:"alternateLinks"`
	Favicon        string          `json:"favicon"`
	AppleTouchIcon string          `json:"appleTouchIcon"`
	IsHTTPS        bool            `json:"isHttps"`
	URL            string          `json:"url"`
}

// RobotsTxt records whether the site's robots.txt allows the page. It is
// informational and never scored.
type RobotsTxt struct {
	URL     string `json:"url"`
	Allowed bool   `json:"allowed"`
}

// WebVitals are separately measured performance metrics. Nil means not
// measured. Units are milliseconds except CLS, which is a unitless ratio.
type WebVitals struct {
	LCP  *float64 `json:"lcp"`
	INP  *float64 `json:"inp"`
	CLS  *float64 `json:"cls"`
	TTFB *float64 `json:"ttfb"`
	FCP  *float64 `json:"fcp"`
}

// New returns an empty extraction for url with every sequence initialised.
func New(url string) Extraction {
	return Normalize(Extraction{URL: url, Technical: Technical{URL: url}})
}

// Normalize returns a copy of p whose nil sequences are replaced by empty ones,
// so extractions decoded from an external host serialise the same way as
// locally produced ones.
func Normalize(p Extraction) Extraction {
	if p.JSONLD == nil {
		p.JSONLD = []JSONLD{}
	}
	for i := range p.JSONLD {
		if p.JSONLD[i].Errors == nil {
			blocks := make([]JSONLD, len(p.JSONLD))
			copy(blocks, p.JSONLD)
			for j := range blocks {
				if blocks[j].Errors == nil {
					blocks[j].Errors = []string{}
				}
			}
			p.JSONLD = blocks
			break
		}
	}
	if p.Headings == nil {
		p.Headings = []Heading{}
	}
	if p.Links == nil {
		p.Links = []Link{}
	}
	if p.Images == nil {
		p.Images = []Image{}
	}
	if p.Technical.HreflangTags == nil {
		p.Technical.HreflangTags = []Hreflang{}
	}
	if p.Technical.AlternateLinks == nil {
		p.Technical.AlternateLinks = []AlternateLink{}
	}
	return p
}

// Float is a convenience for building WebVitals literals.
func Float(v float64) *float64 {
	return &v
}

// Int is a convenience for building Image dimensions.
func Int(v int) *int {
	return &v
}
