package extract

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/seo-optimizer/seoaudit/page"
)

// attrs holds an element's attributes. Keys are lower-case and the first
// occurrence of a duplicated attribute wins.
type attrs map[string]string

func attrsOf(n *html.Node) attrs {
	a := make(attrs, len(n.Attr))
	for _, attr := range n.Attr {
		if _, dup := a[attr.Key]; !dup {
			a[attr.Key] = attr.Val
		}
	}
	return a
}

func (a attrs) get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

func (a attrs) has(key string) bool {
	_, ok := a[key]
	return ok
}

func (a attrs) value(key string) string {
	return a[key]
}

// is compares an enumerated attribute such as rel or type; HTML matches these
// case-insensitively.
func (a attrs) is(key, want string) bool {
	v, ok := a[key]
	return ok && strings.EqualFold(v, want)
}

type anchor struct {
	attrs attrs
	text  string
}

type heading struct {
	tag  string
	text string
}

// rawPage is what a host gathers from the document before assembly.
type rawPage struct {
	title    string
	hasTitle bool
	lang     string
	metas    []attrs
	links    []attrs
	images   []attrs
	anchors  []anchor
	headings []heading
	jsonLD   []string
	// bodyText holds the visible text nodes of <body> in document order.
	bodyText []string
}

// hiddenElements never contribute visible body text.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

var headingLevels = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

func isJSONLD(a attrs) bool {
	return a.is("type", "application/ld+json")
}

var contentTypeCharset = regexp.MustCompile(`charset=([^;]+)`)

// assemble converts raw element records into the shared page model.
func assemble(raw rawPage, in Input) page.Extraction {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	base, err := url.Parse(in.URL)
	if err != nil || !base.IsAbs() {
		base = nil
	}

	p := page.New(in.URL)
	p.Timestamp = now.UTC().Format(page.TimestampFormat)

	// Meta
	title := ""
	if raw.hasTitle {
		title = strings.Join(strings.FieldsFunc(raw.title, isASCIISpace), " ")
	}
	description := metaContent(raw.metas, "description")
	canonical := resolveHref(base, firstLink(raw.links, "canonical"))
	p.Meta = page.Meta{
		Title:             title,
		TitleLength:       page.TextLength(title),
		Description:       description,
		DescriptionLength: page.TextLength(description),
		Canonical:         canonical,
		Robots:            metaContent(raw.metas, "robots"),
		Viewport:          metaContent(raw.metas, "viewport"),
		Charset:           charset(raw.metas),
		Language:          raw.lang,
		Author:            metaContent(raw.metas, "author"),
		Generator:         metaContent(raw.metas, "generator"),
		ThemeColor:        metaContent(raw.metas, "theme-color"),
	}

	// Open Graph
	og := func(property string) string {
		return firstMeta(raw.metas, byProperty(property)).value("content")
	}
	p.OG = page.OpenGraph{
		Title:       og("og:title"),
		Description: og("og:description"),
		Image:       og("og:image"),
		ImageWidth:  og("og:image:width"),
		ImageHeight: og("og:image:height"),
		URL:         og("og:url"),
		Type:        og("og:type"),
		SiteName:    og("og:site_name"),
		Locale:      og("og:locale"),
	}

	// Twitter tags are looked up by name first, then by property.
	twitter := func(name string) string {
		m := firstMeta(raw.metas, byName(name))
		if m == nil {
			m = firstMeta(raw.metas, byProperty(name))
		}
		return m.value("content")
	}
	p.Twitter = page.TwitterCard{
		Card:        twitter("twitter:card"),
		Title:       twitter("twitter:title"),
		Description: twitter("twitter:description"),
		Image:       twitter("twitter:image"),
		Site:        twitter("twitter:site"),
		Creator:     twitter("twitter:creator"),
	}

	for _, script := range raw.jsonLD {
		p.JSONLD = append(p.JSONLD, page.ParseJSONLD(script))
	}

	for _, h := range raw.headings {
		p.Headings = append(p.Headings, page.Heading{
			Tag:   h.tag,
			Text:  strings.TrimSpace(h.text),
			Level: headingLevels[h.tag],
		})
	}

	for _, a := range raw.anchors {
		href := a.attrs.value("href")
		rel := a.attrs.value("rel")
		p.Links = append(p.Links, page.Link{
			Href:       href,
			Text:       strings.TrimSpace(a.text),
			IsExternal: page.IsExternalLink(in.URL, href),
			IsNofollow: strings.Contains(rel, "nofollow"),
			IsNoopener: strings.Contains(rel, "noopener"),
		})
	}

	for _, img := range raw.images {
		src := img.value("src")
		p.Images = append(p.Images, page.Image{
			Src:            src,
			Alt:            img.value("alt"),
			Width:          dimension(img, "width"),
			Height:         dimension(img, "height"),
			HasLazyLoading: img.is("loading", "lazy"),
			FileExtension:  fileExtension(src),
		})
	}

	// Technical
	for _, l := range raw.links {
		if !l.is("rel", "alternate") {
			continue
		}
		if lang := l.value("hreflang"); lang != "" {
			p.Technical.HreflangTags = append(p.Technical.HreflangTags, page.Hreflang{
				Lang: lang,
				Href: resolveHref(base, l.value("href")),
			})
			continue
		}
		p.Technical.AlternateLinks = append(p.Technical.AlternateLinks, page.AlternateLink{
			Rel:  "alternate",
			Type: l.value("type"),
			Href: resolveHref(base, l.value("href")),
		})
	}
	p.Technical.Canonical = canonical
	p.Technical.RobotsMeta = firstMeta(raw.metas, byName("robots")).value("content")
	p.Technical.Favicon = resolveHref(base, firstLink(raw.links, "icon", "shortcut icon"))
	p.Technical.AppleTouchIcon = resolveHref(base, firstLink(raw.links, "apple-touch-icon"))
	p.Technical.IsHTTPS = page.IsHTTPS(in.URL)

	p.WordCount = page.CountWords(strings.Join(raw.bodyText, ""))
	p.ResponseHeaders = responseHeaders(in)
	return p
}

func byName(name string) func(attrs) bool {
	return func(a attrs) bool { return a.value("name") == name }
}

func byProperty(property string) func(attrs) bool {
	return func(a attrs) bool { return a.value("property") == property }
}

func firstMeta(metas []attrs, match func(attrs) bool) attrs {
	for _, m := range metas {
		if match(m) {
			return m
		}
	}
	return nil
}

// metaContent picks the first <meta> whose name matches exactly, then
// case-insensitively, then by http-equiv, and returns its content.
func metaContent(metas []attrs, name string) string {
	m := firstMeta(metas, byName(name))
	if m == nil {
		m = firstMeta(metas, func(a attrs) bool { return a.is("name", name) })
	}
	if m == nil {
		m = firstMeta(metas, func(a attrs) bool { return a.is("http-equiv", name) })
	}
	return m.value("content")
}

func charset(metas []attrs) string {
	if m := firstMeta(metas, func(a attrs) bool { return a.has("charset") }); m != nil {
		return m.value("charset")
	}
	m := firstMeta(metas, func(a attrs) bool { return a.is("http-equiv", "content-type") })
	if match := contentTypeCharset.FindStringSubmatch(m.value("content")); match != nil {
		return match[1]
	}
	return ""
}

func firstLink(links []attrs, rels ...string) string {
	for _, l := range links {
		for _, rel := range rels {
			if l.is("rel", rel) {
				return l.value("href")
			}
		}
	}
	return ""
}

// resolveHref makes href absolute against the page URL the way a live
// document reports link targets. Unresolvable values are kept verbatim.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// dimension is nil unless the attribute is present. A value that does not
// start with digits reads as 0.
func dimension(img attrs, key string) *int {
	v, ok := img.get(key)
	if !ok {
		return nil
	}
	n, _ := page.ParseInt(v)
	return page.Int(max(n, 0))
}

// fileExtension takes the text after the last dot, cut at the query string.
func fileExtension(src string) string {
	ext := src
	if i := strings.LastIndex(src, "."); i >= 0 {
		ext = src[i+1:]
	}
	ext, _, _ = strings.Cut(ext, "?")
	return strings.ToLower(ext)
}

func responseHeaders(in Input) map[string]string {
	if len(in.Headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(in.Headers))
	for k := range in.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make(map[string]string, len(keys))
	for _, k := range keys {
		name := strings.ToLower(k)
		value := strings.Join(in.Headers[k], ", ")
		if prev, ok := headers[name]; ok {
			value = prev + ", " + value
		}
		headers[name] = value
	}
	return headers
}

func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}
