package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-optimizer/seoaudit/page"
)

// DocumentExtractor reads the snapshot through goquery selections.
type DocumentExtractor struct{}

func (DocumentExtractor) Name() string { return DocumentName }

func (DocumentExtractor) Extract(in Input) (page.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(in.HTML))
	if err != nil {
		return page.Extraction{}, fmt.Errorf("parse document: %w", err)
	}

	var raw rawPage

	// Title and language
	if title := find(doc.Selection, "title").First(); title.Length() > 0 {
		raw.title = title.Text()
		raw.hasTitle = true
	}
	raw.lang, _ = doc.Find("html").First().Attr("lang")

	find(doc.Selection, "meta").Each(func(_ int, s *goquery.Selection) {
		raw.metas = append(raw.metas, selectionAttrs(s))
	})
	find(doc.Selection, "link").Each(func(_ int, s *goquery.Selection) {
		raw.links = append(raw.links, selectionAttrs(s))
	})
	find(doc.Selection, "img").Each(func(_ int, s *goquery.Selection) {
		raw.images = append(raw.images, selectionAttrs(s))
	})
	find(doc.Selection, "a[href]").Each(func(_ int, s *goquery.Selection) {
		raw.anchors = append(raw.anchors, anchor{attrs: selectionAttrs(s), text: s.Text()})
	})
	find(doc.Selection, "h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		raw.headings = append(raw.headings, heading{tag: goquery.NodeName(s), text: s.Text()})
	})
	find(doc.Selection, "script").Each(func(_ int, s *goquery.Selection) {
		if isJSONLD(selectionAttrs(s)) {
			raw.jsonLD = append(raw.jsonLD, s.Text())
		}
	})

	// Word count
	doc.Find("body").Each(func(_ int, body *goquery.Selection) {
		raw.bodyText = visibleText(body, raw.bodyText)
	})

	return assemble(raw, in), nil
}

// find skips anything inside a <template>, whose content is inert.
func find(s *goquery.Selection, selector string) *goquery.Selection {
	return s.Find(selector).Not("template *")
}

func selectionAttrs(s *goquery.Selection) attrs {
	if s.Length() == 0 {
		return attrs{}
	}
	return attrsOf(s.Nodes[0])
}

func visibleText(s *goquery.Selection, parts []string) []string {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); {
		case name == "#text":
			parts = append(parts, c.Text())
		case hiddenElements[name]:
		default:
			parts = visibleText(c, parts)
		}
	})
	return parts
}
